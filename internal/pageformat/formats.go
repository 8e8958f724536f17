// Package pageformat defines the physical page sizes available for output
// documents. Dimensions are in PostScript points (1/72 inch).
package pageformat

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Format holds the physical dimensions of a page in points.
type Format struct {
	Width  float64
	Height float64
}

// ErrUnknownFormat is returned when a page format name is not registered.
var ErrUnknownFormat = errors.New("unknown page format")

// formats maps lowercase format names to their dimensions. Extend by adding
// entries; all lookups go through this table.
var formats = map[string]Format{
	"a4":     {Width: 595.28, Height: 841.89},
	"a3":     {Width: 841.89, Height: 1190.55},
	"letter": {Width: 612.00, Height: 792.00},
	"legal":  {Width: 612.00, Height: 1008.00},
}

// canonical maps lowercase names back to their display casing.
var canonical = map[string]string{
	"a4":     "A4",
	"a3":     "A3",
	"letter": "Letter",
	"legal":  "Legal",
}

// Lookup returns the dimensions for a page format name. The match is
// case-insensitive.
func Lookup(name string) (Format, error) {
	f, ok := formats[strings.ToLower(name)]
	if !ok {
		return Format{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownFormat, name, strings.Join(Names(), ", "))
	}
	return f, nil
}

// Names returns the registered format names in display casing, sorted.
func Names() []string {
	names := make([]string, 0, len(canonical))
	for _, display := range canonical {
		names = append(names, display)
	}
	sort.Strings(names)
	return names
}
