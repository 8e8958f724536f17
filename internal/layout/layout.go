// Package layout computes the placement rectangle for one image on one
// page. The computation is pure: identical inputs always produce identical
// results, and no rounding happens before the values reach the PDF writer.
package layout

import (
	"fmt"
	"math"
	"strings"

	"github.com/kozaktomas/scan2pdf/internal/pageformat"
)

// FillMode selects how an image's bounding box maps onto the page when the
// aspect ratios differ.
type FillMode int

const (
	// Fit scales the image to be fully visible inside the usable area,
	// preserving the aspect ratio. Whitespace may remain.
	Fit FillMode = iota
	// Stretch distorts the image to cover the usable area exactly.
	Stretch
	// Crop scales the image to cover the usable area, preserving the aspect
	// ratio. Parts of the image may extend past the page.
	Crop
	// Custom stretches the image into the area left by four independent
	// margins.
	Custom
)

func (m FillMode) String() string {
	switch m {
	case Fit:
		return "fit"
	case Stretch:
		return "stretch"
	case Crop:
		return "crop"
	case Custom:
		return "custom"
	default:
		return fmt.Sprintf("FillMode(%d)", int(m))
	}
}

// ParseFillMode converts a config or flag value into a FillMode.
func ParseFillMode(s string) (FillMode, error) {
	switch strings.ToLower(s) {
	case "fit":
		return Fit, nil
	case "stretch":
		return Stretch, nil
	case "crop":
		return Crop, nil
	case "custom":
		return Custom, nil
	default:
		return 0, fmt.Errorf("unknown fill mode %q (supported: fit, stretch, crop, custom)", s)
	}
}

// Margins holds asymmetric page margins in points, used by the Custom mode.
type Margins struct {
	Top    float64
	Bottom float64
	Left   float64
	Right  float64
}

// FillSpec bundles a fill mode with its margin parameters. Margin applies
// uniformly under Fit, Stretch and Crop; Margins applies under Custom.
type FillSpec struct {
	Mode    FillMode
	Margin  float64
	Margins Margins
}

// Result is the computed placement of one image. X and Y are measured from
// the top-left page corner and may be negative under Crop. PageW and PageH
// always echo the full page format, not the margin-reduced usable area, so
// consumers can fill the page background from the same value.
type Result struct {
	X, Y  float64
	W, H  float64
	PageW float64
	PageH float64
	Mode  FillMode
}

// Compute returns the placement rectangle for an image of imgW x imgH
// pixels on the named page format. It fails with
// pageformat.ErrUnknownFormat when the format name is not registered.
func Compute(imgW, imgH float64, formatName string, spec FillSpec) (Result, error) {
	if imgW <= 0 || imgH <= 0 {
		return Result{}, fmt.Errorf("image dimensions must be positive, got %gx%g", imgW, imgH)
	}

	format, err := pageformat.Lookup(formatName)
	if err != nil {
		return Result{}, err
	}

	var r Result
	switch spec.Mode {
	case Fit:
		r = fit(imgW, imgH, format, spec.Margin)
	case Stretch:
		r = stretch(format, spec.Margin)
	case Crop:
		r = crop(imgW, imgH, format, spec.Margin)
	case Custom:
		r = custom(format, spec.Margins)
	default:
		return Result{}, fmt.Errorf("unsupported fill mode %q", spec.Mode)
	}

	r.PageW = format.Width
	r.PageH = format.Height
	r.Mode = spec.Mode
	return r, nil
}

// fit scales the image by the smaller of the two axis ratios and centers it
// within the usable area.
func fit(imgW, imgH float64, f pageformat.Format, margin float64) Result {
	usableW := f.Width - 2*margin
	usableH := f.Height - 2*margin
	scale := math.Min(usableW/imgW, usableH/imgH)
	w := imgW * scale
	h := imgH * scale
	return Result{
		X: margin + (usableW-w)/2,
		Y: margin + (usableH-h)/2,
		W: w,
		H: h,
	}
}

// stretch covers the usable area exactly, ignoring the aspect ratio.
func stretch(f pageformat.Format, margin float64) Result {
	return Result{
		X: margin,
		Y: margin,
		W: f.Width - 2*margin,
		H: f.Height - 2*margin,
	}
}

// crop scales the image by the larger of the two axis ratios, the deliberate
// inverse of fit. The result covers the usable area and is centered, which
// can push the offsets negative; the writer's page boundary truncates the
// overflow.
func crop(imgW, imgH float64, f pageformat.Format, margin float64) Result {
	usableW := f.Width - 2*margin
	usableH := f.Height - 2*margin
	scale := math.Max(usableW/imgW, usableH/imgH)
	w := imgW * scale
	h := imgH * scale
	return Result{
		X: margin + (usableW-w)/2,
		Y: margin + (usableH-h)/2,
		W: w,
		H: h,
	}
}

// custom stretches the image into the area left by four independent margins.
func custom(f pageformat.Format, m Margins) Result {
	return Result{
		X: m.Left,
		Y: m.Top,
		W: f.Width - m.Left - m.Right,
		H: f.Height - m.Top - m.Bottom,
	}
}
