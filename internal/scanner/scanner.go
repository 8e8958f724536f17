// Package scanner discovers image files under a source directory and groups
// them per directory. Each group later becomes one output document, so the
// ordering within a group is significant and stable.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Image describes one source image found during discovery. WorkingPath
// starts equal to SourcePath and is replaced by the preprocessing stage
// when a compressed scratch copy exists; the source file is never altered.
type Image struct {
	DisplayName  string
	SourcePath   string
	FileSize     int64
	WorkingPath  string
	Preprocessed bool
}

// Group is an ordered sequence of images that share one output document.
// Groups are never materialized empty.
type Group struct {
	Name   string
	Dir    string
	Images []Image
}

var embeddedInt = regexp.MustCompile(`\d+`)

// Discover walks root and returns one group per directory that contains at
// least one file with a supported extension. Files directly under root form
// an implicit group named after the root directory itself. Groups and the
// images inside them are returned in stable order.
func Discover(root string, extensions []string) ([]Group, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot read source directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source path %s is not a directory", root)
	}

	extSet := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		extSet[strings.ToLower(strings.TrimPrefix(e, "."))] = true
	}

	byDir := make(map[string][]Image)
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		if !extSet[ext] {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		dir := filepath.Dir(path)
		byDir[dir] = append(byDir[dir], Image{
			DisplayName: d.Name(),
			SourcePath:  path,
			FileSize:    fi.Size(),
			WorkingPath: path,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	coll := collate.New(language.Und)
	cleanRoot := filepath.Clean(root)

	groups := make([]Group, 0, len(byDir))
	for dir, images := range byDir {
		name := filepath.Base(dir)
		if dir == cleanRoot {
			// Implicit group for files directly under the source root.
			name = rootGroupName(cleanRoot)
		}
		sortImages(coll, images)
		groups = append(groups, Group{Name: name, Dir: dir, Images: images})
	}

	sort.Slice(groups, func(i, j int) bool {
		return lessName(coll, groups[i].Name, groups[j].Name)
	})
	return groups, nil
}

// rootGroupName derives the reserved name for root-level files from the
// source directory itself.
func rootGroupName(cleanRoot string) string {
	name := filepath.Base(cleanRoot)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "scans"
	}
	return name
}

// sortImages orders images by the first embedded integer in the file name
// (ascending), then by locale-aware comparison of the full name. The sort is
// stable so equal keys keep their walk order.
func sortImages(coll *collate.Collator, images []Image) {
	sort.SliceStable(images, func(i, j int) bool {
		return lessName(coll, images[i].DisplayName, images[j].DisplayName)
	})
}

func lessName(coll *collate.Collator, a, b string) bool {
	na, aok := firstNumber(a)
	nb, bok := firstNumber(b)
	switch {
	case aok && bok && na != nb:
		return na < nb
	case aok != bok:
		// Names with an embedded number sort before those without.
		return aok
	}
	return coll.CompareString(a, b) < 0
}

// firstNumber extracts the first run of digits from a file name.
func firstNumber(name string) (int64, bool) {
	m := embeddedInt.FindString(name)
	if m == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(m, 10, 64)
	if err != nil {
		// Digit runs longer than an int64 fall back to lexical ordering.
		return 0, false
	}
	return n, true
}
