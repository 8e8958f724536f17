// Package composer lays out a single image on a single PDF page: it probes
// the image's pixel dimensions, computes the placement rectangle and issues
// the page, background and image instructions against the PDF writer.
package composer

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"

	"github.com/jung-kurt/gofpdf"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/kozaktomas/scan2pdf/internal/layout"
	"github.com/kozaktomas/scan2pdf/internal/scanner"
)

// Fallback dimensions used when an image cannot be probed. The page is
// still emitted so the document keeps one page per image.
const (
	fallbackWidth  = 800
	fallbackHeight = 600
)

// Background is a page background color, one channel per 0-255 value.
type Background struct {
	R, G, B int
}

// Options control how pages are composed.
type Options struct {
	FormatName string
	Fill       layout.FillSpec
	Background Background
	Label      bool // print the file name in the bottom margin
}

// PlaceImage appends one page to pdf and places img on it. A failed
// dimension probe falls back to 800x600; a failed placement leaves the page
// background-only. Both are logged and recovered, so the returned error is
// non-nil only for layout failures such as an unknown page format.
func PlaceImage(pdf *gofpdf.Fpdf, img scanner.Image, opts Options) error {
	width, height, format, err := probe(img.WorkingPath)
	if err != nil {
		log.Printf("WARNING: failed to probe %s, assuming %dx%d: %v",
			img.SourcePath, fallbackWidth, fallbackHeight, err)
		width, height = fallbackWidth, fallbackHeight
	}

	result, err := layout.Compute(float64(width), float64(height), opts.FormatName, opts.Fill)
	if err != nil {
		return err
	}

	pdf.AddPageFormat("P", gofpdf.SizeType{Wd: result.PageW, Ht: result.PageH})
	pdf.SetFillColor(opts.Background.R, opts.Background.G, opts.Background.B)
	pdf.Rect(0, 0, result.PageW, result.PageH, "F")

	placeAt(pdf, img, format, result)

	if opts.Label {
		drawLabel(pdf, img.DisplayName, result.PageH)
	}
	return nil
}

// placeAt registers the image with the writer and draws it at the computed
// rectangle. Unsupported or corrupt images are skipped with a warning; the
// writer's error state is cleared so later pages are unaffected.
func placeAt(pdf *gofpdf.Fpdf, img scanner.Image, format string, r layout.Result) {
	imageType := pdfImageType(format)
	if imageType == "" {
		log.Printf("WARNING: skipping %s: image type %q cannot be embedded (enable compression to convert)",
			img.SourcePath, format)
		return
	}

	imgOpts := gofpdf.ImageOptions{ImageType: imageType, ReadDpi: false}
	pdf.RegisterImageOptions(img.WorkingPath, imgOpts)
	if pdf.Err() {
		log.Printf("WARNING: skipping %s: %v", img.SourcePath, pdf.Error())
		pdf.ClearError()
		return
	}

	pdf.ImageOptions(img.WorkingPath, r.X, r.Y, r.W, r.H, false, imgOpts, 0, "")
	if pdf.Err() {
		log.Printf("WARNING: failed to place %s: %v", img.SourcePath, pdf.Error())
		pdf.ClearError()
	}
}

// drawLabel prints the file name in gray inside the bottom margin.
func drawLabel(pdf *gofpdf.Fpdf, name string, pageH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(128, 128, 128)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.Text(8, pageH-6, tr(name))
}

// probe returns the pixel dimensions and decoded format name of the image
// at path without reading the full pixel data.
func probe(path string) (int, int, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, "", fmt.Errorf("failed to decode image config: %w", err)
	}
	return cfg.Width, cfg.Height, format, nil
}

// pdfImageType maps an image.DecodeConfig format name onto the type string
// the PDF writer understands. Formats the writer cannot embed (BMP, TIFF,
// WebP) map to the empty string; the preprocessing stage converts those to
// JPEG when compression is enabled.
func pdfImageType(format string) string {
	switch format {
	case "jpeg":
		return "JPG"
	case "png":
		return "PNG"
	case "gif":
		return "GIF"
	default:
		return ""
	}
}
