package composer

import (
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/jung-kurt/gofpdf"

	"github.com/kozaktomas/scan2pdf/internal/layout"
	"github.com/kozaktomas/scan2pdf/internal/scanner"
)

func writeJPEG(t *testing.T, path string, width, height int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{200, uint8(y % 256), uint8(x % 256), 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test image: %v", err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
}

func newTestPDF() *gofpdf.Fpdf {
	return gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: 595.28, Ht: 841.89},
	})
}

func testOptions() Options {
	return Options{
		FormatName: "A4",
		Fill:       layout.FillSpec{Mode: layout.Fit},
		Background: Background{R: 255, G: 255, B: 255},
	}
}

func testImageAt(path string) scanner.Image {
	return scanner.Image{
		DisplayName: filepath.Base(path),
		SourcePath:  path,
		WorkingPath: path,
	}
}

func TestPlaceImage_AddsOnePage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "1.jpg")
	writeJPEG(t, path, 320, 240)
	pdf := newTestPDF()

	if err := PlaceImage(pdf, testImageAt(path), testOptions()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pdf.PageNo() != 1 {
		t.Errorf("expected 1 page, got %d", pdf.PageNo())
	}
	if !pdf.Ok() {
		t.Errorf("writer in error state: %v", pdf.Error())
	}
}

func TestPlaceImage_CorruptImageKeepsPage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jpg")
	if err := os.WriteFile(path, []byte("garbage bytes"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	pdf := newTestPDF()

	// Probe fails, fallback dimensions are used, placement is skipped.
	// The page must still exist so the document keeps one page per image.
	if err := PlaceImage(pdf, testImageAt(path), testOptions()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pdf.PageNo() != 1 {
		t.Errorf("expected 1 background-only page, got %d", pdf.PageNo())
	}
	if !pdf.Ok() {
		t.Errorf("writer error state must be cleared, got: %v", pdf.Error())
	}
}

func TestPlaceImage_FailuresDoNotPoisonLaterPages(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.jpg")
	if err := os.WriteFile(broken, []byte("garbage"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	good := filepath.Join(dir, "good.jpg")
	writeJPEG(t, good, 100, 100)

	pdf := newTestPDF()
	if err := PlaceImage(pdf, testImageAt(broken), testOptions()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := PlaceImage(pdf, testImageAt(good), testOptions()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pdf.PageNo() != 2 {
		t.Errorf("expected 2 pages, got %d", pdf.PageNo())
	}
	if !pdf.Ok() {
		t.Errorf("writer in error state: %v", pdf.Error())
	}
}

func TestPlaceImage_UnknownFormatFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "1.jpg")
	writeJPEG(t, path, 100, 100)
	pdf := newTestPDF()

	opts := testOptions()
	opts.FormatName = "B5"
	if err := PlaceImage(pdf, testImageAt(path), opts); err == nil {
		t.Error("expected error for unknown page format")
	}
}

func TestPlaceImage_WithLabel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labeled.jpg")
	writeJPEG(t, path, 100, 100)
	pdf := newTestPDF()

	opts := testOptions()
	opts.Label = true
	if err := PlaceImage(pdf, testImageAt(path), opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pdf.Ok() {
		t.Errorf("writer in error state: %v", pdf.Error())
	}
}

func TestPDFImageType(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"jpeg", "JPG"},
		{"png", "PNG"},
		{"gif", "GIF"},
		{"bmp", ""},
		{"tiff", ""},
		{"webp", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := pdfImageType(tt.format); got != tt.want {
			t.Errorf("pdfImageType(%q): expected %q, got %q", tt.format, tt.want, got)
		}
	}
}
