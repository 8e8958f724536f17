package assembler

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/kozaktomas/scan2pdf/internal/config"
	"github.com/kozaktomas/scan2pdf/internal/layout"
	"github.com/kozaktomas/scan2pdf/internal/scanner"
)

func writeJPEG(t *testing.T, path string, width, height int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), 150, uint8(y % 256), 255})
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

func testConfig() *config.Config {
	return &config.Config{
		PageSize:   "A4",
		FillMode:   layout.Fit,
		Background: [3]int{255, 255, 255},
		Compression: config.Compression{
			Enabled:    true,
			MaxWidth:   500,
			MaxHeight:  500,
			Quality:    75,
			AutoRotate: true,
		},
		Extensions: []string{"jpg"},
	}
}

func testGroup(t *testing.T, dir string, names ...string) scanner.Group {
	t.Helper()
	group := scanner.Group{Name: "test", Dir: dir}
	for _, name := range names {
		path := filepath.Join(dir, name)
		writeJPEG(t, path, 640, 480)
		group.Images = append(group.Images, scanner.Image{
			DisplayName: name,
			SourcePath:  path,
			WorkingPath: path,
		})
	}
	return group
}

func TestBuildDocument_OnePagePerImage(t *testing.T) {
	dir := t.TempDir()
	group := testGroup(t, dir, "1.jpg", "2.jpg", "3.jpg")
	outputPath := filepath.Join(t.TempDir(), "out.pdf")

	asm := New(testConfig())
	path, err := asm.BuildDocument(context.Background(), group, outputPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	count, err := api.PageCountFile(path)
	if err != nil {
		t.Fatalf("failed to count pages: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 pages, got %d", count)
	}
}

func TestBuildDocument_FailedImagesStillGetPages(t *testing.T) {
	dir := t.TempDir()
	group := testGroup(t, dir, "1.jpg", "3.jpg")

	// Insert a corrupt image between the two good ones.
	corrupt := filepath.Join(dir, "2.jpg")
	if err := os.WriteFile(corrupt, []byte("not an image at all"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	group.Images = []scanner.Image{
		group.Images[0],
		{DisplayName: "2.jpg", SourcePath: corrupt, WorkingPath: corrupt},
		group.Images[1],
	}

	outputPath := filepath.Join(t.TempDir(), "out.pdf")
	asm := New(testConfig())
	path, err := asm.BuildDocument(context.Background(), group, outputPath)
	if err != nil {
		t.Fatalf("per-image failures must not fail the document: %v", err)
	}

	count, err := api.PageCountFile(path)
	if err != nil {
		t.Fatalf("failed to count pages: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 pages (corrupt image page is background-only), got %d", count)
	}
}

func TestBuildDocument_ScratchDirectoryRemoved(t *testing.T) {
	dir := t.TempDir()
	group := testGroup(t, dir, "1.jpg", "2.jpg")

	scratchRoot := t.TempDir()
	asm := New(testConfig())
	asm.ScratchRoot = scratchRoot

	if _, err := asm.BuildDocument(context.Background(), group, filepath.Join(t.TempDir(), "out.pdf")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := os.ReadDir(scratchRoot)
	if err != nil {
		t.Fatalf("failed to read scratch root: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected scratch root to be empty after build, found %d entries", len(entries))
	}
}

func TestBuildDocument_ScratchRemovedEvenWithFailures(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "1.jpg")
	if err := os.WriteFile(corrupt, []byte("garbage"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	group := scanner.Group{
		Name:   "broken",
		Dir:    dir,
		Images: []scanner.Image{{DisplayName: "1.jpg", SourcePath: corrupt, WorkingPath: corrupt}},
	}

	scratchRoot := t.TempDir()
	asm := New(testConfig())
	asm.ScratchRoot = scratchRoot

	if _, err := asm.BuildDocument(context.Background(), group, filepath.Join(t.TempDir(), "out.pdf")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := os.ReadDir(scratchRoot)
	if err != nil {
		t.Fatalf("failed to read scratch root: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty scratch root, found %d entries", len(entries))
	}
}

func TestBuildDocument_CompressionDisabledPassesThrough(t *testing.T) {
	dir := t.TempDir()
	group := testGroup(t, dir, "1.jpg")

	cfg := testConfig()
	cfg.Compression.Enabled = false
	asm := New(cfg)

	path, err := asm.BuildDocument(context.Background(), group, filepath.Join(t.TempDir(), "out.pdf"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	count, err := api.PageCountFile(path)
	if err != nil {
		t.Fatalf("failed to count pages: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 page, got %d", count)
	}
}

func TestBuildDocument_CompressionFailureUsesOriginal(t *testing.T) {
	dir := t.TempDir()
	group := testGroup(t, dir, "good.jpg")

	// A corrupt source makes preprocessing fail; the original path must be
	// used and the document still written.
	corrupt := filepath.Join(dir, "bad.jpg")
	if err := os.WriteFile(corrupt, []byte("garbage"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	group.Images = append(group.Images, scanner.Image{
		DisplayName: "bad.jpg", SourcePath: corrupt, WorkingPath: corrupt,
	})

	asm := New(testConfig())
	path, err := asm.BuildDocument(context.Background(), group, filepath.Join(t.TempDir(), "out.pdf"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	count, err := api.PageCountFile(path)
	if err != nil {
		t.Fatalf("failed to count pages: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 pages, got %d", count)
	}
}

func TestBuildDocument_EmptyGroup(t *testing.T) {
	asm := New(testConfig())
	if _, err := asm.BuildDocument(context.Background(), scanner.Group{Name: "empty"}, "out.pdf"); err == nil {
		t.Error("expected error for empty group")
	}
}

func TestBuildDocument_UnknownPageFormat(t *testing.T) {
	dir := t.TempDir()
	group := testGroup(t, dir, "1.jpg")

	cfg := testConfig()
	cfg.PageSize = "B5"
	asm := New(cfg)

	if _, err := asm.BuildDocument(context.Background(), group, filepath.Join(t.TempDir(), "out.pdf")); err == nil {
		t.Error("expected error for unknown page format")
	}
}

func TestBuildDocument_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	group := testGroup(t, dir, "1.jpg")

	asm := New(testConfig())
	outputPath := filepath.Join(t.TempDir(), "missing", "nested", "out.pdf")
	_, err := asm.BuildDocument(context.Background(), group, outputPath)
	if err == nil {
		t.Fatal("expected error for unwritable output path")
	}
	if !errors.Is(err, ErrDocumentWrite) {
		t.Errorf("expected ErrDocumentWrite, got %v", err)
	}
}

func TestBuildDocument_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	group := testGroup(t, dir, "1.jpg")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	asm := New(testConfig())
	if _, err := asm.BuildDocument(ctx, group, filepath.Join(t.TempDir(), "out.pdf")); err == nil {
		t.Error("expected error for cancelled context")
	}
}
