// Package assembler builds one PDF document from an ordered image group. It
// owns the group's scratch directory for the whole build and guarantees its
// removal on every exit path.
package assembler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/jung-kurt/gofpdf"

	"github.com/kozaktomas/scan2pdf/internal/composer"
	"github.com/kozaktomas/scan2pdf/internal/config"
	"github.com/kozaktomas/scan2pdf/internal/pageformat"
	"github.com/kozaktomas/scan2pdf/internal/preprocess"
	"github.com/kozaktomas/scan2pdf/internal/scanner"
)

// ErrDocumentWrite marks stream creation or finalization failures. Only
// these escalate out of a build; per-image failures never do.
var ErrDocumentWrite = errors.New("document write failed")

// Assembler converts image groups into PDF documents.
type Assembler struct {
	cfg *config.Config

	// ScratchRoot is the parent for per-group scratch directories. Empty
	// means the system temp directory.
	ScratchRoot string
}

// New returns an Assembler using cfg for layout and compression settings.
func New(cfg *config.Config) *Assembler {
	return &Assembler{cfg: cfg}
}

// BuildDocument writes one PDF containing exactly one page per image in the
// group, in group order, and returns the output path. Pages for unreadable
// images stay background-only. Each step is a commit point; a failure never
// rolls back earlier steps.
func (a *Assembler) BuildDocument(ctx context.Context, group scanner.Group, outputPath string) (string, error) {
	if len(group.Images) == 0 {
		return "", fmt.Errorf("group %s contains no images", group.Name)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	format, err := pageformat.Lookup(a.cfg.PageSize)
	if err != nil {
		return "", err
	}

	scratch, err := os.MkdirTemp(a.ScratchRoot, "scan2pdf-*")
	if err != nil {
		return "", fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer func() {
		// A dangling scratch file must never fail the conversion.
		if err := os.RemoveAll(scratch); err != nil {
			log.Printf("WARNING: failed to remove scratch directory %s: %v", scratch, err)
		}
	}()

	images := a.preprocessAll(group.Images, scratch)

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: format.Width, Ht: format.Height},
	})
	pdf.SetTitle(group.Name, true)
	pdf.SetCreator("scan2pdf", true)
	pdf.SetAutoPageBreak(false, 0)

	opts := composer.Options{
		FormatName: a.cfg.PageSize,
		Fill:       a.cfg.FillSpec(),
		Background: composer.Background{
			R: a.cfg.Background[0],
			G: a.cfg.Background[1],
			B: a.cfg.Background[2],
		},
		Label: a.cfg.Label,
	}
	for _, img := range images {
		if err := composer.PlaceImage(pdf, img, opts); err != nil {
			log.Printf("WARNING: failed to compose page for %s: %v", img.SourcePath, err)
		}
	}

	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrDocumentWrite, outputPath, err)
	}
	return outputPath, nil
}

// preprocessAll compresses each image into the scratch directory when
// compression is enabled, strictly in group order. A failed image keeps its
// original path and stays marked not-preprocessed.
func (a *Assembler) preprocessAll(images []scanner.Image, scratch string) []scanner.Image {
	out := make([]scanner.Image, len(images))
	copy(out, images)
	if !a.cfg.Compression.Enabled {
		return out
	}

	for i := range out {
		res, err := preprocess.Compress(out[i].SourcePath, scratch, preprocess.Options{
			MaxWidth:   a.cfg.Compression.MaxWidth,
			MaxHeight:  a.cfg.Compression.MaxHeight,
			Quality:    a.cfg.Compression.Quality,
			AutoRotate: a.cfg.Compression.AutoRotate,
		})
		if err != nil {
			log.Printf("WARNING: compression failed for %s, using original: %v", out[i].SourcePath, err)
			continue
		}
		out[i].WorkingPath = res.Path
		out[i].Preprocessed = true
		log.Printf("compressed %s: %d -> %d bytes", out[i].DisplayName, res.BytesBefore, res.BytesAfter)
	}
	return out
}
