// Package batch drives the conversion of every discovered image group into
// its own PDF document. Groups are processed one at a time so scratch
// directories, page ordering and log output stay deterministic.
package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/kozaktomas/scan2pdf/internal/assembler"
	"github.com/kozaktomas/scan2pdf/internal/config"
	"github.com/kozaktomas/scan2pdf/internal/scanner"
)

// Result aggregates the outcome of one run.
type Result struct {
	Total     int
	Converted int
	Outputs   []string
	Errors    []error
}

// Run converts every group under sourceDir into a PDF in outputDir. A
// failed group is recorded in the result and the run continues with the
// next one. Cancellation is honored between groups, never inside one.
func Run(ctx context.Context, cfg *config.Config, sourceDir, outputDir string) (*Result, error) {
	groups, err := scanner.Discover(sourceDir, cfg.Extensions)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("no supported images found under %s", sourceDir)
	}

	asm := assembler.New(cfg)
	date := time.Now().Format("2006-01-02")

	bar := progressbar.NewOptions(len(groups),
		progressbar.OptionSetDescription("Converting"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("docs"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)

	result := &Result{Total: len(groups)}
	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, err)
			break
		}

		outputPath := filepath.Join(outputDir, fmt.Sprintf("%s_%s.pdf", group.Name, date))
		path, err := asm.BuildDocument(ctx, group, outputPath)
		bar.Add(1)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("group %s: %w", group.Name, err))
			continue
		}
		result.Converted++
		result.Outputs = append(result.Outputs, path)
	}
	fmt.Println()

	return result, nil
}
