package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/scan2pdf/internal/batch"
	"github.com/kozaktomas/scan2pdf/internal/config"
	"github.com/kozaktomas/scan2pdf/internal/layout"
	"github.com/kozaktomas/scan2pdf/internal/pageformat"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert image directories into PDF documents",
	Long: `Convert every directory under the source directory that contains
supported images into a single PDF document, one page per image.

Example:
  scan2pdf convert --source-dir ./scans --output-dir ./out --preset music`,
	Args: cobra.NoArgs,
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().String("source-dir", "", "Directory tree containing the source images")
	convertCmd.Flags().String("output-dir", "", "Directory for the generated PDF files")
	convertCmd.Flags().String("config", "", "Path to a JSON config file overriding preset values")
	convertCmd.Flags().String("preset", "music", "Conversion preset: music, high-quality, compact")
	convertCmd.Flags().String("page-size", "", "Page format: A4, A3, Letter, Legal")
	convertCmd.Flags().String("fill-mode", "", "Fill mode: fit, stretch, crop, custom")
	convertCmd.Flags().Float64("margin", 0, "Uniform page margin in points")
	convertCmd.Flags().Bool("no-compress", false, "Disable image pre-compression")
	convertCmd.Flags().Bool("label", false, "Print the file name in the bottom margin of each page")
	convertCmd.Flags().StringSlice("extensions", nil, "Supported file extensions (overrides the preset)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromPreset(mustGetString(cmd, "preset"))
	if err != nil {
		return err
	}

	// Precedence: preset -> environment -> config file -> flags.
	sourceDir := firstNonEmpty(mustGetString(cmd, "source-dir"), os.Getenv(config.EnvSourceDir))
	outputDir := firstNonEmpty(mustGetString(cmd, "output-dir"), os.Getenv(config.EnvOutputDir))
	configPath := firstNonEmpty(mustGetString(cmd, "config"), os.Getenv(config.EnvConfig))

	if configPath != "" {
		if err := cfg.ApplyFile(configPath); err != nil {
			return err
		}
	}

	if cmd.Flags().Changed("page-size") {
		cfg.PageSize = mustGetString(cmd, "page-size")
	}
	if cmd.Flags().Changed("fill-mode") {
		mode, err := layout.ParseFillMode(mustGetString(cmd, "fill-mode"))
		if err != nil {
			return err
		}
		cfg.FillMode = mode
	}
	if cmd.Flags().Changed("margin") {
		cfg.Margin = mustGetFloat64(cmd, "margin")
	}
	if mustGetBool(cmd, "no-compress") {
		cfg.Compression.Enabled = false
	}
	if cmd.Flags().Changed("label") {
		cfg.Label = mustGetBool(cmd, "label")
	}
	if cmd.Flags().Changed("extensions") {
		cfg.Extensions = mustGetStringSlice(cmd, "extensions")
	}

	if err := config.ValidateDirs(sourceDir, outputDir); err != nil {
		return err
	}
	if _, err := pageformat.Lookup(cfg.PageSize); err != nil {
		return err
	}

	// Set up context with signal handling for graceful cancellation.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, finishing current document...")
		cancel()
	}()

	fmt.Printf("Source: %s\n", sourceDir)
	fmt.Printf("Output: %s\n", outputDir)
	fmt.Printf("Page: %s, fill mode: %s\n", cfg.PageSize, cfg.FillMode)
	if cfg.Compression.Enabled {
		fmt.Printf("Compression: max %dx%d px, JPEG quality %d\n",
			cfg.Compression.MaxWidth, cfg.Compression.MaxHeight, cfg.Compression.Quality)
	}
	fmt.Println()

	result, err := batch.Run(ctx, cfg, sourceDir, outputDir)
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	fmt.Printf("\nConverted: %d/%d directories\n", result.Converted, result.Total)
	for _, path := range result.Outputs {
		fmt.Printf("  %s\n", path)
	}

	if len(result.Errors) > 0 {
		fmt.Printf("\nErrors: %d\n", len(result.Errors))
		for _, err := range result.Errors {
			fmt.Printf("  - %v\n", err)
		}
	}

	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
