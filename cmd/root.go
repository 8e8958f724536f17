package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "scan2pdf",
	Short: "Convert directories of scanned images into PDF documents",
	Long: `scan2pdf converts a directory tree of images into one PDF document
per directory. Each image becomes a single page, placed according to a
configurable fill strategy (fit, stretch, crop or custom margins), with
optional compression and orientation correction beforehand.`,
	Version: Version,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
