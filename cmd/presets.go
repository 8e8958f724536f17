package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/scan2pdf/internal/config"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the available conversion presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Available presets:")
		for _, name := range config.PresetNames() {
			cfg, err := config.FromPreset(name)
			if err != nil {
				return err
			}
			compression := "off"
			if cfg.Compression.Enabled {
				compression = fmt.Sprintf("max %dx%d px, quality %d",
					cfg.Compression.MaxWidth, cfg.Compression.MaxHeight, cfg.Compression.Quality)
			}
			fmt.Printf("  %-13s page %s, %s, margin %.2f pt, compression %s\n",
				name, cfg.PageSize, cfg.FillMode, cfg.Margin, compression)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}
