package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/scan2pdf/internal/pageformat"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List the available page formats",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Available page formats (points):")
		for _, name := range pageformat.Names() {
			f, err := pageformat.Lookup(name)
			if err != nil {
				continue
			}
			fmt.Printf("  %-8s %.2f x %.2f\n", name, f.Width, f.Height)
		}
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
