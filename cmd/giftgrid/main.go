// Giftgrid is the terminal constructor for collectible gift grids.
//
// It edits a grid of cells, each showing a gift with its model, backdrop
// and pattern, and saves the grid between runs. Catalog data is fetched
// directly or through a giftgrid-server found on the local network.
//
// Usage:
//
//	giftgrid [command] [flags]
//
// Running without arguments launches the interactive editor.
// See 'giftgrid --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/giftgrid/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "giftgrid",
	Short: "Gift Grid Constructor",
	Long: `A terminal constructor for collectible gift grids.

Arrange gifts on a grid, pick a model, backdrop and pattern for each cell,
import real collectibles by link, and keep the grid saved between runs.

If no command is specified, the interactive editor will launch automatically.`,
	Version:      version.Version,
	SilenceUsage: true,
	RunE:         runEditor,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("giftgrid %s (commit: %s)\n", version.Version, version.Commit)
	},
}
