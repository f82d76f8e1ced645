package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "engeai",
	Short: "Artifact detection and rendering pipeline for the EngE-AI tutor",
	Long: `EngE-AI processes tutor messages into rendered HTML: it extracts
Mermaid diagram artefacts, repairs their syntax, injects confidence
checks, and renders markdown with syntax highlighting. Artefacts can
be opened in a panel, panned, zoomed, and exported as PNG or SVG.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "engeai.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
