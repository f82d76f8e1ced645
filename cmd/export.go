package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ubc/tlef-engeai-sub007/internal/config"
	"github.com/ubc/tlef-engeai-sub007/internal/diagrams"
)

var exportCmd = &cobra.Command{
	Use:   "export [diagram.mmd...]",
	Short: "Render Mermaid files and export them as PNG or SVG",
	Long: `Renders each Mermaid source file with the configured diagram engine
and saves the result to the downloads directory. PNG is attempted
first; when rasterization fails the standalone SVG is kept instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		deps := buildPipelineDeps(cfg)

		for _, path := range args {
			source, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}

			normalized := diagrams.Normalize(string(source))
			svg, err := deps.renderer.Render(cmd.Context(), normalized)
			if err != nil {
				return fmt.Errorf("rendering %s: %w", path, err)
			}

			name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			outPath, err := deps.exporter.Export(svg, name)
			if err != nil {
				return fmt.Errorf("exporting %s: %w", path, err)
			}
			fmt.Printf("%s -> %s\n", path, outPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
