package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/ubc/tlef-engeai-sub007/internal/config"
	"github.com/ubc/tlef-engeai-sub007/internal/progress"
)

var renderOutDir string

var renderCmd = &cobra.Command{
	Use:   "render [patterns...]",
	Short: "Render message files to HTML through the full pipeline",
	Long: `Renders text files matching the given glob patterns (doublestar **
supported) through the artefact pipeline and writes the resulting HTML
alongside a summary of extracted artefacts. Useful for regenerating
transcripts or checking how a tutor message will display.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		deps := buildPipelineDeps(cfg)

		var files []string
		for _, pattern := range args {
			matches, err := doublestar.FilepathGlob(pattern)
			if err != nil {
				return fmt.Errorf("bad pattern %q: %w", pattern, err)
			}
			files = append(files, matches...)
		}
		if len(files) == 0 {
			return fmt.Errorf("no files match the given patterns")
		}

		if err := os.MkdirAll(renderOutDir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}

		reporter := progress.NewReporter()
		reporter.Start(len(files))

		rendered := 0
		for i, path := range files {
			reporter.Update(i+1, filepath.Base(path))

			text, err := os.ReadFile(path)
			if err != nil {
				deps.logger.Warn("skipping unreadable file", "path", path, "error", err)
				continue
			}

			messageID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			html, err := deps.pipeline.RenderText(string(text), messageID)
			if err != nil {
				deps.logger.Warn("rendering failed", "path", path, "error", err)
				continue
			}

			outPath := filepath.Join(renderOutDir, messageID+".html")
			if err := os.WriteFile(outPath, []byte(html), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}
			rendered++
		}
		reporter.Finish()

		artifacts := deps.registry.All()
		fmt.Fprintf(os.Stderr, "Rendered %d/%d file(s), %d artefact(s) extracted\n", rendered, len(files), len(artifacts))
		for _, a := range artifacts {
			fmt.Fprintf(os.Stderr, "  %s (message %s)\n", a.ID, a.MessageID)
		}
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderOutDir, "out", "o", "rendered", "output directory for HTML files")
	rootCmd.AddCommand(renderCmd)
}
