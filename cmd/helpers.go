package cmd

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ubc/tlef-engeai-sub007/internal/artifact"
	"github.com/ubc/tlef-engeai-sub007/internal/config"
	"github.com/ubc/tlef-engeai-sub007/internal/diagrams"
	"github.com/ubc/tlef-engeai-sub007/internal/export"
	"github.com/ubc/tlef-engeai-sub007/internal/pipeline"
)

// newLogger builds the process logger. Logs go to stderr so stdout
// stays clean for command output and the MCP protocol.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// pipelineDeps is the shared dependency bundle of the server, serve,
// render and export commands.
type pipelineDeps struct {
	logger   *slog.Logger
	registry *artifact.Registry
	pipeline *pipeline.Renderer
	renderer *diagrams.CLIRenderer
	exporter *export.Exporter
}

// buildPipelineDeps wires the registry, pipeline, diagram renderer and
// exporter from config.
func buildPipelineDeps(cfg *config.Config) *pipelineDeps {
	logger := newLogger()
	registry := artifact.NewRegistry(logger)

	return &pipelineDeps{
		logger:   logger,
		registry: registry,
		pipeline: pipeline.New(registry, logger),
		renderer: diagrams.NewCLIRenderer(cfg.MermaidCLI),
		exporter: export.New(cfg.DownloadsDir, logger),
	}
}

// dbPath returns the SQLite database location under the data directory.
func dbPath(cfg *config.Config) string {
	return filepath.Join(cfg.DataDir, "engeai.db")
}
