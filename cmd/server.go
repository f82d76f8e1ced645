package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ubc/tlef-engeai-sub007/internal/artifact"
	"github.com/ubc/tlef-engeai-sub007/internal/confidence"
	"github.com/ubc/tlef-engeai-sub007/internal/config"
	"github.com/ubc/tlef-engeai-sub007/internal/db"
	"github.com/ubc/tlef-engeai-sub007/internal/panel"
	"github.com/ubc/tlef-engeai-sub007/internal/server"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the EngE-AI HTTP server",
	Long:  `Starts the EngE-AI server with the message rendering API, artefact lifecycle routes, a WebSocket streaming endpoint, and confidence-check recording.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		if serverPort != 0 {
			cfg.Port = serverPort
		}

		deps := buildPipelineDeps(cfg)

		// Open database.
		database, err := db.Open(dbPath(cfg))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		confStore := confidence.NewStore(database, confidence.LogCompletion(deps.logger))

		// The panel lifecycle runs against a headless surface; the
		// API's open/close/toggle routes drive it.
		surface := panel.NewSurface(0, 0)
		controller := panel.NewController(deps.registry, deps.renderer, []panel.Host{surface}, panel.Config{
			Timings: panel.Timings{
				VisibilityTimeout: cfg.VisibilityTimeout(),
				PollInterval:      cfg.VisibilityPoll(),
				CloseDelay:        cfg.CloseAnimation(),
			},
			MinZoom: cfg.Viewport.MinZoom,
			MaxZoom: cfg.Viewport.MaxZoom,
		}, deps.logger)

		if cfg.DemoArtifact {
			deps.registry.Open(artifact.DemoID)
			deps.registry.Close()
		}

		// Check for the diagram engine without blocking startup.
		availCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		rendererLoaded := deps.renderer.Available(availCtx, cfg.VisibilityPoll())
		cancel()
		if !rendererLoaded {
			fmt.Fprintf(os.Stderr, "Warning: mermaid renderer %q not found; exports will be unavailable\n", cfg.MermaidCLI)
		}

		srv := server.New(server.Config{
			Port:           cfg.Port,
			AllowAll:       cfg.CORS.AllowAll,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
		}, database, deps.registry, controller, deps.pipeline, deps.renderer, deps.exporter, confStore, deps.logger)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "engeai server v%s starting on port %d\n", Version, cfg.Port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", dbPath(cfg))
		fmt.Fprintf(os.Stderr, "  Downloads: %s\n", cfg.DownloadsDir)
		fmt.Fprintf(os.Stderr, "  Diagram renderer: %s (found=%t)\n", cfg.MermaidCLI, rendererLoaded)

		return srv.Start()
	},
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serverCmd)
}
