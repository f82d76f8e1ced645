package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ubc/tlef-engeai-sub007/internal/config"
	mcpserver "github.com/ubc/tlef-engeai-sub007/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing the message pipeline and artefact registry as tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		deps := buildPipelineDeps(cfg)

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "engeai MCP server started on stdio (downloads=%s)\n", cfg.DownloadsDir)

		srv := mcpserver.NewServer(deps.registry, deps.pipeline, deps.renderer, deps.exporter)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
