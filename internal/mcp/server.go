package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ubc/tlef-engeai-sub007/internal/artifact"
	"github.com/ubc/tlef-engeai-sub007/internal/diagrams"
	"github.com/ubc/tlef-engeai-sub007/internal/export"
	"github.com/ubc/tlef-engeai-sub007/internal/pipeline"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes the message pipeline and
// artifact registry as tools.
type Server struct {
	registry *artifact.Registry
	pipeline *pipeline.Renderer
	renderer diagrams.Renderer
	exporter *export.Exporter
	mcp      *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
// renderer and exporter may be nil; the export tool then reports the
// missing capability instead of failing at startup.
func NewServer(registry *artifact.Registry, pipe *pipeline.Renderer, renderer diagrams.Renderer, exporter *export.Exporter) *Server {
	s := &Server{
		registry: registry,
		pipeline: pipe,
		renderer: renderer,
		exporter: exporter,
	}

	s.mcp = server.NewMCPServer(
		"engeai",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(renderMessageTool, s.handleRenderMessage)
	s.mcp.AddTool(normalizeDiagramTool, s.handleNormalizeDiagram)
	s.mcp.AddTool(listArtifactsTool, s.handleListArtifacts)
	s.mcp.AddTool(exportDiagramTool, s.handleExportDiagram)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
