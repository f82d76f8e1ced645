package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ubc/tlef-engeai-sub007/internal/artifact"
	"github.com/ubc/tlef-engeai-sub007/internal/diagrams"
)

// handleRenderMessage runs the full pipeline over a message.
func (s *Server) handleRenderMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: text"), nil
	}

	messageID := request.GetString("message_id", "")
	if messageID == "" {
		messageID = uuid.NewString()
	}

	html, err := s.pipeline.RenderText(text, messageID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("rendering failed: %v", err)), nil
	}

	artifacts := s.registry.ByMessage(messageID)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Message %s rendered with %d artefact(s).\n", messageID, len(artifacts)))
	for _, a := range artifacts {
		sb.WriteString(fmt.Sprintf("  - %s\n", a.ID))
	}
	sb.WriteString("\n")
	sb.WriteString(html)
	return mcp.NewToolResultText(sb.String()), nil
}

// handleNormalizeDiagram repairs Mermaid source without touching the registry.
func (s *Server) handleNormalizeDiagram(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := request.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: source"), nil
	}

	return mcp.NewToolResultText(diagrams.Normalize(source)), nil
}

// handleListArtifacts lists registered artefacts, optionally per message.
func (s *Server) handleListArtifacts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var artifacts []*artifact.Artifact
	if messageID := request.GetString("message_id", ""); messageID != "" {
		artifacts = s.registry.ByMessage(messageID)
	} else {
		artifacts = s.registry.All()
	}

	if len(artifacts) == 0 {
		return mcp.NewToolResultText("No artefacts registered. Render a message containing <Artefact> blocks first."), nil
	}

	return mcp.NewToolResultText(formatArtifacts(artifacts)), nil
}

// handleExportDiagram renders an artefact and writes it to disk.
func (s *Server) handleExportDiagram(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("artefact_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: artefact_id"), nil
	}

	a, err := s.registry.Get(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("no artefact with id %q", id)), nil
	}

	if s.renderer == nil || s.exporter == nil {
		return mcp.NewToolResultError("export is not available: no diagram renderer configured"), nil
	}

	svg, err := s.renderer.Render(ctx, a.SourceCode)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("diagram rendering failed: %v", err)), nil
	}

	path, err := s.exporter.Export(svg, a.ID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("export failed: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Exported %s to %s", a.ID, path)), nil
}

// formatArtifacts converts artefacts into a rich text listing optimized
// for AI agent consumption.
func formatArtifacts(artifacts []*artifact.Artifact) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d artefact(s):\n", len(artifacts)))

	for i, a := range artifacts {
		sb.WriteString(fmt.Sprintf("\n--- Artefact %d ---\n", i+1))
		sb.WriteString(fmt.Sprintf("ID: %s\n", a.ID))
		sb.WriteString(fmt.Sprintf("Message: %s\n", a.MessageID))
		sb.WriteString(fmt.Sprintf("Open: %t\n", a.IsOpen))
		if a.Streaming {
			sb.WriteString("Detected: mid-stream\n")
		}
		sb.WriteString("\n")
		sb.WriteString(a.SourceCode)
		sb.WriteString("\n")
	}

	return sb.String()
}
