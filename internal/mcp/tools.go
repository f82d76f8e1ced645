package mcp

import "github.com/mark3labs/mcp-go/mcp"

// renderMessageTool defines the render_message MCP tool.
var renderMessageTool = mcp.NewTool("render_message",
	mcp.WithDescription("Render a tutor message through the full pipeline: artefact extraction, confidence checks, markdown and syntax highlighting. Returns the final HTML."),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("Raw message text, possibly containing <Artefact> blocks"),
	),
	mcp.WithString("message_id",
		mcp.Description("Stable message identifier; generated when omitted"),
	),
)

// normalizeDiagramTool defines the normalize_diagram MCP tool.
var normalizeDiagramTool = mcp.NewTool("normalize_diagram",
	mcp.WithDescription("Repair common Mermaid syntax problems in diagram source: unquoted labels with parentheses, flowcharts collapsed onto a single line."),
	mcp.WithString("source",
		mcp.Required(),
		mcp.Description("Mermaid diagram source"),
	),
)

// listArtifactsTool defines the list_artefacts MCP tool.
var listArtifactsTool = mcp.NewTool("list_artefacts",
	mcp.WithDescription("List extracted artefacts, optionally scoped to one message. Shows each artefact's id, open state and diagram source."),
	mcp.WithString("message_id",
		mcp.Description("Restrict the listing to artefacts of this message"),
	),
)

// exportDiagramTool defines the export_diagram MCP tool.
var exportDiagramTool = mcp.NewTool("export_diagram",
	mcp.WithDescription("Render an artefact's diagram and save it to the downloads directory. Produces PNG, falling back to standalone SVG when rasterization fails."),
	mcp.WithString("artefact_id",
		mcp.Required(),
		mcp.Description("Identifier of the artefact to export"),
	),
)
