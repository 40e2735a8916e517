package server

import (
	"github.com/morim3/mcp-adobe-premiere/server/extra"
	"github.com/morim3/mcp-adobe-premiere/server/mcp/capability"
	"github.com/morim3/mcp-adobe-premiere/shared/mcp/schema"
)

// WithMCPTool is a server option to add an MCP tool.
func WithMCPTool(name string, description string, inputSchema *schema.JSONSchemaProperty, annotations *schema.ToolAnnotations, handler capability.ToolHandler) ServerOption {
	return func(b *ServerBuilder) error {
		toolsCap, err := b.EnsureToolsCapability()
		if err != nil {
			return err
		}
		return toolsCap.AddTool(name, description, inputSchema, annotations, handler)
	}
}

// WithPanelReporter wires the panel bridge into the /status endpoint so it can
// report whether a Premiere panel is attached.
func WithPanelReporter(reporter extra.PanelReporter) ServerOption {
	return func(b *ServerBuilder) error {
		b.panelReporter = reporter
		return nil
	}
}
