package server

import (
	"context"
	"net/http"

	"github.com/morim3/mcp-adobe-premiere/server/extra"
	"github.com/morim3/mcp-adobe-premiere/server/mcp"
	"github.com/morim3/mcp-adobe-premiere/server/mcp/capability"
	"github.com/morim3/mcp-adobe-premiere/server/transport"
	"github.com/morim3/mcp-adobe-premiere/shared"
	"github.com/morim3/mcp-adobe-premiere/shared/config"
	"go.uber.org/zap"
)

type ServerBuilder struct {
	ctx          context.Context
	logger       *zap.Logger
	cfg          config.IConfig
	listenAddr   string
	manager      *mcp.Manager
	transport    *transport.Transport
	mux          *http.ServeMux
	capabilities []shared.IServerCapability

	// Capability instances (created lazily)
	baseCap  *capability.BaseCapability
	toolsCap *capability.ToolsCapability

	// Optional bridge status source for the /status endpoint
	panelReporter extra.PanelReporter
}

// EnsureMCPBaseCapability creates the BaseCapability if it doesn't exist.
func (b *ServerBuilder) EnsureMCPBaseCapability() error {
	if b.baseCap == nil {
		b.logger.Debug("Initializing BaseCapability")
		b.baseCap = capability.NewBase(b.logger, b.manager)
		b.capabilities = append(b.capabilities, b.baseCap)
	}
	return nil
}

// EnsureToolsCapability creates the ToolsCapability if it doesn't exist.
func (b *ServerBuilder) EnsureToolsCapability() (*capability.ToolsCapability, error) {
	if err := b.EnsureMCPBaseCapability(); err != nil {
		return nil, err
	}
	if b.toolsCap == nil {
		b.logger.Debug("Initializing ToolsCapability")
		b.toolsCap = capability.NewToolsCapability(b.manager, b.logger)
		b.capabilities = append(b.capabilities, b.toolsCap)
	}
	return b.toolsCap, nil
}

// ServerOption defines a function type for configuring the ServerBuilder.
type ServerOption func(*ServerBuilder) error
