package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/morim3/mcp-adobe-premiere/server/extra"
	"github.com/morim3/mcp-adobe-premiere/server/mcp"
	"github.com/morim3/mcp-adobe-premiere/server/mcp/validators"
	"github.com/morim3/mcp-adobe-premiere/server/transport"
	"github.com/morim3/mcp-adobe-premiere/shared"
	"github.com/morim3/mcp-adobe-premiere/shared/config"
	"go.uber.org/zap"
)

// Start starts the MCP HTTP server with the provided options.
// It returns a listener error channel; the server shuts down when ctx is
// cancelled.
func Start(ctx context.Context, logger *zap.Logger, cfg config.IConfig, options ...ServerOption) (<-chan error, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	listenAddr, err := cfg.ListenAddr()
	if err != nil {
		return nil, fmt.Errorf("failed to get listen address: %w", err)
	}

	sessionManager, err := mcp.NewManager(logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create session manager: %w", err)
	}

	transportInstance, err := transport.New(sessionManager, logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	builder := &ServerBuilder{
		ctx:          ctx,
		logger:       logger,
		cfg:          cfg,
		listenAddr:   listenAddr,
		manager:      sessionManager,
		transport:    transportInstance,
		mux:          http.NewServeMux(),
		capabilities: make([]shared.IServerCapability, 0),
	}

	for _, option := range options {
		if err := option(builder); err != nil {
			return nil, fmt.Errorf("failed to apply server option: %w", err)
		}
	}

	sessionManager.AddValidator(validators.CreateDefaultValidators()...)

	if len(builder.capabilities) > 0 {
		logger.Info("Registering capabilities with session manager", zap.Int("count", len(builder.capabilities)))
		builder.manager.AddCapability(builder.capabilities...)
	} else {
		logger.Info("No capabilities registered")
	}

	builder.transport.RegisterMCPHandlers(builder.mux)

	logger.Info("Registering status handler", zap.String("path", "/status"))
	builder.mux.HandleFunc("/status", extra.StatusHandler(cfg, builder.panelReporter, logger))

	serverInstance, listenerErrChan, startErr := transport.StartHTTPServer(
		ctx,
		logger,
		cfg,
		builder.mux,
		builder.listenAddr,
	)
	if startErr != nil {
		return nil, fmt.Errorf("failed to start HTTP server: %w", startErr)
	}

	go func() {
		select {
		case err, ok := <-listenerErrChan:
			if ok && err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Server listener failed", zap.Error(err))
			}
		case <-ctx.Done():
			logger.Info("Shutdown signal received, stopping server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			sessionManager.CloseAllSessions()
			transport.ShutdownHTTPServer(shutdownCtx, logger, serverInstance)
			logger.Info("Server stopped")
		}
	}()

	return listenerErrChan, nil
}

// WithListenAddr overrides the listen address from the config.
func WithListenAddr(addr string) ServerOption {
	return func(b *ServerBuilder) error {
		if addr != "" {
			b.listenAddr = addr
			b.logger.Info("Overriding listen address", zap.String("newAddress", addr))
		}
		return nil
	}
}

// WithSessionTimeout configures the idle session timeout.
func WithSessionTimeout(timeout time.Duration) ServerOption {
	return func(b *ServerBuilder) error {
		if b.transport == nil {
			return errors.New("transport not initialized in builder")
		}
		return transport.WithSessionTimeout(timeout)(b.transport)
	}
}
