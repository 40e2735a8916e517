package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/morim3/mcp-adobe-premiere/bridge"
	"github.com/morim3/mcp-adobe-premiere/premiere"
	"github.com/morim3/mcp-adobe-premiere/server"
	"github.com/morim3/mcp-adobe-premiere/shared/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	loggerConfig := zap.NewProductionConfig()
	loggerConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := loggerConfig.Build()
	defer logger.Sync()

	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	listenAddr := flag.String("listen", "", "Override the MCP listen address")
	bridgeAddr := flag.String("bridge", "", "Override the panel bridge listen address")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Configuration ---
	var cfg config.IConfig
	if *configPath != "" {
		yamlCfg, err := config.NewYamlConfig(*configPath, logger)
		if err != nil {
			logger.Fatal("Failed to load config", zap.String("path", *configPath), zap.Error(err))
		}
		if err := config.WatchYamlConfig(ctx, yamlCfg, logger); err != nil {
			logger.Warn("Config hot reload unavailable", zap.Error(err))
		}
		cfg = yamlCfg
	} else {
		// No config file: local single-user setup, no authentication.
		internalCfg := config.NewInternalConfig()
		internalCfg.AuthorizationTypeValue = config.NotAuthorizedEverywhere
		cfg = internalCfg
	}
	defer cfg.Close()

	if *bridgeAddr != "" {
		if internalCfg, ok := cfg.(*config.InternalConfig); ok {
			internalCfg.SetBridgeListenAddr(*bridgeAddr)
		} else {
			logger.Warn("Bridge address override is only supported without a config file")
		}
	}

	// --- Panel bridge ---
	panelBridge := bridge.New(logger, cfg)
	bridgeErrChan, err := panelBridge.Start(ctx)
	if err != nil {
		logger.Fatal("Failed to start panel bridge", zap.Error(err))
	}

	// --- MCP server ---
	tools := premiere.NewTools(panelBridge, logger)
	serverOptions := append(
		[]server.ServerOption{
			server.WithListenAddr(*listenAddr),
			server.WithPanelReporter(panelBridge),
		},
		tools.ServerOptions()...,
	)

	errChan, startErr := server.Start(ctx, logger, cfg, serverOptions...)
	if startErr != nil {
		logger.Fatal("Failed to start server", zap.Error(startErr))
	}

	// --- Graceful shutdown ---
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-signalCh:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server listener error", zap.Error(err))
		}
		cancel()
	case err := <-bridgeErrChan:
		if err != nil {
			logger.Error("Panel bridge listener error", zap.Error(err))
		}
		cancel()
	case <-ctx.Done():
	}

	// Give the shutdown goroutines a moment to close sessions and listeners.
	time.Sleep(2 * time.Second)
	logger.Info("Exited")
}
