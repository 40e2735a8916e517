package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/morim3/mcp-adobe-premiere/panel"
	"github.com/morim3/mcp-adobe-premiere/panel/host"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// premiere-panel runs the relay client with the in-memory host simulator.
// It stands in for the real in-application panel during development.
func main() {
	loggerConfig := zap.NewProductionConfig()
	loggerConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := loggerConfig.Build()
	defer logger.Sync()

	bridgeURL := flag.String("bridge", "ws://localhost:8765/panel", "Bridge WebSocket URL")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		signalCh := make(chan os.Signal, 1)
		signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-signalCh
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	dispatcher := panel.NewDispatcher(host.NewSimulator(), logger)
	client := panel.NewClient(*bridgeURL, dispatcher, logger)

	logger.Info("Starting panel agent", zap.String("bridge", *bridgeURL))
	if err := client.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("Panel agent stopped", zap.Error(err))
	}
	logger.Info("Exited")
}
