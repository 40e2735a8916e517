package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/morim3/mcp-adobe-premiere/shared"
	"github.com/morim3/mcp-adobe-premiere/shared/config"
	"github.com/morim3/mcp-adobe-premiere/shared/mcp/schema"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024 * 1024 // Import results can list many clips
)

// ErrNoPanel is returned when an instruction is sent while no panel is
// attached to the bridge.
var ErrNoPanel = errors.New("no panel connected")

// Bridge accepts a WebSocket connection from the in-host panel and relays
// instructions to it. Only one panel is active at a time; a newly connected
// panel replaces the previous one.
type Bridge struct {
	logger         *zap.Logger
	cfg            config.IConfig
	requestManager *shared.RequestManager
	upgrader       websocket.Upgrader

	mu    sync.RWMutex
	panel *panelConn
}

type panelConn struct {
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func (p *panelConn) close() {
	p.closeOnce.Do(func() {
		close(p.done)
		p.conn.Close()
	})
}

func New(logger *zap.Logger, cfg config.IConfig) *Bridge {
	bridgeLogger := logger.Named("bridge")
	return &Bridge{
		logger:         bridgeLogger,
		cfg:            cfg,
		requestManager: shared.NewRequestManager(bridgeLogger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The panel runs inside Premiere on the same machine; CEP sends
			// a file:// or null origin that the default check rejects.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Start runs the bridge WebSocket listener on its own address. The listener
// is plain HTTP; the panel connects from the local machine.
func (b *Bridge) Start(ctx context.Context) (<-chan error, error) {
	listenAddr, err := b.cfg.BridgeListenAddr()
	if err != nil {
		return nil, fmt.Errorf("failed to get bridge listen address: %w", err)
	}
	path, err := b.cfg.BridgePath()
	if err != nil {
		return nil, fmt.Errorf("failed to get bridge path: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle(path, b)

	server := &http.Server{
		Addr:        listenAddr,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 90 * time.Second,
	}

	listenerErrChan := make(chan error, 1)
	go func() {
		defer close(listenerErrChan)
		b.logger.Info("Starting panel bridge listener",
			zap.String("addr", listenAddr),
			zap.String("path", path),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			b.logger.Error("Panel bridge listener error", zap.Error(err))
			listenerErrChan <- err
		}
	}()

	go func() {
		<-ctx.Done()
		b.logger.Info("Shutting down panel bridge")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		b.Close()
		if err := server.Shutdown(shutdownCtx); err != nil {
			b.logger.Error("Panel bridge shutdown failed", zap.Error(err))
		}
	}()

	return listenerErrChan, nil
}

// PanelConnected reports whether a panel is currently attached.
func (b *Bridge) PanelConnected() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.panel != nil
}

// Close detaches the current panel, if any.
func (b *Bridge) Close() {
	b.mu.Lock()
	panel := b.panel
	b.panel = nil
	b.mu.Unlock()
	if panel != nil {
		panel.close()
	}
}

// ServeHTTP upgrades an incoming panel connection. The bridge itself is the
// handler for the configured panel path.
func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Warn("Panel WebSocket upgrade failed", zap.String("remoteAddr", r.RemoteAddr), zap.Error(err))
		return
	}

	panel := &panelConn{
		conn: conn,
		send: make(chan []byte, 16),
		done: make(chan struct{}),
	}

	b.mu.Lock()
	previous := b.panel
	b.panel = panel
	b.mu.Unlock()

	if previous != nil {
		b.logger.Info("New panel connected, replacing previous connection",
			zap.String("remoteAddr", r.RemoteAddr))
		previous.close()
	} else {
		b.logger.Info("Panel connected", zap.String("remoteAddr", r.RemoteAddr))
	}

	go b.writePump(panel)
	go b.readPump(panel)
}

// readPump consumes panel responses and hands them to the request manager.
// Responses with unknown correlation IDs are discarded.
func (b *Bridge) readPump(panel *panelConn) {
	defer b.detach(panel)

	panel.conn.SetReadLimit(maxMessageSize)
	_ = panel.conn.SetReadDeadline(time.Now().Add(pongWait))
	panel.conn.SetPongHandler(func(string) error {
		return panel.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := panel.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				b.logger.Warn("Panel connection closed unexpectedly", zap.Error(err))
			} else {
				b.logger.Info("Panel disconnected")
			}
			return
		}

		var resp PanelResponse
		if err := codec.Unmarshal(message, &resp); err != nil {
			b.logger.Warn("Failed to parse panel response", zap.Error(err), zap.ByteString("message", message))
			continue
		}
		if resp.ID == "" {
			b.logger.Warn("Panel response missing correlation ID", zap.ByteString("message", message))
			continue
		}

		id := schema.RequestID_FromString(resp.ID)
		msg := &shared.Message{
			ID:        &id,
			Timestamp: time.Now(),
		}
		if resp.Success {
			result := resp.Result
			if result == nil {
				result = json.RawMessage("null")
			}
			msg.Result = &result
		} else {
			errMsg := resp.Error
			if errMsg == "" {
				errMsg = "panel reported failure without a message"
			}
			msg.Error = &shared.JSONRPCError{Code: shared.JSONRPCErrorInternal, Message: errMsg}
		}

		if !b.requestManager.ProcessResponse(msg) {
			b.logger.Debug("Discarding panel response with unknown correlation ID",
				zap.String("correlationId", resp.ID))
		}
	}
}

func (b *Bridge) writePump(panel *panelConn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		b.detach(panel)
	}()

	for {
		select {
		case payload, ok := <-panel.send:
			if !ok {
				return
			}
			_ = panel.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := panel.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				b.logger.Warn("Failed to write instruction to panel", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = panel.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := panel.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-panel.done:
			return
		}
	}
}

// detach closes the connection and clears it from the bridge if it is still
// the active one.
func (b *Bridge) detach(panel *panelConn) {
	panel.close()
	b.mu.Lock()
	if b.panel == panel {
		b.panel = nil
	}
	b.mu.Unlock()
}

// SendInstruction relays an instruction to the connected panel and waits for
// its response. A panel-reported failure, a missing panel, and a response
// timeout all surface as errors; the caller decides how to present them.
func (b *Bridge) SendInstruction(ctx context.Context, action string, data interface{}) (json.RawMessage, error) {
	b.mu.RLock()
	panel := b.panel
	b.mu.RUnlock()
	if panel == nil {
		return nil, ErrNoPanel
	}

	correlationID := uuid.NewString()
	instruction := Instruction{
		ID:     correlationID,
		Action: action,
		Data:   data,
	}
	payload, err := codec.Marshal(&instruction)
	if err != nil {
		return nil, fmt.Errorf("failed to encode instruction: %w", err)
	}

	timeout, err := b.cfg.BridgeResponseTimeout()
	if err != nil {
		timeout = config.DefaultBridgeResponseTimeout
	}

	// Register before writing so a fast panel cannot respond into a void.
	responseChan := make(chan *shared.Message, 1)
	requestID := schema.RequestID_FromString(correlationID)
	b.requestManager.RegisterRequest(&requestID, func(msg *shared.Message) {
		responseChan <- msg
	})

	logger := b.logger.With(zap.String("action", action), zap.String("correlationId", correlationID))

	select {
	case panel.send <- payload:
	case <-panel.done:
		b.requestManager.CancelRequest(&requestID)
		return nil, ErrNoPanel
	case <-ctx.Done():
		b.requestManager.CancelRequest(&requestID)
		return nil, ctx.Err()
	}

	logger.Debug("Instruction sent to panel")

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-responseChan:
		if msg.Error != nil {
			logger.Debug("Panel reported failure", zap.String("error", msg.Error.Message))
			return nil, errors.New(msg.Error.Message)
		}
		var result json.RawMessage
		if msg.Result != nil {
			result = *msg.Result
		}
		return result, nil
	case <-panel.done:
		b.requestManager.CancelRequest(&requestID)
		return nil, errors.New("panel disconnected while waiting for response")
	case <-ctx.Done():
		b.requestManager.CancelRequest(&requestID)
		return nil, ctx.Err()
	case <-timer.C:
		b.requestManager.CancelRequest(&requestID)
		logger.Warn("Timed out waiting for panel response", zap.Duration("timeout", timeout))
		return nil, fmt.Errorf("panel did not respond within %s", timeout)
	}
}
