package panel

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	backoff "gopkg.in/cenkalti/backoff.v1"
)

const (
	clientWriteWait = 10 * time.Second
	clientPongWait  = 60 * time.Second
)

// instructionFrame mirrors the bridge's instruction with the data kept raw
// until the matched handler decodes it.
type instructionFrame struct {
	ID     string          `json:"id"`
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// Client maintains the persistent connection from the panel to the bridge.
// It reconnects with exponential backoff and serves instructions until the
// context is cancelled.
type Client struct {
	url        string
	dispatcher *Dispatcher
	logger     *zap.Logger
}

func NewClient(url string, dispatcher *Dispatcher, logger *zap.Logger) *Client {
	return &Client{
		url:        url,
		dispatcher: dispatcher,
		logger:     logger.Named("panel"),
	}
}

// Run connects to the bridge and serves instructions until ctx is cancelled.
// Connection loss triggers a reconnect; the backoff resets after a
// connection survives long enough to be considered established.
func (c *Client) Run(ctx context.Context) error {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.MaxElapsedTime = 0 // retry until cancelled
	expBackoff.MaxInterval = 30 * time.Second

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
		if err != nil {
			wait := expBackoff.NextBackOff()
			c.logger.Warn("Failed to connect to bridge, will retry",
				zap.String("url", c.url),
				zap.Duration("retryIn", wait),
				zap.Error(err),
			)
			select {
			case <-time.After(wait):
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		c.logger.Info("Connected to bridge", zap.String("url", c.url))
		connectedAt := time.Now()

		err = c.serve(ctx, conn)
		conn.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if time.Since(connectedAt) > time.Minute {
			expBackoff.Reset()
		}
		c.logger.Warn("Bridge connection lost, reconnecting", zap.Error(err))
	}
}

// serve reads instructions and writes responses until the connection fails.
// Each instruction runs in its own goroutine; a write mutex serializes the
// responses.
func (c *Client) serve(ctx context.Context, conn *websocket.Conn) error {
	var writeMu sync.Mutex
	writeResponse := func(payload []byte) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(clientWriteWait))
		return conn.WriteMessage(websocket.TextMessage, payload)
	}

	_ = conn.SetReadDeadline(time.Now().Add(clientPongWait))
	conn.SetPingHandler(func(appData string) error {
		_ = conn.SetReadDeadline(time.Now().Add(clientPongWait))
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(clientWriteWait))
		return conn.WriteMessage(websocket.PongMessage, []byte(appData))
	})

	// Unblock the read loop when the context is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		_ = conn.SetReadDeadline(time.Now().Add(clientPongWait))

		var frame instructionFrame
		if err := codec.Unmarshal(message, &frame); err != nil {
			c.logger.Warn("Failed to parse instruction", zap.Error(err), zap.ByteString("message", message))
			continue
		}
		if frame.ID == "" || frame.Action == "" {
			c.logger.Warn("Instruction missing id or action", zap.ByteString("message", message))
			continue
		}

		go func(frame instructionFrame) {
			resp := c.dispatcher.Dispatch(frame.ID, frame.Action, frame.Data)
			payload, err := codec.Marshal(&resp)
			if err != nil {
				c.logger.Error("Failed to encode response", zap.String("action", frame.Action), zap.Error(err))
				return
			}
			if err := writeResponse(payload); err != nil {
				c.logger.Warn("Failed to write response", zap.String("action", frame.Action), zap.Error(err))
			}
		}(frame)
	}
}
