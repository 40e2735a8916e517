package bridge

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/morim3/mcp-adobe-premiere/shared/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestBridge(t *testing.T, timeout time.Duration) (*Bridge, *httptest.Server) {
	t.Helper()
	cfg := config.NewInternalConfig()
	cfg.BridgeResponseTimeoutValue = timeout
	b := New(zap.NewNop(), cfg)
	srv := httptest.NewServer(b)
	t.Cleanup(func() {
		b.Close()
		srv.Close()
	})
	return b, srv
}

func dialPanel(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitConnected(t *testing.T, b *Bridge) {
	t.Helper()
	require.Eventually(t, b.PanelConnected, time.Second, 5*time.Millisecond)
}

// serveOne reads a single instruction from the fake panel connection and
// answers it with the handler's response.
func serveOne(t *testing.T, conn *websocket.Conn, handler func(Instruction) PanelResponse) {
	t.Helper()
	go func() {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var instr Instruction
		if err := codec.Unmarshal(message, &instr); err != nil {
			return
		}
		resp := handler(instr)
		payload, err := codec.Marshal(&resp)
		if err != nil {
			return
		}
		_ = conn.WriteMessage(websocket.TextMessage, payload)
	}()
}

func TestSendInstruction_NoPanel(t *testing.T) {
	b, _ := newTestBridge(t, time.Second)

	_, err := b.SendInstruction(context.Background(), "getActiveProject", nil)
	assert.ErrorIs(t, err, ErrNoPanel)
}

func TestSendInstruction_Success(t *testing.T) {
	b, srv := newTestBridge(t, time.Second)
	conn := dialPanel(t, srv)
	waitConnected(t, b)

	serveOne(t, conn, func(instr Instruction) PanelResponse {
		assert.Equal(t, "createProject", instr.Action)
		assert.NotEmpty(t, instr.ID)
		return PanelResponse{
			ID:      instr.ID,
			Success: true,
			Result:  json.RawMessage(`{"name":"demo"}`),
		}
	})

	result, err := b.SendInstruction(context.Background(), "createProject", map[string]interface{}{"path": "/tmp/demo.prproj"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"demo"}`, string(result))
}

func TestSendInstruction_PanelFailure(t *testing.T) {
	b, srv := newTestBridge(t, time.Second)
	conn := dialPanel(t, srv)
	waitConnected(t, b)

	serveOne(t, conn, func(instr Instruction) PanelResponse {
		return PanelResponse{ID: instr.ID, Error: "no project is open"}
	})

	_, err := b.SendInstruction(context.Background(), "saveProject", nil)
	require.Error(t, err)
	assert.Equal(t, "no project is open", err.Error())
}

func TestSendInstruction_Timeout(t *testing.T) {
	b, srv := newTestBridge(t, 50*time.Millisecond)
	_ = dialPanel(t, srv)
	waitConnected(t, b)

	// The panel never answers; the instruction stays unread in its socket.
	_, err := b.SendInstruction(context.Background(), "getActiveProject", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not respond")
}

func TestSendInstruction_UnknownCorrelationIDDiscarded(t *testing.T) {
	b, srv := newTestBridge(t, time.Second)
	conn := dialPanel(t, srv)
	waitConnected(t, b)

	serveOne(t, conn, func(instr Instruction) PanelResponse {
		// A stray response first; the bridge must discard it and keep waiting.
		stray, _ := codec.Marshal(&PanelResponse{ID: "not-a-known-id", Success: true})
		_ = conn.WriteMessage(websocket.TextMessage, stray)
		return PanelResponse{ID: instr.ID, Success: true, Result: json.RawMessage(`"ok"`)}
	})

	result, err := b.SendInstruction(context.Background(), "getActiveProject", nil)
	require.NoError(t, err)
	assert.Equal(t, `"ok"`, string(result))
}

func TestSendInstruction_ContextCancelled(t *testing.T) {
	b, srv := newTestBridge(t, time.Minute)
	_ = dialPanel(t, srv)
	waitConnected(t, b)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := b.SendInstruction(ctx, "getActiveProject", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLastConnectedPanelWins(t *testing.T) {
	b, srv := newTestBridge(t, time.Second)

	first := dialPanel(t, srv)
	waitConnected(t, b)

	second := dialPanel(t, srv)

	// The bridge closes the first connection when the second attaches.
	_ = first.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := first.ReadMessage()
	assert.Error(t, err)

	serveOne(t, second, func(instr Instruction) PanelResponse {
		return PanelResponse{ID: instr.ID, Success: true, Result: json.RawMessage(`"second"`)}
	})

	result, err := b.SendInstruction(context.Background(), "getActiveProject", nil)
	require.NoError(t, err)
	assert.Equal(t, `"second"`, string(result))
}

func TestPanelConnected(t *testing.T) {
	b, srv := newTestBridge(t, time.Second)
	assert.False(t, b.PanelConnected())

	conn := dialPanel(t, srv)
	waitConnected(t, b)

	conn.Close()
	require.Eventually(t, func() bool { return !b.PanelConnected() }, time.Second, 5*time.Millisecond)
}
