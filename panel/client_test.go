package panel

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/morim3/mcp-adobe-premiere/bridge"
	"github.com/morim3/mcp-adobe-premiere/panel/host"
	"github.com/morim3/mcp-adobe-premiere/shared/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// startRelay wires a real bridge to a real client over a test listener and
// returns the bridge for sending instructions.
func startRelay(t *testing.T) *bridge.Bridge {
	t.Helper()

	cfg := config.NewInternalConfig()
	b := bridge.New(zap.NewNop(), cfg)
	srv := httptest.NewServer(b)

	ctx, cancel := context.WithCancel(context.Background())

	dispatcher := NewDispatcher(host.NewSimulator(), zap.NewNop())
	client := NewClient("ws"+strings.TrimPrefix(srv.URL, "http"), dispatcher, zap.NewNop())

	clientDone := make(chan struct{})
	go func() {
		defer close(clientDone)
		_ = client.Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case <-clientDone:
		case <-time.After(2 * time.Second):
			t.Error("panel client did not stop")
		}
		b.Close()
		srv.Close()
	})

	require.Eventually(t, b.PanelConnected, 2*time.Second, 10*time.Millisecond)
	return b
}

func TestRelay_EndToEnd(t *testing.T) {
	b := startRelay(t)
	ctx := context.Background()

	// No project yet: the host error comes back as an instruction failure.
	_, err := b.SendInstruction(ctx, "getActiveProject", nil)
	require.Error(t, err)
	assert.Equal(t, host.ErrNoProject.Error(), err.Error())

	result, err := b.SendInstruction(ctx, "createProject", map[string]interface{}{"path": "/work/demo.prproj"})
	require.NoError(t, err)

	var project host.Project
	require.NoError(t, json.Unmarshal(result, &project))
	assert.Equal(t, "demo", project.Name)

	result, err = b.SendInstruction(ctx, "createSequence", map[string]interface{}{"name": "main"})
	require.NoError(t, err)

	var sequence host.Sequence
	require.NoError(t, json.Unmarshal(result, &sequence))
	assert.Equal(t, "main", sequence.Name)

	result, err = b.SendInstruction(ctx, "getSequenceList", nil)
	require.NoError(t, err)
	assert.Contains(t, string(result), "main")

	_, err = b.SendInstruction(ctx, "definitelyNotAnAction", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown action")
}

func TestRelay_ConcurrentInstructions(t *testing.T) {
	b := startRelay(t)
	ctx := context.Background()

	_, err := b.SendInstruction(ctx, "createProject", map[string]interface{}{"path": "/work/demo.prproj"})
	require.NoError(t, err)

	// Several instructions in flight at once; each response must land on its
	// own caller.
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func() {
			_, err := b.SendInstruction(ctx, "getActiveProject", nil)
			errs <- err
		}()
	}
	for i := 0; i < 10; i++ {
		assert.NoError(t, <-errs)
	}
}

func TestClient_ReconnectsAfterDrop(t *testing.T) {
	cfg := config.NewInternalConfig()
	b := bridge.New(zap.NewNop(), cfg)
	srv := httptest.NewServer(b)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher := NewDispatcher(host.NewSimulator(), zap.NewNop())
	client := NewClient("ws"+strings.TrimPrefix(srv.URL, "http"), dispatcher, zap.NewNop())

	clientDone := make(chan struct{})
	go func() {
		defer close(clientDone)
		_ = client.Run(ctx)
	}()
	defer func() {
		cancel()
		<-clientDone
		b.Close()
	}()

	require.Eventually(t, b.PanelConnected, 2*time.Second, 10*time.Millisecond)

	// Drop the panel from the bridge side; the client must dial back in.
	b.Close()
	require.Eventually(t, b.PanelConnected, 5*time.Second, 10*time.Millisecond)

	_, err := b.SendInstruction(context.Background(), "createProject", map[string]interface{}{"path": "/work/x.prproj"})
	assert.NoError(t, err)
}
