package shared

import (
	"sync"
	"testing"

	"github.com/morim3/mcp-adobe-premiere/shared/mcp/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSendResponse_DeliversToOutput(t *testing.T) {
	s := NewBaseSession(zap.NewNop(), nil, nil)
	s.SetStatus(StatusConnected)

	output, acquired := s.AcquireOutput()
	require.True(t, acquired)
	defer s.ReleaseOutput()

	id := schema.RequestID_FromString("resp-1")
	s.SendResponse(&id, map[string]any{"ok": true}, nil)

	msg := <-output
	require.NotNil(t, msg.ID)
	assert.Equal(t, "resp-1", msg.ID.String())
	require.NotNil(t, msg.Result)
	assert.JSONEq(t, `{"ok":true}`, string(*msg.Result))
}

func TestSendResponse_AfterClose(t *testing.T) {
	s := NewBaseSession(zap.NewNop(), nil, nil)
	s.SetStatus(StatusConnected)
	require.NoError(t, s.Close())

	// Must return silently, not panic on the closed channel.
	id := schema.RequestID_FromString("late-1")
	s.SendResponse(&id, map[string]any{"ok": true}, nil)
}

func TestSendResponse_ConcurrentClose(t *testing.T) {
	s := NewBaseSession(zap.NewNop(), nil, nil)
	s.SetStatus(StatusConnected)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 32; i++ {
		wg.Add(1)
		id := schema.RequestID_FromUInt64(uint64(i + 1))
		go func(id schema.RequestID) {
			defer wg.Done()
			<-start
			s.SendResponse(&id, map[string]any{"ok": true}, nil)
		}(id)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-start
		_ = s.Close()
	}()

	close(start)
	wg.Wait()
}
