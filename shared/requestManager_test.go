package shared

import (
	"sync/atomic"
	"testing"

	"github.com/morim3/mcp-adobe-premiere/shared/mcp/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRequestManager_ProcessResponse(t *testing.T) {
	rm := NewRequestManager(zap.NewNop())

	id := schema.RequestID_FromString("req-1")
	var received *Message
	rm.RegisterRequest(&id, func(msg *Message) {
		received = msg
	})

	msg := &Message{ID: &id}
	require.True(t, rm.ProcessResponse(msg))
	assert.Same(t, msg, received)
	assert.True(t, msg.Processed)

	// The entry is removed after the callback fires.
	assert.False(t, rm.ProcessResponse(&Message{ID: &id}))
}

func TestRequestManager_UnknownID(t *testing.T) {
	rm := NewRequestManager(zap.NewNop())

	id := schema.RequestID_FromString("never-registered")
	assert.False(t, rm.ProcessResponse(&Message{ID: &id}))
	assert.False(t, rm.ProcessResponse(&Message{}))
}

func TestRequestManager_CancelRequest(t *testing.T) {
	rm := NewRequestManager(zap.NewNop())

	id := schema.RequestID_FromString("req-2")
	called := false
	rm.RegisterRequest(&id, func(msg *Message) {
		called = true
	})

	require.True(t, rm.CancelRequest(&id))
	assert.False(t, rm.CancelRequest(&id))

	// A late response after cancellation must not invoke the callback.
	assert.False(t, rm.ProcessResponse(&Message{ID: &id}))
	assert.False(t, called)
}

func TestRequestManager_DuplicateResponseInvokesCallbackOnce(t *testing.T) {
	rm := NewRequestManager(zap.NewNop())

	id := schema.RequestID_FromString("dup-1")
	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})
	rm.RegisterRequest(&id, func(*Message) {
		atomic.AddInt32(&calls, 1)
		close(started)
		<-release
	})

	results := make(chan bool, 2)
	go func() { results <- rm.ProcessResponse(&Message{ID: &id}) }()
	<-started

	// A duplicated ID arriving while the callback is still running must not
	// invoke it a second time; the entry is claimed before the callback fires.
	go func() { results <- rm.ProcessResponse(&Message{ID: &id}) }()
	first := <-results
	assert.False(t, first)

	close(release)
	assert.True(t, <-results)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRequestManager_NumericAndStringIDsDoNotCollide(t *testing.T) {
	rm := NewRequestManager(zap.NewNop())

	numID := schema.RequestID_FromUInt64(7)
	strID := schema.RequestID_FromString("7")

	var numCalled, strCalled bool
	rm.RegisterRequest(&numID, func(*Message) { numCalled = true })
	rm.RegisterRequest(&strID, func(*Message) { strCalled = true })

	require.True(t, rm.ProcessResponse(&Message{ID: &numID}))
	assert.True(t, numCalled)
	assert.False(t, strCalled)

	require.True(t, rm.ProcessResponse(&Message{ID: &strID}))
	assert.True(t, strCalled)
}
