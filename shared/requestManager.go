package shared

import (
	"sync"
	"time"

	"github.com/morim3/mcp-adobe-premiere/shared/mcp/schema"
	"go.uber.org/zap"
)

// RequestCallback is a function that handles response messages.
type RequestCallback func(msg *Message)

// Request holds information about a sent request.
type Request struct {
	Callback  RequestCallback
	Timestamp time.Time
}

// RequestManager correlates outgoing requests with their responses by ID.
type RequestManager struct {
	requests map[string]Request
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewRequestManager creates a new RequestManager instance.
func NewRequestManager(logger *zap.Logger) *RequestManager {
	return &RequestManager{
		requests: make(map[string]Request),
		logger:   logger,
	}
}

// RegisterRequest registers a request with its callback for later processing.
func (rm *RequestManager) RegisterRequest(id *schema.RequestID, callback RequestCallback) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.requests[id.String()] = Request{
		Callback:  callback,
		Timestamp: time.Now(),
	}
	rm.logger.Debug("RegisterRequest", zap.String("message_id", id.String()), zap.Int("requests_len", len(rm.requests)))
}

// CancelRequest removes a pending request without invoking its callback.
// Returns true if the request was still pending.
func (rm *RequestManager) CancelRequest(id *schema.RequestID) bool {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if _, exists := rm.requests[id.String()]; !exists {
		return false
	}
	delete(rm.requests, id.String())
	rm.logger.Debug("CancelRequest", zap.String("message_id", id.String()), zap.Int("requests_len", len(rm.requests)))
	return true
}

// ProcessResponse processes a response message by invoking its callback if available.
// Returns true if a callback was found and invoked.
func (rm *RequestManager) ProcessResponse(msg *Message) bool {
	if msg.ID == nil {
		rm.logger.Error("No message ID found")
		return false
	}

	// Claim the entry under the write lock before invoking the callback so a
	// duplicated response ID can never invoke it twice.
	rm.mu.Lock()
	request, exists := rm.requests[msg.ID.String()]
	if exists {
		delete(rm.requests, msg.ID.String())
	}
	rm.mu.Unlock()

	if !exists || request.Callback == nil {
		rm.logger.Error("No callback found for message", zap.String("message_id", msg.ID.String()))
		return false
	}

	request.Callback(msg)
	msg.Processed = true
	rm.logger.Debug("callback found, called, and deleted", zap.String("message_id", msg.ID.String()))

	return true
}
