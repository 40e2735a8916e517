package transport

import (
	"io"
	"net/http"
	"time"

	"github.com/morim3/mcp-adobe-premiere/shared"
	"go.uber.org/zap"
)

// handlePOST processes incoming JSON-RPC messages. Responses to the requests
// carried by the POST are gathered from the session output and returned in the
// HTTP response body.
func (t *Transport) handlePOST(w http.ResponseWriter, r *http.Request, logger *zap.Logger) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Error("Failed to read request body", zap.Error(err))
		sendJSONRPCErrorResponse(w, nil, shared.JSONRPCErrorInternal, "Failed to read request body", nil, logger)
		return
	}
	defer r.Body.Close()

	// A session may be created only by an initialize request, so peek at the
	// methods before deciding whether getSession is allowed to create one.
	msgs, err := shared.ParseMessages(nil, body)
	if err != nil || len(msgs) == 0 {
		logger.Warn("Failed to parse JSON-RPC message(s)", zap.Error(err), zap.ByteString("body", body))
		sendJSONRPCErrorResponse(w, nil, shared.JSONRPCErrorParseError, "Parse error", nil, logger)
		return
	}

	containsInitialize := false
	for _, msg := range msgs {
		if msg.Method != nil && *msg.Method == "initialize" {
			containsInitialize = true
			break
		}
	}

	session, err := t.getSession(w, r, logger, containsInitialize)
	if err != nil {
		return // getSession already wrote the HTTP error
	}

	if containsInitialize {
		w.Header().Set(MCP_SESSION_HEADER, session.GetID())
	}

	// Track which request IDs still need a response. Notifications and
	// responses produce none.
	pendingIDs := make(map[string]bool)
	for _, msg := range msgs {
		msg.Session = session
		if msg.ID != nil && !msg.ID.IsEmpty() && msg.Method != nil {
			pendingIDs[msg.ID.String()] = true
		}
	}

	output, acquired := session.AcquireOutput()
	if !acquired {
		logger.Error("Failed to acquire session output", zap.String("sessionId", session.GetID()))
		sendJSONRPCErrorResponse(w, nil, shared.JSONRPCErrorInternal, "Session output busy", nil, logger)
		return
	}
	defer session.ReleaseOutput()

	for _, msg := range msgs {
		if err := session.Input().Put(msg); err != nil {
			logger.Error("Failed to queue message", zap.String("sessionId", session.GetID()), zap.Error(err))
			sendJSONRPCErrorResponse(w, msg.ID, shared.JSONRPCErrorInternal, "Failed to process message", nil, logger)
			return
		}
	}

	session.UpdateLastActivity()

	// Notification-only batch: nothing to wait for.
	if len(pendingIDs) == 0 {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	responses := t.collectResponses(r, session.GetID(), output, pendingIDs, logger)
	if len(responses) == 0 {
		sendJSONRPCErrorResponse(w, nil, shared.JSONRPCErrorInternal, "Timeout waiting for response", nil, logger)
		return
	}

	if len(responses) == 1 {
		sendJSONResponse(w, http.StatusOK, responses[0], logger)
	} else {
		sendJSONResponse(w, http.StatusOK, responses, logger)
	}
}

// collectResponses drains the session output until every pending request has
// been answered, the client goes away, or the response timeout expires.
// Notifications emitted while waiting (e.g. tools list changes) are dropped;
// there is no stream to carry them on.
func (t *Transport) collectResponses(r *http.Request, sessionID string, output <-chan *shared.Message, pendingIDs map[string]bool, logger *zap.Logger) []*shared.Message {
	var responses []*shared.Message
	timeout := time.NewTimer(t.responseTimeout)
	defer timeout.Stop()

	for len(pendingIDs) > 0 {
		select {
		case msg, ok := <-output:
			if !ok {
				logger.Debug("Session output closed while waiting for responses", zap.String("sessionId", sessionID))
				return responses
			}
			if msg == nil || msg.ID == nil || msg.ID.IsEmpty() {
				continue // notification, nowhere to deliver it
			}
			idStr := msg.ID.String()
			if !pendingIDs[idStr] {
				logger.Debug("Discarding response for unknown request ID",
					zap.String("sessionId", sessionID),
					zap.String("requestId", idStr),
				)
				continue
			}
			delete(pendingIDs, idStr)
			responses = append(responses, msg)
		case <-r.Context().Done():
			logger.Debug("Client disconnected while waiting for responses", zap.String("sessionId", sessionID))
			return responses
		case <-timeout.C:
			logger.Warn("Timeout waiting for responses",
				zap.String("sessionId", sessionID),
				zap.Int("missing", len(pendingIDs)),
			)
			return responses
		}
	}
	return responses
}
