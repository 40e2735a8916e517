package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/morim3/mcp-adobe-premiere/server/mcp"
	"github.com/morim3/mcp-adobe-premiere/shared"
	"github.com/morim3/mcp-adobe-premiere/shared/config"
	"github.com/morim3/mcp-adobe-premiere/shared/mcp/schema"
	"go.uber.org/zap"
)

const (
	MCP_PATH           = "/mcp"           // Unified endpoint path
	MCP_SESSION_HEADER = "Mcp-Session-Id" // Header for session ID
	AUTH_KEY_QUERY     = "key"            // Query parameter fallback for the API key

	// Content Types
	contentTypeJSON = "application/json"

	// HTTP Statuses
	statusNotFound            = http.StatusNotFound            // 404
	statusBadRequest          = http.StatusBadRequest          // 400
	statusMethodNotAllowed    = http.StatusMethodNotAllowed    // 405
	statusUnauthorized        = http.StatusUnauthorized        // 401
	statusInternalServerError = http.StatusInternalServerError // 500
)

// Transport manages MCP HTTP connections for the streamable HTTP transport.
type Transport struct {
	sessionManager  mcp.ISessionManager
	logger          *zap.Logger
	authManager     AuthenticationManager
	config          config.IConfig
	responseTimeout time.Duration // How long a POST waits for its responses
	sessionTimeout  time.Duration // Idle timeout for sessions
	cleanupInterval time.Duration // How often to check for idle sessions
}

// TransportOption defines a function type for configuring the Transport.
type TransportOption func(*Transport) error

// WithResponseTimeout sets how long a POST request waits for handler responses.
func WithResponseTimeout(timeout time.Duration) TransportOption {
	return func(t *Transport) error {
		if timeout <= 0 {
			return errors.New("response timeout must be positive")
		}
		t.responseTimeout = timeout
		return nil
	}
}

// WithSessionTimeout sets the idle timeout for sessions.
func WithSessionTimeout(timeout time.Duration) TransportOption {
	return func(t *Transport) error {
		if timeout <= 0 {
			return errors.New("session timeout must be positive")
		}
		t.sessionTimeout = timeout
		return nil
	}
}

// WithCleanupInterval sets the interval for checking idle sessions
func WithCleanupInterval(interval time.Duration) TransportOption {
	return func(t *Transport) error {
		if interval <= 0 {
			return errors.New("cleanup interval must be positive")
		}
		t.cleanupInterval = interval
		return nil
	}
}

// New creates a new MCP HTTP transport handler.
func New(mcpManager mcp.ISessionManager, logger *zap.Logger, cfg config.IConfig, options ...TransportOption) (*Transport, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if mcpManager == nil {
		return nil, errors.New("session manager cannot be nil")
	}
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	transport := &Transport{
		sessionManager:  mcpManager,
		logger:          logger.Named("transport"),
		authManager:     NewAuthenticator(cfg, logger),
		config:          cfg,
		responseTimeout: 30 * time.Second,
		cleanupInterval: 5 * time.Minute,
		sessionTimeout:  30 * time.Minute,
	}

	// The bridge response timeout bounds tool call latency, so the HTTP wait
	// has to be at least as long or clients would see empty responses for
	// slow panel operations.
	if bridgeTimeout, err := cfg.BridgeResponseTimeout(); err == nil && bridgeTimeout+5*time.Second > transport.responseTimeout {
		transport.responseTimeout = bridgeTimeout + 5*time.Second
	}

	// Apply configuration options
	for _, option := range options {
		if err := option(transport); err != nil {
			return nil, err
		}
	}

	if transport.sessionTimeout > 0 {
		go transport.startSessionCleanup()
	}

	logger.Info("MCP HTTP Transport created",
		zap.Duration("responseTimeout", transport.responseTimeout),
		zap.Duration("sessionTimeout", transport.sessionTimeout),
	)

	return transport, nil
}

// SetAuthManager allows changing the authentication manager.
func (t *Transport) SetAuthManager(authManager AuthenticationManager) {
	t.authManager = authManager
}

// RegisterMCPHandlers registers the unified MCP handler with the HTTP mux.
func (t *Transport) RegisterMCPHandlers(mux *http.ServeMux) {
	mux.HandleFunc(MCP_PATH, t.HandleMCP())
	t.logger.Info("Registered MCP handler", zap.String("path", MCP_PATH))
}

func (t *Transport) HandleMCP() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := t.logger

		logger.Debug("Received request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remoteAddr", r.RemoteAddr),
			zap.String("query", r.URL.RawQuery),
		)

		switch r.Method {
		case http.MethodGet:
			t.handleGET(w, r, logger)
		case http.MethodPost:
			t.handlePOST(w, r, logger)
		case http.MethodDelete:
			t.handleDELETE(w, r, logger)
		case http.MethodOptions:
			w.Header().Set("Allow", "GET, POST, DELETE, OPTIONS")
			w.WriteHeader(http.StatusNoContent)
		default:
			logger.Warn("Method not allowed", zap.String("method", r.Method))
			http.Error(w, "Method Not Allowed", statusMethodNotAllowed)
		}
	}
}

// startSessionCleanup periodically checks for idle sessions and closes them.
func (t *Transport) startSessionCleanup() {
	ticker := time.NewTicker(t.cleanupInterval)
	defer ticker.Stop()
	t.logger.Info("Starting session cleanup routine",
		zap.Duration("interval", t.cleanupInterval),
		zap.Duration("timeout", t.sessionTimeout),
	)
	for range ticker.C {
		t.sessionManager.CleanupIdleSessions(t.sessionTimeout)
	}
}

// extractAuthKey pulls the API key from the Authorization header (Bearer) or
// the query string fallback.
func (t *Transport) extractAuthKey(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		if key, found := strings.CutPrefix(authHeader, "Bearer "); found {
			return key
		}
		return authHeader
	}
	return r.URL.Query().Get(AUTH_KEY_QUERY)
}

// --- Helper to send JSON responses ---
func sendJSONResponse(w http.ResponseWriter, statusCode int, data interface{}, logger *zap.Logger) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logger.Error("Failed to encode JSON response", zap.Error(err))
			http.Error(w, `{"jsonrpc":"2.0", "error":{"code":-32603, "message":"Internal server error writing response"}}`, statusInternalServerError)
		}
	}
}

// --- Helper to send JSON-RPC errors ---
func sendJSONRPCErrorResponse(w http.ResponseWriter, id *schema.RequestID, code int, message string, data interface{}, logger *zap.Logger) {
	errResp := shared.JSONRPCErrorResponse{
		JSONRPC: shared.JSONRPCVersion,
		ID:      id, // Can be nil for some errors (like parse error)
		Error: &shared.JSONRPCError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
	logger.Warn("Sending JSON-RPC Error",
		zap.Int("code", code),
		zap.String("message", message),
		zap.Any("data", data),
		zap.Any("reqID", id),
	)
	// According to JSON-RPC spec, errors should still return 200 OK at HTTP level
	sendJSONResponse(w, http.StatusOK, errResp, logger)
}

func (t *Transport) getSession(w http.ResponseWriter, r *http.Request, logger *zap.Logger, allowCreate bool) (shared.ISession, error) {
	sessionID := r.Header.Get(MCP_SESSION_HEADER)

	if sessionID != "" {
		session, err := t.sessionManager.GetSession(sessionID)
		if err != nil {
			logger.Warn("Session not found", zap.String("sessionId", sessionID), zap.Error(err))
			http.Error(w, "Not Found: Session expired or invalid", statusNotFound)
			return nil, err
		}
		return session, nil
	}

	if !allowCreate {
		logger.Warn("Session header missing on request that requires one")
		http.Error(w, "Not Found: Session expired or invalid", statusNotFound)
		return nil, errors.New("session not found")
	}

	authKey := t.extractAuthKey(r)
	userID, sessionParams, err := t.authManager.Authenticate(authKey, r.RemoteAddr)
	if err != nil {
		logger.Warn("Authentication failed", zap.String("remoteAddr", r.RemoteAddr), zap.Error(err))
		http.Error(w, "Authentication failed: "+err.Error(), statusUnauthorized)
		return nil, err
	}

	return t.sessionManager.CreateSession(userID, sessionParams), nil
}

// handleGET rejects stream requests; this server answers every request on the
// POST that carried it.
func (t *Transport) handleGET(w http.ResponseWriter, r *http.Request, logger *zap.Logger) {
	logger.Warn("Method not allowed for SSE streaming at this endpoint", zap.String("method", r.Method))
	http.Error(w, "Method Not Allowed", statusMethodNotAllowed)
}

// handleDELETE processes DELETE requests (session termination).
func (t *Transport) handleDELETE(w http.ResponseWriter, r *http.Request, logger *zap.Logger) {
	sessionIDHeader := r.Header.Get(MCP_SESSION_HEADER)

	if sessionIDHeader == "" {
		logger.Warn("Missing Mcp-Session-Id header for DELETE request")
		http.Error(w, "Bad Request: Mcp-Session-Id header required", statusBadRequest)
		return
	}

	_, err := t.sessionManager.GetSession(sessionIDHeader)
	if err != nil {
		logger.Warn("Session not found for DELETE request", zap.String("sessionId", sessionIDHeader), zap.Error(err))
		http.Error(w, "Not Found: Session expired or invalid", statusNotFound)
		return
	}

	logger.Info("Received DELETE request, closing session", zap.String("sessionId", sessionIDHeader))
	t.sessionManager.CloseSession(sessionIDHeader)

	w.WriteHeader(http.StatusNoContent)
}
