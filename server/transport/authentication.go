package transport

import (
	"errors"
	"sync"

	"github.com/morim3/mcp-adobe-premiere/shared"
	"github.com/morim3/mcp-adobe-premiere/shared/config"
	"go.uber.org/zap"
)

const (
	authKeyUserIDKey     = "auth_user_id"
	authKeyKeyHashKey    = "auth_key_hash"
	authKeyRemoteAddrKey = "auth_remote_addr"
)

var ErrSessionKeyNotFound = errors.New("session key not found")

// AuthenticationManager validates API keys before a session is created.
type AuthenticationManager interface {
	// Authenticate checks the key and returns the user ID plus initial
	// session params on success.
	Authenticate(authKey string, remoteAddr string) (userID string, sessionParams *sync.Map, err error)
}

// DefaultAuthManager resolves keys against the users section of the config.
type DefaultAuthManager struct {
	cfg    config.IConfig
	logger *zap.Logger
}

var _ AuthenticationManager = (*DefaultAuthManager)(nil)

func NewAuthenticator(cfg config.IConfig, logger *zap.Logger) *DefaultAuthManager {
	return &DefaultAuthManager{
		cfg:    cfg,
		logger: logger.Named("auth"),
	}
}

func (a *DefaultAuthManager) Authenticate(authKey string, remoteAddr string) (string, *sync.Map, error) {
	authType, err := a.cfg.AuthorizationType()
	if err != nil {
		return "", nil, err
	}

	sessionParams := &sync.Map{}
	sessionParams.Store(authKeyRemoteAddrKey, remoteAddr)

	if authType == config.NotAuthorizedEverywhere {
		// Anonymous mode for local setups where the panel and the agent run
		// on the same workstation.
		sessionParams.Store(authKeyUserIDKey, "anonymous")
		return "anonymous", sessionParams, nil
	}

	if authKey == "" {
		return "", nil, errors.New("authentication key required")
	}

	keyHash := config.HashAPIKey(authKey)
	userID, err := a.cfg.GetUserIDByKeyHash(keyHash)
	if err != nil {
		if errors.Is(err, config.ErrNotFound) {
			a.logger.Warn("Unknown authentication key", zap.String("remoteAddr", remoteAddr))
			return "", nil, errors.New("invalid authentication key")
		}
		return "", nil, err
	}

	sessionParams.Store(authKeyUserIDKey, userID)
	sessionParams.Store(authKeyKeyHashKey, keyHash)
	return userID, sessionParams, nil
}

// GetUserId retrieves the authenticated user ID from session params.
func GetUserId(session shared.ISession) (string, error) {
	value, ok := session.GetParams().Load(authKeyUserIDKey)
	if !ok {
		return "", ErrSessionKeyNotFound
	}
	userID, ok := value.(string)
	if !ok {
		return "", errors.New("user ID has unexpected type")
	}
	return userID, nil
}

// GetRemoteAddr retrieves the remote address recorded at session creation.
func GetRemoteAddr(session shared.ISession) (string, error) {
	value, ok := session.GetParams().Load(authKeyRemoteAddrKey)
	if !ok {
		return "", ErrSessionKeyNotFound
	}
	addr, ok := value.(string)
	if !ok {
		return "", errors.New("remote address has unexpected type")
	}
	return addr, nil
}
