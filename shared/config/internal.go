package config

import (
	"context"
	"errors"
	"sync"
	"time"
)

var _ IConfig = (*InternalConfig)(nil)
var ErrNotFound = errors.New("not found")

// DefaultBridgeResponseTimeout bounds how long a tool call waits for the
// panel to answer an instruction.
const DefaultBridgeResponseTimeout = 10 * time.Second

// InternalConfig implements the configuration interface with in-memory storage
type InternalConfig struct {
	mu                         sync.RWMutex
	ServerAddress              string
	ServerNameValue            string
	ServerVersionValue         string
	AuthorizationTypeValue     AuthorizationType
	LogLevelValue              string
	BridgeListenAddrValue      string
	BridgePathValue            string
	BridgeResponseTimeoutValue time.Duration
	UserKeyHashes              map[string]string // keyHash -> userID

	// SSL fields
	SSLEnabledValue      bool
	SSLModeValue         string
	SSLCertFileValue     string
	SSLKeyFileValue      string
	SSLAcmeDomainsValue  []string
	SSLAcmeEmailValue    string
	SSLAcmeCacheDirValue string
}

// NewInternalConfig creates a new in-memory configuration
func NewInternalConfig() *InternalConfig {
	return &InternalConfig{
		ServerAddress:              ":8080",
		ServerNameValue:            "Unknown",
		ServerVersionValue:         "0.0.0",
		LogLevelValue:              "info",
		AuthorizationTypeValue:     NotAuthorizedEverywhere,
		BridgeListenAddrValue:      "localhost:8765",
		BridgePathValue:            "/panel",
		BridgeResponseTimeoutValue: DefaultBridgeResponseTimeout,
		UserKeyHashes:              make(map[string]string),
		SSLModeValue:               "manual",
		SSLAcmeCacheDirValue:       "./.autocert-cache",
	}
}

func (c *InternalConfig) ListenAddr() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ServerAddress, nil
}

func (c *InternalConfig) SetListenAddr(addr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ServerAddress = addr
}

func (c *InternalConfig) AuthorizationType() (AuthorizationType, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.AuthorizationTypeValue, nil
}

func (c *InternalConfig) ServerName() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ServerNameValue, nil
}

func (c *InternalConfig) ServerVersion() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ServerVersionValue, nil
}

// LogLevel returns the configured log level
func (c *InternalConfig) LogLevel() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.LogLevelValue, nil
}

func (c *InternalConfig) GetUserIDByKeyHash(keyHash string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if keyHash == "" {
		return "", nil
	}
	userID, exists := c.UserKeyHashes[keyHash]
	if !exists {
		return "", ErrNotFound
	}
	return userID, nil
}

// SetUserKeyHash associates an API key hash with a user ID
func (c *InternalConfig) SetUserKeyHash(keyHash, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.UserKeyHashes[keyHash] = userID
}

// --- Panel Bridge Methods ---

func (c *InternalConfig) BridgeListenAddr() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.BridgeListenAddrValue, nil
}

func (c *InternalConfig) SetBridgeListenAddr(addr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.BridgeListenAddrValue = addr
}

func (c *InternalConfig) BridgePath() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.BridgePathValue, nil
}

func (c *InternalConfig) BridgeResponseTimeout() (time.Duration, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.BridgeResponseTimeoutValue <= 0 {
		return DefaultBridgeResponseTimeout, nil
	}
	return c.BridgeResponseTimeoutValue, nil
}

// --- SSL Methods ---

func (c *InternalConfig) SSLEnabled() (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.SSLEnabledValue, nil
}

func (c *InternalConfig) SSLMode() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.SSLModeValue, nil
}

func (c *InternalConfig) SSLCertFile() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.SSLCertFileValue, nil
}

func (c *InternalConfig) SSLKeyFile() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.SSLKeyFileValue, nil
}

func (c *InternalConfig) SSLAcmeDomains() ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	domainsCopy := make([]string, len(c.SSLAcmeDomainsValue))
	copy(domainsCopy, c.SSLAcmeDomainsValue)
	return domainsCopy, nil
}

func (c *InternalConfig) SSLAcmeEmail() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.SSLAcmeEmailValue, nil
}

func (c *InternalConfig) SSLAcmeCacheDir() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.SSLAcmeCacheDirValue, nil
}

func (c *InternalConfig) Status(ctx context.Context) error { return nil }
func (c *InternalConfig) Close() error                     { return nil }
