package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var _ IConfig = (*YamlConfig)(nil)

// YamlConfig implements the configuration interface with YAML file-based storage
type YamlConfig struct {
	mu                    sync.RWMutex
	configPath            string
	logger                *zap.Logger
	serverAddress         string
	serverName            string
	serverVersion         string
	logLevel              string
	authorizationType     AuthorizationType
	userKeyHashes         map[string]string // keyHash -> userID (from yaml)
	bridgeListenAddr      string
	bridgePath            string
	bridgeResponseTimeout time.Duration

	// SSL Fields
	sslEnabled      bool
	sslMode         string
	sslCertFile     string
	sslKeyFile      string
	sslAcmeDomains  []string
	sslAcmeEmail    string
	sslAcmeCacheDir string
}

// YAML configuration structure matching the required format
type yamlConfig struct {
	Server struct {
		Address       string `yaml:"address"`
		Name          string `yaml:"name"`
		Version       string `yaml:"version"`
		LogLevel      string `yaml:"log_level"`
		Authorization string `yaml:"authorization"` // "users_only" or "none"
		SSL           struct {
			Enabled      bool     `yaml:"enabled"`
			Mode         string   `yaml:"mode"`
			CertFile     string   `yaml:"cert_file"`
			KeyFile      string   `yaml:"key_file"`
			AcmeDomains  []string `yaml:"acme_domains"`
			AcmeEmail    string   `yaml:"acme_email"`
			AcmeCacheDir string   `yaml:"acme_cache_dir"`
		} `yaml:"ssl"`
	} `yaml:"server"`

	Bridge struct {
		Address         string `yaml:"address"`
		Path            string `yaml:"path"`
		ResponseTimeout string `yaml:"response_timeout"`
	} `yaml:"bridge"`

	Users map[string]struct {
		Keys []string `yaml:"keys"` // Store hashes directly
	} `yaml:"users"`
}

// NewYamlConfig creates a new YAML-based configuration
func NewYamlConfig(configPath string, logger *zap.Logger) (*YamlConfig, error) {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}

	config := &YamlConfig{
		configPath:            configPath,
		logger:                logger,
		userKeyHashes:         make(map[string]string),
		authorizationType:     AuthorizedUsersOnly, // Default
		bridgeListenAddr:      "localhost:8765",
		bridgePath:            "/panel",
		bridgeResponseTimeout: DefaultBridgeResponseTimeout,
		sslMode:               "manual",
		sslAcmeCacheDir:       "./.autocert-cache",
	}

	if err := config.Update(); err != nil {
		return nil, err
	}
	return config, nil
}

// Update reloads configuration from the YAML file
func (c *YamlConfig) Update() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger.Debug("Updating configuration from YAML file", zap.String("path", c.configPath))

	data, err := os.ReadFile(c.configPath)
	if err != nil {
		c.logger.Error("Failed to read config file", zap.Error(err))
		return err
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		c.logger.Error("Failed to parse YAML", zap.Error(err))
		return err
	}

	// --- Process Server Section ---
	c.serverAddress = yamlCfg.Server.Address
	c.serverName = yamlCfg.Server.Name
	c.serverVersion = yamlCfg.Server.Version
	c.logLevel = yamlCfg.Server.LogLevel
	switch strings.ToLower(yamlCfg.Server.Authorization) {
	case "users_only":
		c.authorizationType = AuthorizedUsersOnly
	case "none":
		c.authorizationType = NotAuthorizedEverywhere
	default:
		c.authorizationType = AuthorizedUsersOnly
	}

	// --- Process SSL Section ---
	c.sslEnabled = yamlCfg.Server.SSL.Enabled
	c.sslMode = strings.ToLower(yamlCfg.Server.SSL.Mode)
	if c.sslMode != "acme" {
		c.sslMode = "manual"
	}
	c.sslCertFile = yamlCfg.Server.SSL.CertFile
	c.sslKeyFile = yamlCfg.Server.SSL.KeyFile
	c.sslAcmeDomains = yamlCfg.Server.SSL.AcmeDomains
	c.sslAcmeEmail = yamlCfg.Server.SSL.AcmeEmail
	c.sslAcmeCacheDir = yamlCfg.Server.SSL.AcmeCacheDir
	if c.sslAcmeCacheDir == "" {
		c.sslAcmeCacheDir = "./.autocert-cache"
	}

	// --- Process Bridge Section ---
	if yamlCfg.Bridge.Address != "" {
		c.bridgeListenAddr = yamlCfg.Bridge.Address
	}
	if yamlCfg.Bridge.Path != "" {
		c.bridgePath = yamlCfg.Bridge.Path
	}
	if yamlCfg.Bridge.ResponseTimeout != "" {
		timeout, err := time.ParseDuration(yamlCfg.Bridge.ResponseTimeout)
		if err != nil {
			c.logger.Warn("Invalid bridge response_timeout, keeping default",
				zap.String("value", yamlCfg.Bridge.ResponseTimeout), zap.Error(err))
		} else {
			c.bridgeResponseTimeout = timeout
		}
	}

	// --- Process Users Section ---
	newUserKeyHashes := make(map[string]string)
	for userID, user := range yamlCfg.Users {
		for _, keyHash := range user.Keys { // Assume keys in YAML are already hashes
			newUserKeyHashes[keyHash] = userID
		}
	}
	c.userKeyHashes = newUserKeyHashes

	return nil
}

// --- IConfig Implementation ---

func (c *YamlConfig) Close() error { return nil }

func (c *YamlConfig) ListenAddr() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serverAddress, nil
}

func (c *YamlConfig) AuthorizationType() (AuthorizationType, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authorizationType, nil
}

func (c *YamlConfig) ServerName() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serverName, nil
}

func (c *YamlConfig) ServerVersion() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serverVersion, nil
}

func (c *YamlConfig) LogLevel() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.logLevel, nil
}

func (c *YamlConfig) GetUserIDByKeyHash(keyHash string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if keyHash == "" {
		return "", nil
	}
	userID, exists := c.userKeyHashes[keyHash]
	if !exists {
		return "", ErrNotFound
	}
	return userID, nil
}

func (c *YamlConfig) BridgeListenAddr() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bridgeListenAddr, nil
}

func (c *YamlConfig) BridgePath() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bridgePath, nil
}

func (c *YamlConfig) BridgeResponseTimeout() (time.Duration, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bridgeResponseTimeout, nil
}

func (c *YamlConfig) Status(ctx context.Context) error {
	if _, err := os.Stat(c.configPath); err != nil {
		c.logger.Error("YAML config file status check failed", zap.String("path", c.configPath), zap.Error(err))
		return fmt.Errorf("config file error: %w", err)
	}
	return nil
}

// --- SSL Methods ---

func (c *YamlConfig) SSLEnabled() (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sslEnabled, nil
}

func (c *YamlConfig) SSLMode() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sslMode, nil
}

func (c *YamlConfig) SSLCertFile() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sslCertFile, nil
}

func (c *YamlConfig) SSLKeyFile() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sslKeyFile, nil
}

func (c *YamlConfig) SSLAcmeDomains() ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	domainsCopy := make([]string, len(c.sslAcmeDomains))
	copy(domainsCopy, c.sslAcmeDomains)
	return domainsCopy, nil
}

func (c *YamlConfig) SSLAcmeEmail() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sslAcmeEmail, nil
}

func (c *YamlConfig) SSLAcmeCacheDir() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sslAcmeCacheDir, nil
}
