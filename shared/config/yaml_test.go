package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestYamlConfig_Load(t *testing.T) {
	path := writeConfigFile(t, `
server:
  address: ":9090"
  name: "test-server"
  version: "1.2.3"
  log_level: "debug"
  authorization: "users_only"
bridge:
  address: "localhost:9765"
  path: "/relay"
  response_timeout: "3s"
users:
  editor:
    keys:
      - "hash-one"
      - "hash-two"
`)

	cfg, err := NewYamlConfig(path, zap.NewNop())
	require.NoError(t, err)
	defer cfg.Close()

	addr, err := cfg.ListenAddr()
	require.NoError(t, err)
	assert.Equal(t, ":9090", addr)

	name, err := cfg.ServerName()
	require.NoError(t, err)
	assert.Equal(t, "test-server", name)

	authType, err := cfg.AuthorizationType()
	require.NoError(t, err)
	assert.Equal(t, AuthorizedUsersOnly, authType)

	bridgeAddr, err := cfg.BridgeListenAddr()
	require.NoError(t, err)
	assert.Equal(t, "localhost:9765", bridgeAddr)

	bridgePath, err := cfg.BridgePath()
	require.NoError(t, err)
	assert.Equal(t, "/relay", bridgePath)

	timeout, err := cfg.BridgeResponseTimeout()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, timeout)

	userID, err := cfg.GetUserIDByKeyHash("hash-two")
	require.NoError(t, err)
	assert.Equal(t, "editor", userID)

	_, err = cfg.GetUserIDByKeyHash("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestYamlConfig_Defaults(t *testing.T) {
	path := writeConfigFile(t, `
server:
  address: ":8080"
`)

	cfg, err := NewYamlConfig(path, zap.NewNop())
	require.NoError(t, err)
	defer cfg.Close()

	// Unknown authorization falls back to users_only.
	authType, err := cfg.AuthorizationType()
	require.NoError(t, err)
	assert.Equal(t, AuthorizedUsersOnly, authType)

	bridgeAddr, err := cfg.BridgeListenAddr()
	require.NoError(t, err)
	assert.Equal(t, "localhost:8765", bridgeAddr)

	bridgePath, err := cfg.BridgePath()
	require.NoError(t, err)
	assert.Equal(t, "/panel", bridgePath)

	timeout, err := cfg.BridgeResponseTimeout()
	require.NoError(t, err)
	assert.Equal(t, DefaultBridgeResponseTimeout, timeout)
}

func TestYamlConfig_InvalidTimeoutKeepsDefault(t *testing.T) {
	path := writeConfigFile(t, `
server:
  address: ":8080"
bridge:
  response_timeout: "not-a-duration"
`)

	cfg, err := NewYamlConfig(path, zap.NewNop())
	require.NoError(t, err)
	defer cfg.Close()

	timeout, err := cfg.BridgeResponseTimeout()
	require.NoError(t, err)
	assert.Equal(t, DefaultBridgeResponseTimeout, timeout)
}

func TestYamlConfig_Update(t *testing.T) {
	path := writeConfigFile(t, `
server:
  address: ":8080"
  authorization: "none"
`)

	cfg, err := NewYamlConfig(path, zap.NewNop())
	require.NoError(t, err)
	defer cfg.Close()

	require.NoError(t, os.WriteFile(path, []byte(`
server:
  address: ":8081"
  authorization: "none"
`), 0600))
	require.NoError(t, cfg.Update())

	addr, err := cfg.ListenAddr()
	require.NoError(t, err)
	assert.Equal(t, ":8081", addr)
}

func TestYamlConfig_MissingFile(t *testing.T) {
	_, err := NewYamlConfig(filepath.Join(t.TempDir(), "missing.yaml"), zap.NewNop())
	assert.Error(t, err)
}

func TestHashAPIKey(t *testing.T) {
	// sha256("test") as hex
	assert.Equal(t,
		"9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08",
		HashAPIKey("test"),
	)
	assert.NotEqual(t, HashAPIKey("a"), HashAPIKey("b"))
}
