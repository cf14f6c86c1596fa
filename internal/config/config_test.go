package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
server:
  http_port: 0
mysql:
  host: localhost
  port: 3306
  user: chat
  password: chat
  database: shchat
redis:
  host: localhost
  port: 6379
jwt:
  secret: s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "utf8mb4", cfg.MySQL.Charset)
	assert.Equal(t, 100, cfg.MySQL.MaxOpenConns)
	assert.Equal(t, "shchat:", cfg.Redis.KeyPrefix)
	assert.Equal(t, 168, cfg.JWT.ExpireHours)
	assert.Equal(t, "customer", cfg.ExternalJWT.DefaultRole)
	assert.Equal(t, int64(10000), cfg.WebSocket.MaxConnNum)
	assert.Equal(t, 30*time.Second, cfg.WebSocket.PongWait)
	assert.Equal(t, 10, cfg.WebSocket.PushWorkerNum)
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
server:
  http_port: 9000
  mode: release
  allowed_origins:
    - https://app.servicioshogar.com
mysql:
  host: db
  port: 3307
  user: u
  password: p
  database: d
  charset: utf8
redis:
  host: cache
  port: 6380
  key_prefix: "sh:"
external_jwt:
  enabled: true
  secret: shared
  default_role: provider
websocket:
  max_conn_num: 42
  pong_wait: 5s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.HTTPPort)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, []string{"https://app.servicioshogar.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "u:p@tcp(db:3307)/d?charset=utf8&parseTime=True&loc=Local", cfg.MySQL.DSN())
	assert.Equal(t, "cache:6380", cfg.Redis.Addr())
	assert.True(t, cfg.ExternalJWT.Enabled)
	assert.Equal(t, "provider", cfg.ExternalJWT.DefaultRole)
	assert.Equal(t, int64(42), cfg.WebSocket.MaxConnNum)
	assert.Equal(t, 5*time.Second, cfg.WebSocket.PongWait)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
