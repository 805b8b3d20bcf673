package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerAddr(t *testing.T) {
	assert.Equal(t, "0.0.0.0:8080", ServerConfig{Port: 8080}.Addr())
	assert.Equal(t, "127.0.0.1:9000", ServerConfig{Host: "127.0.0.1", Port: 9000}.Addr())
}

func TestLoadConfigMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().MySQL.DSN, cfg.MySQL.DSN)
	assert.Equal(t, 8081, cfg.AdminServer.Port)
	assert.Equal(t, "gomall_session", cfg.Session.CookieName)
}

func TestLoadConfigOverridesFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("server:\n  port: 9090\nmysql:\n  dsn: root@tcp(db:3306)/mall\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "root@tcp(db:3306)/mall", cfg.MySQL.DSN)
	// 未覆盖的配置保持默认值
	assert.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr)
}
