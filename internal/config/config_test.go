package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 54*time.Second, cfg.PingPeriod)
	assert.Equal(t, 12*time.Hour, cfg.RoomTTL)
	assert.Equal(t, "kick", cfg.Backpressure)
	require.Len(t, cfg.ICEServers, 1)
	assert.Equal(t, []string{"stun:stun.l.google.com:19302"}, cfg.ICEServers[0].URLs)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	yaml := `
mode: debug
port: 9000
allowed_origins:
  - https://meet.example.com
room_ttl: 30m
ice_servers:
  - urls: ["turn:turn.example.com:3478"]
    username: duet
    credential: secret
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Mode)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.RoomTTL)
	require.Len(t, cfg.ICEServers, 1)
	assert.Equal(t, "duet", cfg.ICEServers[0].Username)

	t.Setenv("PORT", "9100")
	cfg, err = LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Port)
}

func TestValidate(t *testing.T) {
	cfg := Config{Port: 0, SendBuffer: 0, PingPeriod: time.Minute, PongWait: time.Second, Backpressure: "explode"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port")
	assert.Contains(t, err.Error(), "send_buffer")
	assert.Contains(t, err.Error(), "ping_period")
	assert.Contains(t, err.Error(), "backpressure")
}

func TestOriginAllowed(t *testing.T) {
	cfg := Config{AllowedOrigins: []string{"https://meet.example.com"}}
	assert.True(t, cfg.OriginAllowed(""))
	assert.True(t, cfg.OriginAllowed("https://MEET.example.com"))
	assert.False(t, cfg.OriginAllowed("https://evil.example.com"))

	cfg.AllowedOrigins = []string{"*"}
	assert.True(t, cfg.OriginAllowed("https://anything"))
}
