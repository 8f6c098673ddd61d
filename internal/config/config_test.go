package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaultsAndOverrides(t *testing.T) {
	t.Setenv("UBS_API_BASE_URL", "https://api.ubs.example/")
	t.Setenv("UBS_SESSION_SECRET", strings.Repeat("k", 32))
	t.Setenv("UBS_PORT", "9090")
	t.Setenv("UBS_COOKIE_SECURE", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://api.ubs.example/", cfg.API.BaseURL)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Session.Secure)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, int64(20<<20), cfg.Uploads.MaxFileBytes)
	assert.Equal(t, 800*time.Millisecond, cfg.Autosave.Delay)
	assert.False(t, cfg.Database.Enabled())
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Server:  ServerConfig{Port: 0},
		Session: SessionConfig{Secret: "short"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.base_url")
	assert.Contains(t, err.Error(), "session.secret")
	assert.Contains(t, err.Error(), "server.port")
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "ubs", Password: "p", Name: "console", SSLMode: "disable"}
	assert.True(t, d.Enabled())
	assert.Equal(t, "host=db port=5432 user=ubs password=p dbname=console sslmode=disable", d.DSN())
}
