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
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "127.0.0.1:50051", c.ServerEndpointAddr)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.NotEmpty(t, c.SessionDBPath)
}

func TestLoadConfig_JSONOverlay(t *testing.T) {
	t.Setenv("SKILLHUB_CONFIG", "")

	path := filepath.Join(t.TempDir(), "cli.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server_endpoint_addr": "sessions.example:443",
		"request_timeout": "3s"
	}`), 0o600))

	c := LoadConfig([]string{"-c", path, "whoami"})

	assert.Equal(t, "sessions.example:443", c.ServerEndpointAddr)
	assert.Equal(t, 3*time.Second, c.RequestTimeout)
	assert.NotEmpty(t, c.SessionDBPath, "absent keys keep defaults")
}

func TestLoadConfig_NoFile(t *testing.T) {
	t.Setenv("SKILLHUB_CONFIG", "")

	c := LoadConfig([]string{"login"})

	var want Config
	want.LoadDefaults()
	assert.Equal(t, &want, c)
}

func TestLoadConfig_BadFilePanics(t *testing.T) {
	t.Setenv("SKILLHUB_CONFIG", "")

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o600))

	assert.Panics(t, func() { LoadConfig([]string{"-config=" + path}) })
	assert.Panics(t, func() { LoadConfig([]string{"-c", filepath.Join(t.TempDir(), "missing.json")}) })
}
