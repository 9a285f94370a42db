package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, time.Duration(cfg.Drafts.TTL))
	assert.Equal(t, "memory", cfg.Drafts.Store)
	assert.Equal(t, cfg.Uploads.MaxFilesPerStep, cfg.Uploads.MaxConcurrentUploads)
}

func TestLoadConfigDurationStrings(t *testing.T) {
	path := writeConfig(t, `{
		"server":  {"read_timeout": "10s"},
		"backend": {"request_timeout": "5s"},
		"drafts":  {"ttl": "24h"}
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, time.Duration(cfg.Server.ReadTimeout))
	assert.Equal(t, 5*time.Second, time.Duration(cfg.Backend.RequestTimeout))
	assert.Equal(t, 24*time.Hour, time.Duration(cfg.Drafts.TTL))
}

func TestLoadConfigDurationNanoseconds(t *testing.T) {
	path := writeConfig(t, `{"drafts": {"ttl": 3600000000000}}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, time.Duration(cfg.Drafts.TTL))
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, `{"drafts": {"ttl": "soon"}}`)

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
