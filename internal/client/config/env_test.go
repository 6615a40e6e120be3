package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_Overlay(t *testing.T) {
	t.Setenv(EnvServerURL, "https://api.veriearth.test")
	t.Setenv(EnvStorageDSN, "redis://localhost:6379/0")
	t.Setenv(EnvGoogleClientID, "cid")
	t.Setenv(EnvRequestTimeout, "1500ms")
	t.Setenv(EnvLogFormat, "")

	cfg := &Config{LogFormat: "json"}
	require.NoError(t, parseEnv(cfg, nil))

	assert.Equal(t, "https://api.veriearth.test", cfg.ServerURL)
	assert.Equal(t, "redis://localhost:6379/0", cfg.StorageDSN)
	assert.Equal(t, "cid", cfg.GoogleClientID)
	assert.Equal(t, 1500*time.Millisecond, cfg.RequestTimeout)
	assert.Equal(t, "json", cfg.LogFormat, "empty variables are ignored")
}

func TestParseEnv_BadTimeout(t *testing.T) {
	t.Setenv(EnvRequestTimeout, "soon")

	err := parseEnv(&Config{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvRequestTimeout)
}

func TestParseTimeout(t *testing.T) {
	d, err := parseTimeout("7")
	require.NoError(t, err)
	assert.Equal(t, 7*time.Second, d)

	d, err = parseTimeout("2m")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, d)
}
