package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "http://localhost:8080", cfg.BackendBaseURL)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 2, cfg.HTTPMaxRetries)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "https://shop.example.com")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example.com", cfg.BackendBaseURL)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoad_RejectsEmptyBaseURL(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BACKEND_BASE_URL")
}

func TestLoad_RejectsNonPositiveTimeout(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "0s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_TIMEOUT")
}
