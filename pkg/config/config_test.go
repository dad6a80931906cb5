package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	BaseURL  string `env:"TEST_SHOP_API_URL" envDefault:"http://localhost:8080"`
	LogLevel string `env:"TEST_LOG_LEVEL" envDefault:"info"`
	Timeout  int    `env:"TEST_TIMEOUT_SECONDS" envDefault:"30"`
}

func TestLoad_Defaults(t *testing.T) {
	cfg := &testConfig{}
	require.NoError(t, Load(cfg))

	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30, cfg.Timeout)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("TEST_SHOP_API_URL", "https://shop.example.com")
	t.Setenv("TEST_TIMEOUT_SECONDS", "5")

	cfg := &testConfig{}
	require.NoError(t, Load(cfg))

	assert.Equal(t, "https://shop.example.com", cfg.BaseURL)
	assert.Equal(t, 5, cfg.Timeout)
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("TEST_TIMEOUT_SECONDS", "not-a-number")

	cfg := &testConfig{}
	err := Load(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
