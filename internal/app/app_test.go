package app

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketchat/internal/config"
)

func TestNewApp(t *testing.T) {
	cfg := &config.Config{
		AppPort:      8000,
		StoreBackend: config.StoreBackendBolt,
		DatabasePath: filepath.Join(t.TempDir(), "pocketchat.db"),
		GeminiAPIURL: "http://localhost:0/generate",
		LogLevel:     "DEBUG",
	}

	application, err := NewApp(cfg)
	require.NoError(t, err)
	require.NotNil(t, application)
	defer func() { require.NoError(t, application.Close()) }()

	assert.NotNil(t, application.Server)
	assert.Equal(t, ":8000", application.Server.Addr)
}

func TestNewApp_UnknownStoreBackend(t *testing.T) {
	cfg := &config.Config{
		AppPort:      8000,
		StoreBackend: "parchment",
	}

	_, err := NewApp(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parchment")
}
