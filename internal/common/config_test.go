package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "https://extraction-api.nanonets.com", cfg.Extraction.BaseURL)
	assert.Equal(t, "openai", cfg.Extraction.Model)
	assert.Equal(t, 4, cfg.Dispatch.ChunkSize)
	assert.Equal(t, 7*time.Second, cfg.Dispatch.PollInterval)
	assert.Equal(t, ":8080", cfg.Server.GRPCAddr)
	assert.Equal(t, 64<<20, cfg.Server.MaxDocumentBytes)
}

func TestLoadConfig_MaxDocumentBytesFromEnv(t *testing.T) {
	t.Setenv("MAX_DOCUMENT_BYTES", "1048576")
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 1<<20, cfg.Server.MaxDocumentBytes)
}

func TestLoadConfig_YAMLThenEnv(t *testing.T) {
	path := writeFile(t, `
extraction:
  api_key: from-file
  timeout: 30s
dispatch:
  chunk_size: 6
  workers: 2
  poll_interval: 2s
server:
  grpc_addr: "127.0.0.1:9000"
`)
	t.Setenv("EXTRACTION_API_KEY", "from-env")
	t.Setenv("GRPC_ADDR", "9090")
	t.Setenv("POLL_INTERVAL", "not-a-duration")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Extraction.APIKey)
	assert.Equal(t, 30*time.Second, cfg.Extraction.Timeout)
	assert.Equal(t, 6, cfg.Dispatch.ChunkSize)
	assert.Equal(t, 2, cfg.Dispatch.Workers)
	assert.Equal(t, 2*time.Second, cfg.Dispatch.PollInterval)
	assert.Equal(t, ":9090", cfg.Server.GRPCAddr)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_HostPortKept(t *testing.T) {
	t.Setenv("GRPC_ADDR", "localhost:7000")
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "localhost:7000", cfg.Server.GRPCAddr)
}

func TestLoadConfig_BadFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeFile(t, "dispatch: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "APIKey")

	cfg.Extraction.APIKey = "k"
	require.NoError(t, cfg.Validate())

	cfg.Dispatch.ChunkSize = 13
	cfg.LogLevel = "verbose"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ChunkSize")
	assert.Contains(t, err.Error(), "LogLevel")
}
