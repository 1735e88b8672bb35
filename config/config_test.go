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
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, int64(50*1024*1024), cfg.Server.MaxFileSize)
	assert.Equal(t, 5*time.Minute, cfg.Server.ProcessTimeout)
	assert.Equal(t, "documents.db", cfg.Database.DSN)
	assert.Equal(t, EngineTesseract, cfg.OCR.Engine)
	assert.Equal(t, []string{"eng"}, cfg.OCR.Languages)
	assert.Equal(t, "http://localhost:11434", cfg.LLM.Endpoint)
	assert.False(t, cfg.Queue.Enabled)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
database:
  dsn: /var/lib/pagemonk/docs.db
ocr:
  engine: textract
  textract:
    region: eu-west-1
llm:
  model: mistral
queue:
  enabled: true
  queue:
    redis_addr: redis:6379
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/var/lib/pagemonk/docs.db", cfg.Database.DSN)
	assert.Equal(t, EngineTextract, cfg.OCR.Engine)
	assert.Equal(t, "eu-west-1", cfg.OCR.Textract.Region)
	assert.Equal(t, "mistral", cfg.LLM.Model)
	assert.True(t, cfg.Queue.Enabled)
	assert.Equal(t, "redis:6379", cfg.Queue.Queue.RedisAddr)

	// Unset sections keep their defaults.
	assert.Equal(t, "http://localhost:11434", cfg.LLM.Endpoint)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("DATABASE_DSN", "env.db")
	t.Setenv("OLLAMA_MODEL", "qwen2.5")
	t.Setenv("REDIS_ADDR", "envredis:6379")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "env.db", cfg.Database.DSN)
	assert.Equal(t, "qwen2.5", cfg.LLM.Model)
	assert.Equal(t, "envredis:6379", cfg.Queue.Queue.RedisAddr)
	assert.Equal(t, "envredis:6379", cfg.Queue.Worker.RedisAddr)
}
