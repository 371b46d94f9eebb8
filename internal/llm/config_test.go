package llm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig_Disabled(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "http://localhost:11434", cfg.Endpoint)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("ROADMAP_LLM_ENABLED", "true")
	t.Setenv("ROADMAP_LLM_MODEL", "mistral")
	t.Setenv("ROADMAP_LLM_TIMEOUT_MS", "9000")
	t.Setenv("ROADMAP_LLM_MAX_RETRIES", "3")

	cfg := LoadConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "mistral", cfg.Model)
	assert.Equal(t, 9000, cfg.TimeoutMs)
	assert.Equal(t, 3, cfg.MaxRetries)
}

func TestLoadConfig_InvalidValuesIgnored(t *testing.T) {
	t.Setenv("ROADMAP_LLM_TIMEOUT_MS", "not-a-number")
	t.Setenv("ROADMAP_LLM_MAX_RETRIES", "-2")

	cfg := LoadConfig()

	assert.Equal(t, DefaultConfig().TimeoutMs, cfg.TimeoutMs)
	assert.Equal(t, DefaultConfig().MaxRetries, cfg.MaxRetries)
}

func TestLogObserver_Format(t *testing.T) {
	var buf bytes.Buffer
	NewLogObserver(&buf).OnCallComplete(LLMCallEvent{Model: "m", Messages: 2, Attempts: 1, ErrorCode: "TIMEOUT"})

	assert.Contains(t, buf.String(), "llm_call model=m messages=2 attempts=1")
	assert.Contains(t, buf.String(), "status=err:TIMEOUT")
}
