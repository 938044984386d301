package exporter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()

	assert.Equal(t, defaultBaseURL, cfg.BaseURL)
	assert.Equal(t, 1000, cfg.MaxCacheSize)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 5, cfg.batchThreshold())
}

func TestConfigExplicitZeroThresholdDisablesBatching(t *testing.T) {
	cfg := Config{BatchThreshold: Threshold(0)}.withDefaults()
	assert.Equal(t, 0, cfg.batchThreshold())

	cfg = Config{BatchThreshold: Threshold(-3)}.withDefaults()
	assert.Equal(t, 0, cfg.batchThreshold())
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("AGENTLENS_API_KEY", "sk_env")
	t.Setenv("AGENTLENS_PROJECT_ID", "proj_env")
	t.Setenv("AGENTLENS_BATCH_THRESHOLD", "9")
	t.Setenv("AGENTLENS_CACHE_TTL", "10m")
	t.Setenv("AGENTLENS_DEBUG", "true")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "sk_env", cfg.APIKey)
	assert.Equal(t, "proj_env", cfg.ProjectID)
	assert.Equal(t, 9, cfg.batchThreshold())
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.True(t, cfg.Debug)
	assert.Equal(t, defaultBaseURL, cfg.BaseURL, "defaults still fill unset fields")
}
