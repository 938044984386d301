package exporter

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	defaultBaseURL        = "https://api.agentlens.dev"
	defaultMaxCacheSize   = 1000
	defaultCacheTTL       = time.Hour
	defaultBatchThreshold = 5
	defaultMaxRetries     = 3
	defaultTimeout        = 30 * time.Second
)

// Config configures an Exporter.
type Config struct {
	// APIKey and ProjectID authenticate against the backend.
	APIKey    string `envconfig:"API_KEY"`
	ProjectID string `envconfig:"PROJECT_ID"`
	BaseURL   string `envconfig:"BASE_URL"`

	// Debug enables step-by-step logging of the pipeline.
	Debug bool `envconfig:"DEBUG"`

	// MaxCacheSize bounds each identity cache; CacheTTL expires entries.
	MaxCacheSize int           `envconfig:"MAX_CACHE_SIZE"`
	CacheTTL     time.Duration `envconfig:"CACHE_TTL"`

	// MaxRetries and Timeout are passed to the backend client.
	MaxRetries int           `envconfig:"MAX_RETRIES"`
	Timeout    time.Duration `envconfig:"TIMEOUT"`

	// BatchThreshold is the minimum number of new spans in one trace group
	// required to prefer the batched submission path. Nil means the default
	// of 5; an explicit 0 disables batching entirely.
	BatchThreshold *int `envconfig:"BATCH_THRESHOLD"`

	// OnError receives every per-item failure. Without it, failures are
	// visible only in debug logging.
	OnError ErrorHook `ignored:"true"`

	// Logger overrides the logger built from Debug.
	Logger *zap.Logger `ignored:"true"`

	// MetricsRegisterer receives the pipeline's Prometheus collectors.
	// Nil keeps them on a private registry.
	MetricsRegisterer prometheus.Registerer `ignored:"true"`
}

// ConfigFromEnv loads configuration from AGENTLENS_* environment
// variables, applying defaults for everything unset.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("agentlens", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config from env: %w", err)
	}
	return cfg.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.MaxCacheSize <= 0 {
		c.MaxCacheSize = defaultMaxCacheSize
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = defaultCacheTTL
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = defaultMaxRetries
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.BatchThreshold == nil {
		threshold := defaultBatchThreshold
		c.BatchThreshold = &threshold
	}
	return c
}

func (c Config) batchThreshold() int {
	if c.BatchThreshold == nil {
		return defaultBatchThreshold
	}
	if *c.BatchThreshold < 0 {
		return 0
	}
	return *c.BatchThreshold
}

// Threshold is a convenience for literal Config values, e.g.
// Config{BatchThreshold: exporter.Threshold(0)} to disable batching.
func Threshold(n int) *int {
	return &n
}
