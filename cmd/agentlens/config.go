package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/agentlens/agentlens-go/exporter"
)

// fileConfig mirrors the subset of exporter.Config a YAML file may set.
// Environment variables load first; file values override them.
type fileConfig struct {
	APIKey         string `yaml:"api_key"`
	ProjectID      string `yaml:"project_id"`
	BaseURL        string `yaml:"base_url"`
	BatchThreshold *int   `yaml:"batch_threshold"`
	Debug          *bool  `yaml:"debug"`
}

func loadConfig(path string, debug bool) (exporter.Config, error) {
	cfg, err := exporter.ConfigFromEnv()
	if err != nil {
		return exporter.Config{}, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return exporter.Config{}, fmt.Errorf("read config: %w", err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return exporter.Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		if fc.APIKey != "" {
			cfg.APIKey = fc.APIKey
		}
		if fc.ProjectID != "" {
			cfg.ProjectID = fc.ProjectID
		}
		if fc.BaseURL != "" {
			cfg.BaseURL = fc.BaseURL
		}
		if fc.BatchThreshold != nil {
			cfg.BatchThreshold = fc.BatchThreshold
		}
		if fc.Debug != nil {
			cfg.Debug = *fc.Debug
		}
	}

	if debug {
		cfg.Debug = true
	}
	if cfg.APIKey == "" {
		return exporter.Config{}, fmt.Errorf("no API key: set AGENTLENS_API_KEY or api_key in the config file")
	}
	return cfg, nil
}
