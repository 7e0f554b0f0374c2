package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

const defaultBaseURL = "https://ark.cn-beijing.volces.com/api/v3"

// Load reads settings.json from path, strips HuJSON comments/trailing commas,
// unmarshals it into Settings, and applies env overrides and defaults.
// A missing file is not an error: defaults are returned.
func Load(path string) (*Settings, error) {
	var cfg Settings

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// fall through to defaults
	case err != nil:
		return nil, fmt.Errorf("read settings: %w", err)
	default:
		std, err := hujson.Standardize(data)
		if err != nil {
			return nil, fmt.Errorf("parse settings: %w", err)
		}
		if err := json.Unmarshal(std, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

// applyEnv lets environment variables override file values.
func applyEnv(cfg *Settings) {
	if v := os.Getenv("ARK_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("ARK_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
}

// applyDefaults fills in zero-value fields.
func applyDefaults(cfg *Settings) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.DataDir == "" {
		cfg.DataDir = DataDir()
	}
	if cfg.Gateway.Host == "" {
		cfg.Gateway.Host = "127.0.0.1"
	}
	if cfg.Gateway.Port == 0 {
		cfg.Gateway.Port = 18650
	}
	if cfg.Events.BufferSize == 0 {
		cfg.Events.BufferSize = 1024
	}
}
