// Package config loads per-service runtime configuration: environment
// variables for the core knobs (spec §6), with an optional YAML override
// file, hot-reloaded via fsnotify. Grounded on the teacher's
// internal/config/loader.go (env/file layering pattern, yaml.v3 decoding)
// simplified to the handful of fields this spec names.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"terrainforge/pkg/logging"
)

const (
	// DefaultTimeoutSeconds is used when <SERVICE>_TIMEOUT is unset (spec §4.2).
	DefaultTimeoutSeconds = 300
	// DefaultMaxHistory is used when <SERVICE>_MAX_HISTORY is unset (spec §4.9).
	DefaultMaxHistory = 20
	// DefaultPort is used when <SERVICE>_PORT is unset.
	DefaultPort = 8080
)

// Config holds the service's runtime knobs (spec §6 Environment variables).
type Config struct {
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxHistory     int    `yaml:"max_history"`
	Port           int    `yaml:"port"`
	BinaryPath     string `yaml:"binary_path"`
	SandboxRoot    string `yaml:"sandbox_root"`
	LogDir         string `yaml:"log_dir"`
	JobStoreDir    string `yaml:"job_store_dir"`
}

// Default returns a Config with every field at its documented default.
func Default() Config {
	return Config{
		TimeoutSeconds: DefaultTimeoutSeconds,
		MaxHistory:     DefaultMaxHistory,
		Port:           DefaultPort,
	}
}

// Load builds a Config by layering, lowest precedence first: built-in
// defaults, an optional YAML file at path (skipped if it doesn't exist),
// then environment variables prefixed with servicePrefix (e.g.
// "TERRAINFORGE" for TERRAINFORGE_TIMEOUT).
func Load(servicePrefix, yamlPath string) (Config, error) {
	cfg := Default()

	if yamlPath != "" {
		if err := mergeYAMLFile(&cfg, yamlPath); err != nil {
			return Config{}, err
		}
	}

	mergeEnv(&cfg, servicePrefix)

	return cfg, nil
}

func mergeYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Info("config", "no override file at %s, using defaults", path)
			return nil
		}
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}
	logging.Info("config", "loaded override file %s", path)
	return nil
}

func mergeEnv(cfg *Config, prefix string) {
	if v, ok := envInt(prefix + "_TIMEOUT"); ok {
		cfg.TimeoutSeconds = v
	}
	if v, ok := envInt(prefix + "_MAX_HISTORY"); ok {
		cfg.MaxHistory = v
	}
	if v, ok := envInt(prefix + "_PORT"); ok {
		cfg.Port = v
	}
	if v := os.Getenv(prefix + "_BINARY_PATH"); v != "" {
		cfg.BinaryPath = v
	}
	if v := os.Getenv(prefix + "_SANDBOX_ROOT"); v != "" {
		cfg.SandboxRoot = v
	}
	if v := os.Getenv(prefix + "_LOG_DIR"); v != "" {
		cfg.LogDir = v
	}
	if v := os.Getenv(prefix + "_JOB_STORE_DIR"); v != "" {
		cfg.JobStoreDir = v
	}
}

func envInt(name string) (int, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		logging.Warn("config", "ignoring non-integer %s=%q: %v", name, raw, err)
		return 0, false
	}
	return v, true
}
