// Package config holds the serve configuration: defaults, an optional YAML
// file overlay, and environment overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds service configuration.
type Config struct {
	Port           string  `yaml:"port"`
	SessionsDir    string  `yaml:"sessionsDir"`
	UploadsDir     string  `yaml:"uploadsDir"`
	Backend        string  `yaml:"backend"`  // csv or sqlite
	Provider       string  `yaml:"provider"` // gemini, ollama, or openai
	Model          string  `yaml:"model"`
	Temperature    float64 `yaml:"temperature"`
	CacheSize      int     `yaml:"cacheSize"`
	MaxUploadBytes int64   `yaml:"maxUploadBytes"`
}

// Default returns the configuration the service starts with when no file or
// environment override applies.
func Default() *Config {
	return &Config{
		Port:           "8000",
		SessionsDir:    "sessions",
		UploadsDir:     "uploads",
		Backend:        "csv",
		Provider:       "gemini",
		Model:          "gemini-1.5-flash",
		Temperature:    0.1,
		CacheSize:      128,
		MaxUploadBytes: 20 << 20,
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment overrides, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"PORT":                   &c.Port,
		"STACKSCAN_SESSIONS_DIR": &c.SessionsDir,
		"STACKSCAN_UPLOADS_DIR":  &c.UploadsDir,
		"STACKSCAN_BACKEND":      &c.Backend,
		"STACKSCAN_PROVIDER":     &c.Provider,
		"STACKSCAN_MODEL":        &c.Model,
	}
	for key, target := range overrides {
		if value := os.Getenv(key); value != "" {
			*target = value
		}
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port cannot be empty")
	}
	if c.SessionsDir == "" {
		return fmt.Errorf("sessions dir cannot be empty")
	}
	if c.UploadsDir == "" {
		return fmt.Errorf("uploads dir cannot be empty")
	}
	switch c.Backend {
	case "csv", "sqlite":
	default:
		return fmt.Errorf("unsupported backend: %s", c.Backend)
	}
	switch c.Provider {
	case "gemini", "ollama", "openai":
	default:
		return fmt.Errorf("unsupported provider: %s", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache size cannot be negative")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive")
	}
	return nil
}
