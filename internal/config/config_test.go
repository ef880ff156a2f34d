package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "empty port", mutate: func(c *Config) { c.Port = "" }},
		{name: "unknown backend", mutate: func(c *Config) { c.Backend = "dynamo" }},
		{name: "unknown provider", mutate: func(c *Config) { c.Provider = "claude" }},
		{name: "empty model", mutate: func(c *Config) { c.Model = "" }},
		{name: "negative cache", mutate: func(c *Config) { c.CacheSize = -1 }},
		{name: "zero upload limit", mutate: func(c *Config) { c.MaxUploadBytes = 0 }},
		{name: "temperature out of range", mutate: func(c *Config) { c.Temperature = 3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stackscan.yml")
	content := "port: \"9000\"\nbackend: sqlite\nmodel: gemini-1.5-pro\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("STACKSCAN_PROVIDER", "ollama")
	t.Setenv("STACKSCAN_MODEL", "llava:13b")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Expected port 9000 from file, got %s", cfg.Port)
	}
	if cfg.Backend != "sqlite" {
		t.Errorf("Expected sqlite backend from file, got %s", cfg.Backend)
	}
	if cfg.Provider != "ollama" {
		t.Errorf("Expected env to override provider, got %s", cfg.Provider)
	}
	if cfg.Model != "llava:13b" {
		t.Errorf("Expected env to override model, got %s", cfg.Model)
	}
	// Untouched fields keep defaults.
	if cfg.SessionsDir != "sessions" {
		t.Errorf("Expected default sessions dir, got %s", cfg.SessionsDir)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yml")); err == nil {
		t.Error("Expected error for missing config file")
	}
}
