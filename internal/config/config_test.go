package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	bad := `{"api":{"base_url":"ftp://bot.local","prefix":"/api/"}}`
	if err := WriteAtomic(path, []byte(bad), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "api.base_url") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConfigRoundtripAndBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Default()
	cfg.API.BaseURL = "http://10.0.0.5:5000"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("first save: %v", err)
	}

	cfg.Poll.StatusIntervalSeconds = 10
	if err := Save(path, cfg); err != nil {
		t.Fatalf("second save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.StatusInterval() != 10*time.Second {
		t.Fatalf("expected 10s status interval, got %s", loaded.StatusInterval())
	}
	if loaded.API.BaseURL != "http://10.0.0.5:5000" {
		t.Fatalf("unexpected base url %q", loaded.API.BaseURL)
	}

	if _, err := Load(path + ".bak"); err != nil {
		t.Fatalf("expected readable backup config, got: %v", err)
	}
}

func TestLoadYAMLAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "botdash.yaml")
	raw := "api:\n  base_url: https://bot.example.com\nlog:\n  format: json\n"
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load yaml: %v", err)
	}
	if cfg.API.BaseURL != "https://bot.example.com" || cfg.Log.Format != "json" {
		t.Fatalf("yaml values not applied: %+v", cfg)
	}
	if cfg.API.Prefix != "/api/" || cfg.FollowupDelay() != 2*time.Second || cfg.StatusInterval() != 30*time.Second {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestSaveYAMLRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "botdash.yml")
	cfg := Default()
	cfg.Console.AssumeYes = true
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !loaded.Console.AssumeYes {
		t.Fatal("expected assume_yes to survive a yaml roundtrip")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv(EnvBaseURL, "http://override:9000")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	if cfg.API.BaseURL != "http://override:9000" || cfg.Log.Level != "debug" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "empty prefix", mutate: func(c *Config) { c.API.Prefix = "/" }, want: "api.prefix"},
		{name: "negative timeout", mutate: func(c *Config) { c.API.TimeoutSeconds = -1 }, want: "timeout"},
		{name: "zero interval", mutate: func(c *Config) { c.Poll.StatusIntervalSeconds = 0 }, want: "status_interval"},
		{name: "bad level", mutate: func(c *Config) { c.Log.Level = "chatty" }, want: "log.level"},
		{name: "bad format", mutate: func(c *Config) { c.Log.Format = "xml" }, want: "log.format"},
		{name: "audit without path", mutate: func(c *Config) { c.Audit.Path = " " }, want: "audit.path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
