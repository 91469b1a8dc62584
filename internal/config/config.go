package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath = ".botdash/config.json"

	EnvBaseURL  = "BOTDASH_BASE_URL"
	EnvPrefix   = "BOTDASH_API_PREFIX"
	EnvLogLevel = "BOTDASH_LOG_LEVEL"
)

type Config struct {
	API     APIConfig     `json:"api" yaml:"api"`
	Poll    PollConfig    `json:"poll" yaml:"poll"`
	Log     LogConfig     `json:"log" yaml:"log"`
	Audit   AuditConfig   `json:"audit" yaml:"audit"`
	Console ConsoleConfig `json:"console" yaml:"console"`
}

type APIConfig struct {
	BaseURL string `json:"base_url" yaml:"base_url"`
	Prefix  string `json:"prefix" yaml:"prefix"`
	// TimeoutSeconds of zero leaves requests unbounded.
	TimeoutSeconds int `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
}

type PollConfig struct {
	StatusIntervalSeconds int `json:"status_interval_seconds" yaml:"status_interval_seconds"`
	FollowupDelayMillis   int `json:"followup_delay_millis" yaml:"followup_delay_millis"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

type AuditConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Path    string `json:"path" yaml:"path"`
}

type ConsoleConfig struct {
	AssumeYes      bool   `json:"assume_yes,omitempty" yaml:"assume_yes,omitempty"`
	DefaultSection string `json:"default_section" yaml:"default_section"`
}

func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://127.0.0.1:5000",
			Prefix:  "/api/",
		},
		Poll: PollConfig{
			StatusIntervalSeconds: 30,
			FollowupDelayMillis:   2000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Audit: AuditConfig{
			Enabled: true,
			Path:    ".botdash/audit.jsonl",
		},
		Console: ConsoleConfig{
			DefaultSection: "overview",
		},
	}
}

func (c *Config) ApplyDefaults() {
	d := Default()
	if c.API.BaseURL == "" {
		c.API.BaseURL = d.API.BaseURL
	}
	if c.API.Prefix == "" {
		c.API.Prefix = d.API.Prefix
	}
	if c.Poll.StatusIntervalSeconds == 0 {
		c.Poll.StatusIntervalSeconds = d.Poll.StatusIntervalSeconds
	}
	if c.Poll.FollowupDelayMillis == 0 {
		c.Poll.FollowupDelayMillis = d.Poll.FollowupDelayMillis
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Audit.Path == "" {
		c.Audit.Path = d.Audit.Path
	}
	if c.Console.DefaultSection == "" {
		c.Console.DefaultSection = d.Console.DefaultSection
	}
}

// ApplyEnv overrides file values with the BOTDASH_* environment variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(EnvBaseURL); ok && strings.TrimSpace(v) != "" {
		c.API.BaseURL = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvPrefix); ok && strings.TrimSpace(v) != "" {
		c.API.Prefix = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvLogLevel); ok && strings.TrimSpace(v) != "" {
		c.Log.Level = strings.TrimSpace(v)
	}
}

func (c Config) Validate() error {
	u, err := url.Parse(strings.TrimSpace(c.API.BaseURL))
	if err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url must be an http(s) url: %q", c.API.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("api.base_url has no host: %q", c.API.BaseURL)
	}
	if strings.Trim(c.API.Prefix, "/ ") == "" {
		return errors.New("api.prefix cannot be empty")
	}
	if c.API.TimeoutSeconds < 0 {
		return errors.New("api.timeout_seconds must be >= 0")
	}
	if c.Poll.StatusIntervalSeconds < 1 {
		return errors.New("poll.status_interval_seconds must be >= 1")
	}
	if c.Poll.FollowupDelayMillis < 0 {
		return errors.New("poll.followup_delay_millis must be >= 0")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("unsupported log.format: %q", c.Log.Format)
	}
	if c.Audit.Enabled && strings.TrimSpace(c.Audit.Path) == "" {
		return errors.New("audit.path is required when audit is enabled")
	}
	return nil
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

func (c Config) StatusInterval() time.Duration {
	return time.Duration(c.Poll.StatusIntervalSeconds) * time.Second
}

func (c Config) FollowupDelay() time.Duration {
	return time.Duration(c.Poll.FollowupDelayMillis) * time.Millisecond
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func LoadOrDefault(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			cfg.ApplyEnv(nil)
			return cfg, cfg.Validate()
		}
		return Config{}, err
	}
	return Load(path)
}

func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if isYAML(path) {
		err = yaml.Unmarshal(raw, &cfg)
	} else {
		err = json.Unmarshal(raw, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.ApplyDefaults()
	cfg.ApplyEnv(nil)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Save writes cfg in the format implied by the file extension.
func Save(path string, cfg Config) error {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	var (
		buf []byte
		err error
	)
	if isYAML(path) {
		buf, err = yaml.Marshal(cfg)
	} else {
		buf, err = json.MarshalIndent(cfg, "", "  ")
		buf = append(buf, '\n')
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return WriteAtomic(path, buf, 0o600)
}
