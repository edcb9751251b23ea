package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all logifyer configuration.
type Config struct {
	Storage StorageConfig `toml:"storage"`
	Account AccountConfig `toml:"account"`
	Remote  RemoteConfig  `toml:"remote"`
	Insight InsightConfig `toml:"insight"`
	Log     LogConfig     `toml:"log"`
	MCP     MCPConfig     `toml:"mcp"`
}

type StorageConfig struct {
	// Path overrides database discovery when set.
	Path    string `toml:"path"`
	Profile string `toml:"profile"`
}

type AccountConfig struct {
	UserID string `toml:"user_id"`
}

type RemoteConfig struct {
	// Backend is "rest" or "memory".
	Backend           string  `toml:"backend"`
	URL               string  `toml:"url"`
	APIKey            string  `toml:"api_key"`
	AccessToken       string  `toml:"access_token"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

type InsightConfig struct {
	Model      string `toml:"model"`
	APIKey     string `toml:"api_key"`
	BaseURL    string `toml:"base_url"`
	CacheHours int    `toml:"cache_hours"`
	MaxTokens  int    `toml:"max_tokens"`
}

type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `toml:"level"`
	// Format is text or json.
	Format string `toml:"format"`
}

type MCPConfig struct {
	ServerName    string `toml:"server_name"`
	ServerVersion string `toml:"server_version"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Remote: RemoteConfig{
			Backend:           "rest",
			TimeoutSeconds:    15,
			RequestsPerSecond: 10,
			Burst:             5,
		},
		Insight: InsightConfig{
			Model:      "gpt-4o-mini",
			CacheHours: 24,
			MaxTokens:  300,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		MCP: MCPConfig{
			ServerName:    "logifyer-journal",
			ServerVersion: "1.0.0",
		},
	}
}

// Timeout returns the per-call remote timeout.
func (r RemoteConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long generated insights stay cached.
func (i InsightConfig) CacheTTL() time.Duration {
	return time.Duration(i.CacheHours) * time.Hour
}

// Load reads config from the given path, falling back to defaults, then applies
// environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return cfg, err
		default:
			if _, err := toml.Decode(string(data), &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	applyEnv(&cfg)
	return cfg, cfg.Validate()
}

// envOverrides maps environment variables onto config fields.
var envOverrides = []struct {
	name  string
	field func(*Config) *string
}{
	{"SUPABASE_URL", func(c *Config) *string { return &c.Remote.URL }},
	{"SUPABASE_ANON_KEY", func(c *Config) *string { return &c.Remote.APIKey }},
	{"SUPABASE_ACCESS_TOKEN", func(c *Config) *string { return &c.Remote.AccessToken }},
	{"LOGIFYER_USER_ID", func(c *Config) *string { return &c.Account.UserID }},
	{"LOGIFYER_PROFILE", func(c *Config) *string { return &c.Storage.Profile }},
	{"OPENAI_API_KEY", func(c *Config) *string { return &c.Insight.APIKey }},
	{"OPENAI_MODEL", func(c *Config) *string { return &c.Insight.Model }},
}

func applyEnv(cfg *Config) {
	for _, o := range envOverrides {
		if v := strings.TrimSpace(os.Getenv(o.name)); v != "" {
			*o.field(cfg) = v
		}
	}
}

// Validate checks enumerated and numeric fields.
func (c Config) Validate() error {
	switch c.Remote.Backend {
	case "rest", "memory":
	default:
		return fmt.Errorf("remote.backend must be rest or memory, got %q", c.Remote.Backend)
	}
	if c.Remote.TimeoutSeconds < 0 {
		return fmt.Errorf("remote.timeout_seconds must not be negative")
	}
	if c.Remote.RequestsPerSecond < 0 {
		return fmt.Errorf("remote.requests_per_second must not be negative")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}
