// Package config loads the eaglepub YAML configuration. All settings have
// working defaults, so running without a config file is fine; a file only
// needs to override what differs.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

// Config models the eaglepub config file.
type Config struct {
	API     API     `yaml:"api"`
	Cache   Cache   `yaml:"cache"`
	Publish Publish `yaml:"publish"`
	Log     Log     `yaml:"log"`
}

// API configures the Eagle endpoint client.
type API struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Cache configures reference-data caching.
type Cache struct {
	TTLSeconds int `yaml:"ttl_seconds"`
}

// Publish configures batch pacing.
type Publish struct {
	DelayMillis int `yaml:"delay_millis"`
}

// Log configures the session logbook.
type Log struct {
	Path string `yaml:"path"`
}

const defaultBaseURL = "https://dev-api.conducttr.com/v1.1/eagle"

// Default returns a Config with every field at its default.
func Default() *Config {
	return &Config{
		API:     API{BaseURL: defaultBaseURL, TimeoutSeconds: 30},
		Cache:   Cache{TTLSeconds: 300},
		Publish: Publish{DelayMillis: 500},
	}
}

// ConfigDir returns the XDG config directory for eaglepub.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "eaglepub")
}

// DataDir returns the XDG data directory for eaglepub.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "eaglepub")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/eaglepub/config.yaml > ./config.yaml.
// No file found is not an error: defaults apply and an empty path is
// returned.
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", nil
}

// Load reads and parses a config file. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	c.Log.Path = strings.TrimSpace(c.Log.Path)
}

func (c *Config) validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("api.timeout_seconds must be > 0")
	}
	if c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("cache.ttl_seconds must be > 0")
	}
	if c.Publish.DelayMillis < 0 {
		return fmt.Errorf("publish.delay_millis must be >= 0")
	}
	return nil
}

// Timeout returns the HTTP client timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// TTL returns the reference-data time-to-live.
func (c *Config) TTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// Delay returns the inter-publish pacing delay.
func (c *Config) Delay() time.Duration {
	return time.Duration(c.Publish.DelayMillis) * time.Millisecond
}

// LogPath returns the configured logbook path, defaulting into DataDir.
func (c *Config) LogPath() string {
	if c.Log.Path != "" {
		return c.Log.Path
	}
	return filepath.Join(DataDir(), "eaglepub.log")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
