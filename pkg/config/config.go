package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig is read from a YAML file under the user's home directory.
// All fields are optional; defaults are applied by the accessor methods.
//
// Example (~/.mnemon/config.yaml):
//
// server:
//   host: 127.0.0.1
//   port: 8090
// data:
//   dir: /var/lib/mnemon
// compaction:
//   countdown_period: 10
//   keep_recent: 5
//   memory_window: 8
//   relay_timeout_seconds: 30
//
// Notes:
// - If the config file does not exist, Load returns defaults without error.
// - If the config file exists but cannot be parsed, Load returns an error.
// - Port must be between 1 and 65535.

type AppConfig struct {
	Server     ServerConfig     `yaml:"server"`
	Data       DataConfig       `yaml:"data"`
	Compaction CompactionConfig `yaml:"compaction"`
}

type ServerConfig struct {
	Host *string `yaml:"host"`
	Port *int    `yaml:"port"`
}

type DataConfig struct {
	Dir *string `yaml:"dir"`
}

// CompactionConfig tunes the history compaction pipeline. The defaults match
// the shipped behavior: an attempt every 10 appended messages, the newest 5
// active messages kept out of every fold, the last 8 summaries included in
// assembled context, and a 30 second budget for the summarization call.
type CompactionConfig struct {
	CountdownPeriod     *int `yaml:"countdown_period"`
	KeepRecent          *int `yaml:"keep_recent"`
	MemoryWindow        *int `yaml:"memory_window"`
	RelayTimeoutSeconds *int `yaml:"relay_timeout_seconds"`
}

const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 8090

	DefaultCountdownPeriod     = 10
	DefaultKeepRecent          = 5
	DefaultMemoryWindow        = 8
	DefaultRelayTimeoutSeconds = 30
)

// DefaultPaths returns the config dir and config file path.
func DefaultPaths() (configDir string, configFile string, err error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", "", fmt.Errorf("get user home dir: %w", err)
	}
	configDir = filepath.Join(home, ".mnemon")
	configFile = filepath.Join(configDir, "config.yaml")
	return configDir, configFile, nil
}

// Load reads ~/.mnemon/config.yaml.
// If the file doesn't exist, it returns a default config and nil error.
func Load() (*AppConfig, string, error) {
	_, configFile, err := DefaultPaths()
	if err != nil {
		return nil, "", err
	}

	cfg := &AppConfig{}

	b, err := os.ReadFile(configFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, configFile, nil
		}
		return nil, "", fmt.Errorf("read config file %s: %w", configFile, err)
	}

	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, "", fmt.Errorf("parse yaml config %s: %w", configFile, err)
	}

	host := cfg.Host()
	if strings.TrimSpace(host) == "" {
		return nil, "", fmt.Errorf("invalid server.host (empty) in %s", configFile)
	}

	port := cfg.Port()
	if port < 1 || port > 65535 {
		return nil, "", fmt.Errorf("invalid server.port %d in %s", port, configFile)
	}

	if cfg.CountdownPeriod() < 1 {
		return nil, "", fmt.Errorf("invalid compaction.countdown_period %d in %s", cfg.CountdownPeriod(), configFile)
	}
	if cfg.KeepRecent() < 1 {
		return nil, "", fmt.Errorf("invalid compaction.keep_recent %d in %s", cfg.KeepRecent(), configFile)
	}

	return cfg, configFile, nil
}

// EnsureDefaultConfig writes a default config file if it doesn't already exist.
// It is safe to call on startup.
func EnsureDefaultConfig() (string, error) {
	configDir, configFile, err := DefaultPaths()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(configFile); err == nil {
		return configFile, nil
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("create config dir %s: %w", configDir, err)
	}

	defaultCfg := AppConfig{Server: ServerConfig{Host: ptr(DefaultHost), Port: ptr(DefaultPort)}}
	b, err := yaml.Marshal(&defaultCfg)
	if err != nil {
		return "", fmt.Errorf("marshal default config: %w", err)
	}

	// Write with restrictive permissions.
	if err := os.WriteFile(configFile, b, 0o600); err != nil {
		return "", fmt.Errorf("write default config file %s: %w", configFile, err)
	}

	return configFile, nil
}

func (c *AppConfig) Host() string {
	if c == nil || c.Server.Host == nil {
		return DefaultHost
	}
	v := strings.TrimSpace(*c.Server.Host)
	if v == "" {
		return DefaultHost
	}
	return v
}

func (c *AppConfig) Port() int {
	if c == nil || c.Server.Port == nil {
		return DefaultPort
	}
	return *c.Server.Port
}

// DataDir returns the directory holding conversation history and the config
// stores (prompts, providers, API key).
func (c *AppConfig) DataDir() string {
	if c != nil && c.Data.Dir != nil && strings.TrimSpace(*c.Data.Dir) != "" {
		return *c.Data.Dir
	}
	configDir, _, err := DefaultPaths()
	if err != nil {
		return "data"
	}
	return filepath.Join(configDir, "data")
}

func (c *AppConfig) CountdownPeriod() int {
	if c == nil || c.Compaction.CountdownPeriod == nil {
		return DefaultCountdownPeriod
	}
	return *c.Compaction.CountdownPeriod
}

func (c *AppConfig) KeepRecent() int {
	if c == nil || c.Compaction.KeepRecent == nil {
		return DefaultKeepRecent
	}
	return *c.Compaction.KeepRecent
}

func (c *AppConfig) MemoryWindow() int {
	if c == nil || c.Compaction.MemoryWindow == nil {
		return DefaultMemoryWindow
	}
	return *c.Compaction.MemoryWindow
}

func (c *AppConfig) RelayTimeout() time.Duration {
	seconds := DefaultRelayTimeoutSeconds
	if c != nil && c.Compaction.RelayTimeoutSeconds != nil && *c.Compaction.RelayTimeoutSeconds > 0 {
		seconds = *c.Compaction.RelayTimeoutSeconds
	}
	return time.Duration(seconds) * time.Second
}

func ptr[T any](v T) *T { return &v }
