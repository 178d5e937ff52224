package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFile_ReturnsDefault(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, path, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path == "" {
		t.Fatalf("expected config path")
	}
	if got := cfg.Host(); got != DefaultHost {
		t.Fatalf("cfg.Host() = %q, want %q", got, DefaultHost)
	}
	if got := cfg.Port(); got != DefaultPort {
		t.Fatalf("cfg.Port() = %d, want %d", got, DefaultPort)
	}
	if got := cfg.CountdownPeriod(); got != DefaultCountdownPeriod {
		t.Fatalf("cfg.CountdownPeriod() = %d, want %d", got, DefaultCountdownPeriod)
	}
	if got := cfg.KeepRecent(); got != DefaultKeepRecent {
		t.Fatalf("cfg.KeepRecent() = %d, want %d", got, DefaultKeepRecent)
	}
	if got := cfg.MemoryWindow(); got != DefaultMemoryWindow {
		t.Fatalf("cfg.MemoryWindow() = %d, want %d", got, DefaultMemoryWindow)
	}
	if got := cfg.RelayTimeout(); got != DefaultRelayTimeoutSeconds*time.Second {
		t.Fatalf("cfg.RelayTimeout() = %v, want %v", got, DefaultRelayTimeoutSeconds*time.Second)
	}
}

func TestEnsureDefaultConfig_CreatesFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := EnsureDefaultConfig()
	if err != nil {
		t.Fatalf("EnsureDefaultConfig() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file to exist at %s: %v", path, err)
	}

	cfg, gotPath, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if filepath.Clean(gotPath) != filepath.Clean(path) {
		t.Fatalf("Load() path = %s, want %s", gotPath, path)
	}
	if got := cfg.Host(); got != DefaultHost {
		t.Fatalf("cfg.Host() = %q, want %q", got, DefaultHost)
	}
}

func TestLoad_ParsesFullConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	configDir := filepath.Join(home, ".mnemon")
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")

	content := "server:\n  host: 0.0.0.0\n  port: 9090\ndata:\n  dir: /tmp/mnemon-data\ncompaction:\n  countdown_period: 4\n  keep_recent: 2\n  memory_window: 3\n  relay_timeout_seconds: 5\n"
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.Host(); got != "0.0.0.0" {
		t.Fatalf("cfg.Host() = %q, want %q", got, "0.0.0.0")
	}
	if got := cfg.Port(); got != 9090 {
		t.Fatalf("cfg.Port() = %d, want %d", got, 9090)
	}
	if got := cfg.DataDir(); got != "/tmp/mnemon-data" {
		t.Fatalf("cfg.DataDir() = %q, want %q", got, "/tmp/mnemon-data")
	}
	if got := cfg.CountdownPeriod(); got != 4 {
		t.Fatalf("cfg.CountdownPeriod() = %d, want %d", got, 4)
	}
	if got := cfg.KeepRecent(); got != 2 {
		t.Fatalf("cfg.KeepRecent() = %d, want %d", got, 2)
	}
	if got := cfg.MemoryWindow(); got != 3 {
		t.Fatalf("cfg.MemoryWindow() = %d, want %d", got, 3)
	}
	if got := cfg.RelayTimeout(); got != 5*time.Second {
		t.Fatalf("cfg.RelayTimeout() = %v, want %v", got, 5*time.Second)
	}
}

func TestLoad_RejectsInvalidPort(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	configDir := filepath.Join(home, ".mnemon")
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("server:\n  port: 70000\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, err := Load(); err == nil {
		t.Fatalf("Load() expected error for invalid port")
	}
}

func TestLoad_RejectsInvalidCountdownPeriod(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	configDir := filepath.Join(home, ".mnemon")
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("compaction:\n  countdown_period: 0\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, err := Load(); err == nil {
		t.Fatalf("Load() expected error for zero countdown period")
	}
}
