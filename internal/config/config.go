// Package config loads and saves ShortGroup runtime preferences. Preferences
// are behavior knobs (tray, debounce, data location); the shortcut collection
// itself is the settings document owned by the store package.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"shortgroup/internal/atomicfile"

	"go.yaml.in/yaml/v3"
)

const (
	maxConfigFileBytes int64 = 1 << 20 // 1MB

	// Debounce bounds: below 50ms the window no longer suppresses key-repeat
	// storms, above 5s it swallows intentional repeat presses.
	minDebounceMs     = 50
	maxDebounceMs     = 5000
	defaultDebounceMs = 300
)

var userHomeDirFn = os.UserHomeDir

// Config is ShortGroup runtime configuration.
type Config struct {
	// StartHidden starts the app minimized to the tray instead of showing
	// the main window.
	StartHidden bool `yaml:"start_hidden" json:"start_hidden"`
	// TrayEnabled controls whether the tray icon is created at startup.
	TrayEnabled bool `yaml:"tray_enabled" json:"tray_enabled"`
	// HotkeyDebounceMs is the minimum interval between forwarded activations
	// of the same hotkey, in milliseconds. Out-of-range values are clamped.
	HotkeyDebounceMs int `yaml:"hotkey_debounce_ms" json:"hotkey_debounce_ms"`
	// DataDir overrides the directory holding shortcuts.json. Empty means
	// the platform default. Must be absolute when set.
	DataDir string `yaml:"data_dir,omitempty" json:"data_dir,omitempty"`
	// LaunchHistoryDays is the retention window for the launch history
	// database. 0 disables pruning.
	LaunchHistoryDays int `yaml:"launch_history_days" json:"launch_history_days"`
}

// DefaultConfig returns the out-of-the-box preferences.
func DefaultConfig() Config {
	return Config{
		StartHidden:       false,
		TrayEnabled:       true,
		HotkeyDebounceMs:  defaultDebounceMs,
		LaunchHistoryDays: 90,
	}
}

// DefaultPath resolves the config file path, preferring LOCALAPPDATA over
// APPDATA, falling back to ~/.config when both are unset, and then to
// os.TempDir() if the home directory cannot be resolved.
// The temp-dir fallback is not a stable persistence location and may vary
// between sessions depending on environment configuration.
func DefaultPath() string {
	base := strings.TrimSpace(os.Getenv("LOCALAPPDATA"))
	if base == "" {
		base = strings.TrimSpace(os.Getenv("APPDATA"))
	}
	if base == "" {
		home, err := userHomeDirFn()
		if err != nil {
			// Keep config path resolvable even in restricted environments.
			slog.Warn("[WARN-CONFIG] using temp dir as config path fallback", "error", err)
			base = os.TempDir()
		} else {
			base = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(base, "ShortGroup", "config.yaml")
}

// Load reads config file. If file does not exist, defaults are returned.
// A parse failure returns defaults plus the error so startup can warn without
// aborting.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, errors.New("config path required")
	}

	raw, err := readLimitedFile(path, maxConfigFileBytes)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if len(raw) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		slog.Warn("[WARN-CONFIG] failed to parse config, using defaults", "path", path, "error", err)
		return DefaultConfig(), err
	}
	applyDefaultsAndValidate(&cfg)
	return cfg, nil
}

// EnsureFile writes default config if missing and returns loaded config.
func EnsureFile(path string) (Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		if _, err := Save(path, cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// Save normalizes cfg and atomically writes it to path. Returns the
// normalized config that was actually written to disk.
func Save(path string, cfg Config) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return cfg, errors.New("config path required")
	}
	applyDefaultsAndValidate(&cfg)

	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return cfg, fmt.Errorf("save config: marshal: %w", err)
	}
	if err := atomicfile.WriteFile(path, raw, 0o600); err != nil {
		return cfg, fmt.Errorf("save config: %w", err)
	}
	slog.Debug("[DEBUG-CONFIG] config saved", "path", path)
	return cfg, nil
}

// applyDefaultsAndValidate fills missing defaults and normalizes cfg in-place.
// MUTATES: cfg is directly modified.
// Used by both Load and Save to ensure consistent normalization.
// NOTE: non-fatal; out-of-range values fall back to defaults or clamp instead
// of returning an error, consistent with the policy that config problems must
// not prevent startup.
func applyDefaultsAndValidate(cfg *Config) {
	defaults := DefaultConfig()
	if isZeroConfig(*cfg) {
		*cfg = defaults
		return
	}

	if cfg.HotkeyDebounceMs == 0 {
		cfg.HotkeyDebounceMs = defaults.HotkeyDebounceMs
	}
	if cfg.HotkeyDebounceMs < minDebounceMs || cfg.HotkeyDebounceMs > maxDebounceMs {
		slog.Warn("[WARN-CONFIG] hotkey_debounce_ms out of valid range, clamping",
			"configured", cfg.HotkeyDebounceMs, "min", minDebounceMs, "max", maxDebounceMs)
		if cfg.HotkeyDebounceMs < minDebounceMs {
			cfg.HotkeyDebounceMs = minDebounceMs
		} else {
			cfg.HotkeyDebounceMs = maxDebounceMs
		}
	}

	if cfg.LaunchHistoryDays < 0 {
		slog.Warn("[WARN-CONFIG] launch_history_days is negative, falling back to default",
			"configured", cfg.LaunchHistoryDays, "default", defaults.LaunchHistoryDays)
		cfg.LaunchHistoryDays = defaults.LaunchHistoryDays
	}

	validateDataDir(cfg)
}

// validateDataDir normalizes DataDir in place. Expands the ~ prefix to the
// user's home directory, applies filepath.Clean, and clears non-absolute
// paths with a warning log (non-fatal).
func validateDataDir(cfg *Config) {
	dir := strings.TrimSpace(cfg.DataDir)
	if dir == "" {
		cfg.DataDir = ""
		return
	}
	if strings.HasPrefix(dir, "~") {
		home, err := userHomeDirFn()
		if err != nil {
			slog.Warn("[WARN-CONFIG] data_dir: failed to expand ~, ignoring", "path", dir, "error", err)
			cfg.DataDir = ""
			return
		}
		dir = filepath.Join(home, dir[1:])
	}
	dir = filepath.Clean(dir)
	if !filepath.IsAbs(dir) {
		slog.Warn("[WARN-CONFIG] data_dir is not an absolute path, ignoring", "path", dir)
		cfg.DataDir = ""
		return
	}
	cfg.DataDir = dir
}

func readLimitedFile(path string, maxBytes int64) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	limited := io.LimitReader(file, maxBytes+1)
	raw, err := io.ReadAll(limited)
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > maxBytes {
		return nil, fmt.Errorf("config file exceeds %d bytes", maxBytes)
	}
	return raw, nil
}

func isZeroConfig(cfg Config) bool {
	// reflect.DeepEqual guards against field-addition drift that manual checks miss.
	return reflect.DeepEqual(cfg, Config{})
}
