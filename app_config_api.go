package main

import (
	"log/slog"

	"shortgroup/internal/config"
)

// GetAppConfig returns the current application config.
func (a *App) GetAppConfig() config.Config {
	return a.getConfigSnapshot()
}

// UpdateAppConfig validates, persists, and adopts a new config. The
// returned value carries any clamping applied during validation. A changed
// hotkey debounce or data directory takes effect on the next start.
func (a *App) UpdateAppConfig(cfg config.Config) (config.Config, error) {
	a.cfgMu.RLock()
	path := a.configPath
	a.cfgMu.RUnlock()

	normalized, err := saveConfigFn(path, cfg)
	if err != nil {
		slog.Warn("[WARN-CONFIG] failed to persist config", "path", path, "error", err)
		return a.getConfigSnapshot(), err
	}
	a.setConfigSnapshot(normalized)
	return normalized, nil
}
