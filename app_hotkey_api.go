package main

import (
	"errors"
	"fmt"
	"log/slog"

	"shortgroup/internal/hotkeys"
	"shortgroup/internal/store"
)

// ErrHotkeyRejected is returned when the OS refuses to register a chord.
var ErrHotkeyRejected = errors.New("hotkey rejected by the system")

// GetGlobalHotkey returns the show/hide window binding.
func (a *App) GetGlobalHotkey() string {
	doc := a.documentSnapshot()
	return doc.GlobalHotkey
}

// SetGlobalHotkey rebinds the show/hide window toggle. An empty spec
// disables the toggle. The binding is rejected when a shortcut already
// uses it; when the OS refuses the chord the previous binding is restored
// and re-persisted so the toggle keeps working.
func (a *App) SetGlobalHotkey(spec string) error {
	combo, err := hotkeys.Normalize(spec)
	if err != nil {
		return err
	}

	previous := a.documentSnapshot().GlobalHotkey
	err = a.mutateDocument(func(doc *store.Document) error {
		if combo != "" {
			for _, sc := range doc.Shortcuts {
				if sc.Hotkey == combo {
					return store.ErrHotkeyInUse
				}
			}
		}
		doc.GlobalHotkey = combo
		return nil
	})
	if err != nil {
		return err
	}
	if combo == "" || a.registry == nil || a.globalToggleActive() {
		return nil
	}

	// The OS refused the chord during reconciliation. A stored toggle that
	// cannot fire would survive restarts, so roll back to the previous
	// binding and persist the rollback.
	slog.Warn("[hotkey] global toggle rejected, restoring previous binding",
		"combo", combo, "previous", previous)
	if revertErr := a.mutateDocument(func(doc *store.Document) error {
		doc.GlobalHotkey = previous
		return nil
	}); revertErr != nil {
		slog.Warn("[hotkey] failed to persist restored toggle", "error", revertErr)
	}
	return fmt.Errorf("%w: %q", ErrHotkeyRejected, combo)
}

// globalToggleActive reports whether the window toggle is live with the OS.
func (a *App) globalToggleActive() bool {
	for _, owner := range a.registry.ActiveBindings() {
		if owner == hotkeys.GlobalToggleID {
			return true
		}
	}
	return false
}

// ActiveHotkeys returns the bindings currently registered with the OS,
// keyed by owner. The window toggle appears under its own reserved key.
func (a *App) ActiveHotkeys() map[string]string {
	active := map[string]string{}
	if a.registry == nil {
		return active
	}
	for combo, owner := range a.registry.ActiveBindings() {
		active[owner] = combo
	}
	return active
}
