package main

import (
	"log/slog"

	"shortgroup/internal/config"
	"shortgroup/internal/hotkeys"
	"shortgroup/internal/store"
)

// getConfigSnapshot returns the current config protected by cfgMu.
// Config holds no reference-type fields, so a value copy is a full snapshot.
func (a *App) getConfigSnapshot() config.Config {
	a.cfgMu.RLock()
	defer a.cfgMu.RUnlock()
	return a.cfg
}

// setConfigSnapshot stores cfg protected by cfgMu.
func (a *App) setConfigSnapshot(cfg config.Config) {
	a.cfgMu.Lock()
	a.cfg = cfg
	a.cfgMu.Unlock()
}

// documentSnapshot returns a deep-copied document protected by docMu.
// All read access to App.doc should go through this helper.
func (a *App) documentSnapshot() store.Document {
	a.docMu.RLock()
	defer a.docMu.RUnlock()
	return a.doc.Clone()
}

// setDocument stores a deep-copied document protected by docMu.
func (a *App) setDocument(doc store.Document) {
	a.docMu.Lock()
	a.doc = doc.Clone()
	a.docMu.Unlock()
}

// Test seams for persistence and registry side effects.
var (
	saveDocumentFn = store.Save
	saveConfigFn   = config.Save
)

// mutateDocument applies fn to a working copy of the document, commits it,
// persists it, reconciles hotkey registrations, and notifies the frontend.
// When fn returns an error nothing is committed. A failed save keeps the
// in-memory commit (the UI stays consistent) and returns the error so the
// caller can surface it.
func (a *App) mutateDocument(fn func(doc *store.Document) error) error {
	a.docMu.Lock()
	working := a.doc.Clone()
	if err := fn(&working); err != nil {
		a.docMu.Unlock()
		return err
	}
	a.doc = working
	path := a.docPath
	snapshot := working.Clone()
	a.docMu.Unlock()

	saveErr := saveDocumentFn(path, snapshot)
	if saveErr != nil {
		slog.Warn("[store] failed to persist shortcut document", "path", path, "error", saveErr)
	}

	a.reconcileFromDocument(snapshot)
	a.emitShortcutsChanged(snapshot)
	return saveErr
}

// reconcileFromDocument re-registers every hotkey the document names and
// reports skipped bindings to the frontend.
func (a *App) reconcileFromDocument(doc store.Document) {
	if a.registry == nil {
		return
	}
	var requests []hotkeys.Request
	for _, sc := range doc.Shortcuts {
		if sc.Hotkey == "" {
			continue
		}
		requests = append(requests, hotkeys.Request{ID: sc.ID, Hotkey: sc.Hotkey})
	}
	report := a.registry.Reconcile(requests, doc.GlobalHotkey)
	if len(report.Skipped) > 0 {
		a.emitHotkeyReport(report)
	}
}
