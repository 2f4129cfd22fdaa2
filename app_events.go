package main

import (
	"context"
	"log/slog"

	"shortgroup/internal/history"
	"shortgroup/internal/hotkeys"
	"shortgroup/internal/ipc"
	"shortgroup/internal/launcher"
	"shortgroup/internal/store"
)

// Frontend event names.
const (
	// eventShortcutsChanged carries the full document after any mutation or
	// external reload; the frontend re-renders from it.
	eventShortcutsChanged = "shortcuts:changed"
	// eventHotkeyReport carries bindings that could not be activated.
	eventHotkeyReport = "hotkeys:report"
	// eventStartupWarning carries accumulated non-fatal startup problems.
	eventStartupWarning = "app:startup-warning"
	// eventOpenAddForm tells the frontend to open the add-shortcut form.
	eventOpenAddForm = "app:open-add-form"
)

var launchOpenFn = launcher.Open

// emitRuntimeEvent emits via the app context and delegates to
// emitRuntimeEventWithContext.
func (a *App) emitRuntimeEvent(name string, payload any) {
	a.emitRuntimeEventWithContext(a.runtimeContext(), name, payload)
}

// emitRuntimeEventWithContext emits a runtime event only when ctx is non-nil.
func (a *App) emitRuntimeEventWithContext(ctx context.Context, name string, payload any) {
	if ctx == nil {
		slog.Warn("[EVENT] runtime event dropped because app context is nil", "event", name)
		return
	}
	runtimeEventsEmitFn(ctx, name, payload)
}

func (a *App) emitShortcutsChanged(doc store.Document) {
	a.emitRuntimeEvent(eventShortcutsChanged, doc)
}

// hotkeySkipPayload is the wire form of one skipped binding.
type hotkeySkipPayload struct {
	ShortcutID string `json:"shortcut_id"`
	Hotkey     string `json:"hotkey"`
	Reason     string `json:"reason"`
}

func (a *App) emitHotkeyReport(report hotkeys.Report) {
	payload := make([]hotkeySkipPayload, 0, len(report.Skipped))
	for _, skipped := range report.Skipped {
		payload = append(payload, hotkeySkipPayload{
			ShortcutID: skipped.ID,
			Hotkey:     skipped.Hotkey,
			Reason:     string(skipped.Reason),
		})
	}
	a.emitRuntimeEvent(eventHotkeyReport, payload)
}

// onHotkeyTrigger runs on the dispatch goroutine for every debounced hotkey
// activation. The owner identity is resolved by the registry at fire time.
func (a *App) onHotkeyTrigger(ownerID string) {
	if ownerID == hotkeys.GlobalToggleID {
		a.toggleWindow()
		return
	}
	if err := a.launchShortcutByID(ownerID, history.SourceHotkey); err != nil {
		slog.Warn("[hotkey] trigger could not launch shortcut", "shortcutID", ownerID, "error", err)
	}
}

// launchShortcutByID opens the target of the identified record and records
// the launch. The record lookup runs against the current document so a
// trigger never launches a stale target.
func (a *App) launchShortcutByID(id string, source string) error {
	doc := a.documentSnapshot()
	record := doc.FindShortcut(id)
	if record == nil {
		return errShortcutNotFound(id)
	}

	if err := launchOpenFn(record.Target); err != nil {
		return err
	}
	a.recordLaunch(*record, source)
	return nil
}

// recordLaunch appends to launch history. Best effort: a history failure
// never fails the launch.
func (a *App) recordLaunch(record store.ShortcutRecord, source string) {
	launches := a.launches
	if launches == nil {
		return
	}
	err := launches.Record(context.Background(), history.Entry{
		ShortcutID: record.ID,
		Name:       record.Name,
		Target:     record.Target,
		Source:     source,
	})
	if err != nil {
		slog.Warn("[history] failed to record launch", "shortcutID", record.ID, "error", err)
	}
}

// HandleActivation implements ipc.ActivationHandler for requests arriving
// from secondary launches. Runs on a pipe server goroutine; window and
// launch work is handed to the dispatch queue.
func (a *App) HandleActivation(req ipc.ActivationRequest) ipc.ActivationResponse {
	switch req.Action {
	case ipc.ActionActivateWindow, "":
		a.queue.Post(a.bringWindowToFront)
		return ipc.ActivationResponse{OK: true}
	case ipc.ActionOpenShortcut:
		id := req.ShortcutID
		if id == "" {
			return ipc.ActivationResponse{OK: false, Error: "open-shortcut requires a shortcut id"}
		}
		a.queue.Post(func() {
			if err := a.launchShortcutByID(id, history.SourceIPC); err != nil {
				slog.Warn("[ipc] activation launch failed", "shortcutID", id, "error", err)
			}
		})
		return ipc.ActivationResponse{OK: true}
	default:
		return ipc.ActivationResponse{OK: false, Error: "unknown action: " + req.Action}
	}
}
