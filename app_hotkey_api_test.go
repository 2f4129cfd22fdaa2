package main

import (
	"errors"
	"testing"

	"shortgroup/internal/hotkeys"
	"shortgroup/internal/store"
)

// fakeHotkeyBackend tracks live registrations and refuses chords listed in
// rejects, standing in for the OS hook.
type fakeHotkeyBackend struct {
	live    map[string]int
	rejects map[string]bool
}

func newFakeHotkeyBackend() *fakeHotkeyBackend {
	return &fakeHotkeyBackend{live: map[string]int{}, rejects: map[string]bool{}}
}

func (f *fakeHotkeyBackend) Register(b hotkeys.Binding, _ func()) (func(), error) {
	combo := b.Normalized()
	if f.rejects[combo] {
		return nil, errors.New("chord refused")
	}
	f.live[combo]++
	return func() { f.live[combo]-- }, nil
}

func TestSetGlobalHotkeyNormalizesAndPersists(t *testing.T) {
	app, capture := newTestApp(t)
	app.setDocument(testDocument())

	if err := app.SetGlobalHotkey("Ctrl + Alt + G"); err != nil {
		t.Fatalf("SetGlobalHotkey: %v", err)
	}
	saved := capture.lastSaved(t)
	if saved.GlobalHotkey != "ctrl+alt+g" {
		t.Fatalf("global hotkey = %q, want normalized form", saved.GlobalHotkey)
	}
	if app.GetGlobalHotkey() != "ctrl+alt+g" {
		t.Fatalf("GetGlobalHotkey = %q after update", app.GetGlobalHotkey())
	}
}

func TestSetGlobalHotkeyEmptyDisablesToggle(t *testing.T) {
	app, capture := newTestApp(t)
	app.setDocument(testDocument())

	if err := app.SetGlobalHotkey(""); err != nil {
		t.Fatalf("SetGlobalHotkey: %v", err)
	}
	if saved := capture.lastSaved(t); saved.GlobalHotkey != "" {
		t.Fatalf("global hotkey = %q, want empty", saved.GlobalHotkey)
	}
}

func TestSetGlobalHotkeyRejectsShortcutConflict(t *testing.T) {
	app, capture := newTestApp(t)
	app.setDocument(testDocument())

	err := app.SetGlobalHotkey("ctrl+shift+m") // taken by id-mail
	if !errors.Is(err, store.ErrHotkeyInUse) {
		t.Fatalf("err = %v, want ErrHotkeyInUse", err)
	}
	if capture.savedCount() != 0 {
		t.Fatal("rejected rebind must not persist anything")
	}
	if app.GetGlobalHotkey() != "ctrl+shift+x" {
		t.Fatalf("global hotkey changed to %q despite rejection", app.GetGlobalHotkey())
	}
}

func TestSetGlobalHotkeyRevertsWhenBackendRejects(t *testing.T) {
	app, capture := newTestApp(t)
	app.setDocument(testDocument())

	backend := newFakeHotkeyBackend()
	backend.rejects["ctrl+alt+g"] = true
	app.registry = hotkeys.NewRegistry(backend, func(job func()) { job() }, func(string) {})

	err := app.SetGlobalHotkey("ctrl+alt+g")
	if !errors.Is(err, ErrHotkeyRejected) {
		t.Fatalf("err = %v, want ErrHotkeyRejected", err)
	}
	if app.GetGlobalHotkey() != "ctrl+shift+x" {
		t.Fatalf("global hotkey = %q, want previous binding restored", app.GetGlobalHotkey())
	}
	// The rollback must reach disk, not just memory.
	if saved := capture.lastSaved(t); saved.GlobalHotkey != "ctrl+shift+x" {
		t.Fatalf("persisted global hotkey = %q, want previous binding", saved.GlobalHotkey)
	}
	// The previous chord is live again after the rollback reconcile.
	if backend.live["ctrl+shift+x"] != 1 {
		t.Fatalf("backend registrations = %v, want restored toggle live", backend.live)
	}
	if active := app.ActiveHotkeys(); active[hotkeys.GlobalToggleID] != "ctrl+shift+x" {
		t.Fatalf("active = %v, want restored toggle binding", active)
	}
}

func TestSetGlobalHotkeyRejectsMalformedSpec(t *testing.T) {
	app, _ := newTestApp(t)
	app.setDocument(testDocument())

	if err := app.SetGlobalHotkey("q"); err == nil {
		t.Fatal("spec without modifiers must be rejected")
	}
}

func TestActiveHotkeysWithoutRegistry(t *testing.T) {
	app, _ := newTestApp(t)
	if got := app.ActiveHotkeys(); len(got) != 0 {
		t.Fatalf("ActiveHotkeys = %v, want empty map", got)
	}
}

func TestActiveHotkeysReflectsReconciledBindings(t *testing.T) {
	app, _ := newTestApp(t)
	doc := testDocument()
	app.setDocument(doc)

	backend := newFakeHotkeyBackend()
	app.registry = hotkeys.NewRegistry(backend, func(job func()) { job() }, func(string) {})
	app.reconcileFromDocument(doc)

	active := app.ActiveHotkeys()
	if active["id-mail"] != "ctrl+shift+m" {
		t.Fatalf("active = %v, want id-mail binding", active)
	}
	if active[hotkeys.GlobalToggleID] != "ctrl+shift+x" {
		t.Fatalf("active = %v, want global toggle binding", active)
	}
	if backend.live["ctrl+shift+m"] != 1 || backend.live["ctrl+shift+x"] != 1 {
		t.Fatalf("backend registrations = %v, want one per binding", backend.live)
	}
}

func TestMutateDocumentReconcilesHotkeys(t *testing.T) {
	app, _ := newTestApp(t)
	app.setDocument(testDocument())

	backend := newFakeHotkeyBackend()
	app.registry = hotkeys.NewRegistry(backend, func(job func()) { job() }, func(string) {})

	if err := app.DeleteShortcut("id-mail"); err != nil {
		t.Fatalf("DeleteShortcut: %v", err)
	}
	if backend.live["ctrl+shift+m"] != 0 {
		t.Fatalf("backend registrations = %v, want deleted binding released", backend.live)
	}
	if _, ok := app.ActiveHotkeys()["id-mail"]; ok {
		t.Fatal("deleted shortcut still holds an active binding")
	}
}
