package main

import (
	"context"
	"slices"
	"testing"
	"time"

	"shortgroup/internal/store"
)

func TestWaitWithTimeout(t *testing.T) {
	if !waitWithTimeout(func() {}, time.Second) {
		t.Fatal("immediate return must report completion")
	}
	block := make(chan struct{})
	defer close(block)
	if waitWithTimeout(func() { <-block }, 10*time.Millisecond) {
		t.Fatal("blocked wait must report timeout")
	}
}

func TestStartupWarningsAccumulateAndConsumeOnce(t *testing.T) {
	app := NewApp()

	app.addStartupWarning("first problem")
	app.addStartupWarning("   ")
	app.addStartupWarning("second problem")

	message := app.consumeStartupWarnings()
	want := "first problem\nsecond problem"
	if message != want {
		t.Fatalf("message = %q, want %q", message, want)
	}
	if again := app.consumeStartupWarnings(); again != "" {
		t.Fatalf("second consume = %q, want empty", again)
	}
}

func TestFlushStartupWarningsEmitsEvent(t *testing.T) {
	app, capture := newTestApp(t)

	app.flushStartupWarnings()
	if len(capture.eventNames()) != 0 {
		t.Fatal("flush with no warnings must not emit")
	}

	app.addStartupWarning("config unreadable")
	app.flushStartupWarnings()
	if !slices.Contains(capture.eventNames(), eventStartupWarning) {
		t.Fatalf("events = %v, want %s", capture.eventNames(), eventStartupWarning)
	}
}

func TestToggleWindowShowsWhenMinimised(t *testing.T) {
	app, _ := newTestApp(t)

	origIsMin := runtimeWindowIsMinimisedFn
	origHide := runtimeWindowHideFn
	origShow := runtimeWindowShowFn
	origUnmin := runtimeWindowUnminimiseFn
	origTop := runtimeWindowSetAlwaysOnTopFn
	t.Cleanup(func() {
		runtimeWindowIsMinimisedFn = origIsMin
		runtimeWindowHideFn = origHide
		runtimeWindowShowFn = origShow
		runtimeWindowUnminimiseFn = origUnmin
		runtimeWindowSetAlwaysOnTopFn = origTop
	})

	hidden, shown, unminimised := 0, 0, 0
	runtimeWindowIsMinimisedFn = func(context.Context) bool { return true }
	runtimeWindowHideFn = func(context.Context) { hidden++ }
	runtimeWindowShowFn = func(context.Context) { shown++ }
	runtimeWindowUnminimiseFn = func(context.Context) { unminimised++ }
	runtimeWindowSetAlwaysOnTopFn = func(context.Context, bool) {}

	// Visible flag is stale: the OS minimised the window behind our back.
	app.setWindowVisible(true)
	app.toggleWindow()

	if hidden != 0 || shown != 1 || unminimised != 1 {
		t.Fatalf("hidden=%d shown=%d unminimised=%d, want minimised window raised", hidden, shown, unminimised)
	}
}

func TestToggleWindowSkipsWhileToggleInProgress(t *testing.T) {
	app, _ := newTestApp(t)

	origIsMin := runtimeWindowIsMinimisedFn
	t.Cleanup(func() { runtimeWindowIsMinimisedFn = origIsMin })
	runtimeWindowIsMinimisedFn = func(context.Context) bool {
		t.Fatal("window state must not be queried while a toggle is in progress")
		return false
	}

	app.windowToggling.Store(true)
	app.toggleWindow()
}

func TestBringWindowToFrontWithoutRuntimeContext(t *testing.T) {
	app := NewApp()

	origShow := runtimeWindowShowFn
	t.Cleanup(func() { runtimeWindowShowFn = origShow })
	runtimeWindowShowFn = func(context.Context) {
		t.Fatal("window must not be touched before the runtime context exists")
	}

	app.bringWindowToFront()
}

func TestReloadDocumentFromDiskSkipsIdenticalContent(t *testing.T) {
	app, capture := newTestApp(t)
	doc := testDocument()
	if err := store.Save(app.docPath, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}
	res, err := store.Load(app.docPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	app.setDocument(res.Document)

	app.reloadDocumentFromDisk()
	if got := capture.eventNames(); len(got) != 0 {
		t.Fatalf("events = %v, want none for unchanged content", got)
	}
}

func TestReloadDocumentFromDiskAdoptsExternalEdit(t *testing.T) {
	app, capture := newTestApp(t)
	doc := testDocument()
	app.setDocument(doc)

	edited := doc.Clone()
	edited.FindShortcut("id-docs").Name = "Docs (edited)"
	if err := store.Save(app.docPath, edited); err != nil {
		t.Fatalf("Save: %v", err)
	}

	app.reloadDocumentFromDisk()

	snapshot := app.documentSnapshot()
	if got := snapshot.FindShortcut("id-docs").Name; got != "Docs (edited)" {
		t.Fatalf("name = %q, want external edit adopted", got)
	}
	if !slices.Contains(capture.eventNames(), eventShortcutsChanged) {
		t.Fatalf("events = %v, want %s", capture.eventNames(), eventShortcutsChanged)
	}
}

func TestReloadDocumentFromDiskIgnoresMissingFile(t *testing.T) {
	app, capture := newTestApp(t)
	doc := testDocument()
	app.setDocument(doc)

	// Nothing was ever written to docPath.
	app.reloadDocumentFromDisk()

	if len(capture.eventNames()) != 0 {
		t.Fatalf("events = %v, want none", capture.eventNames())
	}
}
