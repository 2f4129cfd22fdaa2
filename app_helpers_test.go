package main

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"shortgroup/internal/config"
	"shortgroup/internal/store"
)

// NOTE: Tests in this package override package-level function variables
// (saveDocumentFn, runtimeEventsEmitFn, launchOpenFn, ...). Those are
// process-global mutations that are NOT safe for parallel tests. Do not use
// t.Parallel() in this package.

type capturedEvent struct {
	name    string
	payload any
}

// testCapture records the side effects of document mutations so tests can
// assert on persistence and frontend notifications without a Wails runtime.
type testCapture struct {
	mu     sync.Mutex
	events []capturedEvent
	saved  []store.Document
}

func (c *testCapture) eventNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.events))
	for _, ev := range c.events {
		names = append(names, ev.name)
	}
	return names
}

func (c *testCapture) lastSaved(t *testing.T) store.Document {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.saved) == 0 {
		t.Fatal("no document was persisted")
	}
	return c.saved[len(c.saved)-1]
}

func (c *testCapture) savedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.saved)
}

// newTestApp builds an App with persistence and event emission redirected
// into a capture. The runtime context is set so events are not dropped.
func newTestApp(t *testing.T) (*App, *testCapture) {
	t.Helper()

	capture := &testCapture{}

	origSave := saveDocumentFn
	origEmit := runtimeEventsEmitFn
	t.Cleanup(func() {
		saveDocumentFn = origSave
		runtimeEventsEmitFn = origEmit
	})
	saveDocumentFn = func(_ string, doc store.Document) error {
		capture.mu.Lock()
		capture.saved = append(capture.saved, doc)
		capture.mu.Unlock()
		return nil
	}
	runtimeEventsEmitFn = func(_ context.Context, name string, payload ...any) {
		var data any
		if len(payload) > 0 {
			data = payload[0]
		}
		capture.mu.Lock()
		capture.events = append(capture.events, capturedEvent{name: name, payload: data})
		capture.mu.Unlock()
	}

	app := NewApp()
	app.setRuntimeContext(context.Background())
	app.docPath = filepath.Join(t.TempDir(), "shortcuts.json")
	app.setConfigSnapshot(config.DefaultConfig())
	return app, capture
}

// testDocument seeds two categories with three records in priority order.
func testDocument() store.Document {
	return store.Document{
		CategoriesOrder: []string{"General", "Work"},
		Shortcuts: []store.ShortcutRecord{
			{ID: "id-docs", Name: "Docs", Target: "https://docs.example.com", Category: "General", Priority: 1},
			{ID: "id-mail", Name: "Mail", Target: "https://mail.example.com", Hotkey: "ctrl+shift+m", Category: "Work", Priority: 2},
			{ID: "id-wiki", Name: "Wiki", Target: "https://wiki.example.com", Category: "Work", Priority: 3},
		},
		GlobalHotkey: "ctrl+shift+x",
	}
}
