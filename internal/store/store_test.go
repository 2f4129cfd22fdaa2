package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func settingsPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "shortcuts.json")
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	res, err := Load(settingsPath(t))
	if err != nil {
		t.Fatalf("Load returned error for missing file: %v", err)
	}
	if res.Document.GlobalHotkey != DefaultGlobalHotkey {
		t.Fatalf("GlobalHotkey = %q, want %q", res.Document.GlobalHotkey, DefaultGlobalHotkey)
	}
	if len(res.Document.Shortcuts) != 0 {
		t.Fatalf("Shortcuts = %v, want empty", res.Document.Shortcuts)
	}
}

func TestLoadCorruptedFileReturnsDefaults(t *testing.T) {
	path := settingsPath(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	res, err := Load(path)
	if err == nil {
		t.Fatal("Load of corrupted file expected an error for the caller to warn about")
	}
	// Defaults must still be usable.
	if res.Document.GlobalHotkey != DefaultGlobalHotkey {
		t.Fatalf("GlobalHotkey = %q, want default", res.Document.GlobalHotkey)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := settingsPath(t)
	doc := Document{
		CategoriesOrder: []string{"Work", "Play"},
		GlobalHotkey:    "ctrl+shift+x",
		Shortcuts: []ShortcutRecord{
			{ID: "b", Name: "Beta", Target: "https://beta.example.com", Category: "Play", Priority: 2.0},
			{ID: "a", Name: "Alpha", Target: "https://alpha.example.com", Category: "Work", Priority: 1.0, Hotkey: "ctrl+alt+a"},
		},
	}

	if err := Save(path, doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	res, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if res.Repaired {
		t.Fatal("round-tripped document should not need repair")
	}
	got := res.Document
	if len(got.Shortcuts) != 2 {
		t.Fatalf("Shortcuts = %d, want 2", len(got.Shortcuts))
	}
	// Save sorts by priority.
	if got.Shortcuts[0].ID != "a" || got.Shortcuts[1].ID != "b" {
		t.Fatalf("shortcuts not sorted by priority: %v", got.Shortcuts)
	}
	if got.Shortcuts[0].Hotkey != "ctrl+alt+a" {
		t.Fatalf("Hotkey = %q, want ctrl+alt+a", got.Shortcuts[0].Hotkey)
	}
	if len(got.CategoriesOrder) != 2 || got.CategoriesOrder[0] != "Work" {
		t.Fatalf("CategoriesOrder = %v", got.CategoriesOrder)
	}
}

func TestLoadRepairsLegacyDocument(t *testing.T) {
	path := settingsPath(t)
	legacy := map[string]any{
		"categories_order":          []string{"Tools"},
		"global_show_window_hotkey": "ctrl+shift+x",
		"shortcuts": []map[string]any{
			{"name": "NoID", "url": "https://a.example.com", "category": "Tools", "priority": 1.0},
			{"id": "x", "name": "NoCategory", "url": "https://b.example.com", "priority": 2.0},
			{"id": "y", "name": "NoPriority", "url": "https://c.example.com", "category": "Tools"},
			{"id": "z", "name": "NewCat", "url": "https://d.example.com", "category": "Media", "priority": 4.0},
		},
	}
	raw, err := json.Marshal(legacy)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatal(err)
	}

	res, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !res.Repaired {
		t.Fatal("legacy document should report Repaired")
	}
	doc := res.Document

	if doc.Shortcuts[0].ID == "" {
		t.Fatal("missing ID was not assigned")
	}
	if doc.Shortcuts[1].Category != "Tools" {
		t.Fatalf("missing category = %q, want fallback Tools", doc.Shortcuts[1].Category)
	}
	if doc.Shortcuts[2].Priority <= 0 {
		t.Fatalf("missing priority = %v, want positive", doc.Shortcuts[2].Priority)
	}
	if !doc.HasCategory("Media") {
		t.Fatalf("category referenced by record not added to order: %v", doc.CategoriesOrder)
	}
}

func TestLoadEmptyDocumentGetsDefaultCategory(t *testing.T) {
	path := settingsPath(t)
	if err := os.WriteFile(path, []byte(`{"categories_order":[],"shortcuts":[],"global_show_window_hotkey":""}`), 0o600); err != nil {
		t.Fatal(err)
	}

	res, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !res.Document.HasCategory(DefaultCategory) {
		t.Fatalf("CategoriesOrder = %v, want default category", res.Document.CategoriesOrder)
	}
}

func TestCheckHotkeyConflict(t *testing.T) {
	doc := Document{
		GlobalHotkey: "ctrl+shift+x",
		Shortcuts: []ShortcutRecord{
			{ID: "a", Name: "Alpha", Hotkey: "ctrl+alt+k"},
			{ID: "b", Name: "Beta"},
		},
	}

	tests := []struct {
		name      string
		selfID    string
		candidate string
		wantErr   error
	}{
		{name: "free combo", selfID: "b", candidate: "ctrl+alt+j", wantErr: nil},
		{name: "empty never conflicts", selfID: "b", candidate: "", wantErr: nil},
		{name: "taken by other record", selfID: "b", candidate: "ctrl+alt+k", wantErr: ErrHotkeyInUse},
		{name: "own existing hotkey", selfID: "a", candidate: "ctrl+alt+k", wantErr: nil},
		{name: "global toggle reserved", selfID: "b", candidate: "ctrl+shift+x", wantErr: ErrHotkeyIsGlobalToggle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := doc.CheckHotkeyConflict(tt.selfID, tt.candidate)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("CheckHotkeyConflict = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CheckHotkeyConflict = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestViewFiltersAndSorts(t *testing.T) {
	doc := Document{
		Shortcuts: []ShortcutRecord{
			{ID: "a", Category: "Work", Priority: 3.0},
			{ID: "b", Category: "Play", Priority: 1.0},
			{ID: "c", Category: "Work", Priority: 2.0},
		},
	}

	work := doc.View("Work")
	if len(work) != 2 || work[0].ID != "c" || work[1].ID != "a" {
		t.Fatalf("View(Work) = %v", work)
	}

	all := doc.View("")
	if len(all) != 3 || all[0].ID != "b" {
		t.Fatalf("View(all) = %v", all)
	}
}

func TestMaxPriority(t *testing.T) {
	doc := Document{}
	if got := doc.MaxPriority(); got != 0 {
		t.Fatalf("MaxPriority(empty) = %v, want 0", got)
	}
	doc.Shortcuts = []ShortcutRecord{{Priority: 1.5}, {Priority: 7.25}, {Priority: 3}}
	if got := doc.MaxPriority(); got != 7.25 {
		t.Fatalf("MaxPriority = %v, want 7.25", got)
	}
}
