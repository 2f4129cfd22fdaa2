// Package store persists the shortcut collection as a single JSON document:
// ordered category names, shortcut records, and the global toggle hotkey.
package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// DefaultCategory is assigned to records that lack one (legacy documents).
const DefaultCategory = "General"

// DefaultGlobalHotkey is the out-of-the-box show/hide window binding.
const DefaultGlobalHotkey = "ctrl+shift+x"

// ShortcutRecord is one registered shortcut.
type ShortcutRecord struct {
	// ID is opaque and immutable after creation.
	ID string `json:"id"`
	// Name is the display label; derived from the target when the user
	// leaves it empty.
	Name string `json:"name"`
	// Target is the web URL or local-file URI the shortcut opens.
	Target string `json:"url"`
	// Hotkey is an optional normalized combo string; unique across records
	// and distinct from the global toggle.
	Hotkey string `json:"hotkey,omitempty"`
	// Category names the group the record belongs to; always exactly one.
	Category string `json:"category"`
	// Priority is the fractional rank ordering records within a category and
	// in the aggregate view.
	Priority float64 `json:"priority"`
	// IconPath is an opaque icon-cache reference owned by the UI layer.
	IconPath string `json:"icon_path,omitempty"`
}

// Document is the persisted top-level structure.
type Document struct {
	CategoriesOrder []string         `json:"categories_order"`
	Shortcuts       []ShortcutRecord `json:"shortcuts"`
	GlobalHotkey    string           `json:"global_show_window_hotkey"`
}

// DefaultDocument returns the state used when no settings file exists yet.
func DefaultDocument() Document {
	return Document{
		CategoriesOrder: []string{},
		Shortcuts:       []ShortcutRecord{},
		GlobalHotkey:    DefaultGlobalHotkey,
	}
}

// Sentinel conflicts surfaced at data-model validation, before any registry
// reconciliation happens.
var (
	ErrHotkeyInUse          = errors.New("hotkey is already used by another shortcut")
	ErrHotkeyIsGlobalToggle = errors.New("hotkey is reserved by the global window toggle")
)

// CheckHotkeyConflict rejects a candidate hotkey for the record selfID when
// another record already stores it or it equals the global toggle. An empty
// candidate never conflicts. The check runs before mutation so a rejected
// edit leaves no partial state.
func (d *Document) CheckHotkeyConflict(selfID string, candidate string) error {
	if candidate == "" {
		return nil
	}
	if d.GlobalHotkey != "" && candidate == d.GlobalHotkey {
		return fmt.Errorf("%w: %q", ErrHotkeyIsGlobalToggle, candidate)
	}
	for i := range d.Shortcuts {
		if d.Shortcuts[i].ID == selfID {
			continue
		}
		if d.Shortcuts[i].Hotkey == candidate {
			return fmt.Errorf("%w: %q (record %q)", ErrHotkeyInUse, candidate, d.Shortcuts[i].Name)
		}
	}
	return nil
}

// FindShortcut returns a pointer into d.Shortcuts for id, or nil.
func (d *Document) FindShortcut(id string) *ShortcutRecord {
	for i := range d.Shortcuts {
		if d.Shortcuts[i].ID == id {
			return &d.Shortcuts[i]
		}
	}
	return nil
}

// SortShortcuts orders d.Shortcuts ascending by priority. Ties keep input
// order; callers repair ties through renumbering, the store does not.
func (d *Document) SortShortcuts() {
	sort.SliceStable(d.Shortcuts, func(i, j int) bool {
		return d.Shortcuts[i].Priority < d.Shortcuts[j].Priority
	})
}

// View returns the records of one category (or all records when category is
// empty), sorted ascending by priority.
func (d *Document) View(category string) []ShortcutRecord {
	var out []ShortcutRecord
	for i := range d.Shortcuts {
		if category == "" || d.Shortcuts[i].Category == category {
			out = append(out, d.Shortcuts[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

// MaxPriority returns the highest priority across all records, or 0 for an
// empty collection. New records append at MaxPriority()+1.
func (d *Document) MaxPriority() float64 {
	max := 0.0
	for i := range d.Shortcuts {
		if d.Shortcuts[i].Priority > max {
			max = d.Shortcuts[i].Priority
		}
	}
	return max
}

// HasCategory reports whether name is present in the category order.
func (d *Document) HasCategory(name string) bool {
	for _, c := range d.CategoriesOrder {
		if c == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the document. Use this when handing snapshots
// across goroutine or package boundaries.
func (d Document) Clone() Document {
	out := d
	out.CategoriesOrder = append([]string(nil), d.CategoriesOrder...)
	out.Shortcuts = append([]ShortcutRecord(nil), d.Shortcuts...)
	return out
}

// ValidateCategoryName rejects empty and whitespace-only category names.
func ValidateCategoryName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("category name must not be empty")
	}
	return nil
}
