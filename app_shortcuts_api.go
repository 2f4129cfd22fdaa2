package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"shortgroup/internal/history"
	"shortgroup/internal/hotkeys"
	"shortgroup/internal/launcher"
	"shortgroup/internal/order"
	"shortgroup/internal/store"

	"github.com/google/uuid"
)

// ErrShortcutNotFound is returned by operations naming an unknown record ID.
var ErrShortcutNotFound = errors.New("shortcut not found")

func errShortcutNotFound(id string) error {
	return fmt.Errorf("%w: %q", ErrShortcutNotFound, id)
}

var newShortcutIDFn = uuid.NewString

// ShortcutInput carries the editable fields of a shortcut from the frontend.
type ShortcutInput struct {
	Name     string `json:"name"`
	Target   string `json:"url"`
	Hotkey   string `json:"hotkey"`
	Category string `json:"category"`
}

// ListShortcuts returns the records of one category, or all records when
// category is empty, sorted by priority.
func (a *App) ListShortcuts(category string) []store.ShortcutRecord {
	doc := a.documentSnapshot()
	return doc.View(category)
}

// AddShortcut validates input, appends a new record at the end of the
// ordering, persists, and returns the created record.
func (a *App) AddShortcut(input ShortcutInput) (store.ShortcutRecord, error) {
	target, err := launcher.NormalizeTarget(input.Target)
	if err != nil {
		return store.ShortcutRecord{}, err
	}
	combo, err := hotkeys.Normalize(input.Hotkey)
	if err != nil {
		return store.ShortcutRecord{}, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = launcher.DeriveName(target)
	}

	record := store.ShortcutRecord{
		ID:       newShortcutIDFn(),
		Name:     name,
		Target:   target,
		Hotkey:   combo,
		Category: strings.TrimSpace(input.Category),
	}
	if record.Category == "" {
		record.Category = store.DefaultCategory
	}

	err = a.mutateDocument(func(doc *store.Document) error {
		if err := doc.CheckHotkeyConflict(record.ID, record.Hotkey); err != nil {
			return err
		}
		if !doc.HasCategory(record.Category) {
			doc.CategoriesOrder = append(doc.CategoriesOrder, record.Category)
		}
		record.Priority = doc.MaxPriority() + 1
		doc.Shortcuts = append(doc.Shortcuts, record)
		return nil
	})
	if err != nil {
		return store.ShortcutRecord{}, err
	}
	return record, nil
}

// UpdateShortcut replaces the editable fields of an existing record. The
// whole update is rejected when the hotkey conflicts, leaving no partial
// state behind.
func (a *App) UpdateShortcut(id string, input ShortcutInput) (store.ShortcutRecord, error) {
	target, err := launcher.NormalizeTarget(input.Target)
	if err != nil {
		return store.ShortcutRecord{}, err
	}
	combo, err := hotkeys.Normalize(input.Hotkey)
	if err != nil {
		return store.ShortcutRecord{}, err
	}

	var updated store.ShortcutRecord
	err = a.mutateDocument(func(doc *store.Document) error {
		record := doc.FindShortcut(id)
		if record == nil {
			return errShortcutNotFound(id)
		}
		if err := doc.CheckHotkeyConflict(id, combo); err != nil {
			return err
		}

		record.Target = target
		record.Hotkey = combo
		if name := strings.TrimSpace(input.Name); name != "" {
			record.Name = name
		} else {
			record.Name = launcher.DeriveName(target)
		}
		if category := strings.TrimSpace(input.Category); category != "" && category != record.Category {
			if !doc.HasCategory(category) {
				doc.CategoriesOrder = append(doc.CategoriesOrder, category)
			}
			record.Category = category
		}
		updated = *record
		return nil
	})
	if err != nil {
		return store.ShortcutRecord{}, err
	}
	return updated, nil
}

// DeleteShortcut removes a record. Its category stays even when emptied;
// categories are removed only through the category API.
func (a *App) DeleteShortcut(id string) error {
	err := a.mutateDocument(func(doc *store.Document) error {
		for i := range doc.Shortcuts {
			if doc.Shortcuts[i].ID == id {
				doc.Shortcuts = append(doc.Shortcuts[:i], doc.Shortcuts[i+1:]...)
				return nil
			}
		}
		return errShortcutNotFound(id)
	})
	if err != nil {
		return err
	}
	a.forgetLaunchHistory(id)
	return nil
}

// ReorderShortcut moves a record to newIndex within the view of the given
// category (all records when category is empty) and assigns it a fractional
// priority between its new neighbors. Occasional collisions renumber the
// whole view.
func (a *App) ReorderShortcut(id string, newIndex int, category string) error {
	return a.mutateDocument(func(doc *store.Document) error {
		record := doc.FindShortcut(id)
		if record == nil {
			return errShortcutNotFound(id)
		}

		view := rankedView(doc.View(category), id, newIndex)
		result, err := order.Reprioritize(view, id)
		if err != nil {
			return err
		}

		if len(result.Renumbered) > 0 {
			applyRenumber(doc, category, result.Renumbered)
			return nil
		}
		record.Priority = result.Priority
		return nil
	})
}

// applyRenumber persists a renumbered view. A category-scoped renumber is
// widened to the whole document: the category's slots in the aggregate
// ordering are refilled with the view's new sequence and every record gets a
// fresh 1..n rank, so the reset sequence cannot tie with records outside the
// view.
func applyRenumber(doc *store.Document, category string, renumbered []order.Ranked) {
	if category == "" {
		for _, ranked := range renumbered {
			if target := doc.FindShortcut(ranked.ID); target != nil {
				target.Priority = ranked.Priority
			}
		}
		return
	}

	inView := make(map[string]bool, len(renumbered))
	for _, ranked := range renumbered {
		inView[ranked.ID] = true
	}
	next := 0
	rank := 1.0
	for _, record := range doc.View("") {
		id := record.ID
		if inView[id] {
			id = renumbered[next].ID
			next++
		}
		if target := doc.FindShortcut(id); target != nil {
			target.Priority = rank
		}
		rank++
	}
}

// rankedView projects the view records into rank entries with the moved
// record repositioned at newIndex (clamped to the view bounds).
func rankedView(records []store.ShortcutRecord, movedID string, newIndex int) []order.Ranked {
	without := make([]order.Ranked, 0, len(records))
	var moved *order.Ranked
	for _, record := range records {
		entry := order.Ranked{ID: record.ID, Priority: record.Priority}
		if record.ID == movedID {
			moved = &entry
			continue
		}
		without = append(without, entry)
	}
	if moved == nil {
		return without
	}
	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex > len(without) {
		newIndex = len(without)
	}
	view := make([]order.Ranked, 0, len(without)+1)
	view = append(view, without[:newIndex]...)
	view = append(view, *moved)
	view = append(view, without[newIndex:]...)
	return view
}

// MoveShortcutToCategory reassigns a record to another category and appends
// it at the end of the ordering, matching a drop onto a category tab.
func (a *App) MoveShortcutToCategory(id string, category string) error {
	category = strings.TrimSpace(category)
	if err := store.ValidateCategoryName(category); err != nil {
		return err
	}
	return a.mutateDocument(func(doc *store.Document) error {
		record := doc.FindShortcut(id)
		if record == nil {
			return errShortcutNotFound(id)
		}
		if !doc.HasCategory(category) {
			doc.CategoriesOrder = append(doc.CategoriesOrder, category)
		}
		if record.Category == category {
			return nil
		}
		record.Category = category
		record.Priority = doc.MaxPriority() + 1
		return nil
	})
}

// LaunchShortcut opens a record's target from the UI.
func (a *App) LaunchShortcut(id string) error {
	return a.launchShortcutByID(id, history.SourceUI)
}

// forgetLaunchHistory drops the launch rows of a deleted record. Best effort.
func (a *App) forgetLaunchHistory(id string) {
	launches := a.launches
	if launches == nil {
		return
	}
	if err := launches.Forget(context.Background(), id); err != nil {
		slog.Warn("[history] failed to forget launches", "shortcutID", id, "error", err)
	}
}
