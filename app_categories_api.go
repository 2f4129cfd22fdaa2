package main

import (
	"errors"
	"fmt"
	"strings"

	"shortgroup/internal/store"
)

// ErrCategoryNotFound is returned by operations naming an unknown category.
var ErrCategoryNotFound = errors.New("category not found")

// ErrCategoryExists is returned when a new category name is already taken.
var ErrCategoryExists = errors.New("category already exists")

func errCategoryNotFound(name string) error {
	return fmt.Errorf("%w: %q", ErrCategoryNotFound, name)
}

// ListCategories returns the category tabs in display order.
func (a *App) ListCategories() []string {
	doc := a.documentSnapshot()
	return doc.CategoriesOrder
}

// AddCategory appends an empty category tab.
func (a *App) AddCategory(name string) error {
	name = strings.TrimSpace(name)
	if err := store.ValidateCategoryName(name); err != nil {
		return err
	}
	return a.mutateDocument(func(doc *store.Document) error {
		if doc.HasCategory(name) {
			return fmt.Errorf("%w: %q", ErrCategoryExists, name)
		}
		doc.CategoriesOrder = append(doc.CategoriesOrder, name)
		return nil
	})
}

// RenameCategory renames a tab and relabels every record in it. Renaming to
// an existing category merges the two tabs at the old one's position.
func (a *App) RenameCategory(oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if err := store.ValidateCategoryName(newName); err != nil {
		return err
	}
	if oldName == newName {
		return nil
	}
	return a.mutateDocument(func(doc *store.Document) error {
		if !doc.HasCategory(oldName) {
			return errCategoryNotFound(oldName)
		}
		merging := doc.HasCategory(newName)
		order := doc.CategoriesOrder[:0]
		for _, name := range doc.CategoriesOrder {
			switch {
			case name == oldName && merging:
				// The surviving tab keeps its own position.
			case name == oldName:
				order = append(order, newName)
			default:
				order = append(order, name)
			}
		}
		doc.CategoriesOrder = order
		for i := range doc.Shortcuts {
			if doc.Shortcuts[i].Category == oldName {
				doc.Shortcuts[i].Category = newName
			}
		}
		return nil
	})
}

// DeleteCategory removes a tab. Records in it move to moveTo when given,
// otherwise they are deleted with the tab. The last remaining category
// cannot be deleted.
func (a *App) DeleteCategory(name string, moveTo string) error {
	moveTo = strings.TrimSpace(moveTo)
	if moveTo != "" {
		if err := store.ValidateCategoryName(moveTo); err != nil {
			return err
		}
		if moveTo == name {
			return fmt.Errorf("cannot move records from %q into itself", name)
		}
	}

	var removed []string
	err := a.mutateDocument(func(doc *store.Document) error {
		if !doc.HasCategory(name) {
			return errCategoryNotFound(name)
		}
		if len(doc.CategoriesOrder) == 1 {
			return fmt.Errorf("cannot delete the last category %q", name)
		}
		if moveTo != "" && !doc.HasCategory(moveTo) {
			return errCategoryNotFound(moveTo)
		}

		order := doc.CategoriesOrder[:0]
		for _, existing := range doc.CategoriesOrder {
			if existing != name {
				order = append(order, existing)
			}
		}
		doc.CategoriesOrder = order

		if moveTo != "" {
			base := doc.MaxPriority()
			for i := range doc.Shortcuts {
				if doc.Shortcuts[i].Category == name {
					base++
					doc.Shortcuts[i].Category = moveTo
					doc.Shortcuts[i].Priority = base
				}
			}
			return nil
		}

		kept := doc.Shortcuts[:0]
		for _, sc := range doc.Shortcuts {
			if sc.Category == name {
				removed = append(removed, sc.ID)
				continue
			}
			kept = append(kept, sc)
		}
		doc.Shortcuts = kept
		return nil
	})
	if err != nil {
		return err
	}
	for _, id := range removed {
		a.forgetLaunchHistory(id)
	}
	return nil
}

// ReorderCategory moves a tab to newIndex in the display order.
func (a *App) ReorderCategory(name string, newIndex int) error {
	return a.mutateDocument(func(doc *store.Document) error {
		if !doc.HasCategory(name) {
			return errCategoryNotFound(name)
		}
		order := make([]string, 0, len(doc.CategoriesOrder))
		for _, existing := range doc.CategoriesOrder {
			if existing != name {
				order = append(order, existing)
			}
		}
		if newIndex < 0 {
			newIndex = 0
		}
		if newIndex > len(order) {
			newIndex = len(order)
		}
		reordered := make([]string, 0, len(order)+1)
		reordered = append(reordered, order[:newIndex]...)
		reordered = append(reordered, name)
		reordered = append(reordered, order[newIndex:]...)
		doc.CategoriesOrder = reordered
		return nil
	})
}
