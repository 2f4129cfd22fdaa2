package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"shortgroup/internal/atomicfile"

	"github.com/google/uuid"
)

const maxSettingsFileBytes int64 = 4 << 20 // 4MB

var userHomeDirFn = os.UserHomeDir
var newIDFn = func() string { return uuid.NewString() }

// DefaultPath resolves the settings file path, preferring LOCALAPPDATA over
// APPDATA, falling back to ~/.config when both are unset, and then to
// os.TempDir() if the home directory cannot be resolved.
func DefaultPath() string {
	base := strings.TrimSpace(os.Getenv("LOCALAPPDATA"))
	if base == "" {
		base = strings.TrimSpace(os.Getenv("APPDATA"))
	}
	if base == "" {
		home, err := userHomeDirFn()
		if err != nil {
			slog.Warn("[store] using temp dir as settings path fallback", "error", err)
			base = os.TempDir()
		} else {
			base = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(base, "ShortGroup", "shortcuts.json")
}

// LoadResult carries a loaded document plus whether it was repaired during
// loading and should be re-persisted.
type LoadResult struct {
	Document Document
	Repaired bool
}

// Load reads the settings document from path. A missing file yields the
// default document with a nil error; a corrupted or oversized file yields the
// default document plus the parse error so callers can warn, never a crash.
// The loaded document is repaired in place (missing IDs, categories,
// priorities).
func Load(path string) (LoadResult, error) {
	if path == "" {
		return LoadResult{Document: DefaultDocument()}, errors.New("settings path required")
	}

	raw, err := readLimitedFile(path, maxSettingsFileBytes)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return LoadResult{Document: DefaultDocument()}, nil
		}
		return LoadResult{Document: DefaultDocument()}, err
	}
	if len(raw) == 0 {
		return LoadResult{Document: DefaultDocument()}, nil
	}

	doc := DefaultDocument()
	if err := json.Unmarshal(raw, &doc); err != nil {
		slog.Warn("[store] settings file is corrupted, starting from defaults", "path", path, "error", err)
		return LoadResult{Document: DefaultDocument()}, fmt.Errorf("parse settings: %w", err)
	}

	repaired := repairDocument(&doc)
	return LoadResult{Document: doc, Repaired: repaired}, nil
}

// Save sorts shortcuts by priority and atomically writes the document.
// In-memory state stays valid when the write fails; durability is only
// guaranteed once Save returns nil.
func Save(path string, doc Document) error {
	if path == "" {
		return errors.New("settings path required")
	}
	out := doc.Clone()
	out.SortShortcuts()

	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("save settings: marshal: %w", err)
	}
	if err := atomicfile.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	slog.Debug("[store] settings saved", "path", path, "shortcuts", len(out.Shortcuts))
	return nil
}

// repairDocument fixes legacy and hand-edited documents in place: missing
// record IDs get fresh UUIDs, missing categories fall back to the first
// known (or default) category, and non-positive priorities are reassigned
// incrementally. Returns true when anything changed.
func repairDocument(doc *Document) bool {
	repaired := false

	if doc.CategoriesOrder == nil {
		doc.CategoriesOrder = []string{}
	}
	if doc.Shortcuts == nil {
		doc.Shortcuts = []ShortcutRecord{}
	}

	fallbackCategory := DefaultCategory
	if len(doc.CategoriesOrder) > 0 {
		fallbackCategory = doc.CategoriesOrder[0]
	}

	for i := range doc.Shortcuts {
		sc := &doc.Shortcuts[i]
		if strings.TrimSpace(sc.ID) == "" {
			sc.ID = newIDFn()
			repaired = true
		}
		if strings.TrimSpace(sc.Category) == "" {
			sc.Category = fallbackCategory
			repaired = true
		}
		if sc.Priority <= 0 {
			sc.Priority = float64(i + 1)
			repaired = true
		}
		if !doc.HasCategory(sc.Category) {
			doc.CategoriesOrder = append(doc.CategoriesOrder, sc.Category)
			repaired = true
		}
	}

	if len(doc.CategoriesOrder) == 0 && len(doc.Shortcuts) == 0 {
		doc.CategoriesOrder = []string{DefaultCategory}
		repaired = true
	}

	return repaired
}

func readLimitedFile(path string, maxBytes int64) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	limited := io.LimitReader(file, maxBytes+1)
	raw, err := io.ReadAll(limited)
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > maxBytes {
		return nil, fmt.Errorf("settings file exceeds %d bytes", maxBytes)
	}
	return raw, nil
}
