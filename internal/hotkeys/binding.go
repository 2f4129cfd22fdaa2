// Package hotkeys maintains the live set of OS-level global hotkey
// registrations for the application: the window toggle binding plus one
// binding per shortcut record that declares one.
package hotkeys

import (
	"fmt"
	"strings"
)

// Binding describes a parsed global hotkey.
// Construct only via ParseBinding to guarantee invariant consistency.
type Binding struct {
	modifiers  []string
	key        string
	normalized string
}

// Modifiers returns the canonical modifier tokens in parse order.
func (b Binding) Modifiers() []string { return append([]string(nil), b.modifiers...) }

// Key returns the canonical key token.
func (b Binding) Key() string { return b.key }

// Normalized returns the canonical combo string, e.g. "ctrl+alt+k".
func (b Binding) Normalized() string { return b.normalized }

// canonicalModifiers maps accepted modifier spellings to canonical tokens.
var canonicalModifiers = map[string]string{
	"ctrl":    "ctrl",
	"control": "ctrl",
	"shift":   "shift",
	"alt":     "alt",
	"win":     "win",
	"super":   "win",
	"cmd":     "win",
}

// modifierRank fixes canonical ordering so "shift+ctrl+k" and "ctrl+shift+k"
// normalize to the same string.
var modifierRank = map[string]int{
	"ctrl":  0,
	"shift": 1,
	"alt":   2,
	"win":   3,
}

// canonicalKeys maps accepted key spellings to canonical tokens for the
// non-character keys the backend supports.
var canonicalKeys = map[string]string{
	"space":  "space",
	"tab":    "tab",
	"enter":  "enter",
	"return": "enter",
	"esc":    "esc",
	"escape": "esc",
	"delete": "delete",
	"up":     "up",
	"down":   "down",
	"left":   "left",
	"right":  "right",
}

// ParseBinding parses a combo such as "Ctrl+Shift+X" into a Binding with the
// canonical lowercase form "ctrl+shift+x". At least one modifier is required;
// the final token must be a letter, digit, function key, or named key.
func ParseBinding(spec string) (Binding, error) {
	raw := strings.TrimSpace(spec)
	if raw == "" {
		return Binding{}, fmt.Errorf("hotkey spec is empty")
	}

	parts := strings.Split(raw, "+")
	if len(parts) < 2 {
		return Binding{}, fmt.Errorf("hotkey must include modifiers and key: %q", raw)
	}

	seen := map[string]struct{}{}
	var mods []string
	for _, token := range parts[:len(parts)-1] {
		name := strings.ToLower(strings.TrimSpace(token))
		mod, ok := canonicalModifiers[name]
		if !ok {
			return Binding{}, fmt.Errorf("unknown modifier %q in hotkey %q", token, raw)
		}
		if _, exists := seen[mod]; exists {
			continue
		}
		seen[mod] = struct{}{}
		mods = append(mods, mod)
	}
	if len(mods) == 0 {
		return Binding{}, fmt.Errorf("at least one modifier is required: %q", raw)
	}
	sortModifiers(mods)

	key, err := parseKeyToken(parts[len(parts)-1], raw)
	if err != nil {
		return Binding{}, err
	}

	return Binding{
		modifiers:  mods,
		key:        key,
		normalized: strings.Join(append(mods, key), "+"),
	}, nil
}

// Normalize returns the canonical form of spec, or an error for specs that
// ParseBinding rejects. Empty input normalizes to empty (no binding).
func Normalize(spec string) (string, error) {
	if strings.TrimSpace(spec) == "" {
		return "", nil
	}
	b, err := ParseBinding(spec)
	if err != nil {
		return "", err
	}
	return b.Normalized(), nil
}

func parseKeyToken(raw string, combo string) (string, error) {
	token := strings.ToLower(strings.TrimSpace(raw))
	if token == "" {
		return "", fmt.Errorf("missing key token in hotkey %q", combo)
	}
	if key, ok := canonicalKeys[token]; ok {
		return key, nil
	}
	if isFunctionKey(token) {
		return token, nil
	}
	if len(token) == 1 {
		ch := token[0]
		if (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') {
			return token, nil
		}
	}
	return "", fmt.Errorf("unknown key %q in hotkey %q", raw, combo)
}

func isFunctionKey(token string) bool {
	if len(token) < 2 || token[0] != 'f' {
		return false
	}
	n := 0
	for _, r := range token[1:] {
		if r < '0' || r > '9' {
			return false
		}
		n = n*10 + int(r-'0')
	}
	return n >= 1 && n <= 20
}

func sortModifiers(mods []string) {
	// Insertion sort: at most four elements.
	for i := 1; i < len(mods); i++ {
		for j := i; j > 0 && modifierRank[mods[j]] < modifierRank[mods[j-1]]; j-- {
			mods[j], mods[j-1] = mods[j-1], mods[j]
		}
	}
}
