//go:build linux

package hotkeys

import "golang.design/x/hotkey"

// X11 has no dedicated alt/super masks; Mod1 and Mod4 are the conventional
// assignments.
var platformModifiers = map[string]hotkey.Modifier{
	"ctrl":  hotkey.ModCtrl,
	"shift": hotkey.ModShift,
	"alt":   hotkey.Mod1,
	"win":   hotkey.Mod4,
}
