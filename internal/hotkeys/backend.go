package hotkeys

import (
	"fmt"
	"log/slog"

	"golang.design/x/hotkey"
)

// Backend performs OS-level hotkey registration. The production backend wraps
// golang.design/x/hotkey; tests substitute a fake so registry behavior can be
// exercised without an OS hook.
//
// Register binds onTrigger to the chord and returns a function that releases
// the binding. onTrigger is invoked on a backend-owned goroutine, never on
// the UI thread.
type Backend interface {
	Register(b Binding, onTrigger func()) (unregister func(), err error)
}

type systemBackend struct{}

// NewSystemBackend returns the golang.design/x/hotkey backed Backend.
func NewSystemBackend() Backend { return systemBackend{} }

func (systemBackend) Register(b Binding, onTrigger func()) (func(), error) {
	mods, key, err := platformChord(b)
	if err != nil {
		return nil, err
	}

	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return nil, fmt.Errorf("register %q: %w", b.Normalized(), err)
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-hk.Keydown():
				onTrigger()
			}
		}
	}()

	unregister := func() {
		close(done)
		if err := hk.Unregister(); err != nil {
			slog.Warn("[hotkey] unregister failed", "binding", b.Normalized(), "error", err)
		}
	}
	return unregister, nil
}

// platformChord translates a parsed Binding into the backend library's
// modifier and key values. The modifier table is platform specific (see
// modifiers_*.go); the key table is shared.
func platformChord(b Binding) ([]hotkey.Modifier, hotkey.Key, error) {
	mods := make([]hotkey.Modifier, 0, len(b.modifiers))
	for _, m := range b.modifiers {
		mod, ok := platformModifiers[m]
		if !ok {
			return nil, 0, fmt.Errorf("modifier %q is not supported on this platform", m)
		}
		mods = append(mods, mod)
	}
	key, ok := backendKeys[b.key]
	if !ok {
		return nil, 0, fmt.Errorf("key %q is not supported by the hotkey backend", b.key)
	}
	return mods, key, nil
}

// backendKeys maps canonical key tokens to backend key codes.
var backendKeys = map[string]hotkey.Key{
	"a": hotkey.KeyA, "b": hotkey.KeyB, "c": hotkey.KeyC, "d": hotkey.KeyD,
	"e": hotkey.KeyE, "f": hotkey.KeyF, "g": hotkey.KeyG, "h": hotkey.KeyH,
	"i": hotkey.KeyI, "j": hotkey.KeyJ, "k": hotkey.KeyK, "l": hotkey.KeyL,
	"m": hotkey.KeyM, "n": hotkey.KeyN, "o": hotkey.KeyO, "p": hotkey.KeyP,
	"q": hotkey.KeyQ, "r": hotkey.KeyR, "s": hotkey.KeyS, "t": hotkey.KeyT,
	"u": hotkey.KeyU, "v": hotkey.KeyV, "w": hotkey.KeyW, "x": hotkey.KeyX,
	"y": hotkey.KeyY, "z": hotkey.KeyZ,

	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3,
	"4": hotkey.Key4, "5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7,
	"8": hotkey.Key8, "9": hotkey.Key9,

	"f1": hotkey.KeyF1, "f2": hotkey.KeyF2, "f3": hotkey.KeyF3,
	"f4": hotkey.KeyF4, "f5": hotkey.KeyF5, "f6": hotkey.KeyF6,
	"f7": hotkey.KeyF7, "f8": hotkey.KeyF8, "f9": hotkey.KeyF9,
	"f10": hotkey.KeyF10, "f11": hotkey.KeyF11, "f12": hotkey.KeyF12,
	"f13": hotkey.KeyF13, "f14": hotkey.KeyF14, "f15": hotkey.KeyF15,
	"f16": hotkey.KeyF16, "f17": hotkey.KeyF17, "f18": hotkey.KeyF18,
	"f19": hotkey.KeyF19, "f20": hotkey.KeyF20,

	"space":  hotkey.KeySpace,
	"tab":    hotkey.KeyTab,
	"enter":  hotkey.KeyReturn,
	"esc":    hotkey.KeyEscape,
	"delete": hotkey.KeyDelete,
	"up":     hotkey.KeyUp,
	"down":   hotkey.KeyDown,
	"left":   hotkey.KeyLeft,
	"right":  hotkey.KeyRight,
}
