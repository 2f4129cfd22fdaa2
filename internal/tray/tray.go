// Package tray runs the system tray icon and its menu. systray owns its own
// OS loop; Run blocks the calling goroutine until Quit.
package tray

import (
	"log/slog"

	"github.com/getlantern/systray"
)

// Callbacks are invoked on the tray goroutine. Implementations hand work to
// the app's dispatch queue; they must not block.
type Callbacks struct {
	OnToggleWindow func()
	OnAddShortcut  func()
	OnQuit         func()
}

// Tray wraps the systray lifecycle.
type Tray struct {
	icon      []byte
	tooltip   string
	callbacks Callbacks
}

// New prepares a tray with the given icon bytes (ICO on Windows, PNG
// elsewhere) and tooltip.
func New(icon []byte, tooltip string, cb Callbacks) *Tray {
	return &Tray{icon: icon, tooltip: tooltip, callbacks: cb}
}

// Run starts the tray loop and blocks until Stop or the Quit menu item.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Stop ends the tray loop. Safe to call from any goroutine.
func (t *Tray) Stop() {
	systray.Quit()
}

func (t *Tray) onReady() {
	if len(t.icon) > 0 {
		systray.SetIcon(t.icon)
	}
	systray.SetTitle("ShortGroup")
	systray.SetTooltip(t.tooltip)

	toggleItem := systray.AddMenuItem("Show / Hide Window", "Toggle the main window")
	addItem := systray.AddMenuItem("Add Shortcut...", "Open the window on the add-shortcut form")
	systray.AddSeparator()
	quitItem := systray.AddMenuItem("Quit ShortGroup", "Exit the application")

	go func() {
		for {
			select {
			case _, ok := <-toggleItem.ClickedCh:
				if !ok {
					return
				}
				t.invoke(t.callbacks.OnToggleWindow)
			case _, ok := <-addItem.ClickedCh:
				if !ok {
					return
				}
				t.invoke(t.callbacks.OnAddShortcut)
			case _, ok := <-quitItem.ClickedCh:
				if !ok {
					return
				}
				t.invoke(t.callbacks.OnQuit)
				systray.Quit()
				return
			}
		}
	}()
	slog.Debug("[tray] tray ready")
}

func (t *Tray) onExit() {
	slog.Debug("[tray] tray exited")
}

func (t *Tray) invoke(cb func()) {
	if cb != nil {
		cb()
	}
}
