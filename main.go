package main

import (
	"embed"
	"errors"
	"log/slog"
	"os"

	"shortgroup/internal/ipc"
	"shortgroup/internal/singleinstance"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	// Single-instance check BEFORE any Wails/WebView2 initialization.
	// Two simultaneous instances would race on shortcuts.json and double-register
	// every global hotkey.
	mutexLock, err := singleinstance.TryLock(singleinstance.DefaultMutexName())
	if errors.Is(err, singleinstance.ErrAlreadyRunning) {
		slog.Info("[DEBUG-SINGLE] another instance is already running, signaling activation")
		if _, sendErr := ipc.Send("", activationRequestFromArgs(os.Args[1:])); sendErr != nil {
			slog.Warn("[DEBUG-SINGLE] failed to signal existing instance", "error", sendErr)
		}
		return
	}
	if err != nil {
		// A failed mutex creation must not block startup outright.
		slog.Warn("[DEBUG-SINGLE] mutex creation failed, proceeding without single-instance guard", "error", err)
	}
	if mutexLock != nil {
		defer func() {
			if releaseErr := mutexLock.Release(); releaseErr != nil {
				slog.Warn("[DEBUG-SINGLE] mutex release failed", "error", releaseErr)
			}
		}()
	}

	app := NewApp()

	err = wails.Run(&options.App{
		Title:     "ShortGroup",
		Width:     520,
		Height:    760,
		MinWidth:  380,
		MinHeight: 480,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 18, G: 18, B: 24, A: 1},
		HideWindowOnClose: true,
		OnStartup:  app.startup,
		OnShutdown: app.shutdown,
		Bind: []any{
			app,
		},
	})

	if err != nil {
		slog.Error("[DEBUG-SINGLE] wails run failed", "error", err)
	}
}

// activationRequestFromArgs maps command-line arguments of a secondary launch
// onto the activation protocol: "-open <id>" launches that shortcut in the
// running instance, anything else just raises its window.
func activationRequestFromArgs(args []string) ipc.ActivationRequest {
	for i, arg := range args {
		if arg == "-open" && i+1 < len(args) {
			return ipc.ActivationRequest{Action: ipc.ActionOpenShortcut, ShortcutID: args[i+1]}
		}
	}
	return ipc.ActivationRequest{Action: ipc.ActionActivateWindow}
}
