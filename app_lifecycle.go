package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"shortgroup/internal/config"
	"shortgroup/internal/history"
	"shortgroup/internal/hotkeys"
	"shortgroup/internal/ipc"
	"shortgroup/internal/store"
	"shortgroup/internal/tray"
	"shortgroup/internal/workerutil"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

type appRuntimeLogger interface {
	Warningf(context.Context, string, ...interface{})
	Infof(context.Context, string, ...interface{})
	Errorf(context.Context, string, ...interface{})
}

type wailsRuntimeLogger struct{}

func formatRuntimeLogMessage(message string, args ...interface{}) string {
	if len(args) == 0 {
		return message
	}
	return fmt.Sprintf(message, args...)
}

func (wailsRuntimeLogger) Warningf(ctx context.Context, message string, args ...interface{}) {
	if ctx == nil {
		slog.Warn(formatRuntimeLogMessage(message, args...))
		return
	}
	runtime.LogWarningf(ctx, message, args...)
}

func (wailsRuntimeLogger) Infof(ctx context.Context, message string, args ...interface{}) {
	if ctx == nil {
		slog.Info(formatRuntimeLogMessage(message, args...))
		return
	}
	runtime.LogInfof(ctx, message, args...)
}

func (wailsRuntimeLogger) Errorf(ctx context.Context, message string, args ...interface{}) {
	if ctx == nil {
		slog.Error(formatRuntimeLogMessage(message, args...))
		return
	}
	runtime.LogErrorf(ctx, message, args...)
}

var (
	runtimeEventsEmitFn                            = runtime.EventsEmit
	runtimeLogger                 appRuntimeLogger = wailsRuntimeLogger{}
	newPipeServerFn                                = ipc.NewPipeServer
	newSystemBackendFn                             = hotkeys.NewSystemBackend
	watchStoreFn                                   = store.Watch
	openHistoryFn                                  = history.Open
	runtimeWindowIsMinimisedFn                     = runtime.WindowIsMinimised
	runtimeWindowHideFn                            = runtime.WindowHide
	runtimeWindowShowFn                            = runtime.WindowShow
	runtimeWindowUnminimiseFn                      = runtime.WindowUnminimise
	runtimeWindowSetAlwaysOnTopFn                  = runtime.WindowSetAlwaysOnTop
)

const shutdownWaitTimeout = 10 * time.Second

func (a *App) addStartupWarning(message string) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return
	}
	a.startupWarnMu.Lock()
	a.startupWarnings = append(a.startupWarnings, trimmed)
	a.startupWarnMu.Unlock()
}

func (a *App) consumeStartupWarnings() string {
	a.startupWarnMu.Lock()
	defer a.startupWarnMu.Unlock()
	if len(a.startupWarnings) == 0 {
		return ""
	}
	message := strings.Join(a.startupWarnings, "\n")
	a.startupWarnings = nil
	return message
}

func (a *App) startup(ctx context.Context) {
	setConsoleUTF8()

	a.setRuntimeContext(ctx)
	a.setWindowVisible(true)

	a.configPath = config.DefaultPath()
	cfg, err := config.EnsureFile(a.configPath)
	if err != nil {
		// Config load/parse failures are non-fatal; continue with defaults and
		// surface a warning to the user.
		cfg = config.DefaultConfig()
		a.addStartupWarning(
			"Failed to load config file at startup. Running with defaults. Error: " + err.Error(),
		)
		runtimeLogger.Warningf(ctx, "failed to load config from %s: %v", a.configPath, err)
	}
	a.setConfigSnapshot(cfg)

	a.docPath = store.DefaultPath()
	if cfg.DataDir != "" {
		a.docPath = filepath.Join(cfg.DataDir, "shortcuts.json")
	}
	a.loadDocumentAtStartup(ctx)

	bgCtx, cancel := context.WithCancel(context.Background())
	a.bgCancel = cancel

	a.registry = hotkeys.NewRegistry(
		newSystemBackendFn(),
		func(job func()) { a.queue.Post(job) },
		a.onHotkeyTrigger,
		hotkeys.WithDebounce(time.Duration(cfg.HotkeyDebounceMs)*time.Millisecond),
	)
	workerutil.RunWithPanicRecovery(bgCtx, "dispatch-queue", &a.bgWG, a.queue.Run, workerutil.RecoveryOptions{
		IsShutdown: a.shuttingDown.Load,
	})
	a.reconcileFromDocument(a.documentSnapshot())

	a.startStoreWatcher(bgCtx)
	a.openLaunchHistory(bgCtx, cfg)
	a.startPipeServer(ctx)
	a.startTray(cfg)

	if cfg.StartHidden {
		runtimeWindowHideFn(ctx)
		a.setWindowVisible(false)
	}
	a.flushStartupWarnings()
}

// loadDocumentAtStartup reads the shortcut document, warns about corruption,
// and persists any repairs so the next start sees a clean file.
func (a *App) loadDocumentAtStartup(ctx context.Context) {
	res, err := store.Load(a.docPath)
	if err != nil {
		a.addStartupWarning(
			"Shortcut data could not be read and was reset to defaults. Error: " + err.Error(),
		)
		runtimeLogger.Warningf(ctx, "failed to load shortcuts from %s: %v", a.docPath, err)
	}
	a.setDocument(res.Document)
	if res.Repaired {
		runtimeLogger.Infof(ctx, "shortcut document repaired during load, persisting")
		if saveErr := saveDocumentFn(a.docPath, res.Document); saveErr != nil {
			runtimeLogger.Warningf(ctx, "failed to persist repaired shortcuts: %v", saveErr)
		}
	}
}

func (a *App) startStoreWatcher(bgCtx context.Context) {
	watcher, err := watchStoreFn(bgCtx, a.docPath, func() {
		a.queue.Post(a.reloadDocumentFromDisk)
	})
	if err != nil {
		slog.Warn("[store] settings watcher unavailable, external edits require restart", "error", err)
		return
	}
	a.watcher = watcher
}

func (a *App) openLaunchHistory(bgCtx context.Context, cfg config.Config) {
	historyPath := filepath.Join(filepath.Dir(a.docPath), "history.db")
	launches, err := openHistoryFn(historyPath)
	if err != nil {
		slog.Warn("[history] launch history unavailable", "path", historyPath, "error", err)
		a.addStartupWarning("Launch history is unavailable this session. Error: " + err.Error())
		return
	}
	a.launches = launches

	a.bgWG.Add(1)
	go func() {
		defer a.bgWG.Done()
		if _, err := launches.Prune(bgCtx, cfg.LaunchHistoryDays); err != nil {
			slog.Warn("[history] prune failed", "error", err)
		}
	}()
}

func (a *App) startPipeServer(ctx context.Context) {
	a.pipeServer = newPipeServerFn("", a)
	if err := a.pipeServer.Start(); err != nil {
		runtimeLogger.Errorf(ctx, "pipe server failed: %v", err)
		a.addStartupWarning(
			"Failed to start the activation pipe server. A second launch will not focus this window. Error: " + err.Error(),
		)
		return
	}
	runtimeLogger.Infof(ctx, "pipe server listening: %s", a.pipeServer.PipeName())
}

func (a *App) startTray(cfg config.Config) {
	if !cfg.TrayEnabled {
		return
	}
	a.trayIcon = tray.New(nil, "ShortGroup", tray.Callbacks{
		OnToggleWindow: func() { a.queue.Post(a.toggleWindow) },
		OnAddShortcut:  func() { a.queue.Post(func() { a.emitRuntimeEvent(eventOpenAddForm, nil) }) },
		OnQuit:         func() { a.queue.Post(a.quitFromTray) },
	})
	// systray owns its own OS loop and must not run on the Wails main thread.
	a.bgWG.Add(1)
	go func() {
		defer a.bgWG.Done()
		a.trayIcon.Run()
	}()
}

func (a *App) quitFromTray() {
	ctx := a.runtimeContext()
	if ctx == nil {
		return
	}
	runtime.Quit(ctx)
}

func (a *App) flushStartupWarnings() {
	message := a.consumeStartupWarnings()
	if message == "" {
		return
	}
	a.emitRuntimeEvent(eventStartupWarning, message)
}

// reloadDocumentFromDisk handles external edits to shortcuts.json. Runs on
// the dispatch goroutine. Our own saves produce identical content and are
// skipped by the equality check.
func (a *App) reloadDocumentFromDisk() {
	// Editors replace files by delete+rename; a transiently missing file must
	// not reset in-memory state to defaults.
	if _, statErr := os.Stat(a.docPath); os.IsNotExist(statErr) {
		return
	}
	res, err := store.Load(a.docPath)
	if err != nil {
		slog.Warn("[store] ignoring unreadable external edit", "path", a.docPath, "error", err)
		return
	}

	a.docMu.Lock()
	same := reflect.DeepEqual(a.doc, res.Document)
	if !same {
		a.doc = res.Document.Clone()
	}
	a.docMu.Unlock()
	if same {
		return
	}

	slog.Info("[store] shortcut document changed on disk, reloading")
	snapshot := res.Document.Clone()
	a.reconcileFromDocument(snapshot)
	a.emitShortcutsChanged(snapshot)
}

func (a *App) shutdown(_ context.Context) {
	a.shuttingDown.Store(true)
	logCtx := a.runtimeContext()

	if a.registry != nil {
		a.registry.UnregisterAll()
	}
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			runtimeLogger.Warningf(logCtx, "settings watcher close failed: %v", err)
		}
	}
	if a.pipeServer != nil {
		if err := a.pipeServer.Stop(); err != nil {
			runtimeLogger.Warningf(logCtx, "pipe server stop failed: %v", err)
		}
	}
	if a.trayIcon != nil {
		a.trayIcon.Stop()
	}

	if a.bgCancel != nil {
		a.bgCancel()
		a.bgCancel = nil
	}
	if !waitWithTimeout(a.bgWG.Wait, shutdownWaitTimeout) {
		runtimeLogger.Warningf(logCtx, "timed out waiting for background workers during shutdown")
	}

	if a.launches != nil {
		if err := a.launches.Close(); err != nil {
			runtimeLogger.Warningf(logCtx, "launch history close failed: %v", err)
		}
	}
}

func waitWithTimeout(waitFn func(), timeout time.Duration) bool {
	// Best effort timeout guard for shutdown paths. The waiting goroutine may
	// outlive timeout when waitFn blocks indefinitely, but this function is only
	// used during process shutdown where eventual completion is expected.
	done := make(chan struct{})
	go func() {
		waitFn()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}

// bringWindowToFront shows and raises the application window.
// Used when a second instance signals the first to activate.
func (a *App) bringWindowToFront() {
	ctx := a.runtimeContext()
	if ctx == nil {
		slog.Warn("[DEBUG-IPC] bringWindowToFront dropped because runtime context is nil")
		return
	}
	a.raiseWindow(ctx)
	a.setWindowVisible(true)
}

func (a *App) raiseWindow(ctx context.Context) {
	runtimeWindowShowFn(ctx)
	runtimeWindowUnminimiseFn(ctx)
	runtimeWindowSetAlwaysOnTopFn(ctx, true)
	runtimeWindowSetAlwaysOnTopFn(ctx, false)
}

func (a *App) setWindowVisible(visible bool) {
	a.windowMu.Lock()
	a.windowVisible = visible
	a.windowMu.Unlock()
}

func (a *App) toggleWindow() {
	// CAS guard prevents double-toggle when a second trigger fires while OS
	// window operations are in progress.
	if !a.windowToggling.CompareAndSwap(false, true) {
		slog.Debug("[DEBUG-hotkey] toggle already in progress, skipping")
		return
	}
	defer a.windowToggling.Store(false)

	ctx := a.runtimeContext()
	if ctx == nil {
		return
	}

	// Read OS window state outside lock (no Wails runtime API inside mutex).
	isMinimised := runtimeWindowIsMinimisedFn(ctx)

	a.windowMu.Lock()
	currentlyVisible := a.windowVisible && !isMinimised
	a.windowMu.Unlock()

	if currentlyVisible {
		runtimeWindowHideFn(ctx)
	} else {
		a.raiseWindow(ctx)
	}

	a.setWindowVisible(!currentlyVisible)
}
