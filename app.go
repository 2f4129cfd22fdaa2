package main

import (
	"context"
	"sync"
	"sync/atomic"

	"shortgroup/internal/config"
	"shortgroup/internal/dispatch"
	"shortgroup/internal/history"
	"shortgroup/internal/hotkeys"
	"shortgroup/internal/ipc"
	"shortgroup/internal/store"
	"shortgroup/internal/tray"
)

// App is the Wails-bound application service.
type App struct {
	// Runtime context lifecycle.
	ctx   context.Context
	ctxMu sync.RWMutex

	// Configuration state.
	// Lock ordering (outer -> inner): docMu may be held while acquiring no
	// other lock; cfgMu and docMu are independent.
	cfgMu      sync.RWMutex
	cfg        config.Config
	configPath string

	// Shortcut document state. All mutation goes through mutateDocument so
	// persistence, hotkey reconciliation, and change events stay in lockstep.
	docMu   sync.RWMutex
	doc     store.Document
	docPath string

	startupWarnMu   sync.Mutex
	startupWarnings []string

	// Backend services.
	registry   *hotkeys.Registry
	queue      *dispatch.Queue
	pipeServer *ipc.PipeServer
	watcher    *store.Watcher
	launches   *history.Store
	trayIcon   *tray.Tray

	// Window visibility state.
	windowMu       sync.Mutex
	windowVisible  bool
	windowToggling atomic.Bool // CAS guard to prevent concurrent toggleWindow
	shuttingDown   atomic.Bool // set at the start of shutdown(); checked by worker recovery loops

	// Background worker cancellation/waits.
	bgCancel context.CancelFunc
	bgWG     sync.WaitGroup
}

// NewApp creates the app service.
func NewApp() *App {
	return &App{
		queue: dispatch.NewQueue(0),
	}
}
