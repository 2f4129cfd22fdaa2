package main

import "context"

// The Wails runtime context arrives in startup and is required by every
// runtime API call. It is guarded so hotkey and pipe goroutines can read it
// safely before and after the window exists.

func (a *App) setRuntimeContext(ctx context.Context) {
	a.ctxMu.Lock()
	a.ctx = ctx
	a.ctxMu.Unlock()
}

func (a *App) runtimeContext() context.Context {
	a.ctxMu.RLock()
	ctx := a.ctx
	a.ctxMu.RUnlock()
	return ctx
}
