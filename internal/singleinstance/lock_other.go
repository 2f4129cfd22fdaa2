//go:build !windows

package singleinstance

import "errors"

// ErrAlreadyRunning is returned by TryLock when another instance holds the mutex.
var ErrAlreadyRunning = errors.New("another instance is already running")

// Lock is inert off Windows; single-instance enforcement relies on a Windows
// named mutex.
type Lock struct{}

// TryLock always succeeds off Windows.
func TryLock(_ string) (*Lock, error) { return &Lock{}, nil }

// Release is a no-op off Windows.
func (l *Lock) Release() error { return nil }

// DefaultMutexName is empty off Windows.
func DefaultMutexName() string { return "" }
