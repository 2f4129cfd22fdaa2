//go:build windows

package singleinstance

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"strings"

	"shortgroup/internal/userutil"

	"golang.org/x/sys/windows"
)

// ErrAlreadyRunning is returned by TryLock when another instance holds the mutex.
var ErrAlreadyRunning = errors.New("another instance is already running")

// Lock holds a Windows named mutex enforcing one running instance per user.
// The kernel releases the mutex automatically if the owning process dies, so
// a crashed instance never blocks the next start.
type Lock struct {
	handle windows.Handle
}

// TryLock acquires the system-wide named mutex, or reports ErrAlreadyRunning
// when another process owns it.
func TryLock(name string) (*Lock, error) {
	if name == "" {
		return nil, errors.New("mutex name is required")
	}
	nameUTF16, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, fmt.Errorf("invalid mutex name %q: %w", name, err)
	}

	handle, err := windows.CreateMutex(nil, true, nameUTF16)
	if err != nil {
		// ERROR_ALREADY_EXISTS still hands back a duplicate handle; close it so
		// this process does not keep the loser's reference alive.
		if handle != 0 {
			windows.CloseHandle(handle)
		}
		if err == windows.ERROR_ALREADY_EXISTS {
			return nil, ErrAlreadyRunning
		}
		return nil, fmt.Errorf("CreateMutex %q: %w", name, err)
	}
	return &Lock{handle: handle}, nil
}

// Release closes the mutex handle. Idempotent and safe on a nil receiver.
func (l *Lock) Release() error {
	if l == nil || l.handle == 0 {
		return nil
	}
	err := windows.CloseHandle(l.handle)
	l.handle = 0
	return err
}

// DefaultMutexName derives the per-user mutex name, matching the naming
// convention of ipc.DefaultPipeName so one user's instances never collide
// with another's.
func DefaultMutexName() string {
	username := strings.TrimSpace(os.Getenv("USERNAME"))
	if username == "" {
		if current, err := user.Current(); err == nil {
			username = current.Username
		}
	}
	return `Global\ShortGroup-` + userutil.SanitizeUsername(username)
}
