package newdelete

import (
	"errors"
	"sync"

	"github.com/cbehopkins/fibmem/fib"
)

// ErrNotInitialized is returned by the package-level Global helpers when
// Init has not yet been called.
var ErrNotInitialized = errors.New("newdelete: global allocator not initialized")

var (
	globalMu sync.Mutex
	global   *fib.Manager
)

// Init installs the process-wide allocator backing the package-level
// NewGlobal/DeleteGlobal helpers, mirroring the source design's one
// allocator instance per build configuration. Calling Init again replaces
// the previous allocator outright; there is no teardown beyond letting
// the old region go out of scope.
func Init(region []byte, cfg fib.Config, lock fib.Locker) error {
	m, err := fib.New(region, cfg, lock)
	if err != nil {
		return err
	}
	globalMu.Lock()
	global = m
	globalMu.Unlock()
	return nil
}

// Global returns the process-wide allocator installed by Init, or nil if
// Init has not been called.
func Global() *fib.Manager {
	globalMu.Lock()
	defer globalMu.Unlock()
	return global
}

// NewGlobal is New against the process-wide allocator installed by Init.
func NewGlobal[T any](v T) (*T, fib.Ptr, error) {
	m := Global()
	if m == nil {
		return nil, fib.NullPtr, ErrNotInitialized
	}
	return New(m, v)
}

// DeleteGlobal is Delete against the process-wide allocator installed by
// Init.
func DeleteGlobal[T any](p fib.Ptr) error {
	m := Global()
	if m == nil {
		return ErrNotInitialized
	}
	return Delete[T](m, p)
}
