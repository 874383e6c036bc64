package indexer

import "sync/atomic"

// ImportLock guards against overlapping imports without blocking the caller.
// The MCP server rejects an import request while another one is running.
type ImportLock struct {
	state atomic.Int32 // 0 = idle, 1 = importing
}

// TryAcquire attempts to acquire the lock without blocking.
// Returns true if the lock was successfully acquired, false otherwise.
func (l *ImportLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Held reports whether an import is running.
func (l *ImportLock) Held() bool {
	return l.state.Load() == 1
}

// Release releases the lock.
// Must only be called by the goroutine that successfully acquired the lock.
func (l *ImportLock) Release() {
	l.state.Store(0)
}
