package disclosure

import "sync"

// ScrollLock is the document-level scroll lock. Release must be safe to call
// when the lock is not held.
type ScrollLock interface {
	Acquire()
	Release()
	Locked() bool
}

// DocumentScroll is the shared page scroll lock. The zero value is unlocked.
type DocumentScroll struct {
	mu     sync.Mutex
	locked bool
}

// Document is the process-wide lock used when no other lock is injected.
var Document = &DocumentScroll{}

// Acquire locks page scrolling.
func (d *DocumentScroll) Acquire() {
	d.mu.Lock()
	d.locked = true
	d.mu.Unlock()
}

// Release unlocks page scrolling; it is a no-op when not locked.
func (d *DocumentScroll) Release() {
	d.mu.Lock()
	d.locked = false
	d.mu.Unlock()
}

// Locked reports whether page scrolling is locked.
func (d *DocumentScroll) Locked() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.locked
}
