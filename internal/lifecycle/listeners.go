package lifecycle

import (
	"errors"
	"fmt"
	"sync"
)

// ErrDuplicateListener is returned when a name is registered twice.
var ErrDuplicateListener = errors.New("lifecycle: listener already registered")

// ErrClosed is returned when registering after Close.
var ErrClosed = errors.New("lifecycle: listeners closed")

// Unsubscribe removes a registered listener.
type Unsubscribe func()

type registration struct {
	name   string
	remove Unsubscribe
}

// Listeners owns the event subscriptions of one mounted view.
type Listeners struct {
	mu      sync.Mutex
	entries []registration
	names   map[string]struct{}
	closed  bool
}

// NewListeners returns an empty registry.
func NewListeners() *Listeners {
	return &Listeners{names: map[string]struct{}{}}
}

// Add records the unsubscribe function for name.
func (l *Listeners) Add(name string, remove Unsubscribe) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	if _, dup := l.names[name]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateListener, name)
	}
	l.names[name] = struct{}{}
	l.entries = append(l.entries, registration{name: name, remove: remove})
	return nil
}

// Len reports the number of live registrations.
func (l *Listeners) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Close deregisters every listener once, in reverse order. Later calls do nothing.
func (l *Listeners) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	entries := l.entries
	l.entries = nil
	l.names = map[string]struct{}{}
	l.mu.Unlock()

	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].remove != nil {
			entries[i].remove()
		}
	}
}
