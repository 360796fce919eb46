// Package lifecycle detects work that outlives the view that started it.
//
// A Guard counts mount generations. Work started while mounted takes a
// Ticket; the ticket is active only while the same generation is mounted, so
// a continuation that runs after Unmount (or after a later remount) sees an
// inactive ticket and must not touch view state.
package lifecycle

import "sync"

// Guard tracks whether the owning view is mounted.
type Guard struct {
	mu         sync.Mutex
	generation uint64
	mounted    bool
}

// NewGuard returns a guard that is already mounted.
func NewGuard() *Guard {
	g := &Guard{}
	g.Mount()
	return g
}

// Mount starts a new generation.
func (g *Guard) Mount() {
	g.mu.Lock()
	g.generation++
	g.mounted = true
	g.mu.Unlock()
}

// Unmount ends the current generation. Calling it twice is harmless.
func (g *Guard) Unmount() {
	g.mu.Lock()
	if g.mounted {
		g.mounted = false
		g.generation++
	}
	g.mu.Unlock()
}

// Mounted reports whether the view is mounted.
func (g *Guard) Mounted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mounted
}

// Begin captures the current generation for an asynchronous operation.
func (g *Guard) Begin() Ticket {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Ticket{guard: g, generation: g.generation, valid: g.mounted}
}

// Ticket belongs to one asynchronous operation.
type Ticket struct {
	guard      *Guard
	generation uint64
	valid      bool
}

// Active reports whether the generation that issued the ticket is still mounted.
func (t Ticket) Active() bool {
	if !t.valid || t.guard == nil {
		return false
	}
	t.guard.mu.Lock()
	defer t.guard.mu.Unlock()
	return t.guard.mounted && t.guard.generation == t.generation
}

// Do runs fn only while the ticket is active and reports whether it ran.
func (t Ticket) Do(fn func()) bool {
	if !t.Active() {
		return false
	}
	fn()
	return true
}
