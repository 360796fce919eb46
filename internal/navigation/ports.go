package navigation

import (
	"net/url"
	"slices"
	"sync"
)

// Location exposes the current address query and navigation without reload.
type Location interface {
	Query() url.Values
	Subscribe(fn func(url.Values)) (unsubscribe func())
	Replace(q url.Values)
}

// Viewport reports whether the layout is compact (mobile) and notifies on resize.
type Viewport interface {
	Compact() bool
	Subscribe(fn func(compact bool)) (unsubscribe func())
}

// Clicks delivers pointer-down events relative to a named region.
type Clicks interface {
	Subscribe(region string, fn func(inside bool)) (unsubscribe func())
}

// RegionNavbar is the region whose outside clicks close the menu.
const RegionNavbar = "navbar"

type subscribers[T any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(T)
}

func (s *subscribers[T]) add(fn func(T)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fns == nil {
		s.fns = map[int]func(T){}
	}
	id := s.next
	s.next++
	s.fns[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.fns, id)
		s.mu.Unlock()
	}
}

func (s *subscribers[T]) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fns)
}

// notify calls every subscriber outside the lock, in registration order.
func (s *subscribers[T]) notify(v T) {
	s.mu.Lock()
	ids := make([]int, 0, len(s.fns))
	for id := range s.fns {
		ids = append(ids, id)
	}
	fns := make([]func(T), 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, s.fns[id])
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(v)
	}
}

// MemoryLocation is an in-process Location. The HTTP shell creates one per
// request; tests drive it with Navigate.
type MemoryLocation struct {
	mu      sync.Mutex
	query   url.Values
	pushed  []string
	subs    subscribers[url.Values]
	silence bool
}

// NewMemoryLocation starts at q.
func NewMemoryLocation(q url.Values) *MemoryLocation {
	return &MemoryLocation{query: cloneValues(q)}
}

// Query returns a copy of the current query.
func (l *MemoryLocation) Query() url.Values {
	l.mu.Lock()
	defer l.mu.Unlock()
	return cloneValues(l.query)
}

// Subscribe registers fn for every address change, including replacements.
func (l *MemoryLocation) Subscribe(fn func(url.Values)) func() {
	return l.subs.add(fn)
}

// Replace updates the address and notifies subscribers, as a client router does.
func (l *MemoryLocation) Replace(q url.Values) {
	l.mu.Lock()
	l.query = cloneValues(q)
	l.pushed = append(l.pushed, q.Encode())
	silent := l.silence
	l.mu.Unlock()
	if !silent {
		l.subs.notify(cloneValues(q))
	}
}

// Navigate simulates an external address change such as back/forward.
func (l *MemoryLocation) Navigate(q url.Values) {
	l.mu.Lock()
	l.query = cloneValues(q)
	l.mu.Unlock()
	l.subs.notify(cloneValues(q))
}

// Silence stops Replace from notifying subscribers.
func (l *MemoryLocation) Silence() {
	l.mu.Lock()
	l.silence = true
	l.mu.Unlock()
}

// Pushed lists the encoded queries passed to Replace, oldest first.
func (l *MemoryLocation) Pushed() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.pushed))
	copy(out, l.pushed)
	return out
}

// LastPushed returns the most recent replacement and whether one happened.
func (l *MemoryLocation) LastPushed() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.pushed) == 0 {
		return "", false
	}
	return l.pushed[len(l.pushed)-1], true
}

// Subscribers reports the live subscription count.
func (l *MemoryLocation) Subscribers() int { return l.subs.count() }

// MemoryViewport is a Viewport whose size class is set explicitly.
type MemoryViewport struct {
	mu      sync.Mutex
	compact bool
	subs    subscribers[bool]
}

// NewMemoryViewport starts with the given size class.
func NewMemoryViewport(compact bool) *MemoryViewport {
	return &MemoryViewport{compact: compact}
}

// Compact reports the current size class.
func (v *MemoryViewport) Compact() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.compact
}

// Subscribe registers fn for size class changes.
func (v *MemoryViewport) Subscribe(fn func(bool)) func() { return v.subs.add(fn) }

// Resize changes the size class and notifies subscribers when it differs.
func (v *MemoryViewport) Resize(compact bool) {
	v.mu.Lock()
	changed := v.compact != compact
	v.compact = compact
	v.mu.Unlock()
	if changed {
		v.subs.notify(compact)
	}
}

// Subscribers reports the live subscription count.
func (v *MemoryViewport) Subscribers() int { return v.subs.count() }

// MemoryClicks routes synthetic clicks to region subscribers.
type MemoryClicks struct {
	mu      sync.Mutex
	regions map[string]*subscribers[bool]
}

// NewMemoryClicks returns an empty click source.
func NewMemoryClicks() *MemoryClicks {
	return &MemoryClicks{regions: map[string]*subscribers[bool]{}}
}

// Subscribe registers fn for clicks relative to region.
func (c *MemoryClicks) Subscribe(region string, fn func(bool)) func() {
	return c.region(region).add(fn)
}

// Click delivers a pointer-down inside or outside region.
func (c *MemoryClicks) Click(region string, inside bool) {
	c.region(region).notify(inside)
}

// Subscribers reports the live subscription count for region.
func (c *MemoryClicks) Subscribers(region string) int { return c.region(region).count() }

func (c *MemoryClicks) region(name string) *subscribers[bool] {
	c.mu.Lock()
	defer c.mu.Unlock()
	subs, ok := c.regions[name]
	if !ok {
		subs = &subscribers[bool]{}
		c.regions[name] = subs
	}
	return subs
}

func cloneValues(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, vs := range q {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
