package navigation

import (
	"net/url"
	"sync"

	"github.com/taha-yassine-romdhane/Dar-koftan/internal/filter"
)

// Synchronizer keeps the filter store and the address query in step.
//
// Pushing the state replaces the address without reload. While Replace runs,
// the query being pushed is recorded so its synchronous echo can be
// recognised without the view lock; any other change arriving meanwhile is
// external and must be applied. The last pushed query is also remembered so a
// delayed echo is dropped once.
type Synchronizer struct {
	loc Location

	mu         sync.Mutex
	inflight   string
	applying   bool
	lastPushed string
}

// NewSynchronizer binds to loc.
func NewSynchronizer(loc Location) *Synchronizer {
	return &Synchronizer{loc: loc}
}

// Applying reports whether a push is in progress.
func (s *Synchronizer) Applying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applying
}

// Echo reports whether q is the synchronous echo of the push in progress and
// consumes it. It may be called without the view lock.
func (s *Synchronizer) Echo(q url.Values) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.applying || q.Encode() != s.inflight {
		return false
	}
	s.lastPushed = ""
	return true
}

// Decode reads the current address into a selection.
func (s *Synchronizer) Decode(valid filter.Validator) filter.State {
	return filter.FromQuery(s.loc.Query(), valid)
}

// Push writes st to the address unless the address already encodes st.
// The comparison ignores the taxonomy, so a category accepted before the
// first load is still cleared from the address. It reports whether the
// address was replaced.
func (s *Synchronizer) Push(st filter.State) bool {
	if filter.Encode(filter.FromQuery(s.loc.Query(), nil)) == filter.Encode(st) {
		return false
	}
	s.replace(filter.ToQuery(st))
	return true
}

// PushQuery writes q verbatim, as when following a menu link.
func (s *Synchronizer) PushQuery(q url.Values) {
	if s.loc.Query().Encode() == q.Encode() {
		return
	}
	s.replace(q)
}

func (s *Synchronizer) replace(q url.Values) {
	enc := q.Encode()
	s.mu.Lock()
	s.inflight = enc
	s.applying = true
	s.lastPushed = enc
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inflight = ""
		s.applying = false
		s.mu.Unlock()
	}()
	s.loc.Replace(q)
}

// Observe filters an address change. It returns false for the delayed echo of
// our own push, which is consumed so a later external change to the same
// address still applies.
func (s *Synchronizer) Observe(q url.Values) bool {
	s.mu.Lock()
	pushed := s.lastPushed
	s.lastPushed = ""
	s.mu.Unlock()
	if pushed != "" && q.Encode() == pushed {
		return false
	}
	return true
}
