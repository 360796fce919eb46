package taxonomy

import "sync/atomic"

type snapshot struct {
	groups []Group
}

// Holder keeps the last normalized group list. Store swaps the whole list in
// one step, so Load never observes a partial update.
type Holder struct {
	current atomic.Pointer[snapshot]
}

// Load returns the current list and whether a list was ever stored.
func (h *Holder) Load() ([]Group, bool) {
	if h == nil {
		return nil, false
	}
	snap := h.current.Load()
	if snap == nil {
		return nil, false
	}
	return snap.groups, true
}

// Store replaces the list. The slice is copied; callers may reuse theirs.
func (h *Holder) Store(groups []Group) {
	if h == nil {
		return
	}
	cp := make([]Group, len(groups))
	copy(cp, groups)
	h.current.Store(&snapshot{groups: cp})
}
