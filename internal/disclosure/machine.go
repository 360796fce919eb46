// Package disclosure tracks which menu group is expanded and whether the
// mobile slide-in panel is open.
//
// At most one group is open at a time. The panel only exists on compact
// viewports: crossing to a wide viewport closes it. The machine is the only
// writer of the scroll lock; every closing transition releases it.
package disclosure

// State is a snapshot of the menu disclosure.
type State struct {
	OpenGroup string
	PanelOpen bool
	Compact   bool
}

// GroupOpen reports whether label is the expanded group.
func (s State) GroupOpen(label string) bool {
	return label != "" && s.OpenGroup == label
}

// Machine applies disclosure transitions. It is not safe for concurrent use.
type Machine struct {
	state State
	lock  ScrollLock
}

// New starts fully closed. A nil lock uses Document.
func New(compact bool, lock ScrollLock) *Machine {
	if lock == nil {
		lock = Document
	}
	return &Machine{state: State{Compact: compact}, lock: lock}
}

// State returns the current snapshot.
func (m *Machine) State() State { return m.state }

// ToggleGroup closes label if it is open, otherwise opens it and closes any other group.
func (m *Machine) ToggleGroup(label string) State {
	if label == "" {
		return m.state
	}
	if m.state.OpenGroup == label {
		m.state.OpenGroup = ""
	} else {
		m.state.OpenGroup = label
	}
	return m.state
}

// TogglePanel flips the mobile panel. Wide viewports have no panel.
func (m *Machine) TogglePanel() State {
	if m.state.PanelOpen {
		m.closePanel()
		return m.state
	}
	if !m.state.Compact {
		return m.state
	}
	m.state.PanelOpen = true
	m.lock.Acquire()
	return m.state
}

// OutsideClick closes everything.
func (m *Machine) OutsideClick() State {
	m.state.OpenGroup = ""
	m.closePanel()
	return m.state
}

// ViewportChanged records the viewport class. Leaving the compact layout closes the panel.
func (m *Machine) ViewportChanged(compact bool) State {
	wasCompact := m.state.Compact
	m.state.Compact = compact
	if wasCompact && !compact && m.state.PanelOpen {
		m.closePanel()
	}
	return m.state
}

// CategorySelected closes the panel and keeps the owning group expanded.
func (m *Machine) CategorySelected(groupLabel string) State {
	m.closePanel()
	if groupLabel != "" {
		m.state.OpenGroup = groupLabel
	}
	return m.state
}

// Reset closes the group and the panel.
func (m *Machine) Reset() State {
	return m.OutsideClick()
}

// Close releases the scroll lock on teardown.
func (m *Machine) Close() {
	m.state.OpenGroup = ""
	m.closePanel()
}

func (m *Machine) closePanel() {
	m.state.PanelOpen = false
	m.lock.Release()
}
