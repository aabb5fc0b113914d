package rotation

import "sync/atomic"

// ModeSwitch holds the current rotation type and is safe for concurrent use
type ModeSwitch struct {
	v atomic.Int32
}

// NewModeSwitch starts in mode t
func NewModeSwitch(t Type) *ModeSwitch {
	m := &ModeSwitch{}
	m.v.Store(int32(t))
	return m
}

// Get returns the current mode
func (m *ModeSwitch) Get() Type {
	return Type(m.v.Load())
}

// Set replaces the current mode
func (m *ModeSwitch) Set(t Type) {
	m.v.Store(int32(t))
}

// Toggle flips between SingleTarget and AOE and returns the new mode
func (m *ModeSwitch) Toggle() Type {
	for {
		old := m.v.Load()
		next := AOE
		if Type(old) == AOE {
			next = SingleTarget
		}
		if m.v.CompareAndSwap(old, int32(next)) {
			return next
		}
	}
}
