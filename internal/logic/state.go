package logic

import "sync/atomic"

// State is shared between the edge path and the main loop.
//
// Only the edge path writes the mode flags, the counter and the timestamps;
// the main loop reads them and clears the render request. Every field is a
// single atomic word, so no lock is held on either side.
type State struct {
	lastEdge      atomic.Uint64
	armed         atomic.Bool
	green         atomic.Bool
	blue          atomic.Bool
	lastToggled   atomic.Uint32
	counter       atomic.Uint32
	renderPending atomic.Bool
}

// NewState returns a zeroed State.
func NewState() *State {
	return &State{}
}

// Mode reports the current green and blue mode flags.
func (s *State) Mode() (green, blue bool) {
	return s.green.Load(), s.blue.Load()
}

// Counter returns the number of accepted edges since boot.
func (s *State) Counter() uint32 {
	return s.counter.Load()
}

// LastToggled returns the button whose flag changed most recently.
func (s *State) LastToggled() ButtonID {
	return ButtonID(s.lastToggled.Load())
}

// RequestRender marks the message region as needing a redraw.
func (s *State) RequestRender() {
	s.renderPending.Store(true)
}

// TakeRender clears the render request and reports whether one was pending.
func (s *State) TakeRender() bool {
	return s.renderPending.Swap(false)
}

// Snapshot returns a copy of the state. Fields are loaded one by one, so an
// edge handled in between can make the copy mix before and after values.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Green:       s.green.Load(),
		Blue:        s.blue.Load(),
		Counter:     s.counter.Load(),
		LastEdge:    s.lastEdge.Load(),
		LastToggled: ButtonID(s.lastToggled.Load()),
	}
}

func (s *State) flag(id ButtonID) *atomic.Bool {
	if id == Blue {
		return &s.blue
	}
	return &s.green
}

// toggle flips the flag of id and returns its new value.
func (s *State) toggle(id ButtonID) bool {
	f := s.flag(id)
	for {
		old := f.Load()
		if f.CompareAndSwap(old, !old) {
			s.lastToggled.Store(uint32(id))
			return !old
		}
	}
}
