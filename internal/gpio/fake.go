package gpio

import "github.com/sweeney/button-matrix/internal/logic"

// Press is one scripted button edge.
type Press struct {
	Button logic.ButtonID
	Micros uint64
}

// FakeButtons is a test double that delivers scripted edges synchronously.
type FakeButtons struct {
	onEdge EdgeFunc

	// Delivered contains every edge passed to the EdgeFunc.
	Delivered []Press

	// Accepted contains the edges the EdgeFunc accepted.
	Accepted []Press

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeButtons creates FakeButtons delivering to onEdge.
func NewFakeButtons(onEdge EdgeFunc) *FakeButtons {
	return &FakeButtons{onEdge: onEdge}
}

// Press delivers one edge and reports whether it was accepted.
// Edges after Close are dropped.
func (f *FakeButtons) Press(id logic.ButtonID, micros uint64) bool {
	if f.Closed {
		return false
	}
	p := Press{Button: id, Micros: micros}
	f.Delivered = append(f.Delivered, p)
	if !f.onEdge(id, micros) {
		return false
	}
	f.Accepted = append(f.Accepted, p)
	return true
}

// Replay delivers every press in order and returns how many were accepted.
func (f *FakeButtons) Replay(presses []Press) int {
	n := 0
	for _, p := range presses {
		if f.Press(p.Button, p.Micros) {
			n++
		}
	}
	return n
}

// Close marks the buttons as closed.
func (f *FakeButtons) Close() error {
	f.Closed = true
	return nil
}

// FakeIndicator records the level driven on an indicator output.
type FakeIndicator struct {
	// Level is the current output level.
	Level bool

	// Writes counts calls to Set.
	Writes int
}

// Get returns the current level.
func (f *FakeIndicator) Get() bool {
	return f.Level
}

// Set records the new level.
func (f *FakeIndicator) Set(high bool) {
	f.Level = high
	f.Writes++
}
