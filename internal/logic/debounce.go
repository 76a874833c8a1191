package logic

import "time"

// DebounceWindow is the default minimum spacing between accepted edges.
const DebounceWindow = 200 * time.Millisecond

// DebounceWindowMicros is DebounceWindow in microseconds.
const DebounceWindowMicros = uint64(DebounceWindow / time.Microsecond)

// Accept reports whether an edge at edge (µs) is far enough from the last
// accepted edge to be a real press. The difference must exceed the window;
// an edge exactly one window later is still bounce.
//
// The subtraction is unsigned. If the clock wraps, or an edge arrives with a
// timestamp older than lastAccepted, the result is a large value and the edge
// is accepted.
func Accept(edge, lastAccepted uint64) bool {
	return edge-lastAccepted > DebounceWindowMicros
}

// Gate is a debounce gate with a configurable window.
type Gate struct {
	window uint64
}

// NewGate creates a gate. A non-positive window falls back to DebounceWindow.
func NewGate(window time.Duration) Gate {
	if window <= 0 {
		window = DebounceWindow
	}
	return Gate{window: uint64(window / time.Microsecond)}
}

// Accept applies the gate's window the same way as the package-level Accept.
func (g Gate) Accept(edge, lastAccepted uint64) bool {
	w := g.window
	if w == 0 {
		w = DebounceWindowMicros
	}
	return edge-lastAccepted > w
}

// Window returns the gate's window.
func (g Gate) Window() time.Duration {
	if g.window == 0 {
		return DebounceWindow
	}
	return time.Duration(g.window) * time.Microsecond
}
