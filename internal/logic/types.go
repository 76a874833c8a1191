// Package logic contains the input event and rendering coordinator: the
// debounce gate, the shared state between the edge path and the main loop,
// the button handler, the display renderer, the character dispatcher and the
// LED matrix renderer.
//
// This package has NO hardware or OS dependencies. Peripherals are reached
// through the Display, Matrix and Indicator interfaces, and time is always
// passed in as microsecond timestamps.
package logic

// ButtonID identifies one of the two push buttons.
type ButtonID uint8

const (
	Green ButtonID = iota
	Blue

	numButtons
)

func (b ButtonID) String() string {
	switch b {
	case Green:
		return "GREEN"
	case Blue:
		return "BLUE"
	}
	return "UNKNOWN"
}

// Valid reports whether b names a configured button.
func (b ButtonID) Valid() bool {
	return b < numButtons
}

// Display is the character display as seen by the coordinator.
// Coordinates are in pixels; y is the text baseline.
type Display interface {
	Clear()
	DrawText(s string, x, y int16)
	DrawGlyph(c byte, x, y int16)
	// Transmit sends the buffer to the panel.
	Transmit() error
}

// Matrix is the addressable LED matrix driver.
type Matrix interface {
	// SetPixel streams one packed color to the pixel at index.
	// Calls must be made in ascending index order; it blocks until the
	// hardware has accepted the value.
	SetPixel(index int, packed uint32) error
}

// Indicator is a digital output driving a button's indicator LED.
type Indicator interface {
	Get() bool
	Set(high bool)
}

// Color is an RGB triple of 8-bit channel intensities.
type Color struct {
	R, G, B uint8
}

// Packed returns the color as R<<16 | G<<8 | B.
func (c Color) Packed() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// DefaultColor is the color used for lit matrix pixels unless configured.
var DefaultColor = Color{R: 0, G: 0, B: 20}

// Precedence decides which message is shown when both mode flags are set.
type Precedence uint8

const (
	// GreenFirst shows the green message whenever green is set.
	GreenFirst Precedence = iota
	// LastToggled shows the message of the most recently toggled flag.
	LastToggled
)

// ParsePrecedence converts a configuration name into a Precedence.
func ParsePrecedence(s string) (Precedence, bool) {
	switch s {
	case "", "green-first":
		return GreenFirst, true
	case "last-toggled":
		return LastToggled, true
	}
	return GreenFirst, false
}

func (p Precedence) String() string {
	if p == LastToggled {
		return "last-toggled"
	}
	return "green-first"
}

// Snapshot is a point-in-time copy of the shared state.
type Snapshot struct {
	Green       bool
	Blue        bool
	Counter     uint32
	LastEdge    uint64
	LastToggled ButtonID
}
