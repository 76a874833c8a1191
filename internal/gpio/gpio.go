// Package gpio provides button edge events and indicator outputs with
// hardware abstraction.
// The Linux implementation uses the GPIO character device, the TinyGo one
// uses pin interrupts, and the fake allows testing without hardware.
package gpio

import "github.com/sweeney/button-matrix/internal/logic"

// EdgeFunc receives one falling edge: the button it came from and a
// monotonic timestamp in microseconds. It matches logic.Handler.HandleEdge.
type EdgeFunc func(id logic.ButtonID, micros uint64) bool

// Buttons delivers button edges to an EdgeFunc until closed.
type Buttons interface {
	// Close stops edge delivery and releases the pins.
	Close() error
}

// Pins holds the pin numbers of the buttons and their indicator LEDs
// (BCM numbering on Linux, GPn on the RP2040).
type Pins struct {
	ButtonGreen int
	ButtonBlue  int
	LEDGreen    int
	LEDBlue     int
}

// DefaultPins matches the demo board wiring.
var DefaultPins = Pins{
	ButtonGreen: 5,
	ButtonBlue:  6,
	LEDGreen:    11,
	LEDBlue:     12,
}

// DefaultChip is the GPIO character device used on Linux.
const DefaultChip = "gpiochip0"
