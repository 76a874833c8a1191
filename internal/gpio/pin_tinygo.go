//go:build tinygo

package gpio

import (
	"machine"
	"time"

	"github.com/sweeney/button-matrix/internal/logic"
)

var boot = time.Now()

// sinceBoot returns microseconds since the package was initialized.
func sinceBoot() uint64 {
	return uint64(time.Since(boot) / time.Microsecond)
}

// PinButtons delivers falling edges from pin interrupts. On the RP2040 the
// GPIO bank shares one interrupt, so the EdgeFunc runs in interrupt context
// and never concurrently with itself.
type PinButtons struct {
	green machine.Pin
	blue  machine.Pin
}

// NewPinButtons configures both button pins as pulled-up inputs and
// registers a falling-edge interrupt on each.
func NewPinButtons(pins Pins, onEdge EdgeFunc) (*PinButtons, error) {
	b := &PinButtons{
		green: machine.Pin(pins.ButtonGreen),
		blue:  machine.Pin(pins.ButtonBlue),
	}
	for _, p := range []machine.Pin{b.green, b.blue} {
		p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	}

	if err := b.green.SetInterrupt(machine.PinFalling, func(machine.Pin) {
		onEdge(logic.Green, sinceBoot())
	}); err != nil {
		return nil, err
	}
	if err := b.blue.SetInterrupt(machine.PinFalling, func(machine.Pin) {
		onEdge(logic.Blue, sinceBoot())
	}); err != nil {
		b.green.SetInterrupt(0, nil)
		return nil, err
	}
	return b, nil
}

// Close removes both interrupts.
func (b *PinButtons) Close() error {
	b.green.SetInterrupt(0, nil)
	b.blue.SetInterrupt(0, nil)
	return nil
}

// NewPinIndicator configures pin as an output, initially low. machine.Pin
// already has the Get and Set methods of logic.Indicator.
func NewPinIndicator(pin int) machine.Pin {
	p := machine.Pin(pin)
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p.Low()
	return p
}
