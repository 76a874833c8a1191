//go:build linux && !tinygo

package gpio

import (
	"fmt"
	"log"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/button-matrix/internal/logic"
)

const consumer = "button-matrix"

// RealButtons delivers falling edges from the Linux GPIO character device.
//
// Both button lines are held by a single request, so the kernel events of
// both buttons arrive on one goroutine and the EdgeFunc never runs
// concurrently with itself.
type RealButtons struct {
	lines *gpiocdev.Lines
	pins  Pins
}

// NewRealButtons requests the button pins as pulled-up inputs with falling
// edge detection and starts delivering edges to onEdge. Edge timestamps come
// from the kernel's monotonic clock.
func NewRealButtons(chip string, pins Pins, onEdge EdgeFunc) (*RealButtons, error) {
	b := &RealButtons{pins: pins}

	handler := func(evt gpiocdev.LineEvent) {
		id, ok := b.button(evt.Offset)
		if !ok {
			return
		}
		onEdge(id, uint64(evt.Timestamp/time.Microsecond))
	}

	lines, err := gpiocdev.RequestLines(chip, []int{pins.ButtonGreen, pins.ButtonBlue},
		gpiocdev.WithConsumer(consumer),
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithEventHandler(handler))
	if err != nil {
		return nil, fmt.Errorf("request button pins %d,%d: %w", pins.ButtonGreen, pins.ButtonBlue, err)
	}
	b.lines = lines
	return b, nil
}

func (b *RealButtons) button(offset int) (logic.ButtonID, bool) {
	switch offset {
	case b.pins.ButtonGreen:
		return logic.Green, true
	case b.pins.ButtonBlue:
		return logic.Blue, true
	}
	return 0, false
}

// Close stops edge delivery and returns the pins to input with pull-down,
// matching the Pi boot defaults.
func (b *RealButtons) Close() error {
	if b.lines == nil {
		return nil
	}
	var errs []error
	if err := b.lines.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure button pins: %w", err))
	}
	if err := b.lines.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close button pins: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealIndicator drives an indicator LED through the GPIO character device.
type RealIndicator struct {
	line *gpiocdev.Line
	pin  int
}

// NewRealIndicator requests pin as an output, initially low.
func NewRealIndicator(chip string, pin int) (*RealIndicator, error) {
	line, err := gpiocdev.RequestLine(chip, pin,
		gpiocdev.WithConsumer(consumer),
		gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request LED pin %d: %w", pin, err)
	}
	return &RealIndicator{line: line, pin: pin}, nil
}

// Get returns the level currently driven on the pin.
func (i *RealIndicator) Get() bool {
	v, err := i.line.Value()
	if err != nil {
		log.Printf("gpio: read LED pin %d: %v", i.pin, err)
		return false
	}
	return v == 1
}

// Set drives the pin high or low.
func (i *RealIndicator) Set(high bool) {
	v := 0
	if high {
		v = 1
	}
	if err := i.line.SetValue(v); err != nil {
		log.Printf("gpio: write LED pin %d: %v", i.pin, err)
	}
}

// Close turns the LED off and releases the pin as an input with pull-down.
func (i *RealIndicator) Close() error {
	var errs []error
	if err := i.line.SetValue(0); err != nil {
		errs = append(errs, fmt.Errorf("turn off LED pin %d: %w", i.pin, err))
	}
	if err := i.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure LED pin %d: %w", i.pin, err))
	}
	if err := i.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close LED pin %d: %w", i.pin, err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
