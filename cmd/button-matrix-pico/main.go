//go:build tinygo

// Command button-matrix-pico is the RP2040 firmware: buttons on pin
// interrupts, an SSD1306 OLED, a 5x5 WS2812 matrix and the USB console as the
// character source.
package main

import (
	"time"

	"github.com/sweeney/button-matrix/internal/display"
	"github.com/sweeney/button-matrix/internal/gpio"
	"github.com/sweeney/button-matrix/internal/logic"
	"github.com/sweeney/button-matrix/internal/matrix"
	"github.com/sweeney/button-matrix/internal/serial"
)

const poll = time.Millisecond

func main() {
	// Give the USB console a moment to enumerate so the first lines are seen.
	time.Sleep(2 * time.Second)

	dev, err := display.NewSSD1306()
	if err != nil {
		halt("display", err)
	}
	screen := display.NewScreen(dev)
	strip := matrix.NewWS2812(matrix.DataPin)

	state := logic.NewState()
	renderer := logic.NewRenderer(screen, logic.GreenFirst)
	dispatcher := logic.NewDispatcher(screen, strip)

	ledGreen := gpio.NewPinIndicator(gpio.DefaultPins.LEDGreen)
	ledBlue := gpio.NewPinIndicator(gpio.DefaultPins.LEDBlue)
	handler := logic.NewHandler(state, logic.NewGate(logic.DebounceWindow), ledGreen, ledBlue)
	if _, err := gpio.NewPinButtons(gpio.DefaultPins, handler.HandleEdge); err != nil {
		halt("buttons", err)
	}
	input := serial.NewUSB()

	if err := renderer.Render(state); err != nil {
		println("display: initial render:", err.Error())
	}
	println("button-matrix: ready")

	lastCounter := state.Counter()
	for {
		if state.TakeRender() {
			if err := renderer.Render(state); err != nil {
				println("display: render:", err.Error())
			}
		}
		if c := state.Counter(); c != lastCounter {
			lastCounter = c
			green, blue := state.Mode()
			println("mode: green", green, "blue", blue, "counter", c)
		}
		if b, ok := input.TryReadByte(); ok {
			class, err := dispatcher.Dispatch(b)
			if err != nil {
				println("dispatch:", err.Error())
			}
			println("char:", b, class.String())
		}
		time.Sleep(poll)
	}
}

// halt reports a fatal bring-up error forever; there is nothing to return to.
func halt(what string, err error) {
	for {
		println(what+":", err.Error())
		time.Sleep(time.Second)
	}
}
