//go:build tinygo

package matrix

import (
	"machine"

	"tinygo.org/x/drivers/ws2812"
)

// DataPin is the matrix data line on the demo board.
const DataPin = machine.GPIO7

// WS2812 streams pixels to a WS2812 chain.
type WS2812 struct {
	dev ws2812.Device
}

// NewWS2812 configures pin as the chain's data output.
func NewWS2812(pin machine.Pin) *WS2812 {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &WS2812{dev: ws2812.New(pin)}
}

// SetPixel sends the 24-bit packed value most significant byte first. The
// chain has no addressing: index only fixes the call order.
func (w *WS2812) SetPixel(index int, packed uint32) error {
	for _, b := range [3]byte{byte(packed >> 16), byte(packed >> 8), byte(packed)} {
		if err := w.dev.WriteByte(b); err != nil {
			return err
		}
	}
	return nil
}
