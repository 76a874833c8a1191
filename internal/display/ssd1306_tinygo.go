//go:build tinygo

package display

import (
	"machine"
	"time"

	"tinygo.org/x/drivers/ssd1306"
)

// OLED wiring on the demo board.
const (
	OLEDAddress = 0x3C
	OLEDSDA     = machine.GPIO14
	OLEDSCL     = machine.GPIO15
)

// NewSSD1306 brings up the OLED on I2C1 at 400 kHz and returns a blank
// panel.
func NewSSD1306() (*ssd1306.Device, error) {
	bus := machine.I2C1
	if err := bus.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       OLEDSDA,
		SCL:       OLEDSCL,
	}); err != nil {
		return nil, err
	}
	time.Sleep(10 * time.Millisecond)

	dev := ssd1306.NewI2C(bus)
	dev.Configure(ssd1306.Config{
		Address: OLEDAddress,
		Width:   Width,
		Height:  Height,
	})
	dev.ClearDisplay()
	return dev, nil
}
