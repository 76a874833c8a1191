//go:build tinygo

package serial

import "machine"

// USB reads the USB CDC console.
type USB struct {
	port machine.Serialer
}

// NewUSB returns a Reader over machine.Serial.
func NewUSB() *USB {
	return &USB{port: machine.Serial}
}

// TryReadByte implements Reader.
func (u *USB) TryReadByte() (byte, bool) {
	if u.port.Buffered() == 0 {
		return 0, false
	}
	b, err := u.port.ReadByte()
	if err != nil {
		return 0, false
	}
	return b, true
}
