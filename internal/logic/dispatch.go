package logic

import "errors"

// Class is the classification of one input byte.
type Class uint8

const (
	ClassOther Class = iota
	ClassLetter
	ClassDigit
)

func (c Class) String() string {
	switch c {
	case ClassLetter:
		return "LETTER"
	case ClassDigit:
		return "DIGIT"
	}
	return "OTHER"
}

// Classify sorts b into letter, digit or other. Only ASCII counts.
func Classify(b byte) Class {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z':
		return ClassLetter
	case b >= '0' && b <= '9':
		return ClassDigit
	}
	return ClassOther
}

// Dispatcher turns input bytes into glyphs and matrix patterns.
type Dispatcher struct {
	display Display
	matrix  Matrix
	color   Color
}

// NewDispatcher creates a dispatcher using DefaultColor for the matrix.
func NewDispatcher(d Display, m Matrix) *Dispatcher {
	return &Dispatcher{
		display: d,
		matrix:  m,
		color:   DefaultColor,
	}
}

// SetColor changes the color of lit matrix pixels.
func (d *Dispatcher) SetColor(c Color) {
	d.color = c
}

// Color returns the color of lit matrix pixels.
func (d *Dispatcher) Color() Color {
	return d.color
}

// Dispatch handles one input byte. Letters draw a glyph; digits draw a glyph
// and render the digit on the matrix; anything else draws nothing. The
// display buffer is transmitted in every case.
func (d *Dispatcher) Dispatch(b byte) (Class, error) {
	if ex, ok := d.display.(Exclusive); ok {
		ex.Lock()
		defer ex.Unlock()
	}

	class := Classify(b)
	var matrixErr error
	switch class {
	case ClassLetter:
		d.display.DrawGlyph(b, GlyphX, GlyphY)
	case ClassDigit:
		d.display.DrawGlyph(b, GlyphX, GlyphY)
		matrixErr = RenderDigit(d.matrix, int(b-'0'), d.color)
	}

	return class, errors.Join(matrixErr, d.display.Transmit())
}
