// Package display draws text and glyphs for the coordinator on any
// tinygo drivers.Displayer: the SSD1306 panel on the microcontroller or the
// in-memory Framebuffer on Linux.
package display

import (
	"image/color"
	"sync"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

var (
	white = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	black = color.RGBA{A: 0xff}
)

// bufferClearer is implemented by displays with a fast buffer clear
// (ssd1306.Device, Framebuffer).
type bufferClearer interface {
	ClearBuffer()
}

// Screen implements logic.Display and logic.Exclusive on top of a
// drivers.Displayer. The lock is not taken by the drawing methods; callers
// hold it around a whole Clear/Draw/Transmit sequence.
type Screen struct {
	mu   sync.Mutex
	dev  drivers.Displayer
	font tinyfont.Fonter
}

// NewScreen wraps dev using the proggy TinySZ font.
func NewScreen(dev drivers.Displayer) *Screen {
	return &Screen{
		dev:  dev,
		font: &proggy.TinySZ8pt7b,
	}
}

// Lock takes exclusive use of the screen.
func (s *Screen) Lock() { s.mu.Lock() }

// TryLock takes exclusive use of the screen if nobody holds it.
func (s *Screen) TryLock() bool { return s.mu.TryLock() }

// Unlock releases the screen.
func (s *Screen) Unlock() { s.mu.Unlock() }

// Clear blanks the whole buffer.
func (s *Screen) Clear() {
	if c, ok := s.dev.(bufferClearer); ok {
		c.ClearBuffer()
		return
	}
	w, h := s.dev.Size()
	s.fill(0, 0, w, h)
}

// DrawText paints s with its baseline at y.
func (s *Screen) DrawText(str string, x, y int16) {
	tinyfont.WriteLine(s.dev, s.font, x, y, str, white)
}

// DrawGlyph paints c with its baseline at y. The glyph's cell is blanked
// first so a new glyph replaces the previous one instead of overlaying it.
func (s *Screen) DrawGlyph(c byte, x, y int16) {
	_, cell := tinyfont.LineWidth(s.font, "W")
	height := int16(s.font.GetYAdvance())
	s.fill(x, y-height+height/4, int16(cell), height)
	tinyfont.DrawChar(s.dev, s.font, x, y, rune(c), white)
}

// Transmit sends the buffer to the panel.
func (s *Screen) Transmit() error {
	return s.dev.Display()
}

func (s *Screen) fill(x, y, w, h int16) {
	for py := y; py < y+h; py++ {
		for px := x; px < x+w; px++ {
			s.dev.SetPixel(px, py, black)
		}
	}
}
