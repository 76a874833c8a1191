// Package matrix provides LED matrix drivers for the coordinator: an
// in-memory strip for hosts without LEDs and the WS2812 driver on the
// microcontroller.
package matrix

import (
	"fmt"
	"strings"
	"sync"

	"github.com/sweeney/button-matrix/internal/logic"
)

// Strip is an in-memory addressable LED strip. Values are shifted in with
// SetPixel and latched into the visible frame when the last pixel arrives,
// the way a WS2812 chain latches after a full stream.
type Strip struct {
	mu      sync.Mutex
	pending []uint32
	frame   []uint32
	frames  int
	onFrame func()
}

// NewStrip creates a dark strip of n pixels.
func NewStrip(n int) *Strip {
	return &Strip{
		pending: make([]uint32, n),
		frame:   make([]uint32, n),
	}
}

// OnFrame registers fn to run after every latched frame.
func (s *Strip) OnFrame(fn func()) {
	s.mu.Lock()
	s.onFrame = fn
	s.mu.Unlock()
}

// SetPixel implements logic.Matrix.
func (s *Strip) SetPixel(index int, packed uint32) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.pending) {
		s.mu.Unlock()
		return fmt.Errorf("matrix: pixel %d out of range (0-%d)", index, len(s.pending)-1)
	}
	s.pending[index] = packed
	if index != len(s.pending)-1 {
		s.mu.Unlock()
		return nil
	}
	copy(s.frame, s.pending)
	s.frames++
	fn := s.onFrame
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
	return nil
}

// Frame returns a copy of the latched pixel values in strip order.
func (s *Strip) Frame() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uint32, len(s.frame))
	copy(out, s.frame)
	return out
}

// Frames returns how many full frames have been latched.
func (s *Strip) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Grid returns the latched frame as visual rows, top row first, using the
// board's serpentine wiring. The strip must hold logic.NumPixels pixels.
func (s *Strip) Grid() [logic.MatrixHeight][logic.MatrixWidth]uint32 {
	var g [logic.MatrixHeight][logic.MatrixWidth]uint32
	frame := s.Frame()
	for i := 0; i < len(frame) && i < logic.NumPixels; i++ {
		x, y := logic.PixelPosition(i)
		g[y][x] = frame[i]
	}
	return g
}

// Lines renders the grid as text, 'o' for lit and '.' for dark pixels.
func (s *Strip) Lines() []string {
	g := s.Grid()
	lines := make([]string, 0, len(g))
	var sb strings.Builder
	for _, row := range g {
		sb.Reset()
		for _, v := range row {
			if v != 0 {
				sb.WriteByte('o')
			} else {
				sb.WriteByte('.')
			}
		}
		lines = append(lines, sb.String())
	}
	return lines
}
