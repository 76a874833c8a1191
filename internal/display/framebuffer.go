package display

import (
	"image/color"
	"strings"
	"sync"
)

// Panel size of the SSD1306 module on the demo board.
const (
	Width  = 128
	Height = 64
)

// Framebuffer is an in-memory monochrome panel. Drawing goes to a back
// buffer; Display copies it to the front buffer, which is what Lines and
// Snapshot report. It stands in for the OLED on hosts without one.
type Framebuffer struct {
	width, height int16
	back          []bool

	mu        sync.Mutex
	front     []bool
	transmits int
	onDisplay func()
}

// NewFramebuffer creates a blank width x height framebuffer.
func NewFramebuffer(width, height int16) *Framebuffer {
	n := int(width) * int(height)
	return &Framebuffer{
		width:  width,
		height: height,
		back:   make([]bool, n),
		front:  make([]bool, n),
	}
}

// OnDisplay registers fn to run after every Display call.
func (f *Framebuffer) OnDisplay(fn func()) {
	f.mu.Lock()
	f.onDisplay = fn
	f.mu.Unlock()
}

// Size returns the panel size in pixels.
func (f *Framebuffer) Size() (x, y int16) {
	return f.width, f.height
}

// SetPixel turns a pixel on for any non-black color. Out of range
// coordinates are ignored.
func (f *Framebuffer) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return
	}
	f.back[int(y)*int(f.width)+int(x)] = c.R != 0 || c.G != 0 || c.B != 0
}

// ClearBuffer turns every pixel of the back buffer off.
func (f *Framebuffer) ClearBuffer() {
	for i := range f.back {
		f.back[i] = false
	}
}

// Display publishes the back buffer.
func (f *Framebuffer) Display() error {
	f.mu.Lock()
	copy(f.front, f.back)
	f.transmits++
	fn := f.onDisplay
	f.mu.Unlock()

	if fn != nil {
		fn()
	}
	return nil
}

// Transmits returns how many times Display has been called.
func (f *Framebuffer) Transmits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.transmits
}

// Pixel reports whether the displayed pixel at x, y is on.
func (f *Framebuffer) Pixel(x, y int16) bool {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.front[int(y)*int(f.width)+int(x)]
}

// Lit returns the number of displayed pixels that are on.
func (f *Framebuffer) Lit() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, on := range f.front {
		if on {
			n++
		}
	}
	return n
}

// Lines renders the displayed buffer as text with two pixel rows per
// character: '#' both on, '^' top only, ',' bottom only, '.' neither.
func (f *Framebuffer) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	w := int(f.width)
	lines := make([]string, 0, (int(f.height)+1)/2)
	var sb strings.Builder
	for y := 0; y < int(f.height); y += 2 {
		sb.Reset()
		for x := 0; x < w; x++ {
			top := f.front[y*w+x]
			bottom := y+1 < int(f.height) && f.front[(y+1)*w+x]
			switch {
			case top && bottom:
				sb.WriteByte('#')
			case top:
				sb.WriteByte('^')
			case bottom:
				sb.WriteByte(',')
			default:
				sb.WriteByte('.')
			}
		}
		lines = append(lines, sb.String())
	}
	return lines
}
