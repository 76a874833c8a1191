package logic

// Message region and glyph positions on the 128x64 panel.
const (
	MessageX int16 = 10
	MessageY int16 = 20
	GlyphX   int16 = 60
	GlyphY   int16 = 40
)

// Default messages for the two modes.
const (
	GreenMessage = "GREEN LED ON"
	BlueMessage  = "BLUE LED ON"
)

// Exclusive is implemented by displays that are shared between the edge path
// and the main loop on hosts with real parallelism. Draw sequences take the
// lock so a Clear from one side cannot interleave with a Transmit from the
// other.
type Exclusive interface {
	Lock()
	TryLock() bool
	Unlock()
}

// RenderMessage redraws the message region from the two mode flags. Green
// wins when both are set.
func RenderMessage(d Display, green, blue bool) error {
	return drawMessage(d, selectMessage(green, blue, Green, GreenFirst, GreenMessage, BlueMessage))
}

// Renderer redraws the message region from a State.
type Renderer struct {
	display    Display
	precedence Precedence
	green      string
	blue       string
}

// NewRenderer creates a renderer with the default messages.
func NewRenderer(d Display, p Precedence) *Renderer {
	return &Renderer{
		display:    d,
		precedence: p,
		green:      GreenMessage,
		blue:       BlueMessage,
	}
}

// SetMessages replaces the mode messages. Empty strings keep the current text.
func (r *Renderer) SetMessages(green, blue string) {
	if green != "" {
		r.green = green
	}
	if blue != "" {
		r.blue = blue
	}
}

// Message returns the text the next render would paint, or "" for a blank
// region.
func (r *Renderer) Message(s *State) string {
	green, blue := s.Mode()
	return selectMessage(green, blue, s.LastToggled(), r.precedence, r.green, r.blue)
}

// Render clears the screen, paints the current message and transmits.
func (r *Renderer) Render(s *State) error {
	if ex, ok := r.display.(Exclusive); ok {
		ex.Lock()
		defer ex.Unlock()
	}
	return drawMessage(r.display, r.Message(s))
}

// TryRender renders only if the display is free. It reports false without
// drawing when another sequence holds the display.
func (r *Renderer) TryRender(s *State) (bool, error) {
	if ex, ok := r.display.(Exclusive); ok {
		if !ex.TryLock() {
			return false, nil
		}
		defer ex.Unlock()
	}
	return true, drawMessage(r.display, r.Message(s))
}

func selectMessage(green, blue bool, last ButtonID, p Precedence, greenMsg, blueMsg string) string {
	if green && blue && p == LastToggled && last == Blue {
		return blueMsg
	}
	if green {
		return greenMsg
	} else if blue {
		return blueMsg
	}
	return ""
}

func drawMessage(d Display, msg string) error {
	d.Clear()
	if msg != "" {
		d.DrawText(msg, MessageX, MessageY)
	}
	return d.Transmit()
}
