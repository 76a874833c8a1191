package logic

// Handler applies accepted button edges to the shared state.
//
// HandleEdge runs in interrupt context on the microcontroller and on the GPIO
// event goroutine on Linux. It never blocks: the display refresh is handed to
// the main loop through the render request unless RenderInHandler is set.
type Handler struct {
	state      *State
	gate       Gate
	indicators [numButtons]Indicator
	renderer   *Renderer
}

// NewHandler creates a handler. Either indicator may be nil.
func NewHandler(state *State, gate Gate, green, blue Indicator) *Handler {
	h := &Handler{
		state: state,
		gate:  gate,
	}
	h.indicators[Green] = green
	h.indicators[Blue] = blue
	return h
}

// RenderInHandler makes the handler redraw the display itself, as the
// original firmware did. This puts a full display transfer inside the edge
// path. When the main loop is using the display, the handler falls back to
// the render request.
func (h *Handler) RenderInHandler(r *Renderer) {
	h.renderer = r
}

// HandleEdge processes one falling edge of button id at micros. It returns
// false if the edge was rejected as bounce or came from an unknown button.
// The first edge after boot is always accepted.
func (h *Handler) HandleEdge(id ButtonID, micros uint64) bool {
	if !id.Valid() {
		return false
	}
	if h.state.armed.Load() && !h.gate.Accept(micros, h.state.lastEdge.Load()) {
		return false
	}
	h.state.lastEdge.Store(micros)
	h.state.armed.Store(true)

	if ind := h.indicators[id]; ind != nil {
		ind.Set(!ind.Get())
	}
	h.state.toggle(id)
	h.refresh()
	h.state.counter.Add(1)
	return true
}

func (h *Handler) refresh() {
	if h.renderer != nil {
		// Transmit errors belong to the display service.
		if done, _ := h.renderer.TryRender(h.state); done {
			return
		}
	}
	h.state.RequestRender()
}
