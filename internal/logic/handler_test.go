package logic

import "testing"

func newTestHandler() (*Handler, *State, *fakeIndicator, *fakeIndicator) {
	s := NewState()
	green := &fakeIndicator{}
	blue := &fakeIndicator{}
	return NewHandler(s, NewGate(0), green, blue), s, green, blue
}

func TestFirstEdgeAccepted(t *testing.T) {
	h, s, green, _ := newTestHandler()

	if !h.HandleEdge(Green, 0) {
		t.Fatal("expected first edge at t=0 to be accepted")
	}
	g, b := s.Mode()
	if !g || b {
		t.Errorf("expected green=true blue=false, got %v %v", g, b)
	}
	if !green.level {
		t.Error("expected green indicator on")
	}
	if s.Counter() != 1 {
		t.Errorf("expected counter 1, got %d", s.Counter())
	}
	if !s.TakeRender() {
		t.Error("expected render request")
	}
}

func TestBounceRejectedWithoutEffect(t *testing.T) {
	h, s, green, blue := newTestHandler()
	h.HandleEdge(Green, 1_000_000)
	s.TakeRender()

	before := s.Snapshot()
	if h.HandleEdge(Green, 1_100_000) {
		t.Fatal("expected edge within window to be rejected")
	}
	if h.HandleEdge(Blue, 1_200_000) {
		t.Fatal("expected edge exactly one window later to be rejected")
	}

	if s.Snapshot() != before {
		t.Errorf("state changed on rejected edge: %+v -> %+v", before, s.Snapshot())
	}
	if green.sets != 1 || blue.sets != 0 {
		t.Errorf("indicator writes: green=%d blue=%d, want 1 and 0", green.sets, blue.sets)
	}
	if s.TakeRender() {
		t.Error("rejected edge must not request a render")
	}
}

func TestGreenTwiceRestoresState(t *testing.T) {
	h, s, green, _ := newTestHandler()
	green.level = false

	h.HandleEdge(Green, 500_000)
	h.HandleEdge(Green, 900_000)

	g, _ := s.Mode()
	if g {
		t.Error("expected green flag back to false")
	}
	if green.level {
		t.Error("expected green indicator back to low")
	}
	if s.Counter() != 2 {
		t.Errorf("expected counter 2, got %d", s.Counter())
	}
}

func TestIndicatorFollowsPinLevel(t *testing.T) {
	h, _, _, blue := newTestHandler()
	// The toggle reads the pin, so an indicator that starts high goes low.
	blue.level = true

	h.HandleEdge(Blue, 0)
	if blue.level {
		t.Error("expected blue indicator to be driven low")
	}
}

func TestUnknownButtonRejected(t *testing.T) {
	h, s, _, _ := newTestHandler()

	if h.HandleEdge(ButtonID(7), 0) {
		t.Fatal("expected unknown button to be rejected")
	}
	if s.Counter() != 0 {
		t.Errorf("expected counter 0, got %d", s.Counter())
	}
	// Unknown buttons do not arm the gate either.
	if !h.HandleEdge(Green, 50_000) {
		t.Error("expected first real edge to be accepted")
	}
}

func TestEdgesShareOneGate(t *testing.T) {
	h, s, _, _ := newTestHandler()

	h.HandleEdge(Green, 0)
	if h.HandleEdge(Blue, 150_000) {
		t.Error("expected blue edge inside green's window to be rejected")
	}
	if !h.HandleEdge(Blue, 200_001) {
		t.Error("expected blue edge past the window to be accepted")
	}
	if s.LastToggled() != Blue {
		t.Errorf("expected last toggled BLUE, got %s", s.LastToggled())
	}
}

func TestNilIndicators(t *testing.T) {
	s := NewState()
	h := NewHandler(s, NewGate(0), nil, nil)

	if !h.HandleEdge(Blue, 0) {
		t.Fatal("expected edge to be accepted without indicators")
	}
	_, b := s.Mode()
	if !b {
		t.Error("expected blue flag set")
	}
}

func TestRenderInHandler(t *testing.T) {
	h, s, _, _ := newTestHandler()
	d := &lockingDisplay{}
	h.RenderInHandler(NewRenderer(d, GreenFirst))

	h.HandleEdge(Green, 0)

	if s.TakeRender() {
		t.Error("expected no pending render after synchronous render")
	}
	want := []string{"clear", `text "GREEN LED ON" 10,20`, "transmit"}
	if len(d.calls) != len(want) {
		t.Fatalf("calls: got %v, want %v", d.calls, want)
	}
	for i := range want {
		if d.calls[i] != want[i] {
			t.Errorf("call %d: got %q, want %q", i, d.calls[i], want[i])
		}
	}
}

func TestRenderInHandlerFallsBackWhenBusy(t *testing.T) {
	h, s, _, _ := newTestHandler()
	d := &lockingDisplay{}
	h.RenderInHandler(NewRenderer(d, GreenFirst))

	d.Lock()
	h.HandleEdge(Blue, 0)
	d.Unlock()

	if len(d.calls) != 0 {
		t.Errorf("expected no drawing while display busy, got %v", d.calls)
	}
	if !s.TakeRender() {
		t.Error("expected pending render after busy fallback")
	}
}

func TestGreenThenBlueScenario(t *testing.T) {
	s := NewState()
	h := NewHandler(s, NewGate(0), &fakeIndicator{}, &fakeIndicator{})
	d := &recordingDisplay{}
	r := NewRenderer(d, LastToggled)

	// Green at t=0, then the main loop services the render request.
	if !h.HandleEdge(Green, 0) {
		t.Fatal("green edge at t=0 rejected")
	}
	if !s.TakeRender() {
		t.Fatal("expected render request after green edge")
	}
	r.Render(s)
	if d.calls[1] != `text "GREEN LED ON" 10,20` {
		t.Fatalf("expected green message, got %v", d.calls)
	}

	// Green bounce at t=100ms: no state change and no render request.
	d.calls = nil
	if h.HandleEdge(Green, 100_000) {
		t.Fatal("green edge at t=100ms accepted")
	}
	if s.TakeRender() {
		t.Fatal("rejected edge requested a render")
	}
	if g, _ := s.Mode(); !g {
		t.Fatal("green flag changed on rejected edge")
	}

	// Blue at t=300ms: last toggled wins.
	if !h.HandleEdge(Blue, 300_000) {
		t.Fatal("blue edge at t=300ms rejected")
	}
	if !s.TakeRender() {
		t.Fatal("expected render request after blue edge")
	}
	r.Render(s)
	if d.calls[1] != `text "BLUE LED ON" 10,20` {
		t.Errorf("expected blue message, got %v", d.calls)
	}
	if s.Counter() != 2 {
		t.Errorf("expected counter 2, got %d", s.Counter())
	}
}

func TestTakeRenderConsumesOnce(t *testing.T) {
	h, s, _, _ := newTestHandler()
	h.HandleEdge(Green, 0)
	h.HandleEdge(Blue, 300_000)

	if !s.TakeRender() {
		t.Fatal("expected pending render")
	}
	if s.TakeRender() {
		t.Error("render request should be consumed by the first TakeRender")
	}
}
