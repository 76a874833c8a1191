//go:build !tinygo

package main

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/sweeney/button-matrix/internal/display"
	"github.com/sweeney/button-matrix/internal/gpio"
	"github.com/sweeney/button-matrix/internal/logic"
	"github.com/sweeney/button-matrix/internal/matrix"
	"github.com/sweeney/button-matrix/internal/mqtt"
	"github.com/sweeney/button-matrix/internal/serial"
	"github.com/sweeney/button-matrix/internal/status"
)

// fakeClock returns a function that yields start, start+step, start+2*step, ...
// on successive calls. Not safe for concurrent use (only called from the loop's goroutine).
func fakeClock(start time.Time, step time.Duration) func() time.Time {
	n := 0
	return func() time.Time {
		t := start.Add(time.Duration(n) * step)
		n++
		return t
	}
}

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// rig wires the coordinator to fakes the way run wires it to hardware.
type rig struct {
	state    *logic.State
	fb       *display.Framebuffer
	strip    *matrix.Strip
	renderer *logic.Renderer
	handler  *logic.Handler
	buttons  *gpio.FakeButtons
	green    *gpio.FakeIndicator
	blue     *gpio.FakeIndicator
	input    *serial.FakeReader
	pub      *mqtt.FakePublisher
	tracker  *status.Tracker
	loop     *loop
}

func newRig(input string, heartbeat time.Duration, clock func() time.Time) *rig {
	r := &rig{
		state: logic.NewState(),
		fb:    display.NewFramebuffer(display.Width, display.Height),
		strip: matrix.NewStrip(logic.NumPixels),
		green: &gpio.FakeIndicator{},
		blue:  &gpio.FakeIndicator{},
		input: serial.NewFakeReader(input),
		pub:   mqtt.NewFakePublisher(),
	}
	screen := display.NewScreen(r.fb)
	r.renderer = logic.NewRenderer(screen, logic.GreenFirst)
	dispatcher := logic.NewDispatcher(screen, r.strip)
	r.handler = logic.NewHandler(r.state, logic.NewGate(logic.DebounceWindow), r.green, r.blue)
	r.buttons = gpio.NewFakeButtons(r.handler.HandleEdge)
	r.tracker = status.NewTracker(epoch, status.Config{})
	r.loop = newLoop(r.state, r.renderer, dispatcher, r.input, r.pub, r.pub, r.tracker, heartbeat, clock)
	r.loop.panels = newPanels(r.fb, r.strip)
	return r
}

func (r *rig) steps(n int) {
	for i := 0; i < n; i++ {
		r.loop.step()
	}
}

func TestStepRendersAfterGreenPress(t *testing.T) {
	r := newRig("", 0, fakeClock(epoch, time.Millisecond))

	if !r.buttons.Press(logic.Green, 0) {
		t.Fatal("first press should be accepted")
	}
	if r.fb.Transmits() != 0 {
		t.Error("the handler should leave the redraw to the loop")
	}
	if !r.green.Level || r.blue.Level {
		t.Errorf("indicators: green=%v blue=%v", r.green.Level, r.blue.Level)
	}

	r.steps(1)

	if r.fb.Transmits() != 1 {
		t.Errorf("expected 1 transmit, got %d", r.fb.Transmits())
	}
	if r.fb.Lit() == 0 {
		t.Error("expected the green message on the panel")
	}
	if kinds := r.pub.Kinds(); len(kinds) != 1 || kinds[0] != mqtt.EventMode {
		t.Fatalf("expected one MODE event, got %v", kinds)
	}
	ev := r.pub.Events[0].Mode
	if !ev.Green || ev.Blue || ev.Counter != 1 {
		t.Errorf("mode event: %+v", ev)
	}
	if msg := r.tracker.Snapshot().Message; msg != logic.GreenMessage {
		t.Errorf("tracker message: got %q", msg)
	}
}

func TestStepRendersOncePerRequest(t *testing.T) {
	r := newRig("", 0, fakeClock(epoch, time.Millisecond))
	r.buttons.Press(logic.Blue, 0)

	r.steps(5)

	if r.fb.Transmits() != 1 {
		t.Errorf("expected exactly 1 transmit, got %d", r.fb.Transmits())
	}
	if len(r.pub.Events) != 1 {
		t.Errorf("expected 1 event, got %d", len(r.pub.Events))
	}
}

func TestStepBounceIsIgnored(t *testing.T) {
	r := newRig("", 0, fakeClock(epoch, time.Millisecond))

	r.buttons.Press(logic.Green, 0)
	if r.buttons.Press(logic.Green, 100_000) {
		t.Error("edge 100ms after the last should be rejected")
	}
	r.steps(1)

	if r.state.Counter() != 1 {
		t.Errorf("counter: got %d, want 1", r.state.Counter())
	}
	if !r.green.Level {
		t.Error("rejected edge must not toggle the indicator back")
	}
	if len(r.pub.Events) != 1 {
		t.Errorf("expected 1 MODE event, got %d", len(r.pub.Events))
	}
}

func TestStepGreenThenBlue(t *testing.T) {
	r := newRig("", 0, fakeClock(epoch, time.Millisecond))

	r.buttons.Press(logic.Green, 0)
	r.steps(1)
	r.buttons.Press(logic.Blue, 250_000)
	r.steps(1)

	snap := r.tracker.Snapshot()
	if !snap.Mode.Green || !snap.Mode.Blue || snap.Mode.Counter != 2 {
		t.Errorf("mode: %+v", snap.Mode)
	}
	if snap.Message != logic.GreenMessage {
		t.Errorf("green wins when both are on: got %q", snap.Message)
	}
	if len(r.pub.Events) != 2 {
		t.Fatalf("expected 2 MODE events, got %d", len(r.pub.Events))
	}
	if r.pub.Events[1].Mode.LastToggled != logic.Blue {
		t.Errorf("second event should name blue, got %v", r.pub.Events[1].Mode.LastToggled)
	}

	// Toggling both off again leaves a blank panel.
	r.buttons.Press(logic.Green, 500_000)
	r.buttons.Press(logic.Blue, 750_000)
	r.steps(1)
	if r.fb.Lit() != 0 {
		t.Errorf("expected blank panel, %d pixels lit", r.fb.Lit())
	}
	if len(r.pub.Events) != 3 {
		t.Errorf("two edges between steps make one MODE event, got %d events", len(r.pub.Events))
	}
}

func TestStepDispatchesOneBytePerIteration(t *testing.T) {
	r := newRig("a7#", 0, fakeClock(epoch, time.Millisecond))

	r.steps(2)
	if r.input.Remaining() != 1 {
		t.Fatalf("expected 1 byte left after 2 steps, got %d", r.input.Remaining())
	}
	r.steps(2)

	var classes []logic.Class
	for _, e := range r.pub.Events {
		if e.Kind != mqtt.EventChar {
			t.Errorf("unexpected event kind %s", e.Kind)
		}
		classes = append(classes, e.Class)
	}
	want := []logic.Class{logic.ClassLetter, logic.ClassDigit, logic.ClassOther}
	if len(classes) != len(want) {
		t.Fatalf("classes: got %v, want %v", classes, want)
	}
	for i := range want {
		if classes[i] != want[i] {
			t.Errorf("event %d: got %v, want %v", i, classes[i], want[i])
		}
	}

	if r.strip.Frames() != 1 {
		t.Errorf("only the digit should reach the matrix, got %d frames", r.strip.Frames())
	}
	if r.fb.Transmits() != 3 {
		t.Errorf("every byte transmits the display, got %d", r.fb.Transmits())
	}

	snap := r.tracker.Snapshot()
	if snap.Chars != (status.CharCounts{Letters: 1, Digits: 1, Other: 1}) {
		t.Errorf("char counts: %+v", snap.Chars)
	}
	if !strings.Contains(strings.Join(snap.Matrix, "\n"), "o") {
		t.Errorf("tracker matrix should show the digit:\n%s", strings.Join(snap.Matrix, "\n"))
	}
}

func TestStepDispatchErrorKeepsRunning(t *testing.T) {
	r := newRig("", 0, fakeClock(epoch, time.Millisecond))
	short := matrix.NewStrip(10)
	screen := display.NewScreen(r.fb)
	r.loop.dispatcher = logic.NewDispatcher(screen, short)
	r.loop.input = serial.NewFakeReader("55")

	r.steps(3)

	if len(r.pub.Events) != 2 {
		t.Errorf("both bytes should still be published, got %d", len(r.pub.Events))
	}
	if r.fb.Transmits() != 2 {
		t.Errorf("display should still be transmitted, got %d", r.fb.Transmits())
	}
}

func TestStepPublishErrorKeepsRunning(t *testing.T) {
	r := newRig("x", 0, fakeClock(epoch, time.Millisecond))
	r.pub.PublishError = errors.New("broker down")

	r.buttons.Press(logic.Green, 0)
	r.steps(2)

	if r.fb.Lit() == 0 {
		t.Error("rendering must not depend on publishing")
	}
	if r.tracker.Snapshot().Chars.Letters != 1 {
		t.Error("tracker should record the byte despite the publish failure")
	}
}

func TestStepRenderInHandler(t *testing.T) {
	r := newRig("", 0, fakeClock(epoch, time.Millisecond))
	r.handler.RenderInHandler(r.renderer)

	r.buttons.Press(logic.Green, 0)
	if r.fb.Transmits() != 1 {
		t.Fatalf("handler should redraw immediately, got %d transmits", r.fb.Transmits())
	}
	r.steps(1)
	if r.fb.Transmits() != 1 {
		t.Errorf("loop should not redraw again, got %d transmits", r.fb.Transmits())
	}
	if len(r.pub.Events) != 1 {
		t.Errorf("MODE event still expected, got %d", len(r.pub.Events))
	}
}

func TestStepHeartbeat(t *testing.T) {
	// start=0 then one call per step: 400ms, 800ms, 1.2s, 1.6s, 2.0s, 2.4s
	r := newRig("", time.Second, fakeClock(epoch, 400*time.Millisecond))

	r.steps(6)

	names := r.pub.SystemNames()
	if len(names) != 2 || names[0] != "HEARTBEAT" || names[1] != "HEARTBEAT" {
		t.Fatalf("expected 2 heartbeats, got %v", names)
	}
	var parsed status.StatusJSON
	if err := json.Unmarshal(r.pub.SystemPayloads[0], &parsed); err != nil {
		t.Fatalf("invalid heartbeat JSON: %v", err)
	}
	if parsed.Status.Event != "HEARTBEAT" {
		t.Errorf("payload event: got %q", parsed.Status.Event)
	}
}

func TestStepHeartbeatDisabled(t *testing.T) {
	r := newRig("", 0, fakeClock(epoch, time.Hour))
	r.steps(3)
	if len(r.pub.SystemEvents) != 0 {
		t.Errorf("expected no system events, got %v", r.pub.SystemNames())
	}
}

// runRunLoop drives runLoop with nTicks ticks then the given signal.
func runRunLoop(t *testing.T, r *rig, nTicks int, s os.Signal) error {
	t.Helper()
	tick := make(chan time.Time)
	sig := make(chan os.Signal, 1)

	errCh := make(chan error, 1)
	go func() {
		errCh <- runLoop(r.loop, tick, sig)
	}()

	for i := 0; i < nTicks; i++ {
		tick <- time.Time{}
	}
	sig <- s

	select {
	case err := <-errCh:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("runLoop did not return after signal")
		return nil
	}
}

func TestRunLoopShutdown(t *testing.T) {
	for _, tt := range []struct {
		sig  os.Signal
		want string
	}{
		{syscall.SIGINT, "SIGINT"},
		{syscall.SIGTERM, "SIGTERM"},
	} {
		t.Run(tt.want, func(t *testing.T) {
			r := newRig("k", 0, fakeClock(epoch, time.Millisecond))
			if err := runRunLoop(t, r, 2, tt.sig); err != nil {
				t.Fatalf("runLoop returned error: %v", err)
			}

			if len(r.pub.SystemEvents) != 1 {
				t.Fatalf("expected 1 system event, got %v", r.pub.SystemNames())
			}
			ev := r.pub.SystemEvents[0]
			if ev.Event != "SHUTDOWN" || ev.Reason != tt.want || !ev.Retained {
				t.Errorf("shutdown event: %+v", ev)
			}
			var parsed status.StatusJSON
			if err := json.Unmarshal(r.pub.SystemPayloads[0], &parsed); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if parsed.Status.Reason != tt.want || parsed.Status.Chars.Letters != 1 {
				t.Errorf("shutdown payload: %+v", parsed.Status)
			}
		})
	}
}

func TestRunLoopShutdownPublishError(t *testing.T) {
	r := newRig("", 0, fakeClock(epoch, time.Millisecond))
	r.pub.PublishSystemError = errors.New("broker down")

	if err := runRunLoop(t, r, 0, syscall.SIGTERM); err != nil {
		t.Errorf("shutdown should succeed without the broker, got %v", err)
	}
}

func TestResolveWSBroker(t *testing.T) {
	tests := []struct {
		ws, broker, want string
	}{
		{"=broker", "tcp://192.168.1.200:1883", "ws://192.168.1.200:9001"},
		{"=broker", "tcp://mqtt.local:1883", "ws://mqtt.local:9001"},
		{"off", "tcp://192.168.1.200:1883", ""},
		{"wss://example.com/mqtt", "tcp://192.168.1.200:1883", "wss://example.com/mqtt"},
		{"=broker", "://bad", ""},
	}
	for _, tt := range tests {
		if got := resolveWSBroker(tt.ws, tt.broker); got != tt.want {
			t.Errorf("resolveWSBroker(%q, %q) = %q, want %q", tt.ws, tt.broker, got, tt.want)
		}
	}
}
