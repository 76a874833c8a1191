//go:build !tinygo

// Command button-matrix runs the input event and rendering coordinator on a
// Linux host: two GPIO buttons toggle display modes, and characters from a
// terminal or serial line are drawn on the display and the LED matrix.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/sweeney/button-matrix/internal/config"
	"github.com/sweeney/button-matrix/internal/display"
	"github.com/sweeney/button-matrix/internal/gpio"
	"github.com/sweeney/button-matrix/internal/logic"
	"github.com/sweeney/button-matrix/internal/matrix"
	"github.com/sweeney/button-matrix/internal/mqtt"
	"github.com/sweeney/button-matrix/internal/serial"
	"github.com/sweeney/button-matrix/internal/status"
	"github.com/sweeney/button-matrix/internal/web"
)

func main() {
	cfg, err := config.Resolve(os.Args[0], os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config.Config) error {
	state := logic.NewState()

	fb := display.NewFramebuffer(display.Width, display.Height)
	screen := display.NewScreen(fb)
	strip := matrix.NewStrip(logic.NumPixels)

	renderer := logic.NewRenderer(screen, cfg.PrecedencePolicy())
	renderer.SetMessages(cfg.Messages.Green, cfg.Messages.Blue)
	dispatcher := logic.NewDispatcher(screen, strip)
	dispatcher.SetColor(cfg.LogicColor())

	// Initialize GPIO
	pins := cfg.GPIOPins()
	ledGreen, err := gpio.NewRealIndicator(cfg.Chip, pins.LEDGreen)
	if err != nil {
		return fmt.Errorf("init green led: %w", err)
	}
	defer ledGreen.Close()
	ledBlue, err := gpio.NewRealIndicator(cfg.Chip, pins.LEDBlue)
	if err != nil {
		return fmt.Errorf("init blue led: %w", err)
	}
	defer ledBlue.Close()

	handler := logic.NewHandler(state, logic.NewGate(cfg.Debounce), ledGreen, ledBlue)
	if cfg.RenderInHandler {
		handler.RenderInHandler(renderer)
	}
	buttons, err := gpio.NewRealButtons(cfg.Chip, pins, handler.HandleEdge)
	if err != nil {
		return fmt.Errorf("init buttons: %w", err)
	}
	defer buttons.Close()

	// Initialize character input
	input, closeInput, err := openInput(cfg.Input)
	if err != nil {
		return fmt.Errorf("init input: %w", err)
	}
	defer closeInput()

	// Initialize MQTT
	var publisher interface {
		mqtt.Publisher
		mqtt.ConnectionStatus
	} = mqtt.Discard{}
	if cfg.Broker != "" {
		publisher = mqtt.NewRealPublisher(cfg.Broker)
	}
	defer publisher.Close()

	ws := ""
	if cfg.Broker != "" {
		ws = resolveWSBroker(cfg.WSBroker, cfg.Broker)
	}
	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:          cfg.Poll.Milliseconds(),
		DebounceMs:      cfg.Debounce.Milliseconds(),
		HeartbeatMs:     cfg.Heartbeat.Milliseconds(),
		Precedence:      cfg.Precedence,
		RenderInHandler: cfg.RenderInHandler,
		Input:           cfg.Input,
		Broker:          cfg.Broker,
		HTTPPort:        cfg.HTTP,
		WSBroker:        ws,
	})
	watch := newPanels(fb, strip)

	// Blank the panel before the first edge.
	if err := renderer.Render(state); err != nil {
		log.Printf("display: initial render: %v", err)
	}
	watch.refresh(tracker)

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	}

	// Start HTTP status server
	if cfg.HTTP != "" {
		srv := web.New(cfg.HTTP, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP)
	}

	log.Printf("started: poll=%v debounce=%v precedence=%s input=%s broker=%q heartbeat=%v",
		cfg.Poll, cfg.Debounce, cfg.Precedence, cfg.Input, cfg.Broker, cfg.Heartbeat)

	ticker := time.NewTicker(cfg.Poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	if s, ok := input.(*serial.Stream); ok {
		go func() {
			<-s.Interrupted()
			sigCh <- os.Interrupt
		}()
	}

	l := newLoop(state, renderer, dispatcher, input, publisher, publisher, tracker, cfg.Heartbeat, time.Now)
	l.panels = watch
	return runLoop(l, ticker.C, sigCh)
}

// openInput returns the character source named by the input setting.
func openInput(name string) (serial.Reader, func() error, error) {
	if name == "" || name == "-" {
		return serial.OpenTerminal(os.Stdin)
	}
	return serial.OpenDevice(name)
}

// loop holds everything the main loop touches. Only the main loop goroutine
// calls its methods.
type loop struct {
	state      *logic.State
	renderer   *logic.Renderer
	dispatcher *logic.Dispatcher
	input      serial.Reader
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	panels     *panels // optional
	heartbeat  time.Duration
	now        func() time.Time

	lastCounter   uint32
	lastHeartbeat time.Time
}

func newLoop(state *logic.State, renderer *logic.Renderer, dispatcher *logic.Dispatcher, input serial.Reader,
	publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker,
	heartbeat time.Duration, now func() time.Time) *loop {
	return &loop{
		state:         state,
		renderer:      renderer,
		dispatcher:    dispatcher,
		input:         input,
		publisher:     publisher,
		mqttStatus:    mqttStatus,
		tracker:       tracker,
		heartbeat:     heartbeat,
		now:           now,
		lastCounter:   state.Counter(),
		lastHeartbeat: now(),
	}
}

func runLoop(l *loop, tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			l.shutdown(s)
			return nil

		case <-tick:
			l.step()
		}
	}
}

// step runs one iteration: pending render, mode event, one input byte,
// status refresh and heartbeat.
func (l *loop) step() {
	t := l.now()

	if l.state.TakeRender() {
		if err := l.renderer.Render(l.state); err != nil {
			log.Printf("display: render: %v", err)
		}
	}

	if c := l.state.Counter(); c != l.lastCounter {
		l.lastCounter = c
		snap := l.state.Snapshot()
		log.Printf("mode: green=%v blue=%v counter=%d", snap.Green, snap.Blue, snap.Counter)
		if err := l.publisher.Publish(mqtt.ModeEvent(t, snap)); err != nil {
			log.Printf("publish error: %v", err)
			// Don't crash on publish failure
		}
	}

	if b, ok := l.input.TryReadByte(); ok {
		class, err := l.dispatcher.Dispatch(b)
		if err != nil {
			log.Printf("dispatch 0x%02x: %v", b, err)
		}
		l.tracker.RecordChar(b, class)
		if err := l.publisher.Publish(mqtt.CharEvent(t, b, class)); err != nil {
			log.Printf("publish error: %v", err)
		}
	}

	l.updateTracker()

	if l.heartbeat > 0 && t.Sub(l.lastHeartbeat) >= l.heartbeat {
		l.lastHeartbeat = t
		snap := l.tracker.Snapshot()
		log.Printf("heartbeat: uptime=%v counter=%d letters=%d digits=%d other=%d",
			snap.Uptime().Truncate(time.Second), snap.Mode.Counter,
			snap.Chars.Letters, snap.Chars.Digits, snap.Chars.Other)
		hbEvent := mqtt.SystemEvent{
			Timestamp:  t,
			Event:      "HEARTBEAT",
			RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
		}
		if err := l.publisher.PublishSystem(hbEvent); err != nil {
			log.Printf("heartbeat publish error: %v", err)
		}
	}
}

// shutdown publishes the retained SHUTDOWN event for signal s.
func (l *loop) shutdown(s os.Signal) {
	signalName := "UNKNOWN"
	if s == syscall.SIGINT {
		signalName = "SIGINT"
	} else if s == syscall.SIGTERM {
		signalName = "SIGTERM"
	}
	l.updateTracker()
	event := mqtt.SystemEvent{
		Timestamp:  l.now(),
		Event:      "SHUTDOWN",
		Reason:     signalName,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(l.tracker.Snapshot(), "SHUTDOWN", signalName),
	}
	if err := l.publisher.PublishSystem(event); err != nil {
		log.Printf("failed to publish shutdown event: %v", err)
	} else {
		log.Printf("published shutdown event")
	}
}

// updateTracker copies the loop's view into the status tracker for the HTTP
// and MQTT consumers.
func (l *loop) updateTracker() {
	l.tracker.UpdateMode(l.state.Snapshot(), l.renderer.Message(l.state))
	if l.mqttStatus != nil {
		l.tracker.SetMQTT(l.mqttStatus.IsConnected(), l.mqttStatus.Buffered())
	}
	if l.panels != nil {
		l.panels.refresh(l.tracker)
	}
}

// panels republishes the screen and matrix to the tracker after they change.
type panels struct {
	fb    *display.Framebuffer
	strip *matrix.Strip
	dirty atomic.Bool
}

func newPanels(fb *display.Framebuffer, strip *matrix.Strip) *panels {
	p := &panels{fb: fb, strip: strip}
	p.dirty.Store(true)
	fb.OnDisplay(p.mark)
	strip.OnFrame(p.mark)
	return p
}

func (p *panels) mark() {
	p.dirty.Store(true)
}

func (p *panels) refresh(tr *status.Tracker) {
	if p.dirty.Swap(false) {
		tr.SetPanels(p.fb.Lines(), p.strip.Lines())
	}
}

// resolveWSBroker converts the --ws-broker flag value into a concrete URL.
// "=broker" derives ws://host:9001 from the TCP broker address; "off" disables.
func resolveWSBroker(ws, broker string) string {
	if ws == "off" {
		return ""
	}
	if ws != "=broker" {
		return ws
	}
	u, err := url.Parse(broker)
	if err != nil {
		log.Printf("ws-broker: cannot parse --broker %q: %v", broker, err)
		return ""
	}
	u.Scheme = "ws"
	u.Host = u.Hostname() + ":9001"
	return u.String()
}
