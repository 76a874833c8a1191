// Package status provides a thread-safe status tracker for the coordinator
// daemon. It is read by the HTTP handlers and the MQTT system events, and
// written only by the main loop.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/button-matrix/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	PollMs          int64
	DebounceMs      int64
	HeartbeatMs     int64
	Precedence      string
	RenderInHandler bool
	Input           string
	Broker          string
	HTTPPort        string
	WSBroker        string // Websocket broker URL for browser MQTT (empty = disabled)
}

// CharCounts tallies dispatched bytes by class.
type CharCounts struct {
	Letters int
	Digits  int
	Other   int
}

// LastChar is the most recently dispatched byte.
type LastChar struct {
	Code  byte
	Class logic.Class
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released. Screen and
// Matrix are shared with the tracker and must not be modified.
type Snapshot struct {
	Mode          logic.Snapshot
	Message       string
	LastChar      *LastChar
	Chars         CharCounts
	Screen        []string
	Matrix        []string
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	MQTTBuffered  int
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// UpdateMode records the shared state and the message it selects.
func (t *Tracker) UpdateMode(mode logic.Snapshot, message string) {
	t.mu.Lock()
	t.snap.Mode = mode
	t.snap.Message = message
	t.mu.Unlock()
}

// RecordChar counts one dispatched byte.
func (t *Tracker) RecordChar(b byte, class logic.Class) {
	t.mu.Lock()
	t.snap.LastChar = &LastChar{Code: b, Class: class}
	switch class {
	case logic.ClassLetter:
		t.snap.Chars.Letters++
	case logic.ClassDigit:
		t.snap.Chars.Digits++
	default:
		t.snap.Chars.Other++
	}
	t.mu.Unlock()
}

// SetPanels stores renderings of the display and the matrix. The slices are
// kept as is; callers pass freshly built ones.
func (t *Tracker) SetPanels(screen, matrix []string) {
	t.mu.Lock()
	t.snap.Screen = screen
	t.snap.Matrix = matrix
	t.mu.Unlock()
}

// SetMQTT sets the MQTT connection status and offline queue length.
func (t *Tracker) SetMQTT(connected bool, buffered int) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.snap.MQTTBuffered = buffered
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	if s.LastChar != nil {
		c := *s.LastChar
		s.LastChar = &c
	}
	s.Now = time.Now()
	return s
}
