// Package mqtt publishes coordinator telemetry, with an abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/button-matrix/internal/logic"
)

// Topic is the MQTT topic for mode and character events.
const Topic = "display/coordinator/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "display/coordinator/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a coordinator event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active and how many
// messages wait for it.
type ConnectionStatus interface {
	IsConnected() bool
	Buffered() int
}

// Discard is the Publisher used when no broker is configured.
type Discard struct{}

func (Discard) Publish(Event) error { return nil }
func (Discard) PublishSystem(SystemEvent) error { return nil }
func (Discard) Close() error { return nil }
func (Discard) IsConnected() bool { return false }
func (Discard) Buffered() int { return 0 }

// EventKind names a coordinator event.
type EventKind string

const (
	// EventMode is emitted when an accepted button edge changed the mode.
	EventMode EventKind = "MODE"
	// EventChar is emitted for every dispatched input byte.
	EventChar EventKind = "CHAR"
)

// Event is one observation of the coordinator.
type Event struct {
	Timestamp time.Time
	Kind      EventKind

	// Mode is set for EventMode.
	Mode logic.Snapshot

	// Char and Class are set for EventChar.
	Char  byte
	Class logic.Class
}

// ModeEvent builds an EventMode from a state snapshot.
func ModeEvent(t time.Time, snap logic.Snapshot) Event {
	return Event{Timestamp: t, Kind: EventMode, Mode: snap}
}

// CharEvent builds an EventChar for one dispatched byte.
func CharEvent(t time.Time, b byte, class logic.Class) Event {
	return Event{Timestamp: t, Kind: EventChar, Char: b, Class: class}
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Coordinator CoordinatorPayload `json:"coordinator"`
}

// CoordinatorPayload contains the event details. Exactly one of Mode and
// Char is present.
type CoordinatorPayload struct {
	Timestamp string       `json:"timestamp"`
	Event     string       `json:"event"`
	Mode      *ModePayload `json:"mode,omitempty"`
	Char      *CharPayload `json:"char,omitempty"`
}

// ModePayload is the state after an accepted button edge.
type ModePayload struct {
	Green       bool   `json:"green"`
	Blue        bool   `json:"blue"`
	Counter     uint32 `json:"counter"`
	LastToggled string `json:"last_toggled"`
}

// CharPayload describes one input byte. Text is omitted for bytes that are
// not printable ASCII.
type CharPayload struct {
	Code  uint8  `json:"code"`
	Text  string `json:"text,omitempty"`
	Class string `json:"class"`
}

// FormatPayload creates the JSON payload for a coordinator event.
func FormatPayload(event Event) ([]byte, error) {
	inner := CoordinatorPayload{
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
		Event:     string(event.Kind),
	}
	switch event.Kind {
	case EventMode:
		inner.Mode = &ModePayload{
			Green:       event.Mode.Green,
			Blue:        event.Mode.Blue,
			Counter:     event.Mode.Counter,
			LastToggled: event.Mode.LastToggled.String(),
		}
	case EventChar:
		inner.Char = &CharPayload{
			Code:  event.Char,
			Text:  printable(event.Char),
			Class: event.Class.String(),
		}
	}
	return json.Marshal(Payload{Coordinator: inner})
}

func printable(b byte) string {
	if b < 0x20 || b > 0x7e {
		return ""
	}
	return string(rune(b))
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
