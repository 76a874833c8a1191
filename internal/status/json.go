package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string         `json:"event,omitempty"`
	Reason        string         `json:"reason,omitempty"`
	Green         bool           `json:"green"`
	Blue          bool           `json:"blue"`
	Counter       uint32         `json:"counter"`
	LastToggled   string         `json:"last_toggled"`
	Message       string         `json:"message"`
	LastChar      *CharJSON      `json:"last_char,omitempty"`
	Chars         CharCountsJSON `json:"char_counts"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	StartTime     string         `json:"start_time"`
	Timestamp     string         `json:"timestamp"`
	MQTT          MQTTStatus     `json:"mqtt"`
	Screen        []string       `json:"screen,omitempty"`
	Matrix        []string       `json:"matrix,omitempty"`
	Config        ConfigJSON     `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
	Buffered  int    `json:"buffered"`
}

// CharJSON is the JSON representation of the last dispatched byte.
type CharJSON struct {
	Code  uint8  `json:"code"`
	Class string `json:"class"`
}

// CharCountsJSON is the JSON representation of per-class byte counts.
type CharCountsJSON struct {
	Letters int `json:"letters"`
	Digits  int `json:"digits"`
	Other   int `json:"other"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs          int64  `json:"poll_ms"`
	DebounceMs      int64  `json:"debounce_ms"`
	HeartbeatMs     int64  `json:"heartbeat_ms"`
	Precedence      string `json:"precedence"`
	RenderInHandler bool   `json:"render_in_handler"`
	Input           string `json:"input"`
	Broker          string `json:"broker"`
	HTTPPort        string `json:"http_port"`
	WSBroker        string `json:"ws_broker,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Green:         snap.Mode.Green,
		Blue:          snap.Mode.Blue,
		Counter:       snap.Mode.Counter,
		LastToggled:   snap.Mode.LastToggled.String(),
		Message:       snap.Message,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT: MQTTStatus{
			Connected: snap.MQTTConnected,
			Broker:    snap.Config.Broker,
			Buffered:  snap.MQTTBuffered,
		},
		Chars: CharCountsJSON{
			Letters: snap.Chars.Letters,
			Digits:  snap.Chars.Digits,
			Other:   snap.Chars.Other,
		},
		Config: ConfigJSON{
			PollMs:          snap.Config.PollMs,
			DebounceMs:      snap.Config.DebounceMs,
			HeartbeatMs:     snap.Config.HeartbeatMs,
			Precedence:      snap.Config.Precedence,
			RenderInHandler: snap.Config.RenderInHandler,
			Input:           snap.Config.Input,
			Broker:          snap.Config.Broker,
			HTTPPort:        snap.Config.HTTPPort,
			WSBroker:        snap.Config.WSBroker,
		},
	}
	if snap.Mode.Counter == 0 {
		inner.LastToggled = ""
	}
	if snap.LastChar != nil {
		inner.LastChar = &CharJSON{Code: snap.LastChar.Code, Class: snap.LastChar.Class.String()}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint, including the
// screen and matrix renderings.
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	inner.Screen = snap.Screen
	inner.Matrix = snap.Matrix

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the compact JSON status for an MQTT system event.
// Panel renderings are left out.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
