package logic

import (
	"fmt"
	"sync"
)

// recordingDisplay records every call made on it.
type recordingDisplay struct {
	mu          sync.Mutex
	calls       []string
	transmitErr error
}

func (d *recordingDisplay) Clear() {
	d.calls = append(d.calls, "clear")
}

func (d *recordingDisplay) DrawText(s string, x, y int16) {
	d.calls = append(d.calls, fmt.Sprintf("text %q %d,%d", s, x, y))
}

func (d *recordingDisplay) DrawGlyph(c byte, x, y int16) {
	d.calls = append(d.calls, fmt.Sprintf("glyph %c %d,%d", c, x, y))
}

func (d *recordingDisplay) Transmit() error {
	d.calls = append(d.calls, "transmit")
	return d.transmitErr
}

func (d *recordingDisplay) count(prefix string) int {
	n := 0
	for _, c := range d.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

// lockingDisplay adds the Exclusive methods to recordingDisplay.
type lockingDisplay struct {
	recordingDisplay
}

func (d *lockingDisplay) Lock()         { d.mu.Lock() }
func (d *lockingDisplay) TryLock() bool { return d.mu.TryLock() }
func (d *lockingDisplay) Unlock()       { d.mu.Unlock() }

type pixelCall struct {
	index  int
	packed uint32
}

type recordingMatrix struct {
	calls  []pixelCall
	failAt int // index that returns an error, -1 for none
}

func newRecordingMatrix() *recordingMatrix {
	return &recordingMatrix{failAt: -1}
}

func (m *recordingMatrix) SetPixel(index int, packed uint32) error {
	m.calls = append(m.calls, pixelCall{index: index, packed: packed})
	if index == m.failAt {
		return fmt.Errorf("pixel %d: bus error", index)
	}
	return nil
}

type fakeIndicator struct {
	level bool
	sets  int
}

func (f *fakeIndicator) Get() bool { return f.level }

func (f *fakeIndicator) Set(high bool) {
	f.level = high
	f.sets++
}
