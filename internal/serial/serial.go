// Package serial provides the non-blocking character input polled by the
// main loop.
package serial

import (
	"io"
	"sync"
)

// Reader is polled once per main loop iteration.
type Reader interface {
	// TryReadByte returns the next input byte if one is available.
	// It never blocks.
	TryReadByte() (byte, bool)
}

// ctrlC is the byte a raw-mode terminal sends for Ctrl-C.
const ctrlC = 0x03

// Stream turns a blocking io.Reader into a Reader. A goroutine reads
// ahead into a bounded buffer; when the buffer is full the goroutine waits,
// so input is never dropped.
type Stream struct {
	bytes chan byte
	intr  chan struct{}
	catch bool

	once sync.Once
	mu   sync.Mutex
	err  error
}

// NewStream starts reading r. size bounds the read-ahead buffer.
func NewStream(r io.Reader, size int) *Stream {
	return newStream(r, size, false)
}

func newStream(r io.Reader, size int, catchCtrlC bool) *Stream {
	if size <= 0 {
		size = 64
	}
	s := &Stream{
		bytes: make(chan byte, size),
		intr:  make(chan struct{}),
		catch: catchCtrlC,
	}
	go s.pump(r)
	return s
}

func (s *Stream) pump(r io.Reader) {
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			if s.catch && b == ctrlC {
				s.once.Do(func() { close(s.intr) })
				continue
			}
			s.bytes <- b
		}
		if err != nil {
			if err != io.EOF {
				s.mu.Lock()
				s.err = err
				s.mu.Unlock()
			}
			return
		}
	}
}

// TryReadByte implements Reader.
func (s *Stream) TryReadByte() (byte, bool) {
	select {
	case b := <-s.bytes:
		return b, true
	default:
		return 0, false
	}
}

// Interrupted is closed when a raw terminal stream receives Ctrl-C.
// It is never closed for plain streams.
func (s *Stream) Interrupted() <-chan struct{} {
	return s.intr
}

// Err returns the read error that stopped the stream, if any. End of input
// is not an error.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
