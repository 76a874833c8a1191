package mqtt

import "log"

// bufferedMsg is a serialized message held for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// ringBuffer keeps the newest messages while the broker is unreachable.
// Not safe for concurrent use; the owner synchronizes.
type ringBuffer struct {
	buf     []bufferedMsg
	next    int // slot for the next push
	count   int
	dropped int // total messages lost to overflow
	warned  bool
}

func newRingBuffer(capacity int) *ringBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &ringBuffer{buf: make([]bufferedMsg, capacity)}
}

func (r *ringBuffer) push(msg bufferedMsg) {
	r.buf[r.next] = msg
	r.next = (r.next + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
		return
	}
	// The slot just written held the oldest message.
	r.dropped++
	if !r.warned {
		log.Printf("mqtt: offline buffer full (%d messages), dropping oldest", len(r.buf))
		r.warned = true
	}
}

// drainAll returns the buffered messages oldest first and empties the ring.
func (r *ringBuffer) drainAll() []bufferedMsg {
	if r.count == 0 {
		return nil
	}
	out := make([]bufferedMsg, r.count)
	start := (r.next - r.count + len(r.buf)) % len(r.buf)
	for i := range out {
		out[i] = r.buf[(start+i)%len(r.buf)]
	}
	r.count = 0
	r.next = 0
	r.warned = false
	return out
}

func (r *ringBuffer) len() int {
	return r.count
}
