package ui

import (
	"io"
	"sync"
)

// AudioRingBuffer holds little-endian int16 audio between the tick
// goroutine and oto. Writers never block: on overflow the oldest audio is
// discarded. Readers block until data arrives or the ring is closed.
type AudioRingBuffer struct {
	mu   sync.Mutex
	cond *sync.Cond

	buf     []byte
	head    int // next byte to read
	count   int
	dropped uint64
	closed  bool
}

// NewAudioRingBuffer creates a ring holding up to capacity bytes. The
// capacity is rounded down to whole stereo frames.
func NewAudioRingBuffer(capacity int) *AudioRingBuffer {
	capacity &^= 3
	if capacity < 4 {
		capacity = 4
	}
	rb := &AudioRingBuffer{buf: make([]byte, capacity)}
	rb.cond = sync.NewCond(&rb.mu)
	return rb
}

// WriteSamples encodes samples into the ring.
func (rb *AudioRingBuffer) WriteSamples(samples []int16) {
	if len(samples) == 0 {
		return
	}

	rb.mu.Lock()
	defer rb.mu.Unlock()
	if rb.closed {
		return
	}

	size := len(rb.buf)
	if need := len(samples) * 2; need > size {
		skip := (need - size) / 2
		rb.dropped += uint64(skip * 2)
		samples = samples[skip:]
	}
	if over := rb.count + len(samples)*2 - size; over > 0 {
		rb.head = (rb.head + over) % size
		rb.count -= over
		rb.dropped += uint64(over)
	}

	tail := (rb.head + rb.count) % size
	for _, s := range samples {
		rb.buf[tail] = byte(s)
		rb.buf[(tail+1)%size] = byte(s >> 8)
		tail = (tail + 2) % size
	}
	rb.count += len(samples) * 2
	rb.cond.Signal()
}

// Read implements io.Reader for oto. It returns io.EOF once closed and
// drained.
func (rb *AudioRingBuffer) Read(p []byte) (int, error) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	for rb.count == 0 {
		if rb.closed {
			return 0, io.EOF
		}
		rb.cond.Wait()
	}

	n := min(len(p), rb.count)
	first := min(n, len(rb.buf)-rb.head)
	copy(p, rb.buf[rb.head:rb.head+first])
	copy(p[first:n], rb.buf[:n-first])
	rb.head = (rb.head + n) % len(rb.buf)
	rb.count -= n
	return n, nil
}

// Buffered returns the bytes waiting to be read.
func (rb *AudioRingBuffer) Buffered() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.count
}

// Dropped returns the bytes discarded on overflow so far.
func (rb *AudioRingBuffer) Dropped() uint64 {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.dropped
}

// Clear discards buffered audio.
func (rb *AudioRingBuffer) Clear() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.head = 0
	rb.count = 0
}

// Close wakes blocked readers. Reads drain what is left, then return io.EOF.
func (rb *AudioRingBuffer) Close() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.closed = true
	rb.cond.Broadcast()
}
