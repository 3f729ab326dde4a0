// SPDX-License-Identifier: MIT

// Package ring implements the fixed-capacity circular buffers that decouple
// a caller's block size from the STFT engine's FFT window size and hop
// size. Every buffer in this package is sized once at construction and
// never grows afterward: Write and Read only touch pre-allocated storage.
package ring

import "github.com/p-hlp/rtff/pkg/bitint"

// RingBuffer is a single-channel circular FIFO of float32 samples. It is
// used to accumulate and drain audio data without allocating on every
// Write/Read call.
//
// Capacity is rounded up to the next power of two at construction so that
// index wraparound can use a bitmask instead of a modulo.
type RingBuffer struct {
	buffer     []float32
	mask       int
	writeIndex int
	readIndex  int
	available  int
}

// NewRingBuffer creates a RingBuffer able to hold at least capacity samples
// without requiring a Read between Writes.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 1
	}
	size := bitint.NextPowerOfTwo(capacity)
	return &RingBuffer{
		buffer: make([]float32, size),
		mask:   size - 1,
	}
}

// InitWithZeros pre-fills the buffer with count zero samples. It requires
// count <= capacity.
func (r *RingBuffer) InitWithZeros(count int) {
	for i := 0; i < count; i++ {
		r.buffer[r.writeIndex] = 0
		r.writeIndex = (r.writeIndex + 1) & r.mask
	}
	r.available += count
}

// Write copies src into the buffer. The caller must ensure
// available()+len(src) does not exceed capacity; the engine guarantees
// this by construction via its block-size and hop-size bookkeeping.
func (r *RingBuffer) Write(src []float32) {
	for _, v := range src {
		r.buffer[r.writeIndex] = v
		r.writeIndex = (r.writeIndex + 1) & r.mask
	}
	r.available += len(src)
}

// Read copies len(dst) samples into dst and advances the read cursor by
// that amount. It returns false, leaving the buffer state untouched, when
// fewer than len(dst) samples are available.
func (r *RingBuffer) Read(dst []float32) bool {
	n := len(dst)
	if r.available < n {
		return false
	}
	idx := r.readIndex
	for i := 0; i < n; i++ {
		dst[i] = r.buffer[idx]
		idx = (idx + 1) & r.mask
	}
	r.readIndex = idx
	r.available -= n
	return true
}

// Available reports the number of samples currently stored.
func (r *RingBuffer) Available() int {
	return r.available
}

// Capacity reports the buffer's storage capacity (rounded up to a power of
// two from the value requested at construction).
func (r *RingBuffer) Capacity() int {
	return len(r.buffer)
}
