// SPDX-License-Identifier: MIT
package ring

import "github.com/p-hlp/rtff/pkg/bitint"

// OverlapRingBuffer is a single-channel sliding-window FIFO. Read succeeds
// only once at least readSize samples are available; on success it emits
// readSize consecutive samples and advances the logical read cursor by
// stepSize, leaving readSize-stepSize samples visible for the next Read.
// Consecutive successful reads therefore overlap by readSize-stepSize
// samples, which is exactly the STFT analysis window's overlap.
type OverlapRingBuffer struct {
	buffer     []float32
	mask       int
	writeIndex int
	readIndex  int
	available  int
	readSize   int
	stepSize   int
}

// NewOverlapRingBuffer creates an OverlapRingBuffer with the given read and
// step size. stepSize must be <= readSize. Capacity is sized to comfortably
// hold one window plus the caller's typical write size and rounded up to a
// power of two for bitmask indexing.
func NewOverlapRingBuffer(readSize, stepSize int) *OverlapRingBuffer {
	if stepSize > readSize {
		stepSize = readSize
	}
	// readSize plus one full window of slack covers any block size the
	// caller is likely to write between reads; the engine resizes this at
	// Init/SetBlockSize time anyway via NewOverlapRingBufferCapacity.
	return NewOverlapRingBufferCapacity(readSize, stepSize, readSize*2)
}

// NewOverlapRingBufferCapacity is like NewOverlapRingBuffer but lets the
// caller specify the minimum capacity explicitly (in practice readSize
// plus the engine's configured block size).
func NewOverlapRingBufferCapacity(readSize, stepSize, minCapacity int) *OverlapRingBuffer {
	if stepSize > readSize {
		stepSize = readSize
	}
	if minCapacity < readSize {
		minCapacity = readSize
	}
	size := bitint.NextPowerOfTwo(minCapacity)
	return &OverlapRingBuffer{
		buffer:   make([]float32, size),
		mask:     size - 1,
		readSize: readSize,
		stepSize: stepSize,
	}
}

// InitWithZeros pre-fills the buffer with count zero samples, used to pad
// the engine's latency so the first emitted hop aligns with the original
// sample stream.
func (o *OverlapRingBuffer) InitWithZeros(count int) {
	for i := 0; i < count; i++ {
		o.buffer[o.writeIndex] = 0
		o.writeIndex = (o.writeIndex + 1) & o.mask
	}
	o.available += count
}

// Write appends src to the buffer.
func (o *OverlapRingBuffer) Write(src []float32) {
	for _, v := range src {
		o.buffer[o.writeIndex] = v
		o.writeIndex = (o.writeIndex + 1) & o.mask
	}
	o.available += len(src)
}

// Read emits readSize samples into dst (which must have length readSize)
// and advances the cursor by stepSize. It returns false, leaving state
// untouched, when fewer than readSize samples are available.
func (o *OverlapRingBuffer) Read(dst []float32) bool {
	if o.available < o.readSize {
		return false
	}
	idx := o.readIndex
	for i := 0; i < o.readSize; i++ {
		dst[i] = o.buffer[idx]
		idx = (idx + 1) & o.mask
	}
	o.readIndex = (o.readIndex + o.stepSize) & o.mask
	o.available -= o.stepSize
	return true
}

// Available reports the number of samples currently stored.
func (o *OverlapRingBuffer) Available() int {
	return o.available
}

// ReadSize returns the configured window length.
func (o *OverlapRingBuffer) ReadSize() int {
	return o.readSize
}

// StepSize returns the configured advance amount.
func (o *OverlapRingBuffer) StepSize() int {
	return o.stepSize
}
