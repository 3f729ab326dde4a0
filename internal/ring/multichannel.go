// SPDX-License-Identifier: MIT
package ring

// MultichannelRingBuffer holds one RingBuffer per channel and exposes
// planar Write/Read that iterate channels. Read succeeds only if every
// channel's read succeeds; because all channels are written with the same
// frame counts by construction, partial failure cannot occur in practice,
// so the first channel's outcome determines the result.
type MultichannelRingBuffer struct {
	channels []*RingBuffer
}

// NewMultichannelRingBuffer creates channelCount parallel RingBuffers of
// the given per-channel capacity.
func NewMultichannelRingBuffer(capacity, channelCount int) *MultichannelRingBuffer {
	m := &MultichannelRingBuffer{channels: make([]*RingBuffer, channelCount)}
	for i := range m.channels {
		m.channels[i] = NewRingBuffer(capacity)
	}
	return m
}

// InitWithZeros pre-fills every channel with count zero samples.
func (m *MultichannelRingBuffer) InitWithZeros(count int) {
	for _, c := range m.channels {
		c.InitWithZeros(count)
	}
}

// Channel returns the RingBuffer for channelIdx.
func (m *MultichannelRingBuffer) Channel(channelIdx int) *RingBuffer {
	return m.channels[channelIdx]
}

// ChannelCount returns the number of channels.
func (m *MultichannelRingBuffer) ChannelCount() int {
	return len(m.channels)
}

// Write writes planar data, one slice per channel, of frameCount samples
// each.
func (m *MultichannelRingBuffer) Write(planar [][]float32) {
	for i, c := range m.channels {
		c.Write(planar[i])
	}
}

// Read reads planar data into dst, one slice per channel. It returns false
// iff the first channel lacks enough data (see type doc for why checking
// only the first channel is sufficient).
func (m *MultichannelRingBuffer) Read(dst [][]float32) bool {
	if !m.channels[0].Read(dst[0]) {
		return false
	}
	for i := 1; i < len(m.channels); i++ {
		m.channels[i].Read(dst[i])
	}
	return true
}

// MultichannelOverlapRingBuffer is the parallel per-channel wrapper around
// OverlapRingBuffer used for the engine's input streams.
type MultichannelOverlapRingBuffer struct {
	channels []*OverlapRingBuffer
}

// NewMultichannelOverlapRingBuffer creates channelCount parallel
// OverlapRingBuffers, each sized to hold at least minCapacity samples.
func NewMultichannelOverlapRingBuffer(readSize, stepSize, minCapacity, channelCount int) *MultichannelOverlapRingBuffer {
	m := &MultichannelOverlapRingBuffer{channels: make([]*OverlapRingBuffer, channelCount)}
	for i := range m.channels {
		m.channels[i] = NewOverlapRingBufferCapacity(readSize, stepSize, minCapacity)
	}
	return m
}

// InitWithZeros pre-fills every channel with count zero samples.
func (m *MultichannelOverlapRingBuffer) InitWithZeros(count int) {
	for _, c := range m.channels {
		c.InitWithZeros(count)
	}
}

// Channel returns the OverlapRingBuffer for channelIdx.
func (m *MultichannelOverlapRingBuffer) Channel(channelIdx int) *OverlapRingBuffer {
	return m.channels[channelIdx]
}

// ChannelCount returns the number of channels.
func (m *MultichannelOverlapRingBuffer) ChannelCount() int {
	return len(m.channels)
}

// Write writes planar data, one slice per channel.
func (m *MultichannelOverlapRingBuffer) Write(planar [][]float32) {
	for i, c := range m.channels {
		c.Write(planar[i])
	}
}

// Read reads one overlapping window per channel into dst. It returns false
// iff the first channel lacks a full window (see type doc).
func (m *MultichannelOverlapRingBuffer) Read(dst [][]float32) bool {
	if !m.channels[0].Read(dst[0]) {
		return false
	}
	for i := 1; i < len(m.channels); i++ {
		m.channels[i].Read(dst[i])
	}
	return true
}
