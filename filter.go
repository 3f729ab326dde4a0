// SPDX-License-Identifier: MIT
package rtff

import "github.com/p-hlp/rtff/internal/window"

// Filter is a convenience wrapper around MixingFilter for the common
// 1-input/1-output case, mirroring the ergonomics of
// original_source/src/rtff/abstract_filter.h and filter.cc: callers
// write and read a single Waveform rather than a slice of streams.
type Filter struct {
	engine *MixingFilter
}

// NewFilter builds a single-input/single-output Filter. WithChannels
// sets the channel count for both the input and output stream; leaving
// InputChannels/OutputChannels untouched in opts keeps the mono default.
func NewFilter(opts ...InitOption) (*Filter, error) {
	engine, err := NewEngine(append([]InitOption{
		func(c *Config) {
			c.InputChannels = []int{1}
			c.OutputChannels = []int{1}
		},
	}, opts...)...)
	if err != nil {
		return nil, err
	}
	return &Filter{engine: engine}, nil
}

// SetTransform installs the spectral transform. The default is
// IdentityTransform, which passes every bin through unchanged.
func (f *Filter) SetTransform(t Transform) {
	f.engine.SetTransform(t)
}

// SetBlockSize changes the number of frames expected per Write/Read
// call.
func (f *Filter) SetBlockSize(value int) {
	f.engine.SetBlockSize(value)
}

// Write feeds one planar block of BlockSize frames into the filter.
func (f *Filter) Write(block [][]float32) {
	f.engine.Write([][][]float32{block})
}

// Read drains BlockSize frames from the filter into block, zero-filling
// any channels that don't yet have enough buffered output.
func (f *Filter) Read(block [][]float32) {
	f.engine.Read([][][]float32{block})
}

// FrameLatency returns the number of frames of latency the filter
// introduces.
func (f *Filter) FrameLatency() int { return f.engine.FrameLatency() }

// FFTSize returns the configured transform length.
func (f *Filter) FFTSize() int { return f.engine.FFTSize() }

// Overlap returns the configured overlap.
func (f *Filter) Overlap() int { return f.engine.Overlap() }

// HopSize returns FFTSize - Overlap.
func (f *Filter) HopSize() int { return f.engine.HopSize() }

// WindowSize returns the analysis/synthesis window length.
func (f *Filter) WindowSize() int { return f.engine.WindowSize() }

// WindowType returns the configured analysis/synthesis window function.
func (f *Filter) WindowType() window.Type { return f.engine.WindowType() }

// BlockSize returns the frame count expected per Write/Read call.
func (f *Filter) BlockSize() int { return f.engine.BlockSize() }

// ChannelCount returns the filter's channel count.
func (f *Filter) ChannelCount() int { return f.engine.InputChannelCounts()[0] }
