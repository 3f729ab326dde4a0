// SPDX-License-Identifier: MIT
package rtff

import (
	"fmt"

	"github.com/p-hlp/rtff/internal/window"
	"github.com/p-hlp/rtff/pkg/bitint"
)

// Config bundles the static parameters needed to build an Engine or
// Filter. NewEngine and NewFilter start from NewConfig and apply
// InitOptions to it in order.
type Config struct {
	// FFTSize is the transform length in samples. Must be a power of
	// two.
	FFTSize int
	// Overlap is the number of samples retained between consecutive
	// analysis windows. HopSize = FFTSize - Overlap.
	Overlap int
	// WindowType selects the analysis/synthesis window function.
	WindowType window.Type
	// BlockSize is the number of frames per Write/Read call once the
	// engine is running. It may differ from HopSize; the engine's
	// internal ring buffers absorb the mismatch.
	BlockSize int
	// InputChannels and OutputChannels are the per-stream channel
	// counts for each of the InputCount/OutputCount streams. The
	// counts are fixed when the engine is constructed rather than at
	// compile time, so a single binary can serve mono, stereo, or arbitrary
	// up/down-mixing configurations.
	InputChannels  []int
	OutputChannels []int
}

// NewConfig returns a Config with the same defaults as the original
// mixing filter: a 2048-sample Hamming window with 50% overlap and a
// 512-frame block size, for one mono input and one mono output stream.
func NewConfig() Config {
	return Config{
		FFTSize:        2048,
		Overlap:        1024,
		WindowType:     window.Hamming,
		BlockSize:      512,
		InputChannels:  []int{1},
		OutputChannels: []int{1},
	}
}

// InitOption mutates a Config during construction. Options are applied
// in the order passed to NewEngine/NewFilter.
type InitOption func(*Config)

// WithFFTSize overrides the transform length.
func WithFFTSize(n int) InitOption {
	return func(c *Config) { c.FFTSize = n }
}

// WithOverlap overrides the retained-sample overlap.
func WithOverlap(overlap int) InitOption {
	return func(c *Config) { c.Overlap = overlap }
}

// WithWindowType overrides the analysis/synthesis window function.
func WithWindowType(t window.Type) InitOption {
	return func(c *Config) { c.WindowType = t }
}

// WithBlockSize overrides the per-call frame count.
func WithBlockSize(n int) InitOption {
	return func(c *Config) { c.BlockSize = n }
}

// WithChannels overrides the per-stream channel counts for both input
// and output streams uniformly, e.g. WithChannels(2) for stereo in and
// out.
func WithChannels(channelCount int) InitOption {
	return func(c *Config) {
		for i := range c.InputChannels {
			c.InputChannels[i] = channelCount
		}
		for i := range c.OutputChannels {
			c.OutputChannels[i] = channelCount
		}
	}
}

// validate checks the Config's fields for basic sanity, returning
// ErrConfigInvalid wrapped with a descriptive message on failure.
func (c Config) validate() error {
	if c.FFTSize <= 0 {
		return fmt.Errorf("%w: fft size must be positive, got %d", ErrConfigInvalid, c.FFTSize)
	}
	if !bitint.IsPowerOfTwo(c.FFTSize) {
		return fmt.Errorf("%w: fft size must be a power of two, got %d", ErrConfigInvalid, c.FFTSize)
	}
	if c.Overlap < 0 || c.Overlap >= c.FFTSize {
		return fmt.Errorf("%w: overlap must be in [0, fftSize), got %d with fftSize %d", ErrConfigInvalid, c.Overlap, c.FFTSize)
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("%w: block size must be positive, got %d", ErrConfigInvalid, c.BlockSize)
	}
	if len(c.InputChannels) == 0 {
		return fmt.Errorf("%w: at least one input stream is required", ErrConfigInvalid)
	}
	if len(c.OutputChannels) == 0 {
		return fmt.Errorf("%w: at least one output stream is required", ErrConfigInvalid)
	}
	for i, n := range c.InputChannels {
		if n <= 0 || n > 255 {
			return fmt.Errorf("%w: input stream %d has channel count %d outside [1, 255]", ErrConfigInvalid, i, n)
		}
	}
	for i, n := range c.OutputChannels {
		if n <= 0 || n > 255 {
			return fmt.Errorf("%w: output stream %d has channel count %d outside [1, 255]", ErrConfigInvalid, i, n)
		}
	}
	return nil
}

// HopSize returns FFTSize - Overlap.
func (c Config) HopSize() int {
	return c.FFTSize - c.Overlap
}
