package transport

import (
	"math/cmplx"
	"sync"
)

// MagnitudeBuffer is a thread-safe SpectrumProvider that holds the most
// recently observed magnitude spectrum per channel. It is meant to be
// updated from rtff's audio-callback thread via Update and read from a
// publisher goroutine via Magnitudes, decoupling the two without
// allocating on the hot path: Update only copies into pre-sized slices.
type MagnitudeBuffer struct {
	mu           sync.RWMutex
	magnitudes   [][]float32
	spectrumSize int
}

// NewMagnitudeBuffer preallocates storage for channelCount channels of
// spectrumSize magnitude bins each.
func NewMagnitudeBuffer(channelCount, spectrumSize int) *MagnitudeBuffer {
	b := &MagnitudeBuffer{
		magnitudes:   make([][]float32, channelCount),
		spectrumSize: spectrumSize,
	}
	for i := range b.magnitudes {
		b.magnitudes[i] = make([]float32, spectrumSize)
	}
	return b
}

// Update computes the magnitude of each bin in spectrum and stores it
// for channel. Safe to call from the audio callback thread; it takes a
// write lock only for the duration of the copy.
func (b *MagnitudeBuffer) Update(channel int, spectrum []complex64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	dst := b.magnitudes[channel]
	for i, c := range spectrum {
		dst[i] = float32(cmplx.Abs(complex128(c)))
	}
}

// Magnitudes returns a copy of the most recent magnitude spectrum for
// channel, implementing SpectrumProvider.
func (b *MagnitudeBuffer) Magnitudes(channel int) []float32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]float32, len(b.magnitudes[channel]))
	copy(out, b.magnitudes[channel])
	return out
}

// SpectrumSize implements SpectrumProvider.
func (b *MagnitudeBuffer) SpectrumSize() int {
	return b.spectrumSize
}

var _ SpectrumProvider = (*MagnitudeBuffer)(nil)
