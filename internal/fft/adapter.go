// SPDX-License-Identifier: MIT

// Package fft adapts gonum's real FFT to the float32/complex64 boundary
// the engine operates on, with all scratch buffers pre-allocated so that
// Forward and Backward never allocate once constructed.
package fft

import (
	"errors"
	"fmt"

	"github.com/p-hlp/rtff/pkg/bitint"

	"gonum.org/v1/gonum/dsp/fourier"
)

// ErrFFTInitFailed is returned by NewAdapter when n is not a valid FFT
// size (must be a positive power of two).
var ErrFFTInitFailed = errors.New("fft: init failed")

// Adapter wraps a gonum real FFT plan together with the float64/complex128
// scratch buffers needed to bridge to/from the engine's float32/complex64
// blocks without allocating on the hot path.
type Adapter struct {
	size         int
	spectrumSize int
	plan         *fourier.FFT

	timeScratch     []float64
	spectrumScratch []complex128
	inverseScratch  []complex128
	timeOutScratch  []float64
}

// NewAdapter constructs an Adapter for real-valued transforms of length n.
// n must be a power of two. The half-spectrum it produces has n/2+1 bins.
func NewAdapter(n int) (*Adapter, error) {
	if n <= 0 || !bitint.IsPowerOfTwo(n) {
		return nil, fmt.Errorf("%w: fft size %d is not a positive power of two", ErrFFTInitFailed, n)
	}

	spectrumSize := n/2 + 1
	return &Adapter{
		size:            n,
		spectrumSize:    spectrumSize,
		plan:            fourier.NewFFT(n),
		timeScratch:     make([]float64, n),
		spectrumScratch: make([]complex128, spectrumSize),
		inverseScratch:  make([]complex128, spectrumSize),
		timeOutScratch:  make([]float64, n),
	}, nil
}

// Size returns the time-domain transform length (N).
func (a *Adapter) Size() int {
	return a.size
}

// SpectrumSize returns the number of complex bins in the half-spectrum
// (N/2 + 1).
func (a *Adapter) SpectrumSize() int {
	return a.spectrumSize
}

// Forward computes the real FFT of timeIn (length N) into spectrumOut
// (length N/2+1). Neither argument is retained after the call returns.
func (a *Adapter) Forward(timeIn []float32, spectrumOut []complex64) {
	for i, v := range timeIn {
		a.timeScratch[i] = float64(v)
	}
	a.plan.Coefficients(a.spectrumScratch, a.timeScratch)
	for i, c := range a.spectrumScratch {
		spectrumOut[i] = complex64(c)
	}
}

// Backward computes the inverse real FFT of spectrumIn (length N/2+1)
// into timeOut (length N). gonum's Sequence returns the unnormalized
// inverse (N times the original sequence), so Backward scales by 1/N
// to make Backward(Forward(x)) == x.
func (a *Adapter) Backward(spectrumIn []complex64, timeOut []float32) {
	for i, c := range spectrumIn {
		a.inverseScratch[i] = complex128(c)
	}
	a.plan.Sequence(a.timeOutScratch, a.inverseScratch)
	scale := 1 / float64(a.size)
	for i, v := range a.timeOutScratch {
		timeOut[i] = float32(v * scale)
	}
}

// Freq returns the frequency in Hz that bin i represents, given
// sampleRate samples per second.
func (a *Adapter) Freq(i int, sampleRate float64) float64 {
	if i < 0 || i >= a.spectrumSize {
		return 0
	}
	return a.plan.Freq(i) * sampleRate
}
