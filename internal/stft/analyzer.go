// SPDX-License-Identifier: MIT

// Package stft implements the per-channel STFT analysis/synthesis step:
// windowed forward FFT on the way in, windowed overlap-add inverse FFT
// on the way out. It is the Go counterpart of
// original_source/src/rtff/analyzer.{h,cc}.
package stft

import (
	"fmt"

	"github.com/p-hlp/rtff/internal/fft"
	"github.com/p-hlp/rtff/internal/window"
)

// Analyzer holds the per-channel state needed to analyze time-domain
// blocks into spectra and synthesize spectra back into time-domain
// blocks with correct overlap-add reconstruction.
type Analyzer struct {
	fftSize      int
	overlap      int
	channelCount int

	tables window.Table
	plan   *fft.Adapter

	// windowed is reused across Analyze calls to avoid allocating a
	// scratch buffer per channel per call.
	windowed []float32

	// per-channel synthesis state, mirroring analyzer.cc's
	// previous_buffer_/result_buffer_/post_ifft_buffer_.
	previous []channelTail
	result   [][]float32
	postIFFT [][]float32
}

type channelTail struct {
	buf []float32
}

// NewAnalyzer constructs an Analyzer for the given fft size, overlap
// (overlap = fftSize - hop), window type, and channel count.
func NewAnalyzer(fftSize, overlap int, windowType window.Type, channelCount int) (*Analyzer, error) {
	if channelCount <= 0 {
		return nil, fmt.Errorf("stft: channelCount must be positive, got %d", channelCount)
	}
	hop := fftSize - overlap
	tables, err := window.Build(windowType, fftSize, hop)
	if err != nil {
		return nil, err
	}
	plan, err := fft.NewAdapter(fftSize)
	if err != nil {
		return nil, err
	}

	a := &Analyzer{
		fftSize:      fftSize,
		overlap:      overlap,
		channelCount: channelCount,
		tables:       tables,
		plan:         plan,
		windowed:     make([]float32, fftSize),
		previous:     make([]channelTail, channelCount),
		result:       make([][]float32, channelCount),
		postIFFT:     make([][]float32, channelCount),
	}
	tailSize := fftSize - hop
	for c := 0; c < channelCount; c++ {
		a.previous[c] = channelTail{buf: make([]float32, tailSize)}
		a.result[c] = make([]float32, fftSize)
		a.postIFFT[c] = make([]float32, fftSize)
	}
	return a, nil
}

// FFTSize returns the transform length N.
func (a *Analyzer) FFTSize() int { return a.fftSize }

// Overlap returns the configured overlap (N - hop).
func (a *Analyzer) Overlap() int { return a.overlap }

// HopSize returns the hop size (fftSize - overlap).
func (a *Analyzer) HopSize() int { return a.fftSize - a.overlap }

// WindowSize returns the analysis/synthesis window length, equal to
// FFTSize.
func (a *Analyzer) WindowSize() int { return a.fftSize }

// ChannelCount returns the number of channels this Analyzer was built
// for.
func (a *Analyzer) ChannelCount() int { return a.channelCount }

// Analyze applies the analysis window to each channel of timeIn (each of
// length WindowSize) and computes its forward FFT into spectrumOut (each
// of length SpectrumSize). timeIn is left unchanged: the windowed copy is
// built in an internal scratch buffer, and neither argument is retained
// after the call returns.
func (a *Analyzer) Analyze(timeIn [][]float32, spectrumOut [][]complex64) {
	for c := 0; c < a.channelCount; c++ {
		in := timeIn[c]
		for i, v := range in {
			a.windowed[i] = v * a.tables.Analysis[i]
		}
		a.plan.Forward(a.windowed, spectrumOut[c])
	}
}

// Synthesize computes the inverse FFT of each channel of spectrumIn,
// applies the COLA-normalized synthesis window, overlap-adds with the
// previous call's tail, and writes the next hop-sized block of
// reconstructed samples into pcmOut (each of length HopSize).
func (a *Analyzer) Synthesize(spectrumIn [][]complex64, pcmOut [][]float32) {
	hop := a.HopSize()
	for c := 0; c < a.channelCount; c++ {
		post := a.postIFFT[c]
		a.plan.Backward(spectrumIn[c], post)

		result := a.result[c]
		for i := range result {
			result[i] = 0
		}
		prev := a.previous[c].buf
		copy(result[:len(prev)], prev)
		for i, v := range post {
			result[i] += v * a.tables.Synthesis[i]
		}

		copy(prev, result[len(result)-len(prev):])
		copy(pcmOut[c], result[:hop])
	}
}
