// SPDX-License-Identifier: MIT
package rtff

import (
	"github.com/p-hlp/rtff/internal/ring"
	"github.com/p-hlp/rtff/internal/stft"
	"github.com/p-hlp/rtff/internal/window"
)

// MixingFilter is a streaming STFT engine that accepts InputCount
// waveform streams and produces OutputCount waveform streams, running a
// user Transform on the spectral domain between analysis and synthesis.
// It is the Go counterpart of original_source/src/rtff/mixing_filter.h,
// generalized to runtime (rather than template-parameterized) input and
// output stream counts, per the design note in the spec this engine
// implements.
type MixingFilter struct {
	cfg       Config
	transform Transform
	hopSize   int

	inputAnalyzers  []*stft.Analyzer
	outputAnalyzers []*stft.Analyzer

	inputBuffers  []*ring.MultichannelOverlapRingBuffer
	outputBuffers []*ring.MultichannelRingBuffer

	amplitudeBlocks      [][][]float32
	frequentialBlocks    [][][]complex64
	outAmplitudeBlocks   [][][]float32
	outFrequentialBlocks [][][]complex64

	// flatInput/flatOutput are flattened (across streams) per-channel
	// spectrum views passed to Transform.Process. They alias the same
	// backing slices as frequentialBlocks/outFrequentialBlocks, so no
	// per-call allocation or copying is needed to assemble them.
	flatInput  [][]complex64
	flatOutput [][]complex64
}

// NewEngine builds a MixingFilter from the defaults in NewConfig,
// overridden by opts, in order.
func NewEngine(opts ...InitOption) (*MixingFilter, error) {
	cfg := NewConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return newEngine(cfg)
}

func newEngine(cfg Config) (*MixingFilter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	m := &MixingFilter{cfg: cfg, hopSize: cfg.HopSize(), transform: IdentityTransform}

	inputCount := len(cfg.InputChannels)
	outputCount := len(cfg.OutputChannels)

	m.inputAnalyzers = make([]*stft.Analyzer, inputCount)
	for i, ch := range cfg.InputChannels {
		a, err := stft.NewAnalyzer(cfg.FFTSize, cfg.Overlap, cfg.WindowType, ch)
		if err != nil {
			return nil, err
		}
		m.inputAnalyzers[i] = a
	}
	m.outputAnalyzers = make([]*stft.Analyzer, outputCount)
	for i, ch := range cfg.OutputChannels {
		a, err := stft.NewAnalyzer(cfg.FFTSize, cfg.Overlap, cfg.WindowType, ch)
		if err != nil {
			return nil, err
		}
		m.outputAnalyzers[i] = a
	}

	m.allocateBlocks()
	m.initBuffers()
	return m, nil
}

func (m *MixingFilter) allocateBlocks() {
	cfg := m.cfg
	spectrumSize := cfg.FFTSize/2 + 1

	m.amplitudeBlocks = make([][][]float32, len(cfg.InputChannels))
	m.frequentialBlocks = make([][][]complex64, len(cfg.InputChannels))
	for i, ch := range cfg.InputChannels {
		m.amplitudeBlocks[i] = make([][]float32, ch)
		m.frequentialBlocks[i] = make([][]complex64, ch)
		for c := 0; c < ch; c++ {
			m.amplitudeBlocks[i][c] = make([]float32, cfg.FFTSize)
			m.frequentialBlocks[i][c] = make([]complex64, spectrumSize)
		}
	}

	m.outAmplitudeBlocks = make([][][]float32, len(cfg.OutputChannels))
	m.outFrequentialBlocks = make([][][]complex64, len(cfg.OutputChannels))
	for i, ch := range cfg.OutputChannels {
		m.outAmplitudeBlocks[i] = make([][]float32, ch)
		m.outFrequentialBlocks[i] = make([][]complex64, ch)
		for c := 0; c < ch; c++ {
			m.outAmplitudeBlocks[i][c] = make([]float32, m.hopSize)
			m.outFrequentialBlocks[i][c] = make([]complex64, spectrumSize)
		}
	}

	m.flatInput = flatten(m.frequentialBlocks)
	m.flatOutput = flatten(m.outFrequentialBlocks)
}

func flatten(blocks [][][]complex64) [][]complex64 {
	var flat [][]complex64
	for _, stream := range blocks {
		flat = append(flat, stream...)
	}
	return flat
}

// initBuffers (re)builds the input/output ring buffers for the current
// fft size, overlap and block size, following
// MixingFilter::InitBuffers in the original engine.
func (m *MixingFilter) initBuffers() {
	cfg := m.cfg
	arbitraryBufferSize := cfg.BlockSize * 8
	if arbitraryBufferSize < m.hopSize*2 {
		arbitraryBufferSize = m.hopSize * 2
	}

	m.inputBuffers = make([]*ring.MultichannelOverlapRingBuffer, len(cfg.InputChannels))
	for i, ch := range cfg.InputChannels {
		// The overlap buffer must hold a full analysis window (FFTSize)
		// plus a full block of unread samples, or a Write that outpaces
		// Read would overwrite samples before they are consumed.
		minCapacity := cfg.FFTSize + cfg.BlockSize
		buf := ring.NewMultichannelOverlapRingBuffer(cfg.FFTSize, m.hopSize, minCapacity, ch)
		if cfg.FFTSize > cfg.BlockSize {
			buf.InitWithZeros(cfg.FFTSize - cfg.BlockSize)
		}
		m.inputBuffers[i] = buf
	}

	m.outputBuffers = make([]*ring.MultichannelRingBuffer, len(cfg.OutputChannels))
	for i, ch := range cfg.OutputChannels {
		m.outputBuffers[i] = ring.NewMultichannelRingBuffer(arbitraryBufferSize, ch)
	}
}

// SetTransform installs the spectral transform run between analysis and
// synthesis. The default is IdentityTransform.
func (m *MixingFilter) SetTransform(t Transform) {
	if t == nil {
		t = IdentityTransform
	}
	m.transform = t
}

// SetBlockSize changes the number of frames expected per Write/Read call
// and rebuilds the ring buffers accordingly.
func (m *MixingFilter) SetBlockSize(value int) {
	m.cfg.BlockSize = value
	m.initBuffers()
}

// Write feeds one planar block of audio per input stream (each of
// BlockSize frames) into the engine, running analysis, transform, and
// synthesis for every hop of data that becomes available, and buffering
// the results for Read.
func (m *MixingFilter) Write(streams [][][]float32) {
	for i, buf := range m.inputBuffers {
		buf.Write(streams[i])
	}

	for {
		for i, buf := range m.inputBuffers {
			if !buf.Read(m.amplitudeBlocks[i]) {
				return
			}
			m.inputAnalyzers[i].Analyze(m.amplitudeBlocks[i], m.frequentialBlocks[i])
		}

		m.transform.Process(m.flatInput, m.flatOutput)

		for i, buf := range m.outputBuffers {
			m.outputAnalyzers[i].Synthesize(m.outFrequentialBlocks[i], m.outAmplitudeBlocks[i])
			buf.Write(m.outAmplitudeBlocks[i])
		}
	}
}

// Read drains BlockSize frames per output stream into streams. If an
// output stream doesn't yet have enough buffered data, its slices are
// filled with zeros instead, matching MixingFilter::Read's underflow
// behavior.
func (m *MixingFilter) Read(streams [][][]float32) {
	for i, buf := range m.outputBuffers {
		if buf.Read(streams[i]) {
			continue
		}
		for _, channel := range streams[i] {
			for f := range channel {
				channel[f] = 0
			}
		}
	}
}

// FrameLatency returns the number of frames of latency the engine
// introduces, computed exactly as
// MixingFilter::FrameLatency in the original engine.
func (m *MixingFilter) FrameLatency() int {
	hop := m.hopSize
	block := m.cfg.BlockSize
	fftSize := m.cfg.FFTSize
	switch {
	case hop%block == 0:
		return fftSize - block
	case block < fftSize:
		return fftSize
	default:
		return block
	}
}

// FFTSize returns the configured transform length.
func (m *MixingFilter) FFTSize() int { return m.cfg.FFTSize }

// Overlap returns the configured overlap.
func (m *MixingFilter) Overlap() int { return m.cfg.Overlap }

// HopSize returns FFTSize - Overlap.
func (m *MixingFilter) HopSize() int { return m.hopSize }

// WindowSize returns the analysis/synthesis window length (== FFTSize).
func (m *MixingFilter) WindowSize() int { return m.cfg.FFTSize }

// WindowType returns the configured analysis/synthesis window function.
func (m *MixingFilter) WindowType() window.Type { return m.cfg.WindowType }

// BlockSize returns the frame count expected per Write/Read call.
func (m *MixingFilter) BlockSize() int { return m.cfg.BlockSize }

// InputChannelCounts returns the per-stream channel counts for inputs.
func (m *MixingFilter) InputChannelCounts() []int { return m.cfg.InputChannels }

// OutputChannelCounts returns the per-stream channel counts for
// outputs.
func (m *MixingFilter) OutputChannelCounts() []int { return m.cfg.OutputChannels }
