// SPDX-License-Identifier: MIT

// Package rtff implements a real-time short-time Fourier transform
// filtering engine: windowed analysis, a user-supplied spectral
// transform, and windowed overlap-add synthesis, wired together with
// zero-allocation ring buffers so it can run on an audio callback
// thread.
package rtff

// Waveform is a planar (one slice per channel), fixed frame-count block
// of audio samples. It is the Go counterpart of
// original_source/src/rtff/buffer/waveform.{h,cc}.
type Waveform struct {
	channels [][]float32
}

// NewWaveform allocates a Waveform with channelCount channels of
// frameCount samples each, zero-initialized.
func NewWaveform(frameCount, channelCount int) *Waveform {
	w := &Waveform{channels: make([][]float32, channelCount)}
	for i := range w.channels {
		w.channels[i] = make([]float32, frameCount)
	}
	return w
}

// NewWaveformFromPlanar wraps an existing planar [][]float32 view as a
// Waveform without copying, for callers that already hold per-channel
// sample slices (e.g. a Filter's own output block).
func NewWaveformFromPlanar(channels [][]float32) *Waveform {
	return &Waveform{channels: channels}
}

// FrameCount returns the number of samples in each channel, or 0 if the
// Waveform has no channels.
func (w *Waveform) FrameCount() int {
	if len(w.channels) == 0 {
		return 0
	}
	return len(w.channels[0])
}

// ChannelCount returns the number of channels.
func (w *Waveform) ChannelCount() int {
	return len(w.channels)
}

// Channel returns the planar sample slice for channelIdx.
func (w *Waveform) Channel(channelIdx int) []float32 {
	return w.channels[channelIdx]
}

// Planar returns the full planar [][]float32 view, one slice per
// channel, suitable for passing directly to MixingFilter.Write/Read.
func (w *Waveform) Planar() [][]float32 {
	return w.channels
}

// FromInterleaved fills the Waveform from an interleaved sample buffer
// of FrameCount()*ChannelCount() samples, ordered
// [frame0ch0, frame0ch1, ..., frame1ch0, frame1ch1, ...].
func (w *Waveform) FromInterleaved(data []float32) {
	channelCount := w.ChannelCount()
	for c := 0; c < channelCount; c++ {
		channel := w.channels[c]
		for f := range channel {
			channel[f] = data[f*channelCount+c]
		}
	}
}

// ToInterleaved writes the Waveform's planar samples into dst in
// interleaved order. dst must have at least FrameCount()*ChannelCount()
// capacity.
func (w *Waveform) ToInterleaved(dst []float32) {
	channelCount := w.ChannelCount()
	for c := 0; c < channelCount; c++ {
		channel := w.channels[c]
		for f, v := range channel {
			dst[f*channelCount+c] = v
		}
	}
}
