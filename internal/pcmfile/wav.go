// SPDX-License-Identifier: MIT

// Package pcmfile bridges WAV files to rtff.Waveform blocks, adapted
// from the original capture engine's recording support.
package pcmfile

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/p-hlp/rtff"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Writer encodes float32 planar blocks to a 32-bit WAV file.
type Writer struct {
	file         *os.File
	encoder      *wav.Encoder
	channelCount int
	sampleBuf    *audio.IntBuffer
}

// NewWriter creates filename and prepares it to receive channelCount
// channels of audio at sampleRate.
func NewWriter(filename string, sampleRate, channelCount int) (*Writer, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	encoder := wav.NewEncoder(file, sampleRate, 32, channelCount, 1)
	return &Writer{
		file:         file,
		encoder:      encoder,
		channelCount: channelCount,
		sampleBuf: &audio.IntBuffer{
			Format: &audio.Format{NumChannels: channelCount, SampleRate: sampleRate},
		},
	}, nil
}

// WriteWaveform encodes one block of planar audio, converting each
// float32 sample in [-1, 1] to a 32-bit PCM integer.
func (w *Writer) WriteWaveform(block *rtff.Waveform) error {
	frameCount := block.FrameCount()
	data := w.sampleBuf.Data
	if cap(data) < frameCount*w.channelCount {
		data = make([]int, frameCount*w.channelCount)
	}
	data = data[:frameCount*w.channelCount]

	for c := 0; c < w.channelCount; c++ {
		channel := block.Channel(c)
		for f, v := range channel {
			data[f*w.channelCount+c] = int(v * float32(math.MaxInt32))
		}
	}
	w.sampleBuf.Data = data

	return w.encoder.Write(w.sampleBuf)
}

// Close flushes the WAV header and closes the underlying file.
func (w *Writer) Close() error {
	if err := w.encoder.Close(); err != nil {
		return fmt.Errorf("pcmfile: closing encoder: %w", err)
	}
	return w.file.Close()
}

// Reader decodes a WAV file into float32 planar blocks.
type Reader struct {
	file         *os.File
	decoder      *wav.Decoder
	channelCount int
	sampleRate   int
}

// NewReader opens filename and reads its WAV header.
func NewReader(filename string) (*Reader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		file.Close()
		return nil, fmt.Errorf("pcmfile: %s is not a valid WAV file", filename)
	}
	decoder.ReadInfo()
	return &Reader{
		file:         file,
		decoder:      decoder,
		channelCount: int(decoder.NumChans),
		sampleRate:   int(decoder.SampleRate),
	}, nil
}

// ChannelCount returns the number of channels in the WAV file.
func (r *Reader) ChannelCount() int { return r.channelCount }

// SampleRate returns the WAV file's sample rate in Hz.
func (r *Reader) SampleRate() int { return r.sampleRate }

// ReadBlock decodes up to frameCount frames into a freshly allocated
// Waveform. It returns io.EOF once no more frames are available.
func (r *Reader) ReadBlock(frameCount int) (*rtff.Waveform, error) {
	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: r.channelCount, SampleRate: r.sampleRate},
		Data:   make([]int, frameCount*r.channelCount),
	}
	n, err := r.decoder.PCMBuffer(buf)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, io.EOF
	}

	framesRead := n / r.channelCount
	block := rtff.NewWaveform(framesRead, r.channelCount)
	bitDepth := r.decoder.BitDepth
	maxVal := float32(int64(1) << (bitDepth - 1))
	for c := 0; c < r.channelCount; c++ {
		channel := block.Channel(c)
		for f := 0; f < framesRead; f++ {
			channel[f] = float32(buf.Data[f*r.channelCount+c]) / maxVal
		}
	}
	return block, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}
