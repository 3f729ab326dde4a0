// SPDX-License-Identifier: MIT
package pcmfile

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/p-hlp/rtff"
)

func TestWriterThenReaderRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")

	w, err := NewWriter(path, 48000, 1)
	if err != nil {
		t.Fatalf("NewWriter returned error: %v", err)
	}

	block := rtff.NewWaveform(256, 1)
	channel := block.Channel(0)
	for i := range channel {
		channel[i] = float32(math.Sin(2 * math.Pi * 440 * float64(i) / 48000))
	}
	if err := w.WriteWaveform(block); err != nil {
		t.Fatalf("WriteWaveform returned error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader returned error: %v", err)
	}
	defer r.Close()

	if r.ChannelCount() != 1 {
		t.Errorf("ChannelCount() = %d, want 1", r.ChannelCount())
	}
	if r.SampleRate() != 48000 {
		t.Errorf("SampleRate() = %d, want 48000", r.SampleRate())
	}

	got, err := r.ReadBlock(256)
	if err != nil {
		t.Fatalf("ReadBlock returned error: %v", err)
	}
	if got.FrameCount() != 256 {
		t.Fatalf("FrameCount() = %d, want 256", got.FrameCount())
	}
	for i, v := range got.Channel(0) {
		if diff := float64(v - channel[i]); diff > 1e-3 || diff < -1e-3 {
			t.Fatalf("sample %d: got %v, want ~%v", i, v, channel[i])
		}
	}
}
