// SPDX-License-Identifier: MIT
package device

import (
	"testing"

	"github.com/p-hlp/rtff"
	"github.com/p-hlp/rtff/internal/config"
)

func TestNoiseGateHotPath(t *testing.T) {
	buffer := make([]int32, 1024)
	for i := range buffer {
		buffer[i] = int32((i % 100) * 10000000)
	}
	threshold := int32(500000000)

	allocs := testing.AllocsPerRun(100, func() {
		var maxAmplitude int32
		for _, sample := range buffer {
			mask := sample >> 31
			amplitude := (sample ^ mask) - mask
			diff := amplitude - maxAmplitude
			maxAmplitude += (diff & (diff >> 31)) ^ diff
		}
		_ = maxAmplitude > threshold
	})
	if allocs > 0 {
		t.Errorf("expected zero allocations in noise gate hot path, got %.1f", allocs)
	}
}

func TestGateThresholdClamping(t *testing.T) {
	e := &Engine{}
	e.SetGateThreshold(-1)
	if got := e.GetGateThreshold(); got != 0 {
		t.Errorf("SetGateThreshold(-1) -> GetGateThreshold() = %v, want 0", got)
	}
	e.SetGateThreshold(2)
	if got := e.GetGateThreshold(); got != 1 {
		t.Errorf("SetGateThreshold(2) -> GetGateThreshold() = %v, want 1", got)
	}
	e.SetGateThreshold(0.5)
	if got := e.GetGateThreshold(); got < 0.49 || got > 0.51 {
		t.Errorf("SetGateThreshold(0.5) -> GetGateThreshold() = %v, want ~0.5", got)
	}
}

// newTestEngine builds an Engine around a real rtff.Filter without
// touching PortAudio, for exercising processBuffer directly.
func newTestEngine(t *testing.T, channelCount, framesPerBuffer int) *Engine {
	t.Helper()
	filter, err := rtff.NewFilter(
		rtff.WithFFTSize(16),
		rtff.WithOverlap(8),
		rtff.WithBlockSize(framesPerBuffer),
		rtff.WithChannels(channelCount),
	)
	if err != nil {
		t.Fatalf("rtff.NewFilter returned error: %v", err)
	}

	e := &Engine{
		cfg:         &config.Config{Channels: channelCount, FramesPerBuffer: framesPerBuffer},
		filter:      filter,
		inputBuffer: make([]int32, framesPerBuffer*channelCount),
		interleaved: make([]float32, framesPerBuffer*channelCount),
	}
	e.planarIn = make([][]float32, channelCount)
	e.planarOut = make([][]float32, channelCount)
	for c := 0; c < channelCount; c++ {
		e.planarIn[c] = make([]float32, framesPerBuffer)
		e.planarOut[c] = make([]float32, framesPerBuffer)
	}
	return e
}

func TestProcessBufferGateOpenPassesSignalThrough(t *testing.T) {
	e := newTestEngine(t, 1, 4)
	e.gateEnabled = true
	e.gateThreshold = 0
	for i := range e.inputBuffer {
		e.inputBuffer[i] = 1 << 28
	}

	var got ProcessedBlock
	e.OnBlock(func(b ProcessedBlock) { got = b })
	e.processBuffer()

	if got.FrameCount != 4 {
		t.Fatalf("ProcessedBlock.FrameCount = %d, want 4", got.FrameCount)
	}
	if len(got.Interleaved) != 4 {
		t.Fatalf("len(Interleaved) = %d, want 4", len(got.Interleaved))
	}
	for f, v := range e.planarIn[0] {
		if v == 0 {
			t.Errorf("planarIn[0][%d] = 0, want the ungated input sample with gate open", f)
		}
	}
}

func TestProcessBufferGateClosedZeroesInput(t *testing.T) {
	e := newTestEngine(t, 1, 4)
	e.gateEnabled = true
	e.gateThreshold = 1 << 30
	for i := range e.inputBuffer {
		e.inputBuffer[i] = 1 << 10
	}

	e.processBuffer()

	for c := range e.planarIn {
		for f, v := range e.planarIn[c] {
			if v != 0 {
				t.Errorf("planarIn[%d][%d] = %v, want 0 with gate closed", c, f, v)
			}
		}
	}
}
