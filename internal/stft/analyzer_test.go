// SPDX-License-Identifier: MIT
package stft

import (
	"math"
	"testing"

	"github.com/p-hlp/rtff/internal/window"
)

func TestAnalyzerIdentityReconstructionMono(t *testing.T) {
	const (
		fftSize = 8
		overlap = 4
		hop     = fftSize - overlap
	)
	a, err := NewAnalyzer(fftSize, overlap, window.Hamming, 1)
	if err != nil {
		t.Fatalf("NewAnalyzer returned error: %v", err)
	}
	if a.HopSize() != hop {
		t.Fatalf("HopSize() = %d, want %d", a.HopSize(), hop)
	}

	sampleRate := 48000.0
	total := hop * 40
	signal := make([]float32, total+fftSize)
	for i := range signal {
		signal[i] = float32(math.Sin(2 * math.Pi * 440 * float64(i) / sampleRate))
	}

	spectrum := make([][]complex64, 1)
	spectrum[0] = make([]complex64, a.plan.SpectrumSize())
	timeIn := make([][]float32, 1)
	timeIn[0] = make([]float32, fftSize)
	pcmOut := make([][]float32, 1)
	pcmOut[0] = make([]float32, hop)

	var reconstructed []float32
	for pos := 0; pos+fftSize <= len(signal); pos += hop {
		copy(timeIn[0], signal[pos:pos+fftSize])
		a.Analyze(timeIn, spectrum)
		a.Synthesize(spectrum, pcmOut)
		reconstructed = append(reconstructed, pcmOut[0]...)
	}

	// Skip the first fftSize samples (the first fftSize-hop are incomplete
	// while the overlap-add pipeline fills); after that it should track
	// the original signal closely.
	skip := fftSize
	for i := skip; i < len(reconstructed)-skip; i++ {
		want := signal[i]
		got := reconstructed[i]
		if diff := float64(got - want); diff > 5e-2 || diff < -5e-2 {
			t.Fatalf("sample %d: got %v, want ~%v", i, got, want)
		}
	}
}

func TestAnalyzerChannelIndependence(t *testing.T) {
	const fftSize, overlap = 16, 8
	a, err := NewAnalyzer(fftSize, overlap, window.Hamming, 2)
	if err != nil {
		t.Fatalf("NewAnalyzer returned error: %v", err)
	}

	timeIn := [][]float32{make([]float32, fftSize), make([]float32, fftSize)}
	for i := range timeIn[0] {
		timeIn[0][i] = 1
		timeIn[1][i] = 0
	}
	spectrum := [][]complex64{
		make([]complex64, a.plan.SpectrumSize()),
		make([]complex64, a.plan.SpectrumSize()),
	}
	a.Analyze(timeIn, spectrum)

	for _, c := range spectrum[1] {
		if c != 0 {
			t.Fatalf("expected channel 1 spectrum to stay zero, got %v", c)
		}
	}
}

func TestAnalyzerNoAllocationHotPath(t *testing.T) {
	const fftSize, overlap = 1024, 512
	a, err := NewAnalyzer(fftSize, overlap, window.Hamming, 1)
	if err != nil {
		t.Fatalf("NewAnalyzer returned error: %v", err)
	}
	timeIn := [][]float32{make([]float32, fftSize)}
	spectrum := [][]complex64{make([]complex64, a.plan.SpectrumSize())}
	pcmOut := [][]float32{make([]float32, a.HopSize())}

	// Warm-up.
	a.Analyze(timeIn, spectrum)
	a.Synthesize(spectrum, pcmOut)

	allocs := testing.AllocsPerRun(100, func() {
		a.Analyze(timeIn, spectrum)
		a.Synthesize(spectrum, pcmOut)
	})
	if allocs > 0 {
		t.Errorf("expected zero allocations in Analyze/Synthesize hot path, got %.1f", allocs)
	}
}
