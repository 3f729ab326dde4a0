// SPDX-License-Identifier: MIT
package testsignal

import (
	"math"
	"testing"
)

const (
	testSize       = 1024
	testSampleRate = 44100
	testFrequency  = 440.0
)

func TestComplexWave(t *testing.T) {
	result := ComplexWave(testSize, testSampleRate)
	if len(result) != testSize {
		t.Fatalf("ComplexWave() buffer size = %d, want %d", len(result), testSize)
	}

	hasNonZero := false
	for _, v := range result {
		if v != 0 {
			hasNonZero = true
			break
		}
	}
	if !hasNonZero {
		t.Errorf("ComplexWave() produced all zeros")
	}
}

func TestSineWave(t *testing.T) {
	tests := []struct {
		name       string
		size       int
		sampleRate float64
		frequency  float64
	}{
		{"A4 Note", 1024, 44100, 440.0},
		{"Middle C", 1024, 44100, 261.63},
		{"High Sample Rate", 1024, 192000, 440.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SineWave(tt.size, tt.sampleRate, tt.frequency)
			if len(result) != tt.size {
				t.Errorf("SineWave() buffer size = %d, want %d", len(result), tt.size)
			}

			samplesPerCycle := tt.sampleRate / tt.frequency
			if samplesPerCycle > 2 && float64(tt.size) > samplesPerCycle {
				crossCount := 0
				for i := 1; i < tt.size; i++ {
					if (result[i-1] < 0 && result[i] >= 0) ||
						(result[i-1] >= 0 && result[i] < 0) {
						crossCount++
					}
				}

				expectedCrossings := float64(tt.size) / (samplesPerCycle / 2)
				tolerance := 0.2 * expectedCrossings
				if math.Abs(float64(crossCount)-expectedCrossings) > tolerance {
					t.Errorf("SineWave() zero crossings = %d, expected approximately %.1f±%.1f",
						crossCount, expectedCrossings, tolerance)
				}
			}
		})
	}
}

func TestSineWaveF32(t *testing.T) {
	result := SineWaveF32(testSize, testSampleRate, testFrequency)
	if len(result) != testSize {
		t.Fatalf("SineWaveF32() buffer size = %d, want %d", len(result), testSize)
	}
	for _, v := range result {
		if v > 1.0001 || v < -1.0001 {
			t.Fatalf("SineWaveF32() sample out of normalized range: %v", v)
		}
	}
}

func TestPeakBin(t *testing.T) {
	magnitudes := make([]float64, testSize)
	for i := range magnitudes {
		magnitudes[i] = math.Exp(-0.01 * math.Pow(float64(i-testSize/4), 2))
	}

	tests := []struct {
		name     string
		mags     []float64
		start    int
		end      int
		expected int
	}{
		{"Full Range", magnitudes, 0, testSize - 1, testSize / 4},
		{"Partial Range Start", magnitudes, testSize / 8, testSize - 1, testSize / 4},
		{"Partial Range End", magnitudes, 0, testSize / 3, testSize / 4},
		{"Negative Start", magnitudes, -10, testSize - 1, testSize / 4},
		{"Out of Range End", magnitudes, 0, testSize * 2, testSize / 4},
		{"Empty Slice", []float64{}, 0, 10, 0},
		{"Single Value", []float64{1.0}, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PeakBin(tt.mags, tt.start, tt.end)
			if len(tt.mags) == 0 {
				return
			}
			if result != tt.expected {
				t.Errorf("PeakBin() = %d, want %d", result, tt.expected)
			}
		})
	}

	allocs := testing.AllocsPerRun(100, func() {
		PeakBin(magnitudes, 0, len(magnitudes)-1)
	})
	if allocs > 0 {
		t.Errorf("PeakBin allocated memory: got %.1f allocs, want 0", allocs)
	}
}
