// SPDX-License-Identifier: MIT
package rtff

import (
	"math"
	"testing"
)

func sineBlock(frameCount int, freq, sampleRate float64, phase *float64) []float32 {
	block := make([]float32, frameCount)
	for i := range block {
		block[i] = float32(math.Sin(*phase))
		*phase += 2 * math.Pi * freq / sampleRate
	}
	return block
}

func TestFilterIdentityReconstructionMono(t *testing.T) {
	f, err := NewFilter(WithFFTSize(8), WithOverlap(4), WithBlockSize(4))
	if err != nil {
		t.Fatalf("NewFilter returned error: %v", err)
	}

	var phase float64
	const blocks = 200
	var written, read []float32
	inBlock := [][]float32{nil}
	outBlock := [][]float32{make([]float32, f.BlockSize())}

	for i := 0; i < blocks; i++ {
		s := sineBlock(f.BlockSize(), 440, 48000, &phase)
		written = append(written, s...)
		inBlock[0] = s
		f.Write(inBlock)
		f.Read(outBlock)
		read = append(read, outBlock[0]...)
	}

	latency := f.FrameLatency()
	for i := latency; i < len(written)-latency; i++ {
		diff := float64(read[i] - written[i-latency])
		if diff > 1e-2 || diff < -1e-2 {
			t.Fatalf("sample %d mismatch: got %v, want ~%v", i, read[i], written[i-latency])
		}
	}
}

func TestFilterStereoMismatchedBlock(t *testing.T) {
	f, err := NewFilter(WithFFTSize(16), WithOverlap(12), WithBlockSize(5), WithChannels(2))
	if err != nil {
		t.Fatalf("NewFilter returned error: %v", err)
	}

	var phase0, phase1 float64
	const blocks = 200
	written := [][]float32{nil, nil}
	var read [][]float32 = [][]float32{nil, nil}
	in := [][]float32{make([]float32, 5), make([]float32, 5)}
	out := [][]float32{make([]float32, 5), make([]float32, 5)}

	for i := 0; i < blocks; i++ {
		s0 := sineBlock(5, 440, 48000, &phase0)
		s1 := sineBlock(5, 660, 48000, &phase1)
		written[0] = append(written[0], s0...)
		written[1] = append(written[1], s1...)
		copy(in[0], s0)
		copy(in[1], s1)
		f.Write(in)
		f.Read(out)
		read[0] = append(read[0], out[0]...)
		read[1] = append(read[1], out[1]...)
	}

	latency := f.FrameLatency()
	for c := 0; c < 2; c++ {
		for i := latency; i < len(written[c])-latency; i++ {
			diff := float64(read[c][i] - written[c][i-latency])
			if diff > 1e-5 || diff < -1e-5 {
				t.Fatalf("channel %d sample %d mismatch: got %v, want ~%v", c, i, read[c][i], written[c][i-latency])
			}
		}
	}
}

func TestFilterWriteReadBlockLargerThanFFTSize(t *testing.T) {
	f, err := NewFilter(WithFFTSize(8), WithOverlap(4), WithBlockSize(16))
	if err != nil {
		t.Fatalf("NewFilter returned error: %v", err)
	}

	var phase float64
	const blocks = 50
	var written, read []float32
	in := [][]float32{nil}
	out := [][]float32{make([]float32, f.BlockSize())}

	for i := 0; i < blocks; i++ {
		s := sineBlock(f.BlockSize(), 440, 48000, &phase)
		written = append(written, s...)
		in[0] = s
		f.Write(in)
		f.Read(out)
		read = append(read, out[0]...)
	}

	latency := f.FrameLatency()
	for i := latency; i < len(written)-latency; i++ {
		diff := float64(read[i] - written[i-latency])
		if diff > 1e-2 || diff < -1e-2 {
			t.Fatalf("sample %d mismatch: got %v, want ~%v", i, read[i], written[i-latency])
		}
	}
}

func TestFilterNullTransformProducesSilence(t *testing.T) {
	f, err := NewFilter(WithFFTSize(8), WithOverlap(4), WithBlockSize(4))
	if err != nil {
		t.Fatalf("NewFilter returned error: %v", err)
	}
	f.SetTransform(TransformFunc(func(input, output [][]complex64) {
		for _, out := range output {
			for i := range out {
				out[i] = 0
			}
		}
	}))

	in := [][]float32{make([]float32, 4)}
	out := [][]float32{make([]float32, 4)}
	for i := 0; i < 20; i++ {
		for j := range in[0] {
			in[0][j] = 1
		}
		f.Write(in)
		f.Read(out)
	}
	for i, v := range out[0] {
		if v != 0 {
			t.Errorf("out[%d] = %v, want 0 under the null transform", i, v)
		}
	}
}

func TestFilterGainTransformLinearity(t *testing.T) {
	f1, err := NewFilter(WithFFTSize(16), WithOverlap(8), WithBlockSize(8))
	if err != nil {
		t.Fatalf("NewFilter returned error: %v", err)
	}
	f1.SetTransform(GainTransform(2.0))

	f2, err := NewFilter(WithFFTSize(16), WithOverlap(8), WithBlockSize(8))
	if err != nil {
		t.Fatalf("NewFilter returned error: %v", err)
	}

	in := [][]float32{make([]float32, 8)}
	in2 := [][]float32{make([]float32, 8)}
	out1 := [][]float32{make([]float32, 8)}
	out2 := [][]float32{make([]float32, 8)}

	for i := 0; i < 20; i++ {
		for j := range in[0] {
			in[0][j] = float32(i + j)
			in2[0][j] = in[0][j]
		}
		f1.Write(in)
		f1.Read(out1)
		f2.Write(in2)
		f2.Read(out2)
	}

	for i := range out1[0] {
		want := out2[0][i] * 2
		diff := out1[0][i] - want
		if diff > 1e-2 || diff < -1e-2 {
			t.Errorf("out1[%d] = %v, want ~%v (2x out2)", i, out1[0][i], want)
		}
	}
}

func TestFilterReadUnderflowZeroFills(t *testing.T) {
	f, err := NewFilter(WithFFTSize(8), WithOverlap(4), WithBlockSize(4))
	if err != nil {
		t.Fatalf("NewFilter returned error: %v", err)
	}
	out := [][]float32{make([]float32, 4)}
	for i := range out[0] {
		out[0][i] = 99
	}
	f.Read(out)
	for i, v := range out[0] {
		if v != 0 {
			t.Errorf("out[%d] = %v, want 0 before any data has been written", i, v)
		}
	}
}

func TestFrameLatencyBoundaryCases(t *testing.T) {
	cases := []struct {
		block int
		want  int
	}{
		{4, 4},  // hop(4) % block(4) == 0 -> fftSize(8) - block(4) = 4
		{3, 8},  // hop(4) % block(3) != 0, block < fftSize -> fftSize = 8
		{16, 16}, // block >= fftSize -> block
	}
	for _, c := range cases {
		f, err := NewFilter(WithFFTSize(8), WithOverlap(4), WithBlockSize(c.block))
		if err != nil {
			t.Fatalf("NewFilter(block=%d) returned error: %v", c.block, err)
		}
		if got := f.FrameLatency(); got != c.want {
			t.Errorf("FrameLatency() with block=%d = %d, want %d", c.block, got, c.want)
		}
	}
}

func TestConfigValidation(t *testing.T) {
	cases := []Config{
		{FFTSize: 0, Overlap: 0, BlockSize: 4, InputChannels: []int{1}, OutputChannels: []int{1}},
		{FFTSize: 8, Overlap: 8, BlockSize: 4, InputChannels: []int{1}, OutputChannels: []int{1}},
		{FFTSize: 8, Overlap: 4, BlockSize: 0, InputChannels: []int{1}, OutputChannels: []int{1}},
		{FFTSize: 8, Overlap: 4, BlockSize: 4, InputChannels: nil, OutputChannels: []int{1}},
		{FFTSize: 8, Overlap: 4, BlockSize: 4, InputChannels: []int{0}, OutputChannels: []int{1}},
	}
	for i, c := range cases {
		if _, err := newEngine(c); err == nil {
			t.Errorf("case %d: expected ErrConfigInvalid, got nil", i)
		}
	}
}

func TestEngineHotPathZeroAllocs(t *testing.T) {
	f, err := NewFilter(WithFFTSize(1024), WithOverlap(512), WithBlockSize(256))
	if err != nil {
		t.Fatalf("NewFilter returned error: %v", err)
	}
	in := [][]float32{make([]float32, 256)}
	out := [][]float32{make([]float32, 256)}

	// Warm-up.
	f.Write(in)
	f.Read(out)

	allocs := testing.AllocsPerRun(50, func() {
		f.Write(in)
		f.Read(out)
	})
	if allocs > 0 {
		t.Errorf("expected zero allocations in Filter Write/Read hot path, got %.1f", allocs)
	}
}
