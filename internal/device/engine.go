// SPDX-License-Identifier: MIT
package device

import (
	"math"
	"runtime"
	"time"

	"github.com/p-hlp/rtff"
	"github.com/p-hlp/rtff/internal/config"
	"github.com/p-hlp/rtff/internal/window"

	"github.com/gordonklaus/portaudio"
)

// ProcessedBlock carries one block (FramesPerBuffer frames) of filtered,
// interleaved samples out of the engine's audio callback, for recording or further
// processing by the caller.
type ProcessedBlock struct {
	Interleaved []float32
	FrameCount  int
}

// Engine drives an rtff.Filter from a live PortAudio input stream,
// applying a branchless noise gate ahead of the filter exactly as the
// original capture engine gated its FFT analysis.
type Engine struct {
	cfg          *config.Config
	inputDevice  *portaudio.DeviceInfo
	inputLatency time.Duration
	inputStream  *portaudio.Stream

	filter *rtff.Filter

	gateEnabled   bool
	gateThreshold int32

	// Pre-allocated hot-path scratch. inputBuffer holds interleaved
	// int32 samples straight from PortAudio; planarIn/planarOut are the
	// per-channel float32 views the filter operates on.
	inputBuffer []int32
	planarIn    [][]float32
	planarOut   [][]float32
	interleaved []float32

	onBlock func(ProcessedBlock)
}

// NewEngine builds a capture Engine for cfg, looking up (but not yet
// opening) the configured input device and constructing an rtff.Filter
// sized to match cfg's STFT settings.
func NewEngine(cfg *config.Config) (*Engine, error) {
	inputDevice, err := InputDevice(cfg.DeviceID)
	if err != nil {
		return nil, err
	}

	windowType, _ := window.ParseType(cfg.WindowType)
	filter, err := rtff.NewFilter(
		rtff.WithFFTSize(cfg.FFTSize),
		rtff.WithOverlap(cfg.Overlap),
		rtff.WithBlockSize(cfg.FramesPerBuffer),
		rtff.WithChannels(cfg.Channels),
		rtff.WithWindowType(windowType),
	)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:           cfg,
		inputDevice:   inputDevice,
		filter:        filter,
		gateEnabled:   true,
		gateThreshold: 2147483647 / 1000,
		inputBuffer:   make([]int32, cfg.FramesPerBuffer*cfg.Channels),
		interleaved:   make([]float32, cfg.FramesPerBuffer*cfg.Channels),
	}
	e.planarIn = make([][]float32, cfg.Channels)
	e.planarOut = make([][]float32, cfg.Channels)
	for c := 0; c < cfg.Channels; c++ {
		e.planarIn[c] = make([]float32, cfg.FramesPerBuffer)
		e.planarOut[c] = make([]float32, cfg.FramesPerBuffer)
	}

	if cfg.LowLatency {
		e.inputLatency = inputDevice.DefaultLowInputLatency
	} else {
		e.inputLatency = inputDevice.DefaultHighInputLatency
	}
	return e, nil
}

// Filter returns the rtff.Filter the engine drives, so callers can
// install a custom Transform before starting the stream.
func (e *Engine) Filter() *rtff.Filter { return e.filter }

// OnBlock registers a callback invoked with each block's processed,
// interleaved output on the audio callback thread. Implementations must
// not block.
func (e *Engine) OnBlock(fn func(ProcessedBlock)) { e.onBlock = fn }

// EnableGate and DisableGate toggle the noise gate ahead of the filter.
func (e *Engine) EnableGate()  { e.gateEnabled = true }
func (e *Engine) DisableGate() { e.gateEnabled = false }

// SetGateThreshold adjusts the noise gate threshold in the range
// [0.0, 1.0], where 0 means always open and 1 means always closed.
func (e *Engine) SetGateThreshold(threshold float64) {
	if threshold < 0 {
		threshold = 0
	}
	if threshold > 1 {
		threshold = 1
	}
	e.gateThreshold = int32(threshold * float64(math.MaxInt32))
}

// GetGateThreshold returns the current noise gate threshold in
// [0.0, 1.0].
func (e *Engine) GetGateThreshold() float64 {
	return float64(e.gateThreshold) / float64(math.MaxInt32)
}

// StartInputStream opens and starts the PortAudio input stream,
// triggering the real-time hot path.
func (e *Engine) StartInputStream() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: e.cfg.Channels,
			Device:   e.inputDevice,
			Latency:  e.inputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0,
			Device:   nil,
		},
		FramesPerBuffer: e.cfg.FramesPerBuffer,
		SampleRate:      e.cfg.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, e.processInputStream)
	if err != nil {
		return err
	}
	e.inputStream = stream

	if err := e.inputStream.Start(); err != nil {
		e.inputStream.Close()
		return err
	}
	return nil
}

// StopInputStream stops and closes the PortAudio input stream.
func (e *Engine) StopInputStream() error {
	if e.inputStream == nil {
		return nil
	}
	if err := e.inputStream.Stop(); err != nil {
		return err
	}
	if err := e.inputStream.Close(); err != nil {
		return err
	}
	e.inputStream = nil
	return nil
}

// processInputStream is the PortAudio callback. Performance critical:
// runs on a dedicated OS thread, touches only pre-allocated buffers.
func (e *Engine) processInputStream(in []int32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	copy(e.inputBuffer, in)
	e.processBuffer()
}

// processBuffer applies the branchless noise gate, deinterleaves into
// planarIn, drives the filter, and hands the interleaved result to
// onBlock if registered.
func (e *Engine) processBuffer() {
	shouldProcess := true
	if e.gateEnabled {
		var maxAmplitude int32
		for _, sample := range e.inputBuffer {
			mask := sample >> 31
			amplitude := (sample ^ mask) - mask
			diff := amplitude - maxAmplitude
			maxAmplitude += (diff & (diff >> 31)) ^ diff
		}
		shouldProcess = maxAmplitude > e.gateThreshold
	}

	channelCount := e.cfg.Channels
	for c := 0; c < channelCount; c++ {
		channel := e.planarIn[c]
		for f := range channel {
			if shouldProcess {
				channel[f] = float32(e.inputBuffer[f*channelCount+c]) / float32(math.MaxInt32)
			} else {
				channel[f] = 0
			}
		}
	}

	e.filter.Write(e.planarIn)
	e.filter.Read(e.planarOut)

	for c := 0; c < channelCount; c++ {
		channel := e.planarOut[c]
		for f, v := range channel {
			e.interleaved[f*channelCount+c] = v
		}
	}

	if e.onBlock != nil {
		e.onBlock(ProcessedBlock{Interleaved: e.interleaved, FrameCount: e.cfg.FramesPerBuffer})
	}
}

// Close stops the input stream and releases engine resources.
func (e *Engine) Close() error {
	return e.StopInputStream()
}
