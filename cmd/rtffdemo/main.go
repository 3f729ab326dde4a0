package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/p-hlp/rtff"
	"github.com/p-hlp/rtff/cmd"
	"github.com/p-hlp/rtff/internal/build"
	"github.com/p-hlp/rtff/internal/config"
	"github.com/p-hlp/rtff/internal/device"
	"github.com/p-hlp/rtff/internal/pcmfile"
	"github.com/p-hlp/rtff/internal/transport"
	"github.com/p-hlp/rtff/internal/transport/udp"
	"github.com/p-hlp/rtff/internal/tui"
)

// main is the entry point for the STFT filtering application. The
// program flow is divided into three distinct phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Load YAML/environment configuration, then layer command line flags
//   - Execute one-off commands if requested (list, process, version)
//   - Initialize PortAudio for the live capture path
//
// 2. Concurrent Phase (Hot Path):
//   - Start the capture engine and its input stream
//   - Start recording and spectrum streaming if enabled
//   - Launch the device-picker TUI
//
// 3. Shutdown Phase (Cold Path):
//   - Handle termination signals
//   - Stop recording and streaming if active
//   - Clean up resources
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	if err := build.Initialize(); err != nil {
		log.Fatal(err)
	}

	// One thread for the real-time audio engine, one for UI and I/O.
	runtime.GOMAXPROCS(2)

	loaded, err := config.LoadConfig("")
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := cmd.ParseArgs(loaded)
	if err != nil {
		log.Fatal(err)
	}

	// "list", "process", and "version" are one-off commands; "list" and
	// the live TUI/capture path manage PortAudio's init/terminate pair
	// themselves, since they're the only ones that touch a device.
	if cfg.Command != "" {
		if err := executeCommand(cfg); err != nil {
			log.Fatal(err)
		}
		return
	}

	if !cfg.TUIMode {
		return
	}

	if err := device.Initialize(); err != nil {
		log.Fatal(err)
	}
	defer device.Terminate()

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	engine, err := device.NewEngine(cfg)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.Gain != 1.0 {
		engine.Filter().SetTransform(rtff.GainTransform(float32(cfg.Gain)))
	}

	var recorder *pcmfile.Writer
	var magnitudes *transport.MagnitudeBuffer
	var wsTransport *transport.WebSocketTransport
	var udpPublisher *udp.UDPPublisher
	stopBroadcast := make(chan struct{})

	if cfg.Transport.StreamSpectrum {
		spectrumSize := cfg.FFTSize/2 + 1
		magnitudes = transport.NewMagnitudeBuffer(cfg.Channels, spectrumSize)
		engine.Filter().SetTransform(rtff.TeeTransform(
			rtff.GainTransform(float32(cfg.Gain)),
			func(input [][]complex64) {
				for c, spectrum := range input {
					magnitudes.Update(c, spectrum)
				}
			},
		))

		wsTransport = transport.NewWebSocketTransport(cfg.Transport.WebSocketAddr)

		sender, err := udp.NewUDPSender(cfg.Transport.UDPAddr)
		if err != nil {
			log.Fatal(err)
		}
		udpPublisher, err = udp.NewUDPPublisher(cfg.Transport.UDPSendInterval, sender, magnitudes, 0)
		if err != nil {
			log.Fatal(err)
		}
		udpPublisher.Start()
		go broadcastSpectrum(wsTransport, magnitudes, cfg.Transport.UDPSendInterval, stopBroadcast)
	}

	if cfg.RecordInputStream {
		recorder, err = pcmfile.NewWriter(cfg.OutputFile, int(cfg.SampleRate), cfg.Channels)
		if err != nil {
			log.Fatal(err)
		}
		recordScratch := rtff.NewWaveform(cfg.FramesPerBuffer, cfg.Channels)
		engine.OnBlock(func(block device.ProcessedBlock) {
			recordScratch.FromInterleaved(block.Interleaved)
			if err := recorder.WriteWaveform(recordScratch); err != nil {
				log.Printf("Error writing recorded block: %v", err)
			}
		})
	}

	// CRITICAL: Start of real-time audio processing. The first call to
	// StartInputStream triggers PortAudio to begin calling the callback,
	// marking the start of the hot path.
	if err := engine.StartInputStream(); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("rtff %s listening. Run '%s --help' for usage information.\n",
		build.GetBuildFlags().Version, build.GetBuildFlags().Name)

	tuiDone := make(chan struct{})
	go func() {
		defer close(tuiDone)
		if err := tui.StartDeviceListUI(); err != nil {
			log.Printf("TUI exited with error: %v", err)
		}
	}()

	select {
	case <-done:
	case <-tuiDone:
	}

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	close(stopBroadcast)
	if udpPublisher != nil {
		udpPublisher.Close()
	}
	if wsTransport != nil {
		wsTransport.Close()
	}

	if recorder != nil {
		if err := recorder.Close(); err != nil {
			log.Printf("Error closing recording: %v", err)
		}
		fmt.Printf("\nRecording saved to: %s\n", cfg.OutputFile)
	}

	if err := engine.Close(); err != nil {
		log.Printf("Error closing capture engine: %v", err)
	}
}

// executeCommand handles one-off commands that don't require the
// capture engine to be running.
func executeCommand(cfg *config.Config) error {
	switch cfg.Command {
	case "list":
		return listDevices()
	case "process":
		return processFile(cfg)
	case "version":
		printVersion()
		return nil
	default:
		return fmt.Errorf("unknown command %q", cfg.Command)
	}
}

func listDevices() error {
	devices, err := device.ListDevices()
	if err != nil {
		return err
	}
	for _, d := range devices {
		fmt.Printf("[%d] %s (in:%d out:%d, %.0f Hz)\n",
			d.ID, d.Name, d.MaxInputChannels, d.MaxOutputChannels, d.DefaultSampleRate)
	}
	return nil
}

func printVersion() {
	info := build.GetBuildFlags()
	fmt.Printf("%s %s (commit %s, built %s)\n", info.Name, info.Version, info.Commit, info.Time)
}

// processFile runs the STFT filter over cfg.InputFile, writing the
// result to cfg.OutputFile, one BlockSize-frame block at a time.
func processFile(cfg *config.Config) error {
	reader, err := pcmfile.NewReader(cfg.InputFile)
	if err != nil {
		return err
	}
	defer reader.Close()

	writer, err := pcmfile.NewWriter(cfg.OutputFile, reader.SampleRate(), reader.ChannelCount())
	if err != nil {
		return err
	}
	defer writer.Close()

	filter, err := rtff.NewFilter(
		rtff.WithFFTSize(cfg.FFTSize),
		rtff.WithOverlap(cfg.Overlap),
		rtff.WithBlockSize(cfg.FramesPerBuffer),
		rtff.WithChannels(reader.ChannelCount()),
	)
	if err != nil {
		return err
	}
	if cfg.Gain != 1.0 {
		filter.SetTransform(rtff.GainTransform(float32(cfg.Gain)))
	}

	blockSize := filter.BlockSize()
	outBlock := make([][]float32, reader.ChannelCount())
	for c := range outBlock {
		outBlock[c] = make([]float32, blockSize)
	}

	for {
		in, err := reader.ReadBlock(blockSize)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		block := make([][]float32, reader.ChannelCount())
		for c := range block {
			block[c] = in.Channel(c)
		}
		if in.FrameCount() < blockSize {
			for c := range block {
				padded := make([]float32, blockSize)
				copy(padded, block[c])
				block[c] = padded
			}
		}

		filter.Write(block)
		filter.Read(outBlock)
		if err := writer.WriteWaveform(rtff.NewWaveformFromPlanar(outBlock)); err != nil {
			return err
		}
	}

	// Every block fed in produces a block of output delayed by
	// FrameLatency() frames; feed silence until that delayed tail has
	// been read back out.
	silence := make([][]float32, reader.ChannelCount())
	for c := range silence {
		silence[c] = make([]float32, blockSize)
	}
	for flushed := 0; flushed < filter.FrameLatency(); flushed += blockSize {
		filter.Write(silence)
		filter.Read(outBlock)
		if err := writer.WriteWaveform(rtff.NewWaveformFromPlanar(outBlock)); err != nil {
			return err
		}
	}

	return nil
}

// broadcastSpectrum periodically pushes a SpectrumSnapshot of channel 0
// to every connected WebSocket client, mirroring the cadence of the UDP
// publisher so both transports stay roughly in sync.
func broadcastSpectrum(ws *transport.WebSocketTransport, mags *transport.MagnitudeBuffer, interval time.Duration, done <-chan struct{}) {
	if interval <= 0 {
		interval = 33 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var seq uint32
	for {
		select {
		case <-ticker.C:
			seq++
			ws.Send(transport.SpectrumSnapshot{
				Sequence:   seq,
				Channel:    0,
				Magnitudes: mags.Magnitudes(0),
			})
		case <-done:
			return
		}
	}
}
