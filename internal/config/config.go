package config

import "time"

// Core configuration constants that define the boundaries and defaults
// for the audio engine's device and STFT settings.
const (
	// Default values for device configuration.
	DefaultChannels        = 1           // Mono audio
	DefaultDeviceID        = MinDeviceID // Default to system default device
	DefaultFormat          = "wav"       // WAV file format for recordings
	DefaultFramesPerBuffer = 512         // Balanced latency/performance
	DefaultLowLatency      = false       // Standard latency mode
	DefaultSampleRate      = 44100       // CD-quality audio
	DefaultOutputFile      = ""          // Auto-generated filename
	DefaultCommand         = ""          // No command by default
	DefaultVerbosity       = false       // Quiet operation

	// Default values for STFT filter configuration.
	DefaultFFTSize    = 2048 // rtff.NewConfig default
	DefaultOverlap    = 1024 // 50% overlap
	DefaultWindowType = "hamming"
	DefaultGain       = 1.0 // unity gain

	// Default values for transport configuration.
	DefaultWebSocketAddr   = ":8080"
	DefaultUDPAddr         = "127.0.0.1:9090"
	DefaultUDPSendInterval = 33 * time.Millisecond // ~30Hz

	// Hardware and processing limits.
	MinDeviceID     = -1     // -1 represents system default device
	MinSampleRate   = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate   = 192000 // Maximum supported sample rate (Hz)
	MaxBufferFrames = 8192   // Maximum frames per buffer (power of 2)

	// Error handling configuration.
	DefaultMaxConsecutiveWriteFailures = 5 // Max failures before stopping
)

// Config holds all runtime configuration options for the audio engine
// and the STFT filter it drives. It is constructed via NewConfig,
// optionally overridden by LoadConfig from a YAML file and environment
// variables, and finally overridden by command line flags.
type Config struct {
	// Audio Device Settings
	Channels        int     `yaml:"channels"`          // Number of audio channels (1=mono, 2=stereo)
	DeviceID        int     `yaml:"device_id"`         // Input device identifier
	Format          string  `yaml:"format"`            // Recording format (wav only for now)
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Buffer size in frames
	LowLatency      bool    `yaml:"low_latency"`       // Use low latency mode
	SampleRate      float64 `yaml:"sample_rate"`       // Sample rate in Hz

	// Recording Options
	RecordInputStream bool   `yaml:"record"`      // Whether to record input
	OutputFile        string `yaml:"output_file"` // Output file path for recordings
	InputFile         string `yaml:"-"`           // Input WAV path for the "process" command

	// Debug Options
	Verbose bool   `yaml:"verbose"` // Enable verbose logging
	Command string `yaml:"-"`       // One-off command to execute
	TUIMode bool   `yaml:"-"`       // Terminal UI mode enabled

	// STFT Filter Settings
	FFTSize    int     `yaml:"fft_size"`    // Transform length in samples
	Overlap    int     `yaml:"overlap"`     // Samples retained between analysis windows
	WindowType string  `yaml:"window_type"` // "hamming" or "hann"
	Gain       float64 `yaml:"gain"`        // Linear gain applied by the demo gain transform

	// Transport Settings
	Transport TransportConfig `yaml:"transport"`
}

// TransportConfig holds settings related to broadcasting spectrum
// snapshots over the network.
type TransportConfig struct {
	StreamSpectrum  bool          `yaml:"stream_spectrum"`  // Broadcast spectrum snapshots
	WebSocketAddr   string        `yaml:"websocket_addr"`   // Address to serve the spectrum WebSocket on
	UDPAddr         string        `yaml:"udp_addr"`         // Address to publish spectrum UDP packets to
	UDPSendInterval time.Duration `yaml:"udp_send_interval"` // Interval between UDP publishes
}

// NewConfig creates a new Config instance with default values.
// This is typically used as the base configuration before
// applying command line arguments or config file settings.
func NewConfig() *Config {
	return &Config{
		Channels:          DefaultChannels,
		DeviceID:          DefaultDeviceID,
		Format:            DefaultFormat,
		FramesPerBuffer:   DefaultFramesPerBuffer,
		LowLatency:        DefaultLowLatency,
		SampleRate:        DefaultSampleRate,
		RecordInputStream: false,
		OutputFile:        DefaultOutputFile,
		Command:           DefaultCommand,
		Verbose:           DefaultVerbosity,
		FFTSize:           DefaultFFTSize,
		Overlap:           DefaultOverlap,
		WindowType:        DefaultWindowType,
		Gain:              DefaultGain,
		Transport: TransportConfig{
			WebSocketAddr:   DefaultWebSocketAddr,
			UDPAddr:         DefaultUDPAddr,
			UDPSendInterval: DefaultUDPSendInterval,
		},
	}
}
