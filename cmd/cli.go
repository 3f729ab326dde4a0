package cmd

import (
	"os"
	"time"

	"github.com/p-hlp/rtff/internal/build"
	"github.com/p-hlp/rtff/internal/config"

	"github.com/spf13/cobra"
)

// ParseArgs parses command line flags into a config.Config, layering
// them on top of base (a config already populated by defaults and any
// loaded YAML/environment settings). If base is nil, it starts from
// config.NewConfig().
func ParseArgs(base *config.Config) (*config.Config, error) {
	buildInfo := build.GetBuildFlags()
	options := base
	if options == nil {
		options = config.NewConfig()
	}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         "Real-time STFT audio filtering engine",
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			options.TUIMode = true
			return nil
		},
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = "list"
			options.TUIMode = false
		},
	}
	rootCmd.AddCommand(listCmd)

	// Process command
	processCmd := &cobra.Command{
		Use:   "process [input.wav] [output.wav]",
		Short: "Run the STFT filter over a WAV file",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = "process"
			options.TUIMode = false
			options.InputFile = args[0]
			options.OutputFile = args[1]
		},
	}
	rootCmd.AddCommand(processCmd)

	// Version command
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = "version"
			options.TUIMode = false
		},
	}
	rootCmd.AddCommand(versionCmd)

	// Audio Device Configuration
	rootCmd.PersistentFlags().IntVarP(&options.DeviceID, "device", "d", options.DeviceID,
		"Specify input device ID. Use 'list' command to see available devices.")
	rootCmd.PersistentFlags().IntVarP(&options.Channels, "channels", "c", options.Channels,
		"Number of channels to record (1=mono, 2=stereo)")
	rootCmd.PersistentFlags().Float64VarP(&options.SampleRate, "sample-rate", "s", options.SampleRate,
		"Sample rate, measured in Hertz (Hz)")

	rootCmd.PersistentFlags().IntVarP(&options.FramesPerBuffer, "frames-per-buffer", "b", options.FramesPerBuffer,
		"The number of frames per buffer (affects latency)")
	rootCmd.PersistentFlags().BoolVarP(&options.LowLatency, "low-latency", "l", options.LowLatency,
		"Use low latency mode for real-time processing")

	// STFT Filter Configuration
	rootCmd.PersistentFlags().IntVar(&options.FFTSize, "fft-size", options.FFTSize,
		"STFT transform size in samples (must be a power of two)")
	rootCmd.PersistentFlags().IntVar(&options.Overlap, "overlap", options.Overlap,
		"Samples of the analysis window retained between hops")
	rootCmd.PersistentFlags().StringVar(&options.WindowType, "window", options.WindowType,
		"Analysis/synthesis window: hamming or hann")
	rootCmd.PersistentFlags().Float64Var(&options.Gain, "gain", options.Gain,
		"Linear gain applied by the demo gain transform")

	// Recording Configuration
	rootCmd.PersistentFlags().BoolVarP(&options.RecordInputStream, "record", "r", options.RecordInputStream,
		"Record audio from the specified input device")
	rootCmd.PersistentFlags().StringVarP(&options.OutputFile, "output", "o", options.OutputFile,
		"Output file name. Default is recording-MM-DD-YYYY-HHMMSS.wav")

	// Spectrum Transport Configuration
	rootCmd.PersistentFlags().BoolVar(&options.Transport.StreamSpectrum, "stream-spectrum", options.Transport.StreamSpectrum,
		"Broadcast live spectrum magnitudes over WebSocket and UDP")
	rootCmd.PersistentFlags().StringVar(&options.Transport.WebSocketAddr, "websocket-addr", options.Transport.WebSocketAddr,
		"Address to serve the spectrum WebSocket on")
	rootCmd.PersistentFlags().StringVar(&options.Transport.UDPAddr, "udp-addr", options.Transport.UDPAddr,
		"Address to publish spectrum UDP packets to")

	// Debug Configuration
	rootCmd.PersistentFlags().BoolVarP(&options.Verbose, "verbose", "v", options.Verbose,
		"Show verbose output")

	// Defaults
	if options.OutputFile == "" {
		options.OutputFile = "recording-" +
			time.Now().UTC().Format("01-02-2006-150405") +
			"." + options.Format
	}

	// Execute the CLI
	rootCmd.SetArgs(os.Args[1:])
	err := rootCmd.Execute()
	if err != nil {
		return nil, err
	}

	return options, nil
}
