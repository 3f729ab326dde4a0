// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file specified by path. If
// path is empty, it searches default locations ("config.yaml", then
// "rtff.yaml"). If no
// file is found, it uses the built-in defaults from NewConfig. After
// loading defaults or from file, it applies environment variable
// overrides and validates the final configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		candidates := []string{
			"config.yaml",
			"rtff.yaml",
		}
		found := false
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				found = true
				break
			}
		}
		if !found {
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid default configuration: %w", err)
			}
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is internally consistent
// before it is handed to the engine.
func (c *Config) Validate() error {
	if c.SampleRate < MinSampleRate || c.SampleRate > MaxSampleRate {
		return fmt.Errorf("sample_rate %v outside supported range [%d, %d]", c.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if c.Overlap < 0 || c.Overlap >= c.FFTSize {
		return fmt.Errorf("overlap %d must be in [0, fft_size=%d)", c.Overlap, c.FFTSize)
	}
	if c.WindowType != "hamming" && c.WindowType != "hann" {
		return fmt.Errorf("window_type %q must be \"hamming\" or \"hann\"", c.WindowType)
	}
	if c.Transport.StreamSpectrum && c.Transport.UDPSendInterval <= 0 {
		return fmt.Errorf("transport.udp_send_interval must be positive when streaming is enabled")
	}
	return nil
}

// applyEnvOverrides lets a small set of environment variables override
// the loaded configuration, taking precedence over both defaults and
// the YAML file.
func (cfg *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("RTFF_VERBOSE"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Verbose = bVal
		}
	}
	if val, ok := os.LookupEnv("RTFF_GAIN"); ok {
		if fVal, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Gain = fVal
		}
	}
	if val, ok := os.LookupEnv("RTFF_STREAM_SPECTRUM"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Transport.StreamSpectrum = bVal
		}
	}
	if val, ok := os.LookupEnv("RTFF_WEBSOCKET_ADDR"); ok {
		cfg.Transport.WebSocketAddr = val
	}
	if val, ok := os.LookupEnv("RTFF_UDP_ADDR"); ok {
		cfg.Transport.UDPAddr = val
	}
	if val, ok := os.LookupEnv("RTFF_UDP_SEND_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			cfg.Transport.UDPSendInterval = dur
		}
	}
}
