// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"flightframe/pkg/bitint"
)

// Config represents the main application configuration structure, loaded
// from YAML. Command-line flags override individual fields after loading.
type Config struct {
	Debug     bool            `yaml:"debug"`     // Enable debug mode (verbose logging).
	LogLevel  string          `yaml:"log_level"` // Logging level (e.g., "debug", "info", "warn", "error").
	Align     AlignConfig     `yaml:"align"`     // Frame detection settings.
	Slice     SliceConfig     `yaml:"slice"`     // Slice extraction settings.
	Transport TransportConfig `yaml:"transport"` // Detection result transport settings.
}

// AlignConfig holds settings for sync detection.
type AlignConfig struct {
	ChunkSize    int   `yaml:"chunk_size"`    // Read size for chunked file scanning, in bytes.
	WordsToRead  int   `yaml:"words_to_read"` // Inspection window for the identify command, in 16-bit words.
	WPS          []int `yaml:"wps"`           // Candidate words-per-subframe sizes; empty means the full supported set.
	LittleEndian *bool `yaml:"little_endian"` // Word byte order; nil means little-endian.
}

// SliceConfig holds settings for time-slice extraction.
type SliceConfig struct {
	WordsToRead int `yaml:"words_to_read"` // Inspection window before slicing, in 16-bit words.
	BufferSize  int `yaml:"buffer_size"`   // Copy buffer size, in bytes.
}

// TransportConfig holds settings for publishing detection results while a
// scan runs.
type TransportConfig struct {
	MonitorEnabled   bool   `yaml:"monitor_enabled"`    // Serve results to WebSocket clients.
	MonitorPort      string `yaml:"monitor_port"`       // WebSocket monitor listen port.
	UDPEnabled       bool   `yaml:"udp_enabled"`        // Send results as UDP packets.
	UDPTargetAddress string `yaml:"udp_target_address"` // Target address and port for UDP packets.
}

// LoadConfig loads configuration from a YAML file specified by path. If
// path is empty, it searches default locations ("config.yaml"). If no file
// is found, it uses built-in defaults. After loading it applies environment
// variable overrides and validates the final configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := Config{
		Debug:    false,
		LogLevel: DefaultLogLevel,
		Align: AlignConfig{
			ChunkSize:   DefaultChunkSize,
			WordsToRead: DefaultIdentifyWords,
		},
		Slice: SliceConfig{
			WordsToRead: DefaultSliceWords,
			BufferSize:  DefaultSliceBuffer,
		},
		Transport: TransportConfig{
			MonitorEnabled:   false,
			MonitorPort:      DefaultMonitorPort,
			UDPEnabled:       false,
			UDPTargetAddress: DefaultUDPTargetAddress,
		},
	}

	if path == "" {
		candidates := []string{
			"config.yaml",
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
			return &cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks the loaded configuration for values the detector cannot
// operate with.
func (c *Config) Validate() error {
	if c.Align.ChunkSize < MinChunkSize || c.Align.ChunkSize > MaxChunkSize {
		return fmt.Errorf("align.chunk_size %d outside [%d, %d]", c.Align.ChunkSize, MinChunkSize, MaxChunkSize)
	}
	if c.Align.WordsToRead <= 0 || c.Align.WordsToRead > MaxWindow {
		return fmt.Errorf("align.words_to_read %d outside (0, %d]", c.Align.WordsToRead, MaxWindow)
	}
	prev := 0
	for _, wps := range c.Align.WPS {
		if !bitint.IsPowerOfTwo(wps) {
			return fmt.Errorf("align.wps value %d is not a power of two", wps)
		}
		if wps <= prev {
			return fmt.Errorf("align.wps values must be strictly ascending, got %v", c.Align.WPS)
		}
		prev = wps
	}
	if c.Slice.WordsToRead <= 0 || c.Slice.WordsToRead > MaxWindow {
		return fmt.Errorf("slice.words_to_read %d outside (0, %d]", c.Slice.WordsToRead, MaxWindow)
	}
	if c.Slice.BufferSize <= 0 {
		return fmt.Errorf("slice.buffer_size must be positive, got %d", c.Slice.BufferSize)
	}
	if c.Transport.UDPEnabled && c.Transport.UDPTargetAddress == "" {
		return fmt.Errorf("transport.udp_target_address must be set when UDP is enabled")
	}
	if c.Transport.MonitorEnabled && c.Transport.MonitorPort == "" {
		return fmt.Errorf("transport.monitor_port must be set when the monitor is enabled")
	}
	return nil
}

// applyEnvOverrides applies ENV_* overrides on top of the loaded file.
func (cfg *Config) applyEnvOverrides() {
	// ENV_{...}
	// These are general overrides.

	// ENV_DEBUG
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Debug = bVal
		}
	}
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		cfg.LogLevel = val
	}

	// ENV_UDP_{...} / ENV_MONITOR_{...}
	// These are specific to the transport layer.

	// ENV_UDP_ENABLED
	if val, ok := os.LookupEnv("ENV_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Transport.UDPEnabled = bVal
		}
	}
	// ENV_UDP_TARGET_ADDRESS
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		cfg.Transport.UDPTargetAddress = val
	}
	// ENV_MONITOR_PORT
	if val, ok := os.LookupEnv("ENV_MONITOR_PORT"); ok {
		cfg.Transport.MonitorPort = val
	}
}
