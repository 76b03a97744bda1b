// ABOUTME: YAML configuration for the sound output
// ABOUTME: Loads defaults, user and system config files and saves them back
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Resonate-Protocol/snddma/pkg/audio"
	"github.com/Resonate-Protocol/snddma/pkg/audio/output"
	"github.com/Resonate-Protocol/snddma/pkg/dma"
)

// Config represents the application configuration
type Config struct {
	// Audio device settings
	Audio struct {
		Driver        string `yaml:"driver"`
		KHz           int    `yaml:"khz"`
		BufferSamples int    `yaml:"buffer_samples"`
		PeriodFrames  int    `yaml:"period_frames"`
		TimeCeiling   int64  `yaml:"time_ceiling"`
	} `yaml:"audio"`

	// Mixer settings
	Mixer struct {
		Mixahead float64 `yaml:"mixahead"`
		Volume   int     `yaml:"volume"`
	} `yaml:"mixer"`

	// Telemetry monitor settings
	Monitor struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr"`
		MDNS    bool   `yaml:"mdns"`
	} `yaml:"monitor"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Audio.Driver = "malgo"
	cfg.Audio.KHz = audio.DefaultKHz
	cfg.Audio.BufferSamples = dma.DefaultBufferSamples
	cfg.Audio.PeriodFrames = dma.DefaultFramesPerBuffer
	cfg.Audio.TimeCeiling = dma.DefaultTimeCeiling

	cfg.Mixer.Mixahead = 0.1
	cfg.Mixer.Volume = 100

	cfg.Monitor.Enabled = false
	cfg.Monitor.Addr = ":8928"
	cfg.Monitor.MDNS = false

	return cfg
}

// Validate checks values that would otherwise fail deep inside audio init
func (c *Config) Validate() error {
	known := false
	for _, d := range output.Drivers() {
		if c.Audio.Driver == d {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown audio driver: %q (available: %v)", c.Audio.Driver, output.Drivers())
	}

	switch c.Audio.KHz {
	case 11, 22, 44, 48:
	default:
		return fmt.Errorf("unsupported khz: %d (supported: 11, 22, 44, 48)", c.Audio.KHz)
	}

	n := c.Audio.BufferSamples
	if n <= 0 || n&(n-1) != 0 {
		return fmt.Errorf("buffer_samples must be a positive power of two, got %d", n)
	}
	if c.Audio.PeriodFrames <= 0 {
		return fmt.Errorf("period_frames must be positive, got %d", c.Audio.PeriodFrames)
	}
	if c.Audio.TimeCeiling <= 0 {
		return fmt.Errorf("time_ceiling must be positive, got %d", c.Audio.TimeCeiling)
	}
	if c.Mixer.Mixahead <= 0 {
		return fmt.Errorf("mixahead must be positive, got %v", c.Mixer.Mixahead)
	}
	if c.Mixer.Volume < 0 || c.Mixer.Volume > 100 {
		return fmt.Errorf("volume must be 0-100, got %d", c.Mixer.Volume)
	}
	return nil
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// LoadWithFallback attempts to load configuration from multiple locations
// Priority: explicit path > ~/.snddmarc > /etc/snddma/config.yaml
func LoadWithFallback(explicitPath string) (*Config, error) {
	if explicitPath != "" {
		return Load(explicitPath)
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		userConfigPath := filepath.Join(homeDir, ".snddmarc")
		if _, err := os.Stat(userConfigPath); err == nil {
			cfg, err := Load(userConfigPath)
			if err == nil {
				return cfg, nil
			}
		}
	}

	if _, err := os.Stat(SystemConfigPath); err == nil {
		cfg, err := Load(SystemConfigPath)
		if err == nil {
			return cfg, nil
		}
	}

	// No config file found, return defaults
	return DefaultConfig(), nil
}

// SystemConfigPath is the machine-wide config location
var SystemConfigPath = "/etc/snddma/config.yaml"

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
