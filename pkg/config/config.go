// Package config provides configuration loading and management for
// rtstruct2stl. It handles loading configuration from YAML files and
// provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Pipeline parameters
	Pipeline struct {
		// IsoLevel is the isosurface extraction threshold. The occupancy
		// grid is binary, so the midpoint 0.5 is the natural value.
		IsoLevel float64 `yaml:"isoLevel"`

		// MaxSliceDistance bounds how far (in mm) a contour may sit from
		// the nearest slice before extraction fails. Zero disables the
		// bound and keeps plain nearest-slice assignment.
		MaxSliceDistance float64 `yaml:"maxSliceDistance"`
	} `yaml:"pipeline"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`

		// SaveMaskSlices determines whether the occupancy grid is dumped
		// as per-axis image sequences after extraction
		SaveMaskSlices bool `yaml:"saveMaskSlices"`

		// MaskSlicesDir is the directory the slice images are written to
		MaskSlicesDir string `yaml:"maskSlicesDir"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Pipeline.IsoLevel = 0.5
	cfg.Pipeline.MaxSliceDistance = 0

	cfg.Output.Verbose = true
	cfg.Output.SaveMaskSlices = false
	cfg.Output.MaskSlicesDir = "mask_slices"

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}
