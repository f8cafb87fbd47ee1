// Package config loads and validates scuttle's settings file. Settings
// cover defaults for scans (ports, type, timeout, concurrency, rate
// limit), storage, and logging. Every value can be overridden per scan
// from the command line.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/HueCodes/Scuttle/internal/scanning"
)

// Config represents the complete scuttle configuration.
type Config struct {
	// Scan defaults applied when flags are not given
	Scan ScanConfig `yaml:"scan" json:"scan"`

	// Result storage configuration
	Storage StorageConfig `yaml:"storage" json:"storage"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ScanConfig holds default scan settings.
type ScanConfig struct {
	// Default port specification
	Ports string `yaml:"ports" json:"ports" validate:"required"`

	// Default scan type (connect, syn, udp)
	Type string `yaml:"type" json:"type" validate:"oneof=connect syn udp"`

	// Per-probe timeout
	Timeout time.Duration `yaml:"timeout" json:"timeout" validate:"gt=0"`

	// Maximum simultaneous probes
	Concurrency int `yaml:"concurrency" json:"concurrency" validate:"gt=0,lte=65535"`

	// Probes per second, 0 disables rate limiting
	RateLimit int `yaml:"rate_limit" json:"rate_limit" validate:"gte=0"`

	// Grab banners from open TCP ports
	Banners bool `yaml:"banners" json:"banners"`

	// Network interface for raw packet scans, empty means auto-select
	Interface string `yaml:"interface" json:"interface"`

	// Include closed ports in results
	ShowClosed bool `yaml:"show_closed" json:"show_closed"`
}

// StorageConfig holds result storage settings.
type StorageConfig struct {
	// Base directory for scan history, empty means ~/.scuttle
	Dir string `yaml:"dir" json:"dir"`

	// Skip saving scan results
	Disabled bool `yaml:"disabled" json:"disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Log level (debug, info, warn, error)
	Level string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`

	// Log format (text, json)
	Format string `yaml:"format" json:"format" validate:"oneof=text json"`

	// Log output (stdout, stderr, file path)
	Output string `yaml:"output" json:"output"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			Ports:       "1-1000",
			Type:        scanning.TypeConnect.Key(),
			Timeout:     scanning.DefaultTimeout,
			Concurrency: scanning.DefaultConcurrency,
			RateLimit:   0,
			Banners:     false,
			Interface:   "",
			ShowClosed:  false,
		},
		Storage: StorageConfig{
			Dir:      "",
			Disabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "scuttle.yaml"
	}
	return filepath.Join(home, ".scuttle", "config.yaml")
}

// Load loads configuration from a file, layered over defaults. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	config := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Save writes the configuration to a file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("field %s failed %s validation", fe.Namespace(), fe.Tag())
		}
		return err
	}

	if _, err := scanning.ParseType(c.Scan.Type); err != nil {
		return fmt.Errorf("invalid default scan type: %s", c.Scan.Type)
	}

	return nil
}
