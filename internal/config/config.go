// Package config loads and validates docsnap configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alunbr/go-docsnap/internal/fileutil"
	"github.com/alunbr/go-docsnap/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
)

// Field length limits. Oversized values are rejected rather than truncated.
const (
	MaxEmailLength     = 254 // RFC 5321
	MaxPasscodeLength  = 128
	MaxUserAgentLength = 512
	MaxDirLength       = 2048
)

// Viewport bounds mirror the capture engine's limits.
const (
	MinViewportDim = 320
	MaxViewportDim = 4096
)

// Config holds all configuration for document capture.
type Config struct {
	Browser     BrowserConfig     `yaml:"browser"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Output      OutputConfig      `yaml:"output"`
}

// BrowserConfig defines browser session options.
type BrowserConfig struct {
	ViewportWidth  int    `yaml:"viewportWidth"`  // pixels (default: 1280)
	ViewportHeight int    `yaml:"viewportHeight"` // pixels (default: 800)
	UserAgent      string `yaml:"userAgent"`      // empty = built-in desktop Chrome UA
	NoSandbox      bool   `yaml:"noSandbox"`      // required in most containers
	TimeoutSeconds int    `yaml:"timeoutSeconds"` // per-conversion budget (default: 180)
	Workers        int    `yaml:"workers"`        // 0 = auto from GOMAXPROCS
}

// CredentialsConfig defines default gate credentials. Per-request credentials
// (flags, inline trigger text) take precedence.
type CredentialsConfig struct {
	Email    string `yaml:"email"`
	Passcode string `yaml:"passcode"`
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // empty = current directory
}

// Validate checks field lengths and value ranges.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("credentials.email", c.Credentials.Email, MaxEmailLength); err != nil {
		return err
	}
	if err := validateFieldLength("credentials.passcode", c.Credentials.Passcode, MaxPasscodeLength); err != nil {
		return err
	}
	if err := validateFieldLength("browser.userAgent", c.Browser.UserAgent, MaxUserAgentLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxDirLength); err != nil {
		return err
	}

	if err := validateViewportDim("browser.viewportWidth", c.Browser.ViewportWidth); err != nil {
		return err
	}
	if err := validateViewportDim("browser.viewportHeight", c.Browser.ViewportHeight); err != nil {
		return err
	}

	if c.Browser.TimeoutSeconds < 0 {
		return fmt.Errorf("browser.timeoutSeconds: must not be negative, got %d", c.Browser.TimeoutSeconds)
	}
	if c.Browser.Workers < 0 {
		return fmt.Errorf("browser.workers: must not be negative, got %d", c.Browser.Workers)
	}

	return nil
}

func validateViewportDim(fieldName string, v int) error {
	if v == 0 {
		return nil // zero means use the default
	}
	if v < MinViewportDim || v > MaxViewportDim {
		return fmt.Errorf("%s: must be between %d and %d, got %d",
			fieldName, MinViewportDim, MaxViewportDim, v)
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns a neutral configuration; zero values defer to the
// capture engine's own defaults.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-docsnap/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-docsnap", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
