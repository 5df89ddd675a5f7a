/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the wubitab configuration
type Config struct {
	SourceDir string    `yaml:"source_dir"`
	BinaryDir string    `yaml:"binary_dir"`
	OutputDir string    `yaml:"output_dir"`
	StoreDir  string    `yaml:"store_dir"`
	Header    Header    `yaml:"header"`
	Versions  []Version `yaml:"versions"`
	Server    Server    `yaml:"server"`
	Logging   Logging   `yaml:"logging"`
}

// Header describes the opaque blob in front of shortcut and fullcode tables.
// Size is the number of bytes to skip when decoding; File, when set, holds a
// raw blob written in front of encoded tables that have no sidecar.
type Header struct {
	File string `yaml:"file"`
	Size int    `yaml:"size"`
}

// Version names one scheme revision, e.g. 06 for "新世纪五笔".
type Version struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Server contains the lookup API listener configuration
type Server struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		SourceDir: "./csv",
		BinaryDir: "./dat",
		OutputDir: "./out",
		StoreDir:  "./data",
		Versions: []Version{
			{ID: "06", Name: "新世纪五笔"},
			{ID: "86", Name: "86-18030"},
			{ID: "98", Name: "98五笔"},
		},
		Server: Server{
			Bind: "127.0.0.1",
			Port: 8080,
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Validate checks the values LoadConfig cannot check through YAML alone
func (c *Config) Validate() error {
	var errs []error
	if c.SourceDir == "" {
		errs = append(errs, errors.New("source_dir is empty"))
	}
	if c.Header.Size < 0 {
		errs = append(errs, fmt.Errorf("header.size %d is negative", c.Header.Size))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	switch c.Logging.Level {
	case "", "error", "info", "debug":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is not one of error, info, debug", c.Logging.Level))
	}
	seen := make(map[string]bool)
	for _, v := range c.Versions {
		if v.ID == "" {
			errs = append(errs, errors.New("version with empty id"))
			continue
		}
		if seen[v.ID] {
			errs = append(errs, fmt.Errorf("version %q listed twice", v.ID))
		}
		seen[v.ID] = true
	}
	return errors.Join(errs...)
}

// Version returns the named version entry
func (c *Config) Version(id string) (Version, bool) {
	for _, v := range c.Versions {
		if v.ID == id {
			return v, true
		}
	}
	return Version{}, false
}

// HeaderBlob returns the fallback header blob. Without a header file it is
// Size zero bytes.
func (c *Config) HeaderBlob() ([]byte, error) {
	if c.Header.File == "" {
		return make([]byte, c.Header.Size), nil
	}
	data, err := os.ReadFile(c.Header.File)
	if err != nil {
		return nil, fmt.Errorf("failed to read header file: %w", err)
	}
	if c.Header.Size != 0 && len(data) != c.Header.Size {
		return nil, fmt.Errorf("header file %s has %d bytes, expected %d", c.Header.File, len(data), c.Header.Size)
	}
	return data, nil
}

// LoadConfig loads configuration from the specified path
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	config.Versions = nil
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if len(config.Versions) == 0 {
		config.Versions = DefaultConfig().Versions
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// BootstrapConfig writes a default configuration rooted at baseDir
func BootstrapConfig(configPath string, baseDir string) (*Config, error) {
	config := DefaultConfig()
	if baseDir != "" {
		config.SourceDir = filepath.Join(baseDir, "csv")
		config.BinaryDir = filepath.Join(baseDir, "dat")
		config.OutputDir = filepath.Join(baseDir, "out")
		config.StoreDir = filepath.Join(baseDir, "data")
	}

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./wubitab.yaml"
	}

	// For Linux/macOS, use ~/.config/wubitab/config.yaml
	configDir := filepath.Join(homeDir, ".config", "wubitab")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
