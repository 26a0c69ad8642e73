package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".parcel"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// disallowedKeys are configuration keys parcel deliberately rejects.
// They belong to multi-entry archivers: parcel packs exactly one file per
// archive, so entry selection, filtering, and path stripping have no
// meaning here. Rejecting them by name keeps a copied-over tar-tool config
// from being silently half-honored.
var disallowedKeys = []string{"entries", "ignore", "filter", "strip"}

// FileDefaults holds the defaults section of the .parcel file.
type FileDefaults struct {
	// Compression is the default codec name.
	Compression string `yaml:"compression,omitempty"`

	// Concurrency is the default batch concurrency.
	Concurrency int `yaml:"concurrency,omitempty"`

	// HistoryDir overrides the history database directory.
	HistoryDir string `yaml:"historyDir,omitempty"`

	// History disables history recording when false. Nil means enabled.
	History *bool `yaml:"history,omitempty"`
}

// File represents the structure of the .parcel configuration file.
type File struct {
	// Defaults are applied before CLI flags; flags win.
	Defaults FileDefaults `yaml:"defaults,omitempty"`
}

// LoadConfigFile loads defaults from a YAML file. Unknown keys fail the
// load; the keys parcel deliberately does not support fail it with an
// UnsupportedKeyError naming the key and its value. If the file does not
// exist, ErrConfigNotFound is returned.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	// Check for disallowed keys before strict decoding so they produce
	// the specific rejection message rather than a generic unknown-field
	// error. Both the top level and the defaults section are checked.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if err := rejectDisallowed(raw); err != nil {
		return nil, err
	}
	if defaults, ok := raw["defaults"].(map[string]any); ok {
		if err := rejectDisallowed(defaults); err != nil {
			return nil, err
		}
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var cf File
	if err := dec.Decode(&cf); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return &cf, nil
}

// rejectDisallowed returns an UnsupportedKeyError for the first disallowed
// key present in the record.
func rejectDisallowed(record map[string]any) error {
	for _, key := range disallowedKeys {
		if value, ok := record[key]; ok {
			return &UnsupportedKeyError{Key: key, Value: value}
		}
	}
	return nil
}

// Apply overlays the file's defaults onto cfg. Values already set by CLI
// flags are the caller's responsibility; Apply only fills fields that
// still hold their zero or default value.
func (cf *File) Apply(cfg *Config) {
	if cf.Defaults.Compression != "" && cfg.Compression == DefaultCompression {
		cfg.Compression = cf.Defaults.Compression
	}
	if cf.Defaults.Concurrency > 0 && cfg.Concurrency == DefaultConcurrency {
		cfg.Concurrency = cf.Defaults.Concurrency
	}
	if cf.Defaults.HistoryDir != "" && cfg.HistoryDir == XDGDataDir() {
		cfg.HistoryDir = cf.Defaults.HistoryDir
	}
	if cf.Defaults.History != nil && !*cf.Defaults.History {
		cfg.NoHistory = true
	}
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .parcel in the current directory
// 3. Look for .parcel in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if
// not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
