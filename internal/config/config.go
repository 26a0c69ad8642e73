package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultCompression stores archives uncompressed. Compression is an
	// explicit choice because the right codec depends on the content.
	DefaultCompression = "none"

	// DefaultConcurrency bounds how many archives a batch pack produces at
	// once. Four keeps a typical disk busy without thrashing it.
	DefaultConcurrency = 4

	// DefaultHistoryLimit is how many history rows the history command
	// shows unless overridden.
	DefaultHistoryLimit = 20

	// AppName is the application name used for XDG directory paths.
	AppName = "parcel"
)

// Config holds all configuration options for the parcel CLI.
// It is populated from CLI flags and the optional .parcel file and passed
// through the application via dependency injection rather than global
// state.
type Config struct {
	// Sources are the files to pack, one archive per source.
	Sources []string

	// Destination is the archive path for a single source, or the output
	// directory when packing several sources.
	Destination string

	// Compression names the post-pack codec: "none", "gzip", or "lz4".
	Compression string

	// EntryName renames the packed entry inside the archive. Empty keeps
	// the source file's base name. Only meaningful for a single source.
	EntryName string

	// Concurrency is the number of archives produced at once when packing
	// several sources.
	Concurrency int

	// Verbose enables debug-level log output.
	Verbose bool

	// ConfigFilePath is the path to the configuration file. Empty means
	// search for .parcel in the current directory and then the home
	// directory.
	ConfigFilePath string

	// NoHistory disables recording completed operations in the history
	// database.
	NoHistory bool

	// HistoryDir is the directory holding the history database. Empty
	// means the XDG data directory.
	HistoryDir string

	// HistoryLimit is how many history rows to list.
	HistoryLimit int

	// JSONOutput selects JSON output for inspect and history.
	// Mutually exclusive with MarkdownOutput.
	JSONOutput bool

	// MarkdownOutput selects Markdown output for inspect and history.
	// Mutually exclusive with JSONOutput.
	MarkdownOutput bool

	// OutputFile writes inspect/history output to a file instead of
	// stdout. Empty means stdout.
	OutputFile string
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Compression:  DefaultCompression,
		Concurrency:  DefaultConcurrency,
		HistoryLimit: DefaultHistoryLimit,
		HistoryDir:   XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for parcel, the default home
// of the history database.
// On Linux: ~/.local/share/parcel
// On macOS: ~/Library/Application Support/parcel
// On Windows: %LOCALAPPDATA%\parcel
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for parcel.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks whether the configuration is usable for a pack run.
// It returns the first problem found; fixing one often makes the rest
// irrelevant.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return ErrNoSource
	}
	if c.Destination == "" {
		return ErrNoDestination
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.JSONOutput && c.MarkdownOutput {
		return ErrConflictingOutputFormats
	}
	if c.HistoryLimit <= 0 {
		return ErrInvalidHistoryLimit
	}
	return nil
}
