package config

import (
	"errors"
	"fmt"
)

// Configuration validation errors returned by Config.Validate.
//
// Design decision: package-level sentinel errors so callers can use
// errors.Is for programmatic handling while the messages stay
// human-readable. errors.New rather than fmt.Errorf because these carry
// no dynamic values.
var (
	// ErrNoSource is returned when no source file is specified.
	ErrNoSource = errors.New("no source specified: provide at least one file to pack")

	// ErrNoDestination is returned when no destination can be determined
	// for a pack operation.
	ErrNoDestination = errors.New("no destination specified: provide an archive path or output directory")

	// ErrInvalidConcurrency is returned when the batch concurrency is not
	// positive. Zero concurrency would mean no jobs run at all.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrConflictingOutputFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used at a time.
	ErrConflictingOutputFormats = errors.New("conflicting output formats: --json and --markdown cannot be used together")

	// ErrInvalidHistoryLimit is returned when the history listing limit is
	// not positive.
	ErrInvalidHistoryLimit = errors.New("invalid history limit: must be positive")
)

// UnsupportedKeyError reports a configuration-file key that parcel
// deliberately does not support. The message names both the key and the
// value it carried so the offending line is easy to find.
type UnsupportedKeyError struct {
	// Key is the rejected key.
	Key string

	// Value is the value the key carried, as decoded.
	Value any
}

// Error implements the error interface.
func (e *UnsupportedKeyError) Error() string {
	return fmt.Sprintf("unsupported option %q (value %v): parcel packs exactly one file per archive and does not support entry selection, filtering, or path stripping", e.Key, e.Value)
}
