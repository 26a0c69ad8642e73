package archive

import (
	"errors"
	"fmt"
)

// Validation errors returned synchronously by New, before any I/O starts.
// They are package-level sentinels so callers can use errors.Is while the
// wrapped form still names the offending value.
var (
	// ErrEmptySourcePath is returned when the source path is empty.
	ErrEmptySourcePath = errors.New("empty source path: source must be a non-empty file path")

	// ErrEmptyDestinationPath is returned when the destination path is empty.
	ErrEmptyDestinationPath = errors.New("empty destination path: destination must be a non-empty file path")

	// ErrSamePath is returned when source and destination resolve to the
	// same absolute path.
	ErrSamePath = errors.New("source and destination resolve to the same path")

	// ErrAlreadySubscribed is returned through the observer when Subscribe
	// is called on an operation that already has a subscriber. An operation
	// supports exactly one subscription over its lifetime.
	ErrAlreadySubscribed = errors.New("operation already subscribed: an operation supports exactly one subscription")
)

// SourceKindError reports a source path that exists but is not a regular
// file. Kind names what was actually found (directory, symbolic link, ...).
type SourceKindError struct {
	// Path is the resolved absolute source path.
	Path string

	// Kind is the detected file kind.
	Kind string
}

// Error implements the error interface.
func (e *SourceKindError) Error() string {
	return fmt.Sprintf("source %s is a %s, not a regular file", e.Path, e.Kind)
}

// HookError reports a rewrite hook that returned an unusable value.
// The packer surfaces exactly one HookError per offending hook invocation
// so the pipeline terminates with a single descriptive failure instead of
// an opaque downstream one.
type HookError struct {
	// Hook identifies the offending hook: "header" or "stream".
	Hook string

	// Entry is the archive entry name the hook was invoked for.
	Entry string
}

// Error implements the error interface.
func (e *HookError) Error() string {
	switch e.Hook {
	case "stream":
		return fmt.Sprintf("stream rewrite hook returned nil for entry %q: the hook must return a readable stream", e.Entry)
	default:
		return fmt.Sprintf("header rewrite hook returned nil for entry %q: the hook must return a header", e.Entry)
	}
}
