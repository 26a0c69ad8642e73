// Package log provides the logging helpers parcel builds on top of the
// standard slog package.
//
// The TrimHandler keeps log lines readable when attributes carry large
// values: progress and pipeline logging can attach paths, headers, and
// error chains of arbitrary length, and an oversized attribute value is
// truncated with an ellipsis marker before the record reaches the
// underlying handler. It wraps any slog.Handler, so it composes with the
// text and JSON handlers alike.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
package log
