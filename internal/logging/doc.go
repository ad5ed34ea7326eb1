// Package logging assembles the structured slog loggers used by timelinekit.
//
// It owns the console and JSON handlers, level parsing, and output routing,
// and exposes helpers that tag log lines with a component name or the
// document being processed. A no-op logger is provided for tests and for
// callers that pass no logger at all.
//
// Logs go to stderr by default so command output on stdout stays clean.
package logging
