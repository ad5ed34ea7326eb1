package codec

import (
	"fmt"

	"timelinekit/internal/model"
)

// ParseError describes why a document could not be decoded.
type ParseError struct {
	Path     model.Path
	Expected string
	Actual   string
	Msg      string
	Err      error
}

func (e *ParseError) Error() string {
	detail := e.Msg
	if e.Expected != "" {
		detail = fmt.Sprintf("expected %s, got %s", e.Expected, e.Actual)
		if e.Msg != "" {
			detail = e.Msg + ": " + detail
		}
	}
	if e.Err != nil {
		if detail == "" {
			detail = e.Err.Error()
		} else {
			detail = detail + ": " + e.Err.Error()
		}
	}
	return fmt.Sprintf("parse %s: %s", e.Path, detail)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func typeMismatch(path model.Path, expected, actual string) *ParseError {
	return &ParseError{Path: path, Expected: expected, Actual: actual}
}

func malformed(path model.Path, format string, args ...any) *ParseError {
	return &ParseError{Path: path, Msg: fmt.Sprintf(format, args...)}
}
