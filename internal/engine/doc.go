// Package engine runs the parse, validate, sanitize and serialize steps with
// options taken from configuration, logging each step.
//
// The core packages stay free of I/O and logging; engine is the layer the
// CLI talks to.
package engine
