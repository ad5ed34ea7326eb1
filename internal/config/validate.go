package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateCodec(); err != nil {
		return err
	}
	if c.Sanitize.DefaultRate <= 0 || math.IsInf(c.Sanitize.DefaultRate, 0) || math.IsNaN(c.Sanitize.DefaultRate) {
		return errors.New("sanitize.default_rate must be a positive number")
	}
	if c.IDs.Namespace == "" {
		return errors.New("ids.namespace must be set")
	}
	if c.Catalog.BusyTimeoutMillis <= 0 {
		return errors.New("catalog.busy_timeout_ms must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn or error", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateCodec() error {
	if c.Codec.Precision < -1 || c.Codec.Precision > maxPrecision {
		return fmt.Errorf("codec.precision must be between -1 and %d", maxPrecision)
	}
	switch c.Codec.UnknownFields {
	case "preserve", "drop", "reject":
	default:
		return fmt.Errorf("codec.unknown_fields %q must be preserve, drop or reject", c.Codec.UnknownFields)
	}
	return nil
}
