package testsupport

import (
	"path/filepath"
	"testing"

	"timelinekit/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with a unique temp data directory per
// test. It applies any provided options after the defaults.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.CatalogPath = filepath.Join(cfgVal.Paths.DataDir, "catalog.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithPrecision sets the output precision on the test config.
func WithPrecision(digits int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Codec.Precision = digits
	}
}

// WithUnknownFields sets the unknown-field policy on the test config.
func WithUnknownFields(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Codec.UnknownFields = policy
	}
}

// WithCompactOutput disables pretty printing.
func WithCompactOutput() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Codec.Pretty = false
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}

// WithTrackCleanup enables the optional zero-length and gap-merge passes.
func WithTrackCleanup() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sanitize.DropZeroLength = true
		b.cfg.Sanitize.MergeAdjacentGaps = true
	}
}
