package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"timelinekit/internal/codec"
	"timelinekit/internal/config"
	"timelinekit/internal/logging"
	"timelinekit/internal/model"
	"timelinekit/internal/sanitize"
	"timelinekit/internal/validate"
)

// Engine applies configured codec and sanitize options.
type Engine struct {
	cfg       *config.Config
	logger    *slog.Logger
	parse     codec.ParseOptions
	serialize codec.SerializeOptions
	repair    sanitize.Options
}

// New builds an engine from cfg. A nil logger discards output.
func New(cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	if cfg == nil {
		return nil, errors.New("engine requires config")
	}
	policy, err := codec.ParseUnknownFieldPolicy(cfg.Codec.UnknownFields)
	if err != nil {
		return nil, fmt.Errorf("codec config: %w", err)
	}
	return &Engine{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "engine"),
		parse:  codec.ParseOptions{UnknownFields: policy},
		serialize: codec.SerializeOptions{
			Precision: codec.Digits(cfg.Codec.Precision),
			Pretty:    cfg.Codec.Pretty,
		},
		repair: sanitize.Options{
			DefaultRate:       cfg.Sanitize.DefaultRate,
			DropZeroLength:    cfg.Sanitize.DropZeroLength,
			MergeAdjacentGaps: cfg.Sanitize.MergeAdjacentGaps,
		},
	}, nil
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Load parses a document.
func (e *Engine) Load(ctx context.Context, data []byte) (*model.Timeline, error) {
	logger := logging.WithContext(ctx, e.logger)
	start := time.Now()
	tl, err := codec.Parse(data, e.parse)
	if err != nil {
		var perr *codec.ParseError
		if errors.As(err, &perr) {
			logger.Debug("parse failed",
				logging.String("path", perr.Path.String()),
				logging.Error(err),
			)
		}
		return nil, err
	}
	logger.Debug("document parsed",
		logging.Int("bytes", len(data)),
		logging.String("unknown_fields", e.parse.UnknownFields.String()),
		logging.Duration("elapsed", time.Since(start)),
	)
	return tl, nil
}

// Check validates tl.
func (e *Engine) Check(ctx context.Context, tl *model.Timeline) []validate.Issue {
	logger := logging.WithContext(ctx, e.logger)
	issues := validate.Timeline(tl)
	if len(issues) == 0 {
		logger.Debug("timeline valid")
		return issues
	}
	logger.Info("timeline has issues", logging.Int("issues", len(issues)))
	for _, issue := range issues {
		logger.Debug("issue",
			logging.String("kind", string(issue.Kind)),
			logging.String("path", issue.Path.String()),
			logging.String("message", issue.Message),
		)
	}
	return issues
}

// RepairOption overrides configured sanitize settings for one call.
type RepairOption func(*sanitize.Options)

// WithDropZeroLength overrides removal of zero-length clips and gaps.
func WithDropZeroLength(drop bool) RepairOption {
	return func(opts *sanitize.Options) {
		opts.DropZeroLength = drop
	}
}

// WithMergeAdjacentGaps overrides merging of neighbouring gaps.
func WithMergeAdjacentGaps(merge bool) RepairOption {
	return func(opts *sanitize.Options) {
		opts.MergeAdjacentGaps = merge
	}
}

// Repair sanitizes tl in place.
func (e *Engine) Repair(ctx context.Context, tl *model.Timeline, opts ...RepairOption) sanitize.Report {
	logger := logging.WithContext(ctx, e.logger)
	repairOpts := e.repair
	for _, opt := range opts {
		opt(&repairOpts)
	}
	report := sanitize.Timeline(tl, repairOpts)
	for _, action := range report.Actions {
		logger.Debug("repair",
			logging.String("action", string(action.Kind)),
			logging.String("path", action.Path.String()),
			logging.String("detail", action.Detail),
		)
	}
	for _, unrecoverable := range report.Errors {
		logger.Warn("unrecoverable",
			logging.String("kind", string(unrecoverable.Kind)),
			logging.String("path", unrecoverable.Path.String()),
			logging.String("message", unrecoverable.Message),
		)
	}
	if report.Changed() {
		logger.Info("timeline repaired", logging.Int("actions", len(report.Actions)))
	}
	return report
}

// EncodeOption overrides configured serialization settings for one call.
type EncodeOption func(*codec.SerializeOptions)

// WithPrecision overrides the output precision; negative means full.
func WithPrecision(digits int) EncodeOption {
	return func(opts *codec.SerializeOptions) {
		opts.Precision = codec.Digits(digits)
	}
}

// WithPretty overrides pretty printing.
func WithPretty(pretty bool) EncodeOption {
	return func(opts *codec.SerializeOptions) {
		opts.Pretty = pretty
	}
}

// Encode serializes tl for writing to a file, with a trailing newline.
func (e *Engine) Encode(ctx context.Context, tl *model.Timeline, opts ...EncodeOption) ([]byte, error) {
	serializeOpts := e.serialize
	for _, opt := range opts {
		opt(&serializeOpts)
	}
	out, err := codec.Serialize(tl, serializeOpts)
	if err != nil {
		return nil, err
	}
	logging.WithContext(ctx, e.logger).Debug("document serialized",
		logging.Int("bytes", len(out)),
		logging.String("precision", serializeOpts.Precision.String()),
		logging.Bool("pretty", serializeOpts.Pretty),
	)
	return append(out, '\n'), nil
}

// Canonical returns the compact serialization at the configured precision.
// Two trees with equal canonical bytes are interchangeable.
func (e *Engine) Canonical(ctx context.Context, tl *model.Timeline) ([]byte, error) {
	out, err := e.Encode(ctx, tl, WithPretty(false))
	if err != nil {
		return nil, err
	}
	return out[:len(out)-1], nil
}

// Precision returns the configured digit count, -1 for full precision.
func (e *Engine) Precision() int {
	return e.cfg.Codec.Precision
}
