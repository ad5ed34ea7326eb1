package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"timelinekit/internal/catalog"
	"timelinekit/internal/config"
	"timelinekit/internal/docfile"
	"timelinekit/internal/engine"
	"timelinekit/internal/logging"
	"timelinekit/internal/model"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	engineOnce sync.Once
	engine     *engine.Engine
	engineErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil {
			if level := strings.TrimSpace(*c.logLevelFlag); level != "" {
				cfg.Logging.Level = strings.ToLower(level)
				if err := cfg.Validate(); err != nil {
					c.configErr = err
					return
				}
			}
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureEngine() (*engine.Engine, error) {
	c.engineOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.engineErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.engineErr = fmt.Errorf("init logging: %w", err)
			return
		}
		c.engine, c.engineErr = engine.New(cfg, logger)
	})
	return c.engine, c.engineErr
}

// runContext tags the command's context with the document being processed
// and a per-invocation correlation id.
func (c *commandContext) runContext(cmd *cobra.Command, document string) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if document != "" {
		ctx = logging.WithDocument(ctx, document)
	}
	return logging.WithCorrelationID(ctx, uuid.NewString())
}

// loadDocument reads and parses path ("-" for stdin).
func (c *commandContext) loadDocument(cmd *cobra.Command, path string) (*engine.Engine, *model.Timeline, context.Context, error) {
	eng, err := c.ensureEngine()
	if err != nil {
		return nil, nil, nil, err
	}
	runCtx := c.runContext(cmd, documentLabel(path))
	data, err := docfile.Read(path, cmd.InOrStdin())
	if err != nil {
		return nil, nil, nil, err
	}
	tl, err := eng.Load(runCtx, data)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%s: %w", documentLabel(path), err)
	}
	return eng, tl, runCtx, nil
}

func (c *commandContext) withCatalog(fn func(*catalog.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := catalog.Open(cfg)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func documentLabel(path string) string {
	if path == docfile.Stdio {
		return "<stdin>"
	}
	return filepath.Clean(path)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
