package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"callsheet/internal/breakdown"
	"callsheet/internal/config"
	"callsheet/internal/logging"
	"callsheet/internal/pipeline"
	"callsheet/internal/services/extract"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// withStore opens the breakdown database under the single-editor lock so two
// callsheet processes never write concurrently.
func (c *commandContext) withStore(fn func(cfg *config.Config, store *breakdown.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return errors.New("another callsheet process is using the breakdown; try again")
	}
	defer func() { _ = lock.Unlock() }()

	store, err := breakdown.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(cfg, store)
}

func (c *commandContext) newController(cfg *config.Config, store *breakdown.Store) (*pipeline.Controller, error) {
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	client := extract.NewClient(extract.Config{
		APIKey:         cfg.Extraction.APIKey,
		BaseURL:        cfg.Extraction.BaseURL,
		Model:          cfg.Extraction.Model,
		TimeoutSeconds: cfg.Extraction.TimeoutSeconds,
	}, extract.WithRetryMaxAttempts(cfg.Extraction.RetryMaxAttempts))
	return pipeline.New(store, client, logger), nil
}

// resolveScheduleID interprets a schedule argument: a numeric id or the word
// "latest".
func resolveScheduleID(ctx context.Context, store *breakdown.Store, arg string) (int64, error) {
	arg = strings.TrimSpace(strings.ToLower(arg))
	if arg == "" || arg == "latest" {
		schedule, err := store.LatestSchedule(ctx)
		if err != nil {
			return 0, err
		}
		if schedule == nil {
			return 0, errors.New("no schedules uploaded yet")
		}
		return schedule.ID, nil
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid schedule id %q", arg)
	}
	return id, nil
}
