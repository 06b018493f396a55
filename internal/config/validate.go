package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateCast(); err != nil {
		return err
	}
	if err := c.validateExtraction(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.Threshold < 0 || c.Matching.Threshold > 1 {
		return errors.New("matching.threshold must be between 0 and 1")
	}
	for name, weight := range map[string]float64{
		"matching.cast_weight": c.Matching.CastWeight,
		"matching.text_weight": c.Matching.TextWeight,
		"matching.flag_weight": c.Matching.FlagWeight,
	} {
		if weight < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	if c.Matching.CastWeight+c.Matching.TextWeight+c.Matching.FlagWeight <= 0 {
		return errors.New("matching weights must not all be zero")
	}
	return nil
}

func (c *Config) validateCast() error {
	if len(c.Cast.Palette) == 0 {
		return errors.New("cast.palette must contain at least one colour")
	}
	for _, colour := range c.Cast.Palette {
		if strings.TrimSpace(colour) == "" {
			return errors.New("cast.palette entries must not be empty")
		}
	}
	return nil
}

func (c *Config) validateExtraction() error {
	if c.Extraction.TimeoutSeconds < 0 {
		return errors.New("extraction.timeout_seconds must not be negative")
	}
	if c.Extraction.RetryMaxAttempts < 0 {
		return errors.New("extraction.retry_max_attempts must not be negative")
	}
	return nil
}
