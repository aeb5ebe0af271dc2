package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateGitHub(); err != nil {
		return err
	}
	if err := c.validateWorkers(); err != nil {
		return err
	}
	if c.LLM.RequestTimeout <= 0 {
		return errors.New("llm.request_timeout must be positive")
	}
	if c.Uploads.MaxBytes <= 0 {
		return errors.New("uploads.max_bytes must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "text", "json":
		return nil
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
}

func (c *Config) validateGitHub() error {
	if c.GitHub.MemberLimit <= 0 {
		return errors.New("github.member_limit must be positive")
	}
	if c.GitHub.MemberPageSize <= 0 || c.GitHub.MemberPageSize > 100 {
		return errors.New("github.member_page_size must be between 1 and 100")
	}
	if c.GitHub.RequestsPerSecond < 0 {
		return errors.New("github.requests_per_second must not be negative")
	}
	return nil
}

func (c *Config) validateWorkers() error {
	if c.Workers.Count <= 0 {
		return errors.New("workers.count must be positive")
	}
	if c.Workers.SimulatedDelaySeconds < 0 {
		return errors.New("workers.simulated_delay_seconds must not be negative")
	}
	return nil
}
