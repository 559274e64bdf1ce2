package config

import (
	"errors"
	"fmt"
)

// Validate checks semantic constraints after normalization.
func (c *Config) Validate() error {
	var problems []error

	if c.Uploader.Binary == "" {
		problems = append(problems, errors.New("uploader.binary is required"))
	}
	if c.Uploader.DeadlineSeconds <= 0 {
		problems = append(problems, errors.New("uploader.deadline_seconds must be positive"))
	}
	if c.Transfer.ChunkSizeMiB <= 0 {
		problems = append(problems, errors.New("transfer.chunk_size_mib must be positive"))
	}
	if c.Progress.TickMillis <= 0 {
		problems = append(problems, errors.New("progress.tick_ms must be positive"))
	}
	if c.Progress.Smoothing <= 0 || c.Progress.Smoothing >= 1 {
		problems = append(problems, fmt.Errorf("progress.smoothing must be in (0,1), got %g", c.Progress.Smoothing))
	}
	if c.Progress.Margin <= 0 || c.Progress.Margin >= 1 {
		problems = append(problems, fmt.Errorf("progress.margin must be in (0,1), got %g", c.Progress.Margin))
	}
	if c.Progress.IdleTimeoutSeconds <= 0 {
		problems = append(problems, errors.New("progress.idle_timeout_seconds must be positive"))
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("config validation: %w", errors.Join(problems...))
	}
	return nil
}
