package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Uploader contains settings for the external uploader CLI.
type Uploader struct {
	Binary          string `toml:"binary"`
	DeadlineSeconds int    `toml:"deadline_seconds"`
}

// Transfer contains upload transfer settings.
type Transfer struct {
	ChunkSizeMiB int `toml:"chunk_size_mib"`
}

// Progress contains display interpolation tuning.
type Progress struct {
	TickMillis         int     `toml:"tick_ms"`
	Smoothing          float64 `toml:"smoothing"`
	Margin             float64 `toml:"margin"`
	IdleTimeoutSeconds int     `toml:"idle_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Paths contains filesystem locations Shuttle owns.
type Paths struct {
	LockFile string `toml:"lock_file"`
}

// Config encapsulates all configuration values for Shuttle.
type Config struct {
	Uploader Uploader `toml:"uploader"`
	Transfer Transfer `toml:"transfer"`
	Progress Progress `toml:"progress"`
	Logging  Logging  `toml:"logging"`
	Paths    Paths    `toml:"paths"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/shuttle/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The second return is
// the resolved path, the third whether a file existed there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("shuttle.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	c.Uploader.Binary = strings.TrimSpace(c.Uploader.Binary)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	if strings.TrimSpace(c.Paths.LockFile) != "" {
		expanded, err := expandPath(c.Paths.LockFile)
		if err != nil {
			return err
		}
		c.Paths.LockFile = expanded
	}
	return nil
}

// Deadline returns the single-shot operation deadline.
func (c *Config) Deadline() time.Duration {
	return time.Duration(c.Uploader.DeadlineSeconds) * time.Second
}

// ChunkSize returns the transfer chunk size in bytes.
func (c *Config) ChunkSize() int64 {
	return int64(c.Transfer.ChunkSizeMiB) * 1024 * 1024
}

// TickInterval returns the display update cadence.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Progress.TickMillis) * time.Millisecond
}

// IdleTimeout returns the stale-estimate cutoff.
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.Progress.IdleTimeoutSeconds) * time.Second
}

// EnsureDirectories creates directories Shuttle writes into.
func (c *Config) EnsureDirectories() error {
	if c.Paths.LockFile == "" {
		return nil
	}
	dir := filepath.Dir(c.Paths.LockFile)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create lock directory %q: %w", dir, err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
