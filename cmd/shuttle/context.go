package main

import (
	"log/slog"
	"os"
	"strings"
	"sync"

	"shuttle/internal/config"
	"shuttle/internal/logging"
	"shuttle/internal/uploader"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	jsonFlag     *bool

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	serviceOnce sync.Once
	service     *uploader.Service
	logger      *slog.Logger
}

func newCommandContext(configFlag, logLevelFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		jsonFlag:     jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureService() (*uploader.Service, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.serviceOnce.Do(func() {
		level := cfg.Logging.Level
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			level = strings.TrimSpace(*c.logLevelFlag)
		}
		format := cfg.Logging.Format
		if c.jsonMode() {
			// Human progress output owns stdout; keep logs machine-shaped
			// on stderr so the two streams stay separable.
			format = "json"
		}
		logger, err := logging.New(logging.Options{Level: level, Format: format, Output: os.Stderr})
		if err != nil {
			logger = logging.NewNop()
		}
		c.logger = logger
		c.service = uploader.New(cfg, logger, nil)
	})
	return c.service, nil
}

func (c *commandContext) jsonMode() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}
