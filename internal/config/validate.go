package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStudio(); err != nil {
		return err
	}
	if err := c.validateMarkers(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateBatch(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStudio() error {
	if c.Studio.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/dubloom/config.toml"
		}
		return fmt.Errorf("studio.api_key is required. Set DUBLOOM_STUDIO_API_KEY env var or edit %s (create with 'dubloom config init')", defaultPath)
	}
	if c.Studio.Token == "" {
		return errors.New("studio.token is required. Set DUBLOOM_STUDIO_TOKEN env var or add it to the config file")
	}
	if c.Studio.PublicBaseURL == "" {
		return errors.New("studio.public_base_url must be set")
	}
	if c.Studio.StudioBaseURL == "" {
		return errors.New("studio.studio_base_url must be set")
	}
	return nil
}

func (c *Config) validateMarkers() error {
	if c.Markers.Ready == "" {
		return errors.New("markers.ready must be set")
	}
	if c.Markers.Exported == "" {
		return errors.New("markers.exported must be set")
	}
	if strings.EqualFold(c.Markers.Ready, c.Markers.Exported) {
		return errors.New("markers.ready and markers.exported must differ")
	}
	return nil
}

func (c *Config) validateRender() error {
	if c.Render.PollInterval < 1 {
		return errors.New("render.poll_interval must be at least 1 second")
	}
	if c.Render.TimeoutSeconds <= c.Render.PollInterval {
		return errors.New("render.timeout_seconds must exceed render.poll_interval")
	}
	return nil
}

func (c *Config) validateBatch() error {
	if c.Batch.Offset < 0 {
		return errors.New("batch.offset must not be negative")
	}
	if c.Batch.Limit < 0 {
		return errors.New("batch.limit must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
	return nil
}
