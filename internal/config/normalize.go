package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeStudio()
	c.normalizeMarkers()
	if err := c.normalizeBatch(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStudio() {
	if key, ok := os.LookupEnv("DUBLOOM_STUDIO_API_KEY"); ok && strings.TrimSpace(key) != "" {
		c.Studio.APIKey = key
	}
	if token, ok := os.LookupEnv("DUBLOOM_STUDIO_TOKEN"); ok && strings.TrimSpace(token) != "" {
		c.Studio.Token = token
	}
	c.Studio.APIKey = strings.TrimSpace(c.Studio.APIKey)
	c.Studio.Token = strings.TrimSpace(c.Studio.Token)
	c.Studio.PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.Studio.PublicBaseURL), "/")
	c.Studio.StudioBaseURL = strings.TrimRight(strings.TrimSpace(c.Studio.StudioBaseURL), "/")
	if c.Studio.RequestTimeout <= 0 {
		c.Studio.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) normalizeMarkers() {
	c.Markers.Ready = strings.TrimSpace(c.Markers.Ready)
	if c.Markers.Ready == "" {
		c.Markers.Ready = defaultReadyMarker
	}
	c.Markers.Exported = strings.TrimSpace(c.Markers.Exported)
	if c.Markers.Exported == "" {
		c.Markers.Exported = defaultExportedMarker
	}
}

func (c *Config) normalizeBatch() error {
	c.Batch.ListPath = strings.TrimSpace(c.Batch.ListPath)
	if c.Batch.ListPath == "" {
		c.Batch.ListPath = filepath.Join(c.Paths.DataDir, "dubbings.json")
		return nil
	}
	expanded, err := expandPath(c.Batch.ListPath)
	if err != nil {
		return fmt.Errorf("batch.list_path: %w", err)
	}
	c.Batch.ListPath = expanded
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
