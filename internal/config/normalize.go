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
	if err := c.normalizeWorker(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.RawDir) == "" {
		c.Paths.RawDir = filepath.Join(c.Paths.DataDir, defaultRawSubdir)
	}
	if c.Paths.RawDir, err = expandPath(c.Paths.RawDir); err != nil {
		return fmt.Errorf("paths.raw_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.TranscribedDir) == "" {
		c.Paths.TranscribedDir = filepath.Join(c.Paths.DataDir, defaultTransSubdir)
	}
	if c.Paths.TranscribedDir, err = expandPath(c.Paths.TranscribedDir); err != nil {
		return fmt.Errorf("paths.transcribed_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIToken == "" {
		if value, ok := os.LookupEnv("SONGSCRIBE_API_TOKEN"); ok {
			c.Paths.APIToken = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeWorker() error {
	var err error
	if strings.TrimSpace(c.Worker.Dir) == "" {
		if c.Worker.Dir, err = os.Getwd(); err != nil {
			return fmt.Errorf("worker.dir: %w", err)
		}
	}
	if c.Worker.Dir, err = expandPath(c.Worker.Dir); err != nil {
		return fmt.Errorf("worker.dir: %w", err)
	}
	c.Worker.ScriptPath = strings.TrimSpace(c.Worker.ScriptPath)
	if c.Worker.ScriptPath == "" {
		c.Worker.ScriptPath = defaultWorkerScript
	}
	if c.Worker.Runtime = strings.TrimSpace(c.Worker.Runtime); c.Worker.Runtime != "" {
		if c.Worker.Runtime, err = expandPath(c.Worker.Runtime); err != nil {
			return fmt.Errorf("worker.runtime: %w", err)
		}
	}
	expanded := c.Worker.RuntimePaths[:0]
	for _, candidate := range c.Worker.RuntimePaths {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		path, err := expandPath(candidate)
		if err != nil {
			return fmt.Errorf("worker.runtime_paths: %w", err)
		}
		expanded = append(expanded, path)
	}
	c.Worker.RuntimePaths = expanded
	if c.Worker.NodeMajor <= 0 {
		c.Worker.NodeMajor = defaultNodeMajor
	}
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
