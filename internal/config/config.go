// Package config holds the mount configuration and its startup checks.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dendrascience/jsonfs/internal/logging"
	"github.com/dendrascience/jsonfs/util"
)

const (
	DefaultDebounce    = 100 * time.Millisecond
	DefaultAttrTimeout = time.Second

	EnvLogLevel = "JSONFS_LOG_LEVEL"
	EnvLogFile  = "JSONFS_LOG_FILE"
)

var (
	ErrMountContainsDocument = errors.New("mountpoint contains the document")
	ErrLogInsideMount        = errors.New("log file is inside the mountpoint")
	ErrNegativeDuration      = errors.New("duration must not be negative")
)

// Config describes one mount.
type Config struct {
	Document   string
	Mountpoint string

	Watch       bool
	Debounce    time.Duration
	AttrTimeout time.Duration
	AllowOther  bool
	FSName      string

	LogLevel string
	LogFile  string
	LogJSON  bool
}

// Default returns a Config with every optional field at its default.
func Default() Config {
	return Config{
		Debounce:    DefaultDebounce,
		AttrTimeout: DefaultAttrTimeout,
		LogLevel:    "info",
	}
}

// ApplyEnv fills logging settings from the environment where the command
// line left them unset. getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string, levelSet, fileSet bool) {
	if env := getenv(EnvLogLevel); env != "" && !levelSet {
		c.LogLevel = env
	}
	if env := getenv(EnvLogFile); env != "" && !fileSet {
		c.LogFile = env
	}
}

// Validate resolves paths to absolute form and checks that the mount can
// start: the document is a regular file, the mountpoint a directory that
// does not contain the document.
func (c *Config) Validate() error {
	if c.Debounce < 0 || c.AttrTimeout < 0 {
		return ErrNegativeDuration
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	var err error
	if c.Document, err = filepath.Abs(c.Document); err != nil {
		return err
	}
	if c.Mountpoint, err = filepath.Abs(c.Mountpoint); err != nil {
		return err
	}

	if err := util.RequireRegularFile(c.Document); err != nil {
		return fmt.Errorf("document: %w", err)
	}
	if err := util.RequireDirectory(c.Mountpoint); err != nil {
		return fmt.Errorf("mountpoint: %w", err)
	}
	if pathsOverlap(c.Mountpoint, c.Document) {
		return fmt.Errorf("%s: %w", c.Mountpoint, ErrMountContainsDocument)
	}

	if c.LogFile != "" {
		if c.LogFile, err = filepath.Abs(c.LogFile); err != nil {
			return err
		}
		if pathsOverlap(c.Mountpoint, c.LogFile) {
			return fmt.Errorf("%s: %w", c.LogFile, ErrLogInsideMount)
		}
	}

	if c.FSName == "" {
		c.FSName = filepath.Base(c.Document)
	}
	return nil
}

// LoggerOptions returns the logging options the config selects.
func (c *Config) LoggerOptions() (logging.Options, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return logging.Options{}, err
	}
	return logging.Options{
		Name:  "jsonfs",
		Level: level,
		File:  c.LogFile,
		JSON:  c.LogJSON,
	}, nil
}

// pathsOverlap reports whether one path is the other or lies beneath it.
func pathsOverlap(path1, path2 string) bool {
	abs1, err1 := filepath.Abs(path1)
	abs2, err2 := filepath.Abs(path2)
	if err1 != nil || err2 != nil {
		return false
	}
	return within(abs1, abs2) || within(abs2, abs1)
}

func within(parent, child string) bool {
	if parent == child {
		return true
	}
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}
