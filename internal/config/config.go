package config

import (
	"fmt"
	"strings"
)

// KeyBinding runs Command when Key is pressed with Modifiers held.
type KeyBinding struct {
	Modifiers []string `yaml:"modifiers" toml:"modifiers"`
	Key       string   `yaml:"key" toml:"key"`
	Command   string   `yaml:"command" toml:"command"`
}

// ButtonKind selects how a pointer binding is grabbed.
type ButtonKind string

const (
	ButtonClick ButtonKind = "click"
	ButtonDrag  ButtonKind = "drag"
)

// ButtonBinding runs Command when Button is pressed with Modifiers held.
type ButtonBinding struct {
	Modifiers []string   `yaml:"modifiers" toml:"modifiers"`
	Button    int        `yaml:"button" toml:"button"`
	Kind      ButtonKind `yaml:"kind,omitempty" toml:"kind,omitempty"`
	Command   string     `yaml:"command" toml:"command"`
}

// LoggingConfig configures daemon logging.
type LoggingConfig struct {
	// Level controls logging verbosity: debug, info, warn, error
	Level string `yaml:"level,omitempty" toml:"level,omitempty"`
	// File is the log file path; empty logs to stderr
	File string `yaml:"file,omitempty" toml:"file,omitempty"`
	// MaxSizeMB is the maximum log file size before rotation (default: 10)
	MaxSizeMB int `yaml:"max_size_mb,omitempty" toml:"max_size_mb,omitempty"`
	// MaxFiles is the number of rotated files to keep (default: 3)
	MaxFiles int `yaml:"max_files,omitempty" toml:"max_files,omitempty"`
}

// Config is the effective wmkit configuration.
type Config struct {
	Display string `yaml:"display,omitempty" toml:"display,omitempty"`

	// IconDirs are searched in order; the first directory wins.
	IconDirs []string `yaml:"icon_dirs,omitempty" toml:"icon_dirs,omitempty"`
	// IconTheme and IconSize add the XDG theme directories after IconDirs.
	IconTheme        string `yaml:"icon_theme,omitempty" toml:"icon_theme,omitempty"`
	IconSize         int    `yaml:"icon_size,omitempty" toml:"icon_size,omitempty"`
	IconWidth        int    `yaml:"icon_width,omitempty" toml:"icon_width,omitempty"`
	IconHeight       int    `yaml:"icon_height,omitempty" toml:"icon_height,omitempty"`
	SurfaceCacheSize int    `yaml:"surface_cache_size" toml:"surface_cache_size"`
	WatchIcons       bool   `yaml:"watch_icons" toml:"watch_icons"`

	// IgnoreModifiers lists groups of modifiers that must not prevent a
	// binding from firing, e.g. [[lock, Num_Lock], [Num_Lock]].
	IgnoreModifiers [][]string `yaml:"ignore_modifiers" toml:"ignore_modifiers"`

	Keys    []KeyBinding    `yaml:"keys,omitempty" toml:"keys,omitempty"`
	Buttons []ButtonBinding `yaml:"buttons,omitempty" toml:"buttons,omitempty"`

	Logging LoggingConfig `yaml:"logging,omitempty" toml:"logging,omitempty"`
}

const DefaultSurfaceCacheSize = 64

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		IconSize:         24,
		SurfaceCacheSize: DefaultSurfaceCacheSize,
		IgnoreModifiers: [][]string{
			{"lock", "Num_Lock"},
			{"Num_Lock"},
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  3,
		},
	}
}

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(path string, format string, args ...any) error {
	return &ValidationError{Path: path, Err: fmt.Errorf(format, args...)}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.IconSize < 0 {
		return invalid("icon_size", "must be >= 0")
	}
	if c.IconWidth < 0 {
		return invalid("icon_width", "must be >= 0")
	}
	if c.IconHeight < 0 {
		return invalid("icon_height", "must be >= 0")
	}
	if c.SurfaceCacheSize < 0 {
		return invalid("surface_cache_size", "must be >= 0")
	}
	for i, dir := range c.IconDirs {
		if strings.TrimSpace(dir) == "" {
			return invalid(fmt.Sprintf("icon_dirs[%d]", i), "path is empty")
		}
	}
	for i, group := range c.IgnoreModifiers {
		path := fmt.Sprintf("ignore_modifiers[%d]", i)
		if len(group) == 0 {
			return invalid(path, "group is empty")
		}
		if err := validateModifiers(path, group); err != nil {
			return err
		}
	}
	for i, key := range c.Keys {
		path := fmt.Sprintf("keys[%d]", i)
		if strings.TrimSpace(key.Key) == "" {
			return invalid(path+".key", "key is required")
		}
		if strings.TrimSpace(key.Command) == "" {
			return invalid(path+".command", "command is required")
		}
		if err := validateModifiers(path+".modifiers", key.Modifiers); err != nil {
			return err
		}
	}
	for i, btn := range c.Buttons {
		path := fmt.Sprintf("buttons[%d]", i)
		if btn.Button < 1 || btn.Button > 255 {
			return invalid(path+".button", "must be between 1 and 255")
		}
		switch btn.Kind {
		case "", ButtonClick, ButtonDrag:
		default:
			return invalid(path+".kind", "unknown kind %q (want click or drag)", btn.Kind)
		}
		if strings.TrimSpace(btn.Command) == "" {
			return invalid(path+".command", "command is required")
		}
		if err := validateModifiers(path+".modifiers", btn.Modifiers); err != nil {
			return err
		}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return invalid("logging.level", "unknown level %q", c.Logging.Level)
	}
	if c.Logging.MaxSizeMB < 0 {
		return invalid("logging.max_size_mb", "must be >= 0")
	}
	if c.Logging.MaxFiles < 0 {
		return invalid("logging.max_files", "must be >= 0")
	}
	return nil
}

func validateModifiers(path string, mods []string) error {
	for j, mod := range mods {
		if strings.TrimSpace(mod) == "" {
			return invalid(fmt.Sprintf("%s[%d]", path, j), "modifier is empty")
		}
	}
	return nil
}
