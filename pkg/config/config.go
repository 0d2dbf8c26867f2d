// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/user/asciiplay/pkg/player"
	"github.com/user/asciiplay/pkg/ports"
	"github.com/user/asciiplay/pkg/stages/glyph"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned by Validate for unusable values.
var ErrInvalid = errors.New("config: invalid value")

// ColorModeAuto picks the richest palette the display supports.
const ColorModeAuto = "auto"

// Config represents the full configuration for asciiplay.
type Config struct {
	// Grid (0 = ask the display)
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`

	// Rendering
	Ramp       string `yaml:"ramp"`
	CustomRamp string `yaml:"custom_ramp"`
	ColorMode  string `yaml:"color_mode"`

	// Timing
	DefaultIntervalMs int  `yaml:"default_interval_ms"`
	Pacing            bool `yaml:"pacing"`
	MaxDurationMs     int  `yaml:"max_duration_ms"`

	// Decoding
	FFmpegPath string `yaml:"ffmpeg_path"`

	// Display
	AssumeColors int  `yaml:"assume_colors"`
	Plain        bool `yaml:"plain"`

	// Observability
	LogLevel    string `yaml:"log_level"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Ramp:              "short",
		ColorMode:         ColorModeAuto,
		DefaultIntervalMs: 33,
		Pacing:            true,
		LogLevel:          "warn",
	}
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks value ranges and names.
func (c Config) Validate() error {
	if c.Rows < 0 || c.Cols < 0 {
		return fmt.Errorf("%w: grid %dx%d", ErrInvalid, c.Rows, c.Cols)
	}
	if c.DefaultIntervalMs < 0 {
		return fmt.Errorf("%w: default_interval_ms %d", ErrInvalid, c.DefaultIntervalMs)
	}
	if c.MaxDurationMs < 0 {
		return fmt.Errorf("%w: max_duration_ms %d", ErrInvalid, c.MaxDurationMs)
	}
	if c.AssumeColors < 0 {
		return fmt.Errorf("%w: assume_colors %d", ErrInvalid, c.AssumeColors)
	}
	switch ports.PaletteMode(c.ColorMode) {
	case ColorModeAuto, ports.PaletteCube, ports.PaletteBase8, ports.PaletteMono:
	default:
		return fmt.Errorf("%w: color_mode %q", ErrInvalid, c.ColorMode)
	}
	if _, err := c.BuildRamp(); err != nil {
		return err
	}
	if _, ok := ports.ParseLogLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	return nil
}

// ResolveColorMode replaces the auto colour mode with cube, base8 or mono
// for a display offering colors colours. Explicit modes are kept.
func (c Config) ResolveColorMode(colors int) Config {
	if c.ColorMode != ColorModeAuto {
		return c
	}
	switch {
	case colors >= 256:
		c.ColorMode = string(ports.PaletteCube)
	case colors >= 8:
		c.ColorMode = string(ports.PaletteBase8)
	default:
		c.ColorMode = string(ports.PaletteMono)
	}
	return c
}

// BuildRamp returns the custom ramp when set, the named ramp otherwise.
func (c Config) BuildRamp() (*glyph.Ramp, error) {
	if c.CustomRamp != "" {
		return glyph.NewRamp(c.CustomRamp)
	}
	r, err := glyph.Named(c.Ramp)
	if err != nil {
		return nil, fmt.Errorf("%w: ramp %q", ErrInvalid, c.Ramp)
	}
	return r, nil
}

// ToPlayerOptions converts Config to player.Options. An unresolved auto
// colour mode becomes cube.
func (c Config) ToPlayerOptions() (player.Options, error) {
	c = c.ResolveColorMode(256)
	ramp, err := c.BuildRamp()
	if err != nil {
		return player.Options{}, err
	}
	return player.Options{
		Rows:            c.Rows,
		Cols:            c.Cols,
		ColorMode:       ports.PaletteMode(c.ColorMode),
		Ramp:            ramp,
		Pacing:          c.Pacing,
		DefaultInterval: time.Duration(c.DefaultIntervalMs) * time.Millisecond,
		MaxDuration:     time.Duration(c.MaxDurationMs) * time.Millisecond,
	}, nil
}
