// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package config holds the triangle program's startup options. Options are
// read from an optional TOML file and then overridden by command line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// DefaultHeadlessFrames is the frame budget of a headless run that sets
// none.
const DefaultHeadlessFrames = 3

// Validation errors.
var (
	// ErrInvalidSize is returned for a non-positive window size.
	ErrInvalidSize = errors.New("config: window size must be positive")

	// ErrInvalidWaitTimeout is returned for a non-positive wait timeout.
	ErrInvalidWaitTimeout = errors.New("config: wait timeout must be positive")

	// ErrInvalidFrameLimit is returned for a negative frame limit.
	ErrInvalidFrameLimit = errors.New("config: frame limit must not be negative")

	// ErrCaptureNeedsHeadless is returned when a capture path is given
	// without headless mode.
	ErrCaptureNeedsHeadless = errors.New("config: capture requires headless mode")

	// ErrCaptureFormat is returned for a capture path that is not .png or
	// .bmp.
	ErrCaptureFormat = errors.New("config: capture must be a .png or .bmp file")
)

// DefaultWaitTimeout bounds every blocking GPU wait unless configured.
const DefaultWaitTimeout = 5 * time.Second

// Duration is a time.Duration written as a string such as "5s" or
// "250ms" in TOML and on the command line.
type Duration time.Duration

// String returns the duration in time.Duration notation.
func (d Duration) String() string { return time.Duration(d).String() }

// Set parses s with time.ParseDuration.
func (d *Duration) Set(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(b []byte) error { return d.Set(string(b)) }

// Window holds window options.
type Window struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
}

// Config is the complete set of startup options.
type Config struct {
	// Backend names the graphics backend: vulkan, dx12, metal, gl or noop.
	// Empty selects the platform default.
	Backend string `toml:"backend"`

	// Adapter prefers the adapter whose name contains this string.
	Adapter string `toml:"adapter"`

	// Headless renders offscreen without opening a window.
	Headless bool `toml:"headless"`

	// Frames stops the loop after this many frames. Zero runs until the
	// window is closed.
	Frames uint64 `toml:"frames"`

	// FrameLimit caps frames per second. Zero is unlimited.
	FrameLimit int `toml:"frame_limit"`

	// WaitTimeout bounds every blocking wait on GPU work.
	WaitTimeout Duration `toml:"wait_timeout"`

	// Capture writes the last headless frame to this image file.
	Capture string `toml:"capture"`

	// Reflect derives the vertex layout from the compiled vertex shader.
	Reflect bool `toml:"reflect"`

	// Verbose enables debug logging.
	Verbose bool `toml:"verbose"`

	Window Window `toml:"window"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		WaitTimeout: Duration(DefaultWaitTimeout),
		Window:      Window{Width: 800, Height: 600, Title: "triangle"},
	}
}

// Validate reports the first invalid option.
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, c.Window.Width, c.Window.Height)
	}
	if c.WaitTimeout <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidWaitTimeout, c.WaitTimeout)
	}
	if c.FrameLimit < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidFrameLimit, c.FrameLimit)
	}
	if c.Capture != "" {
		if !c.Headless {
			return ErrCaptureNeedsHeadless
		}
		switch strings.ToLower(filepath.Ext(c.Capture)) {
		case ".png", ".bmp":
		default:
			return fmt.Errorf("%w: %q", ErrCaptureFormat, c.Capture)
		}
	}
	return nil
}

// Read decodes TOML from r over cfg. Unknown keys are an error.
func Read(r io.Reader, cfg *Config) error {
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("config: %s", strict.String())
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Load reads the TOML file at path over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	f, err := os.Open(path) //nolint:gosec // path comes from the -config flag
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	if err := Read(f, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse builds the configuration from command line arguments. When -config
// names a file, the file is loaded first and flags given on the command line
// override its values. Help output and flag errors go to output.
func Parse(name string, args []string, output io.Writer) (Config, error) {
	cfg := Default()
	var path string
	fs := newFlagSet(name, &cfg, &path)
	fs.SetOutput(output)
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if path != "" {
		fileCfg, err := Load(path)
		if err != nil {
			return cfg, err
		}
		override := newFlagSet(name, &fileCfg, new(string))
		fs.Visit(func(f *flag.Flag) {
			if err == nil {
				err = override.Set(f.Name, f.Value.String())
			}
		})
		if err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		cfg = fileCfg
	}

	if cfg.Headless && cfg.Frames == 0 {
		cfg.Frames = DefaultHeadlessFrames
	}
	return cfg, cfg.Validate()
}

func newFlagSet(name string, cfg *Config, path *string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(path, "config", "", "TOML configuration file")
	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "graphics backend: vulkan, dx12, metal, gl or noop")
	fs.StringVar(&cfg.Adapter, "adapter", cfg.Adapter, "prefer the adapter whose name contains this string")
	fs.BoolVar(&cfg.Headless, "headless", cfg.Headless, "render offscreen without a window")
	fs.Uint64Var(&cfg.Frames, "frames", cfg.Frames, "stop after this many frames (0 = until closed)")
	fs.Var(&cfg.WaitTimeout, "wait-timeout", "bound on every blocking GPU wait, e.g. 5s")
	fs.IntVar(&cfg.FrameLimit, "fps", cfg.FrameLimit, "frame rate cap (0 = unlimited)")
	fs.StringVar(&cfg.Capture, "capture", cfg.Capture, "write the last headless frame to a .png or .bmp file")
	fs.BoolVar(&cfg.Reflect, "reflect", cfg.Reflect, "derive the vertex layout from the vertex shader")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "verbose logging")
	fs.IntVar(&cfg.Window.Width, "width", cfg.Window.Width, "window width")
	fs.IntVar(&cfg.Window.Height, "height", cfg.Window.Height, "window height")
	fs.StringVar(&cfg.Window.Title, "title", cfg.Window.Title, "window title")
	return fs
}
