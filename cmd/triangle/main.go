// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command triangle renders a single triangle through the render graph on
// the selected graphics backend.
//
// Usage:
//
//	triangle [-backend vulkan|dx12|metal|gl|noop] [-reflect] [-fps N] [-v]
//	triangle -headless [-frames N] [-capture out.png]
//	triangle -config triangle.toml
//
// Closing the window or pressing Escape ends the run and logs the frame
// count, elapsed time and frames per second.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/gogpu/rendergraph"
	"github.com/gogpu/rendergraph/backend"
	"github.com/gogpu/rendergraph/config"
)

func main() {
	cfg, err := config.Parse("triangle", os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fatal(err)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	rendergraph.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	b, err := selectBackend(cfg.Backend)
	if errors.Is(err, backend.ErrBackendNotAvailable) {
		fmt.Fprintf(os.Stderr, "triangle: no usable graphics backend: %v\n", err)
		fmt.Fprintf(os.Stderr, "compiled in: %s\n", strings.Join(backend.Available(), ", "))
		return
	}
	if err != nil {
		fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, b); err != nil {
		stop()
		fatal(err)
	}
}

func selectBackend(name string) (backend.GraphicsBackend, error) {
	if name == "" {
		return backend.Default()
	}
	return backend.Get(strings.ToLower(name))
}

// fatal logs err and exits with status 1. Deferred cleanup does not run;
// the process is abandoned.
func fatal(err error) {
	slog.Error("triangle: fatal", "err", err)
	os.Exit(1)
}
