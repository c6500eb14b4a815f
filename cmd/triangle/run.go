// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gogpu/rendergraph"
	"github.com/gogpu/rendergraph/backend"
	"github.com/gogpu/rendergraph/config"
	"github.com/gogpu/rendergraph/factory"
	"github.com/gogpu/rendergraph/frame"
	"github.com/gogpu/rendergraph/graph"
	"github.com/gogpu/rendergraph/triangle"
	"github.com/gogpu/rendergraph/window"
	"github.com/gogpu/rendergraph/window/desktop"
)

// aux is the per-application context passed through the graph. The
// triangle needs none.
type aux struct{}

func run(ctx context.Context, cfg config.Config, b backend.GraphicsBackend) error {
	log := rendergraph.Logger()

	fopts := []factory.Option{factory.WithWaitTimeout(time.Duration(cfg.WaitTimeout))}
	if cfg.Adapter != "" {
		fopts = append(fopts, factory.WithAdapter(cfg.Adapter))
	}
	f, err := factory.New(b, fopts...)
	if err != nil {
		return err
	}
	defer f.Close()

	info := f.AdapterInfo()
	log.Info("triangle: device ready", "backend", b.Name(), "adapter", info.Name, "type", info.DeviceType)

	res := triangle.NewResources(cfg.Reflect)

	var (
		target    graph.Target
		events    frame.EventSource
		offscreen *factory.OffscreenTarget
	)
	if cfg.Headless {
		offscreen, err = f.NewOffscreenTarget(uint32(cfg.Window.Width), uint32(cfg.Window.Height)) //nolint:gosec // validated positive
		if err != nil {
			return err
		}
		defer offscreen.Destroy()
		target, events = offscreen, window.NewScripted()
	} else {
		win, err := desktop.Open(desktop.Config{
			Width:  cfg.Window.Width,
			Height: cfg.Window.Height,
			Title:  cfg.Window.Title,
		})
		if err != nil {
			return err
		}
		defer win.Close()

		surface, err := f.CreateSurface(win)
		if err != nil {
			return err
		}
		defer surface.Destroy()
		target, events = surface, win
	}

	g, err := graph.NewBuilder[aux]().
		AddNode(triangle.NewDesc[aux](res)).
		Build(f, target, aux{})
	if err != nil {
		return fmt.Errorf("build graph: %w", err)
	}

	log.Debug("triangle: graph ready", "nodes", g.Nodes())

	// Maintenance runs through the factory's gpucontext device.
	loop := frame.New(events, frame.DeviceMaintainer(f), g.Bind(f, aux{}),
		frame.WithFrameLimit(cfg.FrameLimit),
		frame.WithMaxFrames(cfg.Frames),
	)
	if _, err := loop.Run(ctx); err != nil {
		return err
	}

	if cfg.Capture != "" && offscreen != nil {
		img, err := offscreen.Readback()
		if err != nil {
			return fmt.Errorf("capture: %w", err)
		}
		if err := factory.SaveImage(cfg.Capture, img); err != nil {
			return fmt.Errorf("capture: %w", err)
		}
		log.Info("triangle: frame captured", "path", cfg.Capture)
	}
	return nil
}
