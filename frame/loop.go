// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package frame drives the application's main iteration: it polls window
// events, advances the renderer once per tick, measures throughput and
// disposes the renderer when the loop ends.
package frame

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/rendergraph"
	"github.com/gogpu/rendergraph/window"
)

// ErrAlreadyRun is returned when Run is called on a loop that has already
// finished.
var ErrAlreadyRun = errors.New("frame: loop already run")

// EventSource supplies window events without blocking.
type EventSource interface {
	PollEvents() []window.Event
}

// Maintainer reclaims resources of retired frames. It is called once per
// tick before the renderer runs.
type Maintainer interface {
	Maintain() error
}

// Renderer renders one frame per Run and is disposed once when the loop
// ends normally.
type Renderer interface {
	Run() error
	Dispose() error
}

// Summary is the throughput report produced when the loop ends.
type Summary struct {
	Elapsed time.Duration
	Frames  uint64
	FPS     float64
}

// Throughput returns frames × 1e9 / elapsed nanoseconds, or 0 when no time
// has elapsed.
func Throughput(frames uint64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(frames) * 1e9 / float64(elapsed.Nanoseconds())
}

// Loop owns the main iteration.
type Loop struct {
	events     EventSource
	maintainer Maintainer
	renderer   Renderer

	clock     Clock
	reporter  Reporter
	interval  time.Duration
	maxFrames uint64

	done bool
}

// New creates a loop over the given collaborators.
func New(events EventSource, maintainer Maintainer, renderer Renderer, opts ...Option) *Loop {
	l := &Loop{
		events:     events,
		maintainer: maintainer,
		renderer:   renderer,
		clock:      SystemClock{},
		reporter:   LogReporter{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run iterates until a close request, the Escape key, the frame budget or
// ctx cancellation stops it. It then reports the summary and disposes the
// renderer.
//
// A maintenance or render error aborts the loop immediately and is returned
// without disposing the renderer; the process is expected to exit.
func (l *Loop) Run(ctx context.Context) (Summary, error) {
	if l.done {
		return Summary{}, ErrAlreadyRun
	}
	l.done = true

	log := rendergraph.Logger()
	start := l.clock.Now()
	var frames uint64
	running := true

	for running {
		tick := l.clock.Now()

		for _, ev := range l.events.PollEvents() {
			if window.IsExit(ev) {
				log.Debug("frame: exit event", "event", ev)
				running = false
			}
		}
		if ctx.Err() != nil {
			running = false
		}

		if running {
			if err := l.maintainer.Maintain(); err != nil {
				return l.summary(start, frames), fmt.Errorf("frame %d: maintain: %w", frames, err)
			}
			if err := l.renderer.Run(); err != nil {
				return l.summary(start, frames), fmt.Errorf("frame %d: run: %w", frames, err)
			}
			frames++
			if l.maxFrames > 0 && frames >= l.maxFrames {
				running = false
			}
		}

		if running && l.interval > 0 {
			if rest := l.interval - l.clock.Now().Sub(tick); rest > 0 {
				l.clock.Sleep(rest)
			}
		}
	}

	s := l.summary(start, frames)
	l.reporter.Report(s)

	if err := l.renderer.Dispose(); err != nil {
		return s, fmt.Errorf("frame: dispose: %w", err)
	}
	return s, nil
}

func (l *Loop) summary(start time.Time, frames uint64) Summary {
	elapsed := l.clock.Now().Sub(start)
	return Summary{Elapsed: elapsed, Frames: frames, FPS: Throughput(frames, elapsed)}
}
