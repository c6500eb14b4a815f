// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

import "time"

// Option configures a Loop.
type Option func(*Loop)

// WithFrameLimit caps the loop at fps ticks per second. Zero or less means
// unlimited.
func WithFrameLimit(fps int) Option {
	return func(l *Loop) {
		if fps > 0 {
			l.interval = time.Second / time.Duration(fps)
		} else {
			l.interval = 0
		}
	}
}

// WithMaxFrames stops the loop after n rendered frames. Zero means no
// limit.
func WithMaxFrames(n uint64) Option {
	return func(l *Loop) {
		l.maxFrames = n
	}
}

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(l *Loop) {
		if c != nil {
			l.clock = c
		}
	}
}

// WithReporter sets where the summary is sent.
func WithReporter(r Reporter) Option {
	return func(l *Loop) {
		if r != nil {
			l.reporter = r
		}
	}
}
