// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

import (
	"log/slog"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/rendergraph"
)

// Reporter receives the summary when the loop ends.
type Reporter interface {
	Report(s Summary)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Summary)

// Report calls f(s).
func (f ReporterFunc) Report(s Summary) { f(s) }

// LogReporter logs the summary at info level. A nil Logger uses the
// package logger from rendergraph.Logger.
type LogReporter struct {
	Logger *slog.Logger
}

var printer = message.NewPrinter(language.English)

// Report logs s with a human readable message and structured attributes.
func (r LogReporter) Report(s Summary) {
	log := r.Logger
	if log == nil {
		log = rendergraph.Logger()
	}
	log.Info(Format(s),
		slog.Duration("elapsed", s.Elapsed),
		slog.Uint64("frames", s.Frames),
		slog.Float64("fps", s.FPS),
	)
}

// Format renders s as "Elapsed: 1.5s. Frames: 1,234. FPS: 822.667".
func Format(s Summary) string {
	return printer.Sprintf("Elapsed: %v. Frames: %d. FPS: %.3f", s.Elapsed, s.Frames, s.FPS)
}
