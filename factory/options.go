// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package factory

import (
	"time"

	"github.com/gogpu/gputypes"
)

// Option configures a Factory.
type Option func(*options)

type options struct {
	adapterName   string
	waitTimeout   time.Duration
	surfaceFormat gputypes.TextureFormat
}

func defaultOptions() options {
	return options{
		waitTimeout:   5 * time.Second,
		surfaceFormat: gputypes.TextureFormatBGRA8Unorm,
	}
}

// WithAdapter selects the first adapter whose name contains name.
// When no adapter matches, the default preference applies: discrete,
// then integrated, then the first enumerated adapter.
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapterName = name
	}
}

// WithWaitTimeout bounds every blocking fence wait. Default is 5s.
func WithWaitTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.waitTimeout = d
		}
	}
}

// WithSurfaceFormat sets the color format used for presentation targets.
// Default is BGRA8Unorm.
func WithSurfaceFormat(f gputypes.TextureFormat) Option {
	return func(o *options) {
		o.surfaceFormat = f
	}
}
