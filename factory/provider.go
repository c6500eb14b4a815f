// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package factory

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/rendergraph"
)

// Factory implements gpucontext.DeviceProvider so it can be shared with
// other gogpu libraries that render into the same device.
var _ gpucontext.DeviceProvider = (*Factory)(nil)

// deviceHandle adapts the factory to gpucontext.Device.
type deviceHandle struct {
	f *Factory
}

// Poll reclaims completed work. With wait it blocks until the device is
// idle first. The outcome is kept for Err.
func (d deviceHandle) Poll(wait bool) {
	var err error
	if wait {
		err = d.f.WaitIdle()
	} else {
		err = d.f.Maintain()
	}
	d.f.pollErr = err
	if err != nil {
		rendergraph.Logger().Warn("factory: poll", "wait", wait, "err", err)
	}
}

// Err returns the error of the last Poll, nil if it succeeded.
func (d deviceHandle) Err() error { return d.f.pollErr }

// Destroy closes the owning factory.
func (d deviceHandle) Destroy() { d.f.Close() }

// Device returns the device handle for gpucontext consumers.
func (f *Factory) Device() gpucontext.Device { return deviceHandle{f: f} }

// Queue returns the HAL queue as a gpucontext.Queue.
func (f *Factory) Queue() gpucontext.Queue { return f.queue }

// Adapter returns the HAL adapter as a gpucontext.Adapter.
func (f *Factory) Adapter() gpucontext.Adapter { return f.adapter }

// SurfaceFormat returns the color format used for presentation targets.
func (f *Factory) SurfaceFormat() gputypes.TextureFormat { return f.opts.surfaceFormat }

// HalDevice returns the HAL device for consumers that type-assert
// HalDevice() any / HalQueue() any.
func (f *Factory) HalDevice() any { return f.device }

// HalQueue returns the HAL queue, see HalDevice.
func (f *Factory) HalQueue() any { return f.queue }
