// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

import "github.com/gogpu/gpucontext"

// pollErrer is implemented by devices that report the outcome of Poll.
type pollErrer interface {
	Err() error
}

type deviceMaintainer struct {
	provider gpucontext.DeviceProvider
}

// DeviceMaintainer maintains the device of p once per tick by polling it
// without waiting. If the device reports poll failures through an
// Err() error method, a failure ends the loop like any other maintenance
// error.
func DeviceMaintainer(p gpucontext.DeviceProvider) Maintainer {
	return deviceMaintainer{provider: p}
}

// Maintain polls the device.
func (m deviceMaintainer) Maintain() error {
	dev := m.provider.Device()
	dev.Poll(false)
	if e, ok := dev.(pollErrer); ok {
		return e.Err()
	}
	return nil
}
