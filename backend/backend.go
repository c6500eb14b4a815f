// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// compiled into this binary.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNoInstance is returned when the HAL has no driver for a registered
	// backend at runtime.
	ErrNoInstance = errors.New("backend: hal driver not registered")
)

// Backend names.
const (
	NameVulkan = "vulkan"
	NameDX12   = "dx12"
	NameMetal  = "metal"
	NameGL     = "gl"
	NameNoop   = "noop"
)

// GraphicsBackend is one native graphics API the renderer can run on.
// It is chosen once at startup and only used to create the HAL instance.
type GraphicsBackend interface {
	// Name returns the backend identifier (e.g., "vulkan").
	Name() string

	// Variant returns the gputypes backend tag.
	Variant() gputypes.Backend

	// CreateInstance creates a HAL instance for adapter enumeration.
	CreateInstance() (hal.Instance, error)
}

// halBackend opens a HAL driver registered with hal.GetBackend.
type halBackend struct {
	name    string
	variant gputypes.Backend
}

func (b halBackend) Name() string              { return b.name }
func (b halBackend) Variant() gputypes.Backend { return b.variant }

func (b halBackend) CreateInstance() (hal.Instance, error) {
	driver, ok := hal.GetBackend(b.variant)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoInstance, b.name)
	}
	instance, err := driver.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("backend %s: create instance: %w", b.name, err)
	}
	return instance, nil
}

// noopBackend opens the no-op HAL device.
type noopBackend struct{}

func (noopBackend) Name() string              { return NameNoop }
func (noopBackend) Variant() gputypes.Backend { return gputypes.Backend(0) }

func (noopBackend) CreateInstance() (hal.Instance, error) {
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("backend noop: create instance: %w", err)
	}
	return instance, nil
}

// registerHAL registers a native backend backed by hal.GetBackend.
func registerHAL(name string, variant gputypes.Backend) {
	Register(name, func() GraphicsBackend {
		return halBackend{name: name, variant: variant}
	})
}

func init() {
	Register(NameNoop, func() GraphicsBackend { return noopBackend{} })
}
