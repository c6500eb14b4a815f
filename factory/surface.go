// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package factory

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendergraph"
)

// ErrNoFrame is returned by Present when no frame was acquired.
var ErrNoFrame = errors.New("factory: no acquired frame")

// NativeWindow is a platform window a surface can be created for.
type NativeWindow interface {
	// NativeHandles returns the display connection and window handle.
	// The display handle is zero on platforms that have none.
	NativeHandles() (display, window uintptr)

	// FramebufferSize returns the drawable size in pixels.
	FramebufferSize() (width, height int)
}

// WindowSurface presents frames to a native window through a HAL surface
// configured once for FIFO presentation. Resizing is not supported.
type WindowSurface struct {
	f       *Factory
	surface hal.Surface
	format  gputypes.TextureFormat
	width   uint32
	height  uint32

	acquired hal.SurfaceTexture
	view     hal.TextureView
}

// CreateSurface creates and configures a presentation surface for win.
func (f *Factory) CreateSurface(win NativeWindow) (*WindowSurface, error) {
	if f.closed {
		return nil, ErrClosed
	}
	w, h := win.FramebufferSize()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("factory: surface %dx%d: %w", w, h, ErrZeroSize)
	}

	display, window := win.NativeHandles()
	surface, err := f.instance.CreateSurface(display, window)
	if err != nil {
		return nil, fmt.Errorf("factory: create surface: %w", err)
	}

	s := &WindowSurface{
		f:       f,
		surface: surface,
		format:  f.opts.surfaceFormat,
		width:   uint32(w), //nolint:gosec // checked positive above
		height:  uint32(h), //nolint:gosec // checked positive above
	}
	err = surface.Configure(f.device, &hal.SurfaceConfiguration{
		Width:       s.width,
		Height:      s.height,
		Format:      s.format,
		Usage:       gputypes.TextureUsageRenderAttachment,
		PresentMode: hal.PresentModeFifo,
		AlphaMode:   hal.CompositeAlphaModeOpaque,
	})
	if err != nil {
		surface.Destroy()
		return nil, fmt.Errorf("factory: configure surface: %w", err)
	}

	rendergraph.Logger().Info("factory: surface configured",
		"width", s.width, "height", s.height, "format", s.format)
	return s, nil
}

// Format returns the configured surface format.
func (s *WindowSurface) Format() gputypes.TextureFormat { return s.format }

// Extent returns the configured surface size in pixels.
func (s *WindowSurface) Extent() (width, height uint32) { return s.width, s.height }

// Acquire acquires the next swapchain image and returns a view of it.
func (s *WindowSurface) Acquire() (hal.TextureView, error) {
	if s.surface == nil {
		return nil, ErrTargetDestroyed
	}
	if s.acquired != nil {
		s.release()
	}

	acq, err := s.surface.AcquireTexture(nil)
	if err != nil {
		return nil, fmt.Errorf("factory: acquire surface texture: %w", err)
	}
	if acq.Suboptimal {
		rendergraph.Logger().Warn("factory: surface is suboptimal")
	}

	view, err := s.f.device.CreateTextureView(acq.Texture, &hal.TextureViewDescriptor{
		Label: "surface_view",
	})
	if err != nil {
		s.surface.DiscardTexture(acq.Texture)
		return nil, fmt.Errorf("factory: create surface view: %w", err)
	}
	s.acquired = acq.Texture
	s.view = view
	return view, nil
}

// Present queues the acquired image for display.
func (s *WindowSurface) Present() error {
	if s.surface == nil {
		return ErrTargetDestroyed
	}
	if s.acquired == nil {
		return ErrNoFrame
	}
	tex := s.acquired
	s.f.device.DestroyTextureView(s.view)
	s.view = nil
	s.acquired = nil

	if err := s.f.queue.Present(s.surface, tex); err != nil {
		return fmt.Errorf("factory: present: %w", err)
	}
	return nil
}

// release discards an acquired but unpresented image.
func (s *WindowSurface) release() {
	if s.view != nil {
		s.f.device.DestroyTextureView(s.view)
		s.view = nil
	}
	if s.acquired != nil {
		s.surface.DiscardTexture(s.acquired)
		s.acquired = nil
	}
}

// Destroy unconfigures and releases the surface. Safe to call more than once.
func (s *WindowSurface) Destroy() {
	if s.surface == nil {
		return
	}
	s.release()
	s.surface.Unconfigure(s.f.device)
	s.surface.Destroy()
	s.surface = nil
}
