// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package factory

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrTargetDestroyed is returned when using a destroyed presentation target.
var ErrTargetDestroyed = errors.New("factory: target destroyed")

// copyPitchAlignment is the BytesPerRow alignment required for
// texture-to-buffer copies.
const copyPitchAlignment = 256

// OffscreenTarget is a single-sample color texture used as the
// presentation target in headless mode. Frames stay in the texture until
// the next one clears it; Readback copies the latest frame to the host.
type OffscreenTarget struct {
	f       *Factory
	tex     hal.Texture
	view    hal.TextureView
	format  gputypes.TextureFormat
	width   uint32
	height  uint32
	frames  uint64
	present bool
}

// NewOffscreenTarget creates a width x height color target in the
// factory's surface format.
func (f *Factory) NewOffscreenTarget(width, height uint32) (*OffscreenTarget, error) {
	if f.closed {
		return nil, ErrClosed
	}
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("factory: offscreen target %dx%d: %w", width, height, ErrZeroSize)
	}

	format := f.opts.surfaceFormat
	tex, err := f.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "offscreen_color",
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("factory: create offscreen texture: %w", err)
	}
	view, err := f.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: "offscreen_color_view",
	})
	if err != nil {
		f.device.DestroyTexture(tex)
		return nil, fmt.Errorf("factory: create offscreen view: %w", err)
	}

	return &OffscreenTarget{
		f:      f,
		tex:    tex,
		view:   view,
		format: format,
		width:  width,
		height: height,
	}, nil
}

// Format returns the color format of the target.
func (t *OffscreenTarget) Format() gputypes.TextureFormat { return t.format }

// Extent returns the target size in pixels.
func (t *OffscreenTarget) Extent() (width, height uint32) { return t.width, t.height }

// Acquire returns the view to render the next frame into.
func (t *OffscreenTarget) Acquire() (hal.TextureView, error) {
	if t.tex == nil {
		return nil, ErrTargetDestroyed
	}
	t.present = true
	return t.view, nil
}

// Present marks the acquired frame as finished.
func (t *OffscreenTarget) Present() error {
	if t.tex == nil {
		return ErrTargetDestroyed
	}
	if t.present {
		t.frames++
		t.present = false
	}
	return nil
}

// Frames returns the number of presented frames.
func (t *OffscreenTarget) Frames() uint64 { return t.frames }

// Readback copies the current contents of the target to host memory.
// It blocks until the copy has completed.
func (t *OffscreenTarget) Readback() (*image.RGBA, error) {
	if t.tex == nil {
		return nil, ErrTargetDestroyed
	}
	f := t.f

	bytesPerRow := t.width * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	size := uint64(alignedBytesPerRow) * uint64(t.height)

	staging, err := f.CreateBuffer(BufferInfo{Label: "offscreen_readback", Size: size}, MemoryDownload)
	if err != nil {
		return nil, err
	}
	defer f.DestroyBuffer(staging)

	encoder, err := f.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "offscreen_readback",
	})
	if err != nil {
		return nil, fmt.Errorf("factory: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("offscreen_readback"); err != nil {
		return nil, fmt.Errorf("factory: begin encoding: %w", err)
	}

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(t.tex, staging.Raw(), []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: t.height},
		TextureBase:  hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: t.width, Height: t.height, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmd, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("factory: end encoding: %w", err)
	}
	index, err := f.Submit(cmd)
	if err != nil {
		return nil, err
	}
	if err := f.WaitFor(index); err != nil {
		return nil, err
	}

	data := make([]byte, size)
	if err := f.queue.ReadBuffer(staging.Raw(), 0, data); err != nil {
		return nil, fmt.Errorf("factory: readback: %w", err)
	}
	return pixelsToRGBA(data, t.width, t.height, alignedBytesPerRow, t.format), nil
}

// Destroy releases the texture and view. Safe to call more than once.
func (t *OffscreenTarget) Destroy() {
	if t.tex == nil {
		return
	}
	if t.view != nil {
		t.f.device.DestroyTextureView(t.view)
		t.view = nil
	}
	t.f.device.DestroyTexture(t.tex)
	t.tex = nil
}
