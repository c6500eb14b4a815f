// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package factory

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// MemoryUsage says how the host accesses a buffer over its lifetime.
type MemoryUsage uint8

const (
	// MemoryData is device-local memory written rarely.
	MemoryData MemoryUsage = iota

	// MemoryDynamic is host-visible memory the host writes and the device
	// reads, possibly every frame.
	MemoryDynamic

	// MemoryUpload is host-visible staging memory for transfers to the device.
	MemoryUpload

	// MemoryDownload is host-visible memory the device writes and the host
	// reads back.
	MemoryDownload
)

// String returns the memory usage name.
func (m MemoryUsage) String() string {
	switch m {
	case MemoryData:
		return "data"
	case MemoryDynamic:
		return "dynamic"
	case MemoryUpload:
		return "upload"
	case MemoryDownload:
		return "download"
	}
	return fmt.Sprintf("MemoryUsage(%d)", uint8(m))
}

// HostVisible reports whether the host may write into buffers of this
// memory usage with UploadVisibleBuffer.
func (m MemoryUsage) HostVisible() bool {
	return m == MemoryDynamic || m == MemoryUpload || m == MemoryDownload
}

// usage returns the extra usage flags a memory class needs on top of the
// caller's request.
func (m MemoryUsage) usage() gputypes.BufferUsage {
	switch m {
	case MemoryDynamic, MemoryUpload:
		return gputypes.BufferUsageCopyDst
	case MemoryDownload:
		return gputypes.BufferUsageCopyDst | gputypes.BufferUsageMapRead
	}
	return 0
}

// BufferInfo describes a buffer to create.
type BufferInfo struct {
	Label string
	Size  uint64
	Usage gputypes.BufferUsage
}

// Buffer is a device buffer owned by a Factory.
// Its size and usage never change after creation.
type Buffer struct {
	raw       hal.Buffer
	info      BufferInfo
	memory    MemoryUsage
	destroyed bool
}

// Raw returns the HAL buffer. It returns nil once the buffer is destroyed.
func (b *Buffer) Raw() hal.Buffer {
	if b == nil || b.destroyed {
		return nil
	}
	return b.raw
}

// Info returns the creation parameters, including the flags added for the
// memory usage.
func (b *Buffer) Info() BufferInfo { return b.info }

// Size returns the buffer size in bytes.
func (b *Buffer) Size() uint64 { return b.info.Size }

// Memory returns the memory usage the buffer was created with.
func (b *Buffer) Memory() MemoryUsage { return b.memory }

// Destroyed reports whether DestroyBuffer was called on b.
func (b *Buffer) Destroyed() bool { return b.destroyed }

// retiredBuffer is a destroyed buffer the device may still be reading.
// It is released once submission index after has completed.
type retiredBuffer struct {
	raw   hal.Buffer
	after uint64
}
