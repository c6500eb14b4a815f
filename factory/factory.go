// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package factory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendergraph"
	"github.com/gogpu/rendergraph/backend"
)

// Factory errors.
var (
	// ErrNoAdapter is returned when the backend exposes no adapter.
	ErrNoAdapter = errors.New("factory: no GPU adapters found")

	// ErrClosed is returned by operations on a closed factory.
	ErrClosed = errors.New("factory: closed")

	// ErrZeroSize is returned when creating a buffer of size 0.
	ErrZeroSize = errors.New("factory: zero-sized buffer")

	// ErrNotHostVisible is returned when uploading into device-local memory.
	ErrNotHostVisible = errors.New("factory: buffer is not host visible")

	// ErrUploadOutOfRange is returned when an upload exceeds the buffer.
	ErrUploadOutOfRange = errors.New("factory: upload out of buffer range")

	// ErrBufferDestroyed is returned when using a destroyed buffer.
	ErrBufferDestroyed = errors.New("factory: buffer destroyed")

	// ErrWaitTimeout is returned when a fence wait exceeds the timeout.
	ErrWaitTimeout = errors.New("factory: wait timed out")
)

// submission is a command buffer in flight on the timeline fence.
type submission struct {
	cmd   hal.CommandBuffer
	index uint64
}

// Factory owns the device and queue opened on one backend and tracks
// in-flight GPU work. Submissions signal a single timeline fence with
// increasing indices; Maintain reclaims command buffers and destroyed
// buffers whose submission has completed.
//
// A Factory is not safe for concurrent use.
type Factory struct {
	backend  backend.GraphicsBackend
	instance hal.Instance
	adapter  hal.Adapter
	info     AdapterInfo
	device   hal.Device
	queue    hal.Queue
	fence    hal.Fence
	opts     options

	submitted uint64
	completed uint64
	inFlight  []submission
	retired   []retiredBuffer
	closed    bool

	// pollErr is the result of the last gpucontext Device.Poll.
	pollErr error
}

// AdapterInfo describes the adapter the factory opened.
type AdapterInfo struct {
	Name       string
	DeviceType gputypes.DeviceType
	Backend    string
}

// New opens a device on b.
func New(b backend.GraphicsBackend, opts ...Option) (*Factory, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	instance, err := b.CreateInstance()
	if err != nil {
		return nil, fmt.Errorf("factory: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w (backend %s)", ErrNoAdapter, b.Name())
	}
	selected := selectAdapter(adapters, o.adapterName)

	openDev, err := selected.Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("factory: open device: %w", err)
	}

	fence, err := openDev.Device.CreateFence()
	if err != nil {
		openDev.Device.Destroy()
		instance.Destroy()
		return nil, fmt.Errorf("factory: create fence: %w", err)
	}

	f := &Factory{
		backend:  b,
		instance: instance,
		adapter:  selected.Adapter,
		info: AdapterInfo{
			Name:       selected.Info.Name,
			DeviceType: selected.Info.DeviceType,
			Backend:    b.Name(),
		},
		device: openDev.Device,
		queue:  openDev.Queue,
		fence:  fence,
		opts:   o,
	}
	rendergraph.Logger().Info("factory: device opened",
		"backend", b.Name(), "adapter", f.info.Name, "type", f.info.DeviceType)
	return f, nil
}

// selectAdapter picks by name substring first, then prefers discrete and
// integrated GPUs over software or unknown adapters.
func selectAdapter(adapters []hal.ExposedAdapter, name string) *hal.ExposedAdapter {
	if name != "" {
		for i := range adapters {
			if strings.Contains(adapters[i].Info.Name, name) {
				return &adapters[i]
			}
		}
		rendergraph.Logger().Warn("factory: requested adapter not found, using default", "adapter", name)
	}
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU {
			return &adapters[i]
		}
	}
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			return &adapters[i]
		}
	}
	return &adapters[0]
}

// Backend returns the backend the factory was opened on.
func (f *Factory) Backend() backend.GraphicsBackend { return f.backend }

// AdapterInfo returns the selected adapter description.
func (f *Factory) AdapterInfo() AdapterInfo { return f.info }

// RawDevice returns the HAL device.
func (f *Factory) RawDevice() hal.Device { return f.device }

// RawQueue returns the HAL queue.
func (f *Factory) RawQueue() hal.Queue { return f.queue }

// CreateBuffer creates a buffer. Host-visible memory usages add the
// transfer flags UploadVisibleBuffer and readback need.
func (f *Factory) CreateBuffer(info BufferInfo, memory MemoryUsage) (*Buffer, error) {
	if f.closed {
		return nil, ErrClosed
	}
	if info.Size == 0 {
		return nil, fmt.Errorf("%w: %q", ErrZeroSize, info.Label)
	}
	info.Usage |= memory.usage()

	raw, err := f.device.CreateBuffer(&hal.BufferDescriptor{
		Label: info.Label,
		Size:  info.Size,
		Usage: info.Usage,
	})
	if err != nil {
		return nil, fmt.Errorf("factory: create buffer %q: %w", info.Label, err)
	}
	rendergraph.Logger().Debug("factory: buffer created",
		"label", info.Label, "size", info.Size, "memory", memory)
	return &Buffer{raw: raw, info: info, memory: memory}, nil
}

// UploadVisibleBuffer writes data into a host-visible buffer at offset.
func (f *Factory) UploadVisibleBuffer(buf *Buffer, offset uint64, data []byte) error {
	switch {
	case f.closed:
		return ErrClosed
	case buf == nil || buf.destroyed:
		return ErrBufferDestroyed
	case !buf.memory.HostVisible():
		return fmt.Errorf("%w: %q has %s memory", ErrNotHostVisible, buf.info.Label, buf.memory)
	case offset > buf.info.Size || uint64(len(data)) > buf.info.Size-offset:
		return fmt.Errorf("%w: %d bytes at %d into %d", ErrUploadOutOfRange, len(data), offset, buf.info.Size)
	}
	f.queue.WriteBuffer(buf.raw, offset, data)
	return nil
}

// DestroyBuffer schedules buf for release. The HAL buffer is freed by
// Maintain once every submission made so far has completed.
func (f *Factory) DestroyBuffer(buf *Buffer) {
	if buf == nil || buf.destroyed {
		return
	}
	buf.destroyed = true
	f.retired = append(f.retired, retiredBuffer{raw: buf.raw, after: f.submitted})
	buf.raw = nil
}

// Submit submits one command buffer and returns its submission index.
// The factory takes ownership of cmd and frees it in Maintain.
func (f *Factory) Submit(cmd hal.CommandBuffer) (uint64, error) {
	if f.closed {
		f.device.FreeCommandBuffer(cmd)
		return 0, ErrClosed
	}
	index := f.submitted + 1
	if err := f.queue.Submit([]hal.CommandBuffer{cmd}, f.fence, index); err != nil {
		f.device.FreeCommandBuffer(cmd)
		return 0, fmt.Errorf("factory: submit: %w", err)
	}
	f.submitted = index
	f.inFlight = append(f.inFlight, submission{cmd: cmd, index: index})
	return index, nil
}

// Submitted returns the index of the latest submission, 0 if none.
func (f *Factory) Submitted() uint64 { return f.submitted }

// Completed returns the highest submission index known to have finished.
func (f *Factory) Completed() uint64 { return f.completed }

// WaitFor blocks until submission index has completed.
func (f *Factory) WaitFor(index uint64) error {
	if index <= f.completed {
		return nil
	}
	if index > f.submitted {
		index = f.submitted
	}
	ok, err := f.device.Wait(f.fence, index, f.opts.waitTimeout)
	if err != nil {
		return fmt.Errorf("factory: wait for submission %d: %w", index, err)
	}
	if !ok {
		return fmt.Errorf("%w: submission %d after %v", ErrWaitTimeout, index, f.opts.waitTimeout)
	}
	f.completed = index
	return nil
}

// WaitIdle blocks until all submitted work has completed, then reclaims it.
func (f *Factory) WaitIdle() error {
	if err := f.WaitFor(f.submitted); err != nil {
		return err
	}
	return f.Maintain()
}

// Maintain polls the fence without blocking, frees command buffers of
// completed submissions and releases destroyed buffers no longer in use.
// It is the only point where deferred resources are reclaimed.
func (f *Factory) Maintain() error {
	if f.closed {
		return ErrClosed
	}

	done := 0
	for _, s := range f.inFlight {
		if s.index > f.completed {
			ok, err := f.device.Wait(f.fence, s.index, 0)
			if err != nil {
				return fmt.Errorf("factory: poll fence: %w", err)
			}
			if !ok {
				break
			}
			f.completed = s.index
		}
		f.device.FreeCommandBuffer(s.cmd)
		done++
	}
	f.inFlight = append(f.inFlight[:0], f.inFlight[done:]...)

	kept := f.retired[:0]
	freed := 0
	for _, r := range f.retired {
		if r.after <= f.completed {
			f.device.DestroyBuffer(r.raw)
			freed++
			continue
		}
		kept = append(kept, r)
	}
	f.retired = kept

	if done > 0 || freed > 0 {
		rendergraph.Logger().Debug("factory: maintain",
			"completed", f.completed, "commands", done, "buffers", freed)
	}
	return nil
}

// Close waits for the device to go idle and releases the device, fence
// and instance. Safe to call more than once.
func (f *Factory) Close() {
	if f.closed {
		return
	}
	if err := f.WaitIdle(); err != nil {
		rendergraph.Logger().Warn("factory: wait idle on close", "err", err)
	}
	f.closed = true

	for _, s := range f.inFlight {
		f.device.FreeCommandBuffer(s.cmd)
	}
	f.inFlight = nil
	for _, r := range f.retired {
		f.device.DestroyBuffer(r.raw)
	}
	f.retired = nil

	if f.fence != nil {
		f.device.DestroyFence(f.fence)
		f.fence = nil
	}
	if f.device != nil {
		f.device.Destroy()
	}
	if f.instance != nil {
		f.instance.Destroy()
		f.instance = nil
	}
}
