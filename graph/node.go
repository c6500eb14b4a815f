// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package graph builds and runs a render graph of graphics pipeline nodes.
//
// A node is described by a PipelineDesc. Building the graph compiles each
// description once into device pipeline objects plus a node Pipeline that
// owns the node's resources. Every Run acquires the target image, lets
// every node Prepare its resources, records one render pass in which every
// node Draws, submits it and presents the target.
//
// Type parameter A is the auxiliary data threaded through every node
// callback, typically the application's shared resource bundle.
package graph

import (
	"errors"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendergraph/factory"
	"github.com/gogpu/rendergraph/shader"
	"github.com/gogpu/rendergraph/vertex"
)

// Graph errors.
var (
	// ErrDisposed is returned by Run and Dispose on a disposed graph.
	ErrDisposed = errors.New("graph: disposed")

	// ErrNotProvisioned is returned by a node asked to draw before its
	// resources were prepared. It indicates a broken call order.
	ErrNotProvisioned = errors.New("graph: node drawn before prepare")

	// ErrUnexpectedBindings is returned by a node that declares no external
	// buffers, images or bind group layouts but was given some.
	ErrUnexpectedBindings = errors.New("graph: unexpected node bindings")

	// ErrIncompatibleTarget is returned when the presentation target cannot
	// be rendered to by the graph's pipelines.
	ErrIncompatibleTarget = errors.New("graph: incompatible target")

	// ErrEmpty is returned when building a graph without nodes.
	ErrEmpty = errors.New("graph: no nodes")
)

// Factory is the device-side services a graph and its nodes use.
// *factory.Factory implements it.
type Factory interface {
	RawDevice() hal.Device
	RawQueue() hal.Queue
	CreateBuffer(info factory.BufferInfo, memory factory.MemoryUsage) (*factory.Buffer, error)
	UploadVisibleBuffer(buf *factory.Buffer, offset uint64, data []byte) error
	DestroyBuffer(buf *factory.Buffer)
	Submit(cmd hal.CommandBuffer) (uint64, error)
	WaitFor(index uint64) error
	WaitIdle() error
	Maintain() error
}

// Target is the image a graph presents into each frame.
// *factory.OffscreenTarget and *factory.WindowSurface implement it.
type Target interface {
	Format() gputypes.TextureFormat
	Extent() (width, height uint32)
	Acquire() (hal.TextureView, error)
	Present() error
}

// Encoder is the part of a render pass a node records into.
// hal.RenderPassEncoder implements it.
type Encoder interface {
	SetVertexBuffer(slot uint32, buffer hal.Buffer, offset uint64)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
}

// QueueID identifies the submission queue a node runs on.
type QueueID struct {
	Family uint32
	Index  uint32
}

// NodeBuffer is an external buffer bound to a node by the graph.
type NodeBuffer struct {
	Name string
	Size uint64
}

// NodeImage is an external image bound to a node by the graph.
type NodeImage struct {
	Name   string
	Format gputypes.TextureFormat
}

// Context carries build information to a node. VertexLayouts holds the
// layouts the node's own VertexLayouts returned; the rest is graph-wide.
type Context struct {
	Format         gputypes.TextureFormat
	Width, Height  uint32
	FramesInFlight int
	VertexLayouts  []vertex.Layout
}

// PrepareResult tells the graph whether recorded commands can be reused.
type PrepareResult uint8

const (
	// PrepareReuse means nothing the node records has changed.
	PrepareReuse PrepareResult = iota

	// PrepareRebuild means the node's recorded commands must be re-recorded.
	PrepareRebuild
)

// String returns the result name.
func (r PrepareResult) String() string {
	if r == PrepareRebuild {
		return "rebuild"
	}
	return "reuse"
}

// PipelineDesc describes one graphics pipeline node. It is pure
// configuration consumed once by Builder.Build.
type PipelineDesc[A any] interface {
	// Name is the node label used for device objects and logs.
	Name() string

	// LoadShaderSet creates the node's device shader modules.
	LoadShaderSet(f Factory, aux A) (*shader.Set, error)

	// VertexLayouts returns one layout per vertex buffer slot.
	VertexLayouts(set *shader.Set) ([]vertex.Layout, error)

	// DepthStencil returns the depth-stencil state, or nil for none.
	DepthStencil() *hal.DepthStencilState

	// Build creates the node pipeline. Resources are provisioned lazily by
	// Pipeline.Prepare, not here.
	Build(ctx *Context, f Factory, queue QueueID, aux A,
		buffers []NodeBuffer, images []NodeImage, layouts []hal.BindGroupLayout) (Pipeline[A], error)
}

// Pipeline is a built node. index is the frame-in-flight slot.
type Pipeline[A any] interface {
	// Prepare makes the node's resources ready for the coming frame.
	Prepare(f Factory, queue QueueID, layouts []hal.BindGroupLayout, index int, aux A) (PrepareResult, error)

	// Draw records the node's commands into the render pass.
	Draw(layout hal.PipelineLayout, enc Encoder, index int, aux A) error

	// Dispose releases the node's resources.
	Dispose(f Factory, aux A) error
}
