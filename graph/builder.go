// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package graph

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendergraph"
	"github.com/gogpu/rendergraph/shader"
)

// DefaultFramesInFlight is the number of frames the CPU may record ahead
// of the GPU.
const DefaultFramesInFlight = 2

// ClearColor is the color every frame is cleared to before nodes draw.
var ClearColor = gputypes.Color{R: 0, G: 0, B: 0, A: 1}

// Option configures Builder.Build.
type Option func(*buildOptions)

type buildOptions struct {
	framesInFlight int
}

// WithFramesInFlight sets how many frames may be in flight. Values below
// one are ignored.
func WithFramesInFlight(n int) Option {
	return func(o *buildOptions) {
		if n >= 1 {
			o.framesInFlight = n
		}
	}
}

// Builder collects node descriptions in draw order.
type Builder[A any] struct {
	descs []PipelineDesc[A]
}

// NewBuilder returns an empty builder.
func NewBuilder[A any]() *Builder[A] {
	return &Builder[A]{}
}

// AddNode appends a node. Nodes draw in the order they are added.
func (b *Builder[A]) AddNode(desc PipelineDesc[A]) *Builder[A] {
	b.descs = append(b.descs, desc)
	return b
}

// Len returns the number of nodes added.
func (b *Builder[A]) Len() int { return len(b.descs) }

// Build compiles every node against f and target. On error every object
// created so far is released.
func (b *Builder[A]) Build(f Factory, target Target, aux A, opts ...Option) (*Graph[A], error) {
	o := buildOptions{framesInFlight: DefaultFramesInFlight}
	for _, opt := range opts {
		opt(&o)
	}

	if len(b.descs) == 0 {
		return nil, ErrEmpty
	}
	format := target.Format()
	if format == gputypes.TextureFormatUndefined {
		return nil, fmt.Errorf("%w: undefined surface format", ErrIncompatibleTarget)
	}
	width, height := target.Extent()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: empty extent %dx%d", ErrIncompatibleTarget, width, height)
	}

	g := &Graph[A]{
		target: target,
		slots:  make([]uint64, o.framesInFlight),
		ctx: Context{
			Format:         format,
			Width:          width,
			Height:         height,
			FramesInFlight: o.framesInFlight,
		},
	}

	for _, desc := range b.descs {
		n, err := g.buildNode(f, desc, aux)
		if err != nil {
			_ = g.release(f, aux)
			return nil, fmt.Errorf("graph: build node %q: %w", desc.Name(), err)
		}
		g.nodes = append(g.nodes, n)
	}

	if err := g.createDepth(f.RawDevice()); err != nil {
		_ = g.release(f, aux)
		return nil, err
	}

	rendergraph.Logger().Info("graph: built",
		"nodes", len(g.nodes), "format", format, "width", width, "height", height,
		"framesInFlight", o.framesInFlight)
	return g, nil
}

// node is one built graph node with the device objects the graph owns.
type node[A any] struct {
	name     string
	set      *shader.Set
	layout   hal.PipelineLayout
	pipeline hal.RenderPipeline
	depth    *hal.DepthStencilState
	node     Pipeline[A]
}

func (g *Graph[A]) buildNode(f Factory, desc PipelineDesc[A], aux A) (*node[A], error) {
	device := f.RawDevice()
	name := desc.Name()
	n := &node[A]{name: name, depth: desc.DepthStencil()}

	set, err := desc.LoadShaderSet(f, aux)
	if err != nil {
		return nil, fmt.Errorf("load shaders: %w", err)
	}
	n.set = set

	layouts, err := desc.VertexLayouts(set)
	if err != nil {
		n.destroy(device)
		return nil, fmt.Errorf("vertex layouts: %w", err)
	}
	buffers := make([]gputypes.VertexBufferLayout, len(layouts))
	for i, l := range layouts {
		buffers[i] = l.BufferLayout()
	}

	n.layout, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: name + "_layout",
	})
	if err != nil {
		n.destroy(device)
		return nil, fmt.Errorf("create pipeline layout: %w", err)
	}

	n.pipeline, err = device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  name + "_pipeline",
		Layout: n.layout,
		Vertex: hal.VertexState{
			Module:     set.Vertex.Module,
			EntryPoint: set.Vertex.EntryPoint,
			Buffers:    buffers,
		},
		Fragment: &hal.FragmentState{
			Module:     set.Fragment.Module,
			EntryPoint: set.Fragment.EntryPoint,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    g.ctx.Format,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		DepthStencil: n.depth,
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		n.destroy(device)
		return nil, fmt.Errorf("create render pipeline: %w", err)
	}

	ctx := g.ctx
	ctx.VertexLayouts = layouts
	n.node, err = desc.Build(&ctx, f, g.queue, aux, nil, nil, nil)
	if err != nil {
		n.destroy(device)
		return nil, err
	}
	return n, nil
}

// destroy releases the device objects of n in reverse creation order.
func (n *node[A]) destroy(device hal.Device) {
	if n.pipeline != nil {
		device.DestroyRenderPipeline(n.pipeline)
		n.pipeline = nil
	}
	if n.layout != nil {
		device.DestroyPipelineLayout(n.layout)
		n.layout = nil
	}
	n.set.Destroy()
	n.set = nil
}

// createDepth creates the shared depth attachment when any node uses one.
// All depth-testing nodes must agree on the format.
func (g *Graph[A]) createDepth(device hal.Device) error {
	var format gputypes.TextureFormat
	for _, n := range g.nodes {
		if n.depth == nil {
			continue
		}
		if format != gputypes.TextureFormatUndefined && format != n.depth.Format {
			return fmt.Errorf("%w: nodes disagree on depth format", ErrIncompatibleTarget)
		}
		format = n.depth.Format
	}
	if format == gputypes.TextureFormatUndefined {
		return nil
	}

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "graph_depth",
		Size:          hal.Extent3D{Width: g.ctx.Width, Height: g.ctx.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("graph: create depth texture: %w", err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: "graph_depth_view"})
	if err != nil {
		device.DestroyTexture(tex)
		return fmt.Errorf("graph: create depth view: %w", err)
	}
	g.depthTex, g.depthView = tex, view
	return nil
}

// release disposes every built node and graph-owned object. Errors are
// joined; release never stops early.
func (g *Graph[A]) release(f Factory, aux A) error {
	device := f.RawDevice()
	var errs []error
	for _, n := range g.nodes {
		if err := n.node.Dispose(f, aux); err != nil {
			errs = append(errs, fmt.Errorf("graph: dispose node %q: %w", n.name, err))
		}
		n.destroy(device)
	}
	g.nodes = nil

	if g.depthView != nil {
		device.DestroyTextureView(g.depthView)
		g.depthView = nil
	}
	if g.depthTex != nil {
		device.DestroyTexture(g.depthTex)
		g.depthTex = nil
	}
	return errors.Join(errs...)
}
