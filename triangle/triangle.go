// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package triangle

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendergraph"
	"github.com/gogpu/rendergraph/factory"
	"github.com/gogpu/rendergraph/graph"
	"github.com/gogpu/rendergraph/shader"
	"github.com/gogpu/rendergraph/vertex"
)

// Name is the node label.
const Name = "triangle"

// ErrVertexLayouts is returned by Build when the context does not carry
// exactly one vertex layout.
var ErrVertexLayouts = errors.New("triangle: unexpected vertex layouts")

// Desc describes the triangle node: no external buffers, images or bind
// group layouts, no depth-stencil, one per-vertex buffer.
type Desc[A any] struct {
	res *Resources
}

// NewDesc returns a triangle node description using res.
func NewDesc[A any](res *Resources) *Desc[A] {
	return &Desc[A]{res: res}
}

// Name returns the node label.
func (d *Desc[A]) Name() string { return Name }

// LoadShaderSet builds the precompiled program on the factory's device.
// A precompilation failure is returned here.
func (d *Desc[A]) LoadShaderSet(f graph.Factory, _ A) (*shader.Set, error) {
	return d.res.program.Build(f.RawDevice())
}

// VertexLayouts returns the PosColor layout. When the set carries a
// reflected layout it must equal the static one.
func (d *Desc[A]) VertexLayouts(set *shader.Set) ([]vertex.Layout, error) {
	static := vertex.PosColorLayout()
	if reflected, ok := set.Reflection(); ok {
		if err := static.Check(reflected); err != nil {
			return nil, fmt.Errorf("triangle: reflected vertex inputs: %w", err)
		}
		rendergraph.Logger().Debug("triangle: vertex layout reflected", "layout", reflected)
		return []vertex.Layout{reflected}, nil
	}
	return []vertex.Layout{static}, nil
}

// DepthStencil returns nil: the triangle is drawn without depth testing.
func (d *Desc[A]) DepthStencil() *hal.DepthStencilState { return nil }

// Build returns an unprovisioned pipeline sized by the single vertex
// layout resolved for the node. The vertex buffer is created on the first
// Prepare.
func (d *Desc[A]) Build(ctx *graph.Context, _ graph.Factory, _ graph.QueueID, _ A,
	buffers []graph.NodeBuffer, images []graph.NodeImage, layouts []hal.BindGroupLayout,
) (graph.Pipeline[A], error) {
	if len(buffers) != 0 || len(images) != 0 || len(layouts) != 0 {
		return nil, fmt.Errorf("%w: triangle takes none, got %d buffers %d images %d layouts",
			graph.ErrUnexpectedBindings, len(buffers), len(images), len(layouts))
	}
	if len(ctx.VertexLayouts) != 1 {
		return nil, fmt.Errorf("%w: triangle needs one vertex layout, got %d", ErrVertexLayouts, len(ctx.VertexLayouts))
	}
	return &Pipeline[A]{stride: ctx.VertexLayouts[0].Stride}, nil
}

// Pipeline is the built triangle node. It owns one vertex buffer which is
// created once and never resized.
type Pipeline[A any] struct {
	stride   uint64
	buffer   *factory.Buffer
	disposed bool
}

// Prepare creates and fills the vertex buffer on first use. Later calls
// do nothing.
func (p *Pipeline[A]) Prepare(f graph.Factory, _ graph.QueueID, _ []hal.BindGroupLayout, _ int, _ A) (graph.PrepareResult, error) {
	if p.disposed {
		return graph.PrepareReuse, graph.ErrDisposed
	}
	if p.buffer != nil {
		return graph.PrepareReuse, nil
	}

	buf, err := f.CreateBuffer(factory.BufferInfo{
		Label: "triangle_vertices",
		Size:  p.stride * vertex.TriangleVertexCount,
		Usage: gputypes.BufferUsageVertex,
	}, factory.MemoryDynamic)
	if err != nil {
		return graph.PrepareReuse, fmt.Errorf("triangle: %w", err)
	}

	tri := vertex.Triangle()
	if err := f.UploadVisibleBuffer(buf, 0, vertex.Bytes(tri[:])); err != nil {
		f.DestroyBuffer(buf)
		return graph.PrepareReuse, fmt.Errorf("triangle: upload vertices: %w", err)
	}
	p.buffer = buf
	return graph.PrepareReuse, nil
}

// Draw binds the vertex buffer at slot 0 and draws three vertices.
func (p *Pipeline[A]) Draw(_ hal.PipelineLayout, enc graph.Encoder, _ int, _ A) error {
	if p.buffer == nil {
		return graph.ErrNotProvisioned
	}
	enc.SetVertexBuffer(0, p.buffer.Raw(), 0)
	enc.Draw(vertex.TriangleVertexCount, 1, 0, 0)
	return nil
}

// Dispose releases the vertex buffer. Later calls do nothing.
func (p *Pipeline[A]) Dispose(f graph.Factory, _ A) error {
	if p.disposed {
		return nil
	}
	p.disposed = true
	if p.buffer != nil {
		f.DestroyBuffer(p.buffer)
		p.buffer = nil
	}
	return nil
}

// Provisioned reports whether the vertex buffer exists.
func (p *Pipeline[A]) Provisioned() bool { return p.buffer != nil }
