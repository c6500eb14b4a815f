// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package graph

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendergraph"
)

// Graph is a built render graph. It is run once per frame and disposed
// exactly once. A Graph is not safe for concurrent use.
type Graph[A any] struct {
	target Target
	queue  QueueID
	ctx    Context
	nodes  []*node[A]

	depthTex  hal.Texture
	depthView hal.TextureView

	// slots holds the submission index of the last frame recorded in each
	// frame-in-flight slot, 0 if the slot was never used.
	slots    []uint64
	frame    uint64
	disposed bool
}

// Nodes returns the number of nodes in the graph.
func (g *Graph[A]) Nodes() int { return len(g.nodes) }

// Frames returns the number of frames run so far.
func (g *Graph[A]) Frames() uint64 { return g.frame }

// Context returns the build context shared with nodes.
func (g *Graph[A]) Context() Context { return g.ctx }

// Disposed reports whether Dispose was called.
func (g *Graph[A]) Disposed() bool { return g.disposed }

// Run renders one frame. It waits until the frame slot is free, acquires
// the target image, prepares every node in order, records one render pass
// in which every node draws, submits it and presents.
func (g *Graph[A]) Run(f Factory, aux A) error {
	if g.disposed {
		return ErrDisposed
	}

	index := int(g.frame % uint64(len(g.slots))) //nolint:gosec // slot count is small
	if err := f.WaitFor(g.slots[index]); err != nil {
		return fmt.Errorf("graph: wait frame slot %d: %w", index, err)
	}

	view, err := g.target.Acquire()
	if err != nil {
		return fmt.Errorf("graph: acquire target: %w", err)
	}

	for _, n := range g.nodes {
		res, err := n.node.Prepare(f, g.queue, nil, index, aux)
		if err != nil {
			return fmt.Errorf("graph: prepare node %q: %w", n.name, err)
		}
		if res == PrepareRebuild {
			rendergraph.Logger().Debug("graph: node requested rebuild", "node", n.name)
		}
	}

	cmd, err := g.record(f.RawDevice(), view, index, aux)
	if err != nil {
		return err
	}
	submitted, err := f.Submit(cmd)
	if err != nil {
		return fmt.Errorf("graph: %w", err)
	}
	g.slots[index] = submitted

	if err := g.target.Present(); err != nil {
		return fmt.Errorf("graph: present: %w", err)
	}
	g.frame++
	return nil
}

// record encodes the frame's single render pass.
func (g *Graph[A]) record(device hal.Device, view hal.TextureView, index int, aux A) (hal.CommandBuffer, error) {
	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "graph_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("graph: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("graph_frame"); err != nil {
		return nil, fmt.Errorf("graph: begin encoding: %w", err)
	}

	desc := &hal.RenderPassDescriptor{
		Label: "graph_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: ClearColor,
		}},
	}
	if g.depthView != nil {
		desc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:              g.depthView,
			DepthLoadOp:       gputypes.LoadOpClear,
			DepthStoreOp:      gputypes.StoreOpDiscard,
			DepthClearValue:   1.0,
			StencilLoadOp:     gputypes.LoadOpClear,
			StencilStoreOp:    gputypes.StoreOpDiscard,
			StencilClearValue: 0,
		}
	}

	rp := encoder.BeginRenderPass(desc)
	for _, n := range g.nodes {
		rp.SetPipeline(n.pipeline)
		if err := n.node.Draw(n.layout, rp, index, aux); err != nil {
			rp.End()
			encoder.DiscardEncoding()
			return nil, fmt.Errorf("graph: draw node %q: %w", n.name, err)
		}
	}
	rp.End()

	cmd, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("graph: end encoding: %w", err)
	}
	return cmd, nil
}

// Dispose waits for the device to go idle, then disposes every node and
// the device objects the graph owns. A second call returns ErrDisposed.
func (g *Graph[A]) Dispose(f Factory, aux A) error {
	if g.disposed {
		return ErrDisposed
	}
	g.disposed = true

	var errs []error
	if err := f.WaitIdle(); err != nil {
		errs = append(errs, fmt.Errorf("graph: wait idle: %w", err))
	}
	errs = append(errs, g.release(f, aux))
	if err := f.Maintain(); err != nil {
		errs = append(errs, fmt.Errorf("graph: maintain: %w", err))
	}

	rendergraph.Logger().Info("graph: disposed", "frames", g.frame)
	return errors.Join(errs...)
}

// Runner binds a graph to its factory and auxiliary data so it can be
// driven without arguments, e.g. by a frame loop.
type Runner[A any] struct {
	g   *Graph[A]
	f   Factory
	aux A
}

// Bind returns a Runner for g.
func (g *Graph[A]) Bind(f Factory, aux A) *Runner[A] {
	return &Runner[A]{g: g, f: f, aux: aux}
}

// Run renders one frame.
func (r *Runner[A]) Run() error { return r.g.Run(r.f, r.aux) }

// Dispose disposes the graph.
func (r *Runner[A]) Dispose() error { return r.g.Dispose(r.f, r.aux) }

// Graph returns the bound graph.
func (r *Runner[A]) Graph() *Graph[A] { return r.g }
