// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package graph

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/rendergraph/backend"
	"github.com/gogpu/rendergraph/factory"
	"github.com/gogpu/rendergraph/shader"
	"github.com/gogpu/rendergraph/vertex"
)

// journal records node callbacks in call order.
type journal struct {
	calls []string
}

func (j *journal) add(format string, args ...any) {
	j.calls = append(j.calls, fmt.Sprintf(format, args...))
}

type fakeDesc struct {
	name     string
	depth    *hal.DepthStencilState
	buildErr error
	drawErr  error

	builtWith []vertex.Layout
}

func (d *fakeDesc) Name() string { return d.name }

func (d *fakeDesc) LoadShaderSet(Factory, *journal) (*shader.Set, error) {
	return &shader.Set{}, nil
}

func (d *fakeDesc) VertexLayouts(*shader.Set) ([]vertex.Layout, error) {
	return []vertex.Layout{vertex.PosColorLayout()}, nil
}

func (d *fakeDesc) DepthStencil() *hal.DepthStencilState { return d.depth }

func (d *fakeDesc) Build(ctx *Context, _ Factory, _ QueueID, j *journal,
	buffers []NodeBuffer, images []NodeImage, layouts []hal.BindGroupLayout,
) (Pipeline[*journal], error) {
	if d.buildErr != nil {
		return nil, d.buildErr
	}
	if len(buffers)+len(images)+len(layouts) != 0 {
		return nil, ErrUnexpectedBindings
	}
	d.builtWith = ctx.VertexLayouts
	j.add("build %s %dx%d", d.name, ctx.Width, ctx.Height)
	return &fakePipeline{name: d.name, drawErr: d.drawErr}, nil
}

type fakePipeline struct {
	name    string
	drawErr error
}

func (p *fakePipeline) Prepare(_ Factory, _ QueueID, _ []hal.BindGroupLayout, index int, j *journal) (PrepareResult, error) {
	j.add("prepare %s %d", p.name, index)
	return PrepareReuse, nil
}

func (p *fakePipeline) Draw(_ hal.PipelineLayout, _ Encoder, index int, j *journal) error {
	if p.drawErr != nil {
		return p.drawErr
	}
	j.add("draw %s %d", p.name, index)
	return nil
}

func (p *fakePipeline) Dispose(_ Factory, j *journal) error {
	j.add("dispose %s", p.name)
	return nil
}

// countingTarget wraps a target and counts acquire/present calls.
type countingTarget struct {
	Target
	format   gputypes.TextureFormat
	acquired int
	presents int
}

func (t *countingTarget) Format() gputypes.TextureFormat { return t.format }

func (t *countingTarget) Acquire() (hal.TextureView, error) {
	t.acquired++
	return t.Target.Acquire()
}

func (t *countingTarget) Present() error {
	t.presents++
	return t.Target.Present()
}

func newTestFactory(t *testing.T) *factory.Factory {
	t.Helper()
	b, err := backend.Get(backend.NameNoop)
	require.NoError(t, err)
	f, err := factory.New(b)
	require.NoError(t, err)
	t.Cleanup(f.Close)
	return f
}

func newTestTarget(t *testing.T, f *factory.Factory) *countingTarget {
	t.Helper()
	off, err := f.NewOffscreenTarget(32, 32)
	require.NoError(t, err)
	t.Cleanup(off.Destroy)
	return &countingTarget{Target: off, format: off.Format()}
}

func TestBuildEmpty(t *testing.T) {
	f := newTestFactory(t)
	_, err := NewBuilder[*journal]().Build(f, newTestTarget(t, f), &journal{})
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestBuildUndefinedFormat(t *testing.T) {
	f := newTestFactory(t)
	target := newTestTarget(t, f)
	target.format = gputypes.TextureFormatUndefined

	j := &journal{}
	_, err := NewBuilder[*journal]().AddNode(&fakeDesc{name: "a"}).Build(f, target, j)
	assert.ErrorIs(t, err, ErrIncompatibleTarget)
	assert.Empty(t, j.calls)
}

func TestRunOrder(t *testing.T) {
	f := newTestFactory(t)
	target := newTestTarget(t, f)
	j := &journal{}

	g, err := NewBuilder[*journal]().
		AddNode(&fakeDesc{name: "a"}).
		AddNode(&fakeDesc{name: "b"}).
		Build(f, target, j)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Nodes())
	assert.Equal(t, []string{"build a 32x32", "build b 32x32"}, j.calls)

	j.calls = nil
	require.NoError(t, g.Run(f, j))
	assert.Equal(t, []string{"prepare a 0", "prepare b 0", "draw a 0", "draw b 0"}, j.calls)
	assert.Equal(t, 1, target.acquired)
	assert.Equal(t, 1, target.presents)
	assert.EqualValues(t, 1, g.Frames())

	require.NoError(t, g.Dispose(f, j))
}

func TestRunCyclesFrameSlots(t *testing.T) {
	f := newTestFactory(t)
	j := &journal{}

	g, err := NewBuilder[*journal]().
		AddNode(&fakeDesc{name: "a"}).
		Build(f, newTestTarget(t, f), j, WithFramesInFlight(2))
	require.NoError(t, err)
	assert.Equal(t, 2, g.Context().FramesInFlight)

	j.calls = nil
	for range 3 {
		require.NoError(t, g.Run(f, j))
		require.NoError(t, f.Maintain())
	}
	assert.Equal(t, []string{
		"prepare a 0", "draw a 0",
		"prepare a 1", "draw a 1",
		"prepare a 0", "draw a 0",
	}, j.calls)
	require.NoError(t, g.Dispose(f, j))
}

func TestDisposeExactlyOnce(t *testing.T) {
	f := newTestFactory(t)
	j := &journal{}

	g, err := NewBuilder[*journal]().
		AddNode(&fakeDesc{name: "a"}).
		AddNode(&fakeDesc{name: "b"}).
		Build(f, newTestTarget(t, f), j)
	require.NoError(t, err)
	require.NoError(t, g.Run(f, j))

	j.calls = nil
	require.NoError(t, g.Dispose(f, j))
	assert.Equal(t, []string{"dispose a", "dispose b"}, j.calls)
	assert.True(t, g.Disposed())

	assert.ErrorIs(t, g.Dispose(f, j), ErrDisposed)
	assert.ErrorIs(t, g.Run(f, j), ErrDisposed)
	assert.Equal(t, []string{"dispose a", "dispose b"}, j.calls)
}

func TestBuildFailureReleasesBuiltNodes(t *testing.T) {
	f := newTestFactory(t)
	j := &journal{}
	boom := errors.New("boom")

	_, err := NewBuilder[*journal]().
		AddNode(&fakeDesc{name: "a"}).
		AddNode(&fakeDesc{name: "b", buildErr: boom}).
		Build(f, newTestTarget(t, f), j)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `"b"`)
	assert.Equal(t, []string{"build a 32x32", "dispose a"}, j.calls)
}

func TestDrawErrorPropagates(t *testing.T) {
	f := newTestFactory(t)
	j := &journal{}

	g, err := NewBuilder[*journal]().
		AddNode(&fakeDesc{name: "a", drawErr: ErrNotProvisioned}).
		Build(f, newTestTarget(t, f), j)
	require.NoError(t, err)

	err = g.Run(f, j)
	assert.ErrorIs(t, err, ErrNotProvisioned)
	assert.Zero(t, g.Frames())
	require.NoError(t, g.Dispose(f, j))
}

func TestDepthFormatsMustAgree(t *testing.T) {
	f := newTestFactory(t)
	j := &journal{}

	_, err := NewBuilder[*journal]().
		AddNode(&fakeDesc{name: "a", depth: &hal.DepthStencilState{Format: gputypes.TextureFormatDepth24PlusStencil8}}).
		AddNode(&fakeDesc{name: "b", depth: &hal.DepthStencilState{Format: gputypes.TextureFormatDepth32Float}}).
		Build(f, newTestTarget(t, f), j)
	assert.ErrorIs(t, err, ErrIncompatibleTarget)
	assert.Contains(t, j.calls, "dispose a")
	assert.Contains(t, j.calls, "dispose b")
}

func TestDepthAttachment(t *testing.T) {
	f := newTestFactory(t)
	j := &journal{}

	g, err := NewBuilder[*journal]().
		AddNode(&fakeDesc{name: "a", depth: &hal.DepthStencilState{Format: gputypes.TextureFormatDepth24PlusStencil8}}).
		Build(f, newTestTarget(t, f), j)
	require.NoError(t, err)
	assert.NotNil(t, g.depthView)

	require.NoError(t, g.Run(f, j))
	require.NoError(t, g.Dispose(f, j))
	assert.Nil(t, g.depthView)
	assert.Nil(t, g.depthTex)
}

func TestBuildPassesResolvedLayouts(t *testing.T) {
	f := newTestFactory(t)
	j := &journal{}
	a, b := &fakeDesc{name: "a"}, &fakeDesc{name: "b"}

	g, err := NewBuilder[*journal]().AddNode(a).AddNode(b).Build(f, newTestTarget(t, f), j)
	require.NoError(t, err)

	assert.Equal(t, []vertex.Layout{vertex.PosColorLayout()}, a.builtWith)
	assert.Equal(t, []vertex.Layout{vertex.PosColorLayout()}, b.builtWith)
	assert.Nil(t, g.Context().VertexLayouts, "node layouts do not leak into the graph context")
	require.NoError(t, g.Dispose(f, j))
}

func TestRunner(t *testing.T) {
	f := newTestFactory(t)
	j := &journal{}

	g, err := NewBuilder[*journal]().AddNode(&fakeDesc{name: "a"}).Build(f, newTestTarget(t, f), j)
	require.NoError(t, err)

	r := g.Bind(f, j)
	require.NoError(t, r.Run())
	require.NoError(t, r.Run())
	assert.EqualValues(t, 2, r.Graph().Frames())
	require.NoError(t, r.Dispose())
	assert.ErrorIs(t, r.Dispose(), ErrDisposed)
}

func TestPrepareResultString(t *testing.T) {
	assert.Equal(t, "reuse", PrepareReuse.String())
	assert.Equal(t, "rebuild", PrepareRebuild.String())
}
