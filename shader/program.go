// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"errors"
	"fmt"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendergraph"
	"github.com/gogpu/rendergraph/vertex"
)

// ErrPrecompile wraps any failure recorded during Precompile. It is
// reported by Program.Build, the first point where a device is involved.
var ErrPrecompile = errors.New("shader: precompile failed")

// Module is a compiled, device-independent shader stage.
type Module struct {
	Name       string
	Kind       Kind
	EntryPoint string
	SPIRV      []uint32
}

// Option configures Precompile.
type Option func(*options)

type options struct {
	reflect bool
	cache   *Cache
}

// WithReflection makes Precompile derive the vertex input layout from the
// compiled vertex stage.
func WithReflection() Option {
	return func(o *options) {
		o.reflect = true
	}
}

// WithCache makes Precompile look up and store compiled stages in c.
func WithCache(c *Cache) Option {
	return func(o *options) {
		o.cache = c
	}
}

// Program is a precompiled vertex and fragment pair. Precompilation never
// fails eagerly; an error is kept and returned by Build.
type Program struct {
	vertex     Module
	fragment   Module
	reflection *vertex.Layout
	err        error
}

// Precompile compiles both stages of src. With WithReflection the vertex
// input layout is reflected as well.
func Precompile(src Sources, opts ...Option) *Program {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	p := &Program{}
	vs, err := compileStage(o.cache, src.Vertex, KindVertex)
	if err != nil {
		p.err = err
		return p
	}
	fs, err := compileStage(o.cache, src.Fragment, KindFragment)
	if err != nil {
		p.err = err
		return p
	}
	p.vertex, p.fragment = vs, fs

	if o.reflect {
		layout, err := ReflectVertexInputs(vs.SPIRV, vs.EntryPoint)
		if err != nil {
			p.err = fmt.Errorf("%s: reflect: %w", vs.Name, err)
			return p
		}
		p.reflection = &layout
	}

	rendergraph.Logger().Debug("shader program precompiled",
		"vertex", vs.Name, "fragment", fs.Name, "reflected", p.reflection != nil)
	return p
}

func compileStage(cache *Cache, src Source, kind Kind) (Module, error) {
	if src.Kind != kind {
		return Module{}, fmt.Errorf("%s: %w: got %s stage, want %s", src.Name, ErrStageMismatch, src.Kind, kind)
	}
	words, err := cache.Compile(src)
	if err != nil {
		return Module{}, err
	}
	return Module{Name: src.Name, Kind: kind, EntryPoint: src.EntryPoint, SPIRV: words}, nil
}

// ErrStageMismatch is returned when a source is placed in the wrong slot
// of a Sources pair.
var ErrStageMismatch = errors.New("shader: stage mismatch")

// Err returns the precompile error, if any.
func (p *Program) Err() error {
	return p.err
}

// Reflection returns the reflected vertex layout. ok is false when the
// program was precompiled without reflection or failed.
func (p *Program) Reflection() (layout vertex.Layout, ok bool) {
	if p.reflection == nil {
		return vertex.Layout{}, false
	}
	return *p.reflection, true
}

// Build creates device shader modules for both stages. Any precompile
// failure is returned here wrapped in ErrPrecompile.
func (p *Program) Build(device hal.Device) (*Set, error) {
	if p.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPrecompile, p.err)
	}

	vs, err := createModule(device, p.vertex)
	if err != nil {
		return nil, err
	}
	fs, err := createModule(device, p.fragment)
	if err != nil {
		device.DestroyShaderModule(vs)
		return nil, err
	}

	return &Set{
		device:     device,
		Vertex:     Stage{Module: vs, EntryPoint: p.vertex.EntryPoint},
		Fragment:   Stage{Module: fs, EntryPoint: p.fragment.EntryPoint},
		reflection: p.reflection,
	}, nil
}

func createModule(device hal.Device, m Module) (hal.ShaderModule, error) {
	mod, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: m.Name,
		Source: hal.ShaderSource{
			SPIRV: m.SPIRV,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("shader: create %s module %q: %w", m.Kind, m.Name, err)
	}
	return mod, nil
}

// Stage is a device shader module with its entry point.
type Stage struct {
	Module     hal.ShaderModule
	EntryPoint string
}

// Set is a built shader program bound to one device.
type Set struct {
	device     hal.Device
	Vertex     Stage
	Fragment   Stage
	reflection *vertex.Layout
}

// Reflection returns the reflected vertex layout, if the program was
// precompiled with reflection.
func (s *Set) Reflection() (layout vertex.Layout, ok bool) {
	if s.reflection == nil {
		return vertex.Layout{}, false
	}
	return *s.reflection, true
}

// Destroy releases both shader modules. Safe to call more than once.
func (s *Set) Destroy() {
	if s == nil || s.device == nil {
		return
	}
	if s.Fragment.Module != nil {
		s.device.DestroyShaderModule(s.Fragment.Module)
		s.Fragment.Module = nil
	}
	if s.Vertex.Module != nil {
		s.device.DestroyShaderModule(s.Vertex.Module)
		s.Vertex.Module = nil
	}
}
