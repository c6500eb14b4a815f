// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package triangle implements the render graph node that draws one
// vertex-colored triangle.
package triangle

import (
	_ "embed"

	"github.com/gogpu/rendergraph"
	"github.com/gogpu/rendergraph/shader"
)

//go:embed shaders/triangle.vert.wgsl
var vertexWGSL []byte

//go:embed shaders/triangle.frag.wgsl
var fragmentWGSL []byte

// compiled is shared by all Resources so the embedded shaders are compiled
// once per process.
var compiled = shader.NewCache(0)

// EntryPoint is the entry function of both triangle shader stages.
const EntryPoint = "main"

// Sources returns the triangle shader sources.
func Sources() shader.Sources {
	return shader.Sources{
		Vertex: shader.Source{
			Name:       "triangle.vert",
			Code:       vertexWGSL,
			EntryPoint: EntryPoint,
			Kind:       shader.KindVertex,
			Language:   shader.LanguageWGSL,
		},
		Fragment: shader.Source{
			Name:       "triangle.frag",
			Code:       fragmentWGSL,
			EntryPoint: EntryPoint,
			Kind:       shader.KindFragment,
			Language:   shader.LanguageWGSL,
		},
	}
}

// Resources is the startup bundle shared by every triangle node: the
// precompiled shader program and whether its vertex layout was reflected.
// It is created once and never modified.
type Resources struct {
	program *shader.Program
	reflect bool
}

// NewResources precompiles the triangle shaders. With reflect the vertex
// input layout is also derived from the compiled vertex stage. A
// compilation failure is kept and reported when the node is built.
func NewResources(reflect bool) *Resources {
	return NewResourcesFrom(Sources(), reflect)
}

// NewResourcesFrom precompiles custom sources for the triangle node.
func NewResourcesFrom(src shader.Sources, reflect bool) *Resources {
	opts := []shader.Option{shader.WithCache(compiled)}
	if reflect {
		opts = append(opts, shader.WithReflection())
	}
	program := shader.Precompile(src, opts...)

	st := compiled.Stats()
	rendergraph.Logger().Debug("triangle: shader cache",
		"entries", st.Len, "hits", st.Hits, "misses", st.Misses, "evictions", st.Evictions)
	return &Resources{program: program, reflect: reflect}
}

// Program returns the precompiled shader program.
func (r *Resources) Program() *shader.Program { return r.program }

// Reflect reports whether vertex layout reflection is enabled.
func (r *Resources) Reflect() bool { return r.reflect }
