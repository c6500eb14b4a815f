// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import "fmt"

// Kind is the pipeline stage a shader source targets.
type Kind uint8

// Shader stages used by graphics pipelines.
const (
	KindVertex Kind = iota
	KindFragment
)

// String returns the stage name.
func (k Kind) String() string {
	switch k {
	case KindVertex:
		return "vertex"
	case KindFragment:
		return "fragment"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// executionModel returns the SPIR-V execution model for the stage.
func (k Kind) executionModel() uint32 {
	if k == KindFragment {
		return executionModelFragment
	}
	return executionModelVertex
}

// Language tags the source text format.
type Language uint8

// Source languages accepted by Compile.
const (
	// LanguageWGSL is WebGPU Shading Language text, compiled with naga.
	LanguageWGSL Language = iota

	// LanguageSPIRV is an already compiled little-endian SPIR-V binary.
	LanguageSPIRV
)

// String returns the language tag.
func (l Language) String() string {
	switch l {
	case LanguageWGSL:
		return "wgsl"
	case LanguageSPIRV:
		return "spirv"
	}
	return fmt.Sprintf("Language(%d)", uint8(l))
}

// Source is one shader source text together with the metadata needed to
// compile it into a pipeline stage.
type Source struct {
	// Name is a debug label, e.g. "triangle.vert".
	Name string

	// Code is WGSL text or SPIR-V binary depending on Language.
	Code []byte

	// EntryPoint is the name of the stage entry function.
	EntryPoint string

	Kind     Kind
	Language Language
}

// Sources is the vertex and fragment source pair of one program.
type Sources struct {
	Vertex   Source
	Fragment Source
}
