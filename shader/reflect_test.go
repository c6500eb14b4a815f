// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/rendergraph/vertex"
)

// spirvAsm assembles a minimal SPIR-V word stream for reflection tests.
type spirvAsm struct {
	words []uint32
}

func newSPIRVAsm() *spirvAsm {
	return &spirvAsm{words: []uint32{spirvMagic, 0x00010000, 0, 100, 0}}
}

func (a *spirvAsm) op(code uint32, args ...uint32) *spirvAsm {
	a.words = append(a.words, uint32(len(args)+1)<<16|code)
	a.words = append(a.words, args...)
	return a
}

func encodeString(s string) []uint32 {
	b := append([]byte(s), 0)
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	out := make([]uint32, len(b)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return out
}

func (a *spirvAsm) entryPoint(model, id uint32, name string, interfaces ...uint32) *spirvAsm {
	args := append([]uint32{model, id}, encodeString(name)...)
	return a.op(opEntryPoint, append(args, interfaces...)...)
}

func (a *spirvAsm) bytes() []byte {
	out := make([]byte, len(a.words)*4)
	for i, w := range a.words {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}

// posColorModule mirrors what a compiler emits for a vertex shader taking
// vec3 position at location 0, vec4 color at location 1 and the built-in
// vertex index. Inputs are declared in reverse order on purpose.
func posColorModule(entry string) *spirvAsm {
	const (
		idMain     = 1
		idFloat    = 2
		idVec3     = 3
		idVec4     = 4
		idPtrVec3  = 5
		idPtrVec4  = 6
		idColor    = 7
		idPosition = 8
		idUint     = 9
		idPtrUint  = 10
		idIndex    = 11
		idOut      = 12
		idPtrOut   = 13
	)
	return newSPIRVAsm().
		entryPoint(executionModelVertex, idMain, entry, idColor, idPosition, idIndex, idOut).
		op(opDecorate, idColor, decorationLocation, 1).
		op(opDecorate, idPosition, decorationLocation, 0).
		op(opDecorate, idIndex, decorationBuiltIn, 42).
		op(opDecorate, idOut, decorationLocation, 0).
		op(opTypeFloat, idFloat, 32).
		op(opTypeVector, idVec3, idFloat, 3).
		op(opTypeVector, idVec4, idFloat, 4).
		op(opTypeInt, idUint, 32, 0).
		op(opTypePointer, idPtrVec3, storageClassInput, idVec3).
		op(opTypePointer, idPtrVec4, storageClassInput, idVec4).
		op(opTypePointer, idPtrUint, storageClassInput, idUint).
		op(opTypePointer, idPtrOut, 3, idVec4).
		op(opVariable, idPtrVec4, idColor, storageClassInput).
		op(opVariable, idPtrVec3, idPosition, storageClassInput).
		op(opVariable, idPtrUint, idIndex, storageClassInput).
		op(opVariable, idPtrOut, idOut, 3)
}

func TestReflectVertexInputs(t *testing.T) {
	layout, err := ReflectVertexInputs(posColorModule("main").words, "main")
	require.NoError(t, err)

	assert.Equal(t, vertex.PosColorLayout(), layout)
	assert.EqualValues(t, vertex.PosColorStride, layout.Stride)
}

func TestReflectVertexInputsIntegerTypes(t *testing.T) {
	m := newSPIRVAsm().
		entryPoint(executionModelVertex, 1, "vs", 20, 21).
		op(opDecorate, 20, decorationLocation, 0).
		op(opDecorate, 21, decorationLocation, 1).
		op(opTypeInt, 2, 32, 1).
		op(opTypeInt, 3, 32, 0).
		op(opTypeVector, 4, 3, 2).
		op(opTypePointer, 5, storageClassInput, 2).
		op(opTypePointer, 6, storageClassInput, 4).
		op(opVariable, 5, 20, storageClassInput).
		op(opVariable, 6, 21, storageClassInput)

	layout, err := ReflectVertexInputs(m.words, "vs")
	require.NoError(t, err)
	assert.Equal(t, vertex.Pack(vertex.Sint32, vertex.Uint32x2), layout)
}

func TestReflectVertexInputsErrors(t *testing.T) {
	t.Run("bad magic", func(t *testing.T) {
		_, err := ReflectVertexInputs([]uint32{1, 2, 3, 4, 5}, "main")
		assert.ErrorIs(t, err, ErrInvalidSPIRV)
	})
	t.Run("short header", func(t *testing.T) {
		_, err := ReflectVertexInputs([]uint32{spirvMagic}, "main")
		assert.ErrorIs(t, err, ErrInvalidSPIRV)
	})
	t.Run("truncated instruction", func(t *testing.T) {
		words := append(newSPIRVAsm().words, 10<<16|opDecorate, 1)
		_, err := ReflectVertexInputs(words, "main")
		assert.ErrorIs(t, err, ErrInvalidSPIRV)
	})
	t.Run("missing entry point", func(t *testing.T) {
		_, err := ReflectVertexInputs(posColorModule("main").words, "vs_main")
		assert.ErrorIs(t, err, ErrEntryPointNotFound)
	})
	t.Run("fragment entry is not a vertex entry", func(t *testing.T) {
		m := newSPIRVAsm().entryPoint(executionModelFragment, 1, "main")
		_, err := ReflectVertexInputs(m.words, "main")
		assert.ErrorIs(t, err, ErrEntryPointNotFound)
	})
	t.Run("64-bit float input", func(t *testing.T) {
		m := newSPIRVAsm().
			entryPoint(executionModelVertex, 1, "main", 10).
			op(opDecorate, 10, decorationLocation, 0).
			op(opTypeFloat, 2, 64).
			op(opTypePointer, 3, storageClassInput, 2).
			op(opVariable, 3, 10, storageClassInput)
		_, err := ReflectVertexInputs(m.words, "main")
		assert.ErrorIs(t, err, ErrUnsupportedInput)
	})
}

func TestDecodeString(t *testing.T) {
	tests := []string{"", "abc", "main", "vs_main_entry"}
	for _, s := range tests {
		words := encodeString(s)
		got, used := decodeString(append(words, 0xDEADBEEF))
		assert.Equal(t, s, got)
		assert.Equal(t, len(words), used)
	}
}
