// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package vertex defines vertex formats, attribute layouts, and the constant
// triangle geometry drawn by the triangle node.
package vertex

import (
	"encoding/binary"
	"math"
)

// PosColor is a vertex carrying a position and an RGBA color.
// Must match the vertex inputs of the triangle vertex shader.
type PosColor struct {
	Position [3]float32 // location(0)
	Color    [4]float32 // location(1)
}

// PosColorStride is the byte stride of one PosColor vertex: 7 x float32.
const PosColorStride = 28

// TriangleVertexCount is the number of vertices in the constant triangle.
const TriangleVertexCount = 3

// triangle is the constant geometry. It is never mutated; Triangle returns
// a copy so callers cannot alter it.
var triangle = [TriangleVertexCount]PosColor{
	{Position: [3]float32{0.0, -0.5, 0.0}, Color: [4]float32{1.0, 0.0, 0.0, 1.0}},
	{Position: [3]float32{0.5, 0.5, 0.0}, Color: [4]float32{0.0, 1.0, 0.0, 1.0}},
	{Position: [3]float32{-0.5, 0.5, 0.0}, Color: [4]float32{0.0, 0.0, 1.0, 1.0}},
}

// Triangle returns the three vertices of the constant triangle.
func Triangle() [TriangleVertexCount]PosColor {
	return triangle
}

// PosColorLayout returns the static attribute layout of PosColor:
// Float32x3 position at offset 0, Float32x4 color at offset 12.
func PosColorLayout() Layout {
	return Pack(Float32x3, Float32x4)
}

// Bytes encodes vertices into their little-endian GPU representation.
// The result length is len(vertices) * PosColorStride.
func Bytes(vertices []PosColor) []byte {
	buf := make([]byte, len(vertices)*PosColorStride)
	off := 0
	for i := range vertices {
		v := &vertices[i]
		for _, f := range v.Position {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(f))
			off += 4
		}
		for _, f := range v.Color {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(f))
			off += 4
		}
	}
	return buf
}
