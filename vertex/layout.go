// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vertex

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
)

// ErrLayoutMismatch is returned when two sources of vertex layout (static
// declaration and shader reflection) disagree for the same shader input.
// This is a configuration defect, never a recoverable condition.
var ErrLayoutMismatch = errors.New("vertex: layout mismatch")

// Format is the data type of a single vertex attribute.
type Format uint8

// Supported attribute formats.
const (
	FormatUndefined Format = iota
	Float32
	Float32x2
	Float32x3
	Float32x4
	Uint32
	Uint32x2
	Uint32x3
	Uint32x4
	Sint32
	Sint32x2
	Sint32x3
	Sint32x4
)

var formatNames = [...]string{
	FormatUndefined: "undefined",
	Float32:         "float32",
	Float32x2:       "float32x2",
	Float32x3:       "float32x3",
	Float32x4:       "float32x4",
	Uint32:          "uint32",
	Uint32x2:        "uint32x2",
	Uint32x3:        "uint32x3",
	Uint32x4:        "uint32x4",
	Sint32:          "sint32",
	Sint32x2:        "sint32x2",
	Sint32x3:        "sint32x3",
	Sint32x4:        "sint32x4",
}

// String returns the WebGPU name of the format.
func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

// Components returns the number of 32-bit components, or 0 if undefined.
func (f Format) Components() int {
	if f == FormatUndefined || int(f) >= len(formatNames) {
		return 0
	}
	return int(f-1)%4 + 1
}

// Size returns the byte size of one attribute of this format.
func (f Format) Size() uint64 {
	return uint64(f.Components()) * 4
}

// GPU returns the gputypes vertex format for f.
func (f Format) GPU() gputypes.VertexFormat {
	switch f {
	case Float32:
		return gputypes.VertexFormatFloat32
	case Float32x2:
		return gputypes.VertexFormatFloat32x2
	case Float32x3:
		return gputypes.VertexFormatFloat32x3
	case Float32x4:
		return gputypes.VertexFormatFloat32x4
	case Uint32:
		return gputypes.VertexFormatUint32
	case Uint32x2:
		return gputypes.VertexFormatUint32x2
	case Uint32x3:
		return gputypes.VertexFormatUint32x3
	case Uint32x4:
		return gputypes.VertexFormatUint32x4
	case Sint32:
		return gputypes.VertexFormatSint32
	case Sint32x2:
		return gputypes.VertexFormatSint32x2
	case Sint32x3:
		return gputypes.VertexFormatSint32x3
	case Sint32x4:
		return gputypes.VertexFormatSint32x4
	}
	return gputypes.VertexFormat(0)
}

// Attribute is one vertex attribute within a Layout.
type Attribute struct {
	Location uint32
	Format   Format
	Offset   uint64
}

// Layout describes the attributes of one per-vertex buffer.
type Layout struct {
	Stride     uint64
	Attributes []Attribute
}

// Pack builds a tightly packed layout, assigning locations 0..n-1 and
// consecutive offsets in argument order.
func Pack(formats ...Format) Layout {
	l := Layout{Attributes: make([]Attribute, 0, len(formats))}
	for i, f := range formats {
		l.Attributes = append(l.Attributes, Attribute{
			Location: uint32(i), //nolint:gosec // attribute count is tiny
			Format:   f,
			Offset:   l.Stride,
		})
		l.Stride += f.Size()
	}
	return l
}

// Equal reports whether both layouts have the same stride and attributes.
func (l Layout) Equal(o Layout) bool {
	if l.Stride != o.Stride || len(l.Attributes) != len(o.Attributes) {
		return false
	}
	for i := range l.Attributes {
		if l.Attributes[i] != o.Attributes[i] {
			return false
		}
	}
	return true
}

// Check returns an error wrapping ErrLayoutMismatch if o differs from l.
func (l Layout) Check(o Layout) error {
	if l.Equal(o) {
		return nil
	}
	return fmt.Errorf("%w: want %s, got %s", ErrLayoutMismatch, l, o)
}

// String formats the layout as "stride=28 [0:float32x3@0 1:float32x4@12]".
func (l Layout) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "stride=%d [", l.Stride)
	for i, a := range l.Attributes {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d:%s@%d", a.Location, a.Format, a.Offset)
	}
	b.WriteByte(']')
	return b.String()
}

// BufferLayout converts the layout into a per-vertex gputypes buffer layout.
func (l Layout) BufferLayout() gputypes.VertexBufferLayout {
	attrs := make([]gputypes.VertexAttribute, len(l.Attributes))
	for i, a := range l.Attributes {
		attrs[i] = gputypes.VertexAttribute{
			Format:         a.Format.GPU(),
			Offset:         a.Offset,
			ShaderLocation: a.Location,
		}
	}
	return gputypes.VertexBufferLayout{
		ArrayStride: l.Stride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes:  attrs,
	}
}
