// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gogpu/rendergraph/vertex"
)

// Reflection errors.
var (
	// ErrInvalidSPIRV is returned for a malformed SPIR-V stream.
	ErrInvalidSPIRV = errors.New("shader: invalid spir-v")

	// ErrUnsupportedInput is returned when a vertex input has a type that
	// has no vertex.Format equivalent.
	ErrUnsupportedInput = errors.New("shader: unsupported vertex input type")
)

const spirvMagic = 0x07230203

// SPIR-V opcodes, decorations and enumerants used by reflection.
const (
	opEntryPoint   = 15
	opTypeInt      = 21
	opTypeFloat    = 22
	opTypeVector   = 23
	opTypePointer  = 32
	opVariable     = 59
	opDecorate     = 71
	spirvHeaderLen = 5

	decorationBuiltIn  = 11
	decorationLocation = 30

	storageClassInput = 1

	executionModelVertex   = 0
	executionModelFragment = 4
)

type entryPoint struct {
	model      uint32
	name       string
	interfaces []uint32
}

type scalarType struct {
	float  bool
	signed bool
	width  uint32
}

type vectorType struct {
	component uint32
	count     uint32
}

type pointerType struct {
	storage uint32
	elem    uint32
}

type variable struct {
	typeID  uint32
	storage uint32
}

// module is the subset of a SPIR-V module needed to describe stage inputs.
type module struct {
	entryPoints []entryPoint
	locations   map[uint32]uint32
	builtins    map[uint32]bool
	variables   map[uint32]variable
	pointers    map[uint32]pointerType
	scalars     map[uint32]scalarType
	vectors     map[uint32]vectorType
}

func parseModule(words []uint32) (*module, error) {
	if len(words) < spirvHeaderLen {
		return nil, fmt.Errorf("%w: %d words is shorter than the header", ErrInvalidSPIRV, len(words))
	}
	if words[0] != spirvMagic {
		return nil, fmt.Errorf("%w: bad magic %#08x", ErrInvalidSPIRV, words[0])
	}

	m := &module{
		locations: make(map[uint32]uint32),
		builtins:  make(map[uint32]bool),
		variables: make(map[uint32]variable),
		pointers:  make(map[uint32]pointerType),
		scalars:   make(map[uint32]scalarType),
		vectors:   make(map[uint32]vectorType),
	}

	for i := spirvHeaderLen; i < len(words); {
		count := int(words[i] >> 16)
		op := words[i] & 0xFFFF
		if count == 0 || i+count > len(words) {
			return nil, fmt.Errorf("%w: truncated instruction at word %d", ErrInvalidSPIRV, i)
		}
		args := words[i+1 : i+count]
		i += count

		switch op {
		case opEntryPoint:
			if len(args) < 3 {
				return nil, fmt.Errorf("%w: short OpEntryPoint", ErrInvalidSPIRV)
			}
			name, used := decodeString(args[2:])
			m.entryPoints = append(m.entryPoints, entryPoint{
				model:      args[0],
				name:       name,
				interfaces: args[2+used:],
			})
		case opDecorate:
			if len(args) < 3 {
				continue
			}
			switch args[1] {
			case decorationLocation:
				m.locations[args[0]] = args[2]
			case decorationBuiltIn:
				m.builtins[args[0]] = true
			}
		case opVariable:
			if len(args) >= 3 {
				m.variables[args[1]] = variable{typeID: args[0], storage: args[2]}
			}
		case opTypePointer:
			if len(args) >= 3 {
				m.pointers[args[0]] = pointerType{storage: args[1], elem: args[2]}
			}
		case opTypeFloat:
			if len(args) >= 2 {
				m.scalars[args[0]] = scalarType{float: true, signed: true, width: args[1]}
			}
		case opTypeInt:
			if len(args) >= 3 {
				m.scalars[args[0]] = scalarType{signed: args[2] != 0, width: args[1]}
			}
		case opTypeVector:
			if len(args) >= 3 {
				m.vectors[args[0]] = vectorType{component: args[1], count: args[2]}
			}
		}
	}
	return m, nil
}

// decodeString reads a nul-terminated literal string and returns it with
// the number of words it occupied.
func decodeString(words []uint32) (string, int) {
	b := make([]byte, 0, len(words)*4)
	for i, w := range words {
		for shift := 0; shift < 32; shift += 8 {
			c := byte(w >> shift)
			if c == 0 {
				return string(b), i + 1
			}
			b = append(b, c)
		}
	}
	return string(b), len(words)
}

func (m *module) entryPoint(model uint32, name string) (entryPoint, bool) {
	for _, ep := range m.entryPoints {
		if ep.model == model && ep.name == name {
			return ep, true
		}
	}
	return entryPoint{}, false
}

// format maps a SPIR-V value type to a vertex attribute format.
func (m *module) format(typeID uint32) (vertex.Format, error) {
	component, count := typeID, uint32(1)
	if v, ok := m.vectors[typeID]; ok {
		component, count = v.component, v.count
	}
	s, ok := m.scalars[component]
	if !ok || s.width != 32 || count < 1 || count > 4 {
		return vertex.FormatUndefined, fmt.Errorf("%w: type id %d", ErrUnsupportedInput, typeID)
	}

	base := vertex.Uint32
	switch {
	case s.float:
		base = vertex.Float32
	case s.signed:
		base = vertex.Sint32
	}
	return base + vertex.Format(count-1), nil //nolint:gosec // count is 1..4
}

// ReflectVertexInputs derives the vertex attribute layout consumed by the
// named vertex entry point. Built-in inputs such as the vertex index are
// skipped. Attributes are ordered by location and tightly packed.
func ReflectVertexInputs(words []uint32, entry string) (vertex.Layout, error) {
	m, err := parseModule(words)
	if err != nil {
		return vertex.Layout{}, err
	}
	ep, ok := m.entryPoint(executionModelVertex, entry)
	if !ok {
		return vertex.Layout{}, fmt.Errorf("%w: vertex %q", ErrEntryPointNotFound, entry)
	}

	var attrs []vertex.Attribute
	for _, id := range ep.interfaces {
		v, ok := m.variables[id]
		if !ok || v.storage != storageClassInput || m.builtins[id] {
			continue
		}
		loc, ok := m.locations[id]
		if !ok {
			continue
		}
		ptr, ok := m.pointers[v.typeID]
		if !ok {
			return vertex.Layout{}, fmt.Errorf("%w: variable %d has no pointer type", ErrInvalidSPIRV, id)
		}
		f, err := m.format(ptr.elem)
		if err != nil {
			return vertex.Layout{}, fmt.Errorf("location %d: %w", loc, err)
		}
		attrs = append(attrs, vertex.Attribute{Location: loc, Format: f})
	}

	sort.Slice(attrs, func(i, j int) bool { return attrs[i].Location < attrs[j].Location })

	var layout vertex.Layout
	for i := range attrs {
		attrs[i].Offset = layout.Stride
		layout.Stride += attrs[i].Format.Size()
	}
	layout.Attributes = attrs
	return layout, nil
}
