// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gogpu/naga"
)

// Compilation errors.
var (
	// ErrEmptySource is returned for a source with no code.
	ErrEmptySource = errors.New("shader: empty source")

	// ErrUnsupportedLanguage is returned for an unknown Language tag.
	ErrUnsupportedLanguage = errors.New("shader: unsupported source language")

	// ErrEntryPointNotFound is returned when the compiled module has no entry
	// point with the requested name for the requested stage.
	ErrEntryPointNotFound = errors.New("shader: entry point not found")
)

// Compile turns a source into SPIR-V words and verifies that the entry
// point exists for the source's stage.
func Compile(src Source) ([]uint32, error) {
	if len(src.Code) == 0 {
		return nil, fmt.Errorf("%s: %w", src.Name, ErrEmptySource)
	}

	var words []uint32
	switch src.Language {
	case LanguageWGSL:
		spirvBytes, err := naga.Compile(string(src.Code))
		if err != nil {
			return nil, fmt.Errorf("%s: compile wgsl: %w", src.Name, err)
		}
		words, err = bytesToWords(spirvBytes)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.Name, err)
		}
	case LanguageSPIRV:
		var err error
		words, err = bytesToWords(src.Code)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.Name, err)
		}
	default:
		return nil, fmt.Errorf("%s: %w: %s", src.Name, ErrUnsupportedLanguage, src.Language)
	}

	m, err := parseModule(words)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Name, err)
	}
	if _, ok := m.entryPoint(src.Kind.executionModel(), src.EntryPoint); !ok {
		return nil, fmt.Errorf("%s: %w: %s %q", src.Name, ErrEntryPointNotFound, src.Kind, src.EntryPoint)
	}
	return words, nil
}

// bytesToWords converts a little-endian SPIR-V byte stream to 32-bit words.
func bytesToWords(b []byte) ([]uint32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("%w: length %d is not a multiple of 4", ErrInvalidSPIRV, len(b))
	}
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return words, nil
}
