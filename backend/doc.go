// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package backend selects the native graphics API a factory is opened on.
//
// # Backend Registration
//
// Native backends are registered from build-tagged init() functions, so
// a binary only offers the APIs its target OS can run:
//
//   - "vulkan": Linux and Windows
//   - "gl": Linux and Windows (OpenGL ES)
//   - "dx12": Windows
//   - "metal": macOS
//
// The "noop" backend is always registered. It opens a device that accepts
// every call and renders nothing, which is what tests and headless checks
// use.
//
// # Backend Selection
//
// Use Default() for the preferred native backend of the platform, or Get()
// to request one by name:
//
//	b, err := backend.Get("vulkan")
//	if errors.Is(err, backend.ErrBackendNotAvailable) {
//		// not compiled in for this OS
//	}
//	instance, err := b.CreateInstance()
package backend
