// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build darwin

package desktop

// NativeHandles returns the NSWindow handle. macOS has no display
// connection, so display is zero.
func (w *Window) NativeHandles() (display, window uintptr) {
	return 0, w.handle.GetCocoaWindow()
}
