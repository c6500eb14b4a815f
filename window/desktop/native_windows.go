// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows

package desktop

import "unsafe"

// NativeHandles returns the Win32 window handle. Windows has no display
// connection, so display is zero.
func (w *Window) NativeHandles() (display, window uintptr) {
	return 0, uintptr(unsafe.Pointer(w.handle.GetWin32Window()))
}
