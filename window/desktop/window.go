// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package desktop opens a native GLFW window for the renderer and turns
// its callbacks into window events. Importing it locks the main goroutine
// to the main OS thread, which GLFW requires.
package desktop

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gogpu/rendergraph"
	"github.com/gogpu/rendergraph/window"
)

func init() {
	runtime.LockOSThread()
}

// Config describes the window to open.
type Config struct {
	Width  int
	Height int
	Title  string
}

// Window is a GLFW window without a client graphics API; the renderer
// creates its own surface from the native handles. It must be used from
// the main goroutine.
type Window struct {
	handle  *glfw.Window
	pending []window.Event
}

// Open initializes GLFW and creates a fixed-size window.
func Open(cfg Config) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("desktop: initialize glfw: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.False)

	handle, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("desktop: create: %w", err)
	}

	w := &Window{handle: handle}
	handle.SetCloseCallback(func(*glfw.Window) {
		w.pending = append(w.pending, window.CloseRequested{})
	})
	handle.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action == glfw.Press {
			w.pending = append(w.pending, window.KeyDown{Key: translateKey(key)})
		}
	})

	rendergraph.Logger().Info("desktop: window opened", "width", cfg.Width, "height", cfg.Height, "title", cfg.Title)
	return w, nil
}

// PollEvents processes pending window system events without blocking and
// returns those received since the last call.
func (w *Window) PollEvents() []window.Event {
	glfw.PollEvents()
	events := w.pending
	w.pending = nil
	return events
}

// FramebufferSize returns the drawable size in pixels.
func (w *Window) FramebufferSize() (width, height int) {
	return w.handle.GetFramebufferSize()
}

// Close destroys the window and terminates GLFW.
func (w *Window) Close() {
	if w.handle == nil {
		return
	}
	w.handle.Destroy()
	w.handle = nil
	glfw.Terminate()
}

func translateKey(k glfw.Key) window.Key {
	switch k {
	case glfw.KeyEscape:
		return window.KeyEscape
	case glfw.KeySpace:
		return window.KeySpace
	case glfw.KeyEnter:
		return window.KeyEnter
	case glfw.KeyQ:
		return window.KeyQ
	}
	return window.KeyUnknown
}
