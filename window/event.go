// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package window defines the window events the frame loop reacts to and a
// scripted event source for headless runs. The GLFW window lives in
// package window/desktop.
package window

import "fmt"

// Event is a window event delivered by PollEvents.
type Event interface {
	event()
}

// CloseRequested is sent when the user asks to close the window.
type CloseRequested struct{}

// KeyDown is sent when a key is pressed.
type KeyDown struct {
	Key Key
}

func (CloseRequested) event() {}
func (KeyDown) event()        {}

// String returns the event name.
func (CloseRequested) String() string { return "CloseRequested" }

// String returns the event name and key.
func (e KeyDown) String() string { return fmt.Sprintf("KeyDown(%s)", e.Key) }

// Key identifies a keyboard key.
type Key int

// Keys the renderer reacts to. Others are reported as KeyUnknown.
const (
	KeyUnknown Key = iota
	KeyEscape
	KeySpace
	KeyEnter
	KeyQ
)

var keyNames = [...]string{
	KeyUnknown: "Unknown",
	KeyEscape:  "Escape",
	KeySpace:   "Space",
	KeyEnter:   "Enter",
	KeyQ:       "Q",
}

// String returns the key name.
func (k Key) String() string {
	if k >= 0 && int(k) < len(keyNames) {
		return keyNames[k]
	}
	return fmt.Sprintf("Key(%d)", int(k))
}

// IsExit reports whether ev asks the application to stop: a close request
// or the Escape key.
func IsExit(ev Event) bool {
	switch e := ev.(type) {
	case CloseRequested:
		return true
	case KeyDown:
		return e.Key == KeyEscape
	}
	return false
}

// Scripted replays a fixed sequence of event batches, one per poll. After
// the script runs out every poll returns nothing. It drives headless runs
// and tests.
type Scripted struct {
	batches [][]Event
	polls   int
}

// NewScripted returns a source that returns batches[i] on poll i.
func NewScripted(batches ...[]Event) *Scripted {
	return &Scripted{batches: batches}
}

// PollEvents returns the next batch.
func (s *Scripted) PollEvents() []Event {
	i := s.polls
	s.polls++
	if i < len(s.batches) {
		return s.batches[i]
	}
	return nil
}

// Polls returns how many times PollEvents was called.
func (s *Scripted) Polls() int { return s.polls }
