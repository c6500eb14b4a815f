// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

import (
	"context"
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/rendergraph/window"
)

// mockDevice implements gpucontext.Device and records polls.
type mockDevice struct {
	polls []bool
	err   error
}

func (m *mockDevice) Poll(wait bool) { m.polls = append(m.polls, wait) }
func (m *mockDevice) Destroy()       {}

// plainDevice implements gpucontext.Device without reporting errors.
type plainDevice struct {
	polls int
}

func (m *plainDevice) Poll(bool) { m.polls++ }
func (m *plainDevice) Destroy()  {}

// erringDevice reports the configured error after every poll.
type erringDevice struct {
	mockDevice
}

func (m *erringDevice) Err() error { return m.err }

// mockProvider implements gpucontext.DeviceProvider for testing.
type mockProvider struct {
	device gpucontext.Device
}

func (m *mockProvider) Device() gpucontext.Device             { return m.device }
func (m *mockProvider) Queue() gpucontext.Queue               { return nil }
func (m *mockProvider) Adapter() gpucontext.Adapter           { return nil }
func (m *mockProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }

func TestDeviceMaintainerPollsWithoutWaiting(t *testing.T) {
	dev := &erringDevice{}
	m := DeviceMaintainer(&mockProvider{device: dev})

	require.NoError(t, m.Maintain())
	require.NoError(t, m.Maintain())
	assert.Equal(t, []bool{false, false}, dev.polls)
}

func TestDeviceMaintainerReportsPollError(t *testing.T) {
	lost := errors.New("device lost")
	dev := &erringDevice{mockDevice{err: lost}}
	assert.ErrorIs(t, DeviceMaintainer(&mockProvider{device: dev}).Maintain(), lost)
}

func TestDeviceMaintainerWithoutErr(t *testing.T) {
	dev := &plainDevice{}
	require.NoError(t, DeviceMaintainer(&mockProvider{device: dev}).Maintain())
	assert.Equal(t, 1, dev.polls)
}

func TestLoopWithDeviceMaintainer(t *testing.T) {
	dev := &erringDevice{}
	r := &recorder{}
	var reports []Summary
	events := window.NewScripted(nil, nil, []window.Event{window.CloseRequested{}})

	l := New(events, DeviceMaintainer(&mockProvider{device: dev}), r,
		WithClock(newFakeClock(0)),
		WithReporter(ReporterFunc(func(s Summary) { reports = append(reports, s) })),
	)
	s, err := l.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, uint64(2), s.Frames)
	assert.Len(t, dev.polls, 2, "one poll per rendered frame")
	assert.Len(t, reports, 1)
}
