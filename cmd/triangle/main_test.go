// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/rendergraph/backend"
	"github.com/gogpu/rendergraph/config"
)

func TestSelectBackend(t *testing.T) {
	b, err := selectBackend("NOOP")
	require.NoError(t, err)
	assert.Equal(t, backend.NameNoop, b.Name())

	_, err = selectBackend("glide")
	assert.ErrorIs(t, err, backend.ErrBackendNotAvailable)
}

func TestRunHeadless(t *testing.T) {
	out := filepath.Join(t.TempDir(), "frame.png")
	cfg, err := config.Parse("triangle", []string{
		"-headless", "-backend", "noop", "-frames", "2",
		"-width", "64", "-height", "48", "-capture", out,
	}, nil)
	require.NoError(t, err)

	b, err := selectBackend(cfg.Backend)
	require.NoError(t, err)

	err = run(context.Background(), cfg, b)
	if err != nil && strings.Contains(err.Error(), "not yet implemented") {
		t.Skipf("Skipping: naga feature not yet implemented: %v", err)
	}
	require.NoError(t, err)

	fi, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, fi.Size())
}
