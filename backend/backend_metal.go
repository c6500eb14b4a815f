// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build darwin

package backend

import (
	"github.com/gogpu/gputypes"

	_ "github.com/gogpu/wgpu/hal/metal"
)

func init() {
	registerHAL(NameMetal, gputypes.BackendMetal)
}
