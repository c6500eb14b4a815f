// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build linux || windows

package backend

import (
	"github.com/gogpu/gputypes"

	_ "github.com/gogpu/wgpu/hal/vulkan"
)

func init() {
	registerHAL(NameVulkan, gputypes.BackendVulkan)
}
