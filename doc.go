// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package rendergraph is a minimal frame-graph renderer built on the gogpu
// hardware abstraction layer.
//
// # Overview
//
// A render graph is assembled from nodes, each of which is a graphics
// pipeline description. Building the graph compiles every node against a
// [factory.Factory] and a presentation target. Running the graph records a
// render pass per node, submits it, and presents the target.
//
// The sample application in cmd/triangle draws one vertex-colored triangle
// to a window, or to an offscreen texture in headless mode.
//
// # Packages
//
//   - backend: native graphics API registry
//   - vertex: attribute formats, layouts and the triangle geometry
//   - shader: WGSL/SPIR-V compilation and vertex input reflection
//   - factory: device ownership, buffers, submission and presentation targets
//   - graph: nodes, pipelines, and the built graph
//   - triangle: the triangle pipeline node
//   - window: window events and a scripted event source
//   - window/desktop: the GLFW window and its native handles
//   - frame: the event-poll / maintain / render loop
//   - config: TOML and flag configuration for the sample
//
// # Logging
//
// All packages log through the logger installed with [SetLogger]. The
// default logger discards everything.
package rendergraph
