// Package renderworld holds every renderable object of a frame behind
// generation-checked handles: meshes, skinned meshes, lights, cameras,
// particle emitters and sprites live in per-kind slot pools owned by a
// RenderWorld.
//
// # Frame contract
//
// One logical thread drives a strict per-frame order:
//
//	mutate proxies -> BeginFrame -> cull -> batch build -> upload ->
//	draw -> EndFrame -> process deferred deletions
//
// BeginFrame refreshes camera matrices and frustum planes, EndFrame saves
// previous-frame transforms for motion vectors and clears transient dirty
// state. Violating the order yields stale rendering, never a crash.
//
// # Handles
//
// Proxies are plain data addressed by pool.Handle. Handle misuse is safe
// by construction: lookups on stale handles return nil, mutations and
// destroys silently no-op. GPU resources referenced by proxies are owned
// by the gpu package pools and released through its deferred deletion
// queue, never destroyed directly.
//
// # Sub-packages
//
//   - pool:  the generic generational slot allocator
//   - gpu:   buffer/mesh/material pools, deferred deletion, frame ring
//   - batch: draw-batch building, instance upload and draw submission
//   - cache: the LRU cache backing pipeline deduplication
package renderworld
