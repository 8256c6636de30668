// Package gpu owns the GPU-side resource lifetime machinery of the
// render world: generation-checked pools for buffers, meshes and
// materials, the deferred deletion queue that keeps frames in flight
// safe, and the per-frame instance buffer ring.
//
// The GPU itself is an external collaborator consumed through the narrow
// Device, Queue and RenderPass interfaces; resource and descriptor types
// come from gogpu/wgpu's HAL so a real wgpu device satisfies Device
// structurally.
//
// # Deletion safety
//
// A GPU resource still referenced by an in-flight command buffer must not
// be destroyed. There is no per-resource fence wait; instead every
// release routes through DeletionQueue, which holds resources for a fixed
// frame window sized to the number of frames in flight. Callers never
// invoke the native destroy entry points directly.
package gpu
