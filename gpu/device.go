package gpu

import (
	"errors"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Device errors.
var (
	// ErrNilDevice is returned when a pool is constructed without a device.
	ErrNilDevice = errors.New("gpu: device is nil")

	// ErrNilQueue is returned when a component needing uploads is
	// constructed without a queue.
	ErrNilQueue = errors.New("gpu: queue is nil")

	// ErrInvalidBufferSize is returned when a buffer size is zero.
	ErrInvalidBufferSize = errors.New("gpu: invalid buffer size")
)

// Device is the narrow GPU capability this package consumes. Its method
// set is a structural subset of hal.Device, so any wgpu HAL device
// satisfies it unchanged; tests substitute in-memory doubles.
//
// Destroy* entry points exist for the DeletionQueue alone. Everything
// else in this module routes releases through the queue.
type Device interface {
	CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error)
	DestroyBuffer(buffer hal.Buffer)

	CreateTexture(desc *hal.TextureDescriptor) (hal.Texture, error)
	DestroyTexture(texture hal.Texture)

	CreateBindGroup(desc *hal.BindGroupDescriptor) (hal.BindGroup, error)
	DestroyBindGroup(group hal.BindGroup)

	CreateRenderPipeline(desc *hal.RenderPipelineDescriptor) (hal.RenderPipeline, error)
	DestroyRenderPipeline(pipeline hal.RenderPipeline)
}

// Queue is the upload capability, a structural subset of hal.Queue.
type Queue interface {
	WriteBuffer(buffer hal.Buffer, offset uint64, data []byte)
}

// RenderPass is the draw-recording capability the batch renderer drives.
// It mirrors the wgpu render pass encoder surface this module needs;
// adapting a concrete encoder is the caller's concern.
type RenderPass interface {
	SetPipeline(pipeline hal.RenderPipeline)
	SetBindGroup(index uint32, group hal.BindGroup, dynamicOffsets []uint32)
	SetVertexBuffer(slot uint32, buffer hal.Buffer, offset uint64)
	SetIndexBuffer(buffer hal.Buffer, format gputypes.IndexFormat, offset uint64)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
}
