package gpu

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"
)

// DefaultDeferFrames is the default deletion defer window. It matches
// the default frame-in-flight count: a resource queued at frame f is
// destroyed no earlier than frame f+3, by which point no submitted
// command buffer can still reference it.
const DefaultDeferFrames = 3

// ResourceKind tags the payload of a deletion queue entry. Deletion
// dispatch is a switch over this closed set, not virtual dispatch.
type ResourceKind uint8

const (
	// ResourceBuffer is a hal.Buffer.
	ResourceBuffer ResourceKind = iota
	// ResourceTexture is a hal.Texture.
	ResourceTexture
	// ResourceBindGroup is a hal.BindGroup.
	ResourceBindGroup
	// ResourcePipeline is a hal.RenderPipeline.
	ResourcePipeline
)

// String returns the string representation of ResourceKind.
func (k ResourceKind) String() string {
	switch k {
	case ResourceBuffer:
		return "Buffer"
	case ResourceTexture:
		return "Texture"
	case ResourceBindGroup:
		return "BindGroup"
	case ResourcePipeline:
		return "Pipeline"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// deletionEntry is a tagged union: kind selects which payload field is
// live.
type deletionEntry struct {
	kind        ResourceKind
	queuedFrame uint64

	buffer    hal.Buffer
	texture   hal.Texture
	bindGroup hal.BindGroup
	pipeline  hal.RenderPipeline
}

// DeletionStats contains deletion queue counters.
type DeletionStats struct {
	// Pending is the number of entries awaiting a safe frame distance.
	Pending int

	// Destroyed is the total number of resources destroyed so far.
	Destroyed uint64
}

// DeletionQueue defers destruction of GPU resources until a fixed frame
// distance has elapsed, so resources referenced by in-flight command
// buffers are never freed under the GPU.
//
// Queue* record the resource against the current frame; ProcessDeletions
// advances the frame and destroys entries old enough to be safe.
// Pending order is irrelevant, so removal swaps with the last entry.
type DeletionQueue struct {
	device      Device
	deferFrames uint64
	frame       uint64
	pending     []deletionEntry
	destroyed   uint64
}

// NewDeletionQueue creates a queue destroying resources deferFrames
// frames after they are queued. If deferFrames <= 0,
// DefaultDeferFrames is used.
func NewDeletionQueue(device Device, deferFrames int) *DeletionQueue {
	if deferFrames <= 0 {
		deferFrames = DefaultDeferFrames
	}
	return &DeletionQueue{
		device:      device,
		deferFrames: uint64(deferFrames),
	}
}

// DeferFrames returns the configured defer window.
func (q *DeletionQueue) DeferFrames() int { return int(q.deferFrames) }

// QueueBuffer schedules a buffer for deferred destruction.
func (q *DeletionQueue) QueueBuffer(buffer hal.Buffer) {
	if buffer == nil {
		return
	}
	q.pending = append(q.pending, deletionEntry{
		kind:        ResourceBuffer,
		queuedFrame: q.frame,
		buffer:      buffer,
	})
}

// QueueTexture schedules a texture for deferred destruction.
func (q *DeletionQueue) QueueTexture(texture hal.Texture) {
	if texture == nil {
		return
	}
	q.pending = append(q.pending, deletionEntry{
		kind:        ResourceTexture,
		queuedFrame: q.frame,
		texture:     texture,
	})
}

// QueueBindGroup schedules a bind group for deferred destruction.
func (q *DeletionQueue) QueueBindGroup(group hal.BindGroup) {
	if group == nil {
		return
	}
	q.pending = append(q.pending, deletionEntry{
		kind:        ResourceBindGroup,
		queuedFrame: q.frame,
		bindGroup:   group,
	})
}

// QueuePipeline schedules a render pipeline for deferred destruction.
func (q *DeletionQueue) QueuePipeline(pipeline hal.RenderPipeline) {
	if pipeline == nil {
		return
	}
	q.pending = append(q.pending, deletionEntry{
		kind:        ResourcePipeline,
		queuedFrame: q.frame,
		pipeline:    pipeline,
	})
}

// ProcessDeletions destroys every pending resource queued at least the
// defer window ago, measured against currentFrame, and records
// currentFrame as the frame for subsequently queued resources. Call once
// per frame after submission.
func (q *DeletionQueue) ProcessDeletions(currentFrame uint64) {
	q.frame = currentFrame
	for i := 0; i < len(q.pending); {
		e := &q.pending[i]
		if currentFrame-e.queuedFrame < q.deferFrames {
			i++
			continue
		}
		q.destroy(e)
		// Swap-with-last removal; order among pending entries is
		// irrelevant.
		last := len(q.pending) - 1
		q.pending[i] = q.pending[last]
		q.pending[last] = deletionEntry{}
		q.pending = q.pending[:last]
	}
}

// FlushAll immediately destroys every pending entry regardless of age.
// Valid only when the GPU is known idle (shutdown path).
func (q *DeletionQueue) FlushAll() {
	n := len(q.pending)
	for i := range q.pending {
		q.destroy(&q.pending[i])
		q.pending[i] = deletionEntry{}
	}
	q.pending = q.pending[:0]
	if n > 0 {
		slogger().Info("gpu: deletion queue flushed", "entries", n)
	}
}

// Stats returns current queue counters.
func (q *DeletionQueue) Stats() DeletionStats {
	return DeletionStats{Pending: len(q.pending), Destroyed: q.destroyed}
}

// destroy dispatches to the native destroy entry point for the entry's
// kind.
func (q *DeletionQueue) destroy(e *deletionEntry) {
	switch e.kind {
	case ResourceBuffer:
		q.device.DestroyBuffer(e.buffer)
	case ResourceTexture:
		q.device.DestroyTexture(e.texture)
	case ResourceBindGroup:
		q.device.DestroyBindGroup(e.bindGroup)
	case ResourcePipeline:
		q.device.DestroyRenderPipeline(e.pipeline)
	}
	q.destroyed++
	slogger().Debug("gpu: destroyed deferred resource",
		"kind", e.kind.String(),
		"queuedFrame", e.queuedFrame,
		"frame", q.frame)
}
