package batch

import (
	"errors"
	"log/slog"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/renderworld/gpu"
	"github.com/gogpu/renderworld/pool"
)

// Vertex buffer slot assignment shared by all batch pipelines: geometry
// at slot 0, per-instance data at slot 1, bone matrices at slot 2.
const (
	slotGeometry  = 0
	slotInstances = 1
	slotBones     = 2
)

// Renderer errors.
var (
	// ErrNilBuilder is returned when a renderer is constructed without
	// a builder.
	ErrNilBuilder = errors.New("batch: builder is nil")

	// ErrNilFrameRing is returned when a renderer is constructed
	// without a frame ring.
	ErrNilFrameRing = errors.New("batch: frame ring is nil")

	// ErrNoFrameBuffer is returned when the frame ring cannot supply an
	// instance buffer.
	ErrNoFrameBuffer = errors.New("batch: no instance buffer for frame")
)

// BufferSource resolves buffer handles to live GPU buffers.
// gpu.BufferPool satisfies it.
type BufferSource interface {
	Get(h pool.Handle) *gpu.GPUBuffer
}

// RenderStats counts the work one Render call recorded. Bind counts
// against batch counts make redundant state switching visible: a
// renderer binding once per batch instead of once per state change has a
// performance bug even though it draws correctly.
type RenderStats struct {
	Batches        int
	Instances      int
	DrawCalls      int
	PipelineBinds  int
	BindGroupBinds int
	MeshBinds      int
	BoneBinds      int
	Skipped        int
}

// RendererConfig configures a Renderer.
type RendererConfig struct {
	Builder   *Builder
	Meshes    MeshSource
	Buffers   BufferSource
	Materials gpu.MaterialSource
	Ring      *gpu.FrameRing
	Queue     gpu.Queue
}

// Renderer uploads the builder's instance data and records the frame's
// instanced draws, switching pipeline, bind group and mesh state only
// when a batch actually changes them.
type Renderer struct {
	builder   *Builder
	meshes    MeshSource
	buffers   BufferSource
	materials gpu.MaterialSource
	ring      *gpu.FrameRing
	queue     gpu.Queue
}

// NewRenderer creates a renderer over the builder's output.
func NewRenderer(cfg RendererConfig) (*Renderer, error) {
	switch {
	case cfg.Builder == nil:
		return nil, ErrNilBuilder
	case cfg.Meshes == nil:
		return nil, ErrNilMeshSource
	case cfg.Materials == nil:
		return nil, ErrNilMaterialSource
	case cfg.Buffers == nil:
		return nil, errors.New("batch: buffer source is nil")
	case cfg.Ring == nil:
		return nil, ErrNilFrameRing
	case cfg.Queue == nil:
		return nil, gpu.ErrNilQueue
	}
	return &Renderer{
		builder:   cfg.Builder,
		meshes:    cfg.Meshes,
		buffers:   cfg.Buffers,
		materials: cfg.Materials,
		ring:      cfg.Ring,
		queue:     cfg.Queue,
	}, nil
}

// PrepareGPU uploads the last build's instance records into the frame's
// ring buffer. One upload per frame; the ring keeps writes off buffers
// the GPU may still read.
func (r *Renderer) PrepareGPU(frameIndex uint64) error {
	data := r.builder.InstanceBytes()
	if len(data) == 0 {
		return nil
	}
	buf := r.ring.Buffer(frameIndex)
	if buf == nil {
		return ErrNoFrameBuffer
	}
	if uint64(len(data)) > buf.Size {
		slogger().Warn("batch: instance data exceeds frame buffer",
			slog.Int("bytes", len(data)), slog.Uint64("capacity", buf.Size))
		// Clip on an instance boundary so the last record is never torn.
		data = data[:buf.Size-buf.Size%InstanceStride]
	}
	r.queue.WriteBuffer(buf.Raw, 0, data)
	return nil
}

// Render records one indexed-instanced draw per batch, in batch order.
// With zero batches it binds nothing. Batches whose references went
// stale between build and draw are skipped.
func (r *Renderer) Render(pass gpu.RenderPass, frameIndex uint64) RenderStats {
	var stats RenderStats
	batches := r.builder.Batches()
	if len(batches) == 0 {
		return stats
	}
	instances := r.ring.Buffer(frameIndex)
	if instances == nil {
		return stats
	}

	var (
		lastPipeline  hal.RenderPipeline
		lastBindGroup hal.BindGroup
		lastMesh      = pool.Invalid
		lastBones     = pool.Invalid
		instancesSet  bool
	)

	for i := range batches {
		batch := &batches[i]

		var mat *gpu.MaterialInstance
		if batch.Legacy {
			mat = r.materials.Legacy(batch.LegacyID)
		} else {
			mat = r.materials.Instance(batch.Material)
		}
		mesh := r.meshes.Get(batch.Mesh)
		if mat == nil || mesh == nil {
			stats.Skipped++
			continue
		}
		vb := r.buffers.Get(mesh.VertexBuffer)
		ib := r.buffers.Get(mesh.IndexBuffer)
		if vb == nil || ib == nil {
			stats.Skipped++
			continue
		}

		if mat.Pipeline != lastPipeline {
			pass.SetPipeline(mat.Pipeline)
			lastPipeline = mat.Pipeline
			stats.PipelineBinds++
		}
		if mat.BindGroup != lastBindGroup {
			pass.SetBindGroup(0, mat.BindGroup, nil)
			lastBindGroup = mat.BindGroup
			stats.BindGroupBinds++
		}
		if !instancesSet {
			pass.SetVertexBuffer(slotInstances, instances.Raw, 0)
			instancesSet = true
		}
		if batch.Mesh != lastMesh {
			pass.SetVertexBuffer(slotGeometry, vb.Raw, 0)
			pass.SetIndexBuffer(ib.Raw, mesh.IndexFormat, 0)
			lastMesh = batch.Mesh
			stats.MeshBinds++
		}
		if batch.Skinned && batch.BoneBuffer != lastBones {
			if bones := r.buffers.Get(batch.BoneBuffer); bones != nil {
				pass.SetVertexBuffer(slotBones, bones.Raw, 0)
				lastBones = batch.BoneBuffer
				stats.BoneBinds++
			}
		}

		pass.DrawIndexed(mesh.IndexCount, batch.InstanceCount, 0, 0, batch.FirstInstance)
		stats.DrawCalls++
		stats.Batches++
		stats.Instances += int(batch.InstanceCount)
	}
	return stats
}
