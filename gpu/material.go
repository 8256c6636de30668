package gpu

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/renderworld/cache"
	"github.com/gogpu/renderworld/pool"
)

// MaterialDescriptor describes a material instance. The bind group and
// pipeline descriptors are authored by the caller's shader/material
// system (out of scope here); this pool only owns when the GPU objects
// come into existence and when they die.
type MaterialDescriptor struct {
	Name string

	// BaseMaterial identifies the pipeline family. Instances sharing a
	// BaseMaterial share one render pipeline through the pipeline cache.
	BaseMaterial uint32

	// BindGroupDesc describes the instance's resource bindings. May be
	// nil for materials with no bindings.
	BindGroupDesc *hal.BindGroupDescriptor

	// PipelineDesc describes the pipeline family. Consulted only the
	// first time a BaseMaterial is seen. May be nil when the family's
	// pipeline is already cached.
	PipelineDesc *hal.RenderPipelineDescriptor
}

// MaterialInstance is a pooled material. BindGroup and Pipeline are nil
// until the first EnsureGPU, which batch building triggers lazily before
// first use.
type MaterialInstance struct {
	Name         string
	BaseMaterial uint32

	BindGroup hal.BindGroup
	Pipeline  hal.RenderPipeline

	bindGroupDesc *hal.BindGroupDescriptor
	pipelineDesc  *hal.RenderPipelineDescriptor
	gpuReady      bool
}

// MaterialSource resolves material references during batch building and
// drawing. MaterialPool is the in-tree implementation; renderers with
// their own material system implement this instead.
type MaterialSource interface {
	// Instance returns the material for h, or nil if h is stale.
	Instance(h pool.Handle) *MaterialInstance

	// Legacy returns the material registered under a legacy numeric id,
	// or nil.
	Legacy(id uint32) *MaterialInstance

	// EnsureGPU lazily creates the material's GPU objects. Idempotent:
	// calling it twice never duplicates GPU resources.
	EnsureGPU(h pool.Handle) error
}

// MaterialPool hands out generation-checked handles to material
// instances and owns their GPU lifetime. Pipelines are deduplicated per
// BaseMaterial through an LRU cache whose evictions feed the deletion
// queue.
type MaterialPool struct {
	device    Device
	deletions *DeletionQueue
	slots     *pool.Pool[MaterialInstance]
	pipelines *cache.Cache[uint32, hal.RenderPipeline]
	legacy    map[uint32]*MaterialInstance
}

// NewMaterialPool creates a material pool.
func NewMaterialPool(device Device, deletions *DeletionQueue) (*MaterialPool, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if deletions == nil {
		return nil, fmt.Errorf("gpu: deletion queue is nil")
	}
	p := &MaterialPool{
		device:    device,
		deletions: deletions,
		slots:     pool.New[MaterialInstance](64),
		pipelines: cache.New[uint32, hal.RenderPipeline](cache.DefaultCapacity),
		legacy:    make(map[uint32]*MaterialInstance),
	}
	p.pipelines.EvictFunc = func(_ uint32, pl hal.RenderPipeline) {
		p.deletions.QueuePipeline(pl)
	}
	return p, nil
}

// Create registers a material instance. No GPU objects are created yet;
// that happens lazily on first use.
func (p *MaterialPool) Create(desc MaterialDescriptor) pool.Handle {
	h := p.slots.Allocate()
	*p.slots.Get(h) = MaterialInstance{
		Name:          desc.Name,
		BaseMaterial:  desc.BaseMaterial,
		bindGroupDesc: desc.BindGroupDesc,
		pipelineDesc:  desc.PipelineDesc,
	}
	return h
}

// Instance returns the material for h, or nil if h is stale.
func (p *MaterialPool) Instance(h pool.Handle) *MaterialInstance {
	return p.slots.Get(h)
}

// EnsureGPU creates the material's bind group and resolves its pipeline
// through the per-BaseMaterial cache. Idempotent; a second call is a
// no-op. Stale handles are a no-op returning nil.
func (p *MaterialPool) EnsureGPU(h pool.Handle) error {
	m := p.slots.Get(h)
	if m == nil {
		return nil
	}
	return p.ensureGPU(m)
}

func (p *MaterialPool) ensureGPU(m *MaterialInstance) error {
	if m.gpuReady {
		return nil
	}

	pipeline, err := p.pipelines.GetOrCreate(m.BaseMaterial, func() (hal.RenderPipeline, error) {
		if m.pipelineDesc == nil {
			return nil, nil
		}
		return p.device.CreateRenderPipeline(m.pipelineDesc)
	})
	if err != nil {
		return fmt.Errorf("gpu: material %q pipeline: %w", m.Name, err)
	}

	var group hal.BindGroup
	if m.bindGroupDesc != nil {
		group, err = p.device.CreateBindGroup(m.bindGroupDesc)
		if err != nil {
			return fmt.Errorf("gpu: material %q bind group: %w", m.Name, err)
		}
	}

	m.Pipeline = pipeline
	m.BindGroup = group
	m.gpuReady = true
	slogger().Debug("gpu: material uploaded", "name", m.Name, "base", m.BaseMaterial)
	return nil
}

// RegisterLegacy registers a material under a legacy numeric id and
// uploads it immediately. Re-registering an id replaces the previous
// entry, routing its bind group through the deletion queue.
func (p *MaterialPool) RegisterLegacy(id uint32, desc MaterialDescriptor) error {
	m := &MaterialInstance{
		Name:          desc.Name,
		BaseMaterial:  desc.BaseMaterial,
		bindGroupDesc: desc.BindGroupDesc,
		pipelineDesc:  desc.PipelineDesc,
	}
	if err := p.ensureGPU(m); err != nil {
		return err
	}
	if prev, ok := p.legacy[id]; ok {
		p.deletions.QueueBindGroup(prev.BindGroup)
	}
	p.legacy[id] = m
	return nil
}

// Legacy returns the material registered under id, or nil.
func (p *MaterialPool) Legacy(id uint32) *MaterialInstance {
	return p.legacy[id]
}

// Release invalidates h and routes its bind group through the deletion
// queue. The pipeline stays cached; it may be shared with other
// instances of the same BaseMaterial.
func (p *MaterialPool) Release(h pool.Handle) {
	m := p.slots.Get(h)
	if m == nil {
		return
	}
	p.deletions.QueueBindGroup(m.BindGroup)
	p.slots.Free(h)
}

// Clear releases every instance, legacy entry and cached pipeline
// through the deletion queue.
func (p *MaterialPool) Clear() {
	p.slots.ForEach(func(_ pool.Handle, m *MaterialInstance) {
		p.deletions.QueueBindGroup(m.BindGroup)
	})
	p.slots.Clear()
	for _, m := range p.legacy {
		p.deletions.QueueBindGroup(m.BindGroup)
	}
	clear(p.legacy)
	p.pipelines.Clear() // EvictFunc queues each pipeline
}

// Stats returns pool occupancy.
func (p *MaterialPool) Stats() pool.Stats { return p.slots.Stats() }

// PipelineStats returns pipeline cache counters.
func (p *MaterialPool) PipelineStats() cache.Stats { return p.pipelines.Stats() }
