package gpu

import (
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// NullDevice is an in-memory Device and Queue with no GPU behind it.
// Buffers are plain byte slices, so uploads are observable and the full
// frame loop runs headless. Used by tests and by tooling that exercises
// world and batching logic without a swapchain.
type NullDevice struct {
	nextID uint64

	buffersCreated    atomic.Uint64
	buffersDestroyed  atomic.Uint64
	texturesCreated   atomic.Uint64
	texturesDestroyed atomic.Uint64
	groupsCreated     atomic.Uint64
	groupsDestroyed   atomic.Uint64
	pipelinesCreated  atomic.Uint64
	pipelinesDestroy  atomic.Uint64
	writes            atomic.Uint64
	bytesWritten      atomic.Uint64

	// FailBufferCreate forces the next CreateBuffer calls to fail.
	FailBufferCreate bool
}

// NullDeviceStats is a snapshot of the device's counters.
type NullDeviceStats struct {
	BuffersCreated     uint64
	BuffersDestroyed   uint64
	TexturesCreated    uint64
	TexturesDestroyed  uint64
	BindGroupsCreated  uint64
	BindGroupsDestroy  uint64
	PipelinesCreated   uint64
	PipelinesDestroyed uint64
	Writes             uint64
	BytesWritten       uint64
}

// NewNullDevice creates a headless device.
func NewNullDevice() *NullDevice {
	return &NullDevice{}
}

var (
	_ Device = (*NullDevice)(nil)
	_ Queue  = (*NullDevice)(nil)
)

func (d *NullDevice) newID() uint64 {
	d.nextID++
	return d.nextID
}

func (d *NullDevice) CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error) {
	if d.FailBufferCreate {
		return nil, ErrInvalidBufferSize
	}
	d.buffersCreated.Add(1)
	return &nullBuffer{
		id:    d.newID(),
		label: desc.Label,
		data:  make([]byte, desc.Size),
	}, nil
}

func (d *NullDevice) DestroyBuffer(buffer hal.Buffer) {
	d.buffersDestroyed.Add(1)
	if buffer != nil {
		buffer.Destroy()
	}
}

func (d *NullDevice) CreateTexture(desc *hal.TextureDescriptor) (hal.Texture, error) {
	d.texturesCreated.Add(1)
	return &nullTexture{id: d.newID(), label: desc.Label}, nil
}

func (d *NullDevice) DestroyTexture(texture hal.Texture) {
	d.texturesDestroyed.Add(1)
	if texture != nil {
		texture.Destroy()
	}
}

func (d *NullDevice) CreateBindGroup(desc *hal.BindGroupDescriptor) (hal.BindGroup, error) {
	d.groupsCreated.Add(1)
	return &nullBindGroup{id: d.newID(), label: desc.Label}, nil
}

func (d *NullDevice) DestroyBindGroup(group hal.BindGroup) {
	d.groupsDestroyed.Add(1)
	if bg, ok := group.(*nullBindGroup); ok {
		bg.Destroy()
	}
}

func (d *NullDevice) CreateRenderPipeline(desc *hal.RenderPipelineDescriptor) (hal.RenderPipeline, error) {
	d.pipelinesCreated.Add(1)
	return &nullPipeline{id: d.newID(), label: desc.Label}, nil
}

func (d *NullDevice) DestroyRenderPipeline(pipeline hal.RenderPipeline) {
	d.pipelinesDestroy.Add(1)
	if p, ok := pipeline.(*nullPipeline); ok {
		p.Destroy()
	}
}

// WriteBuffer copies data into the backing slice, clipped to the buffer
// size the way a real queue clips out-of-range writes.
func (d *NullDevice) WriteBuffer(buffer hal.Buffer, offset uint64, data []byte) {
	b, ok := buffer.(*nullBuffer)
	if !ok || b.destroyed {
		return
	}
	if offset >= uint64(len(b.data)) {
		return
	}
	n := copy(b.data[offset:], data)
	d.writes.Add(1)
	d.bytesWritten.Add(uint64(n))
}

// Stats returns a snapshot of the device's counters.
func (d *NullDevice) Stats() NullDeviceStats {
	return NullDeviceStats{
		BuffersCreated:     d.buffersCreated.Load(),
		BuffersDestroyed:   d.buffersDestroyed.Load(),
		TexturesCreated:    d.texturesCreated.Load(),
		TexturesDestroyed:  d.texturesDestroyed.Load(),
		BindGroupsCreated:  d.groupsCreated.Load(),
		BindGroupsDestroy:  d.groupsDestroyed.Load(),
		PipelinesCreated:   d.pipelinesCreated.Load(),
		PipelinesDestroyed: d.pipelinesDestroy.Load(),
		Writes:             d.writes.Load(),
		BytesWritten:       d.bytesWritten.Load(),
	}
}

var (
	_ hal.Buffer  = (*nullBuffer)(nil)
	_ hal.Texture = (*nullTexture)(nil)
)

type nullBuffer struct {
	id        uint64
	label     string
	data      []byte
	destroyed bool
}

func (b *nullBuffer) Destroy()              { b.destroyed = true }
func (b *nullBuffer) NativeHandle() uintptr { return uintptr(b.id) }
func (b *nullBuffer) Label() string         { return b.label }

type nullTexture struct {
	id        uint64
	label     string
	destroyed bool
}

func (t *nullTexture) Destroy()              { t.destroyed = true }
func (t *nullTexture) NativeHandle() uintptr { return uintptr(t.id) }
func (t *nullTexture) Label() string         { return t.label }

// Pending-ref tracking and usage transitions are encoder concerns; the
// headless double has nothing to synchronize.
func (t *nullTexture) CurrentUsage() gputypes.TextureUsage { return 0 }
func (t *nullTexture) AddPendingRef()                      {}
func (t *nullTexture) DecPendingRef()                      {}

type nullBindGroup struct {
	id        uint64
	label     string
	destroyed bool
}

func (bg *nullBindGroup) Destroy()          { bg.destroyed = true }
func (bg *nullBindGroup) ID() uint64        { return bg.id }
func (bg *nullBindGroup) Label() string     { return bg.label }
func (bg *nullBindGroup) IsDestroyed() bool { return bg.destroyed }

type nullPipeline struct {
	id        uint64
	label     string
	destroyed bool
}

func (p *nullPipeline) Destroy()          { p.destroyed = true }
func (p *nullPipeline) ID() uint64        { return p.id }
func (p *nullPipeline) Label() string     { return p.label }
func (p *nullPipeline) IsDestroyed() bool { return p.destroyed }

// NullRenderPass records the calls a draw submission makes, standing in
// for an encoder-backed pass.
type NullRenderPass struct {
	PipelineSets   int
	BindGroupSets  int
	VertexSets     int
	IndexSets      int
	Draws          int
	InstancesDrawn uint32

	CurrentPipeline hal.RenderPipeline
}

var _ RenderPass = (*NullRenderPass)(nil)

func (p *NullRenderPass) SetPipeline(pipeline hal.RenderPipeline) {
	p.PipelineSets++
	p.CurrentPipeline = pipeline
}

func (p *NullRenderPass) SetBindGroup(index uint32, group hal.BindGroup, dynamicOffsets []uint32) {
	p.BindGroupSets++
}

func (p *NullRenderPass) SetVertexBuffer(slot uint32, buffer hal.Buffer, offset uint64) {
	p.VertexSets++
}

func (p *NullRenderPass) SetIndexBuffer(buffer hal.Buffer, format gputypes.IndexFormat, offset uint64) {
	p.IndexSets++
}

func (p *NullRenderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.Draws++
	p.InstancesDrawn += instanceCount
}
