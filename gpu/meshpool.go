package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/renderworld/pool"
)

// MeshDescriptor describes geometry to upload.
type MeshDescriptor struct {
	Name string

	// VertexData is the packed vertex stream.
	VertexData []byte

	// IndexData is the packed index stream in IndexFormat layout.
	IndexData   []byte
	IndexFormat gputypes.IndexFormat

	IndexCount  uint32
	VertexCount uint32
}

// GPUMesh is pooled geometry: vertex and index buffers held as handles
// into the buffer pool, plus the draw parameters.
type GPUMesh struct {
	VertexBuffer pool.Handle
	IndexBuffer  pool.Handle
	IndexFormat  gputypes.IndexFormat
	IndexCount   uint32
	VertexCount  uint32
	Name         string
}

// MeshPool hands out generation-checked handles to uploaded meshes. The
// underlying buffers live in a BufferPool and are released through the
// deferred deletion queue.
type MeshPool struct {
	buffers *BufferPool
	queue   Queue
	slots   *pool.Pool[GPUMesh]
}

// NewMeshPool creates a pool uploading through queue and allocating
// storage from buffers.
func NewMeshPool(buffers *BufferPool, queue Queue) (*MeshPool, error) {
	if buffers == nil {
		return nil, fmt.Errorf("gpu: buffer pool is nil")
	}
	if queue == nil {
		return nil, ErrNilQueue
	}
	return &MeshPool{
		buffers: buffers,
		queue:   queue,
		slots:   pool.New[GPUMesh](64),
	}, nil
}

// Create allocates vertex and index buffers, uploads the mesh data and
// returns its handle. On failure no slot is consumed and any buffer
// already allocated is released.
func (p *MeshPool) Create(desc MeshDescriptor) (pool.Handle, error) {
	if len(desc.VertexData) == 0 {
		return pool.Invalid, fmt.Errorf("%w: empty vertex data (%q)", ErrInvalidBufferSize, desc.Name)
	}
	if len(desc.IndexData) == 0 {
		return pool.Invalid, fmt.Errorf("%w: empty index data (%q)", ErrInvalidBufferSize, desc.Name)
	}

	vb, err := p.buffers.Create(
		uint64(len(desc.VertexData)),
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst,
		desc.Name+"/vertices",
	)
	if err != nil {
		return pool.Invalid, err
	}
	ib, err := p.buffers.Create(
		uint64(len(desc.IndexData)),
		gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst,
		desc.Name+"/indices",
	)
	if err != nil {
		p.buffers.Release(vb)
		return pool.Invalid, err
	}

	p.queue.WriteBuffer(p.buffers.Get(vb).Raw, 0, desc.VertexData)
	p.queue.WriteBuffer(p.buffers.Get(ib).Raw, 0, desc.IndexData)

	h := p.slots.Allocate()
	*p.slots.Get(h) = GPUMesh{
		VertexBuffer: vb,
		IndexBuffer:  ib,
		IndexFormat:  desc.IndexFormat,
		IndexCount:   desc.IndexCount,
		VertexCount:  desc.VertexCount,
		Name:         desc.Name,
	}
	return h, nil
}

// Get returns the mesh for h, or nil if h is stale or released.
func (p *MeshPool) Get(h pool.Handle) *GPUMesh {
	return p.slots.Get(h)
}

// Release invalidates h and routes both mesh buffers through the buffer
// pool's deferred release. Releasing a stale handle is a no-op.
func (p *MeshPool) Release(h pool.Handle) {
	m := p.slots.Get(h)
	if m == nil {
		return
	}
	p.buffers.Release(m.VertexBuffer)
	p.buffers.Release(m.IndexBuffer)
	p.slots.Free(h)
}

// Clear releases every live mesh.
func (p *MeshPool) Clear() {
	p.slots.ForEach(func(_ pool.Handle, m *GPUMesh) {
		p.buffers.Release(m.VertexBuffer)
		p.buffers.Release(m.IndexBuffer)
	})
	p.slots.Clear()
}

// Stats returns pool occupancy.
func (p *MeshPool) Stats() pool.Stats { return p.slots.Stats() }
