package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/renderworld/pool"
)

// GPUBuffer is a pooled native buffer and its creation parameters.
type GPUBuffer struct {
	// Raw is the native buffer. Callers may bind it but never destroy
	// it; Release owns the destruction path.
	Raw hal.Buffer

	Size  uint64
	Usage gputypes.BufferUsage
	Name  string
}

// BufferPool hands out generation-checked handles to native GPU buffers.
//
// Create allocates the native buffer immediately and can fail; Release
// never destroys synchronously. It queues the live buffer on the
// deletion queue FIRST, then invalidates the slot, so the handle is dead
// to Get the instant Release returns while the native object survives
// until the GPU is done with it.
type BufferPool struct {
	device    Device
	deletions *DeletionQueue
	slots     *pool.Pool[GPUBuffer]
}

// NewBufferPool creates a pool allocating from device and releasing
// through deletions.
func NewBufferPool(device Device, deletions *DeletionQueue) (*BufferPool, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if deletions == nil {
		return nil, fmt.Errorf("gpu: deletion queue is nil")
	}
	return &BufferPool{
		device:    device,
		deletions: deletions,
		slots:     pool.New[GPUBuffer](64),
	}, nil
}

// Create allocates a native buffer and returns its handle. On failure no
// slot is consumed and the pool state is unchanged.
func (p *BufferPool) Create(size uint64, usage gputypes.BufferUsage, name string) (pool.Handle, error) {
	if size == 0 {
		return pool.Invalid, fmt.Errorf("%w: size is 0 (%q)", ErrInvalidBufferSize, name)
	}

	raw, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: name,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return pool.Invalid, fmt.Errorf("gpu: create buffer %q: %w", name, err)
	}

	h := p.slots.Allocate()
	*p.slots.Get(h) = GPUBuffer{Raw: raw, Size: size, Usage: usage, Name: name}
	return h, nil
}

// Get returns the buffer for h, or nil if h is stale or released.
func (p *BufferPool) Get(h pool.Handle) *GPUBuffer {
	return p.slots.Get(h)
}

// Release invalidates h and hands the native buffer to the deletion
// queue. Releasing a stale handle is a no-op. The queue-then-invalidate
// order is load-bearing: the handle must die immediately, the native
// object must not.
func (p *BufferPool) Release(h pool.Handle) {
	b := p.slots.Get(h)
	if b == nil {
		return
	}
	p.deletions.QueueBuffer(b.Raw)
	p.slots.Free(h)
}

// Clear releases every live buffer through the deletion queue.
func (p *BufferPool) Clear() {
	p.slots.ForEach(func(_ pool.Handle, b *GPUBuffer) {
		p.deletions.QueueBuffer(b.Raw)
	})
	p.slots.Clear()
}

// Stats returns pool occupancy.
func (p *BufferPool) Stats() pool.Stats { return p.slots.Stats() }
