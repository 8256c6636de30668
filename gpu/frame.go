package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/renderworld/pool"
)

// DefaultFramesInFlight is how many frames the CPU may run ahead of the
// GPU. Instance data written for frame N must not be overwritten until
// frame N+DefaultFramesInFlight, so the ring holds that many buffers.
const DefaultFramesInFlight = 3

// FrameRingConfig configures a FrameRing.
type FrameRingConfig struct {
	// Frames is the ring depth. Zero selects DefaultFramesInFlight.
	Frames int

	// BufferSize is the byte size of each per-frame buffer.
	BufferSize uint64

	// Usage is the buffer usage. Zero selects Vertex|CopyDst, the usage
	// required for per-instance vertex streams.
	Usage gputypes.BufferUsage

	// Name labels the buffers for debugging.
	Name string
}

// FrameRing cycles a fixed set of GPU buffers so that each in-flight
// frame writes a buffer the GPU is no longer reading.
type FrameRing struct {
	buffers []pool.Handle
	pool    *BufferPool
	size    uint64
}

// NewFrameRing allocates the ring's buffers up front.
func NewFrameRing(buffers *BufferPool, cfg FrameRingConfig) (*FrameRing, error) {
	if buffers == nil {
		return nil, fmt.Errorf("gpu: buffer pool is nil")
	}
	if cfg.Frames <= 0 {
		cfg.Frames = DefaultFramesInFlight
	}
	if cfg.BufferSize == 0 {
		return nil, ErrInvalidBufferSize
	}
	if cfg.Usage == 0 {
		cfg.Usage = gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst
	}

	r := &FrameRing{
		buffers: make([]pool.Handle, 0, cfg.Frames),
		pool:    buffers,
		size:    cfg.BufferSize,
	}
	for i := 0; i < cfg.Frames; i++ {
		name := cfg.Name
		if name != "" {
			name = fmt.Sprintf("%s[%d]", cfg.Name, i)
		}
		h, err := buffers.Create(cfg.BufferSize, cfg.Usage, name)
		if err != nil {
			r.Release()
			return nil, err
		}
		r.buffers = append(r.buffers, h)
	}
	return r, nil
}

// Buffer returns the buffer assigned to frame. Frames wrap around the
// ring, so frame may grow without bound.
func (r *FrameRing) Buffer(frame uint64) *GPUBuffer {
	if len(r.buffers) == 0 {
		return nil
	}
	return r.pool.Get(r.buffers[frame%uint64(len(r.buffers))])
}

// Frames returns the ring depth.
func (r *FrameRing) Frames() int { return len(r.buffers) }

// Size returns the byte size of each buffer.
func (r *FrameRing) Size() uint64 { return r.size }

// Release returns every buffer to the pool. The buffers are destroyed
// after the deletion queue's defer window, not immediately.
func (r *FrameRing) Release() {
	for _, h := range r.buffers {
		r.pool.Release(h)
	}
	r.buffers = r.buffers[:0]
}
