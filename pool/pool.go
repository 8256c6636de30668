// Package pool provides a generic fixed-slot allocator with generational
// handles. Handles stay cheap value types; a handle becomes permanently
// stale the moment its slot is freed, and every lookup detects staleness
// in O(1). Stale access is not an error: Get returns nil and Free is a
// no-op, so callers whose handle lifetimes race against teardown degrade
// gracefully instead of crashing.
package pool

// InvalidIndex is the sentinel index of an invalid handle.
const InvalidIndex = ^uint32(0)

// Handle identifies a slot in a Pool. The zero value is NOT a valid
// sentinel (it names slot 0 at generation 0, which never exists because
// generations start at 1); use Invalid for "no handle".
type Handle struct {
	// Index is the slot index, or InvalidIndex.
	Index uint32

	// Generation is the slot generation the handle was issued with.
	Generation uint32
}

// Invalid is the canonical invalid handle.
var Invalid = Handle{Index: InvalidIndex}

// IsValid reports whether the handle carries a real index. It says nothing
// about staleness; only the owning pool can check that.
func (h Handle) IsValid() bool { return h.Index != InvalidIndex }

// Ordinal returns the slot index widened to uint64, for use as a sort key
// component. Stale and live handles with the same index compare equal,
// which is fine for sorting: stale handles are filtered out before keys
// are built.
func (h Handle) Ordinal() uint64 { return uint64(h.Index) }

// slot is a single pool entry.
type slot[T any] struct {
	payload    T
	generation uint32
	inUse      bool
}

// Pool is a generational slot allocator for payloads of type T.
//
// Pool is not safe for concurrent mutation; the intended model is
// single-writer per frame-update phase with freely copied handles.
type Pool[T any] struct {
	slots []slot[T]
	// free holds recycled indices; Allocate pops the last-freed first.
	free []uint32
	live int
}

// New creates a pool with capacity preallocated for capHint slots.
func New[T any](capHint int) *Pool[T] {
	if capHint < 0 {
		capHint = 0
	}
	return &Pool[T]{
		slots: make([]slot[T], 0, capHint),
		free:  make([]uint32, 0, capHint),
	}
}

// Allocate takes a slot and returns its handle. Freed slots are reused
// LIFO, keeping the generation advanced by the Free that recycled them;
// fresh slots start at generation 1. The payload is reset to the zero
// value of T.
func (p *Pool[T]) Allocate() Handle {
	var zero T
	if n := len(p.free); n > 0 {
		idx := p.free[n-1]
		p.free = p.free[:n-1]
		s := &p.slots[idx]
		s.payload = zero
		s.inUse = true
		p.live++
		return Handle{Index: idx, Generation: s.generation}
	}
	p.slots = append(p.slots, slot[T]{generation: 1, inUse: true})
	p.live++
	return Handle{Index: uint32(len(p.slots) - 1), Generation: 1}
}

// Get returns the payload for h, or nil if h is out of range, stale, or
// names a free slot. The returned pointer is valid until the slot is
// freed or the pool is cleared.
func (p *Pool[T]) Get(h Handle) *T {
	if uint64(h.Index) >= uint64(len(p.slots)) {
		return nil
	}
	s := &p.slots[h.Index]
	if !s.inUse || s.generation != h.Generation {
		return nil
	}
	return &s.payload
}

// Free releases the slot named by h and bumps its generation, making h
// and every copy of it permanently stale. Freeing an invalid or stale
// handle is a no-op. Reports whether a slot was actually freed.
func (p *Pool[T]) Free(h Handle) bool {
	if p.Get(h) == nil {
		return false
	}
	var zero T
	s := &p.slots[h.Index]
	s.payload = zero
	s.inUse = false
	s.generation++
	p.free = append(p.free, h.Index)
	p.live--
	return true
}

// ForEach calls fn for every in-use slot in index order. Payload mutation
// through the pointer is allowed; Allocate/Free/Clear during iteration is
// not.
func (p *Pool[T]) ForEach(fn func(Handle, *T)) {
	for i := range p.slots {
		s := &p.slots[i]
		if !s.inUse {
			continue
		}
		fn(Handle{Index: uint32(i), Generation: s.generation}, &s.payload)
	}
}

// Clear frees every slot. All outstanding handles become stale and the
// free list is rebuilt to hand out low indices first.
func (p *Pool[T]) Clear() {
	var zero T
	p.free = p.free[:0]
	for i := len(p.slots) - 1; i >= 0; i-- {
		s := &p.slots[i]
		if s.inUse {
			s.inUse = false
			s.generation++
		}
		s.payload = zero
		p.free = append(p.free, uint32(i))
	}
	p.live = 0
}

// Len returns the number of in-use slots.
func (p *Pool[T]) Len() int { return p.live }

// Cap returns the total number of slots ever allocated.
func (p *Pool[T]) Cap() int { return len(p.slots) }

// Stats contains pool occupancy counters.
type Stats struct {
	// Live is the number of in-use slots.
	Live int

	// Capacity is the total slot count, live plus free.
	Capacity int

	// Free is the number of recycled slots awaiting reuse.
	Free int
}

// Stats returns current occupancy counters.
func (p *Pool[T]) Stats() Stats {
	return Stats{Live: p.live, Capacity: len(p.slots), Free: len(p.free)}
}
