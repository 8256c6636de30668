package batch

import (
	"testing"

	"github.com/gogpu/renderworld"
	"github.com/gogpu/renderworld/gpu"
)

func (f *fixture) renderer(t *testing.T, b *Builder) *Renderer {
	t.Helper()
	ring, err := gpu.NewFrameRing(f.buffers, gpu.FrameRingConfig{
		BufferSize: uint64(MaxInstances * InstanceStride),
		Name:       "instances",
	})
	if err != nil {
		t.Fatalf("NewFrameRing: %v", err)
	}
	r, err := NewRenderer(RendererConfig{
		Builder:   b,
		Meshes:    f.meshes,
		Buffers:   f.buffers,
		Materials: f.materials,
		Ring:      ring,
		Queue:     f.dev,
	})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r
}

func TestRenderEmpty(t *testing.T) {
	f := newFixture(t)
	b := f.builder(t, 0)
	r := f.renderer(t, b)

	b.Build(nil, nil)
	if err := r.PrepareGPU(0); err != nil {
		t.Fatalf("PrepareGPU: %v", err)
	}

	pass := &gpu.NullRenderPass{}
	stats := r.Render(pass, 0)

	if stats.DrawCalls != 0 || pass.Draws != 0 {
		t.Error("draws recorded for an empty build")
	}
	if pass.PipelineSets != 0 || pass.BindGroupSets != 0 || pass.VertexSets != 0 {
		t.Error("state bound for an empty build")
	}
}

func TestPrepareGPUUploadsInstanceData(t *testing.T) {
	f := newFixture(t)
	b := f.builder(t, 0)
	r := f.renderer(t, b)

	mesh := f.mesh(t, "m")
	mat := f.material("x", 1)
	b.Build([]*renderworld.MeshProxy{f.proxy(mesh, mat), f.proxy(mesh, mat)}, nil)

	before := f.dev.Stats().BytesWritten
	if err := r.PrepareGPU(0); err != nil {
		t.Fatalf("PrepareGPU: %v", err)
	}
	wrote := f.dev.Stats().BytesWritten - before
	if want := uint64(2 * InstanceStride); wrote != want {
		t.Errorf("uploaded %d bytes, want %d", wrote, want)
	}
}

// A ring buffer that is neither large enough for the build nor a
// multiple of the instance stride must still receive whole records.
func TestPrepareGPUClipsOnInstanceBoundary(t *testing.T) {
	f := newFixture(t)
	b := f.builder(t, 0)

	ring, err := gpu.NewFrameRing(f.buffers, gpu.FrameRingConfig{
		BufferSize: uint64(InstanceStride + InstanceStride/2),
		Name:       "small",
	})
	if err != nil {
		t.Fatalf("NewFrameRing: %v", err)
	}
	r, err := NewRenderer(RendererConfig{
		Builder:   b,
		Meshes:    f.meshes,
		Buffers:   f.buffers,
		Materials: f.materials,
		Ring:      ring,
		Queue:     f.dev,
	})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	mesh := f.mesh(t, "m")
	mat := f.material("x", 1)
	b.Build([]*renderworld.MeshProxy{f.proxy(mesh, mat), f.proxy(mesh, mat)}, nil)

	before := f.dev.Stats().BytesWritten
	if err := r.PrepareGPU(0); err != nil {
		t.Fatalf("PrepareGPU: %v", err)
	}
	wrote := f.dev.Stats().BytesWritten - before
	if want := uint64(InstanceStride); wrote != want {
		t.Errorf("uploaded %d bytes, want %d (one whole record)", wrote, want)
	}
}

// Three batches over one pipeline family, two materials, two meshes:
// the pass must see exactly one pipeline bind, two bind-group binds and
// two mesh binds, not one of each per batch.
func TestRenderElidesRedundantBinds(t *testing.T) {
	f := newFixture(t)
	b := f.builder(t, 0)
	r := f.renderer(t, b)

	meshA, meshB := f.mesh(t, "a"), f.mesh(t, "b")
	matX, matY := f.material("x", 1), f.material("y", 1)

	proxies := []*renderworld.MeshProxy{
		f.proxy(meshA, matX),
		f.proxy(meshA, matX),
		f.proxy(meshA, matY),
		f.proxy(meshB, matY),
	}
	b.Build(proxies, nil)
	if err := r.PrepareGPU(0); err != nil {
		t.Fatalf("PrepareGPU: %v", err)
	}

	pass := &gpu.NullRenderPass{}
	stats := r.Render(pass, 0)

	if stats.Batches != 3 || stats.DrawCalls != 3 {
		t.Fatalf("stats = %+v, want 3 batches / 3 draws", stats)
	}
	if stats.PipelineBinds != 1 {
		t.Errorf("PipelineBinds = %d, want 1 (shared family)", stats.PipelineBinds)
	}
	if stats.BindGroupBinds != 2 {
		t.Errorf("BindGroupBinds = %d, want 2", stats.BindGroupBinds)
	}
	if stats.MeshBinds != 2 {
		t.Errorf("MeshBinds = %d, want 2", stats.MeshBinds)
	}
	if stats.Instances != 4 || pass.InstancesDrawn != 4 {
		t.Errorf("instances = %d drawn %d, want 4", stats.Instances, pass.InstancesDrawn)
	}
	// Geometry twice, instance stream once.
	if pass.VertexSets != 3 {
		t.Errorf("VertexSets = %d, want 3", pass.VertexSets)
	}
	if pass.IndexSets != 2 {
		t.Errorf("IndexSets = %d, want 2", pass.IndexSets)
	}
}

func TestRenderSkipsStaleBatchReferences(t *testing.T) {
	f := newFixture(t)
	b := f.builder(t, 0)
	r := f.renderer(t, b)

	mesh := f.mesh(t, "m")
	mat := f.material("x", 1)
	b.Build([]*renderworld.MeshProxy{f.proxy(mesh, mat)}, nil)

	// The mesh dies between build and draw.
	f.meshes.Release(mesh)

	pass := &gpu.NullRenderPass{}
	stats := r.Render(pass, 0)
	if stats.DrawCalls != 0 || stats.Skipped != 1 {
		t.Errorf("stats = %+v, want 0 draws / 1 skipped", stats)
	}
}

func TestRenderBindsBonesPerSkinnedBatch(t *testing.T) {
	f := newFixture(t)
	b := f.builder(t, 0)
	r := f.renderer(t, b)

	mat := f.material("skin", 3)
	bones, err := f.buffers.Create(4096, 0, "bones")
	if err != nil {
		t.Fatalf("bone buffer: %v", err)
	}
	skinned := []*renderworld.SkinnedMeshProxy{
		{MeshProxy: *f.proxy(f.mesh(t, "body"), mat), BoneBuffer: bones, BoneCount: 32},
	}
	b.Build(nil, skinned)
	if err := r.PrepareGPU(0); err != nil {
		t.Fatalf("PrepareGPU: %v", err)
	}

	pass := &gpu.NullRenderPass{}
	stats := r.Render(pass, 0)
	if stats.DrawCalls != 1 {
		t.Fatalf("DrawCalls = %d, want 1", stats.DrawCalls)
	}
	if stats.BoneBinds != 1 {
		t.Errorf("BoneBinds = %d, want 1", stats.BoneBinds)
	}
	// Geometry, instances, bones.
	if pass.VertexSets != 3 {
		t.Errorf("VertexSets = %d, want 3", pass.VertexSets)
	}
}
