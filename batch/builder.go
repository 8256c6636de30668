package batch

import (
	"errors"
	"log/slog"
	"slices"

	"github.com/gogpu/renderworld"
	"github.com/gogpu/renderworld/gpu"
	"github.com/gogpu/renderworld/pool"
)

// MaxInstances is the default cap on instances per frame. Proxies past
// the cap are silently dropped for the frame; unbounded instance buffers
// are a denial-of-service surface, not a feature.
const MaxInstances = 4096

// Builder errors.
var (
	// ErrNilMeshSource is returned when a builder is constructed
	// without a mesh source.
	ErrNilMeshSource = errors.New("batch: mesh source is nil")

	// ErrNilMaterialSource is returned when a builder is constructed
	// without a material source.
	ErrNilMaterialSource = errors.New("batch: material source is nil")
)

// MeshSource resolves mesh handles to uploaded geometry. gpu.MeshPool
// satisfies it.
type MeshSource interface {
	Get(h pool.Handle) *gpu.GPUMesh
}

// Config configures a Builder.
type Config struct {
	// MaxInstances caps total instances per build. Zero selects
	// MaxInstances.
	MaxInstances int

	Meshes    MeshSource
	Materials gpu.MaterialSource
}

// DrawBatch is one instanced draw: a contiguous run of instances sharing
// a mesh and material.
type DrawBatch struct {
	// Mesh addresses geometry in the mesh source.
	Mesh pool.Handle

	// Material addresses a material instance. Invalid on the legacy
	// path, where LegacyID selects the material instead.
	Material pool.Handle
	LegacyID uint32
	Legacy   bool

	// BoneBuffer and BoneCount are set for skinned batches only.
	Skinned    bool
	BoneBuffer pool.Handle
	BoneCount  int

	// FirstInstance and InstanceCount address this batch's run inside
	// the frame's shared instance buffer.
	FirstInstance uint32
	InstanceCount uint32
}

// BuildStats are the counters of the last Build.
type BuildStats struct {
	Instances int
	Batches   int
	// Truncated counts proxies dropped at the instance cap.
	Truncated int
	// StaleMeshes counts proxies skipped for an unresolvable mesh.
	StaleMeshes int
	// FailedMaterials counts proxies skipped for an unresolvable or
	// failed material.
	FailedMaterials int
}

// entry is one batchable proxy with its resolved references and
// composite sort key.
type entry struct {
	key        uint64
	proxy      *renderworld.MeshProxy
	material   pool.Handle
	legacyID   uint32
	legacy     bool
	boneBuffer pool.Handle
	boneCount  int
}

// Builder groups visible proxies into instanced draw batches. Scratch
// buffers persist across builds, so a Builder allocates only while the
// scene grows.
//
// Not safe for concurrent use; one Builder per frame-building thread.
type Builder struct {
	maxInstances int
	meshes       MeshSource
	materials    gpu.MaterialSource

	entries   []entry
	instances []byte
	batches   []DrawBatch
	stats     BuildStats
}

// NewBuilder creates a batch builder.
func NewBuilder(cfg Config) (*Builder, error) {
	if cfg.Meshes == nil {
		return nil, ErrNilMeshSource
	}
	if cfg.Materials == nil {
		return nil, ErrNilMaterialSource
	}
	if cfg.MaxInstances <= 0 {
		cfg.MaxInstances = MaxInstances
	}
	return &Builder{
		maxInstances: cfg.MaxInstances,
		meshes:       cfg.Meshes,
		materials:    cfg.Materials,
	}, nil
}

// Build batches the frame's visible proxies. Static meshes batch by
// (mesh, material); skinned meshes batch by material alone, carrying
// their bone buffer per batch. The material-instance and legacy material
// paths batch independently since they draw through different pipelines.
// Instances past the cap are silently dropped.
func (b *Builder) Build(meshes []*renderworld.MeshProxy, skinned []*renderworld.SkinnedMeshProxy) {
	b.instances = b.instances[:0]
	b.batches = b.batches[:0]
	b.stats = BuildStats{}

	// Material-instance statics, then legacy statics, then skinned. The
	// instance cap spans all three streams.
	b.collectStatic(meshes, false)
	b.emit(false)
	b.collectStatic(meshes, true)
	b.emit(false)
	b.collectSkinned(skinned)
	b.emit(true)

	b.stats.Batches = len(b.batches)
	if b.stats.Truncated > 0 {
		slogger().Debug("batch: instance cap reached",
			slog.Int("cap", b.maxInstances),
			slog.Int("dropped", b.stats.Truncated))
	}
}

// Batches returns the last build's batches, ordered for drawing. Valid
// until the next Build.
func (b *Builder) Batches() []DrawBatch { return b.batches }

// InstanceBytes returns the last build's packed instance records, ready
// for a single buffer upload. Valid until the next Build.
func (b *Builder) InstanceBytes() []byte { return b.instances }

// InstanceCount returns the number of instances in the last build.
func (b *Builder) InstanceCount() int { return len(b.instances) / InstanceStride }

// Stats returns the last build's counters.
func (b *Builder) Stats() BuildStats { return b.stats }

// collectStatic fills b.entries with one stream of static proxies,
// sorted by (mesh, material).
func (b *Builder) collectStatic(meshes []*renderworld.MeshProxy, legacy bool) {
	b.entries = b.entries[:0]
	for _, p := range meshes {
		if p.Material.IsValid() == legacy {
			continue
		}
		e, ok := b.resolve(p)
		if !ok {
			continue
		}
		if legacy {
			e.key = p.Mesh.Ordinal()<<32 | uint64(e.legacyID)
		} else {
			e.key = p.Mesh.Ordinal()<<32 | e.material.Ordinal()
		}
		p.SortKey = e.key
		b.entries = append(b.entries, e)
	}
	sortEntries(b.entries)
}

// collectSkinned fills b.entries with the skinned stream, sorted by
// material first. Each skinned proxy carries its own mesh, so the mesh
// ordinal only breaks ties for contiguity.
func (b *Builder) collectSkinned(skinned []*renderworld.SkinnedMeshProxy) {
	b.entries = b.entries[:0]
	for _, p := range skinned {
		e, ok := b.resolve(&p.MeshProxy)
		if !ok {
			continue
		}
		if e.legacy {
			e.key = uint64(e.legacyID)<<32 | p.Mesh.Ordinal()
		} else {
			e.key = e.material.Ordinal()<<32 | p.Mesh.Ordinal()
		}
		e.boneBuffer = p.BoneBuffer
		e.boneCount = p.BoneCount
		p.SortKey = e.key
		b.entries = append(b.entries, e)
	}
	sortEntries(b.entries)
}

// resolve checks the proxy's mesh and material references, triggering
// lazy material upload on the material-instance path. Unresolvable
// proxies are skipped, never fatal.
func (b *Builder) resolve(p *renderworld.MeshProxy) (entry, bool) {
	if b.meshes.Get(p.Mesh) == nil {
		b.stats.StaleMeshes++
		return entry{}, false
	}

	e := entry{proxy: p}
	if p.Material.IsValid() {
		if err := b.materials.EnsureGPU(p.Material); err != nil {
			slogger().Warn("batch: material upload failed", slog.Uint64("proxy", p.ID), slog.Any("error", err))
			b.stats.FailedMaterials++
			return entry{}, false
		}
		if b.materials.Instance(p.Material) == nil {
			b.stats.FailedMaterials++
			return entry{}, false
		}
		e.material = p.Material
	} else {
		if p.SubMaterialCount == 0 {
			b.stats.FailedMaterials++
			return entry{}, false
		}
		// The primary submaterial drives batching and pipeline choice.
		e.legacyID = p.LegacyMaterials[0]
		if b.materials.Legacy(e.legacyID) == nil {
			b.stats.FailedMaterials++
			return entry{}, false
		}
		e.legacy = true
		e.material = pool.Invalid
	}
	return e, true
}

// emit walks the sorted entries once, appending instance records and
// closing a batch whenever the key (or, for skinned entries, the bone
// buffer) changes.
func (b *Builder) emit(skinned bool) {
	first := len(b.batches)
	for i := range b.entries {
		e := &b.entries[i]
		if b.InstanceCount() >= b.maxInstances {
			b.stats.Truncated += len(b.entries) - i
			return
		}

		p := e.proxy
		b.instances = appendInstance(b.instances, &InstanceData{
			World:  p.Transform,
			Normal: normalMatrix(p.Transform),
			Tint:   p.Tint,
		})
		b.stats.Instances++

		if len(b.batches) > first && b.batches[len(b.batches)-1].sameRun(e, skinned) {
			b.batches[len(b.batches)-1].InstanceCount++
			continue
		}
		b.batches = append(b.batches, DrawBatch{
			Mesh:          p.Mesh,
			Material:      e.material,
			LegacyID:      e.legacyID,
			Legacy:        e.legacy,
			Skinned:       skinned,
			BoneBuffer:    e.boneBuffer,
			BoneCount:     e.boneCount,
			FirstInstance: uint32(b.InstanceCount() - 1),
			InstanceCount: 1,
		})
	}
}

// sameRun reports whether e belongs to the batch's contiguous run.
func (d *DrawBatch) sameRun(e *entry, skinned bool) bool {
	if d.Skinned != skinned {
		return false
	}
	if d.Mesh != e.proxy.Mesh || d.Material != e.material ||
		d.Legacy != e.legacy || d.LegacyID != e.legacyID {
		return false
	}
	if skinned && d.BoneBuffer != e.boneBuffer {
		return false
	}
	return true
}

func sortEntries(entries []entry) {
	slices.SortFunc(entries, func(a, b entry) int {
		switch {
		case a.key < b.key:
			return -1
		case a.key > b.key:
			return 1
		default:
			return 0
		}
	})
}
