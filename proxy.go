package renderworld

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/renderworld/pool"
)

// MaxSubMaterials is the legacy-path submaterial slot count per mesh.
const MaxSubMaterials = 8

// MeshProxy is the render-side record of a static mesh instance.
//
// Material binding is one of two paths: Material set to a live handle
// selects the material-instance path; an invalid Material handle selects
// the legacy path driven by the numeric LegacyMaterials ids. The two
// paths batch and draw through different pipelines.
type MeshProxy struct {
	// ID is a world-unique identifier, for diagnostics only.
	ID uint64

	Transform mgl32.Mat4
	// PrevTransform is last frame's transform, saved by EndFrame for
	// motion-vector computation.
	PrevTransform mgl32.Mat4

	LocalBounds AABB
	// WorldBounds is always the image of LocalBounds under Transform;
	// setters recompute it in the same step as any write to either.
	WorldBounds AABB

	// Mesh addresses geometry in the gpu mesh pool.
	Mesh pool.Handle

	// Material addresses a material instance; invalid selects the
	// legacy path.
	Material pool.Handle

	// LegacyMaterials hold numeric material ids for the legacy path.
	LegacyMaterials [MaxSubMaterials]uint32
	// SubMaterialCount is the number of live LegacyMaterials entries.
	SubMaterialCount int

	Flags     RenderFlag
	LayerMask uint32

	// LOD is the currently selected level of detail.
	LOD int
	// LODBias shifts LOD selection distance.
	LODBias float32

	// DistanceToCamera is filled by the visibility pass.
	DistanceToCamera float32
	// SortKey is the composite batching key from the last build.
	SortKey uint64

	// Tint is per-instance color/custom data passed to the shader.
	Tint mgl32.Vec4
}

// legacyPath reports whether the proxy draws through the legacy numeric
// material path.
func (p *MeshProxy) legacyPath() bool { return !p.Material.IsValid() }

// resetMesh puts the proxy into the known-valid default state used by
// CreateMesh.
func (p *MeshProxy) resetMesh(id uint64) {
	*p = MeshProxy{
		ID:            id,
		Transform:     mgl32.Ident4(),
		PrevTransform: mgl32.Ident4(),
		Mesh:          pool.Invalid,
		Material:      pool.Invalid,
		Flags:         DefaultMeshFlags,
		LayerMask:     ^uint32(0),
		Tint:          mgl32.Vec4{1, 1, 1, 1},
	}
}

// SkinnedMeshProxy extends MeshProxy with bone animation state. The bone
// matrices live in a GPU buffer owned by the gpu buffer pool.
type SkinnedMeshProxy struct {
	MeshProxy

	// BoneBuffer addresses the bone matrix buffer in the gpu buffer pool.
	BoneBuffer pool.Handle
	BoneCount  int
	// BonesDirty marks bone matrices changed since the last upload.
	BonesDirty bool
}

// LightProxy is the render-side record of a light.
type LightProxy struct {
	Type      LightType
	Position  mgl32.Vec3
	Direction mgl32.Vec3
	Color     mgl32.Vec3
	Intensity float32
	Range     float32
	// InnerCone and OuterCone are spot half-angles in radians.
	InnerCone float32
	OuterCone float32
	Enabled   bool
}

// Burst is a one-shot particle emission at a fixed time offset.
type Burst struct {
	Time  float32
	Count int
}

// ParticleEmitterProxy is the render-side record of a GPU particle
// emitter. The particle and indirect-draw buffers live in the gpu buffer
// pool; the CPU-side simulation scratch is owned by the proxy and is
// released by DestroyEmitter.
type ParticleEmitterProxy struct {
	Transform mgl32.Mat4
	Space     SimulationSpace
	Blend     BlendMode

	// ParticleBuffer and IndirectBuffer address GPU storage in the gpu
	// buffer pool.
	ParticleBuffer pool.Handle
	IndirectBuffer pool.Handle

	SpawnRate    float32
	Lifetime     float32
	StartSize    float32
	EndSize      float32
	StartColor   mgl32.Vec4
	EndColor     mgl32.Vec4
	Velocity     mgl32.Vec3
	MaxParticles int

	Bursts []Burst

	// AtlasTilesX/Y describe the flipbook texture atlas layout.
	AtlasTilesX int
	AtlasTilesY int

	// sim is the CPU-side simulation scratch, lazily grown to
	// MaxParticles and released on destroy.
	sim *emitterSim
}

// emitterSim is the CPU-side particle scratch state.
type emitterSim struct {
	positions  []mgl32.Vec3
	velocities []mgl32.Vec3
	ages       []float32
	alive      int
}

// ensureSim allocates the simulation scratch sized to MaxParticles.
func (p *ParticleEmitterProxy) ensureSim() {
	n := p.MaxParticles
	if n <= 0 {
		n = 1024
	}
	if p.sim != nil && cap(p.sim.positions) >= n {
		return
	}
	p.sim = &emitterSim{
		positions:  make([]mgl32.Vec3, 0, n),
		velocities: make([]mgl32.Vec3, 0, n),
		ages:       make([]float32, 0, n),
	}
}

// releaseSim drops the CPU-side scratch.
func (p *ParticleEmitterProxy) releaseSim() { p.sim = nil }

// SpriteProxy is the render-side record of a 2D sprite.
type SpriteProxy struct {
	Position mgl32.Vec3
	Size     mgl32.Vec2
	// UVRect is (u0, v0, u1, v1) into the texture.
	UVRect mgl32.Vec4
	Tint   mgl32.Vec4
	// Texture addresses an opaque texture handle owned by the caller's
	// texture system.
	Texture pool.Handle
}
