package renderworld

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/renderworld/pool"
)

// RenderWorld is the central registry of render proxies: one generational
// slot pool per proxy kind, plus world-level lighting globals and the
// main-camera selection.
//
// All mutation goes through setters that silently no-op on stale or
// invalid handles; per-frame code stays free of error-handling branches.
// RenderWorld assumes single-writer, many-reader access confined to one
// frame-update phase and takes no internal locks.
type RenderWorld struct {
	meshes   *pool.Pool[MeshProxy]
	skinned  *pool.Pool[SkinnedMeshProxy]
	lights   *pool.Pool[LightProxy]
	cameras  *pool.Pool[CameraProxy]
	emitters *pool.Pool[ParticleEmitterProxy]
	sprites  *pool.Pool[SpriteProxy]

	mainCamera pool.Handle
	dirty      DirtyKind
	frame      uint64
	nextID     uint64

	// AmbientColor and Exposure are world-level shading globals consumed
	// by render passes.
	AmbientColor mgl32.Vec3
	Exposure     float32
}

// NewRenderWorld creates an empty world.
func NewRenderWorld() *RenderWorld {
	return &RenderWorld{
		meshes:       pool.New[MeshProxy](256),
		skinned:      pool.New[SkinnedMeshProxy](64),
		lights:       pool.New[LightProxy](32),
		cameras:      pool.New[CameraProxy](4),
		emitters:     pool.New[ParticleEmitterProxy](32),
		sprites:      pool.New[SpriteProxy](128),
		mainCamera:   pool.Invalid,
		AmbientColor: mgl32.Vec3{0.03, 0.03, 0.03},
		Exposure:     1.0,
	}
}

// Frame returns the current frame number, advanced by EndFrame.
func (w *RenderWorld) Frame() uint64 { return w.frame }

// Dirty returns the per-kind dirty bitset accumulated since the last
// EndFrame or ClearDirtyFlags.
func (w *RenderWorld) Dirty() DirtyKind { return w.dirty }

// ClearDirtyFlags clears the per-kind dirty bitset. EndFrame calls this
// exactly once per frame boundary; explicit calls are for callers that
// manage frame boundaries themselves.
func (w *RenderWorld) ClearDirtyFlags() { w.dirty = 0 }

// markDirty accumulates kind bits; monotonic within a frame.
func (w *RenderWorld) markDirty(kind DirtyKind) { w.dirty |= kind }

// =============================================================================
// Mesh proxies
// =============================================================================

// CreateMesh allocates a mesh proxy reset to defaults
// (Visible|CastShadows|ReceiveShadows, identity transform, all layers).
func (w *RenderWorld) CreateMesh() pool.Handle {
	h := w.meshes.Allocate()
	w.nextID++
	w.meshes.Get(h).resetMesh(w.nextID)
	w.markDirty(DirtyMeshes)
	return h
}

// Mesh returns the proxy for h, or nil if h is stale.
func (w *RenderWorld) Mesh(h pool.Handle) *MeshProxy {
	return w.meshes.Get(h)
}

// SetMeshTransform writes the world transform and recomputes WorldBounds
// in the same step; no stale-bounds state is observable afterwards.
func (w *RenderWorld) SetMeshTransform(h pool.Handle, m mgl32.Mat4) {
	p := w.meshes.Get(h)
	if p == nil {
		return
	}
	p.Transform = m
	p.WorldBounds = p.LocalBounds.Transformed(m)
	p.Flags |= FlagDirty
	w.markDirty(DirtyMeshes)
}

// SetMeshLocalBounds writes the local box and recomputes WorldBounds.
func (w *RenderWorld) SetMeshLocalBounds(h pool.Handle, b AABB) {
	p := w.meshes.Get(h)
	if p == nil {
		return
	}
	p.LocalBounds = b
	p.WorldBounds = b.Transformed(p.Transform)
	p.Flags |= FlagDirty
	w.markDirty(DirtyMeshes)
}

// SetMeshGeometry points the proxy at geometry in the gpu mesh pool.
func (w *RenderWorld) SetMeshGeometry(h, mesh pool.Handle) {
	p := w.meshes.Get(h)
	if p == nil {
		return
	}
	p.Mesh = mesh
	p.Flags |= FlagDirty
	w.markDirty(DirtyMeshes)
}

// SetMeshMaterial selects the material-instance path. Passing
// pool.Invalid reverts to the legacy path.
func (w *RenderWorld) SetMeshMaterial(h, material pool.Handle) {
	p := w.meshes.Get(h)
	if p == nil {
		return
	}
	p.Material = material
	p.Flags |= FlagDirty
	w.markDirty(DirtyMeshes)
}

// SetMeshLegacyMaterials writes the legacy numeric submaterial ids,
// truncated to MaxSubMaterials.
func (w *RenderWorld) SetMeshLegacyMaterials(h pool.Handle, ids ...uint32) {
	p := w.meshes.Get(h)
	if p == nil {
		return
	}
	n := len(ids)
	if n > MaxSubMaterials {
		n = MaxSubMaterials
	}
	copy(p.LegacyMaterials[:], ids[:n])
	p.SubMaterialCount = n
	p.Flags |= FlagDirty
	w.markDirty(DirtyMeshes)
}

// SetMeshFlags replaces the proxy flag set.
func (w *RenderWorld) SetMeshFlags(h pool.Handle, flags RenderFlag) {
	p := w.meshes.Get(h)
	if p == nil {
		return
	}
	p.Flags = flags | FlagDirty
	w.markDirty(DirtyMeshes)
}

// EnableMeshFlags sets the given flag bits.
func (w *RenderWorld) EnableMeshFlags(h pool.Handle, flags RenderFlag) {
	p := w.meshes.Get(h)
	if p == nil {
		return
	}
	p.Flags |= flags | FlagDirty
	w.markDirty(DirtyMeshes)
}

// DisableMeshFlags clears the given flag bits.
func (w *RenderWorld) DisableMeshFlags(h pool.Handle, flags RenderFlag) {
	p := w.meshes.Get(h)
	if p == nil {
		return
	}
	p.Flags &^= flags
	p.Flags |= FlagDirty
	w.markDirty(DirtyMeshes)
}

// SetMeshLayerMask writes the visibility layer mask.
func (w *RenderWorld) SetMeshLayerMask(h pool.Handle, mask uint32) {
	p := w.meshes.Get(h)
	if p == nil {
		return
	}
	p.LayerMask = mask
	w.markDirty(DirtyMeshes)
}

// SetMeshTint writes the per-instance tint/custom data.
func (w *RenderWorld) SetMeshTint(h pool.Handle, tint mgl32.Vec4) {
	p := w.meshes.Get(h)
	if p == nil {
		return
	}
	p.Tint = tint
	w.markDirty(DirtyMeshes)
}

// DestroyMesh frees the proxy slot. Destroying a stale handle is a no-op.
func (w *RenderWorld) DestroyMesh(h pool.Handle) {
	if w.meshes.Free(h) {
		w.markDirty(DirtyMeshes)
	}
}

// ForEachMesh visits every live mesh proxy in index order.
func (w *RenderWorld) ForEachMesh(fn func(pool.Handle, *MeshProxy)) {
	w.meshes.ForEach(fn)
}

// =============================================================================
// Skinned mesh proxies
// =============================================================================

// CreateSkinnedMesh allocates a skinned proxy with mesh defaults plus
// FlagSkinned.
func (w *RenderWorld) CreateSkinnedMesh() pool.Handle {
	h := w.skinned.Allocate()
	w.nextID++
	p := w.skinned.Get(h)
	p.resetMesh(w.nextID)
	p.Flags |= FlagSkinned
	p.BoneBuffer = pool.Invalid
	p.BoneCount = 0
	p.BonesDirty = false
	w.markDirty(DirtySkinned)
	return h
}

// SkinnedMesh returns the proxy for h, or nil if h is stale.
func (w *RenderWorld) SkinnedMesh(h pool.Handle) *SkinnedMeshProxy {
	return w.skinned.Get(h)
}

// SetSkinnedTransform writes the world transform and recomputes
// WorldBounds.
func (w *RenderWorld) SetSkinnedTransform(h pool.Handle, m mgl32.Mat4) {
	p := w.skinned.Get(h)
	if p == nil {
		return
	}
	p.Transform = m
	p.WorldBounds = p.LocalBounds.Transformed(m)
	p.Flags |= FlagDirty
	w.markDirty(DirtySkinned)
}

// SetSkinnedLocalBounds writes the local box and recomputes WorldBounds.
func (w *RenderWorld) SetSkinnedLocalBounds(h pool.Handle, b AABB) {
	p := w.skinned.Get(h)
	if p == nil {
		return
	}
	p.LocalBounds = b
	p.WorldBounds = b.Transformed(p.Transform)
	p.Flags |= FlagDirty
	w.markDirty(DirtySkinned)
}

// SetSkinnedGeometry points the proxy at geometry in the gpu mesh pool.
func (w *RenderWorld) SetSkinnedGeometry(h, mesh pool.Handle) {
	p := w.skinned.Get(h)
	if p == nil {
		return
	}
	p.Mesh = mesh
	p.Flags |= FlagDirty
	w.markDirty(DirtySkinned)
}

// SetSkinnedMaterial writes the material instance handle.
func (w *RenderWorld) SetSkinnedMaterial(h, material pool.Handle) {
	p := w.skinned.Get(h)
	if p == nil {
		return
	}
	p.Material = material
	p.Flags |= FlagDirty
	w.markDirty(DirtySkinned)
}

// SetSkinnedBones points the proxy at a bone matrix buffer in the gpu
// buffer pool and marks the bones dirty for re-upload.
func (w *RenderWorld) SetSkinnedBones(h, boneBuffer pool.Handle, count int) {
	p := w.skinned.Get(h)
	if p == nil {
		return
	}
	p.BoneBuffer = boneBuffer
	p.BoneCount = count
	p.BonesDirty = true
	p.Flags |= FlagDirty
	w.markDirty(DirtySkinned)
}

// DestroySkinnedMesh frees the proxy slot.
func (w *RenderWorld) DestroySkinnedMesh(h pool.Handle) {
	if w.skinned.Free(h) {
		w.markDirty(DirtySkinned)
	}
}

// ForEachSkinnedMesh visits every live skinned proxy in index order.
func (w *RenderWorld) ForEachSkinnedMesh(fn func(pool.Handle, *SkinnedMeshProxy)) {
	w.skinned.ForEach(fn)
}

// =============================================================================
// Light proxies
// =============================================================================

// CreateLight allocates an enabled white point light.
func (w *RenderWorld) CreateLight() pool.Handle {
	h := w.lights.Allocate()
	*w.lights.Get(h) = LightProxy{
		Type:      LightPoint,
		Direction: mgl32.Vec3{0, -1, 0},
		Color:     mgl32.Vec3{1, 1, 1},
		Intensity: 1,
		Range:     10,
		Enabled:   true,
	}
	w.markDirty(DirtyLights)
	return h
}

// Light returns the proxy for h, or nil if h is stale.
func (w *RenderWorld) Light(h pool.Handle) *LightProxy {
	return w.lights.Get(h)
}

// SetLightType writes the light model.
func (w *RenderWorld) SetLightType(h pool.Handle, t LightType) {
	p := w.lights.Get(h)
	if p == nil {
		return
	}
	p.Type = t
	w.markDirty(DirtyLights)
}

// SetLightPosition writes the world position.
func (w *RenderWorld) SetLightPosition(h pool.Handle, pos mgl32.Vec3) {
	p := w.lights.Get(h)
	if p == nil {
		return
	}
	p.Position = pos
	w.markDirty(DirtyLights)
}

// SetLightDirection writes the direction, normalized.
func (w *RenderWorld) SetLightDirection(h pool.Handle, dir mgl32.Vec3) {
	p := w.lights.Get(h)
	if p == nil {
		return
	}
	if dir.Len() > 0 {
		dir = dir.Normalize()
	}
	p.Direction = dir
	w.markDirty(DirtyLights)
}

// SetLightColor writes color and intensity together.
func (w *RenderWorld) SetLightColor(h pool.Handle, color mgl32.Vec3, intensity float32) {
	p := w.lights.Get(h)
	if p == nil {
		return
	}
	p.Color = color
	p.Intensity = intensity
	w.markDirty(DirtyLights)
}

// SetLightRange writes the falloff range.
func (w *RenderWorld) SetLightRange(h pool.Handle, rng float32) {
	p := w.lights.Get(h)
	if p == nil {
		return
	}
	p.Range = rng
	w.markDirty(DirtyLights)
}

// SetLightCone writes the spot inner/outer half-angles in radians.
func (w *RenderWorld) SetLightCone(h pool.Handle, inner, outer float32) {
	p := w.lights.Get(h)
	if p == nil {
		return
	}
	p.InnerCone = inner
	p.OuterCone = outer
	w.markDirty(DirtyLights)
}

// SetLightEnabled toggles the light.
func (w *RenderWorld) SetLightEnabled(h pool.Handle, enabled bool) {
	p := w.lights.Get(h)
	if p == nil {
		return
	}
	p.Enabled = enabled
	w.markDirty(DirtyLights)
}

// DestroyLight frees the proxy slot.
func (w *RenderWorld) DestroyLight(h pool.Handle) {
	if w.lights.Free(h) {
		w.markDirty(DirtyLights)
	}
}

// ForEachLight visits every live light proxy in index order.
func (w *RenderWorld) ForEachLight(fn func(pool.Handle, *LightProxy)) {
	w.lights.ForEach(fn)
}

// =============================================================================
// Camera proxies
// =============================================================================

// CreateCamera allocates an enabled camera looking down -Z with a 60
// degree vertical FOV.
func (w *RenderWorld) CreateCamera() pool.Handle {
	h := w.cameras.Allocate()
	*w.cameras.Get(h) = CameraProxy{
		Forward:      mgl32.Vec3{0, 0, -1},
		Up:           mgl32.Vec3{0, 1, 0},
		FOV:          float32(60 * math.Pi / 180),
		Near:         0.1,
		Far:          1000,
		Aspect:       16.0 / 9.0,
		View:         mgl32.Ident4(),
		Proj:         mgl32.Ident4(),
		ViewProj:     mgl32.Ident4(),
		PrevViewProj: mgl32.Ident4(),
		InvView:      mgl32.Ident4(),
		InvProj:      mgl32.Ident4(),
		LayerMask:    ^uint32(0),
		Enabled:      true,
	}
	w.markDirty(DirtyCameras)
	return h
}

// Camera returns the proxy for h, or nil if h is stale.
func (w *RenderWorld) Camera(h pool.Handle) *CameraProxy {
	return w.cameras.Get(h)
}

// SetCameraPose writes position and orientation.
func (w *RenderWorld) SetCameraPose(h pool.Handle, pos, forward, up mgl32.Vec3) {
	p := w.cameras.Get(h)
	if p == nil {
		return
	}
	p.Position = pos
	if forward.Len() > 0 {
		p.Forward = forward.Normalize()
	}
	if up.Len() > 0 {
		p.Up = up.Normalize()
	}
	w.markDirty(DirtyCameras)
}

// SetCameraLens writes FOV (radians), aspect ratio and clip distances.
func (w *RenderWorld) SetCameraLens(h pool.Handle, fov, aspect, near, far float32) {
	p := w.cameras.Get(h)
	if p == nil {
		return
	}
	p.FOV = fov
	p.Aspect = aspect
	p.Near = near
	p.Far = far
	w.markDirty(DirtyCameras)
}

// SetCameraViewport writes the viewport size in pixels.
func (w *RenderWorld) SetCameraViewport(h pool.Handle, size mgl32.Vec2) {
	p := w.cameras.Get(h)
	if p == nil {
		return
	}
	p.ViewportSize = size
	if size.Y() > 0 {
		p.Aspect = size.X() / size.Y()
	}
	w.markDirty(DirtyCameras)
}

// SetCameraJitter writes the TAA sub-pixel clip-space offset.
func (w *RenderWorld) SetCameraJitter(h pool.Handle, jitter mgl32.Vec2) {
	p := w.cameras.Get(h)
	if p == nil {
		return
	}
	p.Jitter = jitter
	w.markDirty(DirtyCameras)
}

// SetCameraReverseZ toggles the reverse-Z depth mapping.
func (w *RenderWorld) SetCameraReverseZ(h pool.Handle, reverse bool) {
	p := w.cameras.Get(h)
	if p == nil {
		return
	}
	p.ReverseZ = reverse
	w.markDirty(DirtyCameras)
}

// SetCameraLayerMask writes the visibility layer mask.
func (w *RenderWorld) SetCameraLayerMask(h pool.Handle, mask uint32) {
	p := w.cameras.Get(h)
	if p == nil {
		return
	}
	p.LayerMask = mask
	w.markDirty(DirtyCameras)
}

// SetCameraPriority writes the render-order priority.
func (w *RenderWorld) SetCameraPriority(h pool.Handle, priority int) {
	p := w.cameras.Get(h)
	if p == nil {
		return
	}
	p.Priority = priority
	w.markDirty(DirtyCameras)
}

// SetCameraEnabled toggles per-frame matrix refresh and rendering.
func (w *RenderWorld) SetCameraEnabled(h pool.Handle, enabled bool) {
	p := w.cameras.Get(h)
	if p == nil {
		return
	}
	p.Enabled = enabled
	w.markDirty(DirtyCameras)
}

// SetMainCamera flags h as the main camera, clearing the flag on the
// previous holder; exactly one camera is main at a time. Passing a stale
// handle is a no-op; passing pool.Invalid clears the selection.
func (w *RenderWorld) SetMainCamera(h pool.Handle) {
	if h.IsValid() && w.cameras.Get(h) == nil {
		return
	}
	if prev := w.cameras.Get(w.mainCamera); prev != nil {
		prev.IsMain = false
	}
	w.mainCamera = pool.Invalid
	if p := w.cameras.Get(h); p != nil {
		p.IsMain = true
		w.mainCamera = h
	}
	w.markDirty(DirtyCameras)
}

// MainCamera returns the main camera handle, pool.Invalid if none.
func (w *RenderWorld) MainCamera() pool.Handle { return w.mainCamera }

// MainCameraProxy returns the main camera proxy, nil if none.
func (w *RenderWorld) MainCameraProxy() *CameraProxy {
	return w.cameras.Get(w.mainCamera)
}

// DestroyCamera frees the proxy slot, clearing the main-camera selection
// if it pointed at h.
func (w *RenderWorld) DestroyCamera(h pool.Handle) {
	if h == w.mainCamera && w.cameras.Get(h) != nil {
		w.mainCamera = pool.Invalid
	}
	if w.cameras.Free(h) {
		w.markDirty(DirtyCameras)
	}
}

// ForEachCamera visits every live camera proxy in index order.
func (w *RenderWorld) ForEachCamera(fn func(pool.Handle, *CameraProxy)) {
	w.cameras.ForEach(fn)
}

// =============================================================================
// Particle emitter proxies
// =============================================================================

// CreateEmitter allocates an emitter with local-space alpha-blended
// defaults and its CPU simulation scratch allocated.
func (w *RenderWorld) CreateEmitter() pool.Handle {
	h := w.emitters.Allocate()
	p := w.emitters.Get(h)
	*p = ParticleEmitterProxy{
		Transform:      mgl32.Ident4(),
		Blend:          BlendAlpha,
		ParticleBuffer: pool.Invalid,
		IndirectBuffer: pool.Invalid,
		SpawnRate:      10,
		Lifetime:       1,
		StartSize:      1,
		EndSize:        1,
		StartColor:     mgl32.Vec4{1, 1, 1, 1},
		EndColor:       mgl32.Vec4{1, 1, 1, 0},
		MaxParticles:   1024,
		AtlasTilesX:    1,
		AtlasTilesY:    1,
	}
	p.ensureSim()
	w.markDirty(DirtyEmitters)
	return h
}

// Emitter returns the proxy for h, or nil if h is stale.
func (w *RenderWorld) Emitter(h pool.Handle) *ParticleEmitterProxy {
	return w.emitters.Get(h)
}

// SetEmitterTransform writes the emitter transform.
func (w *RenderWorld) SetEmitterTransform(h pool.Handle, m mgl32.Mat4) {
	p := w.emitters.Get(h)
	if p == nil {
		return
	}
	p.Transform = m
	w.markDirty(DirtyEmitters)
}

// SetEmitterSpace writes the simulation space.
func (w *RenderWorld) SetEmitterSpace(h pool.Handle, space SimulationSpace) {
	p := w.emitters.Get(h)
	if p == nil {
		return
	}
	p.Space = space
	w.markDirty(DirtyEmitters)
}

// SetEmitterBlend writes the blend mode.
func (w *RenderWorld) SetEmitterBlend(h pool.Handle, blend BlendMode) {
	p := w.emitters.Get(h)
	if p == nil {
		return
	}
	p.Blend = blend
	w.markDirty(DirtyEmitters)
}

// SetEmitterBuffers points the emitter at its GPU particle and indirect
// draw buffers in the gpu buffer pool.
func (w *RenderWorld) SetEmitterBuffers(h, particle, indirect pool.Handle) {
	p := w.emitters.Get(h)
	if p == nil {
		return
	}
	p.ParticleBuffer = particle
	p.IndirectBuffer = indirect
	w.markDirty(DirtyEmitters)
}

// SetEmitterSpawn writes spawn rate (particles/second) and lifetime.
func (w *RenderWorld) SetEmitterSpawn(h pool.Handle, rate, lifetime float32) {
	p := w.emitters.Get(h)
	if p == nil {
		return
	}
	p.SpawnRate = rate
	p.Lifetime = lifetime
	w.markDirty(DirtyEmitters)
}

// SetEmitterSize writes start/end size over lifetime.
func (w *RenderWorld) SetEmitterSize(h pool.Handle, start, end float32) {
	p := w.emitters.Get(h)
	if p == nil {
		return
	}
	p.StartSize = start
	p.EndSize = end
	w.markDirty(DirtyEmitters)
}

// SetEmitterColor writes start/end color over lifetime.
func (w *RenderWorld) SetEmitterColor(h pool.Handle, start, end mgl32.Vec4) {
	p := w.emitters.Get(h)
	if p == nil {
		return
	}
	p.StartColor = start
	p.EndColor = end
	w.markDirty(DirtyEmitters)
}

// SetEmitterVelocity writes the initial particle velocity.
func (w *RenderWorld) SetEmitterVelocity(h pool.Handle, v mgl32.Vec3) {
	p := w.emitters.Get(h)
	if p == nil {
		return
	}
	p.Velocity = v
	w.markDirty(DirtyEmitters)
}

// SetEmitterBursts replaces the burst schedule.
func (w *RenderWorld) SetEmitterBursts(h pool.Handle, bursts []Burst) {
	p := w.emitters.Get(h)
	if p == nil {
		return
	}
	p.Bursts = append(p.Bursts[:0], bursts...)
	w.markDirty(DirtyEmitters)
}

// DestroyEmitter releases the emitter's CPU simulation scratch, then
// frees the slot. GPU buffers it referenced stay owned by the gpu buffer
// pool and must be released there.
func (w *RenderWorld) DestroyEmitter(h pool.Handle) {
	p := w.emitters.Get(h)
	if p == nil {
		return
	}
	p.releaseSim()
	w.emitters.Free(h)
	w.markDirty(DirtyEmitters)
}

// ForEachEmitter visits every live emitter proxy in index order.
func (w *RenderWorld) ForEachEmitter(fn func(pool.Handle, *ParticleEmitterProxy)) {
	w.emitters.ForEach(fn)
}

// =============================================================================
// Sprite proxies
// =============================================================================

// CreateSprite allocates a unit sprite with full UVs and white tint.
func (w *RenderWorld) CreateSprite() pool.Handle {
	h := w.sprites.Allocate()
	*w.sprites.Get(h) = SpriteProxy{
		Size:    mgl32.Vec2{1, 1},
		UVRect:  mgl32.Vec4{0, 0, 1, 1},
		Tint:    mgl32.Vec4{1, 1, 1, 1},
		Texture: pool.Invalid,
	}
	w.markDirty(DirtySprites)
	return h
}

// Sprite returns the proxy for h, or nil if h is stale.
func (w *RenderWorld) Sprite(h pool.Handle) *SpriteProxy {
	return w.sprites.Get(h)
}

// SetSpritePosition writes the world position.
func (w *RenderWorld) SetSpritePosition(h pool.Handle, pos mgl32.Vec3) {
	p := w.sprites.Get(h)
	if p == nil {
		return
	}
	p.Position = pos
	w.markDirty(DirtySprites)
}

// SetSpriteSize writes the sprite size.
func (w *RenderWorld) SetSpriteSize(h pool.Handle, size mgl32.Vec2) {
	p := w.sprites.Get(h)
	if p == nil {
		return
	}
	p.Size = size
	w.markDirty(DirtySprites)
}

// SetSpriteUVRect writes the texture rectangle (u0, v0, u1, v1).
func (w *RenderWorld) SetSpriteUVRect(h pool.Handle, uv mgl32.Vec4) {
	p := w.sprites.Get(h)
	if p == nil {
		return
	}
	p.UVRect = uv
	w.markDirty(DirtySprites)
}

// SetSpriteTint writes the tint color.
func (w *RenderWorld) SetSpriteTint(h pool.Handle, tint mgl32.Vec4) {
	p := w.sprites.Get(h)
	if p == nil {
		return
	}
	p.Tint = tint
	w.markDirty(DirtySprites)
}

// SetSpriteTexture writes the opaque texture handle.
func (w *RenderWorld) SetSpriteTexture(h, texture pool.Handle) {
	p := w.sprites.Get(h)
	if p == nil {
		return
	}
	p.Texture = texture
	w.markDirty(DirtySprites)
}

// DestroySprite frees the proxy slot.
func (w *RenderWorld) DestroySprite(h pool.Handle) {
	if w.sprites.Free(h) {
		w.markDirty(DirtySprites)
	}
}

// ForEachSprite visits every live sprite proxy in index order.
func (w *RenderWorld) ForEachSprite(fn func(pool.Handle, *SpriteProxy)) {
	w.sprites.ForEach(fn)
}

// =============================================================================
// Frame lifecycle
// =============================================================================

// BeginFrame refreshes view/projection matrices and frustum planes for
// every live, enabled camera. Camera matrices are never implicitly stale
// across a frame boundary.
func (w *RenderWorld) BeginFrame() {
	w.cameras.ForEach(func(_ pool.Handle, c *CameraProxy) {
		if c.Enabled {
			c.updateMatrices()
		}
	})
}

// EndFrame saves current transforms as previous-frame transforms on mesh
// and skinned proxies, clears per-proxy transient flags (Dirty, Culled)
// and clears the per-kind dirty bitset exactly once. It then advances the
// frame counter.
func (w *RenderWorld) EndFrame() {
	w.meshes.ForEach(func(_ pool.Handle, p *MeshProxy) {
		p.PrevTransform = p.Transform
		p.Flags &^= FlagDirty | FlagCulled
	})
	w.skinned.ForEach(func(_ pool.Handle, p *SkinnedMeshProxy) {
		p.PrevTransform = p.Transform
		p.Flags &^= FlagDirty | FlagCulled
		p.BonesDirty = false
	})
	w.ClearDirtyFlags()
	w.frame++
}

// Clear frees every proxy pool, releasing proxy-owned simulation state,
// and resets the main camera selection. Every outstanding handle becomes
// stale.
func (w *RenderWorld) Clear() {
	w.emitters.ForEach(func(_ pool.Handle, p *ParticleEmitterProxy) {
		p.releaseSim()
	})
	w.meshes.Clear()
	w.skinned.Clear()
	w.lights.Clear()
	w.cameras.Clear()
	w.emitters.Clear()
	w.sprites.Clear()
	w.mainCamera = pool.Invalid
	w.dirty = 0
}

// WorldStats holds per-kind pool occupancy.
type WorldStats struct {
	Meshes   pool.Stats
	Skinned  pool.Stats
	Lights   pool.Stats
	Cameras  pool.Stats
	Emitters pool.Stats
	Sprites  pool.Stats
}

// Stats returns pool occupancy for every proxy kind.
func (w *RenderWorld) Stats() WorldStats {
	return WorldStats{
		Meshes:   w.meshes.Stats(),
		Skinned:  w.skinned.Stats(),
		Lights:   w.lights.Stats(),
		Cameras:  w.cameras.Stats(),
		Emitters: w.emitters.Stats(),
		Sprites:  w.sprites.Stats(),
	}
}
