package renderworld

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/renderworld/pool"
)

func TestCreateMeshDefaults(t *testing.T) {
	w := NewRenderWorld()
	h := w.CreateMesh()

	p := w.Mesh(h)
	if p == nil {
		t.Fatal("Mesh returned nil for a fresh handle")
	}
	if p.Flags != DefaultMeshFlags {
		t.Errorf("Flags = %v, want %v", p.Flags, DefaultMeshFlags)
	}
	if p.Transform != mgl32.Ident4() {
		t.Error("Transform not identity")
	}
	if p.Material.IsValid() || p.Mesh.IsValid() {
		t.Error("fresh proxy carries resource handles")
	}
	if p.LayerMask != ^uint32(0) {
		t.Errorf("LayerMask = %#x, want all layers", p.LayerMask)
	}
	if !w.Dirty().Has(DirtyMeshes) {
		t.Error("DirtyMeshes not set by CreateMesh")
	}
}

func TestWorldBoundsFollowTransform(t *testing.T) {
	w := NewRenderWorld()
	h := w.CreateMesh()

	local := AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}
	w.SetMeshLocalBounds(h, local)
	w.SetMeshTransform(h, mgl32.Translate3D(10, 0, 0))

	p := w.Mesh(h)
	if !vecNear(p.WorldBounds.Min, mgl32.Vec3{9, -1, -1}) ||
		!vecNear(p.WorldBounds.Max, mgl32.Vec3{11, 1, 1}) {
		t.Errorf("WorldBounds = %+v after transform", p.WorldBounds)
	}

	// And the other write order: transform first, bounds second.
	h2 := w.CreateMesh()
	w.SetMeshTransform(h2, mgl32.Translate3D(0, 5, 0))
	w.SetMeshLocalBounds(h2, local)
	if got := w.Mesh(h2).WorldBounds; !vecNear(got.Min, mgl32.Vec3{-1, 4, -1}) {
		t.Errorf("WorldBounds = %+v, want translated by (0, 5, 0)", got)
	}
}

func TestSettersNoOpOnStaleHandle(t *testing.T) {
	w := NewRenderWorld()
	h := w.CreateMesh()
	w.DestroyMesh(h)
	w.ClearDirtyFlags()

	// None of these may panic or re-mark the world dirty.
	w.SetMeshTransform(h, mgl32.Translate3D(1, 2, 3))
	w.SetMeshFlags(h, FlagVisible)
	w.SetMeshTint(h, mgl32.Vec4{1, 0, 0, 1})
	w.DestroyMesh(h)

	if w.Mesh(h) != nil {
		t.Error("stale handle resolves")
	}
	if w.Dirty() != 0 {
		t.Errorf("Dirty = %v after stale mutations, want 0", w.Dirty())
	}
	if got := w.Stats().Meshes.Live; got != 0 {
		t.Errorf("Live = %d, want 0", got)
	}
}

func TestHandleStaleAfterDestroyAndReuse(t *testing.T) {
	w := NewRenderWorld()
	h1 := w.CreateMesh()
	w.DestroyMesh(h1)

	h2 := w.CreateMesh() // reuses the slot at a new generation
	if h1.Index != h2.Index {
		t.Fatalf("slot not reused: %d vs %d", h1.Index, h2.Index)
	}
	if w.Mesh(h1) != nil {
		t.Error("old-generation handle resolves to the reused slot")
	}
	if w.Mesh(h2) == nil {
		t.Error("new handle does not resolve")
	}
}

func TestSetMeshLegacyMaterials(t *testing.T) {
	w := NewRenderWorld()
	h := w.CreateMesh()

	w.SetMeshLegacyMaterials(h, 5, 9, 2)
	p := w.Mesh(h)
	if p.SubMaterialCount != 3 {
		t.Fatalf("SubMaterialCount = %d, want 3", p.SubMaterialCount)
	}
	if p.LegacyMaterials[0] != 5 || p.LegacyMaterials[1] != 9 || p.LegacyMaterials[2] != 2 {
		t.Errorf("LegacyMaterials = %v", p.LegacyMaterials[:3])
	}

	// More ids than slots: the overflow is dropped.
	w.SetMeshLegacyMaterials(h, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	if got := w.Mesh(h).SubMaterialCount; got != MaxSubMaterials {
		t.Errorf("SubMaterialCount = %d, want %d", got, MaxSubMaterials)
	}
}

func TestMainCameraExactlyOne(t *testing.T) {
	w := NewRenderWorld()
	a := w.CreateCamera()
	b := w.CreateCamera()

	w.SetMainCamera(a)
	if !w.Camera(a).IsMain {
		t.Fatal("first camera not marked main")
	}

	w.SetMainCamera(b)
	if w.Camera(a).IsMain {
		t.Error("previous main camera still marked main")
	}
	if !w.Camera(b).IsMain {
		t.Error("new main camera not marked main")
	}
	if w.MainCamera() != b {
		t.Error("MainCamera handle mismatch")
	}

	w.SetMainCamera(pool.Invalid)
	if w.Camera(b).IsMain || w.MainCamera().IsValid() {
		t.Error("clearing main camera left state behind")
	}
}

func TestDestroyMainCameraClearsSelection(t *testing.T) {
	w := NewRenderWorld()
	h := w.CreateCamera()
	w.SetMainCamera(h)

	w.DestroyCamera(h)
	if w.MainCamera().IsValid() {
		t.Error("main camera reference survived destroy")
	}
	if w.MainCameraProxy() != nil {
		t.Error("MainCameraProxy resolves after destroy")
	}
}

func TestBeginFrameRefreshesEnabledCameras(t *testing.T) {
	w := NewRenderWorld()
	on := w.CreateCamera()
	off := w.CreateCamera()
	w.SetCameraPose(on, mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	w.SetCameraPose(off, mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	w.SetCameraEnabled(off, false)

	before := w.Camera(on).ViewProj
	w.BeginFrame()

	if w.Camera(on).ViewProj == before {
		t.Error("enabled camera matrices not refreshed")
	}
	if w.Camera(off).ViewProj != mgl32.Ident4() {
		t.Error("disabled camera matrices refreshed")
	}
}

func TestEndFrame(t *testing.T) {
	w := NewRenderWorld()
	h := w.CreateMesh()
	m := mgl32.Translate3D(3, 0, 0)
	w.SetMeshTransform(h, m)

	sk := w.CreateSkinnedMesh()
	w.SkinnedMesh(sk).BonesDirty = true

	frame := w.Frame()
	w.EndFrame()

	p := w.Mesh(h)
	if p.PrevTransform != m {
		t.Error("PrevTransform not saved by EndFrame")
	}
	if p.Flags.Has(FlagDirty) {
		t.Error("FlagDirty survived EndFrame")
	}
	if w.SkinnedMesh(sk).BonesDirty {
		t.Error("BonesDirty survived EndFrame")
	}
	if w.Dirty() != 0 {
		t.Errorf("Dirty = %v after EndFrame, want 0", w.Dirty())
	}
	if w.Frame() != frame+1 {
		t.Error("frame counter not advanced")
	}
}

func TestDestroyEmitterReleasesSimulation(t *testing.T) {
	w := NewRenderWorld()
	h := w.CreateEmitter()

	if w.Emitter(h).sim == nil {
		t.Fatal("emitter created without simulation state")
	}
	e := w.Emitter(h)
	w.DestroyEmitter(h)

	if e.sim != nil {
		t.Error("simulation state survived destroy")
	}
	if w.Emitter(h) != nil {
		t.Error("stale emitter handle resolves")
	}
}

func TestWorldClear(t *testing.T) {
	w := NewRenderWorld()
	mesh := w.CreateMesh()
	cam := w.CreateCamera()
	w.SetMainCamera(cam)
	w.CreateLight()
	w.CreateEmitter()
	w.CreateSprite()
	w.CreateSkinnedMesh()

	w.Clear()

	s := w.Stats()
	if s.Meshes.Live+s.Skinned.Live+s.Lights.Live+s.Cameras.Live+s.Emitters.Live+s.Sprites.Live != 0 {
		t.Errorf("stats = %+v after Clear, want all empty", s)
	}
	if w.Mesh(mesh) != nil || w.Camera(cam) != nil {
		t.Error("pre-Clear handles resolve")
	}
	if w.MainCamera().IsValid() {
		t.Error("main camera survived Clear")
	}
	if w.Dirty() != 0 {
		t.Error("dirty flags survived Clear")
	}
}

func TestDirtyFlagsPerKind(t *testing.T) {
	w := NewRenderWorld()

	tests := []struct {
		name   string
		create func() pool.Handle
		want   DirtyKind
	}{
		{"mesh", w.CreateMesh, DirtyMeshes},
		{"skinned", w.CreateSkinnedMesh, DirtySkinned},
		{"light", w.CreateLight, DirtyLights},
		{"camera", w.CreateCamera, DirtyCameras},
		{"emitter", w.CreateEmitter, DirtyEmitters},
		{"sprite", w.CreateSprite, DirtySprites},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w.ClearDirtyFlags()
			tt.create()
			if !w.Dirty().Has(tt.want) {
				t.Errorf("Dirty = %v, want %v set", w.Dirty(), tt.want)
			}
		})
	}
}
