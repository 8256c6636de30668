package renderworld

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func vecNear(a, b mgl32.Vec3) bool {
	return a.Sub(b).Len() < 1e-5
}

func TestAABBCenterExtents(t *testing.T) {
	b := AABB{Min: mgl32.Vec3{-1, 0, 2}, Max: mgl32.Vec3{3, 4, 6}}

	if got := b.Center(); !vecNear(got, mgl32.Vec3{1, 2, 4}) {
		t.Errorf("Center() = %v, want (1, 2, 4)", got)
	}
	if got := b.Extents(); !vecNear(got, mgl32.Vec3{2, 2, 2}) {
		t.Errorf("Extents() = %v, want (2, 2, 2)", got)
	}
}

func TestAABBUnion(t *testing.T) {
	a := AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}
	b := AABB{Min: mgl32.Vec3{0, 2, -3}, Max: mgl32.Vec3{4, 3, 0}}

	u := a.Union(b)
	if !vecNear(u.Min, mgl32.Vec3{-1, -1, -3}) || !vecNear(u.Max, mgl32.Vec3{4, 3, 1}) {
		t.Errorf("Union = %+v", u)
	}
}

func TestAABBTransformed(t *testing.T) {
	unit := AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}

	tests := []struct {
		name     string
		m        mgl32.Mat4
		min, max mgl32.Vec3
	}{
		{
			"identity",
			mgl32.Ident4(),
			mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1},
		},
		{
			"translate",
			mgl32.Translate3D(10, 0, -5),
			mgl32.Vec3{9, -1, -6}, mgl32.Vec3{11, 1, -4},
		},
		{
			"scale",
			mgl32.Scale3D(2, 3, 1),
			mgl32.Vec3{-2, -3, -1}, mgl32.Vec3{2, 3, 1},
		},
		{
			// A 90 degree rotation about Z maps the X extent onto Y.
			"rotate",
			mgl32.HomogRotate3DZ(mgl32.DegToRad(90)),
			mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := unit.Transformed(tt.m)
			if !vecNear(got.Min, tt.min) || !vecNear(got.Max, tt.max) {
				t.Errorf("Transformed = %+v, want Min %v Max %v", got, tt.min, tt.max)
			}
		})
	}
}

// The transformed box must contain the images of all corners, not just
// the transformed Min/Max pair.
func TestAABBTransformedIsConservative(t *testing.T) {
	b := AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 2, 3}}
	m := mgl32.HomogRotate3DY(0.7).Mul4(mgl32.Translate3D(-2, 1, 4))

	got := b.Transformed(m)
	for _, corner := range []mgl32.Vec3{
		{0, 0, 0}, {1, 0, 0}, {0, 2, 0}, {0, 0, 3},
		{1, 2, 0}, {1, 0, 3}, {0, 2, 3}, {1, 2, 3},
	} {
		p := m.Mul4x1(corner.Vec4(1)).Vec3()
		for i := 0; i < 3; i++ {
			if p[i] < got.Min[i]-1e-5 || p[i] > got.Max[i]+1e-5 {
				t.Fatalf("corner %v maps to %v outside %+v", corner, p, got)
			}
		}
	}
}
