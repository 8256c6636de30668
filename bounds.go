package renderworld

import "github.com/go-gl/mathgl/mgl32"

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Center returns the box midpoint.
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Extents returns the half-size along each axis.
func (b AABB) Extents() mgl32.Vec3 {
	return b.Max.Sub(b.Min).Mul(0.5)
}

// Union returns the smallest box containing both b and o.
func (b AABB) Union(o AABB) AABB {
	return AABB{
		Min: mgl32.Vec3{
			min32(b.Min.X(), o.Min.X()),
			min32(b.Min.Y(), o.Min.Y()),
			min32(b.Min.Z(), o.Min.Z()),
		},
		Max: mgl32.Vec3{
			max32(b.Max.X(), o.Max.X()),
			max32(b.Max.Y(), o.Max.Y()),
			max32(b.Max.Z(), o.Max.Z()),
		},
	}
}

// Transformed returns the axis-aligned box enclosing the image of b under
// m, computed over the eight transformed corners.
func (b AABB) Transformed(m mgl32.Mat4) AABB {
	corners := [8]mgl32.Vec3{
		{b.Min.X(), b.Min.Y(), b.Min.Z()},
		{b.Max.X(), b.Min.Y(), b.Min.Z()},
		{b.Min.X(), b.Max.Y(), b.Min.Z()},
		{b.Min.X(), b.Min.Y(), b.Max.Z()},
		{b.Max.X(), b.Max.Y(), b.Min.Z()},
		{b.Max.X(), b.Min.Y(), b.Max.Z()},
		{b.Min.X(), b.Max.Y(), b.Max.Z()},
		{b.Max.X(), b.Max.Y(), b.Max.Z()},
	}

	first := m.Mul4x1(corners[0].Vec4(1)).Vec3()
	out := AABB{Min: first, Max: first}
	for i := 1; i < 8; i++ {
		p := m.Mul4x1(corners[i].Vec4(1)).Vec3()
		for axis := 0; axis < 3; axis++ {
			if p[axis] < out.Min[axis] {
				out.Min[axis] = p[axis]
			}
			if p[axis] > out.Max[axis] {
				out.Max[axis] = p[axis]
			}
		}
	}
	return out
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
