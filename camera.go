package renderworld

import "github.com/go-gl/mathgl/mgl32"

// Plane is a half-space in Hessian normal form: a point p is inside when
// dot(Normal, p) + Distance >= 0.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// normalized returns the plane scaled so Normal has unit length.
func (p Plane) normalized() Plane {
	mag := p.Normal.Len()
	if mag == 0 {
		return p
	}
	inv := 1.0 / mag
	return Plane{Normal: p.Normal.Mul(inv), Distance: p.Distance * inv}
}

// Frustum is the six camera planes, normals pointing inward.
// Order: left, right, bottom, top, near, far.
type Frustum [6]Plane

// FrustumFromMatrix extracts the six planes from a composed
// view-projection matrix (Gribb/Hartmann). Works for any projection the
// matrix encodes, including jittered and reverse-Z variants, because it
// only reads the composed rows.
func FrustumFromMatrix(m mgl32.Mat4) Frustum {
	r0 := m.Row(0)
	r1 := m.Row(1)
	r2 := m.Row(2)
	r3 := m.Row(3)

	plane := func(v mgl32.Vec4) Plane {
		return Plane{Normal: v.Vec3(), Distance: v.W()}.normalized()
	}

	return Frustum{
		plane(r3.Add(r0)), // left
		plane(r3.Sub(r0)), // right
		plane(r3.Add(r1)), // bottom
		plane(r3.Sub(r1)), // top
		plane(r3.Add(r2)), // near
		plane(r3.Sub(r2)), // far
	}
}

// ContainsPoint reports whether p is inside all six planes.
func (f Frustum) ContainsPoint(p mgl32.Vec3) bool {
	for i := range f {
		if f[i].Normal.Dot(p)+f[i].Distance < 0 {
			return false
		}
	}
	return true
}

// IntersectsSphere reports whether a sphere overlaps the frustum.
func (f Frustum) IntersectsSphere(center mgl32.Vec3, radius float32) bool {
	for i := range f {
		if f[i].Normal.Dot(center)+f[i].Distance < -radius {
			return false
		}
	}
	return true
}

// IntersectsAABB reports whether the box overlaps the frustum, using the
// positive-vertex test: for each plane, the box corner furthest along the
// plane normal decides rejection.
func (f Frustum) IntersectsAABB(b AABB) bool {
	for i := range f {
		n := f[i].Normal
		p := b.Min
		if n.X() >= 0 {
			p[0] = b.Max.X()
		}
		if n.Y() >= 0 {
			p[1] = b.Max.Y()
		}
		if n.Z() >= 0 {
			p[2] = b.Max.Z()
		}
		if n.Dot(p)+f[i].Distance < 0 {
			return false
		}
	}
	return true
}

// CameraProxy is the render-side record of a camera. Scene code writes
// the pose and lens fields through RenderWorld setters; the cached
// matrices and frustum are refreshed once per frame by BeginFrame and are
// never implicitly stale across a frame boundary.
type CameraProxy struct {
	Position mgl32.Vec3
	Forward  mgl32.Vec3
	Up       mgl32.Vec3
	// Right is derived from Forward and Up during the matrix refresh.
	Right mgl32.Vec3

	// FOV is the vertical field of view in radians.
	FOV    float32
	Near   float32
	Far    float32
	Aspect float32

	// ReverseZ swaps the depth mapping for improved precision on far
	// geometry; the projection is built with near/far exchanged.
	ReverseZ bool

	// Jitter is the sub-pixel TAA offset applied to the projection in
	// clip space.
	Jitter mgl32.Vec2

	View         mgl32.Mat4
	Proj         mgl32.Mat4
	ViewProj     mgl32.Mat4
	PrevViewProj mgl32.Mat4
	InvView      mgl32.Mat4
	InvProj      mgl32.Mat4

	Frustum Frustum

	ViewportSize mgl32.Vec2
	LayerMask    uint32
	Priority     int
	IsMain       bool
	Enabled      bool
}

// updateMatrices rebuilds the cached matrices and frustum from the
// current pose and lens. The previous view-projection is saved first, so
// motion vectors see last frame's matrix.
func (c *CameraProxy) updateMatrices() {
	c.PrevViewProj = c.ViewProj

	c.Right = c.Forward.Cross(c.Up).Normalize()
	c.View = mgl32.LookAtV(c.Position, c.Position.Add(c.Forward), c.Up)

	near, far := c.Near, c.Far
	if c.ReverseZ {
		near, far = far, near
	}
	c.Proj = mgl32.Perspective(c.FOV, c.Aspect, near, far)

	// TAA jitter shifts clip-space x/y by a sub-pixel amount. Column 2
	// holds the w-scaled translation terms in a perspective matrix.
	if c.Jitter[0] != 0 || c.Jitter[1] != 0 {
		c.Proj[8] += c.Jitter[0]
		c.Proj[9] += c.Jitter[1]
	}

	c.ViewProj = c.Proj.Mul4(c.View)
	c.InvView = c.View.Inv()
	c.InvProj = c.Proj.Inv()
	c.Frustum = FrustumFromMatrix(c.ViewProj)
}
