package renderworld

import "github.com/gogpu/renderworld/pool"

// CollectMeshes appends every live mesh proxy that is Visible, matches
// the camera layer mask and passes the frustum test against WorldBounds
// to dst, returning the extended slice. Rejected proxies get FlagCulled;
// accepted proxies get DistanceToCamera filled for later sorting.
//
// Callers that cull by other means may skip this and hand the batch
// builder any proxy list they like.
func CollectMeshes(w *RenderWorld, cam *CameraProxy, dst []*MeshProxy) []*MeshProxy {
	if cam == nil {
		return dst
	}
	w.ForEachMesh(func(_ pool.Handle, p *MeshProxy) {
		if !p.Flags.Has(FlagVisible) || p.LayerMask&cam.LayerMask == 0 {
			return
		}
		if !cam.Frustum.IntersectsAABB(p.WorldBounds) {
			p.Flags |= FlagCulled
			return
		}
		p.DistanceToCamera = p.WorldBounds.Center().Sub(cam.Position).Len()
		dst = append(dst, p)
	})
	return dst
}

// CollectSkinned is CollectMeshes for skinned proxies.
func CollectSkinned(w *RenderWorld, cam *CameraProxy, dst []*SkinnedMeshProxy) []*SkinnedMeshProxy {
	if cam == nil {
		return dst
	}
	w.ForEachSkinnedMesh(func(_ pool.Handle, p *SkinnedMeshProxy) {
		if !p.Flags.Has(FlagVisible) || p.LayerMask&cam.LayerMask == 0 {
			return
		}
		if !cam.Frustum.IntersectsAABB(p.WorldBounds) {
			p.Flags |= FlagCulled
			return
		}
		p.DistanceToCamera = p.WorldBounds.Center().Sub(cam.Position).Len()
		dst = append(dst, p)
	})
	return dst
}
