// Package batch turns the frame's visible proxies into instanced draw
// batches: sort by (mesh, material), emit one batch per contiguous key
// run, upload one instance buffer, draw with minimal state switches.
package batch

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// InstanceStride is the byte size of one per-instance record: world
// matrix, normal matrix and tint, all float32.
const InstanceStride = 16*4 + 16*4 + 4*4

// InstanceData is one per-instance shader record.
type InstanceData struct {
	// World is the proxy's world transform.
	World mgl32.Mat4

	// Normal is transpose(inverse(World)), correct for non-uniform
	// scale.
	Normal mgl32.Mat4

	// Tint is per-instance color/custom data.
	Tint mgl32.Vec4
}

// appendInstance encodes d little-endian into dst and returns the
// extended slice. The layout matches the instance vertex buffer layout
// the pipelines declare: world columns 0..3, normal columns 0..3, tint.
func appendInstance(dst []byte, d *InstanceData) []byte {
	for i := 0; i < 16; i++ {
		dst = appendFloat32(dst, d.World[i])
	}
	for i := 0; i < 16; i++ {
		dst = appendFloat32(dst, d.Normal[i])
	}
	for i := 0; i < 4; i++ {
		dst = appendFloat32(dst, d.Tint[i])
	}
	return dst
}

func appendFloat32(dst []byte, f float32) []byte {
	return binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
}

// normalMatrix computes transpose(inverse(world)). A singular world
// matrix yields the zero matrix from Inv; that degenerate instance
// shades wrong but cannot corrupt the stream.
func normalMatrix(world mgl32.Mat4) mgl32.Mat4 {
	return world.Inv().Transpose()
}
