package renderworld

import (
	"fmt"
	"strings"
)

// RenderFlag is a plain bitset of per-proxy render state. Flags combine
// with bitwise OR; Has tests membership.
type RenderFlag uint32

const (
	// FlagVisible marks the proxy for rendering this frame.
	FlagVisible RenderFlag = 1 << iota

	// FlagCastShadows includes the proxy in shadow passes.
	FlagCastShadows

	// FlagReceiveShadows samples shadow maps when shading the proxy.
	FlagReceiveShadows

	// FlagSkinned marks the proxy as bone-animated.
	FlagSkinned

	// FlagTransparent routes the proxy to the transparent pass.
	FlagTransparent

	// FlagStatic promises the transform will not change.
	FlagStatic

	// FlagDirty marks per-proxy state changed this frame. Transient:
	// cleared by RenderWorld.EndFrame.
	FlagDirty

	// FlagCulled marks the proxy rejected by the last visibility pass.
	// Transient: cleared by RenderWorld.EndFrame.
	FlagCulled
)

// DefaultMeshFlags is the flag set assigned to freshly created mesh and
// skinned-mesh proxies.
const DefaultMeshFlags = FlagVisible | FlagCastShadows | FlagReceiveShadows

var flagNames = []struct {
	bit  RenderFlag
	name string
}{
	{FlagVisible, "Visible"},
	{FlagCastShadows, "CastShadows"},
	{FlagReceiveShadows, "ReceiveShadows"},
	{FlagSkinned, "Skinned"},
	{FlagTransparent, "Transparent"},
	{FlagStatic, "Static"},
	{FlagDirty, "Dirty"},
	{FlagCulled, "Culled"},
}

// Has reports whether every bit in bits is set.
func (f RenderFlag) Has(bits RenderFlag) bool { return f&bits == bits }

// String returns the set flag names joined by "|", or "None".
func (f RenderFlag) String() string {
	if f == 0 {
		return "None"
	}
	var parts []string
	rest := f
	for _, fn := range flagNames {
		if f&fn.bit != 0 {
			parts = append(parts, fn.name)
			rest &^= fn.bit
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

// LightType selects the light model of a LightProxy.
type LightType int

const (
	// LightDirectional is an infinitely distant light with direction only.
	LightDirectional LightType = iota
	// LightPoint is an omnidirectional light with position and range.
	LightPoint
	// LightSpot is a cone light with position, direction and cone angles.
	LightSpot
)

// String returns the string representation of LightType.
func (t LightType) String() string {
	switch t {
	case LightDirectional:
		return "Directional"
	case LightPoint:
		return "Point"
	case LightSpot:
		return "Spot"
	default:
		return fmt.Sprintf("Unknown(%d)", int(t))
	}
}

// SimulationSpace selects the space particle positions are kept in.
type SimulationSpace int

const (
	// SpaceLocal simulates particles relative to the emitter transform.
	SpaceLocal SimulationSpace = iota
	// SpaceWorld simulates particles in world space once spawned.
	SpaceWorld
)

// String returns the string representation of SimulationSpace.
func (s SimulationSpace) String() string {
	switch s {
	case SpaceLocal:
		return "Local"
	case SpaceWorld:
		return "World"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// BlendMode selects how particle and sprite proxies composite.
type BlendMode int

const (
	// BlendOpaque writes color without blending.
	BlendOpaque BlendMode = iota
	// BlendAlpha uses standard source-over alpha blending.
	BlendAlpha
	// BlendAdditive adds source color to the destination.
	BlendAdditive
)

// String returns the string representation of BlendMode.
func (m BlendMode) String() string {
	switch m {
	case BlendOpaque:
		return "Opaque"
	case BlendAlpha:
		return "Alpha"
	case BlendAdditive:
		return "Additive"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// DirtyKind is a bitset of proxy kinds mutated since the last EndFrame.
type DirtyKind uint32

const (
	// DirtyMeshes marks mesh proxies created, mutated or destroyed.
	DirtyMeshes DirtyKind = 1 << iota
	// DirtySkinned marks skinned-mesh proxies changed.
	DirtySkinned
	// DirtyLights marks light proxies changed.
	DirtyLights
	// DirtyCameras marks camera proxies changed.
	DirtyCameras
	// DirtyEmitters marks particle emitter proxies changed.
	DirtyEmitters
	// DirtySprites marks sprite proxies changed.
	DirtySprites
)

// Has reports whether every bit in bits is set.
func (d DirtyKind) Has(bits DirtyKind) bool { return d&bits == bits }
