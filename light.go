package giprobe

import (
	"github.com/go-gl/mathgl/mgl32"
)

type LightType uint32

const (
	LightTypePoint       LightType = 0
	LightTypeDirectional LightType = 1
	LightTypeSpot        LightType = 2
)

// Light is the descriptor handed to baking. Only directional lights
// contribute to probe SH today; point and spot lights are recognized but
// deliberately skipped rather than approximated wrong.
type Light struct {
	Type      LightType
	Position  mgl32.Vec3
	Direction mgl32.Vec3 // direction the light travels
	Color     mgl32.Vec3 // RGB
	Intensity float32
	Range     float32 // for point/spot
	SpotAngle float32 // full cone angle in degrees (spot)
}
