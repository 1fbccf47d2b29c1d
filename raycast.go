package giprobe

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// RayHit is the result of a single ray query against the scene.
// A miss (Hit=false) looks the same regardless of the reason: no scene,
// ray left the world, nothing in range.
type RayHit struct {
	Hit      bool
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Albedo   mgl32.Vec3
	T        float32
}

// RayCaster is the injected ray-intersection capability the baker traces
// against. Implementations must be synchronous, read-only and safe for
// concurrent calls: parallel baking issues rays from multiple workers.
type RayCaster interface {
	Cast(origin, dir mgl32.Vec3, maxDist float32) RayHit
}

// RayCasterFunc adapts a plain closure to the RayCaster interface.
type RayCasterFunc func(origin, dir mgl32.Vec3, maxDist float32) RayHit

func (f RayCasterFunc) Cast(origin, dir mgl32.Vec3, maxDist float32) RayHit {
	return f(origin, dir, maxDist)
}

// Sphere is one analytic sphere of a SphereCaster scene.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
	Albedo mgl32.Vec3
}

// SphereCaster is a small analytic RayCaster: a handful of spheres plus an
// optional ground plane at y = GroundHeight. Enough scene for demos and
// deterministic bake tests without a real tracing backend.
type SphereCaster struct {
	Spheres      []Sphere
	Ground       bool
	GroundHeight float32
	GroundAlbedo mgl32.Vec3
}

func (c *SphereCaster) Cast(origin, dir mgl32.Vec3, maxDist float32) RayHit {
	best := RayHit{T: maxDist}

	for _, s := range c.Spheres {
		if ok, t := raySphere(origin, dir, s.Center, s.Radius); ok && t < best.T {
			pos := origin.Add(dir.Mul(t))
			best = RayHit{
				Hit:      true,
				Position: pos,
				Normal:   pos.Sub(s.Center).Normalize(),
				Albedo:   s.Albedo,
				T:        t,
			}
		}
	}

	if c.Ground && math32.Abs(dir.Y()) > 1e-6 {
		t := (c.GroundHeight - origin.Y()) / dir.Y()
		if t > 1e-4 && t < best.T {
			best = RayHit{
				Hit:      true,
				Position: origin.Add(dir.Mul(t)),
				Normal:   mgl32.Vec3{0, 1, 0},
				Albedo:   c.GroundAlbedo,
				T:        t,
			}
		}
	}

	if !best.Hit {
		return RayHit{}
	}
	return best
}

// raySphere returns the closest positive intersection distance.
func raySphere(origin, dir, center mgl32.Vec3, radius float32) (bool, float32) {
	oc := origin.Sub(center)
	a := dir.Dot(dir)
	b := 2.0 * oc.Dot(dir)
	cc := oc.Dot(oc) - radius*radius

	discriminant := b*b - 4*a*cc
	if discriminant < 0 {
		return false, 0
	}

	sqrtDisc := math32.Sqrt(discriminant)
	t1 := (-b - sqrtDisc) / (2 * a)
	t2 := (-b + sqrtDisc) / (2 * a)

	const epsilon = 1e-4
	if t1 > epsilon {
		return true, t1
	}
	if t2 > epsilon {
		return true, t2
	}
	return false, 0
}
