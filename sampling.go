package giprobe

import (
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// SHSample is one direction of a sphere sampling pattern together with the
// solid angle it stands for during SH projection.
type SHSample struct {
	Direction  mgl32.Vec3
	SolidAngle float32
}

// SHSampleGenerator produces uniformly distributed sphere sample sets for
// Monte-Carlo SH projection.
type SHSampleGenerator struct{}

// GenerateSamples returns count unit directions on a spherical Fibonacci
// spiral. Every sample carries the same solid angle 4*pi/count.
// Deterministic: the same count always yields the same directions.
func (SHSampleGenerator) GenerateSamples(count int) []SHSample {
	if count <= 0 {
		return nil
	}

	samples := make([]SHSample, count)
	solidAngle := 4 * math32.Pi / float32(count)

	// Golden angle increment
	goldenAngle := math32.Pi * (3 - math32.Sqrt(5))

	for i := 0; i < count; i++ {
		// Even spacing in y with a half-cell offset keeps the poles clean.
		y := 1 - 2*(float32(i)+0.5)/float32(count)
		r := math32.Sqrt(max(0, 1-y*y))
		theta := goldenAngle * float32(i)

		samples[i] = SHSample{
			Direction:  mgl32.Vec3{r * math32.Cos(theta), y, r * math32.Sin(theta)},
			SolidAngle: solidAngle,
		}
	}
	return samples
}

// orthonormalBasis builds two tangents perpendicular to n.
// n must be unit length.
func orthonormalBasis(n mgl32.Vec3) (tangent, bitangent mgl32.Vec3) {
	// Pick the world axis least aligned with n to avoid a degenerate cross.
	up := mgl32.Vec3{0, 1, 0}
	if math32.Abs(n.Y()) > 0.9 {
		up = mgl32.Vec3{1, 0, 0}
	}
	tangent = up.Cross(n).Normalize()
	bitangent = n.Cross(tangent)
	return tangent, bitangent
}

// cosineSampleHemisphere draws a cosine-distributed direction in the
// hemisphere above normal, using the standard sqrt-disk mapping.
func cosineSampleHemisphere(rng *rand.Rand, normal mgl32.Vec3) mgl32.Vec3 {
	u1 := rng.Float32()
	u2 := rng.Float32()

	r := math32.Sqrt(u1)
	phi := 2 * math32.Pi * u2

	local := mgl32.Vec3{
		r * math32.Cos(phi),
		r * math32.Sin(phi),
		math32.Sqrt(max(0, 1-u1)),
	}

	tangent, bitangent := orthonormalBasis(normal)
	return tangent.Mul(local.X()).
		Add(bitangent.Mul(local.Y())).
		Add(normal.Mul(local.Z()))
}

// mulVec3 is a component-wise vector product (albedo modulation).
func mulVec3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a.X() * b.X(), a.Y() * b.Y(), a.Z() * b.Z()}
}
