package giprobe

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Number of coefficients in an L2 (band 0..2) spherical harmonics expansion.
const SHCoefficientCount = 9

// Real SH basis normalization constants.
// kC0 is Y(0,0); kC1 the linear band; kC2..kC4 the quadratic band.
const (
	kC0 float32 = 0.282095 // 1/(2*sqrt(pi))
	kC1 float32 = 0.488603 // sqrt(3)/(2*sqrt(pi))
	kC2 float32 = 1.092548 // sqrt(15)/(2*sqrt(pi))
	kC3 float32 = 0.315392 // sqrt(5)/(4*sqrt(pi))
	kC4 float32 = 0.546274 // sqrt(15)/(4*sqrt(pi))
)

// Irradiance constants: basis constants pre-multiplied by the cosine-lobe
// convolution terms A0=pi, A1=2pi/3, A2=pi/4 (Ramamoorthi & Hanrahan).
// These are intentionally a different set from kC0..kC4: stored coefficients
// are radiance projections, the cosine convolution is folded in at query time.
const (
	kIrr0     float32 = 0.886227 // pi * kC0
	kIrr1     float32 = 1.023328 // (2pi/3) * kC1
	kIrr2     float32 = 0.858086 // (pi/4) * kC2, for the xy/yz/xz terms
	kIrr2ZZ   float32 = 0.247708 // (pi/4) * kC3, for the (3z^2-1) term
	kIrr2X2Y2 float32 = 0.429043 // (pi/4) * kC4, for the (x^2-y^2) term
)

// SHCoefficients stores one RGB color per L2 basis function.
// Coefficient order is fixed and must match EvaluateBasis:
// constant, y, z, x, xy, yz, (3z^2-1), xz, (x^2-y^2).
type SHCoefficients struct {
	Coefficients [SHCoefficientCount]mgl32.Vec3
}

// EvaluateBasis evaluates the 9 real SH basis functions at a unit direction.
func EvaluateBasis(dir mgl32.Vec3, basis *[SHCoefficientCount]float32) {
	x, y, z := dir.X(), dir.Y(), dir.Z()

	basis[0] = kC0
	basis[1] = kC1 * y
	basis[2] = kC1 * z
	basis[3] = kC1 * x
	basis[4] = kC2 * x * y
	basis[5] = kC2 * y * z
	basis[6] = kC3 * (3*z*z - 1)
	basis[7] = kC2 * x * z
	basis[8] = kC4 * (x*x - y*y)
}

// AddSample projects a single radiance sample arriving from dir onto the
// basis and accumulates it. Summing samples weighted by their solid angle
// approximates the SH projection integral (Monte-Carlo projection).
func (sh *SHCoefficients) AddSample(dir mgl32.Vec3, radiance mgl32.Vec3) {
	var basis [SHCoefficientCount]float32
	EvaluateBasis(dir, &basis)

	for i := 0; i < SHCoefficientCount; i++ {
		sh.Coefficients[i] = sh.Coefficients[i].Add(radiance.Mul(basis[i]))
	}
}

// EvaluateIrradiance returns the cosine-convolved irradiance at a surface
// normal. The stored coefficients are radiance projections; the Lambertian
// cosine lobe is applied here through the kIrr constants.
// Value receiver like the other non-mutating SH methods, so it chains off
// constructor results.
func (sh SHCoefficients) EvaluateIrradiance(normal mgl32.Vec3) mgl32.Vec3 {
	x, y, z := normal.X(), normal.Y(), normal.Z()
	c := &sh.Coefficients

	result := c[0].Mul(kIrr0)
	result = result.Add(c[1].Mul(kIrr1 * y))
	result = result.Add(c[2].Mul(kIrr1 * z))
	result = result.Add(c[3].Mul(kIrr1 * x))
	result = result.Add(c[4].Mul(kIrr2 * x * y))
	result = result.Add(c[5].Mul(kIrr2 * y * z))
	result = result.Add(c[6].Mul(kIrr2ZZ * (3*z*z - 1)))
	result = result.Add(c[7].Mul(kIrr2 * x * z))
	result = result.Add(c[8].Mul(kIrr2X2Y2 * (x*x - y*y)))
	return result
}

// Add returns the coefficient-wise sum of two SH sets.
func (sh SHCoefficients) Add(other SHCoefficients) SHCoefficients {
	var out SHCoefficients
	for i := 0; i < SHCoefficientCount; i++ {
		out.Coefficients[i] = sh.Coefficients[i].Add(other.Coefficients[i])
	}
	return out
}

// Scale returns the SH set with every coefficient scaled by s.
func (sh SHCoefficients) Scale(s float32) SHCoefficients {
	var out SHCoefficients
	for i := 0; i < SHCoefficientCount; i++ {
		out.Coefficients[i] = sh.Coefficients[i].Mul(s)
	}
	return out
}

// LerpSH interpolates coefficient-wise between a and b. Linear in t, so
// trilinear probe blending stays order-independent. The (1-t)*a + t*b form
// keeps the endpoints exact.
func LerpSH(a, b SHCoefficients, t float32) SHCoefficients {
	var out SHCoefficients
	for i := 0; i < SHCoefficientCount; i++ {
		out.Coefficients[i] = a.Coefficients[i].Mul(1 - t).Add(b.Coefficients[i].Mul(t))
	}
	return out
}

// SHFromDirectionalLight projects a directional light as a delta function.
// dir is the direction the light travels; the radiance arrives from -dir.
func SHFromDirectionalLight(dir mgl32.Vec3, color mgl32.Vec3) SHCoefficients {
	var sh SHCoefficients
	toLight := dir.Mul(-1)
	if l := toLight.Len(); l > 1e-6 {
		toLight = toLight.Mul(1.0 / l)
	}
	sh.AddSample(toLight, color)
	return sh
}

// SHFromAmbient builds a constant environment. The L0 term is scaled by
// 1/kC0 so that EvaluateIrradiance of a uniform color returns color * pi.
func SHFromAmbient(color mgl32.Vec3) SHCoefficients {
	var sh SHCoefficients
	sh.Coefficients[0] = color.Mul(1.0 / kC0)
	return sh
}

// SHFromSkyGradient builds a cheap two-color hemisphere approximation:
// L0 carries the average, the linear y term half the sky/ground difference.
func SHFromSkyGradient(sky, ground mgl32.Vec3) SHCoefficients {
	var sh SHCoefficients
	sh.Coefficients[0] = sky.Add(ground).Mul(0.5)
	sh.Coefficients[1] = sky.Sub(ground).Mul(0.5)
	return sh
}
