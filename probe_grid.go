package giprobe

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// LightProbeGrid is a fixed-resolution lattice of probes spanning an
// axis-aligned box, sampled by trilinear interpolation.
//
// Probe positions are fixed at Initialize time; changing bounds or
// resolution requires a full re-initialize, which discards baked data.
type LightProbeGrid struct {
	ids *ProbeIDAllocator

	minBounds mgl32.Vec3
	maxBounds mgl32.Vec3
	cellSize  mgl32.Vec3
	resX      int
	resY      int
	resZ      int

	probes []*LightProbe
}

func NewLightProbeGrid(ids *ProbeIDAllocator) *LightProbeGrid {
	return &LightProbeGrid{ids: ids}
}

// Initialize (re)allocates the probe lattice. Positions follow
// pos = minBounds + index * cellSize with cellSize = size/(resolution-1),
// so every axis needs a resolution of at least 2. The original design left
// resolution 1 as an unguarded division by zero; here it is rejected.
func (g *LightProbeGrid) Initialize(minBounds, maxBounds mgl32.Vec3, resX, resY, resZ int) error {
	if resX < 2 || resY < 2 || resZ < 2 {
		return fmt.Errorf("probe grid resolution must be >= 2 on every axis, got %dx%dx%d", resX, resY, resZ)
	}
	for i := 0; i < 3; i++ {
		if maxBounds[i] <= minBounds[i] {
			return fmt.Errorf("probe grid bounds are inverted or empty on axis %d: min %v max %v", i, minBounds, maxBounds)
		}
	}

	g.minBounds = minBounds
	g.maxBounds = maxBounds
	g.resX, g.resY, g.resZ = resX, resY, resZ
	g.cellSize = mgl32.Vec3{
		(maxBounds.X() - minBounds.X()) / float32(resX-1),
		(maxBounds.Y() - minBounds.Y()) / float32(resY-1),
		(maxBounds.Z() - minBounds.Z()) / float32(resZ-1),
	}

	g.probes = make([]*LightProbe, resX*resY*resZ)
	for z := 0; z < resZ; z++ {
		for y := 0; y < resY; y++ {
			for x := 0; x < resX; x++ {
				pos := mgl32.Vec3{
					minBounds.X() + float32(x)*g.cellSize.X(),
					minBounds.Y() + float32(y)*g.cellSize.Y(),
					minBounds.Z() + float32(z)*g.cellSize.Z(),
				}
				g.probes[g.index(x, y, z)] = NewLightProbe(g.ids, pos)
			}
		}
	}
	return nil
}

// IsInitialized reports whether the grid holds any probes.
func (g *LightProbeGrid) IsInitialized() bool { return len(g.probes) > 0 }

func (g *LightProbeGrid) Resolution() (x, y, z int) { return g.resX, g.resY, g.resZ }

func (g *LightProbeGrid) Bounds() (minB, maxB mgl32.Vec3) { return g.minBounds, g.maxBounds }

func (g *LightProbeGrid) CellSize() mgl32.Vec3 { return g.cellSize }

func (g *LightProbeGrid) ProbeCount() int { return len(g.probes) }

// Probes returns the dense probe array in index order
// (idx = z*resY*resX + y*resX + x). Must not be mutated by the caller.
func (g *LightProbeGrid) Probes() []*LightProbe { return g.probes }

// ProbeAt returns the probe at lattice coordinates, or nil when
// uninitialized or out of range.
func (g *LightProbeGrid) ProbeAt(x, y, z int) *LightProbe {
	if !g.IsInitialized() {
		return nil
	}
	if x < 0 || x >= g.resX || y < 0 || y >= g.resY || z < 0 || z >= g.resZ {
		return nil
	}
	return g.probes[g.index(x, y, z)]
}

func (g *LightProbeGrid) index(x, y, z int) int {
	return z*g.resY*g.resX + y*g.resX + x
}

// GetCell maps a world position to the containing cell index, clamped to
// the grid on each axis. Positions outside the bounds land on the boundary
// cell instead of failing.
func (g *LightProbeGrid) GetCell(position mgl32.Vec3) (x, y, z int) {
	x = g.cellIndex(position.X(), g.minBounds.X(), g.cellSize.X(), g.resX)
	y = g.cellIndex(position.Y(), g.minBounds.Y(), g.cellSize.Y(), g.resY)
	z = g.cellIndex(position.Z(), g.minBounds.Z(), g.cellSize.Z(), g.resZ)
	return x, y, z
}

func (g *LightProbeGrid) cellIndex(pos, minBound, cellSize float32, res int) int {
	if cellSize <= 0 {
		return 0
	}
	idx := int(math32.Floor((pos - minBound) / cellSize))
	if idx < 0 {
		return 0
	}
	if idx > res-1 {
		return res - 1
	}
	return idx
}

// SampleSH interpolates the 8 probes surrounding position trilinearly.
// SH lerp is linear, so the axis order (x, then y, then z) is not
// observable in the result. Out-of-bounds positions clamp to the boundary.
func (g *LightProbeGrid) SampleSH(position mgl32.Vec3) SHCoefficients {
	if !g.IsInitialized() {
		return SHCoefficients{}
	}

	fx := g.fractionalCoord(position.X(), g.minBounds.X(), g.cellSize.X(), g.resX)
	fy := g.fractionalCoord(position.Y(), g.minBounds.Y(), g.cellSize.Y(), g.resY)
	fz := g.fractionalCoord(position.Z(), g.minBounds.Z(), g.cellSize.Z(), g.resZ)

	x0 := int(math32.Floor(fx))
	y0 := int(math32.Floor(fy))
	z0 := int(math32.Floor(fz))
	x1 := clampIndex(x0+1, g.resX)
	y1 := clampIndex(y0+1, g.resY)
	z1 := clampIndex(z0+1, g.resZ)
	x0 = clampIndex(x0, g.resX)
	y0 = clampIndex(y0, g.resY)
	z0 = clampIndex(z0, g.resZ)

	tx := mgl32.Clamp(fx-float32(x0), 0, 1)
	ty := mgl32.Clamp(fy-float32(y0), 0, 1)
	tz := mgl32.Clamp(fz-float32(z0), 0, 1)

	corner := func(x, y, z int) SHCoefficients {
		return g.probes[g.index(x, y, z)].SH()
	}

	// Lerp along x, then y, then z.
	c00 := LerpSH(corner(x0, y0, z0), corner(x1, y0, z0), tx)
	c10 := LerpSH(corner(x0, y1, z0), corner(x1, y1, z0), tx)
	c01 := LerpSH(corner(x0, y0, z1), corner(x1, y0, z1), tx)
	c11 := LerpSH(corner(x0, y1, z1), corner(x1, y1, z1), tx)

	c0 := LerpSH(c00, c10, ty)
	c1 := LerpSH(c01, c11, ty)

	return LerpSH(c0, c1, tz)
}

func (g *LightProbeGrid) fractionalCoord(pos, minBound, cellSize float32, res int) float32 {
	if cellSize <= 0 {
		return 0
	}
	f := (pos - minBound) / cellSize
	return mgl32.Clamp(f, 0, float32(res-1))
}

func clampIndex(i, res int) int {
	if i < 0 {
		return 0
	}
	if i > res-1 {
		return res - 1
	}
	return i
}

// MarkAllDirty schedules every probe for rebaking without invalidating it.
func (g *LightProbeGrid) MarkAllDirty() {
	for _, p := range g.probes {
		p.SetDirty(true)
	}
}
