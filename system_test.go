package giprobe

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings() GISettings {
	s := DefaultGISettings()
	s.AmbientSkyColor = mgl32.Vec3{0.4, 0.6, 1.0}
	s.AmbientGroundColor = mgl32.Vec3{0.2, 0.15, 0.1}
	s.LightProbeSamples = 32
	s.Bounces = 1
	return s
}

// missAllCaster is a registered caster whose rays never hit anything.
var missAllCaster = RayCasterFunc(func(origin, dir mgl32.Vec3, maxDist float32) RayHit {
	return RayHit{}
})

func TestSampleIndirectDiffuseDisabledUsesAmbient(t *testing.T) {
	settings := testSettings()
	settings.LightProbesEnabled = false
	settings.AmbientIntensity = 2.0
	system := NewGISystem(settings)

	// Even with a populated grid, disabled probes mean pure ambient.
	require.NoError(t, system.InitializeProbeGrid(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, 2, 2, 2))
	system.BakeAllLightProbes(nil, nil)

	normal := mgl32.Vec3{0, 1, 0}
	want := SHFromSkyGradient(settings.AmbientSkyColor, settings.AmbientGroundColor).
		EvaluateIrradiance(normal).Mul(2.0)
	got := system.SampleIndirectDiffuse(mgl32.Vec3{0.5, 0.5, 0.5}, normal)
	assert.True(t, vec3Close(got, want, 1e-5), "got %v want %v", got, want)
}

func TestSampleIndirectDiffuseGridBeatsGroups(t *testing.T) {
	settings := testSettings()
	settings.LightProbeIntensity = 1.0
	system := NewGISystem(settings)

	// A group baked bright red.
	group := system.CreateProbeGroup("red")
	group.AddProbe(mgl32.Vec3{0.5, 0.5, 0.5}).SetSH(SHFromAmbient(mgl32.Vec3{1, 0, 0}))

	// And a grid baked bright blue.
	require.NoError(t, system.InitializeProbeGrid(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, 2, 2, 2))
	for _, p := range system.Grid().Probes() {
		p.SetSH(SHFromAmbient(mgl32.Vec3{0, 0, 1}))
	}

	irr := system.SampleIndirectDiffuse(mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.Vec3{0, 1, 0})
	assert.Greater(t, irr.Z(), irr.X(), "the grid must take priority over groups")
}

func TestSampleIndirectDiffuseGroupsEqualWeight(t *testing.T) {
	settings := testSettings()
	settings.LightProbeIntensity = 1.0
	system := NewGISystem(settings)

	// Two groups: one probe of red, three probes of blue. Equal weight per
	// group means red contributes half despite having fewer probes.
	red := system.CreateProbeGroup("red")
	red.AddProbe(mgl32.Vec3{0, 0, 0}).SetSH(SHFromAmbient(mgl32.Vec3{1, 0, 0}))

	blue := system.CreateProbeGroup("blue")
	for i := 0; i < 3; i++ {
		blue.AddProbe(mgl32.Vec3{0, 0, 0}).SetSH(SHFromAmbient(mgl32.Vec3{0, 0, 1}))
	}

	irr := system.SampleIndirectDiffuse(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	assert.InDelta(t, irr.X(), irr.Z(), 0.01, "groups blend with equal weight per group")
}

func TestSampleIndirectDiffuseFallsBackToAmbient(t *testing.T) {
	settings := testSettings()
	system := NewGISystem(settings)

	normal := mgl32.Vec3{0, 1, 0}
	want := SHFromSkyGradient(settings.AmbientSkyColor, settings.AmbientGroundColor).
		EvaluateIrradiance(normal).Mul(settings.AmbientIntensity)
	got := system.SampleIndirectDiffuse(mgl32.Vec3{3, 3, 3}, normal)
	assert.True(t, vec3Close(got, want, 1e-5), "no grid, no groups: ambient fallback")
}

func TestBakeWithoutCasterFallsBackToAmbient(t *testing.T) {
	settings := testSettings()
	system := NewGISystem(settings)
	require.NoError(t, system.InitializeProbeGrid(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}, 2, 2, 2))

	var calls [][2]int
	system.BakeAllLightProbes(nil, func(completed, total int) {
		calls = append(calls, [2]int{completed, total})
	})

	require.Len(t, calls, 8, "progress fires once per probe")
	assert.Equal(t, [2]int{8, 8}, calls[7])

	want := SHFromSkyGradient(settings.AmbientSkyColor, settings.AmbientGroundColor)
	for _, p := range system.Grid().Probes() {
		assert.True(t, p.IsValid(), "fallback bake still marks probes valid")
		assert.False(t, p.IsDirty())
		assert.Equal(t, want, p.SH())
	}

	// The interior sample reproduces the gradient SH exactly: all eight
	// corners carry the identical coefficients.
	got := system.Grid().SampleSH(mgl32.Vec3{0.5, 0.5, 0.5})
	for i := 0; i < SHCoefficientCount; i++ {
		assert.True(t, vec3Close(got.Coefficients[i], want.Coefficients[i], 1e-6),
			"coeff %d: got %v want %v", i, got.Coefficients[i], want.Coefficients[i])
	}
}

func TestTraceRadianceZeroBouncesIsTerminal(t *testing.T) {
	settings := testSettings()
	settings.Bounces = 0
	system := NewGISystem(settings)

	// Register a caster that would report a hit; with bounces=0 it must
	// never be consulted.
	system.SetRayCaster(RayCasterFunc(func(origin, dir mgl32.Vec3, maxDist float32) RayHit {
		t.Error("ray caster must not be called when the bounce limit is zero")
		return RayHit{}
	}))

	for _, dir := range []mgl32.Vec3{{0, 1, 0}, {0, -1, 0}, {1, 0, 0}} {
		got := system.traceRadiance(system.rng, mgl32.Vec3{}, dir, 0)
		assert.Equal(t, system.skyGradient(dir), got)
	}
}

func TestTraceRadianceSkyGradientEnds(t *testing.T) {
	settings := testSettings()
	settings.Bounces = 3
	system := NewGISystem(settings)
	system.SetRayCaster(missAllCaster)

	up := system.traceRadiance(system.rng, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}, 0)
	down := system.traceRadiance(system.rng, mgl32.Vec3{}, mgl32.Vec3{0, -1, 0}, 0)

	assert.Equal(t, settings.AmbientSkyColor, up, "straight up sees the sky color")
	assert.Equal(t, settings.AmbientGroundColor, down, "straight down sees the ground color")
}

func TestBakeInjectsDirectionalLightsOnly(t *testing.T) {
	settings := testSettings()

	bakeWith := func(lights []Light) SHCoefficients {
		system := NewGISystemSeeded(settings, 7)
		system.SetRayCaster(missAllCaster)
		ids := NewProbeIDAllocator()
		probe := NewLightProbe(ids, mgl32.Vec3{})
		system.BakeLightProbe(probe, lights)
		return probe.SH()
	}

	base := bakeWith(nil)
	withSun := bakeWith([]Light{{
		Type:      LightTypeDirectional,
		Direction: mgl32.Vec3{0, -1, 0},
		Color:     mgl32.Vec3{1, 1, 1},
		Intensity: 2.0,
	}})
	withPoint := bakeWith([]Light{{
		Type:      LightTypePoint,
		Position:  mgl32.Vec3{0, 1, 0},
		Color:     mgl32.Vec3{1, 1, 1},
		Intensity: 5.0,
	}})

	assert.Equal(t, base, withPoint, "point lights are recognized but contribute nothing")

	baseUp := base.EvaluateIrradiance(mgl32.Vec3{0, 1, 0})
	sunUp := withSun.EvaluateIrradiance(mgl32.Vec3{0, 1, 0})
	assert.Greater(t, sunUp.X(), baseUp.X(), "a directional light adds energy")
}

func TestBakeIsDeterministicForSeed(t *testing.T) {
	scene := &SphereCaster{
		Spheres:      []Sphere{{Center: mgl32.Vec3{0, 1, 0}, Radius: 1, Albedo: mgl32.Vec3{0.7, 0.3, 0.2}}},
		Ground:       true,
		GroundAlbedo: mgl32.Vec3{0.5, 0.5, 0.5},
	}
	settings := testSettings()
	settings.Bounces = 2

	bake := func() SHCoefficients {
		system := NewGISystemSeeded(settings, 99)
		system.SetRayCaster(scene)
		probe := NewLightProbe(NewProbeIDAllocator(), mgl32.Vec3{0, 2, 3})
		system.BakeLightProbe(probe, nil)
		return probe.SH()
	}

	assert.Equal(t, bake(), bake(), "same seed, same scene, same coefficients")
}

func TestBakeAllLightProbeGroups(t *testing.T) {
	system := NewGISystem(testSettings())
	a := system.CreateProbeGroup("a")
	a.AddProbe(mgl32.Vec3{0, 0, 0})
	b := system.CreateProbeGroup("b")
	b.AddProbe(mgl32.Vec3{1, 0, 0})
	b.AddProbe(mgl32.Vec3{2, 0, 0})

	system.BakeAllLightProbeGroups(nil)

	for _, g := range system.Groups() {
		for _, p := range g.Probes() {
			assert.True(t, p.IsValid())
			assert.False(t, p.IsDirty())
		}
	}
}

func TestClearBakedDataKeepsStaleSH(t *testing.T) {
	settings := testSettings()
	system := NewGISystem(settings)
	require.NoError(t, system.InitializeProbeGrid(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, 2, 2, 2))
	group := system.CreateProbeGroup("g")
	group.AddProbe(mgl32.Vec3{0.5, 0.5, 0.5})

	system.BakeAllLightProbes(nil, nil)
	system.BakeAllLightProbeGroups(nil)
	system.ClearBakedData()

	want := SHFromSkyGradient(settings.AmbientSkyColor, settings.AmbientGroundColor)
	for _, p := range system.Grid().Probes() {
		assert.False(t, p.IsValid())
		assert.True(t, p.IsDirty())
		assert.Equal(t, want, p.SH(), "stale SH stays queryable until rebaked")
	}
	for _, p := range group.Probes() {
		assert.False(t, p.IsValid())
		assert.True(t, p.IsDirty())
	}
}

func TestParallelBakeBakesEveryProbe(t *testing.T) {
	scene := &SphereCaster{
		Spheres: []Sphere{{Center: mgl32.Vec3{2, 2, 2}, Radius: 1, Albedo: mgl32.Vec3{0.8, 0.8, 0.8}}},
	}
	settings := testSettings()
	settings.LightProbeSamples = 16

	system := NewGISystemSeeded(settings, 5)
	system.SetRayCaster(scene)
	require.NoError(t, system.InitializeProbeGrid(mgl32.Vec3{}, mgl32.Vec3{4, 4, 4}, 3, 3, 3))

	// Progress calls are serialized but may arrive out of completion
	// order, so track the count and the high-water mark.
	highest := 0
	count := 0
	system.BakeAllLightProbesParallel(nil, 4, func(completed, total int) {
		count++
		if completed > highest {
			highest = completed
		}
		assert.Equal(t, 27, total)
	})

	assert.Equal(t, 27, count, "progress fires once per probe")
	assert.Equal(t, 27, highest)
	for _, p := range system.Grid().Probes() {
		assert.True(t, p.IsValid())
		assert.False(t, p.IsDirty())
	}
}

func TestRemoveProbeGroup(t *testing.T) {
	system := NewGISystem(testSettings())
	a := system.CreateProbeGroup("a")
	b := system.CreateProbeGroup("b")

	require.True(t, system.RemoveProbeGroup(a))
	assert.False(t, system.RemoveProbeGroup(a))
	require.Len(t, system.Groups(), 1)
	assert.Same(t, b, system.Groups()[0])
}
