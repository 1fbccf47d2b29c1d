package giprobe

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// ProgressCallback reports bake progress after each finished probe.
// It offers no cancellation; a full bake runs to completion.
type ProgressCallback func(completed, total int)

const defaultRNGSeed int64 = 1337

// GISystem orchestrates the probe subsystem: it owns the settings, an
// optional probe grid, any number of probe groups, and the injected ray
// cast capability used for Monte-Carlo baking.
//
// Construct explicitly and pass around; the system is not a singleton and
// independent instances do not share state (probe ids included).
type GISystem struct {
	settings GISettings
	ids      *ProbeIDAllocator
	grid     *LightProbeGrid
	groups   []*LightProbeGroup
	caster   RayCaster
	sampler  SHSampleGenerator

	seed int64
	rng  *rand.Rand

	log Logger
}

func NewGISystem(settings GISettings) *GISystem {
	return NewGISystemSeeded(settings, defaultRNGSeed)
}

// NewGISystemSeeded fixes the stochastic bounce sampling seed so bakes
// reproduce exactly.
func NewGISystemSeeded(settings GISettings, seed int64) *GISystem {
	return &GISystem{
		settings: settings,
		ids:      NewProbeIDAllocator(),
		seed:     seed,
		rng:      rand.New(rand.NewSource(seed)),
		log:      NewNopLogger(),
	}
}

func (s *GISystem) Settings() GISettings { return s.settings }

func (s *GISystem) SetSettings(settings GISettings) { s.settings = settings }

// SetRayCaster replaces the scene query used by baking. Passing nil drops
// back to the ambient sky-gradient fallback.
func (s *GISystem) SetRayCaster(caster RayCaster) { s.caster = caster }

func (s *GISystem) RayCaster() RayCaster { return s.caster }

func (s *GISystem) SetLogger(logger Logger) {
	if logger == nil {
		logger = NewNopLogger()
	}
	s.log = logger
}

// InitializeProbeGrid (re)builds the regular probe lattice. Any previously
// baked grid data is discarded.
func (s *GISystem) InitializeProbeGrid(minBounds, maxBounds mgl32.Vec3, resX, resY, resZ int) error {
	grid := NewLightProbeGrid(s.ids)
	if err := grid.Initialize(minBounds, maxBounds, resX, resY, resZ); err != nil {
		return err
	}
	s.grid = grid
	s.log.Infof("probe grid initialized: %dx%dx%d (%d probes)", resX, resY, resZ, grid.ProbeCount())
	return nil
}

// Grid returns the probe grid, or nil before InitializeProbeGrid.
func (s *GISystem) Grid() *LightProbeGrid { return s.grid }

// CreateProbeGroup adds a new, empty probe group owned by the system.
func (s *GISystem) CreateProbeGroup(name string) *LightProbeGroup {
	group := NewLightProbeGroup(s.ids, name)
	s.groups = append(s.groups, group)
	return group
}

// RemoveProbeGroup erases by identity, destroying the group's probes.
func (s *GISystem) RemoveProbeGroup(group *LightProbeGroup) bool {
	for i, g := range s.groups {
		if g == group {
			s.groups = append(s.groups[:i], s.groups[i+1:]...)
			return true
		}
	}
	return false
}

func (s *GISystem) Groups() []*LightProbeGroup { return s.groups }

// SampleIndirectDiffuse is the runtime shading query. Priority order:
// probes disabled -> ambient gradient; grid if initialized; probe groups
// (equal weight per group); ambient gradient fallback. The grid wins over
// groups whenever both exist.
func (s *GISystem) SampleIndirectDiffuse(position, normal mgl32.Vec3) mgl32.Vec3 {
	if !s.settings.LightProbesEnabled {
		return s.ambientIrradiance(normal)
	}

	if s.grid != nil && s.grid.IsInitialized() {
		sh := s.grid.SampleSH(position)
		return sh.EvaluateIrradiance(normal).Mul(s.settings.LightProbeIntensity)
	}

	if len(s.groups) > 0 {
		var sh SHCoefficients
		for _, g := range s.groups {
			sh = sh.Add(g.InterpolateSH(position))
		}
		sh = sh.Scale(1.0 / float32(len(s.groups)))
		return sh.EvaluateIrradiance(normal).Mul(s.settings.LightProbeIntensity)
	}

	return s.ambientIrradiance(normal)
}

func (s *GISystem) ambientIrradiance(normal mgl32.Vec3) mgl32.Vec3 {
	sh := s.ambientSH()
	return sh.EvaluateIrradiance(normal).Mul(s.settings.AmbientIntensity)
}

func (s *GISystem) ambientSH() SHCoefficients {
	return SHFromSkyGradient(s.settings.AmbientSkyColor, s.settings.AmbientGroundColor)
}

// skyGradient is the environment term seen by rays that leave the scene:
// a two-color blend over the ray's elevation.
func (s *GISystem) skyGradient(dir mgl32.Vec3) mgl32.Vec3 {
	t := mgl32.Clamp(0.5+0.5*dir.Y(), 0, 1)
	sky := s.settings.AmbientSkyColor
	ground := s.settings.AmbientGroundColor
	return ground.Mul(1 - t).Add(sky.Mul(t))
}

// BakeLightProbe computes the probe's SH by Monte-Carlo projection of the
// traced radiance field. Without a ray caster it quietly degrades to the
// sky-gradient ambient SH and still marks the probe valid.
func (s *GISystem) BakeLightProbe(probe *LightProbe, lights []Light) {
	s.bakeProbe(s.rng, probe, lights)
}

func (s *GISystem) bakeProbe(rng *rand.Rand, probe *LightProbe, lights []Light) {
	if s.caster == nil {
		s.log.Debugf("no ray caster registered, probe %d baked with ambient fallback", probe.Id())
		probe.SetSH(s.ambientSH())
		return
	}

	var sh SHCoefficients
	for _, sample := range s.sampler.GenerateSamples(s.settings.LightProbeSamples) {
		radiance := s.traceRadiance(rng, probe.Position(), sample.Direction, 0)
		// Monte-Carlo projection: each sample weighted by its solid angle.
		sh.AddSample(sample.Direction, radiance.Mul(sample.SolidAngle))
	}

	for _, light := range lights {
		switch light.Type {
		case LightTypeDirectional:
			sh = sh.Add(SHFromDirectionalLight(light.Direction, light.Color.Mul(light.Intensity)))
		case LightTypePoint, LightTypeSpot:
			// Not supported by probe baking; skipped rather than faked.
		}
	}

	probe.SetSH(sh)
}

// traceRadiance returns the radiance arriving at origin from dir,
// recursing through Lambertian bounces up to the configured bounce count.
// Rays that hit nothing (or exhaust bounces) see the sky gradient.
func (s *GISystem) traceRadiance(rng *rand.Rand, origin, dir mgl32.Vec3, bounce int) mgl32.Vec3 {
	if bounce >= s.settings.Bounces || s.caster == nil {
		return s.skyGradient(dir)
	}

	hit := s.caster.Cast(origin, dir, s.settings.RayLength)
	if !hit.Hit {
		return s.skyGradient(dir)
	}

	bounceDir := cosineSampleHemisphere(rng, hit.Normal)
	bounceRadiance := s.traceRadiance(rng, hit.Position, bounceDir, bounce+1)

	cosTheta := max(0, hit.Normal.Dot(bounceDir))
	return mulVec3(hit.Albedo, bounceRadiance).Mul(cosTheta)
}

// BakeAllLightProbes bakes every grid probe in index order. Synchronous;
// progress (if non-nil) fires after each probe. No-op without a grid.
func (s *GISystem) BakeAllLightProbes(lights []Light, progress ProgressCallback) {
	if s.grid == nil || !s.grid.IsInitialized() {
		s.log.Warnf("BakeAllLightProbes called before the probe grid was initialized")
		return
	}

	probes := s.grid.Probes()
	total := len(probes)
	for i, probe := range probes {
		s.bakeProbe(s.rng, probe, lights)
		if progress != nil {
			progress(i+1, total)
		}
	}
	s.log.Infof("baked %d grid probes", total)
}

// BakeAllLightProbeGroups bakes every probe of every group, in container
// order.
func (s *GISystem) BakeAllLightProbeGroups(lights []Light) {
	count := 0
	for _, group := range s.groups {
		for _, probe := range group.Probes() {
			s.bakeProbe(s.rng, probe, lights)
			count++
		}
	}
	if count > 0 {
		s.log.Infof("baked %d group probes across %d groups", count, len(s.groups))
	}
}

// ClearBakedData marks every probe dirty and invalid without discarding
// stored SH, so stale data stays queryable until the next bake.
func (s *GISystem) ClearBakedData() {
	if s.grid != nil {
		for _, p := range s.grid.Probes() {
			p.Invalidate()
		}
	}
	for _, group := range s.groups {
		for _, p := range group.Probes() {
			p.Invalidate()
		}
	}
}
