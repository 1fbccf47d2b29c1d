package giprobe

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// GroupId identifies a probe group.
type GroupId string

// Default neighbor count for inverse-distance interpolation.
const DefaultNearestProbeCount = 4

// idwEpsilon keeps the inverse-distance weight finite when a query lands
// exactly on a probe.
const idwEpsilon float32 = 0.001

// ProbeWeight is one neighbor of an interpolation query with its
// normalized inverse-distance weight.
type ProbeWeight struct {
	Probe  *LightProbe
	Weight float32
}

// LightProbeGroup is an unordered, scattered set of probes serving one
// spatial region. Probes are owned exclusively by the group; queries return
// non-owning pointers.
type LightProbeGroup struct {
	id     GroupId
	name   string
	ids    *ProbeIDAllocator
	probes []*LightProbe
}

func NewLightProbeGroup(ids *ProbeIDAllocator, name string) *LightProbeGroup {
	return &LightProbeGroup{
		id:   GroupId(uuid.NewString()),
		name: name,
		ids:  ids,
	}
}

func (g *LightProbeGroup) Id() GroupId { return g.id }

func (g *LightProbeGroup) Name() string { return g.name }

func (g *LightProbeGroup) ProbeCount() int { return len(g.probes) }

// Probes returns the owned probes in insertion order. The slice must not be
// mutated by the caller.
func (g *LightProbeGroup) Probes() []*LightProbe { return g.probes }

// AddProbe creates a new probe at position, owned by the group.
// Duplicate positions are allowed.
func (g *LightProbeGroup) AddProbe(position mgl32.Vec3) *LightProbe {
	probe := NewLightProbe(g.ids, position)
	g.probes = append(g.probes, probe)
	return probe
}

// RemoveProbe erases by identity. O(n). Returns false if the probe is not
// owned by this group.
func (g *LightProbeGroup) RemoveProbe(probe *LightProbe) bool {
	for i, p := range g.probes {
		if p == probe {
			g.probes = append(g.probes[:i], g.probes[i+1:]...)
			return true
		}
	}
	return false
}

// FindNearestProbes returns up to maxCount probes closest to position with
// normalized inverse-distance weights. Fewer probes than maxCount means all
// of them are returned; an empty group yields an empty slice.
func (g *LightProbeGroup) FindNearestProbes(position mgl32.Vec3, maxCount int) []ProbeWeight {
	if len(g.probes) == 0 || maxCount <= 0 {
		return nil
	}

	type probeDist struct {
		probe *LightProbe
		dist  float32
	}

	dists := make([]probeDist, len(g.probes))
	for i, p := range g.probes {
		dists[i] = probeDist{probe: p, dist: p.Position().Sub(position).Len()}
	}
	sort.SliceStable(dists, func(i, j int) bool {
		return dists[i].dist < dists[j].dist
	})

	if maxCount > len(dists) {
		maxCount = len(dists)
	}

	weights := make([]ProbeWeight, maxCount)
	var total float32
	for i := 0; i < maxCount; i++ {
		w := 1.0 / (dists[i].dist + idwEpsilon)
		weights[i] = ProbeWeight{Probe: dists[i].probe, Weight: w}
		total += w
	}
	for i := range weights {
		weights[i].Weight /= total
	}
	return weights
}

// InterpolateSH blends the nearest probes' coefficients by inverse-distance
// weight. An empty group returns a zero SH, which shading treats as "no
// contribution".
func (g *LightProbeGroup) InterpolateSH(position mgl32.Vec3) SHCoefficients {
	var result SHCoefficients
	for _, pw := range g.FindNearestProbes(position, DefaultNearestProbeCount) {
		result = result.Add(pw.Probe.SH().Scale(pw.Weight))
	}
	return result
}

// Bounds computes the axis-aligned box enclosing all probes. Not cached.
// ok is false for an empty group.
func (g *LightProbeGroup) Bounds() (minB, maxB mgl32.Vec3, ok bool) {
	if len(g.probes) == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}
	minB = g.probes[0].Position()
	maxB = minB
	for _, p := range g.probes[1:] {
		pos := p.Position()
		for i := 0; i < 3; i++ {
			minB[i] = min(minB[i], pos[i])
			maxB[i] = max(maxB[i], pos[i])
		}
	}
	return minB, maxB, true
}

// MarkAllDirty schedules every probe for rebaking without invalidating it.
func (g *LightProbeGroup) MarkAllDirty() {
	for _, p := range g.probes {
		p.SetDirty(true)
	}
}
