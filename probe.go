package giprobe

import (
	"github.com/go-gl/mathgl/mgl32"
)

// ProbeId identifies a light probe within one allocator's lifetime.
type ProbeId uint32

// ProbeIDAllocator hands out monotonically increasing probe ids.
// Each GISystem owns its own allocator so construction stays deterministic;
// ids are unique per allocator, not process-wide.
type ProbeIDAllocator struct {
	next ProbeId
}

func NewProbeIDAllocator() *ProbeIDAllocator {
	return &ProbeIDAllocator{next: 1}
}

func (a *ProbeIDAllocator) Allocate() ProbeId {
	id := a.next
	a.next++
	return id
}

// LightProbe is a single sample site: a position with the SH-encoded light
// field captured there.
//
// State machine: created dirty and invalid; a bake (including the ambient
// fallback bake) marks it valid and clean. Re-dirtying does not clear
// validity, so shading can keep sampling stale data while a rebake is
// pending.
type LightProbe struct {
	id       ProbeId
	position mgl32.Vec3
	sh       SHCoefficients
	dirty    bool
	valid    bool
}

func NewLightProbe(ids *ProbeIDAllocator, position mgl32.Vec3) *LightProbe {
	return &LightProbe{
		id:       ids.Allocate(),
		position: position,
		dirty:    true,
		valid:    false,
	}
}

func (p *LightProbe) Id() ProbeId { return p.id }

func (p *LightProbe) Position() mgl32.Vec3 { return p.position }

// SetPosition moves the probe and schedules it for rebaking.
func (p *LightProbe) SetPosition(pos mgl32.Vec3) {
	p.position = pos
	p.dirty = true
}

func (p *LightProbe) SH() SHCoefficients { return p.sh }

// SetSH stores baked coefficients and moves the probe to the baked state.
func (p *LightProbe) SetSH(sh SHCoefficients) {
	p.sh = sh
	p.dirty = false
	p.valid = true
}

func (p *LightProbe) IsDirty() bool { return p.dirty }

// SetDirty schedules (or cancels scheduling of) a rebake. Never touches
// validity: a valid probe with stale data stays safe to sample.
func (p *LightProbe) SetDirty(dirty bool) { p.dirty = dirty }

func (p *LightProbe) IsValid() bool { return p.valid }

// Invalidate marks stored data as unusable without discarding it.
func (p *LightProbe) Invalidate() {
	p.valid = false
	p.dirty = true
}
