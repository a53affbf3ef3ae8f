package flow

import (
	"math/rand"

	"github.com/particleman/go-flow-simulation/pkg/geometry"
)

const defaultParticleSize = 1.0

// Particle is one passive point agent. Its position always lies inside
// [0,W) x [0,H) after an update; leaving one edge re-enters at the
// opposite edge.
type Particle struct {
	Pos  geometry.Vector2D
	Vel  geometry.Vector2D
	Size float64
}

// ParticleSet owns the whole particle population and its per-frame sweeps.
type ParticleSet struct {
	particles []Particle
	width     float64
	height    float64
	smoothing float64
	rng       *rand.Rand
}

// NewParticleSet creates the initial population with uniformly random
// positions and velocities in [-1,1] per axis.
func NewParticleSet(cfg *Config, rng *rand.Rand) *ParticleSet {
	s := &ParticleSet{
		particles: make([]Particle, 0, cfg.NumParticlesAtStart),
		width:     cfg.WorldWidth,
		height:    cfg.WorldHeight,
		smoothing: cfg.ParticleSmoothing,
		rng:       rng,
	}
	s.Reset(cfg.NumParticlesAtStart)
	return s
}

// Reset discards the current population and draws n fresh particles with
// uniformly random positions and velocities in [-1,1] per axis.
func (s *ParticleSet) Reset(n int) {
	s.particles = s.particles[:0]
	for i := 0; i < n; i++ {
		s.particles = append(s.particles, Particle{
			Pos: geometry.Vector2D{
				X: s.rng.Float64() * s.width,
				Y: s.rng.Float64() * s.height,
			},
			Vel: geometry.Vector2D{
				X: s.rng.Float64()*2 - 1,
				Y: s.rng.Float64()*2 - 1,
			},
			Size: defaultParticleSize,
		})
	}
}

// Len returns the current population size.
func (s *ParticleSet) Len() int {
	return len(s.particles)
}

// Particles exposes the population to the renderer. Read-only by convention.
func (s *ParticleSet) Particles() []Particle {
	return s.particles
}

// Advance integrates one unit tick and wraps every particle back into the
// domain.
func (s *ParticleSet) Advance() {
	for i := range s.particles {
		p := &s.particles[i]
		p.Pos = p.Pos.Add(p.Vel).Wrap(s.width, s.height)
	}
}

// Feed accumulates every particle's velocity into the cell it occupies.
// Must run after Advance and before the grid commits, so each particle
// contributes exactly one sample per frame.
func (s *ParticleSet) Feed(grid *Grid) {
	for i := range s.particles {
		p := &s.particles[i]
		grid.Accumulate(grid.CellIndexFor(p.Pos), p.Vel)
	}
}

// Relax blends every particle's velocity toward the committed flow of its
// cell. The rate is far below the grid's own smoothing, so particles drift
// toward the locally averaged behaviour rather than snapping to it.
func (s *ParticleSet) Relax(grid *Grid) {
	for i := range s.particles {
		p := &s.particles[i]
		p.Vel = p.Vel.Lerp(grid.Sample(grid.CellIndexFor(p.Pos)), s.smoothing)
	}
}

// ApplyExternalPull blends particle velocities toward target at the given
// rate. With radius > 0 only particles within that distance of center are
// affected; radius <= 0 pulls the whole population.
func (s *ParticleSet) ApplyExternalPull(center, target geometry.Vector2D, radius, rate float64) {
	radiusSq := radius * radius
	for i := range s.particles {
		p := &s.particles[i]
		if radius > 0 && p.Pos.DistanceSquaredTo(center) > radiusSq {
			continue
		}
		p.Vel = p.Vel.Lerp(target, rate)
	}
}

// Spawn appends one particle at pos with the given velocity.
func (s *ParticleSet) Spawn(pos, vel geometry.Vector2D) {
	s.particles = append(s.particles, Particle{
		Pos:  pos.Wrap(s.width, s.height),
		Vel:  vel,
		Size: defaultParticleSize,
	})
}

// SpawnJittered spawns one particle with its velocity rotated by a random
// angle within [-spray, spray].
func (s *ParticleSet) SpawnJittered(pos, vel geometry.Vector2D, spray float64) {
	if spray > 0 {
		vel = vel.Rotate((s.rng.Float64()*2 - 1) * spray)
	}
	s.Spawn(pos, vel)
}

// SetSmoothing updates the relax rate, used by the live tuning panel.
func (s *ParticleSet) SetSmoothing(rate float64) {
	s.smoothing = rate
}
