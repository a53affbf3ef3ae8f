package flow

import (
	"github.com/particleman/go-flow-simulation/pkg/geometry"
)

const thrustBaseMagnitude = 0.1

// Agent is the single player-controlled body. It moves under the same
// toroidal wrap rule as the particles and can optionally take part in the
// grid's accumulate/relax contract like one.
type Agent struct {
	Pos    geometry.Vector2D
	Vel    geometry.Vector2D
	Facing float64 // heading angle, radians
	Health float64
	Score  float64

	width  float64
	height float64

	thrustSmoothing   float64
	particleSmoothing float64
	coupled           bool
}

// Pose is the read-only view the renderer needs to draw the body.
type Pose struct {
	Pos    geometry.Vector2D
	Vel    geometry.Vector2D
	Facing float64
}

// NewAgent places the body at the center of the domain with a small
// rightward drift, full health and zero score.
func NewAgent(cfg *Config) *Agent {
	return &Agent{
		Pos:               geometry.Vector2D{X: cfg.WorldWidth / 2, Y: cfg.WorldHeight / 2},
		Vel:               geometry.Vector2D{X: 0.5, Y: 0},
		Health:            1,
		width:             cfg.WorldWidth,
		height:            cfg.WorldHeight,
		thrustSmoothing:   cfg.ThrustSmoothing,
		particleSmoothing: cfg.ParticleSmoothing,
		coupled:           cfg.AgentCoupled,
	}
}

// Turn rotates the heading by delta radians.
func (a *Agent) Turn(delta float64) {
	a.Facing += delta
}

// Thrust blends the velocity toward a push vector along the current
// heading. The push magnitude grows with current speed, so thrust feels
// responsive from a standstill and saturates at high speed.
func (a *Agent) Thrust() {
	magnitude := thrustBaseMagnitude + a.Vel.Len()
	target := geometry.NewVectorPolar(magnitude, a.Facing)
	a.Vel = a.Vel.Lerp(target, a.thrustSmoothing)
}

// Advance integrates one unit tick with toroidal wrap.
func (a *Agent) Advance() {
	a.Pos = a.Pos.Add(a.Vel).Wrap(a.width, a.height)
}

// MoveTo teleports the body, used by the drag-to-steer interaction.
func (a *Agent) MoveTo(pos geometry.Vector2D) {
	a.Pos = pos.Wrap(a.width, a.height)
}

// Coupled reports whether the body takes part in the grid contract.
func (a *Agent) Coupled() bool {
	return a.coupled
}

// Feed contributes the body's velocity to its cell, same contract as a
// particle. Only meaningful when coupled.
func (a *Agent) Feed(grid *Grid) {
	grid.Accumulate(grid.CellIndexFor(a.Pos), a.Vel)
}

// Relax blends the body's velocity toward the committed flow of its cell.
func (a *Agent) Relax(grid *Grid) {
	a.Vel = a.Vel.Lerp(grid.Sample(grid.CellIndexFor(a.Pos)), a.particleSmoothing)
}

// FlowAlignment returns the cosine of the angle between the body's
// velocity and the local committed flow, in [-1, 1]. Zero when either
// vector vanishes.
func (a *Agent) FlowAlignment(grid *Grid) float64 {
	local := grid.Sample(grid.CellIndexFor(a.Pos))
	vl := a.Vel.Len()
	fl := local.Len()
	if vl < geometry.Epsilon || fl < geometry.Epsilon {
		return 0
	}
	return a.Vel.Dot(local) / (vl * fl)
}

// RenderPose exposes the drawing pose. Pure read.
func (a *Agent) RenderPose() Pose {
	facing := a.Facing
	if a.Vel.LenSqr() > geometry.Epsilon {
		facing = a.Vel.Angle()
	}
	return Pose{Pos: a.Pos, Vel: a.Vel, Facing: facing}
}
