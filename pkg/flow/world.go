package flow

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/tochemey/goakt/v3/log"

	"github.com/particleman/go-flow-simulation/pkg/geometry"
)

// OutcomeKind tags the closed set of ways a running session can end.
type OutcomeKind int

const (
	OutcomeNone OutcomeKind = iota
	OutcomeLose
	OutcomeVictory
)

// Outcome is the typed terminal result of a frame. It is a value, not an
// error: gameplay ending a session is expected behaviour and is consumed
// by the session controller alone.
type Outcome struct {
	Kind  OutcomeKind
	Score float64
}

// Terminal reports whether the outcome ends the session.
func (o Outcome) Terminal() bool {
	return o.Kind != OutcomeNone
}

// String implements fmt.Stringer for the session-over overlay.
func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeLose:
		return fmt.Sprintf("WRECKED - score %.0f", o.Score)
	case OutcomeVictory:
		return fmt.Sprintf("VICTORY - score %.0f", o.Score)
	default:
		return "running"
	}
}

// Pull is an external blend of particle velocities toward a target,
// typically derived from a pointer drag.
type Pull struct {
	Center geometry.Vector2D
	Target geometry.Vector2D
	Radius float64 // <= 0 pulls the whole population
	Rate   float64
}

// Spawn is a request for one new particle this frame.
type Spawn struct {
	Pos   geometry.Vector2D
	Vel   geometry.Vector2D
	Spray float64 // max random rotation applied to Vel, radians
}

// ForcingFrame carries one frame's worth of interaction, already
// translated from raw input by the session layer. The zero value applies
// no forcing at all.
type ForcingFrame struct {
	HasPull bool
	Pull    Pull

	Spawns []Spawn

	// Drag-to-steer: place the body and set its velocity directly.
	Steer    bool
	SteerPos geometry.Vector2D
	SteerVel geometry.Vector2D

	// Keyboard variant.
	TurnDelta float64
	Thrust    bool
}

// World is the aggregate the whole pipeline operates on. The grid, the
// particle set and the player body are explicitly owned fields passed by
// reference, never package state.
type World struct {
	Cfg       *Config
	Grid      *Grid
	Particles *ParticleSet
	Agent     *Agent

	Ticks int

	rng    *rand.Rand
	logger log.Logger
}

// NewWorld builds a fresh world from the configuration. A zero seed is
// replaced by the clock so interactive runs differ; headless runs pass an
// explicit seed for reproducibility.
func NewWorld(cfg *Config, logger log.Logger) *World {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	w := &World{Cfg: cfg, logger: logger}
	w.populate(seed)
	return w
}

func (w *World) populate(seed int64) {
	w.rng = rand.New(rand.NewSource(seed))
	w.Grid = NewGrid(w.Cfg, seed, w.logger)
	w.Particles = NewParticleSet(w.Cfg, w.rng)
	w.Agent = NewAgent(w.Cfg)
	w.Ticks = 0
}

// Reset swaps in a whole fresh world state. It must only be called
// between frames; no system ever observes an old body with a new grid.
func (w *World) Reset() {
	w.logger.Info("session reset: rebuilding grid, particles and agent")
	w.populate(w.rng.Int63())
}

// Step runs one full frame of the pipeline in its required order:
// forcing, particle advance, particle feed, agent physics, grid commit,
// particle relax, terminal check. A terminal outcome aborts every
// remaining system of the frame.
func (w *World) Step(f ForcingFrame) Outcome {
	systems := []func(ForcingFrame) Outcome{
		w.applyForcing,
		w.advanceParticles,
		w.feedGrid,
		w.advanceAgent,
		w.commitGrid,
		w.relaxParticles,
		w.checkTerminal,
	}
	for _, system := range systems {
		if o := system(f); o.Terminal() {
			return o
		}
	}
	w.Ticks++
	return Outcome{}
}

func (w *World) applyForcing(f ForcingFrame) Outcome {
	if f.HasPull {
		w.Particles.ApplyExternalPull(f.Pull.Center, f.Pull.Target, f.Pull.Radius, f.Pull.Rate)
	}
	for _, s := range f.Spawns {
		w.Particles.SpawnJittered(s.Pos, s.Vel, s.Spray)
	}
	if f.Steer {
		w.Agent.MoveTo(f.SteerPos)
		w.Agent.Vel = f.SteerVel
	}
	if f.TurnDelta != 0 {
		w.Agent.Turn(f.TurnDelta)
	}
	if f.Thrust {
		w.Agent.Thrust()
	}
	return Outcome{}
}

func (w *World) advanceParticles(ForcingFrame) Outcome {
	w.Particles.Advance()
	return Outcome{}
}

func (w *World) feedGrid(ForcingFrame) Outcome {
	w.Particles.Feed(w.Grid)
	return Outcome{}
}

func (w *World) advanceAgent(ForcingFrame) Outcome {
	w.Agent.Advance()
	if w.Agent.Coupled() {
		w.Agent.Feed(w.Grid)
	}
	return Outcome{}
}

func (w *World) commitGrid(ForcingFrame) Outcome {
	w.Grid.Commit()
	return Outcome{}
}

func (w *World) relaxParticles(ForcingFrame) Outcome {
	w.Particles.Relax(w.Grid)
	if w.Agent.Coupled() {
		w.Agent.Relax(w.Grid)
	}
	return Outcome{}
}

// checkTerminal drains health while the body fights the committed flow
// and accrues score while it rides it.
func (w *World) checkTerminal(ForcingFrame) Outcome {
	alignment := w.Agent.FlowAlignment(w.Grid)
	if alignment < 0 {
		w.Agent.Health += alignment * w.Cfg.HealthDrainRate
	} else {
		w.Agent.Health += alignment * w.Cfg.HealthRegenRate
		if w.Agent.Health > 1 {
			w.Agent.Health = 1
		}
		w.Agent.Score += alignment
	}

	if w.Agent.Health <= 0 {
		return Outcome{Kind: OutcomeLose, Score: w.Agent.Score}
	}
	if w.Agent.Score >= w.Cfg.VictoryScore {
		return Outcome{Kind: OutcomeVictory, Score: w.Agent.Score}
	}
	return Outcome{}
}
