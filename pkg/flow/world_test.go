package flow

import (
	"testing"

	"github.com/tochemey/goakt/v3/log"

	"github.com/particleman/go-flow-simulation/pkg/geometry"
)

func newTestWorld(cfg *Config) *World {
	return NewWorld(cfg, log.DiscardLogger)
}

func TestWorld_StepOrderReadAfterCommit(t *testing.T) {
	// A single dominant cell makes the before/after arithmetic exact:
	// the particle must relax toward the flow committed THIS frame, not
	// the seed value it would have read mid-sweep.
	cfg := testConfig()
	cfg.CellsX = 1
	cfg.CellsY = 1
	cfg.NumParticlesAtStart = 0
	w := newTestWorld(cfg)

	start := geometry.Vector2D{X: 1, Y: 0}
	w.Particles.Spawn(geometry.Vector2D{X: 100, Y: 100}, start)
	w.Agent.Vel = geometry.Vector2D{} // keep the uncoupled body inert

	seedFlow := w.Grid.Sample(0)
	if o := w.Step(ForcingFrame{}); o.Terminal() {
		t.Fatalf("unexpected terminal outcome: %v", o)
	}

	committed := seedFlow.Lerp(start, cfg.GridSmoothing)
	if got := w.Grid.Sample(0); !got.Eq(committed) {
		t.Fatalf("committed flow = %v; want %v", got, committed)
	}

	want := start.Lerp(committed, cfg.ParticleSmoothing)
	if got := w.Particles.Particles()[0].Vel; !got.Eq(want) {
		t.Errorf("particle vel = %v; want %v (relaxed against committed flow)", got, want)
	}
}

func TestWorld_StepAppliesForcing(t *testing.T) {
	cfg := testConfig()
	cfg.NumParticlesAtStart = 0
	w := newTestWorld(cfg)

	f := ForcingFrame{
		Spawns: []Spawn{
			{Pos: geometry.Vector2D{X: 50, Y: 50}, Vel: geometry.Vector2D{X: 1, Y: 0}},
			{Pos: geometry.Vector2D{X: 60, Y: 60}, Vel: geometry.Vector2D{X: 0, Y: 1}},
		},
		Steer:    true,
		SteerPos: geometry.Vector2D{X: 200, Y: 100},
		SteerVel: geometry.Vector2D{X: 2, Y: 0},
	}
	w.Step(f)

	if w.Particles.Len() != 2 {
		t.Errorf("population after spawn forcing = %d; want 2", w.Particles.Len())
	}
	// The body was placed at the steer point, then advanced one tick.
	want := geometry.Vector2D{X: 202, Y: 100}
	if !w.Agent.Pos.Eq(want) {
		t.Errorf("agent pos = %v; want %v", w.Agent.Pos, want)
	}
}

func TestWorld_TerminalLoseAbortsFrame(t *testing.T) {
	cfg := testConfig()
	cfg.CellsX = 1
	cfg.CellsY = 1
	cfg.NumParticlesAtStart = 0
	cfg.HealthDrainRate = 1.5 // one opposed tick is fatal
	w := newTestWorld(cfg)

	// Swim straight against the field.
	w.Agent.Vel = w.Grid.Sample(0).Mul(-1)

	o := w.Step(ForcingFrame{})
	if o.Kind != OutcomeLose {
		t.Fatalf("outcome = %v; want Lose", o)
	}
	if w.Ticks != 0 {
		t.Errorf("tick counter advanced on a terminal frame: %d", w.Ticks)
	}
}

func TestWorld_TerminalVictory(t *testing.T) {
	cfg := testConfig()
	cfg.CellsX = 1
	cfg.CellsY = 1
	cfg.NumParticlesAtStart = 0
	cfg.VictoryScore = 1.5
	w := newTestWorld(cfg)

	flow := w.Grid.Sample(0)

	var o Outcome
	for tick := 0; tick < 10; tick++ {
		// Re-align every tick; relax and drift leave alignment near 1.
		w.Agent.Vel = flow.Mul(2)
		o = w.Step(ForcingFrame{})
		if o.Terminal() {
			break
		}
		flow = w.Grid.Sample(0)
	}

	if o.Kind != OutcomeVictory {
		t.Fatalf("outcome = %v; want Victory", o)
	}
	if o.Score < cfg.VictoryScore {
		t.Errorf("victory score = %v; want >= %v", o.Score, cfg.VictoryScore)
	}
}

func TestWorld_HealthRecoversWhenAligned(t *testing.T) {
	cfg := testConfig()
	cfg.CellsX = 1
	cfg.CellsY = 1
	cfg.NumParticlesAtStart = 0
	w := newTestWorld(cfg)
	w.Agent.Health = 0.5
	w.Agent.Vel = w.Grid.Sample(0).Mul(2)

	w.Step(ForcingFrame{})

	if w.Agent.Health <= 0.5 {
		t.Errorf("health = %v; want above 0.5 after riding the flow", w.Agent.Health)
	}
}

func TestWorld_ResetClearsState(t *testing.T) {
	cfg := testConfig()
	w := newTestWorld(cfg)

	// Run some frames with interaction spawns.
	for tick := 0; tick < 30; tick++ {
		f := ForcingFrame{
			Spawns: []Spawn{{Pos: geometry.Vector2D{X: 10, Y: 10}, Vel: geometry.Vector2D{X: 1, Y: 1}}},
		}
		if o := w.Step(f); o.Terminal() {
			break
		}
	}
	if w.Particles.Len() <= cfg.NumParticlesAtStart {
		t.Fatalf("expected spawns to grow the population beyond %d", cfg.NumParticlesAtStart)
	}

	w.Reset()

	if got := w.Particles.Len(); got != cfg.NumParticlesAtStart {
		t.Errorf("population after reset = %d; want %d", got, cfg.NumParticlesAtStart)
	}
	for i := 0; i < w.Grid.Len(); i++ {
		if sum, count := w.Grid.Pending(i); count != 0 || !sum.Eq(geometry.Vector2D{}) {
			t.Errorf("cell %d: pending accumulator not zero after reset", i)
		}
	}
	if w.Agent.Health != 1 || w.Agent.Score != 0 {
		t.Errorf("agent not fresh after reset: health=%v score=%v", w.Agent.Health, w.Agent.Score)
	}
	if w.Ticks != 0 {
		t.Errorf("tick counter = %d after reset; want 0", w.Ticks)
	}
}

func TestWorld_StepCountsTicks(t *testing.T) {
	cfg := testConfig()
	cfg.NumParticlesAtStart = 3
	w := newTestWorld(cfg)
	w.Agent.Vel = geometry.Vector2D{} // no alignment, no terminal risk

	for tick := 0; tick < 5; tick++ {
		w.Step(ForcingFrame{})
	}
	if w.Ticks != 5 {
		t.Errorf("Ticks = %d; want 5", w.Ticks)
	}
}

func BenchmarkWorld_Step(b *testing.B) {
	cfg := testConfig()
	cfg.NumParticlesAtStart = 2000
	w := newTestWorld(cfg)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Step(ForcingFrame{})
	}
}
