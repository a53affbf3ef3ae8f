package flow

import (
	"math"
	"math/rand"
	"testing"

	"github.com/tochemey/goakt/v3/log"

	"github.com/particleman/go-flow-simulation/pkg/geometry"
)

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Seed = 42
	return cfg
}

func TestGrid_CellIndexBoundary(t *testing.T) {
	cfg := testConfig()
	g := NewGrid(cfg, cfg.Seed, log.DiscardLogger)
	last := cfg.CellsX*cfg.CellsY - 1

	tests := []struct {
		name string
		pos  geometry.Vector2D
		want int
	}{
		{"Origin", geometry.Vector2D{X: 0, Y: 0}, 0},
		{"Center of first cell", geometry.Vector2D{X: cfg.CellWidth() / 2, Y: cfg.CellHeight() / 2}, 0},
		{"Just inside far corner", geometry.Vector2D{X: cfg.WorldWidth - 1e-9, Y: cfg.WorldHeight - 1e-9}, last},
		{"Exactly on far corner (clamped)", geometry.Vector2D{X: cfg.WorldWidth, Y: cfg.WorldHeight}, last},
		{"Second row", geometry.Vector2D{X: 0, Y: cfg.CellHeight()}, cfg.CellsX},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.CellIndexFor(tt.pos); got != tt.want {
				t.Errorf("CellIndexFor(%v) = %d; want %d", tt.pos, got, tt.want)
			}
		})
	}
}

func TestGrid_CellIndexNeverOutOfRange(t *testing.T) {
	cfg := testConfig()
	g := NewGrid(cfg, cfg.Seed, log.DiscardLogger)
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 10000; i++ {
		pos := geometry.Vector2D{
			X: rng.Float64() * cfg.WorldWidth,
			Y: rng.Float64() * cfg.WorldHeight,
		}
		idx := g.CellIndexFor(pos)
		if idx < 0 || idx >= g.Len() {
			t.Fatalf("CellIndexFor(%v) = %d; out of [0, %d)", pos, idx, g.Len())
		}
	}
}

func TestGrid_CommitEmptyLeavesFlowUnchanged(t *testing.T) {
	cfg := testConfig()
	g := NewGrid(cfg, cfg.Seed, log.DiscardLogger)

	before := make([]geometry.Vector2D, g.Len())
	for i := range before {
		before[i] = g.Sample(i)
	}

	g.Commit()

	for i := range before {
		if !g.Sample(i).Eq(before[i]) {
			t.Errorf("cell %d: flow changed on empty commit: %v -> %v", i, before[i], g.Sample(i))
		}
		if sum, count := g.Pending(i); count != 0 || !sum.Eq(geometry.Vector2D{}) {
			t.Errorf("cell %d: pending not cleared after commit: sum=%v count=%d", i, sum, count)
		}
	}
}

func TestGrid_CommitResetsPendingUnconditionally(t *testing.T) {
	cfg := testConfig()
	g := NewGrid(cfg, cfg.Seed, log.DiscardLogger)

	g.Accumulate(3, geometry.Vector2D{X: 1, Y: -1})
	g.Accumulate(3, geometry.Vector2D{X: 2, Y: 0})
	g.Commit()

	if sum, count := g.Pending(3); count != 0 || !sum.Eq(geometry.Vector2D{}) {
		t.Errorf("pending survived commit: sum=%v count=%d", sum, count)
	}
}

func TestGrid_AccumulationOrderIndependence(t *testing.T) {
	samples := []geometry.Vector2D{
		{X: 1, Y: 0}, {X: -2, Y: 3}, {X: 0.5, Y: -0.25}, {X: 4, Y: 4}, {X: -1, Y: -1},
	}
	permutations := [][]int{
		{0, 1, 2, 3, 4},
		{4, 3, 2, 1, 0},
		{2, 0, 4, 1, 3},
	}

	cfg := testConfig()
	var flows []geometry.Vector2D
	for _, perm := range permutations {
		g := NewGrid(cfg, cfg.Seed, log.DiscardLogger)
		for _, i := range perm {
			g.Accumulate(0, samples[i])
		}
		g.Commit()
		flows = append(flows, g.Sample(0))
	}

	for i := 1; i < len(flows); i++ {
		if !flows[i].Eq(flows[0]) {
			t.Errorf("permutation %d produced flow %v; permutation 0 produced %v", i, flows[i], flows[0])
		}
	}
}

func TestGrid_SmoothingNeverOvershoots(t *testing.T) {
	cfg := testConfig()
	rng := rand.New(rand.NewSource(7))

	between := func(x, a, b float64) bool {
		lo, hi := math.Min(a, b), math.Max(a, b)
		return x >= lo-geometry.Epsilon && x <= hi+geometry.Epsilon
	}

	for trial := 0; trial < 100; trial++ {
		g := NewGrid(cfg, int64(trial), log.DiscardLogger)
		old := g.Sample(0)
		sample := geometry.Vector2D{X: rng.Float64()*20 - 10, Y: rng.Float64()*20 - 10}
		g.Accumulate(0, sample)
		g.Commit()
		got := g.Sample(0)

		if !between(got.X, old.X, sample.X) || !between(got.Y, old.Y, sample.Y) {
			t.Fatalf("trial %d: commit overshot: old=%v sample=%v got=%v", trial, old, sample, got)
		}
	}
}

func TestGrid_SteadyStateConvergence(t *testing.T) {
	cfg := testConfig()
	cfg.CellsX = 1
	cfg.CellsY = 1
	g := NewGrid(cfg, cfg.Seed, log.DiscardLogger)

	target := geometry.Vector2D{X: 1, Y: 0}
	seed := g.Sample(0)

	// One feed+commit with ten identical contributors moves the flow by
	// exactly the smoothing fraction of the gap.
	for i := 0; i < 10; i++ {
		g.Accumulate(0, target)
	}
	g.Commit()

	want := seed.Lerp(target, cfg.GridSmoothing)
	if !g.Sample(0).Eq(want) {
		t.Fatalf("after one commit: flow = %v; want %v", g.Sample(0), want)
	}

	// Repeated ticks with the same contributors converge on the target.
	for tick := 0; tick < 200; tick++ {
		for i := 0; i < 10; i++ {
			g.Accumulate(0, target)
		}
		g.Commit()
	}
	if g.Sample(0).Sub(target).Len() > 1e-3 {
		t.Errorf("flow did not converge: %v; want within 1e-3 of %v", g.Sample(0), target)
	}
}

func TestGrid_SeededFlowIsNonZero(t *testing.T) {
	cfg := testConfig()
	g := NewGrid(cfg, cfg.Seed, log.DiscardLogger)

	nonZero := 0
	for i := 0; i < g.Len(); i++ {
		if g.Sample(i).LenSqr() > 0 {
			nonZero++
		}
	}
	if nonZero == 0 {
		t.Error("every seeded cell has zero flow; the field would never move particles")
	}
}

func BenchmarkGrid_Commit(b *testing.B) {
	cfg := testConfig()
	g := NewGrid(cfg, cfg.Seed, log.DiscardLogger)
	vel := geometry.Vector2D{X: 1, Y: 0.5}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for idx := 0; idx < g.Len(); idx++ {
			g.Accumulate(idx, vel)
		}
		g.Commit()
	}
}
