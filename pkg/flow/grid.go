package flow

import (
	"math/rand"

	"github.com/aquilax/go-perlin"
	"github.com/tochemey/goakt/v3/log"

	"github.com/particleman/go-flow-simulation/pkg/geometry"
)

// Perlin parameters for the initial field. Two octaves of low-frequency
// noise give neighbouring cells loosely correlated seed vectors instead of
// pure white noise, which reads better on screen before the first commit.
const (
	noiseAlpha = 2.0
	noiseBeta  = 2.0
	noiseN     = 2
	noiseScale = 0.15
)

// Cell is one element of the flow grid. Flow persists across frames;
// the pending accumulator is gathered during a frame and folded into
// Flow by Commit, never read by contributors mid-frame.
type Cell struct {
	Flow geometry.Vector2D

	pendingSum   geometry.Vector2D
	pendingCount uint32
}

// Grid partitions the world into CellsX x CellsY flow cells and owns the
// two-phase accumulate/commit update of the field.
type Grid struct {
	cells      []Cell
	cellsX     int
	cellsY     int
	cellWidth  float64
	cellHeight float64
	smoothing  float64
	logger     log.Logger
}

// NewGrid creates the flow field with every cell seeded to a small
// pseudo-random vector drawn from Perlin noise.
func NewGrid(cfg *Config, seed int64, logger log.Logger) *Grid {
	g := &Grid{
		cells:      make([]Cell, cfg.CellsX*cfg.CellsY),
		cellsX:     cfg.CellsX,
		cellsY:     cfg.CellsY,
		cellWidth:  cfg.CellWidth(),
		cellHeight: cfg.CellHeight(),
		smoothing:  cfg.GridSmoothing,
		logger:     logger,
	}

	noise := perlin.NewPerlin(noiseAlpha, noiseBeta, noiseN, seed)
	rng := rand.New(rand.NewSource(seed))
	for i := range g.cells {
		x := float64(i%g.cellsX) * noiseScale
		y := float64(i/g.cellsX) * noiseScale
		// Two decorrelated samples, one per component. Perlin returns 0 on
		// integer lattice points, hence the fractional offsets and the
		// rand fallback that keeps degenerate seeds from freezing the field.
		vx := noise.Noise2D(x+0.13, y+0.57)
		vy := noise.Noise2D(x+7.31, y+3.97)
		if vx == 0 && vy == 0 {
			vx = rng.Float64()*2 - 1
			vy = rng.Float64()*2 - 1
		}
		g.cells[i].Flow = geometry.Vector2D{X: vx, Y: vy}
	}
	return g
}

// Len returns the number of cells.
func (g *Grid) Len() int {
	return len(g.cells)
}

// CellsX returns the horizontal cell count.
func (g *Grid) CellsX() int { return g.cellsX }

// CellsY returns the vertical cell count.
func (g *Grid) CellsY() int { return g.cellsY }

// CellIndexFor maps a wrapped world position to its cell index.
// A position exactly on the upper domain edge can round one cell too far;
// that index is clamped to the last valid cell and traced, never surfaced
// as an error.
func (g *Grid) CellIndexFor(pos geometry.Vector2D) int {
	cx := int(pos.X / g.cellWidth)
	cy := int(pos.Y / g.cellHeight)
	idx := cy*g.cellsX + cx
	if idx < 0 {
		g.logger.Debugf("cell index underflow at %s -> %d, clamping to 0", pos, idx)
		return 0
	}
	if idx >= len(g.cells) {
		g.logger.Debugf("cell index overflow at %s -> %d, clamping to %d", pos, idx, len(g.cells)-1)
		return len(g.cells) - 1
	}
	return idx
}

// CellCenter returns the world position of a cell's midpoint.
func (g *Grid) CellCenter(idx int) geometry.Vector2D {
	return geometry.Vector2D{
		X: g.cellWidth/2 + g.cellWidth*float64(idx%g.cellsX),
		Y: g.cellHeight/2 + g.cellHeight*float64(idx/g.cellsX),
	}
}

// Accumulate adds one contributor's velocity to the cell's pending sum.
// Callable any number of times per frame; each call grows the averaging
// sample for that cell.
func (g *Grid) Accumulate(idx int, vel geometry.Vector2D) {
	c := &g.cells[idx]
	c.pendingSum = c.pendingSum.Add(vel)
	c.pendingCount++
}

// Commit folds this frame's accumulated samples into the persistent field.
// Cells with contributors move toward their local average by the grid
// smoothing rate; cells without contributors keep their stale flow.
// Pending accumulators are cleared unconditionally.
func (g *Grid) Commit() {
	for i := range g.cells {
		c := &g.cells[i]
		if c.pendingCount > 0 {
			average := c.pendingSum.Mul(1 / float64(c.pendingCount))
			c.Flow = c.Flow.Lerp(average, g.smoothing)
		}
		c.pendingSum = geometry.Vector2D{}
		c.pendingCount = 0
	}
}

// Sample returns the committed flow of a cell. Read-only.
func (g *Grid) Sample(idx int) geometry.Vector2D {
	return g.cells[idx].Flow
}

// Pending exposes the frame accumulator of a cell for tests and telemetry.
func (g *Grid) Pending(idx int) (geometry.Vector2D, uint32) {
	return g.cells[idx].pendingSum, g.cells[idx].pendingCount
}

// SetSmoothing updates the commit rate, used by the live tuning panel.
func (g *Grid) SetSmoothing(rate float64) {
	g.smoothing = rate
}
