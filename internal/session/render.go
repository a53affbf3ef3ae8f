package session

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/particleman/go-flow-simulation/pkg/flow"
)

const (
	velocityIndicatorScale = 8.0
	cellVectorScale        = 20.0
)

// whiteImage is the 1x1 source for DrawTriangles fills.
var whiteImage = ebiten.NewImage(3, 3)

func init() {
	whiteImage.Fill(color.White)
}

// Renderer draws the world. It only reads the simulation's accessors; all
// pixel work lives here, none in pkg/flow.
type Renderer struct {
	cfg *flow.Config
}

// NewRenderer creates the drawing helper.
func NewRenderer(cfg *flow.Config) *Renderer {
	return &Renderer{cfg: cfg}
}

// DrawWorld renders particles and the player body.
func (r *Renderer) DrawWorld(screen *ebiten.Image, w *flow.World) {
	for _, p := range w.Particles.Particles() {
		r.drawParticle(screen, p)
	}
	r.drawAgent(screen, w.Agent.RenderPose())
}

// drawParticle draws the velocity indicator line, hue keyed to speed so
// fast particles run hot.
func (r *Renderer) drawParticle(screen *ebiten.Image, p flow.Particle) {
	tip := p.Pos.Add(p.Vel.Mul(velocityIndicatorScale))
	speed := p.Vel.Len()
	clr := hslToRGB(1.8-speed/6, 1, 0.5)
	vector.StrokeLine(screen,
		float32(p.Pos.X), float32(p.Pos.Y),
		float32(tip.X), float32(tip.Y),
		1, clr, true)
}

// drawAgent draws the body as an oriented triangle.
func (r *Renderer) drawAgent(screen *ebiten.Image, pose flow.Pose) {
	tipX := pose.Pos.X + math.Cos(pose.Facing)*10
	tipY := pose.Pos.Y + math.Sin(pose.Facing)*10
	rightX := pose.Pos.X + math.Cos(pose.Facing+2.5)*7
	rightY := pose.Pos.Y + math.Sin(pose.Facing+2.5)*7
	leftX := pose.Pos.X + math.Cos(pose.Facing-2.5)*7
	leftY := pose.Pos.Y + math.Sin(pose.Facing-2.5)*7

	vertices := []ebiten.Vertex{
		{DstX: float32(tipX), DstY: float32(tipY), SrcX: 1, SrcY: 1, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		{DstX: float32(rightX), DstY: float32(rightY), SrcX: 1, SrcY: 1, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		{DstX: float32(leftX), DstY: float32(leftY), SrcX: 1, SrcY: 1, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
	}
	indices := []uint16{0, 1, 2}

	screen.DrawTriangles(vertices, indices, whiteImage, &ebiten.DrawTrianglesOptions{})
}

// DrawGridLines renders the cell boundaries.
func (r *Renderer) DrawGridLines(screen *ebiten.Image, g *flow.Grid) {
	lineClr := color.RGBA{R: 255, G: 255, B: 255, A: 70}
	cellW := r.cfg.CellWidth()
	cellH := r.cfg.CellHeight()

	for x := 1; x < g.CellsX(); x++ {
		px := float32(float64(x) * cellW)
		vector.StrokeLine(screen, px, 0, px, float32(r.cfg.WorldHeight), 0.5, lineClr, true)
	}
	for y := 1; y < g.CellsY(); y++ {
		py := float32(float64(y) * cellH)
		vector.StrokeLine(screen, 0, py, float32(r.cfg.WorldWidth), py, 0.5, lineClr, true)
	}
}

// DrawFlowVectors renders each cell's committed flow vector.
func (r *Renderer) DrawFlowVectors(screen *ebiten.Image, g *flow.Grid) {
	for i := 0; i < g.Len(); i++ {
		center := g.CellCenter(i)
		tip := center.Add(g.Sample(i).Mul(cellVectorScale))
		vector.FillCircle(screen, float32(center.X), float32(center.Y), 0.8, color.White, true)
		vector.StrokeLine(screen,
			float32(center.X), float32(center.Y),
			float32(tip.X), float32(tip.Y),
			0.5, color.White, true)
	}
}

// DrawCenteredPrompt prints one message roughly centered on screen.
func (r *Renderer) DrawCenteredPrompt(screen *ebiten.Image, msg string) {
	// DebugPrint glyphs are ~6px wide; close enough for an overlay.
	x := int(r.cfg.WorldWidth/2) - len(msg)*3
	y := int(r.cfg.WorldHeight / 2)
	ebitenutil.DebugPrintAt(screen, msg, x, y)
}

// hslToRGB converts HSL (h wrapped into [0,1)) to an opaque RGBA color.
func hslToRGB(h, s, l float64) color.RGBA {
	h = h - math.Floor(h)

	c := (1 - math.Abs(2*l-1)) * s
	hp := h * 6
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))

	var rf, gf, bf float64
	switch {
	case hp < 1:
		rf, gf, bf = c, x, 0
	case hp < 2:
		rf, gf, bf = x, c, 0
	case hp < 3:
		rf, gf, bf = 0, c, x
	case hp < 4:
		rf, gf, bf = 0, x, c
	case hp < 5:
		rf, gf, bf = x, 0, c
	default:
		rf, gf, bf = c, 0, x
	}

	m := l - c/2
	return color.RGBA{
		R: uint8((rf + m) * 255),
		G: uint8((gf + m) * 255),
		B: uint8((bf + m) * 255),
		A: 255,
	}
}
