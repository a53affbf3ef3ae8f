package session

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/tochemey/goakt/v3/log"

	"github.com/particleman/go-flow-simulation/internal/telemetry"
	"github.com/particleman/go-flow-simulation/pkg/flow"
	"github.com/particleman/go-flow-simulation/pkg/ui"
)

// Game wires input, the session controller, the renderer and telemetry
// into ebiten's Update/Draw/Layout loop. The frame pump and vsync wait
// belong to ebiten; one Update call is one simulation tick.
type Game struct {
	cfg       *flow.Config
	ctrl      *Controller
	forcing   *Forcing
	renderer  *Renderer
	collector *telemetry.Collector
	logger    log.Logger

	// Debug display mode, toggled by the mode key. Render-only.
	debugMode   bool
	panel       *ui.Panel
	sGrid       *ui.Slider
	sParticle   *ui.Slider
	sPull       *ui.Slider
	cbVectors   *ui.Checkbox
	cbGridLines *ui.Checkbox

	// Rolling frame timing (exponential moving average, ms).
	updateAvg float64
	drawAvg   float64
}

// NewGame builds the interactive session around a fresh world.
func NewGame(cfg *flow.Config, logger log.Logger, collector *telemetry.Collector) *Game {
	world := flow.NewWorld(cfg, logger)

	panel := ui.NewPanel(10, 10, 240)
	sGrid := panel.AddSlider("Grid smoothing", 0.01, 1, cfg.GridSmoothing)
	sParticle := panel.AddSlider("Particle smoothing", 0.005, 0.5, cfg.ParticleSmoothing)
	sPull := panel.AddSlider("Pull rate", 0.005, 0.5, cfg.PullRate)
	cbVectors := panel.AddCheckbox("Flow vectors", true)
	cbGridLines := panel.AddCheckbox("Grid lines", true)

	// restartDirect=false: Over returns to the waiting screen first.
	ctrl := NewController(world, false, logger)

	return &Game{
		cfg:         cfg,
		ctrl:        ctrl,
		forcing:     NewForcing(cfg),
		renderer:    NewRenderer(cfg),
		collector:   collector,
		logger:      logger,
		panel:       panel,
		sGrid:       sGrid,
		sParticle:   sParticle,
		sPull:       sPull,
		cbVectors:   cbVectors,
		cbGridLines: cbGridLines,
	}
}

// Update runs one tick: poll input, translate it to forcing, advance the
// session state machine, record telemetry.
func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	in := PollInput()

	if in.Quit {
		g.logger.Info("quit requested")
		return ebiten.Termination
	}
	if in.ToggleDebug {
		g.debugMode = !g.debugMode
	}

	begin := in.BeginPressed
	if g.debugMode {
		g.panel.Update()
		g.applyTuning()
		// Clicks on the panel tune values; they must not drag the world.
		if g.panel.Contains(in.Pointer.X, in.Pointer.Y) {
			in.DragHeld = false
			in.SpawnPressed = false
			begin = false
		}
	}

	before := g.ctrl.Phase()
	g.ctrl.Advance(begin, g.forcing.Frame(in))

	if g.ctrl.Phase() == PhaseRunning {
		g.collector.Observe(g.ctrl.World())
	}
	if before == PhaseRunning && g.ctrl.Phase() == PhaseOver {
		g.collector.RecordOutcome(g.ctrl.World(), g.ctrl.Outcome())
	}

	return nil
}

// applyTuning pushes the live slider values into the running world and
// back into the config so a session reset keeps them.
func (g *Game) applyTuning() {
	w := g.ctrl.World()
	g.cfg.GridSmoothing = g.sGrid.Value
	g.cfg.ParticleSmoothing = g.sParticle.Value
	g.cfg.PullRate = g.sPull.Value
	w.Grid.SetSmoothing(g.sGrid.Value)
	w.Particles.SetSmoothing(g.sParticle.Value)
}

// Draw renders the current phase.
func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	screen.Fill(color.Black)

	switch g.ctrl.Phase() {
	case PhaseNotStarted:
		g.renderer.DrawCenteredPrompt(screen, "Click to start")

	case PhaseRunning:
		g.drawRunning(screen)

	case PhaseOver:
		g.drawRunning(screen)
		g.renderer.DrawCenteredPrompt(screen,
			fmt.Sprintf("%s - click to play again", g.ctrl.Outcome()))
	}
}

func (g *Game) drawRunning(screen *ebiten.Image) {
	w := g.ctrl.World()

	if g.debugMode {
		if g.cbGridLines.Value {
			g.renderer.DrawGridLines(screen, w.Grid)
		}
		if g.cbVectors.Value {
			g.renderer.DrawFlowVectors(screen, w.Grid)
		}
	}

	g.renderer.DrawWorld(screen, w)

	if g.debugMode {
		g.panel.Draw(screen)
		msg := fmt.Sprintf("FPS: %.1f TPS: %.1f\nUpdate: %.2fms Draw: %.2fms\nParticles: %d Health: %.2f Score: %.0f",
			ebiten.ActualFPS(), ebiten.ActualTPS(),
			g.updateAvg, g.drawAvg,
			w.Particles.Len(), w.Agent.Health, w.Agent.Score)
		ebitenutil.DebugPrintAt(screen, msg, int(g.cfg.WorldWidth)-240, 10)
	}
}

// Layout reports the fixed logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return int(g.cfg.WorldWidth), int(g.cfg.WorldHeight)
}
