package session

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/particleman/go-flow-simulation/pkg/flow"
	"github.com/particleman/go-flow-simulation/pkg/geometry"
)

// InputState is one frame's worth of raw input, already reduced to plain
// values. Everything downstream of PollInput is deterministic and
// testable without ebiten.
type InputState struct {
	Pointer geometry.Vector2D

	DragHeld     bool // primary button currently down
	BeginPressed bool // primary button edge, starts/restarts the session
	SpawnPressed bool // secondary button edge, burst spawn

	ToggleDebug bool // mode-toggle key edge
	Quit        bool // quit key edge

	TurnLeft   bool
	TurnRight  bool
	ThrustHeld bool
}

// PollInput reads the ebiten input devices for this frame.
func PollInput() InputState {
	mx, my := ebiten.CursorPosition()
	return InputState{
		Pointer:      geometry.Vector2D{X: float64(mx), Y: float64(my)},
		DragHeld:     ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		BeginPressed: inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		SpawnPressed: inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight),
		ToggleDebug:  inpututil.IsKeyJustPressed(ebiten.KeySpace),
		Quit:         inpututil.IsKeyJustPressed(ebiten.KeyEscape),
		TurnLeft:     ebiten.IsKeyPressed(ebiten.KeyLeft),
		TurnRight:    ebiten.IsKeyPressed(ebiten.KeyRight),
		ThrustHeld:   ebiten.IsKeyPressed(ebiten.KeyUp),
	}
}

// Forcing translates pointer and key state into the pipeline's forcing
// frame. It keeps the smoothed drag point across frames: while the
// primary button is held the point chases the pointer, and the offset
// between the two becomes the push velocity.
type Forcing struct {
	cfg     *flow.Config
	tracked geometry.Vector2D
}

// NewForcing creates the translator with its tracked point at the origin.
func NewForcing(cfg *flow.Config) *Forcing {
	return &Forcing{cfg: cfg}
}

// TrackedPoint exposes the smoothed drag point for rendering.
func (f *Forcing) TrackedPoint() geometry.Vector2D {
	return f.tracked
}

// Frame builds this tick's forcing from the polled input.
func (f *Forcing) Frame(in InputState) flow.ForcingFrame {
	var frame flow.ForcingFrame

	if in.DragHeld {
		f.tracked = f.tracked.Lerp(in.Pointer, f.cfg.TrackSmoothing)
		offset := in.Pointer.Sub(f.tracked)
		push := offset.Mul(f.cfg.DragScale)

		if f.cfg.DragSteersAgent {
			frame.Steer = true
			frame.SteerPos = f.tracked
			frame.SteerVel = push
		} else {
			frame.HasPull = true
			frame.Pull = flow.Pull{
				Center: in.Pointer,
				Target: push,
				Radius: f.cfg.PullRadius,
				Rate:   f.cfg.PullRate,
			}
		}

		if f.cfg.SpawnWhileDrag {
			// Spawned particles shoot back along the drag, against the push.
			frame.Spawns = append(frame.Spawns, flow.Spawn{
				Pos:   in.Pointer,
				Vel:   push.Mul(-1),
				Spray: f.cfg.SpawnSprayAngle,
			})
		}
	} else {
		// Snap the tracked point so the next drag starts with no offset.
		f.tracked = in.Pointer
	}

	if in.SpawnPressed {
		base := in.Pointer.Sub(f.tracked).Mul(f.cfg.DragScale)
		spray := f.cfg.SpawnSprayAngle
		if base.LenSqr() < geometry.Epsilon {
			// No drag offset to aim with: burst evenly in all directions.
			base = geometry.Vector2D{X: 1, Y: 0}
			spray = math.Pi
		}
		for i := 0; i < f.cfg.SpawnBurst; i++ {
			frame.Spawns = append(frame.Spawns, flow.Spawn{
				Pos:   in.Pointer,
				Vel:   base,
				Spray: spray,
			})
		}
	}

	if in.TurnLeft {
		frame.TurnDelta -= f.cfg.AgentTurnRate
	}
	if in.TurnRight {
		frame.TurnDelta += f.cfg.AgentTurnRate
	}
	frame.Thrust = in.ThrustHeld

	return frame
}
