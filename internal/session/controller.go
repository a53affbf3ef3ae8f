package session

import (
	"github.com/tochemey/goakt/v3/log"

	"github.com/particleman/go-flow-simulation/pkg/flow"
)

// Phase is the session state machine:
// NotStarted -> Running -> Over -> (begin again) -> Running.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseRunning
	PhaseOver
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not started"
	case PhaseRunning:
		return "running"
	case PhaseOver:
		return "over"
	default:
		return "unknown"
	}
}

// Controller owns the phase transitions around the world pipeline. It is
// pure with respect to input: the caller hands it the already-polled begin
// edge and the frame's forcing, so the transition table is testable
// without a window.
type Controller struct {
	world   *flow.World
	phase   Phase
	outcome flow.Outcome

	// When false, begin-after-Over parks the session on the waiting
	// screen instead of starting the next run immediately.
	restartDirect bool

	logger log.Logger
}

// NewController starts in NotStarted with a frozen world.
func NewController(world *flow.World, restartDirect bool, logger log.Logger) *Controller {
	return &Controller{
		world:         world,
		restartDirect: restartDirect,
		logger:        logger,
	}
}

// Phase returns the current session phase.
func (c *Controller) Phase() Phase {
	return c.phase
}

// Outcome returns the terminal result held while the session is Over.
func (c *Controller) Outcome() flow.Outcome {
	return c.outcome
}

// World exposes the rendered aggregate.
func (c *Controller) World() *flow.World {
	return c.world
}

// Advance drives one tick of the state machine. The simulation only moves
// in Running; the other phases freeze it and wait for the begin input.
// World resets happen here, between pipeline frames, never inside one.
func (c *Controller) Advance(begin bool, frame flow.ForcingFrame) {
	switch c.phase {
	case PhaseNotStarted:
		if begin {
			c.logger.Info("session starting")
			c.phase = PhaseRunning
		}

	case PhaseRunning:
		if o := c.world.Step(frame); o.Terminal() {
			c.logger.Infof("session over: %s", o)
			c.outcome = o
			c.phase = PhaseOver
		}

	case PhaseOver:
		if begin {
			c.world.Reset()
			c.outcome = flow.Outcome{}
			if c.restartDirect {
				c.logger.Info("session restarting")
				c.phase = PhaseRunning
			} else {
				c.phase = PhaseNotStarted
			}
		}
	}
}
