package telemetry

import (
	"gonum.org/v1/gonum/stat"

	"github.com/particleman/go-flow-simulation/pkg/flow"
)

// WindowStats is one aggregated telemetry row, written every window of
// ticks. Field tags drive the CSV header.
type WindowStats struct {
	WindowEndTick int     `csv:"window_end"`
	Particles     int     `csv:"particles"`
	SpeedMean     float64 `csv:"speed_mean"`
	SpeedStd      float64 `csv:"speed_std"`
	FlowMean      float64 `csv:"flow_mean"`
	FlowStd       float64 `csv:"flow_std"`
	AgentHealth   float64 `csv:"agent_health"`
	AgentScore    float64 `csv:"agent_score"`
	Outcome       string  `csv:"outcome"`
}

// Snapshot aggregates the current world state into one stats row.
// Distributions are sampled at the window boundary, not accumulated over
// it, which is plenty for tuning the smoothing rates.
func Snapshot(w *flow.World) WindowStats {
	particles := w.Particles.Particles()
	speeds := make([]float64, len(particles))
	for i, p := range particles {
		speeds[i] = p.Vel.Len()
	}

	flows := make([]float64, w.Grid.Len())
	for i := range flows {
		flows[i] = w.Grid.Sample(i).Len()
	}

	s := WindowStats{
		WindowEndTick: w.Ticks,
		Particles:     len(particles),
		FlowMean:      stat.Mean(flows, nil),
		AgentHealth:   w.Agent.Health,
		AgentScore:    w.Agent.Score,
	}
	if len(flows) > 1 {
		s.FlowStd = stat.StdDev(flows, nil)
	}
	if len(speeds) > 0 {
		s.SpeedMean = stat.Mean(speeds, nil)
	}
	if len(speeds) > 1 {
		s.SpeedStd = stat.StdDev(speeds, nil)
	}
	return s
}

// OutcomeLabel renders an outcome for the CSV column; empty while running.
func OutcomeLabel(o flow.Outcome) string {
	switch o.Kind {
	case flow.OutcomeLose:
		return "lose"
	case flow.OutcomeVictory:
		return "victory"
	default:
		return ""
	}
}
