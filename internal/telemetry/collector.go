package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/tochemey/goakt/v3/log"

	"github.com/particleman/go-flow-simulation/pkg/flow"
)

// Collector samples the world every windowSize ticks and appends the
// rows to stats.csv under the output directory. A nil Collector is a
// no-op, so callers can thread it through unconditionally.
type Collector struct {
	window int
	file   *os.File
	logger log.Logger

	headerWritten bool
	lastTick      int
}

// NewCollector opens the output directory and the stats file. An empty
// dir disables collection and returns nil.
func NewCollector(dir string, windowSize int, logger log.Logger) (*Collector, error) {
	if dir == "" {
		return nil, nil
	}
	if windowSize <= 0 {
		return nil, fmt.Errorf("telemetry window must be positive, got %d", windowSize)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating telemetry directory: %w", err)
	}

	path := filepath.Join(dir, "stats.csv")
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}

	logger.Infof("telemetry: writing window stats to %s", path)
	return &Collector{window: windowSize, file: f, logger: logger}, nil
}

// Observe records a row when the world crosses a window boundary.
func (c *Collector) Observe(w *flow.World) {
	if c == nil {
		return
	}
	if w.Ticks == 0 || w.Ticks%c.window != 0 || w.Ticks == c.lastTick {
		return
	}
	c.lastTick = w.Ticks
	c.write(Snapshot(w))
}

// RecordOutcome appends a final row carrying the session's terminal tag.
func (c *Collector) RecordOutcome(w *flow.World, o flow.Outcome) {
	if c == nil {
		return
	}
	row := Snapshot(w)
	row.Outcome = OutcomeLabel(o)
	c.write(row)
}

func (c *Collector) write(row WindowStats) {
	records := []WindowStats{row}
	var err error
	if !c.headerWritten {
		err = gocsv.Marshal(records, c.file)
		c.headerWritten = true
	} else {
		err = gocsv.MarshalWithoutHeaders(records, c.file)
	}
	if err != nil {
		c.logger.Errorf("telemetry: writing stats row: %v", err)
	}
}

// Close flushes and closes the stats file.
func (c *Collector) Close() error {
	if c == nil {
		return nil
	}
	return c.file.Close()
}
