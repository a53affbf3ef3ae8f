package main

import (
	"errors"
	"flag"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	golog "github.com/tochemey/goakt/v3/log"

	"github.com/particleman/go-flow-simulation/internal/session"
	"github.com/particleman/go-flow-simulation/internal/telemetry"
	"github.com/particleman/go-flow-simulation/pkg/flow"
)

const telemetryWindow = 120 // ticks per stats row, two seconds at 60 TPS

func main() {
	configFile := flag.String("config", "", "JSON config file (defaults apply when empty)")
	schemaFile := flag.String("schema", "config.schema.json", "JSON schema for -config")
	telemetryDir := flag.String("telemetry", "", "directory for telemetry CSV output (disabled when empty)")
	debug := flag.Bool("debug", false, "verbose logging")
	flag.Parse()

	level := golog.InfoLevel
	if *debug {
		level = golog.DebugLevel
	}
	logger := golog.New(level, os.Stderr)

	cfg := flow.DefaultConfig()
	if *configFile != "" {
		loaded, err := flow.LoadConfig(*configFile, *schemaFile)
		if err != nil {
			logger.Fatalf("loading config: %v", err)
		}
		cfg = loaded
	}

	collector, err := telemetry.NewCollector(*telemetryDir, telemetryWindow, logger)
	if err != nil {
		logger.Fatalf("opening telemetry output: %v", err)
	}
	defer collector.Close()

	ebiten.SetWindowSize(int(cfg.WorldWidth), int(cfg.WorldHeight))
	ebiten.SetWindowTitle("Particle Man")
	ebiten.SetTPS(60)

	game := session.NewGame(cfg, logger, collector)
	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		logger.Fatalf("game loop: %v", err)
	}
}
