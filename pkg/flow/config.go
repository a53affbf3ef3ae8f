package flow

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Config gathers every tunable of the simulation. The smoothing rates and
// interaction knobs that varied across the project's iterations are all
// explicit fields here instead of hardcoded constants.
type Config struct {
	// World Dimensions (pixels)
	WorldWidth  float64 `json:"worldWidth"`
	WorldHeight float64 `json:"worldHeight"`

	// Flow grid resolution
	CellsX int `json:"cellsX"`
	CellsY int `json:"cellsY"`

	// Population
	NumParticlesAtStart int `json:"numParticlesAtStart"`

	// Smoothing rates (exponential moving averages)
	GridSmoothing     float64 `json:"gridSmoothing"`     // cell flow toward frame average
	ParticleSmoothing float64 `json:"particleSmoothing"` // particle velocity toward cell flow
	ThrustSmoothing   float64 `json:"thrustSmoothing"`   // agent velocity toward thrust vector
	TrackSmoothing    float64 `json:"trackSmoothing"`    // drag point toward pointer

	// Interaction
	PullRate        float64 `json:"pullRate"`        // external pull blend rate
	PullRadius      float64 `json:"pullRadius"`      // <= 0 disables radius filtering
	DragScale       float64 `json:"dragScale"`       // pointer offset to velocity
	DragSteersAgent bool    `json:"dragSteersAgent"` // drag steers the body instead of spraying particles
	SpawnWhileDrag  bool    `json:"spawnWhileDrag"`  // spawn one particle per held frame
	SpawnSprayAngle float64 `json:"spawnSprayAngle"` // max random jitter (radians) on spawns
	SpawnBurst      int     `json:"spawnBurst"`      // particles per secondary press

	// Agent
	AgentCoupled  bool    `json:"agentCoupled"` // agent feeds and reads the grid
	AgentTurnRate float64 `json:"agentTurnRate"`

	// Session terminal conditions
	HealthDrainRate float64 `json:"healthDrainRate"` // per tick fighting the flow
	HealthRegenRate float64 `json:"healthRegenRate"` // per tick riding the flow
	VictoryScore    float64 `json:"victoryScore"`

	// Determinism
	Seed int64 `json:"seed"` // 0 means seed from the system clock
}

// DefaultConfig mirrors the constants of the first interactive build:
// a 640x360 domain cut into 20x12 cells, 8 particles to start.
func DefaultConfig() *Config {
	return &Config{
		WorldWidth:          640,
		WorldHeight:         360,
		CellsX:              20,
		CellsY:              12,
		NumParticlesAtStart: 8,
		GridSmoothing:       0.1,
		ParticleSmoothing:   0.03,
		ThrustSmoothing:     0.1,
		TrackSmoothing:      0.3,
		PullRate:            0.02,
		PullRadius:          0, // unfiltered, every particle feels the drag
		DragScale:           0.2,
		DragSteersAgent:     true,
		SpawnWhileDrag:      true,
		SpawnSprayAngle:     0.4,
		SpawnBurst:          12,
		AgentCoupled:        false,
		AgentTurnRate:       0.08,
		HealthDrainRate:     0.002,
		HealthRegenRate:     0.001,
		VictoryScore:        3000,
	}
}

// CellWidth returns the horizontal extent of one grid cell.
func (c *Config) CellWidth() float64 {
	return c.WorldWidth / float64(c.CellsX)
}

// CellHeight returns the vertical extent of one grid cell.
func (c *Config) CellHeight() float64 {
	return c.WorldHeight / float64(c.CellsY)
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.WorldWidth <= 0 || c.WorldHeight <= 0 {
		return fmt.Errorf("world dimensions must be positive, got %gx%g", c.WorldWidth, c.WorldHeight)
	}
	if c.CellsX <= 0 || c.CellsY <= 0 {
		return fmt.Errorf("grid resolution must be positive, got %dx%d", c.CellsX, c.CellsY)
	}
	if c.NumParticlesAtStart < 0 {
		return fmt.Errorf("initial population cannot be negative, got %d", c.NumParticlesAtStart)
	}
	for _, rate := range []struct {
		name  string
		value float64
	}{
		{"gridSmoothing", c.GridSmoothing},
		{"particleSmoothing", c.ParticleSmoothing},
		{"thrustSmoothing", c.ThrustSmoothing},
		{"trackSmoothing", c.TrackSmoothing},
		{"pullRate", c.PullRate},
	} {
		if rate.value < 0 || rate.value > 1 {
			return fmt.Errorf("%s must be in [0,1], got %g", rate.name, rate.value)
		}
	}
	return nil
}

// LoadConfig loads configuration from a JSON file and validates it against the schema.
func LoadConfig(configFile string, schemaFile string) (*Config, error) {
	sch, err := jsonschema.Compile(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}

	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
