package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/hyperion/internal/anneal"
	"github.com/san-kum/hyperion/internal/geom"
	"github.com/san-kum/hyperion/internal/sim"
	"github.com/san-kum/hyperion/internal/swarm"
)

var ErrInvalidConfig = errors.New("config: invalid config")

const (
	DefaultName    = "Hyperion"
	DefaultSampler = "shell"
	DefaultPanels  = 10
	DefaultRounds  = sim.DefaultRounds
)

//go:embed schema.json
var schemaSource string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

type Config struct {
	Name      string          `yaml:"name"`
	Sampler   string          `yaml:"sampler"`
	Panels    int             `yaml:"panels"`
	Rounds    int             `yaml:"rounds"`
	Seed      int64           `yaml:"seed"`
	Body      BodyConfig      `yaml:"body"`
	Engine    EngineConfig    `yaml:"engine"`
	Shell     ShellConfig     `yaml:"shell"`
	Hexagonal HexagonalConfig `yaml:"hexagonal"`
}

type BodyConfig struct {
	Position [3]float64 `yaml:"position,flow"`
	Velocity [3]float64 `yaml:"velocity,flow"`
	Dt       float64    `yaml:"dt"`
}

type EngineConfig struct {
	Trials               int     `yaml:"trials"`
	StarExclusion        float64 `yaml:"star_exclusion"`
	MinSeparation        float64 `yaml:"min_separation"`
	NeighborRadius       float64 `yaml:"neighbor_radius"`
	EnergyWarn           float64 `yaml:"energy_warn"`
	OverheatThreshold    float64 `yaml:"overheat_threshold"`
	CoolTarget           float64 `yaml:"cool_target"`
	OverheatDecrement    float64 `yaml:"overheat_decrement"`
	StandoffMargin       float64 `yaml:"standoff_margin"`
	CoolingStep          float64 `yaml:"cooling_step"`
	RepairStep           float64 `yaml:"repair_step"`
	MaxRepairIterations  int     `yaml:"max_repair_iterations"`
	MaxCoolingIterations int     `yaml:"max_cooling_iterations"`
}

type ShellConfig struct {
	Radius       float64    `yaml:"radius"`
	Temperature  [2]float64 `yaml:"temperature,flow"`
	Energy       [2]float64 `yaml:"energy,flow"`
	Connectivity [2]int     `yaml:"connectivity,flow"`
	Thruster     float64    `yaml:"thruster"`
}

type HexagonalConfig struct {
	Radius       float64    `yaml:"radius"`
	Offset       float64    `yaml:"offset"`
	Height       [2]float64 `yaml:"height,flow"`
	Temperature  [2]float64 `yaml:"temperature,flow"`
	Energy       [2]float64 `yaml:"energy,flow"`
	Connectivity [2]int     `yaml:"connectivity,flow"`
	Thruster     float64    `yaml:"thruster"`
}

func DefaultConfig() *Config {
	p := anneal.DefaultParams()
	return &Config{
		Name:    DefaultName,
		Sampler: DefaultSampler,
		Panels:  DefaultPanels,
		Rounds:  DefaultRounds,
		Engine: EngineConfig{
			Trials:               p.Trials,
			StarExclusion:        p.StarExclusion,
			MinSeparation:        p.MinSeparation,
			NeighborRadius:       p.NeighborRadius,
			EnergyWarn:           p.EnergyWarn,
			OverheatThreshold:    p.OverheatThreshold,
			CoolTarget:           p.CoolTarget,
			OverheatDecrement:    p.OverheatDecrement,
			StandoffMargin:       p.StandoffMargin,
			CoolingStep:          p.CoolingStep,
			RepairStep:           p.RepairStep,
			MaxRepairIterations:  p.MaxRepairIterations,
			MaxCoolingIterations: p.MaxCoolingIterations,
		},
		Shell: ShellConfig{
			Radius:       6,
			Temperature:  [2]float64{1300, 1700},
			Energy:       [2]float64{70, 100},
			Connectivity: [2]int{80, 100},
			Thruster:     1,
		},
		Hexagonal: HexagonalConfig{
			Radius:       1,
			Offset:       math.Pi / 6,
			Height:       [2]float64{1, 10},
			Temperature:  [2]float64{20, 30},
			Energy:       [2]float64{70, 100},
			Connectivity: [2]int{80, 100},
			Thruster:     1,
		},
	}
}

// Clone returns a deep copy; every field is a value type.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

func (c *Config) Params() anneal.Params {
	e := c.Engine
	return anneal.Params{
		Trials:               e.Trials,
		StarExclusion:        e.StarExclusion,
		MinSeparation:        e.MinSeparation,
		NeighborRadius:       e.NeighborRadius,
		EnergyWarn:           e.EnergyWarn,
		OverheatThreshold:    e.OverheatThreshold,
		CoolTarget:           e.CoolTarget,
		OverheatDecrement:    e.OverheatDecrement,
		StandoffMargin:       e.StandoffMargin,
		CoolingStep:          e.CoolingStep,
		RepairStep:           e.RepairStep,
		MaxRepairIterations:  e.MaxRepairIterations,
		MaxCoolingIterations: e.MaxCoolingIterations,
	}
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{Rounds: c.Rounds, BodyDt: c.Body.Dt, Seed: c.Seed}
}

func (c *Config) CentralBody() *swarm.CentralBody {
	return &swarm.CentralBody{
		Position: vec(c.Body.Position),
		Velocity: vec(c.Body.Velocity),
	}
}

// Validate checks the decoded values that the schema cannot express.
func (c *Config) Validate() error {
	if c.Sampler != "shell" && c.Sampler != "hexagonal" {
		return fmt.Errorf("%w: unknown sampler %q", ErrInvalidConfig, c.Sampler)
	}
	if c.Panels < 0 {
		return fmt.Errorf("%w: panels must be non-negative, got %d", ErrInvalidConfig, c.Panels)
	}
	if c.Rounds < 0 {
		return fmt.Errorf("%w: rounds must be non-negative, got %d", ErrInvalidConfig, c.Rounds)
	}
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func vec(v [3]float64) geom.Point3 {
	return geom.Point3{X: v[0], Y: v[1], Z: v[2]}
}

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("hyperion.schema.json", schemaSource)
	})
	return schema, schemaErr
}

// ValidateDocument checks a raw YAML or JSON document against the schema.
func ValidateDocument(data []byte) error {
	sch, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}

	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	if doc == nil {
		return nil
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to normalize config: %w", err)
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("failed to normalize config: %w", err)
	}

	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Parse validates data against the schema, then decodes it over the
// defaults.
func Parse(data []byte) (*Config, error) {
	if err := ValidateDocument(data); err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
