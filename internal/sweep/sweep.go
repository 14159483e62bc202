// Package sweep runs one experiment per value of a single parameter and
// aggregates the outcome over several seeds.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/hyperion/internal/config"
	"github.com/san-kum/hyperion/internal/experiment"
	"github.com/san-kum/hyperion/internal/sim"
)

var ErrInvalidPlan = errors.New("sweep: invalid plan")

// Plan describes a linear sweep of Param over [Min, Max] in Steps values.
type Plan struct {
	Name    string  `yaml:"name"`
	Preset  string  `yaml:"preset"`
	Param   string  `yaml:"param"`
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Steps   int     `yaml:"steps"`
	Seeds   int     `yaml:"seeds"`
	Seed    int64   `yaml:"seed"`
	Workers int     `yaml:"workers"`

	// Base overrides Preset when set.
	Base *config.Config `yaml:"-"`
}

type Point struct {
	Value      float64            `json:"value"`
	Runs       int                `json:"runs"`
	Energy     float64            `json:"energy"`
	EnergyStd  float64            `json:"energy_std"`
	Acceptance float64            `json:"acceptance"`
	Overheats  int                `json:"overheats"`
	Metrics    map[string]float64 `json:"metrics"`
}

func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (p *Plan) Validate() error {
	if _, ok := setters[p.Param]; !ok {
		return fmt.Errorf("%w: unknown parameter %q", ErrInvalidPlan, p.Param)
	}
	if p.Steps < 1 {
		return fmt.Errorf("%w: steps must be at least 1, got %d", ErrInvalidPlan, p.Steps)
	}
	if p.Steps > 1 && p.Max < p.Min {
		return fmt.Errorf("%w: max %f below min %f", ErrInvalidPlan, p.Max, p.Min)
	}
	if p.Seeds < 0 {
		return fmt.Errorf("%w: seeds must be non-negative, got %d", ErrInvalidPlan, p.Seeds)
	}
	if p.Base == nil && p.Preset != "" && config.GetPreset(p.Preset) == nil {
		return fmt.Errorf("%w: unknown preset %q", ErrInvalidPlan, p.Preset)
	}
	return nil
}

// Values lists the swept values, Min first. A single step sweeps Min only.
func (p *Plan) Values() []float64 {
	if p.Steps <= 1 {
		return []float64{p.Min}
	}
	step := (p.Max - p.Min) / float64(p.Steps-1)
	vals := make([]float64, p.Steps)
	for i := range vals {
		vals[i] = p.Min + float64(i)*step
	}
	vals[len(vals)-1] = p.Max
	return vals
}

func (p *Plan) base() *config.Config {
	if p.Base != nil {
		return p.Base.Clone()
	}
	if p.Preset != "" {
		return config.GetPreset(p.Preset)
	}
	return config.DefaultConfig()
}

// Run executes the plan. Values run concurrently, at most Workers at a
// time; seeds for one value run in order. Points come back in value order.
func Run(ctx context.Context, plan *Plan, registry *experiment.Registry) ([]Point, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	seeds := plan.Seeds
	if seeds == 0 {
		seeds = 1
	}
	workers := plan.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	values := plan.Values()
	points := make([]Point, len(values))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, v := range values {
		idx, value := i, v
		g.Go(func() error {
			cfg := plan.base()
			if err := Apply(cfg, plan.Param, value); err != nil {
				return err
			}

			results := make([]*sim.Result, 0, seeds)
			for s := 0; s < seeds; s++ {
				c := cfg.Clone()
				c.Seed = plan.Seed + int64(s)

				exp := experiment.New(c, registry)
				if err := exp.Setup(); err != nil {
					return fmt.Errorf("%s=%g: %w", plan.Param, value, err)
				}
				res, err := exp.Run(gctx)
				if err != nil {
					return fmt.Errorf("%s=%g: %w", plan.Param, value, err)
				}
				results = append(results, res)
			}

			points[idx] = aggregate(value, results)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}

func aggregate(value float64, results []*sim.Result) Point {
	sum := sim.Summarize(results)
	pt := Point{
		Value:      value,
		Runs:       sum.Runs,
		Energy:     sum.MeanEnergy,
		EnergyStd:  sum.StdEnergy,
		Acceptance: sum.MeanAcceptance,
		Overheats:  sum.Overheats,
		Metrics:    make(map[string]float64),
	}
	for _, r := range results {
		for k, v := range r.Metrics {
			pt.Metrics[k] += v / float64(len(results))
		}
	}
	return pt
}

// Best returns the point with the lowest (or highest) value of metric.
// "energy" and "acceptance" address the aggregate fields.
func Best(points []Point, metric string, maximize bool) (Point, bool) {
	best, found := Point{}, false
	bestVal := math.Inf(1)
	if maximize {
		bestVal = math.Inf(-1)
	}

	for _, p := range points {
		v, ok := p.lookup(metric)
		if !ok || math.IsNaN(v) {
			continue
		}
		if (maximize && v > bestVal) || (!maximize && v < bestVal) {
			best, bestVal, found = p, v, true
		}
	}
	return best, found
}

func (p Point) lookup(metric string) (float64, bool) {
	switch metric {
	case "energy":
		return p.Energy, true
	case "acceptance":
		return p.Acceptance, true
	case "overheats":
		return float64(p.Overheats), true
	}
	v, ok := p.Metrics[metric]
	return v, ok
}

var setters = map[string]func(c *config.Config, v float64){
	"trials":                 func(c *config.Config, v float64) { c.Engine.Trials = int(math.Round(v)) },
	"star_exclusion":         func(c *config.Config, v float64) { c.Engine.StarExclusion = v },
	"min_separation":         func(c *config.Config, v float64) { c.Engine.MinSeparation = v },
	"neighbor_radius":        func(c *config.Config, v float64) { c.Engine.NeighborRadius = v },
	"overheat_threshold":     func(c *config.Config, v float64) { c.Engine.OverheatThreshold = v },
	"cool_target":            func(c *config.Config, v float64) { c.Engine.CoolTarget = v },
	"overheat_decrement":     func(c *config.Config, v float64) { c.Engine.OverheatDecrement = v },
	"standoff_margin":        func(c *config.Config, v float64) { c.Engine.StandoffMargin = v },
	"cooling_step":           func(c *config.Config, v float64) { c.Engine.CoolingStep = v },
	"repair_step":            func(c *config.Config, v float64) { c.Engine.RepairStep = v },
	"max_repair_iterations":  func(c *config.Config, v float64) { c.Engine.MaxRepairIterations = int(math.Round(v)) },
	"max_cooling_iterations": func(c *config.Config, v float64) { c.Engine.MaxCoolingIterations = int(math.Round(v)) },
	"panels":                 func(c *config.Config, v float64) { c.Panels = int(math.Round(v)) },
	"rounds":                 func(c *config.Config, v float64) { c.Rounds = int(math.Round(v)) },
	"shell_radius":           func(c *config.Config, v float64) { c.Shell.Radius = v },
	"hexagonal_radius":       func(c *config.Config, v float64) { c.Hexagonal.Radius = v },
	"body_dt":                func(c *config.Config, v float64) { c.Body.Dt = v },
	"thruster":               func(c *config.Config, v float64) {
		c.Shell.Thruster = v
		c.Hexagonal.Thruster = v
	},
}

// Apply sets the named parameter on cfg. Integer fields are rounded.
func Apply(cfg *config.Config, name string, value float64) error {
	set, ok := setters[name]
	if !ok {
		return fmt.Errorf("%w: unknown parameter %q", ErrInvalidPlan, name)
	}
	set(cfg, value)
	return nil
}

// Params lists the parameters a plan can sweep.
func Params() []string {
	names := make([]string, 0, len(setters))
	for name := range setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
