package experiment

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/san-kum/hyperion/internal/anneal"
	"github.com/san-kum/hyperion/internal/config"
	"github.com/san-kum/hyperion/internal/sim"
	"github.com/san-kum/hyperion/internal/swarm"
)

// Experiment wires a config into a sampled swarm, an engine and a driver.
// Sampling and annealing draw from the same seeded source, so a config
// and seed fully determine the run.
type Experiment struct {
	cfg        *config.Config
	registry   *Registry
	observers  []anneal.Observer
	simulator  *sim.Simulator
	swarm      *swarm.Swarm
	body       *swarm.CentralBody
	randSource *rand.Rand
	round      int
}

func New(cfg *config.Config, registry *Registry) *Experiment {
	return &Experiment{
		cfg:      cfg,
		registry: registry,
	}
}

// AddObserver attaches a signal observer. It takes effect on the next Setup.
func (e *Experiment) AddObserver(o anneal.Observer) { e.observers = append(e.observers, o) }

func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	sampler, err := e.registry.GetSampler(e.cfg.Sampler, e.cfg)
	if err != nil {
		return err
	}

	e.randSource = rand.New(rand.NewSource(e.cfg.Seed))
	e.body = e.cfg.CentralBody()

	e.swarm, err = sampler.Sample(e.randSource, e.cfg.Panels, e.body.Position)
	if err != nil {
		return err
	}
	if e.cfg.Name != "" {
		e.swarm.Name = e.cfg.Name
	}
	if err := sim.ValidateSwarm(e.swarm); err != nil {
		return err
	}

	params := e.cfg.Params()
	engine := anneal.New(params, e.randSource)
	for _, o := range e.observers {
		engine.AddObserver(o)
	}

	e.simulator = sim.New(engine)
	for _, m := range e.registry.DefaultMetrics(params) {
		e.simulator.AddMetric(m)
	}
	e.round = 0
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.swarm, e.body, e.cfg.SimConfig())
}

// Step runs one more round. Used by step-driven callers such as the live
// view.
func (e *Experiment) Step() (sim.RoundStats, error) {
	if e.simulator == nil {
		return sim.RoundStats{}, fmt.Errorf("experiment not setup")
	}
	e.round++
	return e.simulator.RunRound(e.swarm, e.body, e.round, e.cfg.SimConfig()), nil
}

// Snapshot reports the current swarm without advancing it.
func (e *Experiment) Snapshot() sim.RoundStats {
	return sim.Snapshot(e.swarm, e.body, e.round)
}

func (e *Experiment) Round() int                   { return e.round }
func (e *Experiment) Config() *config.Config       { return e.cfg }
func (e *Experiment) Swarm() *swarm.Swarm          { return e.swarm }
func (e *Experiment) Body() *swarm.CentralBody     { return e.body }
func (e *Experiment) GetSimulator() *sim.Simulator { return e.simulator }

// Factory builds independent experiments for an ensemble; only the seed
// differs between runs.
func Factory(cfg *config.Config, registry *Registry, observers ...anneal.Observer) sim.Factory {
	return func(seed int64) (*sim.Simulator, *swarm.Swarm, *swarm.CentralBody, error) {
		c := cfg.Clone()
		c.Seed = seed
		exp := New(c, registry)
		for _, o := range observers {
			exp.AddObserver(o)
		}
		if err := exp.Setup(); err != nil {
			return nil, nil, nil, err
		}
		return exp.simulator, exp.swarm, exp.body, nil
	}
}
