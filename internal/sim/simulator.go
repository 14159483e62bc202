package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/hyperion/internal/anneal"
	"github.com/san-kum/hyperion/internal/energy"
	"github.com/san-kum/hyperion/internal/swarm"
)

// Simulator drives the swarm through rounds. Each round visits every panel
// once, in slice order, and hands it to the engine.
type Simulator struct {
	engine    *anneal.Engine
	metrics   []Metric
	observers []Observer
}

func New(engine *anneal.Engine) *Simulator {
	return &Simulator{
		engine:    engine,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }
func (s *Simulator) Engine() *anneal.Engine { return s.engine }

// Run mutates sw in place for cfg.Rounds rounds. A nil body is a static
// body at the origin. On cancellation the partial result is returned along
// with ctx.Err().
func (s *Simulator) Run(ctx context.Context, sw *swarm.Swarm, body *swarm.CentralBody, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if err := ValidateSwarm(sw); err != nil {
		return nil, err
	}
	if body == nil {
		body = &swarm.CentralBody{}
	}

	result := &Result{
		Seed:    cfg.Seed,
		Swarm:   sw,
		Rounds:  make([]RoundStats, 0, cfg.Rounds+1),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	result.Rounds = append(result.Rounds, Snapshot(sw, body, 0))

	for r := 1; r <= cfg.Rounds; r++ {
		select {
		case <-ctx.Done():
			s.finish(result, body)
			return result, ctx.Err()
		default:
		}

		st := s.RunRound(sw, body, r, cfg)
		result.Rounds = append(result.Rounds, st)
		result.Stats.Add(st.Stats)
		result.RoundsTaken++
	}

	s.finish(result, body)
	return result, nil
}

// RunRound advances the body, repositions every panel once, then reports
// the round to metrics and observers.
func (s *Simulator) RunRound(sw *swarm.Swarm, body *swarm.CentralBody, round int, cfg Config) RoundStats {
	if body == nil {
		body = &swarm.CentralBody{}
	}
	body.Advance(cfg.BodyDt)
	s.engine.SetRound(round)

	var stats anneal.Stats
	for i := range sw.Panels {
		stats.Add(s.engine.Reposition(sw, body, i))
	}

	st := Snapshot(sw, body, round)
	st.Stats = stats

	for _, m := range s.metrics {
		m.Observe(sw, body, st)
	}
	for _, obs := range s.observers {
		obs.OnRound(sw, body, st)
	}
	return st
}

func (s *Simulator) finish(result *Result, body *swarm.CentralBody) {
	result.Body = *body
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Rounds < 0 {
		return fmt.Errorf("%w: rounds must be non-negative, got %d", ErrInvalidConfig, cfg.Rounds)
	}
	if math.IsNaN(cfg.BodyDt) || math.IsInf(cfg.BodyDt, 0) {
		return fmt.Errorf("%w: body dt must be finite", ErrInvalidConfig)
	}
	return s.engine.Params().Validate()
}

// ValidateSwarm rejects input the energy evaluator cannot handle:
// non-finite positions and coincident panels.
func ValidateSwarm(sw *swarm.Swarm) error {
	if sw == nil {
		return fmt.Errorf("%w: nil swarm", ErrInvalidSwarm)
	}
	for i := range sw.Panels {
		p := &sw.Panels[i]
		if !p.Position.IsFinite() {
			return fmt.Errorf("%w: panel %d has non-finite position %v", ErrInvalidSwarm, i, p.Position)
		}
		if p.Thruster < 0 || math.IsNaN(p.Thruster) {
			return fmt.Errorf("%w: panel %d has invalid thruster %f", ErrInvalidSwarm, i, p.Thruster)
		}
	}
	if _, err := energy.Total(sw.Positions(nil)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSwarm, err)
	}
	return nil
}

// Snapshot summarizes the swarm without touching it. A degenerate swarm
// reports NaN energy.
func Snapshot(sw *swarm.Swarm, body *swarm.CentralBody, round int) RoundStats {
	if body == nil {
		body = &swarm.CentralBody{}
	}
	e, err := energy.Total(sw.Positions(nil))
	if err != nil {
		e = math.NaN()
	}
	return RoundStats{
		Round:            round,
		Energy:           e,
		MinSeparation:    sw.MinSeparation(),
		MaxTemperature:   sw.MaxTemperature(),
		Clearance:        sw.Clearance(body.Position),
		MeanConnectivity: sw.MeanConnectivity(),
		Body:             [3]float64{body.Position.X, body.Position.Y, body.Position.Z},
	}
}
