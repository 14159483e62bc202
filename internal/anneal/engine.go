// Package anneal implements the per-panel repositioning engine: a
// Metropolis annealing step with star exclusion, bounded separation repair
// and thermal-overload recovery.
package anneal

import (
	"math"

	"github.com/san-kum/hyperion/internal/energy"
	"github.com/san-kum/hyperion/internal/geom"
	"github.com/san-kum/hyperion/internal/swarm"
)

// Rand is the random source threaded through the engine. *rand.Rand
// satisfies it.
type Rand interface {
	Float64() float64
}

type Result int

const (
	Accepted Result = iota
	RejectedStar
	RejectedRepair
	RejectedMetropolis
	RejectedDegenerate
)

func (r Result) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case RejectedStar:
		return "rejected_star"
	case RejectedRepair:
		return "rejected_repair"
	case RejectedMetropolis:
		return "rejected_metropolis"
	case RejectedDegenerate:
		return "rejected_degenerate"
	default:
		return "unknown"
	}
}

// Outcome describes a single trial.
type Outcome struct {
	Result    Result
	Candidate geom.Point3
	DeltaE    float64
	Repairs   int
	Recovery  *Recovery
}

// Recovery describes one run of the overheat procedure.
type Recovery struct {
	From       geom.Point3
	Excursion  geom.Point3
	To         geom.Point3
	StartTemp  float64
	FinalTemp  float64
	Iterations int

	// Exhausted is set when the cooling cap was hit and the temperature
	// was clamped to the cool target.
	Exhausted bool

	// Fallback is set when neither stand-off spot was safe and the panel
	// stayed at its pre-recovery position.
	Fallback bool

	// Transitions lists the thermal states the panel passed through.
	Transitions []swarm.ThermalStatus
}

type Stats struct {
	Trials               int `json:"trials"`
	Accepted             int `json:"accepted"`
	StarRejections       int `json:"star_rejections"`
	RepairRejections     int `json:"repair_rejections"`
	MetropolisRejections int `json:"metropolis_rejections"`
	DegenerateRejections int `json:"degenerate_rejections"`
	Repairs              int `json:"repairs"`
	Overheats            int `json:"overheats"`
}

func (s *Stats) Add(o Stats) {
	s.Trials += o.Trials
	s.Accepted += o.Accepted
	s.StarRejections += o.StarRejections
	s.RepairRejections += o.RepairRejections
	s.MetropolisRejections += o.MetropolisRejections
	s.DegenerateRejections += o.DegenerateRejections
	s.Repairs += o.Repairs
	s.Overheats += o.Overheats
}

func (s Stats) AcceptanceRate() float64 {
	if s.Trials == 0 {
		return 0
	}
	return float64(s.Accepted) / float64(s.Trials)
}

func (s *Stats) record(o Outcome) {
	s.Trials++
	switch o.Result {
	case Accepted:
		s.Accepted++
	case RejectedStar:
		s.StarRejections++
	case RejectedRepair:
		s.RepairRejections++
	case RejectedMetropolis:
		s.MetropolisRejections++
	case RejectedDegenerate:
		s.DegenerateRejections++
	}
	s.Repairs += o.Repairs
	if o.Recovery != nil {
		s.Overheats++
	}
}

// Accept is the Metropolis criterion. Non-positive dE is always accepted;
// otherwise u must not exceed exp(-dE/temperature). A non-positive
// temperature rejects every positive dE.
func Accept(dE, temperature, u float64) bool {
	if dE <= 0 {
		return true
	}
	if !(temperature > 0) {
		return false
	}
	return u <= math.Exp(-dE/temperature)
}

type Engine struct {
	params    Params
	rng       Rand
	observers []Observer
	round     int
	trial     int

	// scratch snapshots for the energy evaluator
	before []geom.Point3
	after  []geom.Point3
}

func New(params Params, rng Rand) *Engine {
	return &Engine{
		params:    params,
		rng:       rng,
		observers: make([]Observer, 0),
	}
}

func (e *Engine) AddObserver(o Observer) { e.observers = append(e.observers, o) }
func (e *Engine) Params() Params         { return e.params }

// SetRound tags subsequent signals with the given round.
func (e *Engine) SetRound(round int) { e.round = round }

// Reposition runs the full per-panel procedure for panel i: connectivity
// refresh, low-energy check, then Trials trials.
func (e *Engine) Reposition(sw *swarm.Swarm, body *swarm.CentralBody, i int) Stats {
	p := &sw.Panels[i]
	p.Connectivity = sw.NeighborCount(i, e.params.NeighborRadius)
	if p.IsLowEnergy(e.params.EnergyWarn) {
		e.emit(SignalLowEnergy, i, p.Position, p.EnergyLevel)
	}

	var st Stats
	for k := 0; k < e.params.Trials; k++ {
		e.trial = k
		st.record(e.Trial(sw, body, i))
	}
	e.trial = 0
	return st
}

// Trial proposes one candidate move for panel i, commits it only if it
// passes every check, then runs the overheat procedure when needed.
func (e *Engine) Trial(sw *swarm.Swarm, body *swarm.CentralBody, i int) Outcome {
	out := e.move(sw, center(body), i)
	if sw.Panels[i].IsOverheating(e.params.OverheatThreshold) {
		rec := e.Recover(sw, body, i)
		out.Recovery = &rec
	}
	return out
}

func (e *Engine) move(sw *swarm.Swarm, star geom.Point3, i int) Outcome {
	p := &sw.Panels[i]
	candidate := p.Position.Add(e.propose(p.Thruster))
	out := Outcome{Candidate: candidate}

	if d := geom.Distance(candidate, star); d < e.params.StarExclusion {
		e.emit(SignalStarProximity, i, candidate, d)
		out.Result = RejectedStar
		return out
	}

	candidate, repairs, ok := e.repair(sw, i, candidate)
	out.Candidate, out.Repairs = candidate, repairs
	if !ok {
		e.emit(SignalRepairExhausted, i, candidate, float64(repairs))
		out.Result = RejectedRepair
		return out
	}
	if repairs > 0 {
		if d := geom.Distance(candidate, star); d < e.params.StarExclusion {
			e.emit(SignalStarProximity, i, candidate, d)
			out.Result = RejectedStar
			return out
		}
	}

	dE, err := e.deltaEnergy(sw, i, candidate)
	if err != nil {
		e.emit(SignalDegenerate, i, candidate, 0)
		out.Result = RejectedDegenerate
		return out
	}
	out.DeltaE = dE

	if dE > 0 && !Accept(dE, p.AnnealingDenominator(), e.rng.Float64()) {
		out.Result = RejectedMetropolis
		return out
	}

	p.Position = candidate
	out.Result = Accepted
	return out
}

func (e *Engine) propose(thruster float64) geom.Point3 {
	dx := (2*e.rng.Float64() - 1) * thruster
	dy := (2*e.rng.Float64() - 1) * thruster
	dz := (2*e.rng.Float64() - 1) * thruster
	return geom.Point3{X: dx, Y: dy, Z: dz}
}

// repair pushes candidate away from the closest panel that violates the
// minimum separation, at most MaxRepairIterations times. It reports false
// when a violation remains or the push direction is degenerate.
func (e *Engine) repair(sw *swarm.Swarm, i int, candidate geom.Point3) (geom.Point3, int, bool) {
	warned := false
	for pushes := 0; ; pushes++ {
		other, d, found := e.closestViolation(sw, i, candidate)
		if !found {
			return candidate, pushes, true
		}
		if !warned {
			e.emit(SignalCollisionRisk, i, candidate, d)
			warned = true
		}
		if pushes >= e.params.MaxRepairIterations {
			return candidate, pushes, false
		}
		dir := candidate.Sub(other).Normalize()
		if dir == (geom.Point3{}) {
			return candidate, pushes, false
		}
		candidate = candidate.Add(dir.Scale(e.params.RepairStep))
	}
}

func (e *Engine) closestViolation(sw *swarm.Swarm, i int, candidate geom.Point3) (geom.Point3, float64, bool) {
	var (
		closest geom.Point3
		best    = math.Inf(1)
		found   bool
	)
	for j := range sw.Panels {
		if j == i {
			continue
		}
		d := geom.Distance(candidate, sw.Panels[j].Position)
		if d < e.params.MinSeparation && d < best {
			closest, best, found = sw.Panels[j].Position, d, true
		}
	}
	return closest, best, found
}

// deltaEnergy evaluates the live swarm before and after placing panel i at
// candidate. Both snapshots come from the same collection, so they differ
// only by this move.
func (e *Engine) deltaEnergy(sw *swarm.Swarm, i int, candidate geom.Point3) (float64, error) {
	e.before = sw.Positions(e.before)
	before, err := energy.Total(e.before)
	if err != nil {
		return 0, err
	}

	e.after = append(e.after[:0], e.before...)
	e.after[i] = candidate
	after, err := energy.Total(e.after)
	if err != nil {
		return 0, err
	}
	return after - before, nil
}

// Recover runs the overheat procedure on panel i: cool down along a fixed
// excursion until the cool target or the iteration cap, then settle at a
// stand-off spot offset from the pre-recovery position.
func (e *Engine) Recover(sw *swarm.Swarm, body *swarm.CentralBody, i int) Recovery {
	p := &sw.Panels[i]
	rec := Recovery{From: p.Position, StartTemp: p.Temperature}
	rec.enter(swarm.Overheating)
	e.emit(SignalOverheatStart, i, p.Position, p.Temperature)

	rec.enter(swarm.Cooling)
	e.emit(SignalCooling, i, p.Position, p.Temperature)
	step := geom.Point3{}.Offset(e.params.CoolingStep)
	for p.Temperature > e.params.CoolTarget {
		if rec.Iterations >= e.params.MaxCoolingIterations {
			rec.Exhausted = true
			p.Temperature = e.params.CoolTarget
			break
		}
		p.Position = p.Position.Add(step)
		p.Temperature -= e.params.OverheatDecrement
		rec.Iterations++
	}
	rec.Excursion = p.Position

	p.Position, rec.Fallback = e.standoff(sw, center(body), i, rec.From)
	rec.To = p.Position
	rec.FinalTemp = p.Temperature

	rec.enter(p.ThermalStatus(e.params.OverheatThreshold))
	e.emit(SignalOverheatResolved, i, p.Position, p.Temperature)
	return rec
}

func (r *Recovery) enter(s swarm.ThermalStatus) { r.Transitions = append(r.Transitions, s) }

func (e *Engine) standoff(sw *swarm.Swarm, star geom.Point3, i int, from geom.Point3) (geom.Point3, bool) {
	m := e.params.StandoffMargin
	for _, c := range [2]geom.Point3{from.Offset(-m), from.Offset(m)} {
		if e.safe(sw, star, i, c) {
			return c, false
		}
	}
	return from, true
}

func (e *Engine) safe(sw *swarm.Swarm, star geom.Point3, i int, pos geom.Point3) bool {
	if geom.Distance(pos, star) < e.params.StarExclusion {
		return false
	}
	_, _, violated := e.closestViolation(sw, i, pos)
	return !violated
}

func (e *Engine) emit(kind SignalKind, panel int, pos geom.Point3, value float64) {
	if len(e.observers) == 0 {
		return
	}
	s := Signal{Kind: kind, Round: e.round, Panel: panel, Trial: e.trial, Position: pos, Value: value}
	for _, o := range e.observers {
		o.OnSignal(s)
	}
}

func center(body *swarm.CentralBody) geom.Point3 {
	if body == nil {
		return geom.Point3{}
	}
	return body.Position
}
