package metrics

import (
	"math"

	"github.com/san-kum/hyperion/internal/anneal"
	"github.com/san-kum/hyperion/internal/sim"
	"github.com/san-kum/hyperion/internal/swarm"
)

type AcceptanceRate struct {
	name  string
	stats anneal.Stats
}

func NewAcceptanceRate() *AcceptanceRate {
	return &AcceptanceRate{name: "acceptance_rate"}
}

func (a *AcceptanceRate) Name() string { return a.name }

func (a *AcceptanceRate) Observe(sw *swarm.Swarm, body *swarm.CentralBody, st sim.RoundStats) {
	a.stats.Add(st.Stats)
}

func (a *AcceptanceRate) Value() float64 { return a.stats.AcceptanceRate() }
func (a *AcceptanceRate) Reset()         { a.stats = anneal.Stats{} }

// MeanConnectivity averages the per-round mean neighbour count.
type MeanConnectivity struct {
	name    string
	sum     float64
	samples int
}

func NewMeanConnectivity() *MeanConnectivity {
	return &MeanConnectivity{name: "mean_connectivity"}
}

func (m *MeanConnectivity) Name() string { return m.name }

func (m *MeanConnectivity) Observe(sw *swarm.Swarm, body *swarm.CentralBody, st sim.RoundStats) {
	m.sum += st.MeanConnectivity
	m.samples++
}

func (m *MeanConnectivity) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanConnectivity) Reset() {
	m.sum = 0
	m.samples = 0
}

// MaxTemperature is the hottest hull seen at the end of any round.
type MaxTemperature struct {
	name string
	max  float64
}

func NewMaxTemperature() *MaxTemperature {
	return &MaxTemperature{name: "max_temperature", max: math.Inf(-1)}
}

func (m *MaxTemperature) Name() string { return m.name }

func (m *MaxTemperature) Observe(sw *swarm.Swarm, body *swarm.CentralBody, st sim.RoundStats) {
	m.max = math.Max(m.max, st.MaxTemperature)
}

func (m *MaxTemperature) Value() float64 {
	if math.IsInf(m.max, -1) {
		return 0
	}
	return m.max
}

func (m *MaxTemperature) Reset() { m.max = math.Inf(-1) }

// Default returns the metric set attached to every run.
func Default(params anneal.Params) []sim.Metric {
	return []sim.Metric{
		NewEnergy(),
		NewEnergyDrop(),
		NewMinSeparation(),
		NewStarClearance(),
		NewSafety(params.MinSeparation, params.StarExclusion),
		NewAcceptanceRate(),
		NewMeanConnectivity(),
		NewMaxTemperature(),
	}
}
