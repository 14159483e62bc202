package metrics

import (
	"math"

	"github.com/san-kum/hyperion/internal/sim"
	"github.com/san-kum/hyperion/internal/swarm"
)

// Energy reports the swarm potential after the last observed round.
type Energy struct {
	name    string
	last    float64
	samples int
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(sw *swarm.Swarm, body *swarm.CentralBody, st sim.RoundStats) {
	e.last = st.Energy
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.last
}

func (e *Energy) Reset() {
	e.last = 0
	e.samples = 0
}

// EnergyDrop is the relative decrease of the potential between the first
// and the last observed round. Negative values mean the swarm tightened.
type EnergyDrop struct {
	name    string
	first   float64
	last    float64
	samples int
}

func NewEnergyDrop() *EnergyDrop {
	return &EnergyDrop{name: "energy_drop"}
}

func (e *EnergyDrop) Name() string { return e.name }

func (e *EnergyDrop) Observe(sw *swarm.Swarm, body *swarm.CentralBody, st sim.RoundStats) {
	if e.samples == 0 {
		e.first = st.Energy
	}
	e.last = st.Energy
	e.samples++
}

func (e *EnergyDrop) Value() float64 {
	if e.samples == 0 || e.first == 0 {
		return 0
	}
	return (e.first - e.last) / math.Abs(e.first)
}

func (e *EnergyDrop) Reset() {
	e.first = 0
	e.last = 0
	e.samples = 0
}
