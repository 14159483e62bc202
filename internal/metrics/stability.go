package metrics

import (
	"math"

	"github.com/san-kum/hyperion/internal/sim"
	"github.com/san-kum/hyperion/internal/swarm"
)

// MinSeparation is the closest pair distance seen over the run.
type MinSeparation struct {
	name string
	min  float64
}

func NewMinSeparation() *MinSeparation {
	return &MinSeparation{name: "min_separation", min: math.Inf(1)}
}

func (m *MinSeparation) Name() string { return m.name }

func (m *MinSeparation) Observe(sw *swarm.Swarm, body *swarm.CentralBody, st sim.RoundStats) {
	m.min = math.Min(m.min, st.MinSeparation)
}

func (m *MinSeparation) Value() float64 {
	if math.IsInf(m.min, 1) {
		return 0
	}
	return m.min
}

func (m *MinSeparation) Reset() { m.min = math.Inf(1) }

// StarClearance is the closest any panel came to the central body.
type StarClearance struct {
	name string
	min  float64
}

func NewStarClearance() *StarClearance {
	return &StarClearance{name: "star_clearance", min: math.Inf(1)}
}

func (c *StarClearance) Name() string { return c.name }

func (c *StarClearance) Observe(sw *swarm.Swarm, body *swarm.CentralBody, st sim.RoundStats) {
	c.min = math.Min(c.min, st.Clearance)
}

func (c *StarClearance) Value() float64 {
	if math.IsInf(c.min, 1) {
		return 0
	}
	return c.min
}

func (c *StarClearance) Reset() { c.min = math.Inf(1) }

// Safety is the fraction of rounds that ended with both the separation and
// the exclusion constraints satisfied.
type Safety struct {
	name          string
	minSeparation float64
	exclusion     float64
	violations    int
	samples       int
}

func NewSafety(minSeparation, exclusion float64) *Safety {
	return &Safety{
		name:          "safety",
		minSeparation: minSeparation,
		exclusion:     exclusion,
	}
}

func (s *Safety) Name() string {
	return s.name
}

func (s *Safety) Observe(sw *swarm.Swarm, body *swarm.CentralBody, st sim.RoundStats) {
	s.samples++
	if st.MinSeparation < s.minSeparation || st.Clearance < s.exclusion {
		s.violations++
	}
}

func (s *Safety) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Safety) Reset() {
	s.violations = 0
	s.samples = 0
}
