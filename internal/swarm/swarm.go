package swarm

import (
	"math"

	"github.com/san-kum/hyperion/internal/geom"
)

type ThermalStatus int

const (
	Nominal ThermalStatus = iota
	Overheating
	Cooling
)

func (s ThermalStatus) String() string {
	switch s {
	case Overheating:
		return "overheating"
	case Cooling:
		return "cooling"
	default:
		return "nominal"
	}
}

// Panel is one mobile agent of the swarm.
type Panel struct {
	Position     geom.Point3 `json:"position"`
	Temperature  float64     `json:"temperature"`
	EnergyLevel  float64     `json:"energy_level"`
	Connectivity int         `json:"connectivity"`
	Thruster     float64     `json:"thruster"`
}

// AnnealingDenominator is the temperature seen by the Metropolis test.
func (p *Panel) AnnealingDenominator() float64 { return p.Temperature }

// IsOverheating reports whether the hull temperature is above threshold.
func (p *Panel) IsOverheating(threshold float64) bool { return p.Temperature > threshold }

func (p *Panel) IsLowEnergy(warn float64) bool { return p.EnergyLevel < warn }

func (p *Panel) ThermalStatus(threshold float64) ThermalStatus {
	if p.IsOverheating(threshold) {
		return Overheating
	}
	return Nominal
}

// Swarm is a named, ordered collection of panels. Order fixes the
// iteration order of the driver.
type Swarm struct {
	Name   string  `json:"name"`
	Panels []Panel `json:"panels"`
}

func New(name string, panels []Panel) *Swarm {
	return &Swarm{Name: name, Panels: panels}
}

func (s *Swarm) Len() int { return len(s.Panels) }

func (s *Swarm) Clone() *Swarm {
	panels := make([]Panel, len(s.Panels))
	copy(panels, s.Panels)
	return &Swarm{Name: s.Name, Panels: panels}
}

// Positions copies the current panel positions into dst, growing it when
// needed, and returns the filled slice.
func (s *Swarm) Positions(dst []geom.Point3) []geom.Point3 {
	if cap(dst) < len(s.Panels) {
		dst = make([]geom.Point3, len(s.Panels))
	}
	dst = dst[:len(s.Panels)]
	for i := range s.Panels {
		dst[i] = s.Panels[i].Position
	}
	return dst
}

// NeighborCount is the number of other panels strictly closer than radius
// to panel i.
func (s *Swarm) NeighborCount(i int, radius float64) int {
	n := 0
	for j := range s.Panels {
		if j == i {
			continue
		}
		if geom.Distance(s.Panels[i].Position, s.Panels[j].Position) < radius {
			n++
		}
	}
	return n
}

// MinSeparation is the smallest pairwise distance, +Inf for fewer than two
// panels.
func (s *Swarm) MinSeparation() float64 {
	min := math.Inf(1)
	for i := 0; i < len(s.Panels); i++ {
		for j := i + 1; j < len(s.Panels); j++ {
			if d := geom.Distance(s.Panels[i].Position, s.Panels[j].Position); d < min {
				min = d
			}
		}
	}
	return min
}

func (s *Swarm) MaxTemperature() float64 {
	max := math.Inf(-1)
	for i := range s.Panels {
		max = math.Max(max, s.Panels[i].Temperature)
	}
	return max
}

func (s *Swarm) MeanConnectivity() float64 {
	if len(s.Panels) == 0 {
		return 0
	}
	sum := 0
	for i := range s.Panels {
		sum += s.Panels[i].Connectivity
	}
	return float64(sum) / float64(len(s.Panels))
}

// Clearance is the smallest distance from any panel to the given point.
func (s *Swarm) Clearance(center geom.Point3) float64 {
	min := math.Inf(1)
	for i := range s.Panels {
		min = math.Min(min, geom.Distance(s.Panels[i].Position, center))
	}
	return min
}

// CentralBody is the orbited body. A zero velocity keeps it static.
type CentralBody struct {
	Position geom.Point3 `json:"position"`
	Velocity geom.Point3 `json:"velocity"`
}

// Advance moves the body along its velocity for dt.
func (b *CentralBody) Advance(dt float64) {
	b.Position = b.Position.Add(b.Velocity.Scale(dt))
}
