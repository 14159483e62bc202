package sampling

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/hyperion/internal/geom"
	"github.com/san-kum/hyperion/internal/swarm"
)

const (
	DefaultOrbitDistance = 2.0
	DefaultStarDiameter  = 4.0
)

// Shell scatters panels on a sphere around the body. Hot hulls by default,
// so the overheat procedure fires early.
type Shell struct {
	Radius     float64    `yaml:"radius" json:"radius"`
	Attributes Attributes `yaml:",inline" json:"attributes"`
}

func DefaultShell() *Shell {
	return &Shell{
		Radius: DefaultOrbitDistance + DefaultStarDiameter,
		Attributes: Attributes{
			Temperature:  Range{Min: 1300, Max: 1700},
			Energy:       Range{Min: 70, Max: 100},
			Connectivity: [2]int{80, 100},
			Thruster:     1,
		},
	}
}

func (s *Shell) Name() string { return "shell" }

func (s *Shell) Sample(rng *rand.Rand, n int, center geom.Point3) (*swarm.Swarm, error) {
	if err := checkCount(n); err != nil {
		return nil, err
	}
	if !(s.Radius > 0) {
		return nil, fmt.Errorf("%w: shell radius must be positive, got %f", ErrInvalidSampler, s.Radius)
	}
	if err := s.Attributes.validate(); err != nil {
		return nil, err
	}

	panels := make([]swarm.Panel, n)
	for i := range panels {
		theta := 2 * math.Pi * rng.Float64()
		phi := math.Pi * rng.Float64()
		pos := geom.Point3{
			X: s.Radius * math.Sin(theta) * math.Cos(phi),
			Y: s.Radius * math.Sin(theta) * math.Sin(phi),
			Z: s.Radius * math.Cos(theta),
		}
		panels[i] = s.Attributes.panel(rng, center.Add(pos))
	}
	return swarm.New(DefaultSwarmName, panels), nil
}
