package sampling

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/hyperion/internal/geom"
	"github.com/san-kum/hyperion/internal/swarm"
)

// Hexagonal places panels evenly on a ring rotated by Offset, each lifted
// to a random height. Cool hulls by default.
type Hexagonal struct {
	Radius     float64    `yaml:"radius" json:"radius"`
	Offset     float64    `yaml:"offset" json:"offset"`
	Height     Range      `yaml:"height" json:"height"`
	Attributes Attributes `yaml:",inline" json:"attributes"`
}

func DefaultHexagonal() *Hexagonal {
	return &Hexagonal{
		Radius: 1,
		Offset: math.Pi / 6,
		Height: Range{Min: 1, Max: 10},
		Attributes: Attributes{
			Temperature:  Range{Min: 20, Max: 30},
			Energy:       Range{Min: 70, Max: 100},
			Connectivity: [2]int{80, 100},
			Thruster:     1,
		},
	}
}

func (h *Hexagonal) Name() string { return "hexagonal" }

func (h *Hexagonal) Sample(rng *rand.Rand, n int, center geom.Point3) (*swarm.Swarm, error) {
	if err := checkCount(n); err != nil {
		return nil, err
	}
	if !(h.Radius > 0) {
		return nil, fmt.Errorf("%w: ring radius must be positive, got %f", ErrInvalidSampler, h.Radius)
	}
	if err := h.Height.validate("height"); err != nil {
		return nil, err
	}
	if err := h.Attributes.validate(); err != nil {
		return nil, err
	}

	panels := make([]swarm.Panel, n)
	for i := range panels {
		theta := 2*math.Pi*float64(i)/float64(n) + h.Offset
		pos := geom.Point3{
			X: h.Radius * math.Cos(theta),
			Y: h.Radius * math.Sin(theta),
			Z: h.Height.draw(rng),
		}
		panels[i] = h.Attributes.panel(rng, center.Add(pos))
	}
	return swarm.New(DefaultSwarmName, panels), nil
}
