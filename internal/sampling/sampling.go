// Package sampling builds initial swarms around the central body.
package sampling

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/hyperion/internal/geom"
	"github.com/san-kum/hyperion/internal/swarm"
)

var ErrInvalidSampler = errors.New("sampling: invalid sampler")

const DefaultSwarmName = "Hyperion"

type Sampler interface {
	Name() string
	Sample(rng *rand.Rand, n int, center geom.Point3) (*swarm.Swarm, error)
}

// Range is a half-open interval [Min, Max).
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

func (r Range) draw(rng *rand.Rand) float64 {
	return r.Min + (r.Max-r.Min)*rng.Float64()
}

func (r Range) validate(name string) error {
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) || r.Max < r.Min {
		return fmt.Errorf("%w: %s range [%f, %f)", ErrInvalidSampler, name, r.Min, r.Max)
	}
	return nil
}

// Attributes draws the non-positional panel state shared by every layout.
type Attributes struct {
	Temperature  Range   `yaml:"temperature" json:"temperature"`
	Energy       Range   `yaml:"energy" json:"energy"`
	Connectivity [2]int  `yaml:"connectivity" json:"connectivity"`
	Thruster     float64 `yaml:"thruster" json:"thruster"`
}

func (a Attributes) validate() error {
	if err := a.Temperature.validate("temperature"); err != nil {
		return err
	}
	if err := a.Energy.validate("energy"); err != nil {
		return err
	}
	if a.Connectivity[1] <= a.Connectivity[0] {
		return fmt.Errorf("%w: connectivity range %v", ErrInvalidSampler, a.Connectivity)
	}
	if !(a.Thruster >= 0) {
		return fmt.Errorf("%w: thruster must be non-negative, got %f", ErrInvalidSampler, a.Thruster)
	}
	return nil
}

func (a Attributes) panel(rng *rand.Rand, pos geom.Point3) swarm.Panel {
	return swarm.Panel{
		Position:     pos,
		Temperature:  a.Temperature.draw(rng),
		EnergyLevel:  a.Energy.draw(rng),
		Connectivity: a.Connectivity[0] + rng.Intn(a.Connectivity[1]-a.Connectivity[0]),
		Thruster:     a.Thruster,
	}
}

func checkCount(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: panel count must be non-negative, got %d", ErrInvalidSampler, n)
	}
	return nil
}
