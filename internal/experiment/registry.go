package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/hyperion/internal/anneal"
	"github.com/san-kum/hyperion/internal/config"
	"github.com/san-kum/hyperion/internal/metrics"
	"github.com/san-kum/hyperion/internal/sampling"
	"github.com/san-kum/hyperion/internal/sim"
)

type Registry struct {
	samplers map[string]func(*config.Config) sampling.Sampler
}

func NewRegistry() *Registry {
	r := &Registry{
		samplers: make(map[string]func(*config.Config) sampling.Sampler),
	}

	r.samplers["shell"] = func(c *config.Config) sampling.Sampler {
		s := c.Shell
		return &sampling.Shell{
			Radius:     s.Radius,
			Attributes: attributes(s.Temperature, s.Energy, s.Connectivity, s.Thruster),
		}
	}
	r.samplers["hexagonal"] = func(c *config.Config) sampling.Sampler {
		h := c.Hexagonal
		return &sampling.Hexagonal{
			Radius:     h.Radius,
			Offset:     h.Offset,
			Height:     sampling.Range{Min: h.Height[0], Max: h.Height[1]},
			Attributes: attributes(h.Temperature, h.Energy, h.Connectivity, h.Thruster),
		}
	}

	return r
}

// Register adds or replaces a sampler factory.
func (r *Registry) Register(name string, fn func(*config.Config) sampling.Sampler) {
	r.samplers[name] = fn
}

func (r *Registry) GetSampler(name string, cfg *config.Config) (sampling.Sampler, error) {
	fn, ok := r.samplers[name]
	if !ok {
		return nil, fmt.Errorf("unknown sampler: %s", name)
	}
	return fn(cfg), nil
}

func (r *Registry) ListSamplers() []string {
	names := make([]string, 0, len(r.samplers))
	for name := range r.samplers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics(params anneal.Params) []sim.Metric {
	return metrics.Default(params)
}

func attributes(temp, energy [2]float64, conn [2]int, thruster float64) sampling.Attributes {
	return sampling.Attributes{
		Temperature:  sampling.Range{Min: temp[0], Max: temp[1]},
		Energy:       sampling.Range{Min: energy[0], Max: energy[1]},
		Connectivity: conn,
		Thruster:     thruster,
	}
}
