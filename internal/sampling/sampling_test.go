package sampling

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/hyperion/internal/geom"
)

func TestShellSample(t *testing.T) {
	center := geom.Point3{X: 3, Y: -1, Z: 2}
	s := DefaultShell()

	sw, err := s.Sample(rand.New(rand.NewSource(1)), 50, center)
	if err != nil {
		t.Fatalf("sample failed: %v", err)
	}
	if sw.Name != "Hyperion" {
		t.Errorf("name = %q", sw.Name)
	}
	if sw.Len() != 50 {
		t.Fatalf("expected 50 panels, got %d", sw.Len())
	}

	for i, p := range sw.Panels {
		if d := geom.Distance(p.Position, center); math.Abs(d-6) > 1e-9 {
			t.Errorf("panel %d at distance %f, want 6", i, d)
		}
		if p.Temperature < 1300 || p.Temperature >= 1700 {
			t.Errorf("panel %d temperature %f", i, p.Temperature)
		}
		if p.EnergyLevel < 70 || p.EnergyLevel >= 100 {
			t.Errorf("panel %d energy %f", i, p.EnergyLevel)
		}
		if p.Connectivity < 80 || p.Connectivity > 99 {
			t.Errorf("panel %d connectivity %d", i, p.Connectivity)
		}
		if p.Thruster != 1 {
			t.Errorf("panel %d thruster %f", i, p.Thruster)
		}
	}
}

func TestHexagonalSample(t *testing.T) {
	h := DefaultHexagonal()

	sw, err := h.Sample(rand.New(rand.NewSource(2)), 6, geom.Point3{})
	if err != nil {
		t.Fatalf("sample failed: %v", err)
	}

	for i, p := range sw.Panels {
		theta := 2*math.Pi*float64(i)/6 + math.Pi/6
		if math.Abs(p.Position.X-math.Cos(theta)) > 1e-12 || math.Abs(p.Position.Y-math.Sin(theta)) > 1e-12 {
			t.Errorf("panel %d at %v, want angle %f on the unit ring", i, p.Position, theta)
		}
		if p.Position.Z < 1 || p.Position.Z >= 10 {
			t.Errorf("panel %d height %f", i, p.Position.Z)
		}
		if p.Temperature < 20 || p.Temperature >= 30 {
			t.Errorf("panel %d temperature %f", i, p.Temperature)
		}
	}
}

func TestSampleDeterministic(t *testing.T) {
	samplers := []Sampler{DefaultShell(), DefaultHexagonal()}

	for _, s := range samplers {
		t.Run(s.Name(), func(t *testing.T) {
			a, err := s.Sample(rand.New(rand.NewSource(7)), 10, geom.Point3{})
			if err != nil {
				t.Fatal(err)
			}
			b, err := s.Sample(rand.New(rand.NewSource(7)), 10, geom.Point3{})
			if err != nil {
				t.Fatal(err)
			}
			for i := range a.Panels {
				if a.Panels[i] != b.Panels[i] {
					t.Errorf("panel %d differs", i)
				}
			}
		})
	}
}

func TestSampleInvalid(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	tests := []struct {
		name    string
		sampler Sampler
		n       int
	}{
		{"negative count", DefaultShell(), -1},
		{"zero radius", &Shell{Radius: 0, Attributes: DefaultShell().Attributes}, 3},
		{"inverted temperature", func() Sampler {
			s := DefaultShell()
			s.Attributes.Temperature = Range{Min: 10, Max: 5}
			return s
		}(), 3},
		{"empty connectivity", func() Sampler {
			h := DefaultHexagonal()
			h.Attributes.Connectivity = [2]int{5, 5}
			return h
		}(), 3},
		{"negative thruster", func() Sampler {
			h := DefaultHexagonal()
			h.Attributes.Thruster = -1
			return h
		}(), 3},
		{"inverted height", func() Sampler {
			h := DefaultHexagonal()
			h.Height = Range{Min: 3, Max: 1}
			return h
		}(), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.sampler.Sample(rng, tt.n, geom.Point3{})
			if !errors.Is(err, ErrInvalidSampler) {
				t.Errorf("expected ErrInvalidSampler, got %v", err)
			}
		})
	}
}

func TestSampleEmpty(t *testing.T) {
	sw, err := DefaultShell().Sample(rand.New(rand.NewSource(1)), 0, geom.Point3{})
	if err != nil {
		t.Fatal(err)
	}
	if sw.Len() != 0 {
		t.Errorf("expected empty swarm, got %d panels", sw.Len())
	}
}
