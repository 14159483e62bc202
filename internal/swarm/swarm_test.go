package swarm

import (
	"math"
	"testing"

	"github.com/san-kum/hyperion/internal/geom"
)

func line(xs ...float64) *Swarm {
	panels := make([]Panel, len(xs))
	for i, x := range xs {
		panels[i] = Panel{Position: geom.Point3{X: x}, Temperature: 500, EnergyLevel: 80, Thruster: 1}
	}
	return New("line", panels)
}

func TestNeighborCount(t *testing.T) {
	sw := line(0, 10, 19.9, 20, 40)

	if got := sw.NeighborCount(0, 20); got != 2 {
		t.Errorf("expected 2 neighbors within radius, got %d", got)
	}
	if got := sw.NeighborCount(3, 20); got != 2 {
		t.Errorf("expected 2 neighbors for panel at x=20, got %d", got)
	}
	if got := sw.NeighborCount(4, 20); got != 0 {
		t.Errorf("expected no neighbor at exactly the radius, got %d", got)
	}
}

func TestClone(t *testing.T) {
	sw := line(0, 5)
	c := sw.Clone()
	c.Panels[0].Position.X = 99

	if sw.Panels[0].Position.X == 99 {
		t.Error("Clone did not create independent copy")
	}
	if c.Name != sw.Name {
		t.Errorf("expected name %s, got %s", sw.Name, c.Name)
	}
}

func TestPositions(t *testing.T) {
	sw := line(1, 2, 3)
	buf := make([]geom.Point3, 0, 1)

	pts := sw.Positions(buf)
	if len(pts) != 3 {
		t.Fatalf("expected 3 positions, got %d", len(pts))
	}
	for i, p := range pts {
		if p.X != float64(i+1) {
			t.Errorf("position %d: expected x=%d, got %v", i, i+1, p.X)
		}
	}
}

func TestMinSeparationAndClearance(t *testing.T) {
	sw := line(6, 9, 14)

	if got := sw.MinSeparation(); got != 3 {
		t.Errorf("expected min separation 3, got %v", got)
	}
	if got := sw.Clearance(geom.Point3{}); got != 6 {
		t.Errorf("expected clearance 6, got %v", got)
	}
	if got := line(1).MinSeparation(); !math.IsInf(got, 1) {
		t.Errorf("expected +Inf for single panel, got %v", got)
	}
}

func TestThermalAccessors(t *testing.T) {
	p := Panel{Temperature: 1600}

	if !p.IsOverheating(1500) {
		t.Error("expected 1600 to be overheating at threshold 1500")
	}
	if p.ThermalStatus(1500) != Overheating {
		t.Errorf("expected overheating status, got %s", p.ThermalStatus(1500))
	}
	if p.AnnealingDenominator() != 1600 {
		t.Errorf("expected denominator 1600, got %v", p.AnnealingDenominator())
	}

	p.Temperature = 1500
	if p.IsOverheating(1500) {
		t.Error("threshold itself is not overheating")
	}
	if p.ThermalStatus(1500) != Nominal {
		t.Errorf("expected nominal status, got %s", p.ThermalStatus(1500))
	}
}

func TestCentralBodyAdvance(t *testing.T) {
	b := CentralBody{Velocity: geom.Point3{X: 1, Y: -2, Z: 0.5}}
	b.Advance(2)

	if b.Position != (geom.Point3{X: 2, Y: -4, Z: 1}) {
		t.Errorf("unexpected body position %v", b.Position)
	}
}

func TestMeanConnectivity(t *testing.T) {
	sw := line(0, 1)
	sw.Panels[0].Connectivity = 2
	sw.Panels[1].Connectivity = 4

	if got := sw.MeanConnectivity(); got != 3 {
		t.Errorf("expected 3, got %v", got)
	}
	if got := New("empty", nil).MeanConnectivity(); got != 0 {
		t.Errorf("expected 0 for empty swarm, got %v", got)
	}
}
