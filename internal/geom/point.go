package geom

import (
	"fmt"
	"math"
)

// Point3 is a position or displacement in 3D space.
type Point3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

func (p Point3) Add(o Point3) Point3     { return Point3{p.X + o.X, p.Y + o.Y, p.Z + o.Z} }
func (p Point3) Sub(o Point3) Point3     { return Point3{p.X - o.X, p.Y - o.Y, p.Z - o.Z} }
func (p Point3) Scale(s float64) Point3  { return Point3{p.X * s, p.Y * s, p.Z * s} }
func (p Point3) Norm() float64           { return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z) }
func (p Point3) Dot(o Point3) float64    { return p.X*o.X + p.Y*o.Y + p.Z*o.Z }
func (p Point3) Offset(d float64) Point3 { return Point3{p.X + d, p.Y + d, p.Z + d} }

// Normalize returns the unit vector along p. The zero vector stays zero.
func (p Point3) Normalize() Point3 {
	if n := p.Norm(); n != 0 {
		return p.Scale(1 / n)
	}
	return Point3{}
}

// IsFinite reports whether no coordinate is NaN or infinite.
func (p Point3) IsFinite() bool {
	for _, v := range [3]float64{p.X, p.Y, p.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (p Point3) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", p.X, p.Y, p.Z)
}

// Distance is the Euclidean distance between a and b.
func Distance(a, b Point3) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
