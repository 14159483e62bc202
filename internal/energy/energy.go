// Package energy evaluates the repulsive potential of a set of positions.
package energy

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/hyperion/internal/geom"
)

var (
	// ErrCoincident indicates two positions at distance zero.
	ErrCoincident = errors.New("energy: coincident positions")

	// ErrNonFinite indicates a NaN or infinite coordinate.
	ErrNonFinite = errors.New("energy: non-finite position")
)

// PairError wraps an evaluation failure with the offending indexes.
type PairError struct {
	I, J    int
	Wrapped error
}

func (e *PairError) Error() string {
	return fmt.Sprintf("%v (points %d and %d)", e.Wrapped, e.I, e.J)
}

func (e *PairError) Unwrap() error {
	return e.Wrapped
}

// Total returns the sum over unordered pairs of 1/distance. It fails
// instead of returning +Inf when two points coincide.
func Total(points []geom.Point3) (float64, error) {
	for i := range points {
		if !points[i].IsFinite() {
			return 0, &PairError{I: i, J: i, Wrapped: ErrNonFinite}
		}
	}

	total := 0.0
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			d := geom.Distance(points[i], points[j])
			if d == 0 {
				return 0, &PairError{I: i, J: j, Wrapped: ErrCoincident}
			}
			total += 1.0 / d
		}
	}
	return total, nil
}

// MinSeparation is the smallest pairwise distance, +Inf below two points.
func MinSeparation(points []geom.Point3) float64 {
	min := math.Inf(1)
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			min = math.Min(min, geom.Distance(points[i], points[j]))
		}
	}
	return min
}
