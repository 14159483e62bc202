package anneal

import (
	"github.com/san-kum/hyperion/internal/geom"
	"github.com/san-kum/hyperion/internal/swarm"
)

type SignalKind int

const (
	SignalLowEnergy SignalKind = iota
	SignalStarProximity
	SignalCollisionRisk
	SignalRepairExhausted
	SignalDegenerate
	SignalOverheatStart
	SignalCooling
	SignalOverheatResolved

	// NumSignalKinds is the number of defined kinds.
	NumSignalKinds int = iota
)

var signalNames = [NumSignalKinds]string{
	SignalLowEnergy:        "low_energy",
	SignalStarProximity:    "star_proximity",
	SignalCollisionRisk:    "collision_risk",
	SignalRepairExhausted:  "repair_exhausted",
	SignalDegenerate:       "degenerate",
	SignalOverheatStart:    "overheat_start",
	SignalCooling:          "cooling",
	SignalOverheatResolved: "overheat_resolved",
}

func (k SignalKind) String() string {
	if k < 0 || int(k) >= len(signalNames) {
		return "unknown"
	}
	return signalNames[k]
}

// SignalKinds lists every kind in declaration order.
func SignalKinds() []SignalKind {
	kinds := make([]SignalKind, NumSignalKinds)
	for i := range kinds {
		kinds[i] = SignalKind(i)
	}
	return kinds
}

// Signal is an informational event raised by the engine. None of them stop
// a run.
type Signal struct {
	Kind     SignalKind
	Round    int
	Panel    int
	Trial    int
	Position geom.Point3

	// Value carries the quantity that triggered the signal: energy level,
	// distance, or temperature.
	Value float64
}

// Status reports the thermal state a panel enters with this signal. Only
// the overheat procedure moves a panel between states.
func (s Signal) Status() (swarm.ThermalStatus, bool) {
	switch s.Kind {
	case SignalOverheatStart:
		return swarm.Overheating, true
	case SignalCooling:
		return swarm.Cooling, true
	case SignalOverheatResolved:
		return swarm.Nominal, true
	default:
		return swarm.Nominal, false
	}
}

type Observer interface {
	OnSignal(s Signal)
}

type ObserverFunc func(Signal)

func (f ObserverFunc) OnSignal(s Signal) { f(s) }
