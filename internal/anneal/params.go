package anneal

import (
	"errors"
	"fmt"
)

// ErrInvalidParams indicates an engine parameter outside its valid range.
var ErrInvalidParams = errors.New("anneal: invalid parameters")

const (
	DefaultTrials               = 100
	DefaultStarExclusion        = 6.0
	DefaultMinSeparation        = 2.0
	DefaultNeighborRadius       = 20.0
	DefaultEnergyWarn           = 5.0
	DefaultOverheatThreshold    = 1500.0
	DefaultCoolTarget           = 1000.0
	DefaultOverheatDecrement    = 15.0
	DefaultStandoffMargin       = 5.0
	DefaultCoolingStep          = 10.0
	DefaultRepairStep           = 0.5
	DefaultMaxRepairIterations  = 10
	DefaultMaxCoolingIterations = 100
)

// Params holds every tunable constant of the repositioning engine.
type Params struct {
	Trials            int
	StarExclusion     float64
	MinSeparation     float64
	NeighborRadius    float64
	EnergyWarn        float64
	OverheatThreshold float64
	CoolTarget        float64
	OverheatDecrement float64
	StandoffMargin    float64

	// CoolingStep is the per-axis move applied on each cooling iteration.
	CoolingStep float64

	// RepairStep is the length of one separation push.
	RepairStep float64

	MaxRepairIterations  int
	MaxCoolingIterations int
}

func DefaultParams() Params {
	return Params{
		Trials:               DefaultTrials,
		StarExclusion:        DefaultStarExclusion,
		MinSeparation:        DefaultMinSeparation,
		NeighborRadius:       DefaultNeighborRadius,
		EnergyWarn:           DefaultEnergyWarn,
		OverheatThreshold:    DefaultOverheatThreshold,
		CoolTarget:           DefaultCoolTarget,
		OverheatDecrement:    DefaultOverheatDecrement,
		StandoffMargin:       DefaultStandoffMargin,
		CoolingStep:          DefaultCoolingStep,
		RepairStep:           DefaultRepairStep,
		MaxRepairIterations:  DefaultMaxRepairIterations,
		MaxCoolingIterations: DefaultMaxCoolingIterations,
	}
}

func (p Params) Validate() error {
	switch {
	case p.Trials < 0:
		return fmt.Errorf("%w: trials must be non-negative, got %d", ErrInvalidParams, p.Trials)
	case p.StarExclusion < 0:
		return fmt.Errorf("%w: star exclusion must be non-negative, got %f", ErrInvalidParams, p.StarExclusion)
	case p.MinSeparation < 0:
		return fmt.Errorf("%w: min separation must be non-negative, got %f", ErrInvalidParams, p.MinSeparation)
	case p.NeighborRadius < 0:
		return fmt.Errorf("%w: neighbor radius must be non-negative, got %f", ErrInvalidParams, p.NeighborRadius)
	case p.CoolTarget >= p.OverheatThreshold:
		return fmt.Errorf("%w: cool target %f must be below overheat threshold %f", ErrInvalidParams, p.CoolTarget, p.OverheatThreshold)
	case p.RepairStep <= 0:
		return fmt.Errorf("%w: repair step must be positive, got %f", ErrInvalidParams, p.RepairStep)
	case p.MaxRepairIterations < 0:
		return fmt.Errorf("%w: max repair iterations must be non-negative, got %d", ErrInvalidParams, p.MaxRepairIterations)
	case p.MaxCoolingIterations < 0:
		return fmt.Errorf("%w: max cooling iterations must be non-negative, got %d", ErrInvalidParams, p.MaxCoolingIterations)
	}
	return nil
}
