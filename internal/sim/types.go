package sim

import (
	"errors"

	"github.com/san-kum/hyperion/internal/anneal"
	"github.com/san-kum/hyperion/internal/swarm"
)

var (
	ErrInvalidConfig = errors.New("sim: invalid config")
	ErrInvalidSwarm  = errors.New("sim: invalid swarm")
)

const (
	DefaultRounds = 10
	DefaultBodyDt = 0.0
)

type Metric interface {
	Name() string
	Observe(sw *swarm.Swarm, body *swarm.CentralBody, st RoundStats)
	Value() float64
	Reset()
}

type Observer interface {
	OnRound(sw *swarm.Swarm, body *swarm.CentralBody, st RoundStats)
}

type ObserverFunc func(sw *swarm.Swarm, body *swarm.CentralBody, st RoundStats)

func (f ObserverFunc) OnRound(sw *swarm.Swarm, body *swarm.CentralBody, st RoundStats) {
	f(sw, body, st)
}

type Config struct {
	Rounds int
	BodyDt float64
	Seed   int64
}

func DefaultConfig() Config {
	return Config{Rounds: DefaultRounds, BodyDt: DefaultBodyDt}
}

// RoundStats is the swarm snapshot taken after a round. Round 0 is the
// initial state and carries zero engine stats.
type RoundStats struct {
	Round            int          `json:"round"`
	Energy           float64      `json:"energy"`
	MinSeparation    float64      `json:"min_separation"`
	MaxTemperature   float64      `json:"max_temperature"`
	Clearance        float64      `json:"clearance"`
	MeanConnectivity float64      `json:"mean_connectivity"`
	Body             [3]float64   `json:"body"`
	Stats            anneal.Stats `json:"stats"`
}

type Result struct {
	Seed        int64
	Swarm       *swarm.Swarm
	Body        swarm.CentralBody
	Rounds      []RoundStats
	Stats       anneal.Stats
	Metrics     map[string]float64
	RoundsTaken int
}

// Final returns the last recorded snapshot.
func (r *Result) Final() RoundStats {
	if len(r.Rounds) == 0 {
		return RoundStats{}
	}
	return r.Rounds[len(r.Rounds)-1]
}

// Energies returns the energy series, initial state first.
func (r *Result) Energies() []float64 {
	out := make([]float64, len(r.Rounds))
	for i, st := range r.Rounds {
		out[i] = st.Energy
	}
	return out
}
