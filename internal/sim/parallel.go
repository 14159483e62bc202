package sim

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/hyperion/internal/swarm"
)

// Factory builds an independent simulator, swarm and body for one seed.
type Factory func(seed int64) (*Simulator, *swarm.Swarm, *swarm.CentralBody, error)

// Ensemble runs the same setup under consecutive seeds. Runs share nothing,
// so they execute concurrently.
type Ensemble struct {
	factory   Factory
	numRuns   int
	seedStart int64
	limit     int
}

func NewEnsemble(factory Factory, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{
		factory:   factory,
		numRuns:   numRuns,
		seedStart: seedStart,
		limit:     runtime.GOMAXPROCS(0),
	}
}

// SetLimit caps the number of concurrent runs. n <= 0 means unbounded.
func (e *Ensemble) SetLimit(n int) { e.limit = n }

// Run returns one result per seed, in seed order. The first failing run
// cancels the others.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	if e.numRuns <= 0 {
		return nil, fmt.Errorf("%w: ensemble needs at least one run, got %d", ErrInvalidConfig, e.numRuns)
	}

	results := make([]*Result, e.numRuns)
	g, gctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}

	for i := 0; i < e.numRuns; i++ {
		idx := i
		g.Go(func() error {
			seed := e.seedStart + int64(idx)
			s, sw, body, err := e.factory(seed)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}

			cfgCopy := cfg
			cfgCopy.Seed = seed

			res, err := s.Run(gctx, sw, body, cfgCopy)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			results[idx] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

type Summary struct {
	Runs           int
	MeanEnergy     float64
	StdEnergy      float64
	MinEnergy      float64
	MaxEnergy      float64
	MeanAcceptance float64
	Overheats      int
}

// Summarize aggregates final energies and acceptance across runs.
func Summarize(results []*Result) Summary {
	sum := Summary{MinEnergy: math.Inf(1), MaxEnergy: math.Inf(-1)}
	if len(results) == 0 {
		return Summary{}
	}

	var total, totalSq, acc float64
	for _, r := range results {
		e := r.Final().Energy
		total += e
		totalSq += e * e
		acc += r.Stats.AcceptanceRate()
		sum.MinEnergy = math.Min(sum.MinEnergy, e)
		sum.MaxEnergy = math.Max(sum.MaxEnergy, e)
		sum.Overheats += r.Stats.Overheats
	}

	n := float64(len(results))
	sum.Runs = len(results)
	sum.MeanEnergy = total / n
	sum.StdEnergy = math.Sqrt(math.Max(0, totalSq/n-sum.MeanEnergy*sum.MeanEnergy))
	sum.MeanAcceptance = acc / n
	return sum
}
