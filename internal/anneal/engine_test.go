package anneal_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/hyperion/internal/anneal"
	"github.com/san-kum/hyperion/internal/geom"
	"github.com/san-kum/hyperion/internal/swarm"
)

// scripted replays fixed draws; 0.5 maps to a zero displacement.
type scripted struct {
	values []float64
	drawn  int
}

func (s *scripted) Float64() float64 {
	if s.drawn >= len(s.values) {
		s.drawn++
		return 0.5
	}
	v := s.values[s.drawn]
	s.drawn++
	return v
}

type recorder struct {
	signals []anneal.Signal
}

func (r *recorder) OnSignal(s anneal.Signal) { r.signals = append(r.signals, s) }

func (r *recorder) kinds() []anneal.SignalKind {
	kinds := make([]anneal.SignalKind, len(r.signals))
	for i, s := range r.signals {
		kinds[i] = s.Kind
	}
	return kinds
}

func panelAt(x, y, z, temperature float64) swarm.Panel {
	return swarm.Panel{
		Position:    geom.Point3{X: x, Y: y, Z: z},
		Temperature: temperature,
		EnergyLevel: 80,
		Thruster:    1,
	}
}

func ring(n int, radius float64, rng *rand.Rand) *swarm.Swarm {
	panels := make([]swarm.Panel, n)
	for i := range panels {
		theta := 2 * math.Pi * float64(i) / float64(n)
		panels[i] = panelAt(radius*math.Cos(theta), radius*math.Sin(theta), 0, 1300+400*rng.Float64())
	}
	return swarm.New("ring", panels)
}

var _ = Describe("Accept", func() {
	DescribeTable("Metropolis criterion",
		func(dE, temperature, u float64, want bool) {
			Expect(anneal.Accept(dE, temperature, u)).To(Equal(want))
		},
		Entry("negative delta always accepted", -1.0, 1.0, 0.999, true),
		Entry("zero delta always accepted", 0.0, 1.0, 0.999, true),
		Entry("zero delta at zero temperature", 0.0, 0.0, 0.999, true),
		Entry("positive delta at zero temperature", 0.1, 0.0, 0.0, false),
		Entry("positive delta at negative temperature", 0.1, -10.0, 0.0, false),
		Entry("draw exactly at threshold", 1.0, 1.0, math.Exp(-1), true),
		Entry("draw just above threshold", 1.0, 1.0, math.Exp(-1)+1e-9, false),
		Entry("hot panel accepts most moves", 0.5, 1000.0, 0.99, true),
	)
})

var _ = Describe("Engine", func() {
	var (
		params anneal.Params
		body   *swarm.CentralBody
		rec    *recorder
	)

	BeforeEach(func() {
		params = anneal.DefaultParams()
		params.Trials = 1
		body = &swarm.CentralBody{}
		rec = &recorder{}
	})

	newEngine := func(rng anneal.Rand) *anneal.Engine {
		e := anneal.New(params, rng)
		e.AddObserver(rec)
		return e
	}

	Describe("acceptance", func() {
		It("always commits an energy-decreasing move", func() {
			sw := swarm.New("pair", []swarm.Panel{panelAt(10, 0, 0, 0), panelAt(12.5, 0, 0, 0)})
			rng := &scripted{values: []float64{0, 0.5, 0.5}}

			out := newEngine(rng).Trial(sw, body, 0)

			Expect(out.Result).To(Equal(anneal.Accepted))
			Expect(out.DeltaE).To(BeNumerically("<", 0))
			Expect(sw.Panels[0].Position).To(Equal(geom.Point3{X: 9}))
			Expect(rng.drawn).To(Equal(3), "no acceptance draw for a downhill move")
		})

		Context("with an uphill move at temperature 1", func() {
			var (
				sw        *swarm.Swarm
				threshold float64
			)

			BeforeEach(func() {
				sw = swarm.New("pair", []swarm.Panel{panelAt(9, 0, 0, 1), panelAt(12.5, 0, 0, 1)})
				threshold = math.Exp(-(1/2.5 - 1/3.5))
			})

			It("accepts when the draw is below exp(-dE/T)", func() {
				out := newEngine(&scripted{values: []float64{1, 0.5, 0.5, threshold - 0.01}}).Trial(sw, body, 0)

				Expect(out.Result).To(Equal(anneal.Accepted))
				Expect(out.DeltaE).To(BeNumerically("~", 1/2.5-1/3.5, 1e-12))
				Expect(sw.Panels[0].Position).To(Equal(geom.Point3{X: 10}))
			})

			It("reverts when the draw is above exp(-dE/T)", func() {
				out := newEngine(&scripted{values: []float64{1, 0.5, 0.5, threshold + 0.01}}).Trial(sw, body, 0)

				Expect(out.Result).To(Equal(anneal.RejectedMetropolis))
				Expect(sw.Panels[0].Position).To(Equal(geom.Point3{X: 9}))
			})
		})

		It("rejects every uphill move when temperature is not positive", func() {
			sw := swarm.New("pair", []swarm.Panel{panelAt(9, 0, 0, 0), panelAt(12.5, 0, 0, 0)})

			out := newEngine(&scripted{values: []float64{1, 0.5, 0.5, 0}}).Trial(sw, body, 0)

			Expect(out.Result).To(Equal(anneal.RejectedMetropolis))
			Expect(sw.Panels[0].Position).To(Equal(geom.Point3{X: 9}))
		})
	})

	Describe("star exclusion", func() {
		It("reverts a move into the exclusion zone", func() {
			sw := swarm.New("pair", []swarm.Panel{panelAt(6.5, 0, 0, 1), panelAt(0, 50, 0, 1)})

			out := newEngine(&scripted{values: []float64{0, 0.5, 0.5}}).Trial(sw, body, 0)

			Expect(out.Result).To(Equal(anneal.RejectedStar))
			Expect(out.Candidate).To(Equal(geom.Point3{X: 5.5}))
			Expect(sw.Panels[0].Position).To(Equal(geom.Point3{X: 6.5}))
			Expect(rec.kinds()).To(ConsistOf(anneal.SignalStarProximity))
		})

		It("follows a moving central body", func() {
			body.Position = geom.Point3{X: 100}
			sw := swarm.New("pair", []swarm.Panel{panelAt(106.5, 0, 0, 1), panelAt(0, 50, 0, 1)})

			out := newEngine(&scripted{values: []float64{0, 0.5, 0.5}}).Trial(sw, body, 0)

			Expect(out.Result).To(Equal(anneal.RejectedStar))
		})
	})

	Describe("separation repair", func() {
		It("pushes the candidate out of the separation radius", func() {
			sw := swarm.New("pair", []swarm.Panel{panelAt(10, 0, 0, 1), panelAt(12.5, 0, 0, 1)})

			out := newEngine(&scripted{values: []float64{1, 0.5, 0.5, 0}}).Trial(sw, body, 0)

			Expect(out.Result).To(Equal(anneal.Accepted))
			Expect(out.Repairs).To(Equal(1))
			Expect(sw.Panels[0].Position).To(Equal(geom.Point3{X: 10.5}))
			Expect(geom.Distance(sw.Panels[0].Position, sw.Panels[1].Position)).To(BeNumerically(">=", params.MinSeparation))
			Expect(rec.kinds()).To(ConsistOf(anneal.SignalCollisionRisk))
		})

		It("reverts when the repair bound is exhausted", func() {
			params.RepairStep = 0.01
			params.MaxRepairIterations = 10
			sw := swarm.New("pair", []swarm.Panel{panelAt(10, 0, 0, 1), panelAt(12.5, 0, 0, 1)})

			out := newEngine(&scripted{values: []float64{1, 0.5, 0.5}}).Trial(sw, body, 0)

			Expect(out.Result).To(Equal(anneal.RejectedRepair))
			Expect(out.Repairs).To(Equal(10))
			Expect(sw.Panels[0].Position).To(Equal(geom.Point3{X: 10}))
			Expect(rec.kinds()).To(Equal([]anneal.SignalKind{anneal.SignalCollisionRisk, anneal.SignalRepairExhausted}))
		})

		It("reverts instead of looping when the candidate coincides with a panel", func() {
			sw := swarm.New("pair", []swarm.Panel{panelAt(10, 0, 0, 1), panelAt(11, 0, 0, 1)})

			out := newEngine(&scripted{values: []float64{1, 0.5, 0.5}}).Trial(sw, body, 0)

			Expect(out.Result).To(Equal(anneal.RejectedRepair))
			Expect(out.Repairs).To(Equal(0))
			Expect(sw.Panels[0].Position).To(Equal(geom.Point3{X: 10}))
		})

		It("rejects a repaired candidate pushed into the exclusion zone", func() {
			sw := swarm.New("pair", []swarm.Panel{panelAt(7, 0, 0, 1), panelAt(8.5, 0, 0, 1)})
			params.RepairStep = 3

			out := newEngine(&scripted{values: []float64{1, 0.5, 0.5}}).Trial(sw, body, 0)

			Expect(out.Result).To(Equal(anneal.RejectedStar))
			Expect(sw.Panels[0].Position).To(Equal(geom.Point3{X: 7}))
		})
	})

	Describe("thermal recovery", func() {
		It("cools an overheating panel and parks it at the stand-off position", func() {
			sw := swarm.New("solo", []swarm.Panel{panelAt(0, 0, 0, 1600)})

			r := newEngine(&scripted{}).Recover(sw, body, 0)

			Expect(sw.Panels[0].Temperature).To(BeNumerically("<=", params.CoolTarget))
			Expect(r.FinalTemp).To(Equal(1000.0))
			Expect(r.Iterations).To(Equal(40))
			Expect(r.Exhausted).To(BeFalse())
			Expect(r.From).To(Equal(geom.Point3{}))
			Expect(r.Excursion).To(Equal(geom.Point3{X: 400, Y: 400, Z: 400}))
			Expect(sw.Panels[0].Position).To(Equal(geom.Point3{X: -5, Y: -5, Z: -5}))
			Expect(rec.kinds()).To(Equal([]anneal.SignalKind{anneal.SignalOverheatStart, anneal.SignalCooling, anneal.SignalOverheatResolved}))
		})

		It("moves the panel from overheating through cooling back to nominal", func() {
			sw := swarm.New("solo", []swarm.Panel{panelAt(0, 0, 0, 1600)})
			Expect(sw.Panels[0].ThermalStatus(params.OverheatThreshold)).To(Equal(swarm.Overheating))

			r := newEngine(&scripted{}).Recover(sw, body, 0)

			want := []swarm.ThermalStatus{swarm.Overheating, swarm.Cooling, swarm.Nominal}
			Expect(r.Transitions).To(Equal(want))

			var seen []swarm.ThermalStatus
			for _, s := range rec.signals {
				if st, ok := s.Status(); ok {
					seen = append(seen, st)
				}
			}
			Expect(seen).To(Equal(want))
			Expect(rec.signals[1].Value).To(Equal(1600.0))
			Expect(sw.Panels[0].ThermalStatus(params.OverheatThreshold)).To(Equal(swarm.Nominal))
		})

		It("passes through cooling even when the cooling bound is zero", func() {
			params.MaxCoolingIterations = 0
			sw := swarm.New("solo", []swarm.Panel{panelAt(0, 0, 0, 1600)})

			r := newEngine(&scripted{}).Recover(sw, body, 0)

			Expect(r.Exhausted).To(BeTrue())
			Expect(r.Transitions).To(Equal([]swarm.ThermalStatus{swarm.Overheating, swarm.Cooling, swarm.Nominal}))
		})

		It("terminates within the cooling bound and clamps the temperature", func() {
			params.MaxCoolingIterations = 5
			sw := swarm.New("solo", []swarm.Panel{panelAt(0, 0, 0, 1600)})

			r := newEngine(&scripted{}).Recover(sw, body, 0)

			Expect(r.Iterations).To(Equal(5))
			Expect(r.Exhausted).To(BeTrue())
			Expect(sw.Panels[0].Temperature).To(Equal(params.CoolTarget))
		})

		It("terminates when the decrement cannot cool at all", func() {
			params.OverheatDecrement = 0
			sw := swarm.New("solo", []swarm.Panel{panelAt(0, 0, 0, 1600)})

			r := newEngine(&scripted{}).Recover(sw, body, 0)

			Expect(r.Iterations).To(Equal(params.MaxCoolingIterations))
			Expect(r.Exhausted).To(BeTrue())
			Expect(sw.Panels[0].Temperature).To(BeNumerically("<=", params.CoolTarget))
		})

		It("uses the opposite stand-off when the first one is unsafe", func() {
			body.Position = geom.Point3{X: -5, Y: -5, Z: -5}
			sw := swarm.New("solo", []swarm.Panel{panelAt(0, 0, 0, 1600)})

			r := newEngine(&scripted{}).Recover(sw, body, 0)

			Expect(r.Fallback).To(BeFalse())
			Expect(sw.Panels[0].Position).To(Equal(geom.Point3{X: 5, Y: 5, Z: 5}))
		})

		It("stays at the pre-recovery position when no stand-off is safe", func() {
			params.StarExclusion = 10
			sw := swarm.New("solo", []swarm.Panel{panelAt(0, 0, 0, 1600)})

			r := newEngine(&scripted{}).Recover(sw, body, 0)

			Expect(r.Fallback).To(BeTrue())
			Expect(sw.Panels[0].Position).To(Equal(geom.Point3{}))
			Expect(sw.Panels[0].Temperature).To(BeNumerically("<=", params.CoolTarget))
		})

		It("runs after the move decision of a trial", func() {
			sw := swarm.New("solo", []swarm.Panel{panelAt(20, 0, 0, 1600)})

			out := newEngine(&scripted{}).Trial(sw, body, 0)

			Expect(out.Result).To(Equal(anneal.Accepted))
			Expect(out.Recovery).NotTo(BeNil())
			Expect(sw.Panels[0].Position).To(Equal(geom.Point3{X: 15, Y: -5, Z: -5}))
			Expect(sw.Panels[0].IsOverheating(params.OverheatThreshold)).To(BeFalse())
		})
	})

	Describe("Reposition", func() {
		It("refreshes connectivity and warns once on low energy", func() {
			params.Trials = 5
			sw := swarm.New("trio", []swarm.Panel{panelAt(10, 0, 0, 1), panelAt(0, 15, 0, 1), panelAt(0, 0, 80, 1)})
			sw.Panels[0].EnergyLevel = 3

			st := newEngine(rand.New(rand.NewSource(1))).Reposition(sw, body, 0)

			Expect(st.Trials).To(Equal(5))
			Expect(st.Accepted + st.StarRejections + st.RepairRejections + st.MetropolisRejections + st.DegenerateRejections).To(Equal(5))
			Expect(sw.Panels[0].Connectivity).To(Equal(1))
			Expect(rec.kinds()).To(HaveLen(1))
			Expect(rec.signals[0].Kind).To(Equal(anneal.SignalLowEnergy))
			Expect(rec.signals[0].Value).To(Equal(3.0))
		})

		It("keeps both safety constraints over many seeded trials", func() {
			params.Trials = 100
			seed := rand.New(rand.NewSource(7))
			sw := ring(10, 10, seed)
			sw.Panels[0].Temperature = 1600
			e := newEngine(seed)

			var total anneal.Stats
			for round := 0; round < 3; round++ {
				e.SetRound(round)
				for i := range sw.Panels {
					total.Add(e.Reposition(sw, body, i))

					Expect(geom.Distance(sw.Panels[i].Position, body.Position)).To(BeNumerically(">=", params.StarExclusion))
					for j := range sw.Panels {
						if j == i {
							continue
						}
						Expect(geom.Distance(sw.Panels[i].Position, sw.Panels[j].Position)).To(BeNumerically(">=", params.MinSeparation))
					}
					Expect(sw.Panels[i].Temperature).To(BeNumerically("<=", params.OverheatThreshold))
				}
			}

			Expect(total.Trials).To(Equal(3 * 10 * 100))
			Expect(total.Accepted).To(BeNumerically(">", 0))
			Expect(total.Overheats).To(BeNumerically(">", 0))
		})

		It("is deterministic under a fixed seed", func() {
			params.Trials = 50
			base := ring(8, 12, rand.New(rand.NewSource(3)))

			run := func() *swarm.Swarm {
				sw := base.Clone()
				e := anneal.New(params, rand.New(rand.NewSource(99)))
				for i := range sw.Panels {
					e.Reposition(sw, body, i)
				}
				return sw
			}

			Expect(run()).To(Equal(run()))
		})
	})
})

var _ = Describe("Params", func() {
	It("accepts the defaults", func() {
		Expect(anneal.DefaultParams().Validate()).To(Succeed())
	})

	DescribeTable("rejects invalid values",
		func(mutate func(*anneal.Params)) {
			p := anneal.DefaultParams()
			mutate(&p)
			Expect(p.Validate()).To(MatchError(anneal.ErrInvalidParams))
		},
		Entry("negative trials", func(p *anneal.Params) { p.Trials = -1 }),
		Entry("cool target above threshold", func(p *anneal.Params) { p.CoolTarget = 2000 }),
		Entry("zero repair step", func(p *anneal.Params) { p.RepairStep = 0 }),
		Entry("negative repair bound", func(p *anneal.Params) { p.MaxRepairIterations = -1 }),
		Entry("negative cooling bound", func(p *anneal.Params) { p.MaxCoolingIterations = -1 }),
	)
})

var _ = Describe("SignalKind", func() {
	It("names every kind", func() {
		for _, k := range anneal.SignalKinds() {
			Expect(k.String()).NotTo(Equal("unknown"))
		}
		Expect(anneal.SignalKind(99).String()).To(Equal("unknown"))
		Expect(anneal.SignalKinds()).To(HaveLen(anneal.NumSignalKinds))
	})

	It("maps only the overheat procedure onto thermal states", func() {
		for _, k := range anneal.SignalKinds() {
			_, ok := anneal.Signal{Kind: k}.Status()
			switch k {
			case anneal.SignalOverheatStart, anneal.SignalCooling, anneal.SignalOverheatResolved:
				Expect(ok).To(BeTrue(), k.String())
			default:
				Expect(ok).To(BeFalse(), k.String())
			}
		}
	})
})
