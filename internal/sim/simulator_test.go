package sim_test

import (
	"context"
	"errors"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/tanksim/internal/control"
	"github.com/san-kum/tanksim/internal/dynamo"
	"github.com/san-kum/tanksim/internal/integrators"
	"github.com/san-kum/tanksim/internal/sim"
)

const tol = 1e-9

type countingMetric struct {
	count int
}

func (c *countingMetric) Name() string                                        { return "count" }
func (c *countingMetric) Observe(x dynamo.State, u dynamo.Control, t float64) { c.count++ }
func (c *countingMetric) Value() float64                                      { return float64(c.count) }
func (c *countingMetric) Reset()                                              { c.count = 0 }

type recordingObserver struct {
	steps    []int
	controls []float64
}

func (r *recordingObserver) OnStep(step int, x dynamo.State, u dynamo.Control, t float64) {
	r.steps = append(r.steps, step)
	r.controls = append(r.controls, u[0])
}

// startTimes records the interval start handed to the wrapped integrator.
type startTimes struct {
	inner  dynamo.Integrator
	starts []float64
}

func (s *startTimes) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	s.starts = append(s.starts, t)
	return s.inner.Step(dyn, x, u, t, dt)
}

var _ = Describe("Simulator", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	DescribeTable("default valve pulse",
		func(integ dynamo.Integrator) {
			res, err := sim.New(integ, "test").Run(ctx, sim.DefaultConfig())
			Expect(err).NotTo(HaveOccurred())

			level := res.Level()
			Expect(res.Times()).To(HaveLen(101))
			Expect(res.Control()).To(HaveLen(101))
			Expect(level).To(HaveLen(101))

			By("staying empty while the valve is closed")
			for i := 0; i <= 20; i++ {
				Expect(level[i]).To(Equal(0.0), "index %d", i)
			}

			By("rising at 5 units per second once the valve opens")
			for i := 21; i <= 69; i++ {
				Expect(level[i]).To(BeNumerically("~", 0.5*float64(i-20), tol), "index %d", i)
			}
			Expect(level[70]).To(BeNumerically("~", 24.5, tol))

			By("holding once the valve closes")
			for i := 70; i < len(level); i++ {
				Expect(level[i]).To(Equal(level[69]), "index %d", i)
			}
			Expect(res.FinalLevel()).To(BeNumerically("~", 24.5, tol))
		},
		Entry("euler", integrators.NewEuler()),
		Entry("rk4", integrators.NewRK4()),
		Entry("rk45", integrators.NewRK45()),
	)

	It("builds the grid and pulse it reports", func() {
		res, err := sim.New(integrators.NewRK4(), "rk4").Run(ctx, sim.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())

		times := res.Times()
		Expect(times[0]).To(Equal(0.0))
		Expect(times[100]).To(Equal(10.0))
		Expect(times[21]).To(BeNumerically("~", 2.1, tol))

		u := res.Control()
		Expect(u[20]).To(Equal(0.0))
		Expect(u[21]).To(Equal(100.0))
		Expect(u[69]).To(Equal(100.0))
		Expect(u[70]).To(Equal(0.0))
		Expect(res.Integrator).To(Equal("rk4"))
		Expect(res.ID).NotTo(BeEmpty())
	})

	It("starts from the initial level", func() {
		cfg := sim.DefaultConfig()
		cfg.InitialLevel = 3.25

		res, err := sim.New(integrators.NewRK4(), "rk4").Run(ctx, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Level()[0]).To(Equal(3.25))
		Expect(res.FinalLevel()).To(BeNumerically("~", 27.75, tol))
	})

	It("does not clamp a draining tank", func() {
		cfg := sim.DefaultConfig()
		cfg.ValveOpenValue = -100

		res, err := sim.New(integrators.NewRK4(), "rk4").Run(ctx, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.FinalLevel()).To(BeNumerically("~", -24.5, tol))
	})

	Describe("single step grid", func() {
		var cfg sim.Config

		BeforeEach(func() {
			cfg = sim.DefaultConfig()
			cfg.Horizon = 1
			cfg.StepCount = 1
		})

		It("applies the opening at the end of the interval", func() {
			cfg.ValveOpenStart, cfg.ValveOpenEnd = 1, 2

			res, err := sim.New(integrators.NewRK4(), "rk4").Run(ctx, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Level()).To(HaveLen(2))
			Expect(res.Level()[1]).To(BeNumerically("~", 5.0, tol))
		})

		It("ignores the opening at the start of the interval", func() {
			cfg.ValveOpenStart, cfg.ValveOpenEnd = 0, 1

			res, err := sim.New(integrators.NewRK4(), "rk4").Run(ctx, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Level()).To(Equal([]float64{0, 0}))
		})
	})

	It("is deterministic", func() {
		s := sim.New(integrators.NewRK45(), "rk45")
		cfg := sim.DefaultConfig()
		cfg.ValveOpenValue = 37.5

		a, err := s.Run(ctx, cfg)
		Expect(err).NotTo(HaveOccurred())
		b, err := s.Run(ctx, cfg)
		Expect(err).NotTo(HaveOccurred())

		Expect(b.Level()).To(Equal(a.Level()))
		Expect(b.ID).NotTo(Equal(a.ID))
	})

	It("never lowers the level under non-negative openings", func() {
		rng := rand.New(rand.NewSource(7))
		s := sim.New(integrators.NewRK4(), "rk4")

		for trial := 0; trial < 50; trial++ {
			cfg := sim.DefaultConfig()
			cfg.StepCount = 1 + rng.Intn(200)
			cfg.ValveOpenStart, cfg.ValveOpenEnd = 0, 0
			cfg.InitialLevel = rng.Float64() * 10

			values := make([]float64, cfg.StepCount+1)
			for i := range values {
				if rng.Intn(3) > 0 {
					values[i] = rng.Float64() * 100
				}
			}

			res, err := s.RunProfile(ctx, cfg, control.FromValues(values))
			Expect(err).NotTo(HaveOccurred())

			level := res.Level()
			Expect(level).To(HaveLen(cfg.StepCount + 1))
			for i := 1; i < len(level); i++ {
				Expect(level[i]).To(BeNumerically(">=", level[i-1]), "trial %d index %d", trial, i)
			}
		}
	})

	It("integrates the tank over local interval time", func() {
		rec := &startTimes{inner: integrators.NewEuler()}

		_, err := sim.New(rec, "euler").Run(ctx, sim.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.starts).To(HaveLen(100))
		for _, t0 := range rec.starts {
			Expect(t0).To(Equal(0.0))
		}
	})

	It("feeds metrics and observers once per step", func() {
		m := &countingMetric{}
		obs := &recordingObserver{}
		s := sim.New(integrators.NewRK4(), "rk4")
		s.AddMetric(m)
		s.AddObserver(obs)

		res, err := s.Run(ctx, sim.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Metrics).To(HaveKeyWithValue("count", 100.0))
		Expect(obs.steps).To(HaveLen(100))
		Expect(obs.steps[0]).To(Equal(0))
		Expect(obs.controls[20]).To(Equal(100.0))
		Expect(obs.controls[19]).To(Equal(0.0))

		By("resetting metrics between runs")
		res, err = s.Run(ctx, sim.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Metrics["count"]).To(Equal(100.0))
	})

	Describe("errors", func() {
		It("rejects a valve start beyond the grid without a result", func() {
			cfg := sim.DefaultConfig()
			cfg.ValveOpenStart = cfg.StepCount + 1
			cfg.ValveOpenEnd = cfg.StepCount + 1

			res, err := sim.New(integrators.NewRK4(), "rk4").Run(ctx, cfg)
			Expect(res).To(BeNil())
			Expect(err).To(MatchError(dynamo.ErrConfiguration))

			var cfgErr *sim.ConfigError
			Expect(errors.As(err, &cfgErr)).To(BeTrue())
			Expect(cfgErr.Field).To(Equal("valve_open_start"))
		})

		It("rejects a profile that does not match the grid", func() {
			res, err := sim.New(integrators.NewRK4(), "rk4").
				RunProfile(ctx, sim.DefaultConfig(), control.FromValues([]float64{0, 1}))
			Expect(res).To(BeNil())
			Expect(err).To(MatchError(dynamo.ErrConfiguration))
		})

		DescribeTable("reports divergence",
			func(integ dynamo.Integrator) {
				cfg := sim.DefaultConfig()
				cfg.Coefficient = 1e308
				cfg.Density = 1e-300

				res, err := sim.New(integ, "test").Run(ctx, cfg)
				Expect(res).To(BeNil())
				Expect(err).To(MatchError(dynamo.ErrDivergence))

				var simErr *dynamo.SimulationError
				Expect(errors.As(err, &simErr)).To(BeTrue())
				Expect(simErr.Step).To(Equal(0))
			},
			Entry("rk4", integrators.NewRK4()),
			Entry("rk45", integrators.NewRK45()),
		)

		It("stops on a cancelled context", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			res, err := sim.New(integrators.NewRK4(), "rk4").Run(cctx, sim.DefaultConfig())
			Expect(res).To(BeNil())
			Expect(err).To(MatchError(context.Canceled))
		})
	})
})
