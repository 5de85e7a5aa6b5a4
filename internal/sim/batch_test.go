package sim_test

import (
	"errors"
	"log/slog"
	"math"

	"github.com/lmittmann/tint"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/metrics"
	"github.com/san-kum/dpsim/internal/physics"
	"github.com/san-kum/dpsim/internal/sim"
)

func testLogger() *slog.Logger {
	return slog.New(tint.NewHandler(GinkgoWriter, &tint.Options{Level: slog.LevelDebug, NoColor: true}))
}

// unitConfig is a batch of unit-length, unit-mass pendulums raised past the
// horizontal, the usual chaotic regime.
func unitConfig(size int) sim.Config {
	cfg := sim.DefaultConfig()
	cfg.Size = size
	cfg.R1, cfg.R2 = 1, 1
	cfg.M1, cfg.M2 = 1, 1
	cfg.Gravity = 9.81
	cfg.TotalLength = 2
	cfg.MassMin, cfg.MassMax = 0.5, 2
	cfg.TraceCapacity = 64
	cfg.EnergyCapacity = 64
	cfg.Logger = testLogger()
	return cfg
}

var _ = Describe("Batch", func() {
	var (
		cfg   sim.Config
		batch *sim.Batch
	)

	BeforeEach(func() {
		cfg = unitConfig(4)
	})

	JustBeforeEach(func() {
		var err error
		batch, err = sim.New(cfg)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("construction", func() {
		It("starts running at frame zero", func() {
			Expect(batch.Running()).To(BeTrue())
			Expect(batch.Frame()).To(BeZero())
			Expect(batch.Len()).To(Equal(4))
		})

		It("offsets each instance by the configured angle", func() {
			for i, p := range batch.Pendulums() {
				Expect(p.A1).To(BeNumerically("~", cfg.A1+float64(i)*cfg.AngleOffset, 1e-15))
				Expect(p.A2).To(Equal(cfg.A2))
				Expect(p.ID).To(Equal(i))
			}
		})

		It("never aliases traces", func() {
			ps := batch.Pendulums()
			ps[0].Trace.Push(dynamo.Vec2{X: 1})
			Expect(ps[1].Trace.Len()).To(BeZero())
		})

		DescribeTable("rejects invalid configurations",
			func(mutate func(*sim.Config), want error) {
				c := unitConfig(2)
				mutate(&c)
				_, err := sim.New(c)
				Expect(err).To(MatchError(want))
			},
			Entry("empty batch", func(c *sim.Config) { c.Size = 0 }, dynamo.ErrEmptyBatch),
			Entry("zero length", func(c *sim.Config) { c.R1 = 0 }, dynamo.ErrParameterBounds),
			Entry("negative mass", func(c *sim.Config) { c.M2 = -1 }, dynamo.ErrParameterBounds),
			Entry("NaN length", func(c *sim.Config) { c.R2 = math.NaN() }, dynamo.ErrParameterBounds),
			Entry("negative gravity", func(c *sim.Config) { c.Gravity = -1 }, dynamo.ErrParameterBounds),
			Entry("zero time scale", func(c *sim.Config) { c.TimeScale = 0 }, dynamo.ErrParameterBounds),
			Entry("zero stride", func(c *sim.Config) { c.TraceStride = 0 }, dynamo.ErrParameterBounds),
			Entry("zero trace capacity", func(c *sim.Config) { c.TraceCapacity = 0 }, dynamo.ErrParameterBounds),
			Entry("length fraction outside (0,1)", func(c *sim.Config) { c.MaxLengthFrac = 1 }, dynamo.ErrParameterBounds),
			Entry("inverted mass range", func(c *sim.Config) { c.MassMin, c.MassMax = 3, 2 }, dynamo.ErrParameterBounds),
		)
	})

	Describe("Step", func() {
		It("advances every instance like a standalone integrator", func() {
			cfg = unitConfig(40)
			cfg.AngleOffset = 1e-3
			batch, _ = sim.New(cfg)

			clones := make([]*physics.DoublePendulum, batch.Len())
			for i, p := range batch.Pendulums() {
				clones[i] = p.Clone()
			}

			const dt, substeps = 0.016, 10
			for range 50 {
				batch.Step(dt, substeps)
				for _, c := range clones {
					physics.Advance(c, dt*cfg.TimeScale, substeps)
					c.SampleTrace()
				}
			}

			for i, p := range batch.Pendulums() {
				c := clones[i]
				Expect([]float64{p.A1, p.A2, p.A1V, p.A2V}).To(Equal([]float64{c.A1, c.A2, c.A1V, c.A2V}), "instance %d", i)
				Expect(p.Trace.Slice()).To(Equal(c.Trace.Slice()), "instance %d", i)
			}
		})

		It("records the primary instance's energy each frame", func() {
			var snap sim.Snapshot
			for range 5 {
				snap = batch.Step(0.001, 10)
			}

			Expect(snap.Advanced).To(BeTrue())
			Expect(snap.Frame).To(Equal(uint64(5)))
			Expect(batch.Energy().Len()).To(Equal(5))

			ke, pe, ok := batch.Energy().Latest()
			Expect(ok).To(BeTrue())
			Expect(snap.Kinetic).To(Equal(ke))
			Expect(snap.Potential).To(Equal(pe))
			Expect(snap.Total).To(Equal(ke + pe))
		})

		It("feeds added metrics", func() {
			batch.AddMetric(metrics.NewEnergyDrift())
			batch.AddMetric(metrics.NewStability(1e6))
			for range 10 {
				batch.Step(0.001, 10)
			}

			m := batch.Metrics()
			Expect(m).To(HaveKey("energy_drift"))
			Expect(m["stability"]).To(Equal(1.0))
		})

		Context("with a trace stride", func() {
			BeforeEach(func() {
				cfg.TraceStride = 3
			})

			It("samples traces only every stride frames", func() {
				for range 10 {
					batch.Step(0.001, 1)
				}
				for _, p := range batch.Pendulums() {
					Expect(p.Trace.Len()).To(Equal(3))
				}
				Expect(batch.Energy().Len()).To(Equal(10))
			})
		})

		Context("with a small trace capacity", func() {
			BeforeEach(func() {
				cfg.TraceCapacity = 4
			})

			It("keeps only the newest tips", func() {
				for range 10 {
					batch.Step(0.001, 1)
				}
				p := batch.Pendulum(0)
				Expect(p.Trace.Len()).To(Equal(4))

				_, tip := physics.Tips(p)
				last, ok := p.Trace.Last()
				Expect(ok).To(BeTrue())
				Expect(last).To(Equal(tip))
			})
		})

		It("reports non-finite instances without panicking", func() {
			p := batch.Pendulum(0)
			p.M1 = 0
			p.A1, p.A2 = 0.3, 0.3

			Expect(batch.Check()).To(Succeed())

			snap := batch.Step(0.001, 1)
			Expect(snap.Invalid).To(BeNumerically(">=", 1))
			Expect(p.IsValid()).To(BeFalse())

			err := batch.Check()
			Expect(err).To(MatchError(dynamo.ErrInvalidState))
			var stepErr *dynamo.StepError
			Expect(errors.As(err, &stepErr)).To(BeTrue())
			Expect(stepErr.Index).To(Equal(0))
			Expect(stepErr.Frame).To(Equal(uint64(1)))
		})
	})

	Describe("run state", func() {
		It("does nothing while paused", func() {
			batch.Step(0.001, 10)
			before := batch.Pendulum(0).Clone()

			Expect(batch.Toggle()).To(BeFalse())
			snap := batch.Step(0.001, 10)

			Expect(snap.Advanced).To(BeFalse())
			Expect(snap.Frame).To(Equal(uint64(1)))
			Expect(batch.Pendulum(0).A1).To(Equal(before.A1))
			Expect(batch.Pendulum(0).Trace.Len()).To(Equal(before.Trace.Len()))
			Expect(batch.Energy().Len()).To(Equal(1))

			Expect(batch.Toggle()).To(BeTrue())
			Expect(batch.Step(0.001, 10).Advanced).To(BeTrue())
		})
	})

	Describe("Reset", func() {
		It("restores the canonical state", func() {
			for range 20 {
				batch.Step(0.001, 10)
			}

			batch.Reset(dynamo.NewSampler(7))

			Expect(batch.Frame()).To(BeZero())
			Expect(batch.Energy().Len()).To(BeZero())

			first := batch.Pendulum(0)
			for i, p := range batch.Pendulums() {
				Expect(p.A1V).To(BeZero())
				Expect(p.A2V).To(BeZero())
				Expect(p.Trace.Len()).To(BeZero())
				Expect(p.R1 + p.R2).To(BeNumerically("~", cfg.TotalLength, 1e-12))
				Expect(p.R1).To(BeNumerically(">=", cfg.MinLengthFrac*cfg.TotalLength))
				Expect(p.R1).To(BeNumerically("<=", cfg.MaxLengthFrac*cfg.TotalLength))
				Expect(p.M1).To(BeNumerically(">=", cfg.MassMin))
				Expect(p.M2).To(BeNumerically("<=", cfg.MassMax))
				Expect(p.A1).To(BeNumerically("~", first.A1+float64(i)*cfg.AngleOffset, 1e-12))
				Expect(p.A2).To(Equal(first.A2))
			}
		})

		It("takes every draw from the injected sampler", func() {
			lower := dynamo.SamplerFunc(func(lo, hi float64) float64 { return lo })
			batch.Reset(lower)

			p := batch.Pendulum(0)
			Expect(p.R1).To(Equal(cfg.MinLengthFrac * cfg.TotalLength))
			Expect(p.M1).To(Equal(cfg.MassMin))
			Expect(p.M2).To(Equal(cfg.MassMin))
			Expect(p.A1).To(Equal(cfg.AngleMin))
			Expect(p.A2).To(Equal(cfg.AngleMin))
		})

		It("is reproducible for equal seeds", func() {
			batch.Reset(dynamo.NewSampler(42))
			a := batch.Pendulum(0).Clone()
			batch.Reset(dynamo.NewSampler(42))
			b := batch.Pendulum(0)

			Expect([]float64{b.R1, b.M1, b.M2, b.A1, b.A2}).To(Equal([]float64{a.R1, a.M1, a.M2, a.A1, a.A2}))
		})
	})

	Describe("ClearTraces", func() {
		It("empties traces and keeps the dynamics", func() {
			for range 5 {
				batch.Step(0.001, 10)
			}
			p := batch.Pendulum(2)
			a1, v1 := p.A1, p.A1V

			batch.ClearTraces()

			Expect(p.Trace.Len()).To(BeZero())
			Expect(p.A1).To(Equal(a1))
			Expect(p.A1V).To(Equal(v1))
		})
	})

	Describe("parameter handles", func() {
		DescribeTable("clamps edits to the configured limits",
			func(name string, value, want float64) {
				got, err := batch.SetParam(name, value)
				Expect(err).NotTo(HaveOccurred())
				Expect(got).To(Equal(want))
				for _, p := range batch.Pendulums() {
					Expect(p.GetParams()[name]).To(Equal(want))
				}
				v, ok := batch.Param(name)
				Expect(ok).To(BeTrue())
				Expect(v).To(Equal(want))
			},
			Entry("long arm", "r1", 1000.0, 500.0),
			Entry("short arm", "r2", 0.0, 100.0),
			Entry("light bob", "m1", -5.0, 10.0),
			Entry("heavy bob", "m2", 250.0, 100.0),
			Entry("in range", "r1", 300.0, 300.0),
			Entry("gravity", "g", 80.0, 50.0),
		)

		It("rejects unknown names and NaN", func() {
			_, err := batch.SetParam("length", 1)
			Expect(err).To(MatchError(dynamo.ErrUnknownParam))

			_, err = batch.SetParam("m1", math.NaN())
			Expect(err).To(MatchError(dynamo.ErrParameterBounds))
		})

		It("clamps the origin to the window", func() {
			got := batch.SetOrigin(dynamo.Vec2{X: 900, Y: -900}, dynamo.Vec2{X: 1000, Y: 800})
			Expect(got).To(Equal(dynamo.Vec2{X: 500, Y: -400}))
			for _, p := range batch.Pendulums() {
				Expect(p.Origin).To(Equal(got))
			}

			got = batch.SetOrigin(dynamo.Vec2{X: 10, Y: 20}, dynamo.Vec2{X: 1000, Y: 800})
			Expect(got).To(Equal(dynamo.Vec2{X: 10, Y: 20}))
		})
	})

	Describe("chaos metric", func() {
		Context("with a single pendulum", func() {
			BeforeEach(func() {
				cfg = unitConfig(1)
			})

			It("is undefined", func() {
				snap := batch.Step(0.001, 10)
				Expect(snap.ChaosDefined).To(BeFalse())
				Expect(snap.Chaos).To(BeZero())
			})
		})

		Context("with two nearly identical pendulums", func() {
			BeforeEach(func() {
				cfg = unitConfig(2)
				cfg.AngleOffset = 1e-6
			})

			It("starts near zero and grows", func() {
				initial := batch.Snapshot()
				Expect(initial.ChaosDefined).To(BeTrue())
				Expect(initial.Chaos).To(BeNumerically("<", 1e-6))

				var snap sim.Snapshot
				for range 5000 {
					snap = batch.Step(0.001, 20)
				}

				Expect(snap.Invalid).To(BeZero())
				Expect(snap.Chaos).To(BeNumerically(">=", 0.01))
			})
		})
	})
})
