// Package sim drives a batch of independent double pendulums frame by frame.
package sim

import (
	"log/slog"

	"github.com/san-kum/dpsim/internal/analysis"
	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/metrics"
	"github.com/san-kum/dpsim/internal/physics"
	"github.com/san-kum/dpsim/internal/ring"
)

// minChunk is the smallest number of pendulums handed to one worker.
const minChunk = 16

// Snapshot is the diagnostics of one frame.
type Snapshot struct {
	Frame uint64

	Kinetic   float64
	Potential float64
	Total     float64

	// Chaos is only meaningful when ChaosDefined is set, which needs at
	// least two pendulums.
	Chaos        float64
	ChaosDefined bool

	// Invalid counts pendulums whose state is no longer finite.
	Invalid int

	// Advanced is false when Step was called while paused.
	Advanced bool
}

// Batch owns N pendulums and the frame-level operations over them. It is
// driven by a single goroutine; Step fans the integration out internally.
type Batch struct {
	cfg       Config
	pendulums []*physics.DoublePendulum
	energy    *metrics.EnergyTracker
	metrics   []metrics.Metric
	logger    *slog.Logger

	running     bool
	frame       uint64
	warnedFrame uint64
}

func New(cfg Config) (*Batch, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	b := &Batch{
		cfg:       cfg,
		pendulums: make([]*physics.DoublePendulum, cfg.Size),
		energy:    metrics.NewEnergyTracker(cfg.EnergyCapacity),
		metrics:   make([]metrics.Metric, 0),
		logger:    logger.With("component", "batch"),
		running:   true,
	}

	for i := range b.pendulums {
		b.pendulums[i] = &physics.DoublePendulum{
			Origin: cfg.Origin,
			R1:     cfg.R1,
			R2:     cfg.R2,
			M1:     cfg.M1,
			M2:     cfg.M2,
			A1:     cfg.A1 + float64(i)*cfg.AngleOffset,
			A2:     cfg.A2,
			G:      cfg.Gravity,
			Trace:  ring.New[dynamo.Vec2](cfg.TraceCapacity),
			ID:     i,
		}
	}

	b.logger.Debug("batch created", "size", cfg.Size, "time_scale", cfg.TimeScale, "trace_stride", cfg.TraceStride)
	return b, nil
}

func (b *Batch) AddMetric(m metrics.Metric) { b.metrics = append(b.metrics, m) }

// Metrics returns the current value of every added metric by name.
func (b *Batch) Metrics() map[string]float64 {
	out := make(map[string]float64, len(b.metrics))
	for _, m := range b.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

// Step advances every pendulum by dt*TimeScale in substeps sub-steps and
// returns the resulting diagnostics. While paused it only reports.
func (b *Batch) Step(dt float64, substeps int) Snapshot {
	if !b.running {
		return b.Snapshot()
	}

	b.frame++
	sample := b.frame%uint64(b.cfg.TraceStride) == 0
	scaled := dt * b.cfg.TimeScale

	dynamo.ParallelFor(len(b.pendulums), minChunk, func(start, end int) {
		for _, p := range b.pendulums[start:end] {
			physics.Advance(p, scaled, substeps)
			if sample {
				p.SampleTrace()
			}
		}
	})

	primary := b.pendulums[0]
	b.energy.Record(primary)
	for _, m := range b.metrics {
		m.Observe(primary)
	}

	snap := b.Snapshot()
	snap.Advanced = true

	if snap.Invalid > 0 && b.warnedFrame == 0 {
		b.warnedFrame = b.frame
		b.logger.Warn("pendulum state became non-finite", "frame", b.frame, "invalid", snap.Invalid)
	}
	return snap
}

// Snapshot reports the diagnostics of the current state without advancing.
func (b *Batch) Snapshot() Snapshot {
	primary := b.pendulums[0]
	snap := Snapshot{
		Frame:     b.frame,
		Kinetic:   physics.KineticEnergy(primary),
		Potential: physics.PotentialEnergy(primary),
	}
	snap.Total = snap.Kinetic + snap.Potential

	if chaos, err := analysis.Divergence(b.pendulums); err == nil {
		snap.Chaos = chaos
		snap.ChaosDefined = true
	}

	for _, p := range b.pendulums {
		if !p.IsValid() {
			snap.Invalid++
		}
	}
	return snap
}

// Check returns a *dynamo.StepError wrapping dynamo.ErrInvalidState for the
// first pendulum whose state is no longer finite, or nil.
func (b *Batch) Check() error {
	for i, p := range b.pendulums {
		if !p.IsValid() {
			return &dynamo.StepError{Frame: b.frame, Index: i, Wrapped: dynamo.ErrInvalidState}
		}
	}
	return nil
}

// Reset draws fresh shared parameters from src and applies them to every
// instance, offsetting instance i's inner angle by i*AngleOffset. Velocities,
// traces, energy history and metrics are cleared. Gravity and origin are
// left as they are.
func (b *Batch) Reset(src dynamo.Sampler) {
	c := b.cfg

	r1 := src.Uniform(c.MinLengthFrac, c.MaxLengthFrac) * c.TotalLength
	r2 := c.TotalLength - r1
	m1 := src.Uniform(c.MassMin, c.MassMax)
	m2 := src.Uniform(c.MassMin, c.MassMax)
	a1 := src.Uniform(c.AngleMin, c.AngleMax)
	a2 := src.Uniform(c.AngleMin, c.AngleMax)

	for i, p := range b.pendulums {
		p.R1, p.R2 = r1, r2
		p.M1, p.M2 = m1, m2
		p.A1 = a1 + float64(i)*c.AngleOffset
		p.A2 = a2
		p.A1V, p.A2V = 0, 0
		p.Trace.Clear()
	}

	b.energy.Reset()
	for _, m := range b.metrics {
		m.Reset()
	}
	b.frame = 0
	b.warnedFrame = 0

	b.logger.Debug("batch reset", "r1", r1, "r2", r2, "m1", m1, "m2", m2, "a1", a1, "a2", a2)
}

// ClearTraces empties every trace and leaves the dynamics untouched.
func (b *Batch) ClearTraces() {
	for _, p := range b.pendulums {
		p.Trace.Clear()
	}
}

// Toggle switches between running and paused and reports the new state.
func (b *Batch) Toggle() bool {
	b.running = !b.running
	return b.running
}

func (b *Batch) Running() bool  { return b.running }
func (b *Batch) Len() int       { return len(b.pendulums) }
func (b *Batch) Frame() uint64  { return b.frame }
func (b *Batch) Config() Config { return b.cfg }

func (b *Batch) Pendulum(i int) *physics.DoublePendulum { return b.pendulums[i] }

// Pendulums returns the instances in index order. The slice is shared;
// callers must not hold it across Step.
func (b *Batch) Pendulums() []*physics.DoublePendulum { return b.pendulums }

func (b *Batch) Energy() *metrics.EnergyTracker { return b.energy }

// SetParam clamps value to the configured limits and writes it to every
// pendulum. It returns the value actually applied.
func (b *Batch) SetParam(name string, value float64) (float64, error) {
	value = b.cfg.Limits.Clamp(name, value)
	for _, p := range b.pendulums {
		if err := p.SetParam(name, value); err != nil {
			return 0, err
		}
	}
	return value, nil
}

// Param reads a coefficient of the primary pendulum.
func (b *Batch) Param(name string) (float64, bool) {
	v, ok := b.pendulums[0].GetParams()[name]
	return v, ok
}

// SetOrigin moves every anchor to origin, clamped to a window of the given
// extents centred on zero, and returns the applied origin.
func (b *Batch) SetOrigin(origin, extents dynamo.Vec2) dynamo.Vec2 {
	origin.X = clampAbs(origin.X, extents.X/2)
	origin.Y = clampAbs(origin.Y, extents.Y/2)
	for _, p := range b.pendulums {
		p.Origin = origin
	}
	return origin
}

func clampAbs(v, limit float64) float64 {
	if limit < 0 {
		limit = -limit
	}
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}
