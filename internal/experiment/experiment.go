// Package experiment runs batches headless, alone or as concurrent sweeps.
package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/dpsim/internal/config"
	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/sim"
	"github.com/san-kum/dpsim/internal/storage"
)

// cancelCheckInterval is how many frames run between context checks.
const cancelCheckInterval = 64

type Result struct {
	Meta    storage.RunMetadata
	Samples []storage.Sample
	// Trace is the primary pendulum's trace after the last frame.
	Trace []dynamo.Vec2
	Final sim.Snapshot
}

type Experiment struct {
	name     string
	cfg      *config.Config
	registry *Registry
	logger   *slog.Logger
}

func New(name string, cfg *config.Config, registry *Registry, logger *slog.Logger) *Experiment {
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Experiment{
		name:     name,
		cfg:      cfg,
		registry: registry,
		logger:   logger.With("run", name),
	}
}

// Run steps a fresh batch for the configured number of frames, recording
// one sample per frame.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	cfg := e.cfg
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bc := cfg.BatchConfig()
	bc.Logger = e.logger
	batch, err := sim.New(bc)
	if err != nil {
		return nil, err
	}

	if cfg.Randomize {
		batch.Reset(dynamo.NewSampler(cfg.Seed))
	}

	for _, name := range cfg.Metrics {
		m, err := e.registry.GetMetric(name)
		if err != nil {
			return nil, err
		}
		batch.AddMetric(m)
	}

	e.logger.Info("run started", "size", cfg.Size, "frames", cfg.Frames, "substeps", cfg.Substeps)

	samples := make([]storage.Sample, 0, cfg.Frames)
	var snap sim.Snapshot
	for f := 0; f < cfg.Frames; f++ {
		if f%cancelCheckInterval == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		snap = batch.Step(cfg.Dt, cfg.Substeps)
		samples = append(samples, sample(batch, snap, cfg.Dt*cfg.TimeScale))

		if cfg.FailOnInvalid && snap.Invalid > 0 {
			return nil, batch.Check()
		}
	}

	primary := batch.Pendulum(0)
	result := &Result{
		Meta: storage.RunMetadata{
			Name:      e.name,
			Seed:      cfg.Seed,
			Size:      cfg.Size,
			Frames:    cfg.Frames,
			Dt:        cfg.Dt,
			Substeps:  cfg.Substeps,
			TimeScale: cfg.TimeScale,
			Params:    primary.GetParams(),
			Metrics:   batch.Metrics(),
		},
		Samples: samples,
		Trace:   primary.Trace.Slice(),
		Final:   snap,
	}
	if snap.ChaosDefined {
		result.Meta.Metrics["chaos"] = snap.Chaos
	}

	if snap.Invalid > 0 {
		e.logger.Warn("run finished with non-finite pendulums", "invalid", snap.Invalid)
	} else {
		e.logger.Info("run finished", "total_energy", snap.Total, "chaos", snap.Chaos)
	}
	return result, nil
}

func sample(batch *sim.Batch, snap sim.Snapshot, frameTime float64) storage.Sample {
	p := batch.Pendulum(0)
	chaos := math.NaN()
	if snap.ChaosDefined {
		chaos = snap.Chaos
	}
	return storage.Sample{
		Frame:     snap.Frame,
		Time:      float64(snap.Frame) * frameTime,
		A1:        p.A1,
		A2:        p.A2,
		A1V:       p.A1V,
		A2V:       p.A2V,
		Kinetic:   snap.Kinetic,
		Potential: snap.Potential,
		Chaos:     chaos,
	}
}

// Save stores the result and returns the run id.
func (r *Result) Save(st *storage.Store) (string, error) {
	id, err := st.Save(r.Meta, r.Samples, r.Trace)
	if err != nil {
		return "", fmt.Errorf("save %s: %w", r.Meta.Name, err)
	}
	r.Meta.ID = id
	return id, nil
}
