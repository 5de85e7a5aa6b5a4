package experiment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/san-kum/dpsim/internal/config"
	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/storage"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func shortConfig(size int) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Size = size
	cfg.Frames = 50
	cfg.Substeps = 10
	cfg.Trace.Capacity = 20
	return cfg
}

func TestExperimentRun(t *testing.T) {
	cfg := shortConfig(2)

	r, err := New("pair", cfg, nil, quietLogger()).Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(r.Samples) != 50 {
		t.Fatalf("expected 50 samples, got %d", len(r.Samples))
	}
	if len(r.Trace) != 20 {
		t.Errorf("expected trace capped at 20, got %d", len(r.Trace))
	}

	last := r.Samples[49]
	if last.Frame != 50 {
		t.Errorf("expected frame 50, got %d", last.Frame)
	}
	if want := 50 * cfg.Dt * cfg.TimeScale; math.Abs(last.Time-want) > 1e-9 {
		t.Errorf("expected time %f, got %f", want, last.Time)
	}
	if math.IsNaN(last.Chaos) {
		t.Error("expected defined chaos for a pair")
	}

	for _, name := range []string{"energy_drift", "stability", "chaos"} {
		if _, ok := r.Meta.Metrics[name]; !ok {
			t.Errorf("metric %s missing", name)
		}
	}
	if r.Meta.Params["r1"] != cfg.Pendulum.R1 {
		t.Errorf("expected r1 %f, got %f", cfg.Pendulum.R1, r.Meta.Params["r1"])
	}
}

func TestExperimentSingleHasNoChaos(t *testing.T) {
	r, err := New("single", shortConfig(1), nil, quietLogger()).Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !math.IsNaN(r.Samples[0].Chaos) {
		t.Errorf("expected NaN chaos, got %f", r.Samples[0].Chaos)
	}
	if _, ok := r.Meta.Metrics["chaos"]; ok {
		t.Error("chaos metric should be absent")
	}
}

func TestExperimentRandomizeIsSeeded(t *testing.T) {
	run := func(seed uint64) float64 {
		cfg := shortConfig(1)
		cfg.Randomize = true
		cfg.Seed = seed
		r, err := New("seeded", cfg, nil, quietLogger()).Run(context.Background())
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		return r.Meta.Params["m1"]
	}

	if run(3) != run(3) {
		t.Error("equal seeds should give equal parameters")
	}
	if run(3) == run(4) {
		t.Error("different seeds should give different parameters")
	}
}

func TestExperimentErrors(t *testing.T) {
	cfg := shortConfig(1)
	cfg.Dt = 0
	if _, err := New("bad", cfg, nil, quietLogger()).Run(context.Background()); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}

	cfg = shortConfig(0)
	if _, err := New("empty", cfg, nil, quietLogger()).Run(context.Background()); !errors.Is(err, dynamo.ErrEmptyBatch) {
		t.Errorf("expected ErrEmptyBatch, got %v", err)
	}

	cfg = shortConfig(1)
	cfg.Metrics = []string{"nonexistent"}
	if _, err := New("metric", cfg, nil, quietLogger()).Run(context.Background()); err == nil {
		t.Error("expected error for unknown metric")
	}
}

func TestExperimentInvalidState(t *testing.T) {
	cfg := shortConfig(2)
	cfg.Pendulum.A1 = math.NaN()

	r, err := New("nan", cfg, nil, quietLogger()).Run(context.Background())
	if err != nil {
		t.Fatalf("non-finite state should not fail by default: %v", err)
	}
	if r.Final.Invalid != 2 {
		t.Errorf("expected 2 invalid pendulums, got %d", r.Final.Invalid)
	}

	cfg.FailOnInvalid = true
	_, err = New("nan", cfg, nil, quietLogger()).Run(context.Background())
	if !errors.Is(err, dynamo.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	var stepErr *dynamo.StepError
	if !errors.As(err, &stepErr) || stepErr.Frame != 1 || stepErr.Index != 0 {
		t.Errorf("expected step error at frame 1 pendulum 0, got %v", err)
	}
}

func TestExperimentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New("cancelled", shortConfig(1), nil, quietLogger()).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestResultSave(t *testing.T) {
	st := storage.New(t.TempDir(), quietLogger())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	r, err := New("saved", shortConfig(2), nil, quietLogger()).Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	id, err := r.Save(st)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if r.Meta.ID != id {
		t.Errorf("expected meta id %s, got %s", id, r.Meta.ID)
	}

	samples, err := st.LoadSeries(id)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(samples) != len(r.Samples) {
		t.Errorf("expected %d samples, got %d", len(r.Samples), len(samples))
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	names := r.ListMetrics()
	if len(names) != 2 || names[0] != "energy_drift" || names[1] != "stability" {
		t.Errorf("unexpected metrics %v", names)
	}

	m, err := r.GetMetric("stability")
	if err != nil || m.Name() != "stability" {
		t.Errorf("expected stability metric, got %v, %v", m, err)
	}
	if _, err := r.GetMetric("nonexistent"); err == nil {
		t.Error("expected error for nonexistent metric")
	}
}
