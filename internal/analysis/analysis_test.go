package analysis

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/physics"
	"github.com/san-kum/dpsim/internal/ring"
)

func unitPendulum(a1, a2 float64) *physics.DoublePendulum {
	return &physics.DoublePendulum{
		R1: 1, R2: 1,
		M1: 1, M2: 1,
		A1: a1, A2: a2,
		G:     9.81,
		Trace: ring.New[dynamo.Vec2](8),
	}
}

func TestDivergence(t *testing.T) {
	ps := []*physics.DoublePendulum{
		unitPendulum(0.5, 0),
		unitPendulum(9, 0),
		unitPendulum(0.5+math.Pi, 0),
	}

	d, err := Divergence(ps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(d-1) > 1e-12 {
		t.Errorf("expected divergence 1, got %f", d)
	}
	if ps[0].A1 != 0.5 || ps[2].A1 != 0.5+math.Pi {
		t.Error("divergence mutated its input")
	}

	ps[0].A1, ps[2].A1 = 3, 1
	d, _ = Divergence(ps)
	if math.Abs(d-2/math.Pi) > 1e-12 {
		t.Errorf("expected symmetric divergence %f, got %f", 2/math.Pi, d)
	}
}

func TestDivergenceTooSmall(t *testing.T) {
	for _, n := range []int{0, 1} {
		ps := make([]*physics.DoublePendulum, n)
		for i := range ps {
			ps[i] = unitPendulum(0, 0)
		}
		if _, err := Divergence(ps); !errors.Is(err, dynamo.ErrBatchTooSmall) {
			t.Errorf("n=%d: expected ErrBatchTooSmall, got %v", n, err)
		}
	}
}

func TestLyapunovExponent(t *testing.T) {
	regular := LyapunovExponent(unitPendulum(0.05, 0.05), 0.01, 10, 20, 1e-8)
	chaotic := LyapunovExponent(unitPendulum(physics.DefaultA1, physics.DefaultA2), 0.01, 10, 20, 1e-8)

	if regular > 0.2 {
		t.Errorf("expected near-zero exponent for small swings, got %f", regular)
	}
	if chaotic < 0.3 || chaotic < 3*regular {
		t.Errorf("expected positive exponent for large swings, got %f (regular %f)", chaotic, regular)
	}
}

func TestLyapunovExponentInvalidInput(t *testing.T) {
	p := unitPendulum(1, 1)
	if got := LyapunovExponent(p, 0, 10, 1, 1e-8); got != 0 {
		t.Errorf("expected 0 for zero dt, got %f", got)
	}
	if got := LyapunovExponent(p, 0.01, 10, 1, 0); got != 0 {
		t.Errorf("expected 0 for zero perturbation, got %f", got)
	}
	if p.A1 != 1 {
		t.Error("estimate mutated its input")
	}
}

func TestDivergenceScan(t *testing.T) {
	base := unitPendulum(0.1, 0.1)
	points := DivergenceScan(base, ScanConfig{
		Param: "a1", Min: 0.1, Max: 0.5, Steps: 5,
		Offset: 1e-6, Dt: 0.01, Substeps: 5, Frames: 50,
	})

	if len(points) != 5 {
		t.Fatalf("expected 5 points, got %d", len(points))
	}
	if points[0].Param != 0.1 || math.Abs(points[4].Param-0.5) > 1e-12 {
		t.Errorf("unexpected sweep bounds: %f..%f", points[0].Param, points[4].Param)
	}
	for _, pt := range points {
		if math.IsNaN(pt.Divergence) || pt.Divergence > 1e-3 {
			t.Errorf("a1=%f: expected tiny divergence for small swings, got %f", pt.Param, pt.Divergence)
		}
	}
	if base.A1 != 0.1 {
		t.Error("scan mutated the base pendulum")
	}

	bad := DivergenceScan(base, ScanConfig{Param: "r1", Min: -2, Max: -1, Steps: 2, Dt: 0.01, Substeps: 1, Frames: 1})
	for _, pt := range bad {
		if !math.IsNaN(pt.Divergence) {
			t.Errorf("expected NaN for invalid length %f, got %f", pt.Param, pt.Divergence)
		}
	}
}

func TestDominantFrequency(t *testing.T) {
	const interval = 0.01
	data := make([]float64, 256)
	for i := range data {
		data[i] = math.Sin(2 * math.Pi * 5 * float64(i) * interval)
	}

	got := DominantFrequency(data, interval)
	if math.Abs(got-5) > 0.5 {
		t.Errorf("expected ~5 Hz, got %f", got)
	}

	if ps := PowerSpectrum(data); len(ps) != 128 {
		t.Errorf("expected 128 bins, got %d", len(ps))
	}
	if PowerSpectrum(nil) != nil {
		t.Error("expected nil spectrum for empty input")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{1, 2, 3, 4})

	if s.Mean != 2.5 || s.Min != 1 || s.Max != 4 {
		t.Errorf("unexpected summary: %+v", s)
	}
	if math.Abs(s.StdDev-1.2909944487358056) > 1e-12 {
		t.Errorf("expected sample stddev 1.291, got %f", s.StdDev)
	}
	if math.Abs(s.Band-1.2) > 1e-12 {
		t.Errorf("expected band 1.2, got %f", s.Band)
	}

	if (Summarize(nil) != Summary{}) {
		t.Error("expected zero summary for empty series")
	}
}

func TestPhasePortrait(t *testing.T) {
	p := unitPendulum(0.3, 0.3)

	points := GeneratePhasePortrait(p, Inner, 0.01, 10, 200)
	if len(points) != 200 {
		t.Fatalf("expected 200 points, got %d", len(points))
	}
	if p.A1 != 0.3 {
		t.Error("portrait mutated its input")
	}

	section := GeneratePoincareSection(p, 0.01, 10, 1000)
	if len(section) == 0 {
		t.Error("expected at least one crossing in ten seconds")
	}

	art := PointsToASCII(points, 40, 10)
	lines := strings.Split(strings.TrimRight(art, "\n"), "\n")
	if len(lines) != 10 {
		t.Errorf("expected 10 rows, got %d", len(lines))
	}
	if !strings.ContainsRune(art, '•') {
		t.Error("expected plotted points")
	}
	if PointsToASCII(nil, 10, 10) != "" {
		t.Error("expected empty plot for no points")
	}
}

func TestSubstepConvergence(t *testing.T) {
	p := unitPendulum(1.2, -0.4)
	points := SubstepConvergence(p, 0.5, []int{10, 20, 40, 80, 160})

	if len(points) != 5 {
		t.Fatalf("expected 5 points, got %d", len(points))
	}
	if points[0].Delta != 0 {
		t.Errorf("first row should have zero delta, got %g", points[0].Delta)
	}
	for i := 2; i < len(points); i++ {
		if points[i].Delta >= points[i-1].Delta {
			t.Errorf("delta grew from %g to %g at %d substeps", points[i-1].Delta, points[i].Delta, points[i].Substeps)
		}
	}
	if p.A1 != 1.2 {
		t.Error("convergence table mutated its input")
	}
}

func TestCompareSteppers(t *testing.T) {
	p := unitPendulum(0.3, 0.3)

	reports, err := CompareSteppers(p, []string{"euler", "rk4"}, 0.01, 10, 200)
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 2 || reports[0].Name != "euler" || reports[1].Name != "rk4" {
		t.Fatalf("unexpected reports: %+v", reports)
	}
	for _, r := range reports {
		if r.Energy.Band > 1e-2 {
			t.Errorf("%s: energy band %g for a gentle swing", r.Name, r.Energy.Band)
		}
	}
	if d := math.Hypot(reports[0].A1-reports[1].A1, reports[0].A2-reports[1].A2); d > 1e-2 {
		t.Errorf("integrators disagree by %g", d)
	}
	if p.A1 != 0.3 {
		t.Error("input pendulum was advanced")
	}

	if _, err := CompareSteppers(p, []string{"leapfrog"}, 0.01, 1, 1); err == nil {
		t.Error("expected error for unknown integrator")
	}
}
