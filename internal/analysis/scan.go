package analysis

import (
	"math"

	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/physics"
)

// ScanPoint is the divergence reached for one value of the swept parameter.
type ScanPoint struct {
	Param      float64
	Divergence float64
}

// ScanConfig describes a divergence sweep. Param is either a coefficient
// name accepted by SetParam or "a1"/"a2" for the initial angles.
type ScanConfig struct {
	Param    string
	Min, Max float64
	Steps    int

	Offset   float64 // a1 offset of the shadow pendulum
	Dt       float64
	Substeps int
	Frames   int
}

// DivergenceScan sweeps cfg.Param over [Min, Max] and, for every value, runs
// base alongside a copy offset by cfg.Offset. Sweep points are independent
// and run in parallel. Invalid parameter values yield NaN.
func DivergenceScan(base *physics.DoublePendulum, cfg ScanConfig) []ScanPoint {
	steps := cfg.Steps
	if steps < 2 {
		steps = 2
	}
	stride := (cfg.Max - cfg.Min) / float64(steps-1)

	points := make([]ScanPoint, steps)
	dynamo.ParallelFor(steps, 1, func(start, end int) {
		for i := start; i < end; i++ {
			param := cfg.Min + float64(i)*stride
			points[i] = ScanPoint{Param: param, Divergence: scanOne(base, cfg, param)}
		}
	})

	return points
}

func scanOne(base *physics.DoublePendulum, cfg ScanConfig, param float64) float64 {
	a := base.Clone()
	a.Trace = nil

	switch cfg.Param {
	case "a1":
		a.A1 = param
	case "a2":
		a.A2 = param
	default:
		if err := a.SetParam(cfg.Param, param); err != nil {
			return math.NaN()
		}
	}

	b := a.Clone()
	b.A1 += cfg.Offset

	for f := 0; f < cfg.Frames; f++ {
		physics.Advance(a, cfg.Dt, cfg.Substeps)
		physics.Advance(b, cfg.Dt, cfg.Substeps)
	}

	d, _ := Divergence([]*physics.DoublePendulum{a, b})
	return d
}
