package analysis

import (
	"math"

	"github.com/san-kum/dpsim/internal/physics"
)

// ConvergencePoint is the state reached with one sub-step count. Delta is
// the angle-space distance to the previous row; the first row has Delta 0.
type ConvergencePoint struct {
	Substeps int
	A1, A2   float64
	Delta    float64
}

// SubstepConvergence advances a copy of p by totalDt once per entry of
// substeps and reports how far consecutive results move apart. Delta should
// shrink as the sub-step count grows.
func SubstepConvergence(p *physics.DoublePendulum, totalDt float64, substeps []int) []ConvergencePoint {
	points := make([]ConvergencePoint, 0, len(substeps))

	for i, n := range substeps {
		x := p.Clone()
		x.Trace = nil
		physics.Advance(x, totalDt, n)

		pt := ConvergencePoint{Substeps: n, A1: x.A1, A2: x.A2}
		if i > 0 {
			prev := points[i-1]
			pt.Delta = math.Hypot(x.A1-prev.A1, x.A2-prev.A2)
		}
		points = append(points, pt)
	}
	return points
}
