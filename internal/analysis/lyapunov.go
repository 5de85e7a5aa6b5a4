package analysis

import (
	"math"

	"github.com/san-kum/dpsim/internal/physics"
)

// LyapunovExponent estimates the largest Lyapunov exponent of p by the
// trajectory separation method. A positive value indicates chaos.
//
// Algorithm:
// 1. Run p and a copy with a1 perturbed by perturbation
// 2. After every step measure their separation d in (a1, a2, a1v, a2v)
// 3. Accumulate ln(d/d0) and pull the copy back to distance d0
// 4. λ ≈ Σ ln(d/d0) / t
func LyapunovExponent(p *physics.DoublePendulum, dt float64, substeps int, duration, perturbation float64) float64 {
	if dt <= 0 || duration <= 0 || perturbation <= 0 {
		return 0
	}

	x := p.Clone()
	xp := p.Clone()
	xp.A1 += perturbation
	d0 := perturbation

	sumLog := 0.0
	t := 0.0

	for t < duration {
		physics.Advance(x, dt, substeps)
		physics.Advance(xp, dt, substeps)
		t += dt

		da1, da2 := xp.A1-x.A1, xp.A2-x.A2
		dv1, dv2 := xp.A1V-x.A1V, xp.A2V-x.A2V
		sep := math.Sqrt(da1*da1 + da2*da2 + dv1*dv1 + dv2*dv2)

		if sep == 0 || math.IsNaN(sep) || math.IsInf(sep, 0) {
			continue
		}
		sumLog += math.Log(sep / d0)

		scale := d0 / sep
		xp.A1 = x.A1 + da1*scale
		xp.A2 = x.A2 + da2*scale
		xp.A1V = x.A1V + dv1*scale
		xp.A2V = x.A2V + dv2*scale
	}

	return sumLog / t
}
