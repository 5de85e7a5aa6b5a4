package physics

import "math"

// Accelerations returns the angular accelerations of both arms from the
// closed-form Lagrangian equations of motion.
func Accelerations(p *DoublePendulum) (a1acc, a2acc float64) {
	return accelerations(p, p.A1, p.A2, p.A1V, p.A2V)
}

// accelerations evaluates the equations of motion with p's coefficients at
// an arbitrary state.
func accelerations(p *DoublePendulum, a1, a2, v1, v2 float64) (a1acc, a2acc float64) {
	m1, m2, r1, r2, g := p.M1, p.M2, p.R1, p.R2, p.G

	sinD := math.Sin(a1 - a2)
	cosD := math.Cos(a1 - a2)

	// shared by both arms; vanishes only for degenerate mass ratios
	den := 2*m1 + m2 - m2*math.Cos(2*a1-2*a2)

	num1 := -g * (2*m1 + m2) * math.Sin(a1)
	num2 := -m2 * g * math.Sin(a1-2*a2)
	num3 := -2 * sinD * m2
	num4 := v2*v2*r2 + v1*v1*r1*cosD
	a1acc = (num1 + num2 + num3*num4) / (r1 * den)

	a2acc = 2 * sinD * (v1*v1*r1*(m1+m2) + g*(m1+m2)*math.Cos(a1) + v2*v2*r2*m2*cosD) / (r2 * den)

	return a1acc, a2acc
}

// Advance integrates p over totalDt in substeps equal semi-implicit Euler
// steps: velocities are updated from the accelerations first, then angles
// from the updated velocities. Values of substeps below one count as one.
func Advance(p *DoublePendulum, totalDt float64, substeps int) {
	if substeps < 1 {
		substeps = 1
	}
	h := totalDt / float64(substeps)

	for i := 0; i < substeps; i++ {
		acc1, acc2 := Accelerations(p)

		p.A1V += acc1 * h
		p.A2V += acc2 * h

		p.A1 += p.A1V * h
		p.A2 += p.A2V * h
	}
}
