package physics

// Stepper advances a pendulum over totalDt in substeps equal steps.
type Stepper func(p *DoublePendulum, totalDt float64, substeps int)

// Steppers names the available integrators. The simulator always uses
// "euler"; the others exist for accuracy comparisons.
var Steppers = map[string]Stepper{
	"euler": Advance,
	"rk4":   AdvanceRK4,
}

// state is (a1, a2, a1v, a2v).
type state [4]float64

func derive(p *DoublePendulum, s state) state {
	acc1, acc2 := accelerations(p, s[0], s[1], s[2], s[3])
	return state{s[2], s[3], acc1, acc2}
}

// axpy returns x + h*k.
func axpy(x state, h float64, k state) state {
	for i := range x {
		x[i] += h * k[i]
	}
	return x
}

// AdvanceRK4 integrates p with the classical fourth-order Runge-Kutta
// method. It is not symplectic: energy drifts slowly instead of oscillating.
func AdvanceRK4(p *DoublePendulum, totalDt float64, substeps int) {
	if substeps < 1 {
		substeps = 1
	}
	h := totalDt / float64(substeps)
	x := state{p.A1, p.A2, p.A1V, p.A2V}

	for i := 0; i < substeps; i++ {
		k1 := derive(p, x)
		k2 := derive(p, axpy(x, h/2, k1))
		k3 := derive(p, axpy(x, h/2, k2))
		k4 := derive(p, axpy(x, h, k3))

		for j := range x {
			x[j] += h / 6 * (k1[j] + 2*k2[j] + 2*k3[j] + k4[j])
		}
	}

	p.A1, p.A2, p.A1V, p.A2V = x[0], x[1], x[2], x[3]
}
