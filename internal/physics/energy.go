package physics

import "math"

// KineticEnergy of both bobs.
func KineticEnergy(p *DoublePendulum) float64 {
	r1, r2, v1, v2 := p.R1, p.R2, p.A1V, p.A2V
	ke1 := 0.5 * p.M1 * r1 * r1 * v1 * v1
	ke2 := 0.5 * p.M2 * (r1*r1*v1*v1 + r2*r2*v2*v2 + 2*r1*r2*v1*v2*math.Cos(p.A1-p.A2))
	return ke1 + ke2
}

// PotentialEnergy relative to both arms hanging straight down.
func PotentialEnergy(p *DoublePendulum) float64 {
	h1 := p.R1 * (1 - math.Cos(p.A1))
	h2 := p.R2 * (1 - math.Cos(p.A2))
	return p.M1*p.G*h1 + p.M2*p.G*(h1+h2)
}

func TotalEnergy(p *DoublePendulum) float64 {
	return KineticEnergy(p) + PotentialEnergy(p)
}
