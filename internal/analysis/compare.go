package analysis

import (
	"fmt"
	"time"

	"github.com/san-kum/dpsim/internal/physics"
)

// StepperReport is the outcome of running one integrator.
type StepperReport struct {
	Name    string
	A1, A2  float64
	Energy  Summary
	Elapsed time.Duration
}

// CompareSteppers runs a copy of p with each named integrator for frames
// steps of dt and summarizes the total energy seen along the way.
func CompareSteppers(p *physics.DoublePendulum, names []string, dt float64, substeps, frames int) ([]StepperReport, error) {
	reports := make([]StepperReport, 0, len(names))

	for _, name := range names {
		step, ok := physics.Steppers[name]
		if !ok {
			return nil, fmt.Errorf("unknown integrator: %s", name)
		}

		x := p.Clone()
		x.Trace = nil
		energy := make([]float64, 0, frames+1)
		energy = append(energy, physics.TotalEnergy(x))

		start := time.Now()
		for i := 0; i < frames; i++ {
			step(x, dt, substeps)
			energy = append(energy, physics.TotalEnergy(x))
		}

		reports = append(reports, StepperReport{
			Name:    name,
			A1:      x.A1,
			A2:      x.A2,
			Energy:  Summarize(energy),
			Elapsed: time.Since(start),
		})
	}
	return reports, nil
}
