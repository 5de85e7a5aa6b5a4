package metrics

import (
	"math"

	"github.com/san-kum/dpsim/internal/physics"
)

// Stability is the fraction of observations with a finite state whose
// angular velocities stay under threshold. 1.0 means never unstable.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(p *physics.DoublePendulum) {
	s.samples++
	if !p.IsValid() || math.Abs(p.A1V) > s.threshold || math.Abs(p.A2V) > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
