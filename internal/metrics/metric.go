// Package metrics tracks energy and stability diagnostics of pendulums.
package metrics

import "github.com/san-kum/dpsim/internal/physics"

// Metric accumulates a scalar over observed pendulum states.
type Metric interface {
	Name() string
	Observe(p *physics.DoublePendulum)
	Value() float64
	Reset()
}
