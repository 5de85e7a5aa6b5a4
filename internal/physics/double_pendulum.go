package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/ring"
)

const (
	DefaultR1      = 250.0
	DefaultR2      = 240.0
	DefaultM1      = 80.0
	DefaultM2      = 40.0
	DefaultGravity = 10.0
	DefaultA1      = math.Pi/2 + 0.1
	DefaultA2      = math.Pi/2 + 0.2

	DefaultTraceCapacity = 5000
)

var _ dynamo.Configurable = (*DoublePendulum)(nil)

// DoublePendulum is the state and coefficients of one double pendulum.
// Lengths r1, r2 and masses m1, m2 must be positive.
type DoublePendulum struct {
	Origin dynamo.Vec2

	R1, R2   float64
	M1, M2   float64
	A1, A2   float64
	A1V, A2V float64
	G        float64

	Trace *ring.Buffer[dynamo.Vec2]

	// ID tags the pendulum for renderers; physics never reads it.
	ID int
}

// NewDoublePendulum returns a pendulum at rest with the default coefficients,
// both arms raised just past horizontal.
func NewDoublePendulum(traceCapacity int) *DoublePendulum {
	return &DoublePendulum{
		Origin: dynamo.Vec2{X: 0, Y: 200},
		R1:     DefaultR1, R2: DefaultR2,
		M1: DefaultM1, M2: DefaultM2,
		A1: DefaultA1, A2: DefaultA2,
		G:     DefaultGravity,
		Trace: ring.New[dynamo.Vec2](traceCapacity),
	}
}

// Clone returns an independent deep copy, trace included.
func (p *DoublePendulum) Clone() *DoublePendulum {
	c := *p
	if p.Trace != nil {
		c.Trace = ring.New[dynamo.Vec2](p.Trace.Cap())
		for _, pt := range p.Trace.All() {
			c.Trace.Push(pt)
		}
	}
	return &c
}

// Tips returns the positions of the inner and outer bob.
func Tips(p *DoublePendulum) (bob1, bob2 dynamo.Vec2) {
	bob1 = dynamo.Vec2{
		X: p.Origin.X - p.R1*math.Sin(p.A1),
		Y: p.Origin.Y - p.R1*math.Cos(p.A1),
	}
	bob2 = dynamo.Vec2{
		X: bob1.X - p.R2*math.Sin(p.A2),
		Y: bob1.Y - p.R2*math.Cos(p.A2),
	}
	return bob1, bob2
}

// SampleTrace pushes the current outer tip onto the trace.
func (p *DoublePendulum) SampleTrace() {
	if p.Trace == nil {
		return
	}
	_, tip := Tips(p)
	p.Trace.Push(tip)
}

// IsValid reports whether every dynamic quantity is finite.
func (p *DoublePendulum) IsValid() bool {
	for _, v := range [...]float64{p.A1, p.A2, p.A1V, p.A2V} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (p *DoublePendulum) GetParams() map[string]float64 {
	return map[string]float64{
		"r1": p.R1,
		"r2": p.R2,
		"m1": p.M1,
		"m2": p.M2,
		"g":  p.G,
	}
}

// SetParam writes one coefficient. Lengths and masses must be positive and
// gravity non-negative; the new value is used from the next Advance on.
func (p *DoublePendulum) SetParam(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%s=%v: %w", name, value, dynamo.ErrParameterBounds)
	}

	switch name {
	case "r1", "r2", "m1", "m2":
		if value <= 0 {
			return fmt.Errorf("%s=%v: %w", name, value, dynamo.ErrParameterBounds)
		}
	case "g":
		if value < 0 {
			return fmt.Errorf("%s=%v: %w", name, value, dynamo.ErrParameterBounds)
		}
	default:
		return fmt.Errorf("%q: %w", name, dynamo.ErrUnknownParam)
	}

	switch name {
	case "r1":
		p.R1 = value
	case "r2":
		p.R2 = value
	case "m1":
		p.M1 = value
	case "m2":
		p.M2 = value
	case "g":
		p.G = value
	}
	return nil
}
