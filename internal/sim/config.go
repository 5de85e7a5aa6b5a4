package sim

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/metrics"
	"github.com/san-kum/dpsim/internal/physics"
)

// DefaultTimeScale is the simulation speed factor: one second of host time
// advances the pendulums by ten time units. It is a presentation choice and
// deliberately kept out of the gravitational constant.
const DefaultTimeScale = 10.0

// DefaultSubsteps is the number of integrator sub-steps per frame.
const DefaultSubsteps = 100

// DefaultAngleOffset separates neighbouring instances of a batch.
const DefaultAngleOffset = 1e-6

type Config struct {
	// Size is the number of pendulums; fixed for the lifetime of the batch.
	Size int

	// Initial coefficients and angles of every instance.
	R1, R2  float64
	M1, M2  float64
	A1, A2  float64
	Gravity float64
	Origin  dynamo.Vec2

	TraceCapacity  int
	TraceStride    int // frames between trace samples
	EnergyCapacity int

	TimeScale   float64
	AngleOffset float64 // instance i starts with a1 + i*AngleOffset

	// Reset draws r1 = frac*TotalLength with frac in [MinLengthFrac,
	// MaxLengthFrac] and r2 = TotalLength-r1.
	TotalLength                  float64
	MinLengthFrac, MaxLengthFrac float64
	MassMin, MassMax             float64
	AngleMin, AngleMax           float64

	// Limits clamps values written through SetParam.
	Limits physics.Limits

	Logger *slog.Logger
}

func DefaultConfig() Config {
	return Config{
		Size:           1,
		R1:             physics.DefaultR1,
		R2:             physics.DefaultR2,
		M1:             physics.DefaultM1,
		M2:             physics.DefaultM2,
		A1:             physics.DefaultA1,
		A2:             physics.DefaultA2,
		Gravity:        physics.DefaultGravity,
		Origin:         dynamo.Vec2{X: 0, Y: 200},
		TraceCapacity:  physics.DefaultTraceCapacity,
		TraceStride:    1,
		EnergyCapacity: metrics.DefaultHistoryCapacity,
		TimeScale:      DefaultTimeScale,
		AngleOffset:    DefaultAngleOffset,
		TotalLength:    physics.DefaultR1 + physics.DefaultR2,
		MinLengthFrac:  0.3,
		MaxLengthFrac:  0.7,
		MassMin:        10,
		MassMax:        100,
		AngleMin:       math.Pi / 2,
		AngleMax:       math.Pi,
		Limits:         physics.DefaultLimits,
	}
}

func (c Config) validate() error {
	if c.Size < 1 {
		return fmt.Errorf("size %d: %w", c.Size, dynamo.ErrEmptyBatch)
	}

	positive := []struct {
		name  string
		value float64
	}{
		{"r1", c.R1},
		{"r2", c.R2},
		{"m1", c.M1},
		{"m2", c.M2},
		{"time_scale", c.TimeScale},
		{"total_length", c.TotalLength},
		{"mass_min", c.MassMin},
	}
	for _, p := range positive {
		if !(p.value > 0) || math.IsInf(p.value, 0) {
			return fmt.Errorf("%s=%v must be positive: %w", p.name, p.value, dynamo.ErrParameterBounds)
		}
	}

	if c.Gravity < 0 || math.IsNaN(c.Gravity) {
		return fmt.Errorf("gravity=%v must not be negative: %w", c.Gravity, dynamo.ErrParameterBounds)
	}
	if c.TraceCapacity < 1 || c.EnergyCapacity < 1 {
		return fmt.Errorf("capacities %d/%d must be positive: %w", c.TraceCapacity, c.EnergyCapacity, dynamo.ErrParameterBounds)
	}
	if c.TraceStride < 1 {
		return fmt.Errorf("trace stride %d must be positive: %w", c.TraceStride, dynamo.ErrParameterBounds)
	}
	if c.MinLengthFrac <= 0 || c.MaxLengthFrac >= 1 || c.MinLengthFrac > c.MaxLengthFrac {
		return fmt.Errorf("length fractions [%v, %v] must lie inside (0, 1): %w", c.MinLengthFrac, c.MaxLengthFrac, dynamo.ErrParameterBounds)
	}
	if c.MassMin > c.MassMax {
		return fmt.Errorf("mass range [%v, %v]: %w", c.MassMin, c.MassMax, dynamo.ErrParameterBounds)
	}
	if c.AngleMin > c.AngleMax {
		return fmt.Errorf("angle range [%v, %v]: %w", c.AngleMin, c.AngleMax, dynamo.ErrParameterBounds)
	}
	return nil
}
