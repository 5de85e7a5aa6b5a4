package dynamo

import (
	"math"
	"math/rand/v2"
)

// Vec2 is a point in the simulation plane, y axis pointing up.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(w Vec2) Vec2 { return Vec2{v.X + w.X, v.Y + w.Y} }
func (v Vec2) Sub(w Vec2) Vec2 { return Vec2{v.X - w.X, v.Y - w.Y} }

func (v Vec2) Norm() float64 {
	return math.Hypot(v.X, v.Y)
}

func (v Vec2) IsValid() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// Sampler is the random capability handed to resets.
type Sampler interface {
	// Uniform returns a value drawn uniformly from [lo, hi).
	Uniform(lo, hi float64) float64
}

type randSampler struct {
	r *rand.Rand
}

// NewSampler returns a PCG-backed Sampler. Equal seeds give equal draws.
func NewSampler(seed uint64) Sampler {
	return &randSampler{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *randSampler) Uniform(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + s.r.Float64()*(hi-lo)
}

// SamplerFunc adapts a plain function to Sampler.
type SamplerFunc func(lo, hi float64) float64

func (f SamplerFunc) Uniform(lo, hi float64) float64 { return f(lo, hi) }

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}
