package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/metrics"
	"github.com/san-kum/dpsim/internal/physics"
	"github.com/san-kum/dpsim/internal/sim"
)

const (
	DefaultDt     = 1.0 / 60
	DefaultFrames = 3600
	DefaultSeed   = 1
)

type Config struct {
	Size        int     `yaml:"size"`
	Frames      int     `yaml:"frames"`
	Dt          float64 `yaml:"dt"`
	Substeps    int     `yaml:"substeps"`
	TimeScale   float64 `yaml:"time_scale"`
	AngleOffset float64 `yaml:"angle_offset"`
	Seed        uint64  `yaml:"seed"`

	// Randomize resets the batch from the seeded sampler before running.
	Randomize bool `yaml:"randomize"`

	// FailOnInvalid aborts headless runs once any pendulum is non-finite.
	FailOnInvalid bool `yaml:"fail_on_invalid"`

	// Metrics names the diagnostics recorded for headless runs.
	Metrics []string `yaml:"metrics"`

	Pendulum PendulumConfig `yaml:"pendulum"`
	Trace    TraceConfig    `yaml:"trace"`
	Reset    ResetConfig    `yaml:"reset"`
}

type PendulumConfig struct {
	R1      float64 `yaml:"r1"`
	R2      float64 `yaml:"r2"`
	M1      float64 `yaml:"m1"`
	M2      float64 `yaml:"m2"`
	A1      float64 `yaml:"a1"`
	A2      float64 `yaml:"a2"`
	G       float64 `yaml:"g"`
	OriginX float64 `yaml:"origin_x"`
	OriginY float64 `yaml:"origin_y"`
}

type TraceConfig struct {
	Capacity       int `yaml:"capacity"`
	Stride         int `yaml:"stride"`
	EnergyCapacity int `yaml:"energy_capacity"`
}

type ResetConfig struct {
	TotalLength   float64 `yaml:"total_length"`
	MinLengthFrac float64 `yaml:"min_length_frac"`
	MaxLengthFrac float64 `yaml:"max_length_frac"`
	MassMin       float64 `yaml:"mass_min"`
	MassMax       float64 `yaml:"mass_max"`
	AngleMin      float64 `yaml:"angle_min"`
	AngleMax      float64 `yaml:"angle_max"`
}

func DefaultConfig() *Config {
	b := sim.DefaultConfig()
	return &Config{
		Size:        b.Size,
		Frames:      DefaultFrames,
		Dt:          DefaultDt,
		Substeps:    sim.DefaultSubsteps,
		TimeScale:   b.TimeScale,
		AngleOffset: b.AngleOffset,
		Seed:        DefaultSeed,
		Metrics:     []string{"energy_drift", "stability"},
		Pendulum: PendulumConfig{
			R1:      physics.DefaultR1,
			R2:      physics.DefaultR2,
			M1:      physics.DefaultM1,
			M2:      physics.DefaultM2,
			A1:      physics.DefaultA1,
			A2:      physics.DefaultA2,
			G:       physics.DefaultGravity,
			OriginX: b.Origin.X,
			OriginY: b.Origin.Y,
		},
		Trace: TraceConfig{
			Capacity:       physics.DefaultTraceCapacity,
			Stride:         1,
			EnergyCapacity: metrics.DefaultHistoryCapacity,
		},
		Reset: ResetConfig{
			TotalLength:   b.TotalLength,
			MinLengthFrac: b.MinLengthFrac,
			MaxLengthFrac: b.MaxLengthFrac,
			MassMin:       b.MassMin,
			MassMax:       b.MassMax,
			AngleMin:      b.AngleMin,
			AngleMax:      b.AngleMax,
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto overlays the file at path onto cfg. Keys absent from the file
// keep their current values.
func LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// BatchConfig converts the file representation into a simulator
// configuration; limits stay at their defaults.
func (c *Config) BatchConfig() sim.Config {
	b := sim.DefaultConfig()
	b.Size = c.Size
	b.R1, b.R2 = c.Pendulum.R1, c.Pendulum.R2
	b.M1, b.M2 = c.Pendulum.M1, c.Pendulum.M2
	b.A1, b.A2 = c.Pendulum.A1, c.Pendulum.A2
	b.Gravity = c.Pendulum.G
	b.Origin = dynamo.Vec2{X: c.Pendulum.OriginX, Y: c.Pendulum.OriginY}
	b.TraceCapacity = c.Trace.Capacity
	b.TraceStride = c.Trace.Stride
	b.EnergyCapacity = c.Trace.EnergyCapacity
	b.TimeScale = c.TimeScale
	b.AngleOffset = c.AngleOffset
	b.TotalLength = c.Reset.TotalLength
	b.MinLengthFrac, b.MaxLengthFrac = c.Reset.MinLengthFrac, c.Reset.MaxLengthFrac
	b.MassMin, b.MassMax = c.Reset.MassMin, c.Reset.MassMax
	b.AngleMin, b.AngleMax = c.Reset.AngleMin, c.Reset.AngleMax
	return b
}

// Validate checks the run parameters the batch itself does not own.
func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f: %w", c.Dt, dynamo.ErrParameterBounds)
	}
	if c.Frames < 1 {
		return fmt.Errorf("frames must be positive, got %d: %w", c.Frames, dynamo.ErrParameterBounds)
	}
	if c.Substeps < 1 {
		return fmt.Errorf("substeps must be positive, got %d: %w", c.Substeps, dynamo.ErrParameterBounds)
	}
	return nil
}

// Set writes one named value: a pendulum coefficient or initial angle, or
// the batch angle offset.
func (c *Config) Set(name string, value float64) error {
	switch name {
	case "r1":
		c.Pendulum.R1 = value
	case "r2":
		c.Pendulum.R2 = value
	case "m1":
		c.Pendulum.M1 = value
	case "m2":
		c.Pendulum.M2 = value
	case "a1":
		c.Pendulum.A1 = value
	case "a2":
		c.Pendulum.A2 = value
	case "g":
		c.Pendulum.G = value
	case "offset":
		c.AngleOffset = value
	default:
		return fmt.Errorf("%s: %w", name, dynamo.ErrUnknownParam)
	}
	return nil
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Metrics = append([]string(nil), c.Metrics...)
	return &out
}
