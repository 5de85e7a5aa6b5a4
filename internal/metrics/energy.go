package metrics

import (
	"math"

	"github.com/san-kum/dpsim/internal/physics"
	"github.com/san-kum/dpsim/internal/ring"
)

const DefaultHistoryCapacity = 2000

// EnergyTracker keeps index-aligned kinetic and potential energy histories.
// Entry i of both histories belongs to the same recorded frame.
type EnergyTracker struct {
	kinetic   *ring.Buffer[float64]
	potential *ring.Buffer[float64]
}

func NewEnergyTracker(capacity int) *EnergyTracker {
	return &EnergyTracker{
		kinetic:   ring.New[float64](capacity),
		potential: ring.New[float64](capacity),
	}
}

// Record computes the energies of p and appends them to both histories.
func (e *EnergyTracker) Record(p *physics.DoublePendulum) (kinetic, potential float64) {
	kinetic = physics.KineticEnergy(p)
	potential = physics.PotentialEnergy(p)
	e.kinetic.Push(kinetic)
	e.potential.Push(potential)
	return kinetic, potential
}

// Latest returns the newest entries; ok is false before the first Record.
func (e *EnergyTracker) Latest() (kinetic, potential float64, ok bool) {
	kinetic, ok = e.kinetic.Last()
	if !ok {
		return 0, 0, false
	}
	potential, _ = e.potential.Last()
	return kinetic, potential, true
}

func (e *EnergyTracker) Len() int             { return e.kinetic.Len() }
func (e *EnergyTracker) Cap() int             { return e.kinetic.Cap() }
func (e *EnergyTracker) Kinetic() []float64   { return e.kinetic.Slice() }
func (e *EnergyTracker) Potential() []float64 { return e.potential.Slice() }

// Total sums the two histories entry by entry.
func (e *EnergyTracker) Total() []float64 {
	total := e.kinetic.Slice()
	for i, pe := range e.potential.All() {
		total[i] += pe
	}
	return total
}

func (e *EnergyTracker) Reset() {
	e.kinetic.Clear()
	e.potential.Clear()
}

// EnergyDrift reports the largest relative deviation of total energy from
// the first observed value.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(p *physics.DoublePendulum) {
	energy := physics.TotalEnergy(p)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
