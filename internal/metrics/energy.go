package metrics

import (
	"math"

	"github.com/san-kum/mdsim/internal/forces"
	"github.com/san-kum/mdsim/internal/md"
)

// Energy is the mean Lennard-Jones potential energy over recorded frames.
type Energy struct {
	name    string
	params  forces.LJParams
	samples int
	total   float64
}

func NewEnergy(params forces.LJParams) *Energy {
	return &Energy{
		name:   "potential_energy",
		params: params,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) OnFrame(step int, pos md.Coords) {
	e.total += forces.PotentialEnergy(pos, e.params)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *Energy) Reset() {
	e.total = 0
	e.samples = 0
}

// EnergyDrift is the largest relative change of the potential energy
// against the first recorded frame.
type EnergyDrift struct {
	name          string
	params        forces.LJParams
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(params forces.LJParams) *EnergyDrift {
	return &EnergyDrift{
		name:   "energy_drift",
		params: params,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) OnFrame(step int, pos md.Coords) {
	energy := forces.PotentialEnergy(pos, e.params)

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
