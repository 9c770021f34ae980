// Package kmc holds the model-agnostic core of the kinetic Monte Carlo
// simulator: the Event/Update wire types, the Solver contract, the generic
// Model contract, and the Simulation driver that couples the two.
package kmc

// Event is what a Solver returns when it selects a reaction to fire: the
// reaction index and the waiting time elapsed before it fired.
type Event struct {
	Index int
	Dt    float64
}

// Update is what a Model emits (through the driver's update callback) when
// a reaction's propensity changes as a side effect of some other reaction
// firing.
type Update struct {
	Index      int
	Propensity float64
}
