// Package solver provides concrete implementations of kmc.Solver.
//
// Direct is the classic Gillespie direct method: draw a waiting time from
// an exponential distribution parameterized by the total propensity, then
// pick a reaction in proportion to its share of that total. Every example
// in this pack that needs randomness reaches for math/rand rather than a
// third-party PRNG, so Direct follows suit.
package solver

import (
	"math"
	"math/rand/v2"

	"github.com/kmcsim/kmc-core/internal/kmc"
)

// Direct is a Gillespie direct-method solver. Its propensity vector
// grows on demand: an Update whose Index is beyond the current length
// extends the vector with zeros first, which lets callers whose
// reaction count changes over time (the nanoparticle model) drive it
// without a separate resize call.
type Direct struct {
	rng          *rand.Rand
	propensities []float64
	total        float64
}

// NewDirect builds a Direct solver seeded deterministically from seed,
// with the given initial propensity vector. Matches kmc.SolverFactory.
func NewDirect(seed uint64, initialPropensities []float64) kmc.Solver {
	propensities := make([]float64, len(initialPropensities))
	copy(propensities, initialPropensities)

	total := 0.0
	for _, p := range propensities {
		total += p
	}

	return &Direct{
		rng:          rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		propensities: propensities,
		total:        total,
	}
}

// Event draws the next (index, dt) pair. Reports ok=false when the
// total propensity is zero or negative — no reaction can ever fire
// again, so the trajectory has reached quiescence.
func (d *Direct) Event() (kmc.Event, bool) {
	if d.total <= 0 {
		return kmc.Event{}, false
	}

	dt := -math.Log(d.rng.Float64()) / d.total

	target := d.rng.Float64() * d.total
	cumulative := 0.0
	index := -1
	lastPositive := -1
	for i, p := range d.propensities {
		if p > 0 {
			lastPositive = i
		}
		cumulative += p
		if cumulative > target {
			index = i
			break
		}
	}
	// Floating-point drift between d.total and the true left-to-right sum
	// of d.propensities can leave target in the gap between them, so the
	// scan above falls through without ever exceeding target. Fall back to
	// the last slot with strictly positive propensity rather than the last
	// slot in the vector, which may be a dead zero-propensity entry.
	if index == -1 {
		index = lastPositive
	}

	return kmc.Event{Index: index, Dt: dt}, true
}

// Update sets the propensity at u.Index, growing the propensity vector
// with zeros if u.Index had never been touched before, and adjusts the
// running total by the delta.
func (d *Direct) Update(u kmc.Update) {
	if u.Index >= len(d.propensities) {
		grown := make([]float64, u.Index+1)
		copy(grown, d.propensities)
		d.propensities = grown
	}

	d.total += u.Propensity - d.propensities[u.Index]
	d.propensities[u.Index] = u.Propensity
}

// Len reports the current size of the propensity vector, mainly useful
// in tests asserting the nanoparticle compaction algorithm keeps the
// solver and model in sync.
func (d *Direct) Len() int {
	return len(d.propensities)
}

// TotalPropensity reports the current sum of all propensities.
func (d *Direct) TotalPropensity() float64 {
	return d.total
}
