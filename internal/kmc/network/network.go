// Package network implements the well-mixed chemical reaction network
// engine: mass-action kinetics over integer species populations, with a
// lazily-computed, mutex-per-node dependency graph so that most firings
// only touch the reactions they can actually affect.
//
// Grounded on the C++ ReactionNetwork in original_source/GMC/reaction_network.h.
package network

import (
	"fmt"

	"github.com/kmcsim/kmc-core/internal/kmc"
	"github.com/kmcsim/kmc-core/internal/kmc/klog"
)

// Reaction is a fixed-shape mass-action reaction: up to two reactants, up
// to two products, and a base rate. Unused reactant/product slots are -1.
type Reaction struct {
	NumReactants uint8
	NumProducts  uint8
	Reactants    [2]int
	Products     [2]int
	Rate         float64
}

// Network holds the reaction list and the rate-factor constants, plus the
// lazy dependency graph. Reactions, InitialState, InitialPropensities and
// the factors are immutable after load and safe to share by reference
// across trajectories; the dependency graph is shared mutable,
// guarded per-node.
type Network struct {
	Reactions           []Reaction
	initialState        []int64
	initialPropensities []float64

	FactorZero      float64
	FactorTwo       float64
	FactorDuplicate float64

	DependencyThreshold int
	dependencyGraph     []dependencyNode

	log klog.Logger
}

// New builds a Network from already-loaded reactions and initial state.
// Loading from a tabular store lives in internal/store; this constructor
// is the pure in-memory assembly step both the store loader and tests use.
func New(reactions []Reaction, initialState []int64, factorZero, factorTwo, factorDuplicate float64, dependencyThreshold int, log klog.Logger) *Network {
	if log == nil {
		log = klog.NewNoOpLogger()
	}
	n := &Network{
		Reactions:           reactions,
		initialState:        initialState,
		FactorZero:          factorZero,
		FactorTwo:           factorTwo,
		FactorDuplicate:     factorDuplicate,
		DependencyThreshold: dependencyThreshold,
		dependencyGraph:     make([]dependencyNode, len(reactions)),
		log:                 log,
	}
	n.initialPropensities = make([]float64, len(reactions))
	for i := range reactions {
		n.initialPropensities[i] = n.ComputePropensity(initialState, i)
	}
	return n
}

// InitialState implements kmc.Model.
func (n *Network) InitialState() []int64 {
	out := make([]int64, len(n.initialState))
	copy(out, n.initialState)
	return out
}

// InitialPropensities implements kmc.Model.
func (n *Network) InitialPropensities() []float64 {
	out := make([]float64, len(n.initialPropensities))
	copy(out, n.initialPropensities)
	return out
}

// ComputePropensity implements the mass-action propensity formula.
// Population counts are widened to float64 before
// multiplying against the real-valued rate and factors, so populations up
// to 2^53 stay exact.
func (n *Network) ComputePropensity(state []int64, reactionIndex int) float64 {
	r := n.Reactions[reactionIndex]

	switch r.NumReactants {
	case 0:
		return n.FactorZero * r.Rate
	case 1:
		return float64(state[r.Reactants[0]]) * r.Rate
	default: // 2
		if r.Reactants[0] == r.Reactants[1] {
			x := float64(state[r.Reactants[0]])
			return n.FactorDuplicate * n.FactorTwo * x * (x - 1) * r.Rate
		}
		x0 := float64(state[r.Reactants[0]])
		x1 := float64(state[r.Reactants[1]])
		return n.FactorTwo * x0 * x1 * r.Rate
	}
}

// UpdateState implements kmc.Model: decrement each reactant (with
// multiplicity), then increment each product (with multiplicity).
func (n *Network) UpdateState(state []int64, reactionIndex int) {
	r := n.Reactions[reactionIndex]
	for m := 0; m < int(r.NumReactants); m++ {
		state[r.Reactants[m]]--
	}
	for m := 0; m < int(r.NumProducts); m++ {
		state[r.Products[m]]++
	}
}

// UpdatePropensities implements kmc.Model: resolves next's dependency
// node and emits an Update for every reaction it lists, or — if the
// dependency list has not yet been computed — for every reaction in the
// network.
func (n *Network) UpdatePropensities(update func(kmc.Update), state []int64, next int) {
	dependents, present := n.getDependencyNode(next)

	if present {
		for _, i := range dependents {
			update(kmc.Update{Index: i, Propensity: n.ComputePropensity(state, i)})
		}
		return
	}

	for i := range n.Reactions {
		update(kmc.Update{Index: i, Propensity: n.ComputePropensity(state, i)})
	}
}

// MakeHistoryElement implements kmc.Model.
func (n *Network) MakeHistoryElement(reactionIndex int, step int, t float64) HistoryElement {
	return HistoryElement{ReactionID: reactionIndex, Time: t}
}

func (n *Network) String() string {
	return fmt.Sprintf("network.Network{reactions=%d}", len(n.Reactions))
}
