package network

import (
	"testing"

	"github.com/kmcsim/kmc-core/internal/kmc"
	"github.com/kmcsim/kmc-core/internal/kmc/solver"
)

func decayNetwork() *Network {
	// A -> B, rate 1.0. Species 0 = A, species 1 = B.
	reactions := []Reaction{
		{NumReactants: 1, NumProducts: 1, Reactants: [2]int{0, -1}, Products: [2]int{1, -1}, Rate: 1.0},
	}
	return New(reactions, []int64{10, 0}, 1, 1, 1, 1, nil)
}

func TestComputePropensityByReactantCount(t *testing.T) {
	cases := []struct {
		name  string
		r     Reaction
		state []int64
		want  float64
	}{
		{"zero reactants", Reaction{NumReactants: 0, Rate: 2.0}, []int64{}, 2.0},
		{"one reactant", Reaction{NumReactants: 1, Reactants: [2]int{0, -1}, Rate: 3.0}, []int64{5}, 15.0},
		{"two distinct reactants", Reaction{NumReactants: 2, Reactants: [2]int{0, 1}, Rate: 2.0}, []int64{4, 5}, 40.0},
		{"two identical reactants", Reaction{NumReactants: 2, Reactants: [2]int{0, 0}, Rate: 1.0}, []int64{6}, 15.0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			n := New([]Reaction{c.r}, c.state, 1, 1, 0.5, 1, nil)
			got := n.ComputePropensity(c.state, 0)
			if got != c.want {
				t.Errorf("got %v, want %v", got, c.want)
			}
		})
	}
}

func TestUpdateStateAppliesStoichiometry(t *testing.T) {
	n := decayNetwork()
	state := n.InitialState()
	n.UpdateState(state, 0)
	if state[0] != 9 || state[1] != 1 {
		t.Fatalf("state after decay = %v, want [9 1]", state)
	}
}

func TestUpdatePropensitiesFullRebuildUntilThreshold(t *testing.T) {
	n := decayNetwork()
	state := n.InitialState()

	var updates []kmc.Update
	collect := func(u kmc.Update) { updates = append(updates, u) }

	n.UpdateState(state, 0)
	n.UpdatePropensities(collect, state, 0)

	if n.DependencyComputed(0) {
		t.Fatalf("dependency graph computed before threshold reached")
	}
	if len(updates) != len(n.Reactions) {
		t.Fatalf("expected a full rebuild (%d updates), got %d", len(n.Reactions), len(updates))
	}
	if n.DependencyOccurrences(0) != 1 {
		t.Fatalf("occurrences = %d, want 1", n.DependencyOccurrences(0))
	}
}

func TestUpdatePropensitiesUsesDependencyGraphOnceComputed(t *testing.T) {
	reactions := []Reaction{
		{NumReactants: 1, NumProducts: 1, Reactants: [2]int{0, -1}, Products: [2]int{1, -1}, Rate: 1.0}, // 0: A->B
		{NumReactants: 1, NumProducts: 1, Reactants: [2]int{1, -1}, Products: [2]int{0, -1}, Rate: 1.0}, // 1: B->A
		{NumReactants: 0, NumProducts: 1, Reactants: [2]int{-1, -1}, Products: [2]int{0, -1}, Rate: 1.0}, // 2: ->A, unrelated to B
	}
	n := New(reactions, []int64{10, 0}, 1, 1, 1, 0, nil) // threshold 0: compute on first call
	state := n.InitialState()

	var updates []kmc.Update
	collect := func(u kmc.Update) { updates = append(updates, u) }

	n.UpdateState(state, 0)
	n.UpdatePropensities(collect, state, 0)

	if !n.DependencyComputed(0) {
		t.Fatalf("expected dependency graph for reaction 0 to be computed with threshold 0")
	}
	for _, u := range updates {
		if u.Index == 2 {
			t.Fatalf("reaction 2 does not depend on species touched by reaction 0, should not be updated")
		}
	}
}

func TestDecaySimulationReachesQuiescence(t *testing.T) {
	n := decayNetwork()
	sim := kmc.NewSimulation[HistoryElement](n, 42, 1000, 1e9, solver.NewDirect)
	sim.ExecuteSteps(1000)

	state := sim.State()
	if state[0] != 0 || state[1] != 10 {
		t.Fatalf("final state = %v, want all population decayed to species 1", state)
	}
	if sim.Step() != 10 {
		t.Fatalf("step count = %d, want 10 (one decay per molecule)", sim.Step())
	}
}
