package network

import "sync"

// dependencyNode is the per-reaction record: an optional list
// of reaction indices that may have their propensity changed when this
// reaction fires, a firing counter, and a mutual-exclusion guard. The list
// transitions exactly once from absent to present and is never
// invalidated afterwards.
//
// The C++ original stores this as a fixed-length vector of
// DependentsNode — non-copyable because of the embedded mutex, forcing
// sized-in-place construction.
// Go's slice-of-struct with value (non-pointer) elements gives the same
// "fixed-length sequence of mutually-guarded records whose indices match
// reaction ids" shape without needing arena/index tricks: Network.dependencyGraph
// is sized once at construction and never appended to, so the mutex
// embedded in each element is never copied after that point.
type dependencyNode struct {
	mu               sync.Mutex
	dependents       []int
	dependentsPresent bool
	occurrences      int
}

// getDependencyNode implements the lazy-and-once computation:
// acquire the node's guard; if the list is absent and the firing counter
// has reached the threshold, compute it; increment the counter; return the
// (possibly still absent) list.
func (n *Network) getDependencyNode(reactionIndex int) (dependents []int, present bool) {
	node := &n.dependencyGraph[reactionIndex]

	node.mu.Lock()
	defer node.mu.Unlock()

	if !node.dependentsPresent && node.occurrences >= n.DependencyThreshold {
		node.dependents = n.computeDependents(reactionIndex)
		node.dependentsPresent = true
	}

	node.occurrences++

	return node.dependents, node.dependentsPresent
}

// computeDependents computes Dep(j) = { i : reactions[i] shares a species
// between reactions[i].Reactants and (reactions[j].Reactants ∪
// reactions[j].Products) }. Only reaction i's *reactants*
// are consulted, since network propensities only ever depend on reactant
// populations.
func (n *Network) computeDependents(j int) []int {
	target := n.Reactions[j]

	affects := func(species int) bool {
		for m := 0; m < int(target.NumReactants); m++ {
			if target.Reactants[m] == species {
				return true
			}
		}
		for m := 0; m < int(target.NumProducts); m++ {
			if target.Products[m] == species {
				return true
			}
		}
		return false
	}

	var dependents []int
	for i, r := range n.Reactions {
		touched := false
		for l := 0; l < int(r.NumReactants); l++ {
			if affects(r.Reactants[l]) {
				touched = true
				break
			}
		}
		if touched {
			dependents = append(dependents, i)
		}
	}
	return dependents
}

// DependencyOccurrences reports how many times getDependencyNode has been
// called for reactionIndex. Exposed for tests of spec invariant 3
// (dependency-graph laziness).
func (n *Network) DependencyOccurrences(reactionIndex int) int {
	node := &n.dependencyGraph[reactionIndex]
	node.mu.Lock()
	defer node.mu.Unlock()
	return node.occurrences
}

// DependencyComputed reports whether reactionIndex's dependency list has
// been computed yet.
func (n *Network) DependencyComputed(reactionIndex int) bool {
	node := &n.dependencyGraph[reactionIndex]
	node.mu.Lock()
	defer node.mu.Unlock()
	return node.dependentsPresent
}
