package nanoparticle

import (
	"github.com/kmcsim/kmc-core/internal/kmc"
)

// Trajectory is the mutable, per-run half of a nanoparticle simulation:
// the live reaction set and the per-site index into it. It holds a
// reference to its parent Model (immutable, shared across every
// trajectory spawned from it) and implements kmc.Model[HistoryElement]
// so a Simulation can drive it directly.
type Trajectory struct {
	model *Model

	CurrentReactions []Reaction
	PerSiteIndex     []map[int]struct{}
}

// NewTrajectory clones the model's initial reaction set and per-site
// index into a fresh, independently mutable Trajectory. Safe to call
// concurrently from multiple goroutines against the same Model.
func (m *Model) NewTrajectory() *Trajectory {
	reactions := make([]Reaction, len(m.initialReactions))
	copy(reactions, m.initialReactions)

	index := make([]map[int]struct{}, len(m.initialSiteIndex))
	for i, set := range m.initialSiteIndex {
		clone := make(map[int]struct{}, len(set))
		for k := range set {
			clone[k] = struct{}{}
		}
		index[i] = clone
	}

	return &Trajectory{
		model:            m,
		CurrentReactions: reactions,
		PerSiteIndex:     index,
	}
}

// InitialState implements kmc.Model.
func (t *Trajectory) InitialState() []int64 {
	out := make([]int64, len(t.model.initialState))
	copy(out, t.model.initialState)
	return out
}

// InitialPropensities implements kmc.Model. Nanoparticle reaction rates
// are already propensities (distance factor and interaction factor are
// baked in at enumeration time) so no further scaling applies.
func (t *Trajectory) InitialPropensities() []float64 {
	out := make([]float64, len(t.model.initialReactions))
	for i, r := range t.model.initialReactions {
		out[i] = r.Rate
	}
	return out
}

// UpdateState implements kmc.Model: verifies the firing reaction's
// preconditions still hold, then writes its right-hand states into the
// live state vector. A failed precondition is a programmer error, not a
// recoverable condition, and panics with *kmc.InvariantViolation.
func (t *Trajectory) UpdateState(state []int64, reactionIndex int) {
	r := t.CurrentReactions[reactionIndex]
	for k := 0; k < r.Interaction.NumSites; k++ {
		site := r.SiteID[k]
		if int(state[site]) != r.Interaction.LeftState[k] {
			panic(kmc.NewInvariantViolation(
				"nanoparticle: site %d expected state %d before firing reaction %d, found %d",
				site, r.Interaction.LeftState[k], reactionIndex, state[site]))
		}
	}
	for k := 0; k < r.Interaction.NumSites; k++ {
		state[r.SiteID[k]] = int64(r.Interaction.RightState[k])
	}
}

// UpdatePropensities implements kmc.Model: regenerates and compacts the
// live reaction set around the sites the firing reaction touched, then
// reports the new propensity of every slot the compaction touched (plus
// zeroing out any slots the vector shrank past, so the solver's view of
// "gone" matches the model's).
func (t *Trajectory) UpdatePropensities(update func(kmc.Update), state []int64, reactionIndex int) {
	touched, oldLen, newLen := t.updateReactions(state, reactionIndex)

	for _, slot := range touched {
		update(kmc.Update{Index: slot, Propensity: t.CurrentReactions[slot].Rate})
	}
	for i := newLen; i < oldLen; i++ {
		update(kmc.Update{Index: i, Propensity: 0})
	}
}

// MakeHistoryElement implements kmc.Model.
func (t *Trajectory) MakeHistoryElement(reactionIndex int, step int, time float64) HistoryElement {
	r := t.CurrentReactions[reactionIndex]
	return HistoryElement{
		InteractionID: r.Interaction.ID,
		SiteID:        r.SiteID,
		Time:          time,
	}
}
