package kmc

// Model is the contract the driver needs from either engine (reaction
// network or nanoparticle). H is the model-specific history element type:
// the network engine records (reaction_id, time) while the nanoparticle
// engine records (interaction_id, site ids, time) since its reaction slot
// ids are not stable across steps (see nanoparticle.Reaction).
//
// Implementations own whatever per-trajectory mutable bookkeeping they
// need beyond the state vector itself (e.g. the nanoparticle engine's live
// reaction set and per-site index) as private fields — the driver never
// sees them, it only ever threads the state vector and reaction indices.
type Model[H any] interface {
	// InitialState returns a fresh copy of the model's initial state
	// vector. Called once per trajectory.
	InitialState() []int64

	// InitialPropensities returns the propensity of every reaction given
	// the initial state, in reaction-index order.
	InitialPropensities() []float64

	// UpdateState mutates state in place to reflect reactionIndex firing.
	UpdateState(state []int64, reactionIndex int)

	// UpdatePropensities is called after UpdateState with the same
	// reactionIndex; it emits zero or more Updates describing which
	// reactions' propensities changed, synchronously, before returning.
	UpdatePropensities(update func(Update), state []int64, reactionIndex int)

	// MakeHistoryElement builds the record appended to the trajectory
	// history for the reaction that just fired.
	MakeHistoryElement(reactionIndex int, step int, time float64) H
}
