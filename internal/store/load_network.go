package store

import (
	"github.com/kmcsim/kmc-core/internal/kmc/klog"
	"github.com/kmcsim/kmc-core/internal/kmc/network"
)

// LoadNetwork assembles a network.Network from a reaction-network
// model's tabular rows, applying the load-time assertions: a metadata
// row must be present, the reaction ids read must be dense 0..N-1, and
// the count read must match the declared reaction count.
func LoadNetwork(
	metadata RowReader[NetworkMetadataRow],
	factors RowReader[NetworkFactorsRow],
	initialState RowReader[NetworkInitialStateRow],
	reactions RowReader[NetworkReactionRow],
	dependencyThreshold int,
	log klog.Logger,
) (*network.Network, error) {
	errs := &LoadError{}

	meta, ok, err := metadata.Next()
	if err != nil {
		return nil, err
	}
	if !ok {
		errs.Add("reaction network: no metadata row")
		return nil, errs
	}

	factorsRow, ok, err := factors.Next()
	if err != nil {
		return nil, err
	}
	if !ok {
		errs.Add("reaction network: no factors row")
	}

	stateRows, err := ReadAll[NetworkInitialStateRow](initialState)
	if err != nil {
		return nil, err
	}
	state := make([]int64, meta.NumberOfSpecies)
	for _, r := range stateRows {
		if r.SpeciesID < 0 || r.SpeciesID >= len(state) {
			errs.Add("reaction network: initial state row references out-of-range species_id %d", r.SpeciesID)
			continue
		}
		state[r.SpeciesID] = r.Count
	}

	reactionRows, err := ReadAll[NetworkReactionRow](reactions)
	if err != nil {
		return nil, err
	}

	lastID := -1
	netReactions := make([]network.Reaction, len(reactionRows))
	for i, r := range reactionRows {
		if r.ReactionID != lastID+1 {
			errs.Add("reaction network: reaction ids must be dense starting at 0, got %d after %d", r.ReactionID, lastID)
		}
		lastID = r.ReactionID

		netReactions[i] = network.Reaction{
			NumReactants: uint8(r.NumReactants),
			NumProducts:  uint8(r.NumProducts),
			Reactants:    r.ReactantSpecies,
			Products:     r.ProductSpecies,
			Rate:         r.Rate,
		}
	}

	if lastID+1 != meta.NumberOfReactions {
		errs.Add("reaction network: metadata declares %d reactions, last reaction_id+1 was %d", meta.NumberOfReactions, lastID+1)
	}
	if len(reactionRows) != meta.NumberOfReactions {
		errs.Add("reaction network: metadata declares %d reactions, read %d", meta.NumberOfReactions, len(reactionRows))
	}

	if errs.HasIssues() {
		return nil, errs
	}

	return network.New(netReactions, state, factorsRow.FactorZero, factorsRow.FactorTwo, factorsRow.FactorDuplicate, dependencyThreshold, log), nil
}
