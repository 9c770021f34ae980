package store

import (
	"github.com/kmcsim/kmc-core/internal/kmc/klog"
	"github.com/kmcsim/kmc-core/internal/kmc/nanoparticle"
)

// LoadNanoparticle assembles a nanoparticle.Model from a nanoparticle
// model's tabular rows, applying the load-time assertions: metadata and
// factors rows must both be present, distance_factor_type must be
// recognized, every site's species_id must appear in the species table,
// and every initial-state degree of freedom must fall within its site's
// species' declared degrees_of_freedom.
func LoadNanoparticle(
	metadata RowReader[NanoparticleMetadataRow],
	factors RowReader[NanoparticleFactorsRow],
	species RowReader[NanoparticleSpeciesRow],
	sites RowReader[NanoparticleSiteRow],
	initialState RowReader[NanoparticleInitialStateRow],
	interactions RowReader[NanoparticleInteractionRow],
	log klog.Logger,
) (*nanoparticle.Model, error) {
	errs := &LoadError{}

	meta, ok, err := metadata.Next()
	if err != nil {
		return nil, err
	}
	if !ok {
		errs.Add("nanoparticle: no metadata row")
		return nil, errs
	}

	factorsRow, ok, err := factors.Next()
	if err != nil {
		return nil, err
	}
	if !ok {
		errs.Add("nanoparticle: no factors row")
		return nil, errs
	}

	distanceFactorType, parseErr := nanoparticle.ParseDistanceFactorType(factorsRow.DistanceFactorType)
	if parseErr != nil {
		errs.Add("%s", parseErr.Error())
		return nil, errs
	}

	speciesRows, err := ReadAll[NanoparticleSpeciesRow](species)
	if err != nil {
		return nil, err
	}
	degreesOfFreedom := make(map[int]int, len(speciesRows))
	for _, r := range speciesRows {
		degreesOfFreedom[r.SpeciesID] = r.DegreesOfFreedom
	}

	siteRows, err := ReadAll[NanoparticleSiteRow](sites)
	if err != nil {
		return nil, err
	}
	siteList := make([]nanoparticle.Site, meta.NumberOfSites)
	for _, r := range siteRows {
		if r.SiteID < 0 || r.SiteID >= len(siteList) {
			errs.Add("nanoparticle: site row references out-of-range site_id %d", r.SiteID)
			continue
		}
		if _, ok := degreesOfFreedom[r.SpeciesID]; !ok {
			errs.Add("nanoparticle: site %d references unknown species_id %d", r.SiteID, r.SpeciesID)
			continue
		}
		siteList[r.SiteID] = nanoparticle.Site{X: r.X, Y: r.Y, Z: r.Z, SpeciesID: r.SpeciesID}
	}

	stateRows, err := ReadAll[NanoparticleInitialStateRow](initialState)
	if err != nil {
		return nil, err
	}
	state := make([]int64, meta.NumberOfSites)
	for _, r := range stateRows {
		if r.SiteID < 0 || r.SiteID >= len(state) {
			errs.Add("nanoparticle: initial state row references out-of-range site_id %d", r.SiteID)
			continue
		}
		if dof, ok := degreesOfFreedom[siteList[r.SiteID].SpeciesID]; ok && (r.DegreeOfFreedom < 0 || r.DegreeOfFreedom >= dof) {
			errs.Add("nanoparticle: site %d initial state %d out of range for species degrees_of_freedom %d", r.SiteID, r.DegreeOfFreedom, dof)
			continue
		}
		state[r.SiteID] = int64(r.DegreeOfFreedom)
	}

	interactionRows, err := ReadAll[NanoparticleInteractionRow](interactions)
	if err != nil {
		return nil, err
	}
	interactionList := make([]nanoparticle.Interaction, len(interactionRows))
	for i, r := range interactionRows {
		interactionList[i] = nanoparticle.Interaction{
			ID:         i,
			NumSites:   r.NumberOfSites,
			SpeciesID:  r.SpeciesID,
			LeftState:  r.LeftState,
			RightState: r.RightState,
			Rate:       r.Rate,
		}
	}

	if errs.HasIssues() {
		return nil, errs
	}

	return nanoparticle.New(siteList, interactionList, state,
		factorsRow.OneSiteInteractionFactor, factorsRow.TwoSiteInteractionFactor, factorsRow.InteractionRadiusBound,
		distanceFactorType, log)
}
