package nanoparticle

import (
	"fmt"
	"math"
	"sort"

	"github.com/kmcsim/kmc-core/internal/kmc/klog"
)

// Model is the immutable, shareable part of a nanoparticle simulation:
// the sites, their pairwise distances, the interaction catalog indexed
// for fast lookup, and the rate-factor constants. One Model is built
// once per loaded input and handed to every trajectory.
type Model struct {
	Sites          []Site
	distanceMatrix [][]float64

	// oneSiteMap[speciesID][state] lists interactions available to a
	// single site of that species currently in that local state.
	oneSiteMap [][][]Interaction
	// twoSiteMap[speciesA][speciesB][stateA][stateB] lists interactions
	// available to an ordered pair of sites (A is the donor).
	twoSiteMap [][][][][]Interaction

	OneSiteInteractionFactor float64
	TwoSiteInteractionFactor float64
	InteractionRadiusBound   float64
	DistanceFactorType       DistanceFactorType

	initialState      []int64
	initialReactions  []Reaction
	initialSiteIndex  []map[int]struct{}

	log klog.Logger
}

// New builds a Model from already-loaded sites, interactions and initial
// state, and enumerates the initial reaction set. Loading from a tabular
// store lives in internal/store; this constructor is the pure in-memory
// assembly step both the store loader and tests use.
func New(sites []Site, interactions []Interaction, initialState []int64, oneSiteFactor, twoSiteFactor, radiusBound float64, distanceFactorType DistanceFactorType, log klog.Logger) (*Model, error) {
	if log == nil {
		log = klog.NewNoOpLogger()
	}
	if len(initialState) != len(sites) {
		return nil, fmt.Errorf("nanoparticle: initial state has %d entries, expected one per site (%d)", len(initialState), len(sites))
	}

	m := &Model{
		Sites:                    sites,
		OneSiteInteractionFactor: oneSiteFactor,
		TwoSiteInteractionFactor: twoSiteFactor,
		InteractionRadiusBound:   radiusBound,
		DistanceFactorType:       distanceFactorType,
		initialState:             initialState,
		log:                      log,
	}

	m.distanceMatrix = buildDistanceMatrix(sites)

	numSpecies, numStates := catalogBounds(sites, interactions, initialState)
	m.oneSiteMap = make([][][]Interaction, numSpecies)
	for s := range m.oneSiteMap {
		m.oneSiteMap[s] = make([][]Interaction, numStates)
	}
	m.twoSiteMap = make([][][][][]Interaction, numSpecies)
	for a := range m.twoSiteMap {
		m.twoSiteMap[a] = make([][][][]Interaction, numSpecies)
		for b := range m.twoSiteMap[a] {
			m.twoSiteMap[a][b] = make([][][]Interaction, numStates)
			for sa := range m.twoSiteMap[a][b] {
				m.twoSiteMap[a][b][sa] = make([][]Interaction, numStates)
			}
		}
	}

	for _, ia := range interactions {
		switch ia.NumSites {
		case 1:
			m.oneSiteMap[ia.SpeciesID[0]][ia.LeftState[0]] = append(m.oneSiteMap[ia.SpeciesID[0]][ia.LeftState[0]], ia)
		case 2:
			m.twoSiteMap[ia.SpeciesID[0]][ia.SpeciesID[1]][ia.LeftState[0]][ia.LeftState[1]] =
				append(m.twoSiteMap[ia.SpeciesID[0]][ia.SpeciesID[1]][ia.LeftState[0]][ia.LeftState[1]], ia)
		default:
			return nil, fmt.Errorf("nanoparticle: interaction %d has unsupported site count %d", ia.ID, ia.NumSites)
		}
	}

	m.initialSiteIndex = make([]map[int]struct{}, len(sites))
	for i := range m.initialSiteIndex {
		m.initialSiteIndex[i] = make(map[int]struct{})
	}
	addInitial := func(r Reaction) {
		slot := len(m.initialReactions)
		m.initialReactions = append(m.initialReactions, r)
		m.initialSiteIndex[r.SiteID[0]][slot] = struct{}{}
		if r.Interaction.NumSites == 2 {
			m.initialSiteIndex[r.SiteID[1]][slot] = struct{}{}
		}
	}
	for siteID := range sites {
		for _, r := range m.oneSiteReactions(initialState, siteID) {
			addInitial(r)
		}
	}
	for i := range sites {
		for j := i + 1; j < len(sites); j++ {
			for _, r := range m.twoSiteReactionsForPair(initialState, i, j) {
				addInitial(r)
			}
		}
	}

	return m, nil
}

func buildDistanceMatrix(sites []Site) [][]float64 {
	n := len(sites)
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := sites[i].X - sites[j].X
			dy := sites[i].Y - sites[j].Y
			dz := sites[i].Z - sites[j].Z
			dist := math.Sqrt(dx*dx + dy*dy + dz*dz)
			d[i][j] = dist
			d[j][i] = dist
		}
	}
	return d
}

// catalogBounds sizes the one-/two-site lookup tables: one row per
// species id in use, one column per local state value in use.
func catalogBounds(sites []Site, interactions []Interaction, initialState []int64) (numSpecies, numStates int) {
	for _, s := range sites {
		if s.SpeciesID+1 > numSpecies {
			numSpecies = s.SpeciesID + 1
		}
	}
	for _, v := range initialState {
		if int(v)+1 > numStates {
			numStates = int(v) + 1
		}
	}
	for _, ia := range interactions {
		for k := 0; k < ia.NumSites; k++ {
			if ia.SpeciesID[k]+1 > numSpecies {
				numSpecies = ia.SpeciesID[k] + 1
			}
			if ia.LeftState[k]+1 > numStates {
				numStates = ia.LeftState[k] + 1
			}
			if ia.RightState[k]+1 > numStates {
				numStates = ia.RightState[k] + 1
			}
		}
	}
	return numSpecies, numStates
}

// distanceFactor applies the configured distance-factor function.
func (m *Model) distanceFactor(d float64) float64 {
	switch m.DistanceFactorType {
	case DistanceFactorLinear:
		return 1 - d/m.InteractionRadiusBound
	case DistanceFactorInverseCubic:
		return 1 / math.Pow(d, 6)
	default:
		return 0
	}
}

// oneSiteReactions enumerates the one-site interactions available at
// siteID given its current state.
func (m *Model) oneSiteReactions(state []int64, siteID int) []Reaction {
	state0 := int(state[siteID])
	species0 := m.Sites[siteID].SpeciesID

	var out []Reaction
	for _, ia := range m.oneSiteMap[species0][state0] {
		out = append(out, Reaction{
			SiteID:      [2]int{siteID, -1},
			Interaction: ia,
			Rate:        ia.Rate * m.OneSiteInteractionFactor,
		})
	}
	return out
}

// twoSiteReactionsForPair enumerates every two-site interaction between
// sites a and b, in both donor/acceptor role assignments, scaled by the
// pair's distance factor. Returns nil if the pair is outside the
// interaction radius. Each unordered pair must be passed to this
// function exactly once per enumeration pass — it already accounts for
// both directions, so calling it once per site (rather than once per
// pair) would double every reaction it finds.
func (m *Model) twoSiteReactionsForPair(state []int64, a, b int) []Reaction {
	dist := m.distanceMatrix[a][b]
	if dist >= m.InteractionRadiusBound {
		return nil
	}

	stateA, stateB := int(state[a]), int(state[b])
	speciesA, speciesB := m.Sites[a].SpeciesID, m.Sites[b].SpeciesID
	factor := m.distanceFactor(dist) * m.TwoSiteInteractionFactor

	var out []Reaction
	for _, ia := range m.twoSiteMap[speciesA][speciesB][stateA][stateB] {
		out = append(out, Reaction{SiteID: [2]int{a, b}, Interaction: ia, Rate: factor * ia.Rate})
	}
	for _, ia := range m.twoSiteMap[speciesB][speciesA][stateB][stateA] {
		out = append(out, Reaction{SiteID: [2]int{b, a}, Interaction: ia, Rate: factor * ia.Rate})
	}
	return out
}

// sortedKeys returns the keys of a set in ascending order.
func sortedKeys(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

func (m *Model) String() string {
	return fmt.Sprintf("nanoparticle.Model{sites=%d, initial_reactions=%d}", len(m.Sites), len(m.initialReactions))
}
