package nanoparticle

import (
	"testing"

	"github.com/kmcsim/kmc-core/internal/kmc"
)

// threeIsolatedSites builds a model with three sites far enough apart
// that no two-site interaction ever applies, and a single one-site
// interaction species 0 / state 0 -> state 1.
func threeIsolatedSites(t *testing.T) *Model {
	t.Helper()
	sites := []Site{
		{X: 0, Y: 0, Z: 0, SpeciesID: 0},
		{X: 100, Y: 0, Z: 0, SpeciesID: 0},
		{X: 200, Y: 0, Z: 0, SpeciesID: 0},
	}
	interactions := []Interaction{
		{ID: 0, NumSites: 1, SpeciesID: [2]int{0, -1}, LeftState: [2]int{0, -1}, RightState: [2]int{1, -1}, Rate: 1.0},
	}
	m, err := New(sites, interactions, []int64{0, 0, 0}, 1, 1, 1.0, DistanceFactorLinear, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestInitialReactionsOnePerIsolatedSite(t *testing.T) {
	m := threeIsolatedSites(t)
	if len(m.initialReactions) != 3 {
		t.Fatalf("initial reactions = %d, want 3 (one per site)", len(m.initialReactions))
	}
	for i, set := range m.initialSiteIndex {
		if len(set) != 1 {
			t.Fatalf("site %d indexes %d reactions, want 1", i, len(set))
		}
	}
}

func TestCompactionAfterOneSiteFiring(t *testing.T) {
	m := threeIsolatedSites(t)
	traj := m.NewTrajectory()
	state := traj.InitialState()

	// Find the slot for site 0's reaction.
	var slot int
	for s := range traj.PerSiteIndex[0] {
		slot = s
	}

	traj.UpdateState(state, slot)
	if state[0] != 1 {
		t.Fatalf("state[0] = %d, want 1 after firing", state[0])
	}

	var updates []kmc.Update
	traj.UpdatePropensities(func(u kmc.Update) { updates = append(updates, u) }, state, slot)
	if len(updates) == 0 {
		t.Fatalf("expected at least one propensity update after firing")
	}

	if len(traj.CurrentReactions) != 2 {
		t.Fatalf("current reactions = %d, want 2 (site 0 exhausted)", len(traj.CurrentReactions))
	}
	if _, ok := traj.PerSiteIndex[0][slot]; ok {
		t.Fatalf("site 0 still indexed after exhausting its only interaction")
	}
	if len(traj.PerSiteIndex[1]) != 1 || len(traj.PerSiteIndex[2]) != 1 {
		t.Fatalf("sites 1 and 2 should each still index exactly one reaction, got %v %v", traj.PerSiteIndex[1], traj.PerSiteIndex[2])
	}
}

// twoSiteAsymmetricPair builds two sites of different species within
// radius, with a single one-directional interaction defined only from
// species 0 (state 0) to species 1 (state 0).
func twoSiteAsymmetricPair(t *testing.T) *Model {
	t.Helper()
	sites := []Site{
		{X: 0, Y: 0, Z: 0, SpeciesID: 0},
		{X: 1, Y: 0, Z: 0, SpeciesID: 1},
	}
	interactions := []Interaction{
		{ID: 0, NumSites: 2, SpeciesID: [2]int{0, 1}, LeftState: [2]int{0, 0}, RightState: [2]int{1, 0}, Rate: 2.0},
	}
	m, err := New(sites, interactions, []int64{0, 0}, 1, 1, 5.0, DistanceFactorLinear, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestTwoSiteInteractionEnumeratedOnce(t *testing.T) {
	m := twoSiteAsymmetricPair(t)
	if len(m.initialReactions) != 1 {
		t.Fatalf("initial reactions = %d, want exactly 1 (no double count across site perspectives)", len(m.initialReactions))
	}
	r := m.initialReactions[0]
	if r.SiteID != [2]int{0, 1} {
		t.Fatalf("reaction sites = %v, want [0 1] (species0 plays the donor role)", r.SiteID)
	}
}

func TestDistanceFactorLinear(t *testing.T) {
	m := twoSiteAsymmetricPair(t)
	got := m.distanceFactor(1.0)
	want := 1 - 1.0/5.0
	if got != want {
		t.Fatalf("distanceFactor(1.0) = %v, want %v", got, want)
	}
}

func TestParseDistanceFactorType(t *testing.T) {
	if _, err := ParseDistanceFactorType("bogus"); err == nil {
		t.Fatalf("expected error for unrecognized distance factor type")
	}
	if tag, err := ParseDistanceFactorType("inverse_cubic"); err != nil || tag != DistanceFactorInverseCubic {
		t.Fatalf("ParseDistanceFactorType(inverse_cubic) = %v, %v", tag, err)
	}
}
