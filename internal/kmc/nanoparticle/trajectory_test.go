package nanoparticle

import (
	"testing"

	"github.com/kmcsim/kmc-core/internal/kmc"
	"github.com/kmcsim/kmc-core/internal/kmc/solver"
)

func TestSimulationRunsToQuiescenceOnIsolatedSites(t *testing.T) {
	m := threeIsolatedSites(t)
	traj := m.NewTrajectory()

	sim := kmc.NewSimulation[HistoryElement](traj, 7, 100, 1e9, solver.NewDirect)
	sim.ExecuteSteps(100)

	state := sim.State()
	for i, v := range state {
		if v != 1 {
			t.Fatalf("site %d ended in state %d, want 1 (its only interaction should have fired once)", i, v)
		}
	}
	if sim.Step() != 3 {
		t.Fatalf("step count = %d, want 3 (one firing per isolated site)", sim.Step())
	}
}

func TestUpdateStatePanicsOnStalePrecondition(t *testing.T) {
	m := threeIsolatedSites(t)
	traj := m.NewTrajectory()
	state := traj.InitialState()

	var slot int
	for s := range traj.PerSiteIndex[0] {
		slot = s
	}
	state[0] = 1 // simulate a precondition mismatch

	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic on stale precondition")
		}
		if _, ok := r.(*kmc.InvariantViolation); !ok {
			t.Fatalf("panic value = %T, want *kmc.InvariantViolation", r)
		}
	}()
	traj.UpdateState(state, slot)
}
