package main

import (
	"testing"

	"github.com/kmcsim/kmc-core/internal/kmc"
	"github.com/kmcsim/kmc-core/internal/kmc/klog"
)

type countingHistory struct {
	step int
}

// countingModel fires reaction 0 exactly firedLimit times then halts, and
// panics if asked to fire a seed equal to panicSeed — used to exercise the
// per-trajectory panic recovery in runOne/runWorkers.
type countingModel struct {
	fired      int
	firedLimit int
	panicSeed  uint64
	seed       uint64
}

func (m *countingModel) InitialState() []int64         { return []int64{0} }
func (m *countingModel) InitialPropensities() []float64 { return []float64{1.0} }
func (m *countingModel) UpdateState(state []int64, reactionIndex int) {
	if m.panicSeed != 0 && m.seed == m.panicSeed {
		panic("simulated invariant violation")
	}
	state[0]++
	m.fired++
}
func (m *countingModel) UpdatePropensities(update func(kmc.Update), state []int64, reactionIndex int) {
	if m.fired >= m.firedLimit {
		update(kmc.Update{Index: 0, Propensity: 0})
	}
}
func (m *countingModel) MakeHistoryElement(reactionIndex int, step int, t float64) countingHistory {
	return countingHistory{step: step}
}

type countingSolver struct {
	propensity float64
}

func newCountingSolver(seed uint64, initial []float64) kmc.Solver {
	return &countingSolver{propensity: initial[0]}
}

func (s *countingSolver) Event() (kmc.Event, bool) {
	if s.propensity <= 0 {
		return kmc.Event{}, false
	}
	return kmc.Event{Index: 0, Dt: 0.001}, true
}

func (s *countingSolver) Update(u kmc.Update) {
	if u.Index == 0 {
		s.propensity = u.Propensity
	}
}

func TestRunOneProducesFullHistory(t *testing.T) {
	results := make(chan historyPacket[countingHistory], 1)
	newModel := func() kmc.Model[countingHistory] {
		return &countingModel{firedLimit: 5, seed: 1}
	}

	runOne[countingHistory](1, newModel, newCountingSolver, 100, 1e9, results, klog.NewNoOpLogger())

	packet := <-results
	if packet.seed != 1 {
		t.Errorf("expected seed 1, got %d", packet.seed)
	}
	if len(packet.history) != 5 {
		t.Errorf("expected 5 history entries, got %d", len(packet.history))
	}
}

func TestRunOneRecoversFromModelPanic(t *testing.T) {
	results := make(chan historyPacket[countingHistory], 1)
	newModel := func() kmc.Model[countingHistory] {
		return &countingModel{firedLimit: 5, panicSeed: 99, seed: 99}
	}

	done := make(chan struct{})
	go func() {
		runOne[countingHistory](99, newModel, newCountingSolver, 100, 1e9, results, klog.NewNoOpLogger())
		close(done)
	}()

	<-done
	select {
	case <-results:
		t.Error("expected no packet for a trajectory that panicked")
	default:
	}
}

func TestRunWorkersProcessesAllSeedsAndClosesResults(t *testing.T) {
	const numSeeds = 10
	seeds := feedSeeds(1, numSeeds)
	results := make(chan historyPacket[countingHistory], numSeeds)

	newModel := func() kmc.Model[countingHistory] {
		return &countingModel{firedLimit: 3}
	}

	runWorkers[countingHistory](seeds, results, newModel, newCountingSolver, 100, 1e9, 3, klog.NewNoOpLogger())

	seen := make(map[uint64]bool)
	for packet := range results {
		seen[packet.seed] = true
	}
	if len(seen) != numSeeds {
		t.Errorf("expected %d distinct trajectories, got %d", numSeeds, len(seen))
	}
}

func TestFeedSeeds(t *testing.T) {
	seeds := feedSeeds(100, 3)
	var got []uint64
	for s := range seeds {
		got = append(got, s)
	}
	want := []uint64{100, 101, 102}
	if len(got) != len(want) {
		t.Fatalf("expected %d seeds, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("seed[%d] = %d, want %d", i, got[i], w)
		}
	}
}
