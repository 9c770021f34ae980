package main

import (
	"sync"

	"github.com/kmcsim/kmc-core/internal/kmc"
	"github.com/kmcsim/kmc-core/internal/kmc/klog"
)

// historyPacket is one completed trajectory's full history, tagged with
// the seed that produced it.
//
// Grounded on the reference dispatcher's HistoryPacket
// (original_source/core/dispatcher.h): a worker runs a trajectory to
// completion and hands the whole history to the writer in one piece,
// rather than streaming individual steps.
type historyPacket[H any] struct {
	seed    uint64
	history []H
}

// runWorkers starts numWorkers goroutines, each pulling seeds from seeds
// and running one trajectory per seed to completion, sending the result
// on results. Closes results once every worker has drained seeds.
//
// A trajectory whose Model panics with an invariant violation is
// recovered inside its own seed iteration: the panic is logged and that
// seed's packet is dropped, but the worker goes on to its next seed. This
// is the Go-idiomatic reading of the original's process-abort-on-invariant
// behavior — one bad trajectory should not take the whole batch down.
func runWorkers[H any](
	seeds <-chan uint64,
	results chan<- historyPacket[H],
	newModel func() kmc.Model[H],
	newSolver kmc.SolverFactory,
	stepCutoff int,
	timeCutoff float64,
	numWorkers int,
	log klog.Logger,
) {
	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for seed := range seeds {
				runOne(seed, newModel, newSolver, stepCutoff, timeCutoff, results, log)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()
}

func runOne[H any](
	seed uint64,
	newModel func() kmc.Model[H],
	newSolver kmc.SolverFactory,
	stepCutoff int,
	timeCutoff float64,
	results chan<- historyPacket[H],
	log klog.Logger,
) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("trajectory dropped: seed=%d panic=%v", seed, r)
		}
	}()

	sim := kmc.NewSimulation[H](newModel(), seed, stepCutoff, timeCutoff, newSolver)
	sim.ExecuteSteps(stepCutoff)

	history := sim.History()
	out := make([]H, len(history))
	copy(out, history)

	results <- historyPacket[H]{seed: seed, history: out}
}

// feedSeeds sends count seeds starting at baseSeed, then closes the
// channel. baseSeed+i is used verbatim (no hashing) so a batch run with
// the same base seed and count is exactly reproducible.
func feedSeeds(baseSeed uint64, count int) <-chan uint64 {
	seeds := make(chan uint64, count)
	for i := range count {
		seeds <- baseSeed + uint64(i)
	}
	close(seeds)
	return seeds
}
