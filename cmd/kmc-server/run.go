package main

import (
	"sync"
	"time"

	"github.com/kmcsim/kmc-core/internal/kmc"
	"github.com/kmcsim/kmc-core/internal/kmc/klog"
	"github.com/kmcsim/kmc-core/internal/notify"
)

// RunID is a unique identifier for a live simulation run.
type RunID string

// runStatus is the JSON-able snapshot of a run's progress.
type runStatus struct {
	ID      RunID   `json:"id"`
	Model   string  `json:"model"`
	Seed    uint64  `json:"seed"`
	Step    int     `json:"step"`
	Time    float64 `json:"time"`
	Running bool    `json:"running"`
}

// run is the server's non-generic view of a live simulation, letting the
// HTTP layer manage runs of either model kind uniformly. Modeled on
// achem.Environment's Run/Stop/Step ticker goroutine, generalized to any
// kmc.Model.
type run interface {
	Start(interval time.Duration)
	Stop()
	Tick()
	Status() runStatus
}

// simRun wraps a *kmc.Simulation[H] with the ticking-goroutine lifecycle
// the HTTP handlers drive, and fans each firing out through the
// notification manager.
type simRun[H any] struct {
	mu        sync.Mutex
	id        RunID
	modelName string
	sim       *kmc.Simulation[H]
	toEvent   func(seed uint64, step int, h H) notify.Event

	mgr         *notify.Manager
	notifierIDs func() []string
	log         klog.Logger

	isRunning bool
	stopCh    chan struct{}
}

func newSimRun[H any](
	id RunID,
	modelName string,
	sim *kmc.Simulation[H],
	toEvent func(seed uint64, step int, h H) notify.Event,
	mgr *notify.Manager,
	notifierIDs func() []string,
	log klog.Logger,
) *simRun[H] {
	return &simRun[H]{
		id: id, modelName: modelName, sim: sim, toEvent: toEvent,
		mgr: mgr, notifierIDs: notifierIDs, log: log,
	}
}

// Tick executes a single step, useful for manual stepping when the run is
// not in auto-run mode.
func (r *simRun[H]) Tick() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.step()
}

// step executes at most one reaction and notifies subscribers of it. It
// reports false once the run can go no further: no event, time cutoff
// reached, or step cutoff reached. Caller must hold r.mu.
func (r *simRun[H]) step() bool {
	// The history buffer holds stepCutoff+1 entries, the most ExecuteSteps
	// ever fires; once it is full the step cutoff has been passed.
	before := r.sim.History()
	if len(before) == cap(before) {
		return false
	}
	ok := r.sim.ExecuteStep()
	history := r.sim.History()
	if ids := r.notifierIDs(); len(history) > len(before) && len(ids) > 0 {
		last := history[len(history)-1]
		r.mgr.Enqueue(r.toEvent(r.sim.Seed(), r.sim.Step()-1, last), ids)
	}
	return ok
}

// Start begins auto-stepping on a ticker. A no-op if already running.
func (r *simRun[H]) Start(interval time.Duration) {
	r.mu.Lock()
	if r.isRunning {
		r.mu.Unlock()
		return
	}
	r.stopCh = make(chan struct{})
	r.isRunning = true
	stopCh := r.stopCh
	r.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				r.mu.Lock()
				cont := r.step()
				r.mu.Unlock()
				if !cont {
					r.Stop()
					return
				}
			case <-stopCh:
				return
			}
		}
	}()
}

// Stop halts auto-stepping. Tick can still be called manually afterward.
func (r *simRun[H]) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.isRunning {
		return
	}
	close(r.stopCh)
	r.isRunning = false
}

func (r *simRun[H]) Status() runStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return runStatus{
		ID: r.id, Model: r.modelName, Seed: r.sim.Seed(),
		Step: r.sim.Step(), Time: r.sim.Time(), Running: r.isRunning,
	}
}

// runManager holds every live run, isolated from one another, keyed by
// RunID. Modeled on achem.EnvironmentManager.
type runManager struct {
	mu   sync.RWMutex
	runs map[RunID]run
}

func newRunManager() *runManager {
	return &runManager{runs: make(map[RunID]run)}
}

func (m *runManager) Add(id RunID, r run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.runs[id]; exists {
		return errRunExists(id)
	}
	m.runs[id] = r
	return nil
}

func (m *runManager) Get(id RunID) (run, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.runs[id]
	return r, ok
}

func (m *runManager) Delete(id RunID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, exists := m.runs[id]
	if !exists {
		return errRunNotFound(id)
	}
	r.Stop()
	delete(m.runs, id)
	return nil
}

func (m *runManager) List() []RunID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]RunID, 0, len(m.runs))
	for id := range m.runs {
		ids = append(ids, id)
	}
	return ids
}
