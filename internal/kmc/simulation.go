package kmc

// SolverFactory constructs a fresh Solver for one trajectory, given its
// seed and the model's initial propensity vector. Kept as a function value
// rather than a constructor method on an interface so that any concrete
// solver type (see internal/kmc/solver) can be plugged in without the core
// depending on it.
type SolverFactory func(seed uint64, initialPropensities []float64) Solver

// Simulation drives a single trajectory: it threads (state, time, step)
// through a Model and a Solver until a stop condition fires. One
// Simulation instance belongs to exactly one trajectory; it is not safe
// for concurrent use (trajectories are single-threaded and
// sequential, many can run in parallel each owning its own Simulation).
type Simulation[H any] struct {
	model      Model[H]
	seed       uint64
	state      []int64
	time       float64
	timeCutoff float64
	step       int
	solver     Solver
	history    []H
	update     func(Update)
}

// NewSimulation builds a Simulation for one trajectory. stepCutoff sizes
// the history buffer to stepCutoff+1 — one slack slot so the terminating
// step can always be recorded without a bounds check.
func NewSimulation[H any](model Model[H], seed uint64, stepCutoff int, timeCutoff float64, newSolver SolverFactory) *Simulation[H] {
	initialPropensities := model.InitialPropensities()
	sim := &Simulation[H]{
		model:      model,
		seed:       seed,
		state:      model.InitialState(),
		time:       0,
		timeCutoff: timeCutoff,
		step:       0,
		history:    make([]H, stepCutoff+1),
	}
	sim.solver = newSolver(seed, initialPropensities)
	sim.update = func(u Update) { sim.solver.Update(u) }
	return sim
}

// ExecuteStep asks the solver for an event, applies it, and reports
// whether the simulation should continue.
func (s *Simulation[H]) ExecuteStep() bool {
	event, ok := s.solver.Event()
	if !ok {
		return false
	}

	s.time += event.Dt
	s.history[s.step] = s.model.MakeHistoryElement(event.Index, s.step, s.time)
	s.step++

	s.model.UpdateState(s.state, event.Index)
	s.model.UpdatePropensities(s.update, s.state, event.Index)

	return s.time < s.timeCutoff
}

// ExecuteSteps runs ExecuteStep until it reports stop, or until the step
// count exceeds stepCutoff.
func (s *Simulation[H]) ExecuteSteps(stepCutoff int) {
	for s.ExecuteStep() {
		if s.step > stepCutoff {
			break
		}
	}
}

// Seed returns the trajectory's RNG seed.
func (s *Simulation[H]) Seed() uint64 { return s.seed }

// Step returns the number of reactions that have fired so far.
func (s *Simulation[H]) Step() int { return s.step }

// Time returns the current simulation time.
func (s *Simulation[H]) Time() float64 { return s.time }

// State returns the live state vector. Callers must not retain it past
// the next ExecuteStep call without copying.
func (s *Simulation[H]) State() []int64 { return s.state }

// History returns the history recorded so far, trimmed to the number of
// steps actually taken (the backing buffer may be larger).
func (s *Simulation[H]) History() []H {
	return s.history[:s.step]
}
