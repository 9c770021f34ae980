package kmc

import "fmt"

// InvariantViolation signals one of the step-time programmer-error
// conditions: a state-update precondition failed, or a
// per-site index entry went missing during compaction. These indicate the
// solver and model have desynchronized and the trajectory cannot be
// meaningfully continued.
//
// The C++ original raises SIGINT and aborts the process; Go has no
// process-wide signal idiom for this, so InvariantViolation is designed to
// be passed to panic() by the engine that detects it. The driver does not
// recover from it — a caller running many trajectories (cmd/kmc-sim) wraps
// each trajectory in its own recover, drops that trajectory and goes on
// with the remaining seeds, which is the Go-idiomatic reading of "recovery
// is at the orchestration layer".
type InvariantViolation struct {
	Reason string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("kmc: invariant violation: %s", e.Reason)
}

// NewInvariantViolation builds an InvariantViolation with a formatted
// reason.
func NewInvariantViolation(format string, args ...any) *InvariantViolation {
	return &InvariantViolation{Reason: fmt.Sprintf(format, args...)}
}
