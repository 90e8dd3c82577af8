package gpe

import (
	"errors"
	"fmt"
)

// Domain errors for split-step runs.
var (
	// ErrBadGrid indicates invalid grid geometry (non-positive point count
	// or degenerate extent). Detected at construction, never retried.
	ErrBadGrid = errors.New("gpe: invalid grid geometry")

	// ErrBadTimeStep indicates invalid stepping parameters.
	ErrBadTimeStep = errors.New("gpe: invalid time step parameters")

	// ErrNonFinite indicates NaN or Inf in the wavefunction or density.
	// Fatal to the run; it means an unstable dt or ill-posed potential.
	ErrNonFinite = errors.New("gpe: non-finite value encountered")

	// ErrUnstable indicates the relaxation energy kept rising, which means
	// the time step exceeds the stability bound for the grid spacing.
	ErrUnstable = errors.New("gpe: energy rising, run unstable")

	// ErrNotConverged indicates an imaginary-time run exhausted its step
	// budget without meeting the tolerance. The final state is still
	// numerically valid, unlike a diverged run.
	ErrNotConverged = errors.New("gpe: step budget exhausted before convergence")

	// ErrRunFinished indicates a step was requested on a terminal state.
	ErrRunFinished = errors.New("gpe: propagator already finished")
)

// StepError wraps an error with the step at which it occurred.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
