package gpe

import "fmt"

// Mode selects between real-time evolution and imaginary-time
// ground-state relaxation.
type Mode int

const (
	RealTime Mode = iota
	ImaginaryTime
)

func (m Mode) String() string {
	switch m {
	case RealTime:
		return "real"
	case ImaginaryTime:
		return "imag"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "real", "realtime":
		return RealTime, nil
	case "imag", "imaginary":
		return ImaginaryTime, nil
	default:
		return 0, fmt.Errorf("%w: unknown mode %q", ErrBadTimeStep, s)
	}
}

// RunState is the propagator state machine.
type RunState int

const (
	Idle RunState = iota
	Stepping
	Converged
	Diverged
	Completed
)

func (s RunState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Stepping:
		return "stepping"
	case Converged:
		return "converged"
	case Diverged:
		return "diverged"
	case Completed:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether the run has finished in this state.
func (s RunState) Terminal() bool {
	return s == Converged || s == Diverged || s == Completed
}

// TimeStep holds the stepping parameters for one run. Immutable once the
// propagator is constructed.
type TimeStep struct {
	Dt         float64
	Steps      int
	Mode       Mode
	TargetNorm float64

	// Imaginary-time convergence policy: the run converges when the
	// relative change of the chemical potential stays below Tolerance for
	// Patience consecutive steps. It diverges when the chemical potential
	// rises for DivergenceWindow consecutive steps.
	Tolerance        float64
	Patience         int
	DivergenceWindow int
}

func DefaultTimeStep() TimeStep {
	return TimeStep{
		Dt:               0.01,
		Steps:            10000,
		Mode:             ImaginaryTime,
		TargetNorm:       1.0,
		Tolerance:        1e-8,
		Patience:         10,
		DivergenceWindow: 50,
	}
}

func (p TimeStep) Validate() error {
	if p.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrBadTimeStep, p.Dt)
	}
	if p.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrBadTimeStep, p.Steps)
	}
	if p.TargetNorm <= 0 {
		return fmt.Errorf("%w: target norm must be positive, got %g", ErrBadTimeStep, p.TargetNorm)
	}
	if p.Mode == ImaginaryTime {
		if p.Tolerance <= 0 {
			return fmt.Errorf("%w: tolerance must be positive for imaginary time", ErrBadTimeStep)
		}
		if p.Patience <= 0 {
			return fmt.Errorf("%w: patience must be positive for imaginary time", ErrBadTimeStep)
		}
	}
	return nil
}
