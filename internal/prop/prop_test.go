package prop

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/gpesim/internal/gpe"
	"github.com/san-kum/gpesim/internal/grid"
	"github.com/san-kum/gpesim/internal/observe"
	"github.com/san-kum/gpesim/internal/potential"
	"github.com/san-kum/gpesim/internal/profile"
)

func mustGrid(t *testing.T, axes ...grid.Axis) *grid.Grid {
	t.Helper()
	g, err := grid.New(axes...)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	return g
}

func mustGaussian(t *testing.T, g *grid.Grid, width, center float64) gpe.Wavefunction {
	t.Helper()
	psi, err := profile.Gaussian(g, []float64{width}, []float64{center}, 0, 1.0)
	if err != nil {
		t.Fatalf("gaussian: %v", err)
	}
	return psi
}

func stepUntilDone(t *testing.T, p *Propagator, maxSteps int) error {
	t.Helper()
	for i := 0; i < maxSteps && !p.State().Terminal(); i++ {
		if err := p.Step(); err != nil {
			return err
		}
	}
	return nil
}

func TestGroundStateHarmonic1D(t *testing.T) {
	g := mustGrid(t, grid.Axis{Min: -10, Max: 10, Points: 128})
	trap, err := potential.NewHarmonic(g)
	if err != nil {
		t.Fatalf("harmonic: %v", err)
	}
	field := potential.NewField(trap)

	params := gpe.TimeStep{
		Dt: 0.01, Steps: 20000, Mode: gpe.ImaginaryTime,
		TargetNorm: 1.0, Tolerance: 1e-10, Patience: 20, DivergenceWindow: 50,
	}
	// Start well away from the ground state.
	p, err := New(g, field, params, mustGaussian(t, g, 2.5, 0))
	if err != nil {
		t.Fatalf("propagator: %v", err)
	}

	if err := stepUntilDone(t, p, params.Steps); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if p.State() != gpe.Converged {
		t.Fatalf("state = %s, want converged", p.State())
	}

	// Non-interacting harmonic trap: the chemical potential equals the
	// oscillator ground-state energy 1/2.
	if math.Abs(p.Mu()-0.5) > 1e-3 {
		t.Errorf("mu = %g, want 0.5", p.Mu())
	}

	tracker := observe.New(g, trap.Static(), 0)
	rec := tracker.Record(p.Psi(), p.StepCount(), p.Time(), p.Mu())
	if math.Abs(rec.Total-0.5) > 1e-3 {
		t.Errorf("energy = %g, want 0.5", rec.Total)
	}
	if math.Abs(rec.Norm-1.0) > 1e-10 {
		t.Errorf("norm = %g, want 1", rec.Norm)
	}
}

func TestNormConservationFreeGaussian(t *testing.T) {
	// 256 points over a length-20 box, unit-width Gaussian, no potential,
	// 100 real-time steps of dt=0.01.
	g := mustGrid(t, grid.Axis{Min: -10, Max: 10, Points: 256})
	field := potential.NewField()

	params := gpe.TimeStep{Dt: 0.01, Steps: 100, Mode: gpe.RealTime, TargetNorm: 1.0}
	p, err := New(g, field, params, mustGaussian(t, g, 1.0, 0))
	if err != nil {
		t.Fatalf("propagator: %v", err)
	}

	initial := p.Psi().NormSq(g.DV)
	if err := stepUntilDone(t, p, params.Steps); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if p.State() != gpe.Completed {
		t.Fatalf("state = %s, want completed", p.State())
	}

	final := p.Psi().NormSq(g.DV)
	drift := math.Abs(final-initial) / initial
	if drift > 1e-8 {
		t.Errorf("norm drift %g exceeds 1e-8", drift)
	}
}

func TestNormConservationLongRun(t *testing.T) {
	if testing.Short() {
		t.Skip("long run")
	}
	g := mustGrid(t, grid.Axis{Min: -10, Max: 10, Points: 128})
	trap, _ := potential.NewHarmonic(g)
	field := potential.NewField(trap)

	params := gpe.TimeStep{Dt: 0.005, Steps: 10000, Mode: gpe.RealTime, TargetNorm: 1.0}
	p, err := New(g, field, params, mustGaussian(t, g, 1.0, 1.0))
	if err != nil {
		t.Fatalf("propagator: %v", err)
	}

	initial := p.Psi().NormSq(g.DV)
	if err := stepUntilDone(t, p, params.Steps); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	drift := math.Abs(p.Psi().NormSq(g.DV)-initial) / initial
	if drift > 1e-6 {
		t.Errorf("norm drift %g exceeds 1e-6 over 10000 steps", drift)
	}
}

// l2Distance is the grid-weighted distance between two states.
func l2Distance(a, b gpe.Wavefunction, dv float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		re, im := real(d), imag(d)
		sum += re*re + im*im
	}
	return math.Sqrt(sum * dv)
}

// evolveSymmetric advances a displaced Gaussian in a harmonic trap with
// the symmetric splitting for total time T in n steps.
func evolveSymmetric(t *testing.T, g *grid.Grid, field *potential.Field, total float64, n int) gpe.Wavefunction {
	t.Helper()
	params := gpe.TimeStep{Dt: total / float64(n), Steps: n, Mode: gpe.RealTime, TargetNorm: 1.0}
	p, err := New(g, field, params, mustGaussian(t, g, 1.0, 1.0))
	if err != nil {
		t.Fatalf("propagator: %v", err)
	}
	for i := 0; i < n; i++ {
		if err := p.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	return p.Psi()
}

// evolveAsymmetric uses the first-order Lie ordering, a full potential
// step followed by a full kinetic step, bypassing Step's bookkeeping.
func evolveAsymmetric(t *testing.T, g *grid.Grid, field *potential.Field, total float64, n int) gpe.Wavefunction {
	t.Helper()
	params := gpe.TimeStep{Dt: total / float64(n), Steps: n + 1, Mode: gpe.RealTime, TargetNorm: 1.0}
	p, err := New(g, field, params, mustGaussian(t, g, 1.0, 1.0))
	if err != nil {
		t.Fatalf("propagator: %v", err)
	}
	for i := 0; i < n; i++ {
		if err := p.applyPotentialHalf(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if err := p.applyPotentialHalf(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		p.applyKinetic()
	}
	return p.psi
}

func TestSymmetricSplittingIsSecondOrder(t *testing.T) {
	g := mustGrid(t, grid.Axis{Min: -8, Max: 8, Points: 64})
	trap, _ := potential.NewHarmonic(g)
	field := potential.NewField(trap)

	const total = 0.64
	ref := evolveSymmetric(t, g, field, total, 512)

	errAt := func(evolve func(*testing.T, *grid.Grid, *potential.Field, float64, int) gpe.Wavefunction, n int) float64 {
		return l2Distance(evolve(t, g, field, total, n), ref, g.DV)
	}

	symCoarse := errAt(evolveSymmetric, 8)
	symFine := errAt(evolveSymmetric, 16)
	asymCoarse := errAt(evolveAsymmetric, 8)
	asymFine := errAt(evolveAsymmetric, 16)

	symOrder := math.Log2(symCoarse / symFine)
	asymOrder := math.Log2(asymCoarse / asymFine)
	t.Logf("symmetric order %.2f (err %.3e -> %.3e)", symOrder, symCoarse, symFine)
	t.Logf("asymmetric order %.2f (err %.3e -> %.3e)", asymOrder, asymCoarse, asymFine)

	if symOrder < 1.7 {
		t.Errorf("symmetric splitting order %.2f, want ~2", symOrder)
	}
	if asymOrder > 1.5 {
		t.Errorf("asymmetric splitting order %.2f, want ~1", asymOrder)
	}
	if asymCoarse <= symCoarse {
		t.Errorf("breaking symmetry did not degrade accuracy: %g <= %g", asymCoarse, symCoarse)
	}
}

func TestDivergenceDetected(t *testing.T) {
	// Strongly attractive interaction with a large imaginary-time step:
	// the amplitude explodes within a few steps and must surface as
	// Diverged, not as silent NaN output.
	g := mustGrid(t, grid.Axis{Min: -8, Max: 8, Points: 64})
	trap, _ := potential.NewHarmonic(g)
	field := potential.NewField(trap, potential.Contact{G: -5000})

	params := gpe.TimeStep{
		Dt: 0.1, Steps: 10000, Mode: gpe.ImaginaryTime,
		TargetNorm: 1.0, Tolerance: 1e-8, Patience: 10, DivergenceWindow: 50,
	}
	p, err := New(g, field, params, mustGaussian(t, g, 1.0, 0))
	if err != nil {
		t.Fatalf("propagator: %v", err)
	}

	var stepErr error
	for i := 0; i < 200 && !p.State().Terminal(); i++ {
		if stepErr = p.Step(); stepErr != nil {
			break
		}
	}

	if p.State() != gpe.Diverged {
		t.Fatalf("state = %s, want diverged", p.State())
	}
	if !errors.Is(stepErr, gpe.ErrNonFinite) {
		t.Errorf("expected ErrNonFinite, got %v", stepErr)
	}
	var se *gpe.StepError
	if !errors.As(stepErr, &se) {
		t.Error("divergence not reported with its step index")
	}
}

func TestImaginaryTimeRenormalizesEveryStep(t *testing.T) {
	g := mustGrid(t, grid.Axis{Min: -10, Max: 10, Points: 128})
	trap, _ := potential.NewHarmonic(g)
	field := potential.NewField(trap)

	params := gpe.TimeStep{
		Dt: 0.01, Steps: 1000, Mode: gpe.ImaginaryTime,
		TargetNorm: 2.0, Tolerance: 1e-12, Patience: 10, DivergenceWindow: 50,
	}
	psi0, err := profile.Gaussian(g, []float64{1.5}, nil, 0, 2.0)
	if err != nil {
		t.Fatalf("gaussian: %v", err)
	}
	p, err := New(g, field, params, psi0)
	if err != nil {
		t.Fatalf("propagator: %v", err)
	}

	for i := 0; i < 20; i++ {
		if err := p.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if n2 := p.Psi().NormSq(g.DV); math.Abs(n2-2.0) > 1e-10 {
			t.Fatalf("step %d: norm %g, want 2", i, n2)
		}
	}
}

func TestStepAfterCompletion(t *testing.T) {
	g := mustGrid(t, grid.Axis{Min: -5, Max: 5, Points: 32})
	field := potential.NewField()

	params := gpe.TimeStep{Dt: 0.01, Steps: 3, Mode: gpe.RealTime, TargetNorm: 1.0}
	p, err := New(g, field, params, mustGaussian(t, g, 1.0, 0))
	if err != nil {
		t.Fatalf("propagator: %v", err)
	}

	if p.State() != gpe.Idle {
		t.Errorf("initial state = %s, want idle", p.State())
	}
	for i := 0; i < 3; i++ {
		if err := p.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if p.State() != gpe.Completed {
		t.Fatalf("state = %s, want completed", p.State())
	}
	if err := p.Step(); !errors.Is(err, gpe.ErrRunFinished) {
		t.Errorf("expected ErrRunFinished, got %v", err)
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	g := mustGrid(t, grid.Axis{Min: -5, Max: 5, Points: 32})
	field := potential.NewField()
	params := gpe.TimeStep{Dt: 0.01, Steps: 10, Mode: gpe.RealTime, TargetNorm: 1.0}

	if _, err := New(g, field, params, make(gpe.Wavefunction, 7)); !errors.Is(err, gpe.ErrBadGrid) {
		t.Errorf("size mismatch: expected ErrBadGrid, got %v", err)
	}

	bad := make(gpe.Wavefunction, 32)
	bad[3] = complex(math.NaN(), 0)
	if _, err := New(g, field, params, bad); !errors.Is(err, gpe.ErrNonFinite) {
		t.Errorf("NaN input: expected ErrNonFinite, got %v", err)
	}

	params.Dt = 0
	if _, err := New(g, field, params, make(gpe.Wavefunction, 32)); !errors.Is(err, gpe.ErrBadTimeStep) {
		t.Errorf("bad dt: expected ErrBadTimeStep, got %v", err)
	}
}
