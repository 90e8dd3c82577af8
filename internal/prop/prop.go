// Package prop advances the wavefunction with the split-operator method:
// a symmetric Trotter-Suzuki step alternating the potential phase in
// position space with the kinetic phase in momentum space.
package prop

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/san-kum/gpesim/internal/gpe"
	"github.com/san-kum/gpesim/internal/grid"
	"github.com/san-kum/gpesim/internal/potential"
	"github.com/san-kum/gpesim/internal/spectral"
)

// Propagator owns the wavefunction for the duration of a run. Observers
// get read-only clones through Psi.
type Propagator struct {
	grid   *grid.Grid
	tr     *spectral.Transform
	field  *potential.Field
	params gpe.TimeStep

	psi     gpe.Wavefunction
	expK    []complex128 // full-step kinetic factor, precomputed
	veff    []float64
	density []float64

	state  gpe.RunState
	step   int
	t      float64
	mu     float64
	calm   int
	rising int
	err    error
}

func New(g *grid.Grid, field *potential.Field, params gpe.TimeStep, psi0 gpe.Wavefunction) (*Propagator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if len(psi0) != g.Size() {
		return nil, fmt.Errorf("%w: wavefunction has %d points, grid has %d", gpe.ErrBadGrid, len(psi0), g.Size())
	}
	if !psi0.IsFinite() {
		return nil, fmt.Errorf("%w: initial wavefunction", gpe.ErrNonFinite)
	}

	p := &Propagator{
		grid:    g,
		tr:      spectral.New(g.Shape),
		field:   field,
		params:  params,
		psi:     psi0.Clone(),
		expK:    make([]complex128, g.Size()),
		veff:    make([]float64, g.Size()),
		density: make([]float64, g.Size()),
		state:   gpe.Idle,
	}

	// The kinetic factor depends only on the grid, so exp(U*k^2/2*dt) is
	// computed once. U is -i in real time and -1 in imaginary time.
	for i, kSq := range g.KSq {
		arg := -0.5 * kSq * params.Dt
		if params.Mode == gpe.ImaginaryTime {
			p.expK[i] = complex(math.Exp(arg), 0)
		} else {
			p.expK[i] = cmplx.Exp(complex(0, arg))
		}
	}
	return p, nil
}

func (p *Propagator) State() gpe.RunState  { return p.state }
func (p *Propagator) Params() gpe.TimeStep { return p.params }
func (p *Propagator) StepCount() int       { return p.step }
func (p *Propagator) Time() float64        { return p.t }
func (p *Propagator) Err() error           { return p.err }

// Mu is the chemical potential estimate from the last imaginary-time
// renormalization, mu = -ln(N)/(2*dtau).
func (p *Propagator) Mu() float64 { return p.mu }

// Psi returns a read-only snapshot of the current wavefunction.
func (p *Propagator) Psi() gpe.Wavefunction { return p.psi.Clone() }

// Step advances one symmetric split step:
// V/2 in position space, full K in momentum space, V/2 again. The
// effective potential is rebuilt from the instantaneous density before
// each half step; reusing the first half's potential would silently break
// the feedback between density and phase.
func (p *Propagator) Step() error {
	if p.state.Terminal() {
		return gpe.ErrRunFinished
	}
	p.state = gpe.Stepping

	if err := p.applyPotentialHalf(); err != nil {
		return p.fail(err)
	}
	p.applyKinetic()
	if err := p.applyPotentialHalf(); err != nil {
		return p.fail(err)
	}

	p.step++
	p.t += p.params.Dt

	if p.params.Mode == gpe.ImaginaryTime {
		return p.relaxBookkeeping()
	}

	if !p.psi.IsFinite() {
		return p.fail(gpe.ErrNonFinite)
	}
	if p.step >= p.params.Steps {
		p.state = gpe.Completed
	}
	return nil
}

// relaxBookkeeping renormalizes after an imaginary-time step (the
// non-unitary evolution decays the norm by construction) and applies the
// convergence policy on the chemical potential.
func (p *Propagator) relaxBookkeeping() error {
	if !p.psi.IsFinite() {
		return p.fail(gpe.ErrNonFinite)
	}
	n2 := p.psi.Renormalize(p.grid.DV, p.params.TargetNorm)
	if n2 <= 0 {
		return p.fail(gpe.ErrNonFinite)
	}

	lastMu := p.mu
	p.mu = -math.Log(n2/p.params.TargetNorm) / (2.0 * p.params.Dt)

	if p.step > 1 {
		tol := p.params.Tolerance
		rel := math.Abs(p.mu-lastMu) / math.Max(math.Abs(p.mu), 1e-12)
		if rel < tol {
			p.calm++
		} else {
			p.calm = 0
		}
		if p.mu > lastMu+tol*math.Max(math.Abs(lastMu), 1.0) {
			p.rising++
		} else {
			p.rising = 0
		}
	}

	switch {
	case p.rising >= p.params.DivergenceWindow && p.params.DivergenceWindow > 0:
		return p.fail(gpe.ErrUnstable)
	case p.calm >= p.params.Patience:
		p.state = gpe.Converged
	case p.step >= p.params.Steps:
		// Budget exhausted on a still-valid state; the driver reports this
		// as a convergence failure, distinct from divergence.
		p.state = gpe.Completed
	}
	return nil
}

func (p *Propagator) applyPotentialHalf() error {
	p.density = p.psi.Density(p.density)
	veff, err := p.field.Evaluate(p.veff, p.density, p.t)
	if err != nil {
		return err
	}
	p.veff = veff

	half := 0.5 * p.params.Dt
	if p.params.Mode == gpe.ImaginaryTime {
		for i := range p.psi {
			p.psi[i] *= complex(math.Exp(-veff[i]*half), 0)
		}
	} else {
		for i := range p.psi {
			p.psi[i] *= cmplx.Exp(complex(0, -veff[i]*half))
		}
	}
	return nil
}

func (p *Propagator) applyKinetic() {
	p.tr.ForwardInPlace(p.psi)
	for i := range p.psi {
		p.psi[i] *= p.expK[i]
	}
	p.tr.InverseInPlace(p.psi)
}

func (p *Propagator) fail(err error) error {
	p.state = gpe.Diverged
	p.err = &gpe.StepError{Step: p.step, Time: p.t, Wrapped: err}
	return p.err
}
