// Package observe extracts scalar diagnostics from the wavefunction:
// norm, energies, center of mass and widths. Records accumulate into an
// append-only history consumed by plotting and export.
package observe

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/gpesim/internal/gpe"
	"github.com/san-kum/gpesim/internal/grid"
	"github.com/san-kum/gpesim/internal/spectral"
)

type Record struct {
	Step        int     `json:"step"`
	Time        float64 `json:"time"`
	Norm        float64 `json:"norm"`
	Kinetic     float64 `json:"kinetic"`
	Potential   float64 `json:"potential"`
	Interaction float64 `json:"interaction"`
	Total       float64 `json:"total"`
	Mu          float64 `json:"mu"`

	Center []float64 `json:"center"`
	Width  []float64 `json:"width"`
}

type Tracker struct {
	grid     *grid.Grid
	tr       *spectral.Transform
	trap     []float64
	coupling float64

	density []float64
	history []Record
}

// New builds a tracker. trap is the static potential array used for the
// potential-energy quadrature (nil for free space); coupling is the
// contact interaction constant g.
func New(g *grid.Grid, trap []float64, coupling float64) *Tracker {
	return &Tracker{
		grid:     g,
		tr:       spectral.New(g.Shape),
		trap:     trap,
		coupling: coupling,
		density:  make([]float64, g.Size()),
	}
}

// Record computes the observables of psi and appends them to the history.
// psi is not mutated; the kinetic term transforms a copy.
func (t *Tracker) Record(psi gpe.Wavefunction, step int, time, mu float64) Record {
	dv := t.grid.DV
	t.density = psi.Density(t.density)

	r := Record{
		Step: step,
		Time: time,
		Norm: floats.Sum(t.density) * dv,
		Mu:   mu,
	}

	// Kinetic energy from the spectral second moment. With an
	// unnormalized forward transform, Parseval gives a 1/size factor.
	psiK := t.tr.Forward(psi)
	kin := 0.0
	for i, v := range psiK {
		re, im := real(v), imag(v)
		kin += 0.5 * t.grid.KSq[i] * (re*re + im*im)
	}
	r.Kinetic = kin * dv / float64(t.grid.Size())

	if t.trap != nil {
		r.Potential = floats.Dot(t.trap, t.density) * dv
	}
	r.Interaction = 0.5 * t.coupling * floats.Dot(t.density, t.density) * dv
	r.Total = r.Kinetic + r.Potential + r.Interaction

	r.Center, r.Width = t.moments(r.Norm)

	t.history = append(t.history, r)
	return r
}

// moments returns the density-weighted center of mass and rms width per
// axis.
func (t *Tracker) moments(norm float64) ([]float64, []float64) {
	dim := t.grid.Dim()
	center := make([]float64, dim)
	width := make([]float64, dim)
	if norm <= 0 {
		return center, width
	}

	dv := t.grid.DV
	for a := 0; a < dim; a++ {
		m1 := 0.0
		for i, rho := range t.density {
			m1 += t.grid.At(a, i) * rho
		}
		center[a] = m1 * dv / norm
	}
	for a := 0; a < dim; a++ {
		m2 := 0.0
		for i, rho := range t.density {
			d := t.grid.At(a, i) - center[a]
			m2 += d * d * rho
		}
		w := m2 * dv / norm
		if w > 0 {
			width[a] = math.Sqrt(w)
		}
	}
	return center, width
}

func (t *Tracker) History() []Record { return t.history }

func (t *Tracker) Last() (Record, bool) {
	if len(t.history) == 0 {
		return Record{}, false
	}
	return t.history[len(t.history)-1], true
}
