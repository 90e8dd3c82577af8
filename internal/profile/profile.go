// Package profile builds initial wavefunctions: analytic shapes to relax
// from in imaginary time, or to evolve directly in real time.
package profile

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"

	"github.com/san-kum/gpesim/internal/gpe"
	"github.com/san-kum/gpesim/internal/grid"
)

// Gaussian returns a wave packet with per-axis widths, centered at
// center, carrying momentum k0 along the first axis. Missing widths
// default to 1 and missing center entries to 0. The result is normalized
// to the given particle number.
func Gaussian(g *grid.Grid, widths, center []float64, k0, norm float64) (gpe.Wavefunction, error) {
	if len(widths) > g.Dim() || len(center) > g.Dim() {
		return nil, fmt.Errorf("%w: profile parameters exceed grid dimension", gpe.ErrBadGrid)
	}
	w := make([]float64, g.Dim())
	c := make([]float64, g.Dim())
	for a := range w {
		w[a] = 1.0
		if a < len(widths) {
			if widths[a] <= 0 {
				return nil, fmt.Errorf("%w: width %g on axis %d", gpe.ErrBadGrid, widths[a], a)
			}
			w[a] = widths[a]
		}
		if a < len(center) {
			c[a] = center[a]
		}
	}

	psi := make(gpe.Wavefunction, g.Size())
	for i := range psi {
		arg := 0.0
		for a := 0; a < g.Dim(); a++ {
			d := (g.At(a, i) - c[a]) / w[a]
			arg += d * d
		}
		psi[i] = complex(math.Exp(-0.5*arg), 0)
		if k0 != 0 {
			psi[i] *= cmplx.Exp(complex(0, k0*g.At(0, i)))
		}
	}
	psi.Renormalize(g.DV, norm)
	return psi, nil
}

// ThomasFermi returns the interaction-dominated profile
// rho(r) = (mu - V(r)) / coupling clipped at zero, with the chemical
// potential mu fixed analytically by the dimension. Useful as a starting
// point for strongly interacting ground-state searches.
func ThomasFermi(g *grid.Grid, coupling, norm float64) (gpe.Wavefunction, error) {
	if coupling <= 0 {
		return nil, fmt.Errorf("%w: thomas-fermi profile needs positive coupling, got %g", gpe.ErrBadGrid, coupling)
	}
	mu, err := Mu(g.Dim(), coupling)
	if err != nil {
		return nil, err
	}

	psi := make(gpe.Wavefunction, g.Size())
	for i := range psi {
		rSq := 0.0
		for a := 0; a < g.Dim(); a++ {
			x := g.At(a, i)
			rSq += x * x
		}
		rho := mu * (1.0 - rSq/(2.0*mu)) / coupling
		if rho > 0 {
			psi[i] = complex(math.Sqrt(rho), 0)
		}
	}
	psi.Renormalize(g.DV, norm)
	return psi, nil
}

// Mu is the analytic Thomas-Fermi chemical potential for the isotropic
// unit trap at the given coupling.
func Mu(dim int, coupling float64) (float64, error) {
	switch dim {
	case 1:
		return math.Pow(3.0*coupling/(4.0*math.Sqrt2), 2.0/3.0), nil
	case 2:
		return math.Sqrt(coupling / math.Pi), nil
	case 3:
		return math.Pow(15.0*coupling/(16.0*math.Sqrt2*math.Pi), 2.0/5.0), nil
	default:
		return 0, fmt.Errorf("%w: no thomas-fermi solution in %dD", gpe.ErrBadGrid, dim)
	}
}

// Noise multiplies the state by uniform noise in [min, max), breaking the
// symmetry of an analytic profile so relaxation can find modulated
// (supersolid) ground states. Deterministic for a given seed.
func Noise(psi gpe.Wavefunction, min, max float64, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	for i := range psi {
		psi[i] *= complex(min+(max-min)*rng.Float64(), 0)
	}
}
