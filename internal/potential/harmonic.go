package potential

import (
	"fmt"

	"github.com/san-kum/gpesim/internal/gpe"
	"github.com/san-kum/gpesim/internal/grid"
)

// Harmonic is the static anisotropic trap
// V(r) = 0.5 * sum_a (alpha_a * x_a)^2 in dimensionless units, with
// alpha_x normalized to 1. The trap does not depend on density, so the
// array is computed once at construction.
type Harmonic struct {
	v []float64
}

// NewHarmonic builds the trap for the given grid. alphas are the per-axis
// frequency ratios w_a/w_x; missing entries default to 1.
func NewHarmonic(g *grid.Grid, alphas ...float64) (*Harmonic, error) {
	if len(alphas) > g.Dim() {
		return nil, fmt.Errorf("%w: %d trap ratios for %d axes", gpe.ErrBadGrid, len(alphas), g.Dim())
	}
	scale := make([]float64, g.Dim())
	for a := range scale {
		scale[a] = 1.0
		if a < len(alphas) && alphas[a] != 0 {
			scale[a] = alphas[a]
		}
	}

	v := make([]float64, g.Size())
	for i := range v {
		sum := 0.0
		for a := 0; a < g.Dim(); a++ {
			x := scale[a] * g.At(a, i)
			sum += x * x
		}
		v[i] = 0.5 * sum
	}
	return &Harmonic{v: v}, nil
}

func (h *Harmonic) Apply(dst, density []float64, t float64) {
	for i := range dst {
		dst[i] += h.v[i]
	}
}

// Static exposes the trap array for potential-energy quadrature.
func (h *Harmonic) Static() []float64 { return h.v }
