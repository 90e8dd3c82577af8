// Package potential evaluates the external trap and the density-dependent
// interaction energy of the Gross-Pitaevskii equation. The interaction
// terms depend on the instantaneous density, so a Field is re-evaluated
// every step and never cached across steps.
package potential

import (
	"fmt"
	"math"

	"github.com/san-kum/gpesim/internal/gpe"
)

// Term adds one energy contribution to dst, given the current density.
type Term interface {
	Apply(dst, density []float64, t float64)
}

// Field combines the configured terms into the effective potential
// V_eff(r) = V_trap + g*rho + g_qf*rho^{3/2} + Phi_dd.
type Field struct {
	terms []Term
}

func NewField(terms ...Term) *Field {
	return &Field{terms: terms}
}

// Evaluate writes the effective potential for the given density into dst
// and returns it. Non-finite density means the integration has diverged
// upstream and is rejected here.
func (f *Field) Evaluate(dst, density []float64, t float64) ([]float64, error) {
	for i, d := range density {
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return nil, fmt.Errorf("%w: density at index %d", gpe.ErrNonFinite, i)
		}
	}
	if len(dst) < len(density) {
		dst = make([]float64, len(density))
	}
	dst = dst[:len(density)]
	for i := range dst {
		dst[i] = 0
	}
	for _, term := range f.terms {
		term.Apply(dst, density, t)
	}
	return dst, nil
}

// Contact is the local mean-field term g*rho.
type Contact struct {
	G float64
}

func (c Contact) Apply(dst, density []float64, t float64) {
	if c.G == 0 {
		return
	}
	for i, d := range density {
		dst[i] += c.G * d
	}
}

// QuantumFluctuation is the Lee-Huang-Yang correction g_qf*rho^{3/2},
// the beyond-mean-field term that stabilizes supersolid droplets.
type QuantumFluctuation struct {
	GQF float64
}

func (q QuantumFluctuation) Apply(dst, density []float64, t float64) {
	if q.GQF == 0 {
		return
	}
	for i, d := range density {
		if d > 0 {
			dst[i] += q.GQF * d * math.Sqrt(d)
		}
	}
}
