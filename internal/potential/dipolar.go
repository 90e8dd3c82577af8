package potential

import (
	"fmt"

	"github.com/san-kum/gpesim/internal/gpe"
	"github.com/san-kum/gpesim/internal/grid"
	"github.com/san-kum/gpesim/internal/spectral"
)

// Dipolar is the non-local dipole-dipole term, evaluated as a convolution
// of the density with the anisotropic kernel g_dd*(3*kz^2/k^2 - 1) in
// momentum space. It needs its own transform pass per evaluation.
type Dipolar struct {
	kernel []float64
	tr     *spectral.Transform
	buf    []complex128
}

// NewDipolar builds the momentum-space kernel. The dipoles are polarized
// along the last grid axis; the kernel is only defined in 3D.
func NewDipolar(g *grid.Grid, gdd float64) (*Dipolar, error) {
	if g.Dim() != 3 {
		return nil, fmt.Errorf("%w: dipolar interaction needs a 3D grid, got %dD", gpe.ErrBadGrid, g.Dim())
	}

	zAxis := g.Dim() - 1
	kernel := make([]float64, g.Size())
	for i := range kernel {
		kSq := g.KSq[i]
		if kSq == 0 {
			// 0/0 at the origin; the kernel limit used by the convolution
			// is the angular average -1 scaled by gdd.
			kernel[i] = -gdd
			continue
		}
		kz := g.KAt(zAxis, i)
		kernel[i] = gdd * (3.0*kz*kz/kSq - 1.0)
	}

	return &Dipolar{
		kernel: kernel,
		tr:     spectral.New(g.Shape),
		buf:    make([]complex128, g.Size()),
	}, nil
}

func (d *Dipolar) Apply(dst, density []float64, t float64) {
	for i, rho := range density {
		d.buf[i] = complex(rho, 0)
	}
	d.tr.ForwardInPlace(d.buf)
	for i := range d.buf {
		d.buf[i] *= complex(d.kernel[i], 0)
	}
	d.tr.InverseInPlace(d.buf)
	for i := range dst {
		dst[i] += real(d.buf[i])
	}
}
