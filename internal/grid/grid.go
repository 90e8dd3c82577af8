// Package grid defines the discretized spatial domain and its conjugate
// momentum-space sampling used for spectral differentiation.
package grid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/gpesim/internal/gpe"
)

// Axis describes one spatial dimension: extent [Min, Max) sampled at
// Points equidistant nodes. The endpoint is excluded so the sampling is
// compatible with periodic spectral transforms.
type Axis struct {
	Min    float64
	Max    float64
	Points int
}

// Grid is immutable once constructed and shared read-only by every
// component that needs coordinates.
type Grid struct {
	Shape   []int
	Dx      []float64   // spacing per axis
	Coord   [][]float64 // position nodes per axis
	K       [][]float64 // momentum nodes per axis, FFT output ordering
	KSq     []float64   // k^2 mesh, flattened row-major
	DV      float64     // volume element
	strides []int
	size    int
}

func New(axes ...Axis) (*Grid, error) {
	if len(axes) == 0 || len(axes) > 3 {
		return nil, fmt.Errorf("%w: need 1 to 3 axes, got %d", gpe.ErrBadGrid, len(axes))
	}

	g := &Grid{
		Shape: make([]int, len(axes)),
		Dx:    make([]float64, len(axes)),
		Coord: make([][]float64, len(axes)),
		K:     make([][]float64, len(axes)),
		DV:    1.0,
	}

	for a, ax := range axes {
		if ax.Points <= 0 {
			return nil, fmt.Errorf("%w: axis %d has %d points", gpe.ErrBadGrid, a, ax.Points)
		}
		length := ax.Max - ax.Min
		if length <= 0 {
			return nil, fmt.Errorf("%w: axis %d extent [%g, %g]", gpe.ErrBadGrid, a, ax.Min, ax.Max)
		}

		n := ax.Points
		dx := length / float64(n)
		g.Shape[a] = n
		g.Dx[a] = dx
		g.DV *= dx

		coord := make([]float64, n)
		if n > 1 {
			floats.Span(coord, ax.Min, ax.Max-dx)
		} else {
			coord[0] = ax.Min + length/2
		}
		g.Coord[a] = coord
		g.K[a] = fftFreq(n, dx)
	}

	g.strides = make([]int, len(g.Shape))
	g.size = 1
	for a := len(g.Shape) - 1; a >= 0; a-- {
		g.strides[a] = g.size
		g.size *= g.Shape[a]
	}

	g.KSq = make([]float64, g.size)
	for i := 0; i < g.size; i++ {
		sum := 0.0
		for a := range g.Shape {
			k := g.K[a][(i/g.strides[a])%g.Shape[a]]
			sum += k * k
		}
		g.KSq[i] = sum
	}

	return g, nil
}

// fftFreq returns 2*pi times the discrete Fourier sample frequencies in
// the transform's native ordering: zero, positive, then negative.
func fftFreq(n int, d float64) []float64 {
	k := make([]float64, n)
	scale := 2.0 * math.Pi / (float64(n) * d)
	for i := 0; i < n; i++ {
		if i < (n+1)/2 {
			k[i] = float64(i) * scale
		} else {
			k[i] = float64(i-n) * scale
		}
	}
	return k
}

func (g *Grid) Dim() int  { return len(g.Shape) }
func (g *Grid) Size() int { return g.size }

// At returns the position coordinate along axis a for flattened index i.
func (g *Grid) At(a, i int) float64 {
	return g.Coord[a][(i/g.strides[a])%g.Shape[a]]
}

// KAt returns the momentum coordinate along axis a for flattened index i.
func (g *Grid) KAt(a, i int) float64 {
	return g.K[a][(i/g.strides[a])%g.Shape[a]]
}

// Stride returns the flattened-index stride of axis a.
func (g *Grid) Stride(a int) int { return g.strides[a] }
