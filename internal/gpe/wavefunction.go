package gpe

import (
	"math"
	"math/cmplx"
)

// Wavefunction is a complex field flattened over the spatial grid in
// row-major order. The squared magnitude integrates (grid-weighted) to the
// particle number.
type Wavefunction []complex128

func (w Wavefunction) Clone() Wavefunction {
	c := make(Wavefunction, len(w))
	copy(c, w)
	return c
}

func (w Wavefunction) IsFinite() bool {
	for _, v := range w {
		if cmplx.IsNaN(v) || cmplx.IsInf(v) {
			return false
		}
	}
	return true
}

// Density writes |psi|^2 into dst, allocating when dst is too short.
func (w Wavefunction) Density(dst []float64) []float64 {
	if len(dst) < len(w) {
		dst = make([]float64, len(w))
	}
	dst = dst[:len(w)]
	for i, v := range w {
		re, im := real(v), imag(v)
		dst[i] = re*re + im*im
	}
	return dst
}

// NormSq returns the grid-weighted quadrature of |psi|^2, i.e. the
// particle number carried by the state.
func (w Wavefunction) NormSq(dv float64) float64 {
	sum := 0.0
	for _, v := range w {
		re, im := real(v), imag(v)
		sum += re*re + im*im
	}
	return sum * dv
}

func (w Wavefunction) Scale(f complex128) {
	for i := range w {
		w[i] *= f
	}
}

// Renormalize rescales the state so NormSq(dv) equals target and returns
// the norm squared found before rescaling. A zero norm is left untouched.
func (w Wavefunction) Renormalize(dv, target float64) float64 {
	n2 := w.NormSq(dv)
	if n2 <= 0 || math.IsNaN(n2) || math.IsInf(n2, 0) {
		return n2
	}
	w.Scale(complex(math.Sqrt(target/n2), 0))
	return n2
}
