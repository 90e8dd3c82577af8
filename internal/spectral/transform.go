// Package spectral moves fields between position and momentum
// representations. Multi-dimensional transforms are composed from 1D FFTs
// applied axis by axis, so any grid shape a Bluestein-capable FFT accepts
// will work, not just powers of two.
package spectral

import (
	"github.com/mjibson/go-dsp/fft"
)

type Transform struct {
	shape   []int
	strides []int
	size    int
}

func New(shape []int) *Transform {
	t := &Transform{
		shape:   append([]int(nil), shape...),
		strides: make([]int, len(shape)),
		size:    1,
	}
	for a := len(shape) - 1; a >= 0; a-- {
		t.strides[a] = t.size
		t.size *= shape[a]
	}
	return t
}

func (t *Transform) Size() int { return t.size }

// Forward transforms field to momentum space, returning a new array.
func (t *Transform) Forward(field []complex128) []complex128 {
	out := append([]complex128(nil), field...)
	t.ForwardInPlace(out)
	return out
}

// Inverse transforms field back to position space, returning a new array.
// Inverse(Forward(f)) recovers f up to floating-point rounding.
func (t *Transform) Inverse(field []complex128) []complex128 {
	out := append([]complex128(nil), field...)
	t.InverseInPlace(out)
	return out
}

func (t *Transform) ForwardInPlace(field []complex128) {
	for a := range t.shape {
		t.transformAxis(field, a, fft.FFT)
	}
}

func (t *Transform) InverseInPlace(field []complex128) {
	// fft.IFFT carries the 1/n factor, so the axis-by-axis composition is
	// normalized by 1/size overall and no extra scaling is needed.
	for a := len(t.shape) - 1; a >= 0; a-- {
		t.transformAxis(field, a, fft.IFFT)
	}
}

func (t *Transform) transformAxis(field []complex128, axis int, f func([]complex128) []complex128) {
	n := t.shape[axis]
	if n == 1 {
		return
	}
	stride := t.strides[axis]
	block := n * stride
	line := make([]complex128, n)

	for base := 0; base < t.size; base += block {
		for inner := 0; inner < stride; inner++ {
			start := base + inner
			for j := 0; j < n; j++ {
				line[j] = field[start+j*stride]
			}
			out := f(line)
			for j := 0; j < n; j++ {
				field[start+j*stride] = out[j]
			}
		}
	}
}
