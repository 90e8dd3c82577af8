// Package viz renders density profiles and observable histories as
// terminal plots. It only consumes snapshots; the stepping loop never
// waits for it.
package viz

import (
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/gpesim/internal/gpe"
	"github.com/san-kum/gpesim/internal/grid"
	"github.com/san-kum/gpesim/internal/observe"
)

const (
	plotWidth  = 72
	plotHeight = 14
)

func Plot(series []float64, caption string) string {
	if len(series) < 2 {
		return caption + ": not enough data"
	}
	return asciigraph.Plot(series,
		asciigraph.Width(plotWidth),
		asciigraph.Height(plotHeight),
		asciigraph.Caption(caption),
	)
}

func EnergySeries(history []observe.Record) []float64 {
	series := make([]float64, len(history))
	for i, r := range history {
		series[i] = r.Total
	}
	return series
}

func NormSeries(history []observe.Record) []float64 {
	series := make([]float64, len(history))
	for i, r := range history {
		series[i] = r.Norm
	}
	return series
}

// DensityCut extracts |psi|^2 along one axis through the grid center.
func DensityCut(psi gpe.Wavefunction, g *grid.Grid, axis int) []float64 {
	if axis < 0 || axis >= g.Dim() {
		return nil
	}
	base := 0
	for a := 0; a < g.Dim(); a++ {
		if a != axis {
			base += (g.Shape[a] / 2) * g.Stride(a)
		}
	}
	cut := make([]float64, g.Shape[axis])
	for j := range cut {
		v := psi[base+j*g.Stride(axis)]
		re, im := real(v), imag(v)
		cut[j] = re*re + im*im
	}
	return cut
}
