package potential

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/gpesim/internal/gpe"
	"github.com/san-kum/gpesim/internal/grid"
)

func mustGrid(t *testing.T, axes ...grid.Axis) *grid.Grid {
	t.Helper()
	g, err := grid.New(axes...)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	return g
}

func TestHarmonicTrap(t *testing.T) {
	g := mustGrid(t, grid.Axis{Min: -4, Max: 4, Points: 8})
	trap, err := NewHarmonic(g)
	if err != nil {
		t.Fatalf("harmonic: %v", err)
	}

	v := trap.Static()
	for i := range v {
		x := g.At(0, i)
		if math.Abs(v[i]-0.5*x*x) > 1e-12 {
			t.Fatalf("v(%g) = %g, want %g", x, v[i], 0.5*x*x)
		}
	}
}

func TestHarmonicAnisotropy(t *testing.T) {
	g := mustGrid(t,
		grid.Axis{Min: -2, Max: 2, Points: 4},
		grid.Axis{Min: -2, Max: 2, Points: 4},
	)
	trap, err := NewHarmonic(g, 1.0, 3.0)
	if err != nil {
		t.Fatalf("harmonic: %v", err)
	}

	v := trap.Static()
	for i := range v {
		x := g.At(0, i)
		y := g.At(1, i)
		want := 0.5 * (x*x + 9*y*y)
		if math.Abs(v[i]-want) > 1e-12 {
			t.Fatalf("v(%g,%g) = %g, want %g", x, y, v[i], want)
		}
	}
}

func TestHarmonicTooManyRatios(t *testing.T) {
	g := mustGrid(t, grid.Axis{Min: -1, Max: 1, Points: 4})
	if _, err := NewHarmonic(g, 1, 2, 3); !errors.Is(err, gpe.ErrBadGrid) {
		t.Errorf("expected ErrBadGrid, got %v", err)
	}
}

func TestFieldTracksDensity(t *testing.T) {
	field := NewField(Contact{G: 2.0})
	density := []float64{1, 2, 3}

	v, err := field.Evaluate(nil, density, 0)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	for i := range v {
		if math.Abs(v[i]-2*density[i]) > 1e-12 {
			t.Fatalf("v[%d] = %g, want %g", i, v[i], 2*density[i])
		}
	}

	// Re-evaluating with a new density must reflect it immediately; the
	// interaction term is never allowed to go stale.
	density[1] = 10
	v, err = field.Evaluate(v, density, 0)
	if err != nil {
		t.Fatalf("re-evaluate: %v", err)
	}
	if math.Abs(v[1]-20) > 1e-12 {
		t.Errorf("stale interaction term: v[1] = %g, want 20", v[1])
	}
}

func TestFieldRejectsNonFiniteDensity(t *testing.T) {
	field := NewField(Contact{G: 1.0})

	_, err := field.Evaluate(nil, []float64{1, math.NaN(), 3}, 0)
	if !errors.Is(err, gpe.ErrNonFinite) {
		t.Errorf("NaN density: expected ErrNonFinite, got %v", err)
	}

	_, err = field.Evaluate(nil, []float64{1, math.Inf(1), 3}, 0)
	if !errors.Is(err, gpe.ErrNonFinite) {
		t.Errorf("Inf density: expected ErrNonFinite, got %v", err)
	}
}

func TestQuantumFluctuationTerm(t *testing.T) {
	field := NewField(QuantumFluctuation{GQF: 2.0})
	density := []float64{0, 1, 4}

	v, err := field.Evaluate(nil, density, 0)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	want := []float64{0, 2, 16} // 2 * rho^{3/2}
	for i := range want {
		if math.Abs(v[i]-want[i]) > 1e-12 {
			t.Errorf("v[%d] = %g, want %g", i, v[i], want[i])
		}
	}
}

func TestDipolarNeeds3D(t *testing.T) {
	g := mustGrid(t, grid.Axis{Min: -1, Max: 1, Points: 8})
	if _, err := NewDipolar(g, 1.0); !errors.Is(err, gpe.ErrBadGrid) {
		t.Errorf("expected ErrBadGrid, got %v", err)
	}
}

func TestDipolarUniformDensity(t *testing.T) {
	g := mustGrid(t,
		grid.Axis{Min: -2, Max: 2, Points: 8},
		grid.Axis{Min: -2, Max: 2, Points: 8},
		grid.Axis{Min: -2, Max: 2, Points: 8},
	)
	gdd := 3.0
	dd, err := NewDipolar(g, gdd)
	if err != nil {
		t.Fatalf("dipolar: %v", err)
	}

	// A uniform density only populates the k=0 bin, where the kernel is
	// -gdd, so the mean-field potential is -gdd*rho everywhere.
	rho := 0.5
	density := make([]float64, g.Size())
	for i := range density {
		density[i] = rho
	}
	dst := make([]float64, g.Size())
	dd.Apply(dst, density, 0)

	for i := range dst {
		if math.Abs(dst[i]-(-gdd*rho)) > 1e-9 {
			t.Fatalf("dst[%d] = %g, want %g", i, dst[i], -gdd*rho)
		}
	}
}
