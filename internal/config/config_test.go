package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/san-kum/gpesim/internal/gpe"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := DefaultConfig()
	cfg.Mode = "real"
	cfg.Dt = 0.002
	cfg.G = 42.0
	cfg.Grid = []AxisConfig{
		{Min: -8, Max: 8, Points: 64},
		{Min: -4, Max: 4, Points: 32},
	}
	cfg.Trap = TrapConfig{AlphaY: 2.5}
	cfg.Profile = ProfileConfig{Type: "gauss", Widths: []float64{1.0, 0.5}, Center: []float64{1.0, 0.0}, K0: 3.0}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(cfg, got) {
		t.Errorf("round trip mismatch:\nsaved  %+v\nloaded %+v", cfg, got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	// A sparse file only overrides what it names.
	path := filepath.Join(t.TempDir(), "sparse.yaml")
	sparse := []byte("mode: real\ng: 7.5\n")
	if err := os.WriteFile(path, sparse, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Mode != "real" || cfg.G != 7.5 {
		t.Errorf("overrides not applied: mode=%s g=%g", cfg.Mode, cfg.G)
	}
	if cfg.Dt != DefaultDt || cfg.Steps != DefaultSteps {
		t.Errorf("defaults not preserved: dt=%g steps=%d", cfg.Dt, cfg.Steps)
	}
}

func TestTimeStep(t *testing.T) {
	cfg := DefaultConfig()
	params, err := cfg.TimeStep()
	if err != nil {
		t.Fatalf("timestep: %v", err)
	}
	if params.Mode != gpe.ImaginaryTime {
		t.Errorf("mode = %v, want imaginary", params.Mode)
	}
	if params.Dt != DefaultDt || params.Patience != DefaultPatience {
		t.Errorf("parameters not carried over: %+v", params)
	}

	cfg.Mode = "backwards"
	if _, err := cfg.TimeStep(); !errors.Is(err, gpe.ErrBadTimeStep) {
		t.Errorf("bad mode: expected ErrBadTimeStep, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Dt = -1
	if _, err := cfg.TimeStep(); !errors.Is(err, gpe.ErrBadTimeStep) {
		t.Errorf("bad dt: expected ErrBadTimeStep, got %v", err)
	}
}

func TestTrapAlphas(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.TrapAlphas(); !reflect.DeepEqual(got, []float64{1.0}) {
		t.Errorf("1D alphas = %v, want [1]", got)
	}

	cfg.Grid = []AxisConfig{
		{Min: -1, Max: 1, Points: 8},
		{Min: -1, Max: 1, Points: 8},
		{Min: -1, Max: 1, Points: 8},
	}
	cfg.Trap = TrapConfig{AlphaY: 2.0, AlphaZ: 5.3}
	if got := cfg.TrapAlphas(); !reflect.DeepEqual(got, []float64{1.0, 2.0, 5.3}) {
		t.Errorf("3D alphas = %v", got)
	}
}

func TestPresetsAreValid(t *testing.T) {
	if len(Presets) == 0 {
		t.Fatal("no presets registered")
	}
	for name, cfg := range Presets {
		t.Run(name, func(t *testing.T) {
			if len(cfg.Grid) == 0 {
				t.Fatal("preset has no grid")
			}
			if _, err := cfg.TimeStep(); err != nil {
				t.Fatalf("invalid stepping parameters: %v", err)
			}
			if cfg.GDD != 0 && len(cfg.Grid) != 3 {
				t.Error("dipolar coupling on a non-3D grid")
			}
		})
	}
}

func TestListPresetsSorted(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("listed %d presets, have %d", len(names), len(Presets))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("names not sorted: %q before %q", names[i-1], names[i])
		}
	}
	if GetPreset("no-such-preset") != nil {
		t.Error("unknown preset should return nil")
	}
}
