package config

import "sort"

var Presets = map[string]*Config{
	"ground-1d": {
		Grid: []AxisConfig{{Min: -10, Max: 10, Points: 256}},
		Mode: "imag", Dt: 0.01, Steps: 20000,
		TargetNorm: 1.0, Tolerance: 1e-10, Patience: 20, DivergenceWindow: 50,
		Profile:     ProfileConfig{Type: "gauss", Widths: []float64{2.0}},
		RecordEvery: 10,
	},
	"tf-1d": {
		Grid: []AxisConfig{{Min: -12, Max: 12, Points: 512}},
		Mode: "imag", Dt: 0.005, Steps: 40000,
		TargetNorm: 1.0, Tolerance: 1e-10, Patience: 20, DivergenceWindow: 50,
		G:           100.0,
		Profile:     ProfileConfig{Type: "thomas-fermi"},
		RecordEvery: 20,
	},
	"breathing-1d": {
		Grid: []AxisConfig{{Min: -10, Max: 10, Points: 256}},
		Mode: "real", Dt: 0.001, Steps: 20000,
		TargetNorm: 1.0,
		G:          10.0,
		// Off-equilibrium width excites the breathing mode.
		Profile:     ProfileConfig{Type: "gauss", Widths: []float64{1.5}},
		RecordEvery: 50,
	},
	"ground-3d": {
		Grid: []AxisConfig{
			{Min: -8, Max: 8, Points: 64},
			{Min: -8, Max: 8, Points: 64},
			{Min: -8, Max: 8, Points: 64},
		},
		Mode: "imag", Dt: 0.005, Steps: 5000,
		TargetNorm: 1.0, Tolerance: 1e-8, Patience: 10, DivergenceWindow: 50,
		G:           500.0,
		Trap:        TrapConfig{AlphaY: 1.0, AlphaZ: 1.0},
		Profile:     ProfileConfig{Type: "gauss", Widths: []float64{2.0, 2.0, 2.0}},
		RecordEvery: 10,
	},
	"droplet-3d": {
		Grid: []AxisConfig{
			{Min: -15, Max: 15, Points: 128},
			{Min: -15, Max: 15, Points: 128},
			{Min: -7, Max: 7, Points: 64},
		},
		Mode: "imag", Dt: 0.002, Steps: 20000,
		TargetNorm: 1.0, Tolerance: 1e-8, Patience: 10, DivergenceWindow: 50,
		G:   400.0,
		GQF: 90.0,
		GDD: 520.0,
		Trap: TrapConfig{AlphaY: 2.0, AlphaZ: 5.3},
		Profile: ProfileConfig{
			Type:   "gauss",
			Widths: []float64{8.0, 4.0, 2.0},
			// Noise breaks the trap symmetry so relaxation can reach
			// density-modulated states.
			NoiseMin: 0.8, NoiseMax: 1.4, Seed: 42,
		},
		RecordEvery: 20,
	},
}

func GetPreset(name string) *Config {
	return Presets[name]
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
