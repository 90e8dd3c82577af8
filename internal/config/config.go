package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/gpesim/internal/gpe"
)

const (
	DefaultDt         = 0.01
	DefaultSteps      = 10000
	DefaultTolerance  = 1e-8
	DefaultPatience   = 10
	DefaultTargetNorm = 1.0
	DefaultDivergence = 50
)

type AxisConfig struct {
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
	Points int     `yaml:"points"`
}

type TrapConfig struct {
	AlphaY float64 `yaml:"alpha_y"`
	AlphaZ float64 `yaml:"alpha_z"`
}

type ProfileConfig struct {
	Type     string    `yaml:"type"` // gauss, thomas-fermi, from-run
	Widths   []float64 `yaml:"widths"`
	Center   []float64 `yaml:"center"`
	K0       float64   `yaml:"k0"`
	NoiseMin float64   `yaml:"noise_min"`
	NoiseMax float64   `yaml:"noise_max"`
	Seed     int64     `yaml:"seed"`
	Run      string    `yaml:"run"` // run id when type is from-run
}

type Config struct {
	Grid []AxisConfig `yaml:"grid"`

	Mode             string  `yaml:"mode"` // real or imag
	Dt               float64 `yaml:"dt"`
	Steps            int     `yaml:"steps"`
	TargetNorm       float64 `yaml:"target_norm"`
	Tolerance        float64 `yaml:"tolerance"`
	Patience         int     `yaml:"patience"`
	DivergenceWindow int     `yaml:"divergence_window"`

	G   float64 `yaml:"g"`    // contact coupling
	GQF float64 `yaml:"g_qf"` // quantum fluctuation coupling
	GDD float64 `yaml:"g_dd"` // dipolar coupling, 3D only

	Trap    TrapConfig    `yaml:"trap"`
	Profile ProfileConfig `yaml:"profile"`

	RecordEvery int `yaml:"record_every"`
}

func DefaultConfig() *Config {
	return &Config{
		Grid:             []AxisConfig{{Min: -10, Max: 10, Points: 256}},
		Mode:             "imag",
		Dt:               DefaultDt,
		Steps:            DefaultSteps,
		TargetNorm:       DefaultTargetNorm,
		Tolerance:        DefaultTolerance,
		Patience:         DefaultPatience,
		DivergenceWindow: DefaultDivergence,
		Profile:          ProfileConfig{Type: "gauss", Widths: []float64{1.0}},
		RecordEvery:      10,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// TimeStep maps the stepping section onto the propagator parameters.
func (c *Config) TimeStep() (gpe.TimeStep, error) {
	mode, err := gpe.ParseMode(c.Mode)
	if err != nil {
		return gpe.TimeStep{}, err
	}
	p := gpe.TimeStep{
		Dt:               c.Dt,
		Steps:            c.Steps,
		Mode:             mode,
		TargetNorm:       c.TargetNorm,
		Tolerance:        c.Tolerance,
		Patience:         c.Patience,
		DivergenceWindow: c.DivergenceWindow,
	}
	return p, p.Validate()
}

// TrapAlphas returns the per-axis trap frequency ratios for the
// configured dimension.
func (c *Config) TrapAlphas() []float64 {
	alphas := []float64{1.0, c.Trap.AlphaY, c.Trap.AlphaZ}
	if len(c.Grid) < len(alphas) {
		alphas = alphas[:len(c.Grid)]
	}
	return alphas
}
