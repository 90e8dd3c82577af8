package main

import (
	"fmt"

	"github.com/san-kum/gpesim/internal/config"
	"github.com/san-kum/gpesim/internal/gpe"
	"github.com/san-kum/gpesim/internal/grid"
	"github.com/san-kum/gpesim/internal/observe"
	"github.com/san-kum/gpesim/internal/potential"
	"github.com/san-kum/gpesim/internal/profile"
	"github.com/san-kum/gpesim/internal/prop"
	"github.com/san-kum/gpesim/internal/store"
)

type system struct {
	grid    *grid.Grid
	prop    *prop.Propagator
	tracker *observe.Tracker
}

func buildGrid(cfg *config.Config) (*grid.Grid, error) {
	axes := make([]grid.Axis, len(cfg.Grid))
	for i, ax := range cfg.Grid {
		axes[i] = grid.Axis{Min: ax.Min, Max: ax.Max, Points: ax.Points}
	}
	return grid.New(axes...)
}

func buildSystem(cfg *config.Config, st *store.Store) (*system, error) {
	g, err := buildGrid(cfg)
	if err != nil {
		return nil, err
	}

	trap, err := potential.NewHarmonic(g, cfg.TrapAlphas()...)
	if err != nil {
		return nil, err
	}
	terms := []potential.Term{trap}
	if cfg.G != 0 {
		terms = append(terms, potential.Contact{G: cfg.G})
	}
	if cfg.GQF != 0 {
		terms = append(terms, potential.QuantumFluctuation{GQF: cfg.GQF})
	}
	if cfg.GDD != 0 {
		dd, err := potential.NewDipolar(g, cfg.GDD)
		if err != nil {
			return nil, err
		}
		terms = append(terms, dd)
	}
	field := potential.NewField(terms...)

	psi0, err := buildProfile(cfg, g, st)
	if err != nil {
		return nil, err
	}

	params, err := cfg.TimeStep()
	if err != nil {
		return nil, err
	}
	p, err := prop.New(g, field, params, psi0)
	if err != nil {
		return nil, err
	}

	return &system{
		grid:    g,
		prop:    p,
		tracker: observe.New(g, trap.Static(), cfg.G),
	}, nil
}

func buildProfile(cfg *config.Config, g *grid.Grid, st *store.Store) (gpe.Wavefunction, error) {
	pc := cfg.Profile
	var psi gpe.Wavefunction
	var err error

	switch pc.Type {
	case "", "gauss":
		psi, err = profile.Gaussian(g, pc.Widths, pc.Center, pc.K0, cfg.TargetNorm)
	case "thomas-fermi":
		psi, err = profile.ThomasFermi(g, cfg.G, cfg.TargetNorm)
	case "from-run":
		if st == nil || pc.Run == "" {
			return nil, fmt.Errorf("profile from-run needs a run id")
		}
		var shape []int
		psi, shape, err = st.LoadState(pc.Run)
		if err == nil && len(psi) != g.Size() {
			return nil, fmt.Errorf("stored state %v does not match grid %v", shape, g.Shape)
		}
	default:
		return nil, fmt.Errorf("unknown profile type %q", pc.Type)
	}
	if err != nil {
		return nil, err
	}

	if pc.NoiseMax > pc.NoiseMin && pc.NoiseMax > 0 {
		profile.Noise(psi, pc.NoiseMin, pc.NoiseMax, pc.Seed)
		psi.Renormalize(g.DV, cfg.TargetNorm)
	}
	return psi, nil
}
