package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/gpesim/internal/config"
	"github.com/san-kum/gpesim/internal/driver"
	"github.com/san-kum/gpesim/internal/gpe"
	"github.com/san-kum/gpesim/internal/store"
	"github.com/san-kum/gpesim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	mode       string
	dt         float64
	steps      int
	coupling   float64
	tolerance  float64
	noSave     bool
	series     string
	frameSteps int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gpesim",
		Short: "split-operator Gross-Pitaevskii simulation lab",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gpesim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation to completion",
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().StringVar(&mode, "mode", "", "override mode (real|imag)")
	runCmd.Flags().Float64Var(&dt, "dt", 0, "override timestep")
	runCmd.Flags().IntVar(&steps, "steps", 0, "override step budget")
	runCmd.Flags().Float64Var(&coupling, "g", 0, "override contact coupling")
	runCmd.Flags().Float64Var(&tolerance, "tol", 0, "override convergence tolerance")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not persist the run")

	evolveCmd := &cobra.Command{
		Use:   "evolve [run_id]",
		Short: "continue a stored state in real time",
		Args:  cobra.ExactArgs(1),
		RunE:  evolveRun,
	}
	evolveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	evolveCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	evolveCmd.Flags().Float64Var(&dt, "dt", 0, "override timestep")
	evolveCmd.Flags().IntVar(&steps, "steps", 0, "override step budget")
	evolveCmd.Flags().BoolVar(&noSave, "no-save", false, "do not persist the run")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with live terminal visualization",
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	liveCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	liveCmd.Flags().IntVar(&frameSteps, "batch", 10, "propagator steps per frame")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot observable history of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&series, "series", "total", "series to plot (total|norm|mu)")

	exportCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and observables as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run observables as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return store.New(dataDir).ExportCSV(args[0], os.Stdout)
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
		},
	}

	rootCmd.AddCommand(runCmd, evolveCmd, liveCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if mode != "" {
		cfg.Mode = mode
	}
	if dt > 0 {
		cfg.Dt = dt
	}
	if steps > 0 {
		cfg.Steps = steps
	}
	if coupling != 0 {
		cfg.G = coupling
	}
	if tolerance > 0 {
		cfg.Tolerance = tolerance
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return executeRun(cfg)
}

// evolveRun continues the final state of a stored run under real-time
// propagation.
func evolveRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Mode = "real"
	cfg.Profile = config.ProfileConfig{Type: "from-run", Run: args[0]}
	return executeRun(cfg)
}

func executeRun(cfg *config.Config) error {
	st := store.New(dataDir)
	sys, err := buildSystem(cfg, st)
	if err != nil {
		return err
	}

	d := driver.New(sys.prop, sys.tracker, cfg.RecordEvery)
	result, runErr := d.Run(context.Background())

	switch {
	case runErr == nil:
	case errors.Is(runErr, gpe.ErrNotConverged):
		fmt.Fprintf(os.Stderr, "warning: %v\n", runErr)
	default:
		return runErr
	}

	if last, ok := sys.tracker.Last(); ok {
		fmt.Printf("outcome:  %s after %d steps (t=%.4f)\n", result.Outcome, result.Steps, result.Time)
		fmt.Printf("norm:     %.10f\n", last.Norm)
		fmt.Printf("energy:   %.10f (kin %.6f, pot %.6f, int %.6f)\n",
			last.Total, last.Kinetic, last.Potential, last.Interaction)
		if cfg.Mode == "imag" {
			fmt.Printf("mu:       %.10f\n", last.Mu)
		}
	}

	if !noSave {
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg, result)
		if err != nil {
			return err
		}
		fmt.Printf("saved:    %s\n", runID)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sys, err := buildSystem(cfg, store.New(dataDir))
	if err != nil {
		return err
	}

	model := viz.NewModel(sys.prop, sys.tracker, sys.grid, frameSteps)
	_, err = tea.NewProgram(model).Run()
	return err
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := store.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODE\tOUTCOME\tSTEPS\tENERGY\tMU\tNORM")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.6f\t%.6f\t%.6f\n",
			r.ID, r.Mode, r.Outcome, r.Steps, r.Energy, r.Mu, r.Norm)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	history, err := st.LoadObservables(args[0])
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return fmt.Errorf("run %s has no observables", args[0])
	}

	var values []float64
	switch series {
	case "total":
		values = viz.EnergySeries(history)
	case "norm":
		values = viz.NormSeries(history)
	case "mu":
		values = make([]float64, len(history))
		for i, r := range history {
			values[i] = r.Mu
		}
	default:
		return fmt.Errorf("unknown series: %s", series)
	}

	fmt.Println(viz.Plot(values, fmt.Sprintf("%s (%s)", series, args[0])))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	history, err := st.LoadObservables(args[0])
	if err != nil {
		return err
	}

	out := struct {
		Meta        *store.RunMetadata `json:"meta"`
		Observables any                `json:"observables"`
	}{meta, history}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
