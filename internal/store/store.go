// Package store persists finished runs under a data directory: metadata,
// the observable history, and the final wavefunction, so a later run can
// continue from a stored ground state.
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/gpesim/internal/config"
	"github.com/san-kum/gpesim/internal/driver"
	"github.com/san-kum/gpesim/internal/gpe"
	"github.com/san-kum/gpesim/internal/observe"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Mode      string    `json:"mode"`
	Outcome   string    `json:"outcome"`
	Dt        float64   `json:"dt"`
	Steps     int       `json:"steps"`
	Shape     []int     `json:"shape"`
	G         float64   `json:"g"`
	GQF       float64   `json:"g_qf"`
	GDD       float64   `json:"g_dd"`
	Energy    float64   `json:"energy"`
	Mu        float64   `json:"mu"`
	Norm      float64   `json:"norm"`
}

type stateFile struct {
	Shape []int     `json:"shape"`
	Re    []float64 `json:"re"`
	Im    []float64 `json:"im"`
}

func (s *Store) Save(cfg *config.Config, result *driver.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", cfg.Mode, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	shape := make([]int, len(cfg.Grid))
	for i, ax := range cfg.Grid {
		shape[i] = ax.Points
	}

	meta := RunMetadata{
		ID:        runID,
		Timestamp: time.Now(),
		Mode:      cfg.Mode,
		Outcome:   result.Outcome.String(),
		Dt:        cfg.Dt,
		Steps:     result.Steps,
		Shape:     shape,
		G:         cfg.G,
		GQF:       cfg.GQF,
		GDD:       cfg.GDD,
	}
	if n := len(result.History); n > 0 {
		last := result.History[n-1]
		meta.Energy = last.Total
		meta.Mu = last.Mu
		meta.Norm = last.Norm
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeObservables(filepath.Join(runDir, "observables.csv"), result.History); err != nil {
		return "", err
	}

	state := stateFile{
		Shape: shape,
		Re:    make([]float64, len(result.Psi)),
		Im:    make([]float64, len(result.Psi)),
	}
	for i, v := range result.Psi {
		state.Re[i] = real(v)
		state.Im[i] = imag(v)
	}
	if err := writeJSON(filepath.Join(runDir, "state.json"), state); err != nil {
		return "", err
	}

	return runID, nil
}

func writeJSON(path string, v any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeObservables(path string, history []observe.Record) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	header := []string{"step", "time", "norm", "kinetic", "potential", "interaction", "total", "mu"}
	dim := 0
	if len(history) > 0 {
		dim = len(history[0].Center)
	}
	for a := 0; a < dim; a++ {
		header = append(header, fmt.Sprintf("center%d", a))
	}
	for a := 0; a < dim; a++ {
		header = append(header, fmt.Sprintf("width%d", a))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	f := func(v float64) string { return strconv.FormatFloat(v, 'g', 12, 64) }
	for _, r := range history {
		row := []string{
			strconv.Itoa(r.Step), f(r.Time), f(r.Norm),
			f(r.Kinetic), f(r.Potential), f(r.Interaction), f(r.Total), f(r.Mu),
		}
		for _, c := range r.Center {
			row = append(row, f(c))
		}
		for _, wd := range r.Width {
			row = append(row, f(wd))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// ExportCSV streams the raw observables of a run to w.
func (s *Store) ExportCSV(runID string, w io.Writer) error {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "observables.csv"))
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = io.Copy(w, file)
	return err
}

// LoadObservables reads back the recorded history of a run.
func (s *Store) LoadObservables(runID string) ([]observe.Record, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "observables.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []observe.Record{}, nil
	}

	dim := (len(records[0]) - 8) / 2
	history := make([]observe.Record, 0, len(records)-1)
	for _, row := range records[1:] {
		if len(row) < 8 {
			continue
		}
		step, err := strconv.Atoi(row[0])
		if err != nil {
			continue
		}
		vals := make([]float64, 0, len(row)-1)
		ok := true
		for _, field := range row[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				ok = false
				break
			}
			vals = append(vals, v)
		}
		if !ok || len(vals) < 7+2*dim {
			continue
		}
		rec := observe.Record{
			Step: step, Time: vals[0], Norm: vals[1],
			Kinetic: vals[2], Potential: vals[3], Interaction: vals[4],
			Total: vals[5], Mu: vals[6],
			Center: vals[7 : 7+dim],
			Width:  vals[7+dim : 7+2*dim],
		}
		history = append(history, rec)
	}
	return history, nil
}

// LoadState reads back the final wavefunction of a run, for continuation.
func (s *Store) LoadState(runID string) (gpe.Wavefunction, []int, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "state.json"))
	if err != nil {
		return nil, nil, err
	}
	var state stateFile
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, nil, err
	}
	if len(state.Re) != len(state.Im) {
		return nil, nil, fmt.Errorf("corrupt state in run %s", runID)
	}
	psi := make(gpe.Wavefunction, len(state.Re))
	for i := range psi {
		psi[i] = complex(state.Re[i], state.Im[i])
	}
	return psi, state.Shape, nil
}
