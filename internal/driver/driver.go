// Package driver orchestrates a run: it steps the propagator to
// completion, records observables on an interval, and pushes read-only
// snapshots to external consumers so rendering never stalls the loop.
package driver

import (
	"context"

	"github.com/san-kum/gpesim/internal/gpe"
	"github.com/san-kum/gpesim/internal/observe"
	"github.com/san-kum/gpesim/internal/prop"
)

// Snapshot is pushed to the consumer after a recorded step. Psi is a
// clone; the consumer may keep it.
type Snapshot struct {
	Step   int
	Time   float64
	Psi    gpe.Wavefunction
	Record observe.Record
}

type Result struct {
	Outcome gpe.RunState
	Steps   int
	Time    float64
	Psi     gpe.Wavefunction
	History []observe.Record
}

type Driver struct {
	prop        *prop.Propagator
	tracker     *observe.Tracker
	recordEvery int
	onSnapshot  func(Snapshot)
}

// New builds a driver recording observables every recordEvery steps.
// Non-positive intervals fall back to recording every step.
func New(p *prop.Propagator, tracker *observe.Tracker, recordEvery int) *Driver {
	if recordEvery <= 0 {
		recordEvery = 1
	}
	return &Driver{prop: p, tracker: tracker, recordEvery: recordEvery}
}

// OnSnapshot registers a consumer for recorded steps. Must be set before
// Run.
func (d *Driver) OnSnapshot(fn func(Snapshot)) { d.onSnapshot = fn }

// Run steps until the propagator reaches a terminal state or ctx is
// canceled. Cancellation happens between steps only, so the returned
// state is always that of the last fully completed step. An exhausted
// imaginary-time budget returns the still-valid result together with
// ErrNotConverged.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	d.record()

	for !d.prop.State().Terminal() {
		select {
		case <-ctx.Done():
			return d.result(), ctx.Err()
		default:
		}

		if err := d.prop.Step(); err != nil {
			d.record()
			return d.result(), err
		}

		if d.prop.StepCount()%d.recordEvery == 0 || d.prop.State().Terminal() {
			d.record()
		}
	}

	res := d.result()
	if d.prop.Params().Mode == gpe.ImaginaryTime && res.Outcome == gpe.Completed {
		return res, gpe.ErrNotConverged
	}
	return res, nil
}

func (d *Driver) record() {
	rec := d.tracker.Record(d.prop.Psi(), d.prop.StepCount(), d.prop.Time(), d.prop.Mu())
	if d.onSnapshot != nil {
		d.onSnapshot(Snapshot{
			Step:   d.prop.StepCount(),
			Time:   d.prop.Time(),
			Psi:    d.prop.Psi(),
			Record: rec,
		})
	}
}

func (d *Driver) result() *Result {
	return &Result{
		Outcome: d.prop.State(),
		Steps:   d.prop.StepCount(),
		Time:    d.prop.Time(),
		Psi:     d.prop.Psi(),
		History: d.tracker.History(),
	}
}
