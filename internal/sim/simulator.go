package sim

import (
	"context"
	"time"

	"github.com/san-kum/mdsim/internal/md"
	"github.com/san-kum/mdsim/internal/molecule"
	"github.com/san-kum/mdsim/internal/trajectory"
)

// Simulator advances a molecule with a force field and an integrator and
// samples a frame into its trajectory every interval steps. It owns its
// molecule, integrator and trajectory and is not safe for concurrent use.
type Simulator struct {
	mol        *molecule.Molecule
	force      md.Force
	integrator md.Integrator
	traj       *trajectory.Trajectory

	interval  int
	step      int
	observers []md.Observer
	metrics   []md.Metric
	progress  ProgressSink
}

func New(mol *molecule.Molecule, force md.Force, integrator md.Integrator, opts ...Option) (*Simulator, error) {
	if mol == nil || force == nil || integrator == nil {
		return nil, md.Configf("molecule, force and integrator are required")
	}

	s := &Simulator{
		mol:        mol,
		force:      force,
		integrator: integrator,
		traj:       trajectory.New(mol.Labels()),
		interval:   DefaultInterval,
		progress:   NopProgress{},
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Simulator) CurrentStep() int                   { return s.step }
func (s *Simulator) Interval() int                      { return s.interval }
func (s *Simulator) Trajectory() *trajectory.Trajectory { return s.traj }
func (s *Simulator) Molecule() *molecule.Molecule       { return s.mol }

// Step performs one force evaluation and integration. When the step index is
// a multiple of the interval the new coordinates are recorded and handed to
// observers, metrics and the progress sink. Failures are returned as
// *md.SimulationError; the molecule keeps its pre-step coordinates. When the
// step diverges the integrator history is reset as well, so a further Step
// restarts from rest at those coordinates.
func (s *Simulator) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	pos := s.mol.Positions()
	force, err := s.force.Compute(pos)
	if err != nil {
		return s.fail(err)
	}
	if err := s.mol.SetForce(force); err != nil {
		return s.fail(err)
	}

	next, err := s.integrator.Integrate(pos, force, s.mol.Masses())
	if err != nil {
		return s.fail(err)
	}
	if !next.IsValid() {
		s.integrator.Reset()
		return s.fail(md.ErrUnstable)
	}
	if err := s.mol.SetPositions(next); err != nil {
		return s.fail(err)
	}

	if s.step%s.interval == 0 {
		if err := s.record(next); err != nil {
			return s.fail(err)
		}
	}
	s.step++
	return nil
}

func (s *Simulator) record(pos md.Coords) error {
	if err := s.traj.AddFrame(pos); err != nil {
		return err
	}
	for _, o := range s.observers {
		o.OnFrame(s.step, pos)
	}
	for _, m := range s.metrics {
		m.OnFrame(s.step, pos)
	}
	s.progress.Progress(s.step)
	return nil
}

func (s *Simulator) fail(err error) error {
	return &md.SimulationError{Step: s.step, Wrapped: err}
}

// Run calls Step nSteps times, stopping early when ctx is cancelled. The
// step counter continues from previous runs. Metrics are reset at the start
// of every run. On error the partial result is returned alongside it.
func (s *Simulator) Run(ctx context.Context, nSteps int) (*Result, error) {
	if nSteps < 0 {
		return nil, md.Configf("step count must be non-negative, got %d", nSteps)
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	start := time.Now()
	framesBefore := s.traj.Len()
	result := &Result{Metrics: make(map[string]float64)}

	finish := func() {
		result.Frames = s.traj.Len() - framesBefore
		result.Elapsed = time.Since(start)
		for _, m := range s.metrics {
			result.Metrics[m.Name()] = m.Value()
		}
	}

	for i := 0; i < nSteps; i++ {
		select {
		case <-ctx.Done():
			finish()
			return result, ctx.Err()
		default:
		}

		if err := s.Step(ctx); err != nil {
			finish()
			return result, err
		}
		result.StepsTaken++
	}

	finish()
	return result, nil
}
