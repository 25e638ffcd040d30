package sim

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/mdsim/internal/md"
)

// Factory builds the simulator for one ensemble member. Members must not
// share molecules, integrators or stateful observers.
type Factory func(member int) (*Simulator, error)

// Ensemble runs independent simulations concurrently.
type Ensemble struct {
	factory Factory
	members int
	limit   int
}

// NewEnsemble creates an ensemble of the given size. limit bounds the number
// of members running at once; values <= 0 mean no bound.
func NewEnsemble(factory Factory, members, limit int) (*Ensemble, error) {
	if factory == nil {
		return nil, md.Configf("ensemble factory is required")
	}
	if members <= 0 {
		return nil, md.Configf("ensemble size must be positive, got %d", members)
	}
	return &Ensemble{factory: factory, members: members, limit: limit}, nil
}

// Run builds every member and runs it for nSteps. The first failure cancels
// the remaining members. Results are indexed by member.
func (e *Ensemble) Run(ctx context.Context, nSteps int) ([]*Result, []*Simulator, error) {
	results := make([]*Result, e.members)
	sims := make([]*Simulator, e.members)

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}

	for i := 0; i < e.members; i++ {
		i := i
		g.Go(func() error {
			s, err := e.factory(i)
			if err != nil {
				return fmt.Errorf("member %d: %w", i, err)
			}
			sims[i] = s

			res, err := s.Run(ctx, nSteps)
			results[i] = res
			if err != nil {
				return fmt.Errorf("member %d: %w", i, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, sims, err
	}
	return results, sims, nil
}

// RunAll is Run without cancel-on-failure: every member runs to completion or
// to its own error, which is stored at its index in errs. A member whose
// factory failed has a nil simulator and result. ctx cancellation still
// stops every member.
func (e *Ensemble) RunAll(ctx context.Context, nSteps int) (results []*Result, sims []*Simulator, errs []error) {
	results = make([]*Result, e.members)
	sims = make([]*Simulator, e.members)
	errs = make([]error, e.members)

	var g errgroup.Group
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}

	for i := 0; i < e.members; i++ {
		i := i
		g.Go(func() error {
			s, err := e.factory(i)
			if err != nil {
				errs[i] = fmt.Errorf("member %d: %w", i, err)
				return nil
			}
			sims[i] = s

			res, err := s.Run(ctx, nSteps)
			results[i] = res
			if err != nil {
				errs[i] = fmt.Errorf("member %d: %w", i, err)
			}
			return nil
		})
	}

	_ = g.Wait()
	return results, sims, errs
}
