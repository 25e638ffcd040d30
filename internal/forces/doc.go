// Package forces provides Lennard-Jones force evaluation.
//
// Three interchangeable strategies compute the same force field:
//
//   - reference: single pass over the i<j pairs, O(N) extra memory
//   - vectorized: full N×N displacement and distance matrices contracted per row
//   - parallel: the N×N row sums split across goroutines
//
// The reference strategy is the ground truth; the others must agree with it
// to 1e-7 and keep the net force on the cluster at zero.
//
//	ff := forces.NewLJ(forces.LJParams{Sigma: 0.9, Epsilon: 20}, forces.StrategyReference)
//	f, err := ff.Compute(positions)
//
// The returned field is the energy gradient: integrators move atoms along -F/m.
// Coincident atoms (zero separation) are not detected and yield Inf.
package forces
