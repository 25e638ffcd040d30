// Package md provides the primitives shared by the molecular dynamics packages.
//
// The package defines the coordinate types and the capability interfaces the
// simulation is assembled from:
//
//   - [Vec3], [Coords]: cartesian vectors and (N, 3) arrays
//   - [Force]: computes a force field from coordinates
//   - [Integrator]: advances coordinates by one time step
//   - [Observer], [Metric]: receive recorded frames
//
// # Example
//
//	mol, _ := molecule.NewCube(3, "He", molecule.DefaultMasses)
//	ff := forces.NewLJ(params, forces.StrategyReference)
//	integ, _ := integrators.NewVerlet(0.001)
//	s, _ := sim.New(mol, ff, integ, sim.WithInterval(100))
//	result, _ := s.Run(ctx, 10000)
//
// # Errors
//
// All validation failures wrap one of the sentinel errors in this package and
// can be matched with errors.Is.
package md
