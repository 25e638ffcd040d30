package forces

import "github.com/san-kum/mdsim/internal/md"

// PotentialEnergy returns the total Lennard-Jones energy
// sum over i<j of 4·eps·((sigma²/r²)^6 - (sigma²/r²)^3).
func PotentialEnergy(pos md.Coords, p LJParams) float64 {
	n := len(pos)
	s2 := p.Sigma * p.Sigma
	e := 0.0

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			x := s2 / pos[i].Sub(pos[j]).Norm2()
			x3 := x * x * x
			e += 4.0 * p.Epsilon * (x3*x3 - x3)
		}
	}

	return e
}

// Energy implements the energy hook used by metrics.
func (f *LJ) Energy(pos md.Coords) float64 {
	return PotentialEnergy(pos, f.params)
}
