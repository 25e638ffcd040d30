package integrators

import (
	"fmt"

	"github.com/san-kum/mdsim/internal/md"
)

// Verlet implements the position Störmer–Verlet recurrence
//
//	x[n+1] = 2·x[n] + dt²·(-F/m) - x[n-1]
//
// where F is the energy gradient returned by the force field. The previous
// coordinates are nil until the first call, which seeds them from the
// current coordinates (zero initial velocity).
type Verlet struct {
	dt   float64
	prev md.Coords
}

func NewVerlet(dt float64) (*Verlet, error) {
	if dt <= 0 {
		return nil, md.Configf("dt must be positive, got %g", dt)
	}
	return &Verlet{dt: dt}, nil
}

func (v *Verlet) Dt() float64 { return v.dt }

// Primed reports whether the integrator holds previous coordinates.
func (v *Verlet) Primed() bool { return v.prev != nil }

// Prev returns a copy of the retained previous coordinates, nil before the
// first call.
func (v *Verlet) Prev() md.Coords { return v.prev.Clone() }

// Reset discards the history so the next call seeds it again.
func (v *Verlet) Reset() { v.prev = nil }

// Integrate returns the coordinates after one step. pos and force are not
// modified; the retained history becomes a copy of pos.
func (v *Verlet) Integrate(pos, force md.Coords, masses []float64) (md.Coords, error) {
	n := len(pos)
	if len(force) != n || len(masses) != n {
		return nil, md.ShapeErrorf("positions %d, force %d, masses %d", n, len(force), len(masses))
	}

	for i, m := range masses {
		if m <= 0 {
			return nil, md.Configf("mass of atom %d must be positive, got %g", i, m)
		}
	}

	if v.prev == nil {
		v.prev = pos.Clone()
	} else if len(v.prev) != n {
		return nil, fmt.Errorf("%w: history has %d atoms, positions have %d (missing Reset?)",
			md.ErrUninitializedState, len(v.prev), n)
	}

	dt2 := v.dt * v.dt
	result := make(md.Coords, n)
	for i := 0; i < n; i++ {
		scale := -dt2 / masses[i]
		for k := 0; k < 3; k++ {
			result[i][k] = 2*pos[i][k] + force[i][k]*scale - v.prev[i][k]
		}
	}

	v.prev = pos.Clone()
	return result, nil
}
