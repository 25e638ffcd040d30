package md

import "math"

// Vec3 is a cartesian 3-vector.
type Vec3 [3]float64

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]} }
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}
func (v Vec3) Dot(o Vec3) float64 { return v[0]*o[0] + v[1]*o[1] + v[2]*o[2] }
func (v Vec3) Norm2() float64     { return v.Dot(v) }
func (v Vec3) Norm() float64      { return math.Sqrt(v.Norm2()) }

// Coords is an (N, 3) coordinate or force array, one row per particle.
type Coords []Vec3

// Zeros returns an (n, 3) array of zeros.
func Zeros(n int) Coords {
	return make(Coords, n)
}

func (c Coords) Clone() Coords {
	if c == nil {
		return nil
	}
	out := make(Coords, len(c))
	copy(out, c)
	return out
}

// Sum returns the component-wise sum over all rows.
func (c Coords) Sum() Vec3 {
	var s Vec3
	for _, v := range c {
		s = s.Add(v)
	}
	return s
}

// MaxAbsDiff returns max |c[i][k] - other[i][k]| over rows and axes.
// Rows beyond the shorter array are ignored.
func (c Coords) MaxAbsDiff(other Coords) float64 {
	n := len(c)
	if len(other) < n {
		n = len(other)
	}
	maxDiff := 0.0
	for i := 0; i < n; i++ {
		for k := 0; k < 3; k++ {
			if d := math.Abs(c[i][k] - other[i][k]); d > maxDiff {
				maxDiff = d
			}
		}
	}
	return maxDiff
}

func (c Coords) IsValid() bool {
	for _, v := range c {
		for _, x := range v {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return false
			}
		}
	}
	return true
}

// Force computes a per-particle force field for a set of coordinates.
// Implementations must not mutate pos.
type Force interface {
	Name() string
	Compute(pos Coords) (Coords, error)
}

// Integrator advances coordinates by one time step. Implementations may keep
// history between calls; Reset discards it.
type Integrator interface {
	Integrate(pos, force Coords, masses []float64) (Coords, error)
	Reset()
}

// Observer receives every recorded frame. pos must be treated as read-only.
type Observer interface {
	OnFrame(step int, pos Coords)
}

// Metric accumulates a scalar over recorded frames.
type Metric interface {
	Observer
	Name() string
	Value() float64
	Reset()
}
