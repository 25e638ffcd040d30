package forces

import (
	"fmt"

	"github.com/san-kum/mdsim/internal/md"
)

type Strategy int

const (
	StrategyReference Strategy = iota
	StrategyVectorized
	StrategyParallel
)

var strategyNames = map[Strategy]string{
	StrategyReference:  "reference",
	StrategyVectorized: "vectorized",
	StrategyParallel:   "parallel",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// ParseStrategy maps a strategy name to its value. "ref" and "vec" are
// accepted as aliases of reference and vectorized.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "reference", "ref", "":
		return StrategyReference, nil
	case "vectorized", "vec":
		return StrategyVectorized, nil
	case "parallel":
		return StrategyParallel, nil
	}
	return 0, md.Configf("unknown force strategy %q (available: %v)", name, StrategyNames())
}

func StrategyNames() []string {
	return []string{"reference", "vectorized", "parallel"}
}

// LJ is the Lennard-Jones pair force. Its parameters are fixed at
// construction.
type LJ struct {
	params   LJParams
	strategy Strategy
}

func NewLJ(params LJParams, strategy Strategy) (*LJ, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if _, ok := strategyNames[strategy]; !ok {
		return nil, md.Configf("unknown force strategy %d", int(strategy))
	}
	return &LJ{params: params, strategy: strategy}, nil
}

func (f *LJ) Name() string       { return "lj-" + f.strategy.String() }
func (f *LJ) Params() LJParams   { return f.params }
func (f *LJ) Strategy() Strategy { return f.strategy }

// WithParams returns a new force with the same strategy and different
// parameters.
func (f *LJ) WithParams(p LJParams) (*LJ, error) {
	return NewLJ(p, f.strategy)
}

func (f *LJ) Compute(pos md.Coords) (md.Coords, error) {
	switch f.strategy {
	case StrategyVectorized:
		return ComputeVectorized(pos, f.params), nil
	case StrategyParallel:
		return ComputeParallel(pos, f.params)
	default:
		return ComputeReference(pos, f.params), nil
	}
}

// pairMagnitude returns the scalar that multiplies r_ij = pos_i - pos_j,
// 4·eps·s6·(-12·s6/r2^7 + 6/r2^4).
func pairMagnitude(r2, s6, eps float64) float64 {
	r4 := r2 * r2
	rn4 := 1.0 / (r4 * r4)
	rn7 := rn4 * rn4 * r2
	return (-12.0*rn7*s6 + 6.0*rn4) * 4.0 * eps * s6
}

// ComputeReference accumulates each unordered pair once.
func ComputeReference(pos md.Coords, p LJParams) md.Coords {
	n := len(pos)
	out := md.Zeros(n)
	s6 := p.sigma6()

	for i := 0; i < n; i++ {
		pi := pos[i]
		for j := i + 1; j < n; j++ {
			dc := pi.Sub(pos[j])
			f := pairMagnitude(dc.Norm2(), s6, p.Epsilon)

			for k := 0; k < 3; k++ {
				out[i][k] += f * dc[k]
				out[j][k] -= f * dc[k]
			}
		}
	}

	return out
}

// ComputeVectorized materializes the N×N displacement tensor and distance
// matrix, then contracts them row by row. The diagonal of r2² is set to 1
// before taking reciprocals; the diagonal displacement is zero so it never
// contributes.
func ComputeVectorized(pos md.Coords, p LJParams) md.Coords {
	n := len(pos)
	out := md.Zeros(n)
	if n == 0 {
		return out
	}
	s6 := p.sigma6()

	diff := make([]md.Vec3, n*n)
	r2 := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			d := pos[i].Sub(pos[j])
			diff[i*n+j] = d
			r2[i*n+j] = d.Norm2()
		}
	}

	r2sq := make([]float64, n*n)
	for idx, v := range r2 {
		r2sq[idx] = v * v
	}
	for i := 0; i < n; i++ {
		r2sq[i*n+i] = 1.0
	}

	mag := make([]float64, n*n)
	for idx := range mag {
		rn4 := 1.0 / (r2sq[idx] * r2sq[idx])
		rn7 := rn4 * rn4 * r2[idx]
		mag[idx] = (-12.0*rn7*s6 + 6.0*rn4) * 4.0 * p.Epsilon * s6
	}

	for i := 0; i < n; i++ {
		var acc md.Vec3
		for j := 0; j < n; j++ {
			d := diff[i*n+j]
			m := mag[i*n+j]
			acc[0] += d[0] * m
			acc[1] += d[1] * m
			acc[2] += d[2] * m
		}
		out[i] = acc
	}

	return out
}
