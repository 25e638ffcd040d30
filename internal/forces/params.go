package forces

import "github.com/san-kum/mdsim/internal/md"

// LJParams holds the Lennard-Jones sigma and epsilon. It is a value type;
// the With* methods return modified copies.
type LJParams struct {
	Sigma   float64 `yaml:"sigma" json:"sigma"`
	Epsilon float64 `yaml:"epsilon" json:"epsilon"`
}

// DefaultLJParams returns sigma = epsilon = 1.
func DefaultLJParams() LJParams {
	return LJParams{Sigma: 1.0, Epsilon: 1.0}
}

// NewLJParams validates and returns a parameter set.
func NewLJParams(sigma, epsilon float64) (LJParams, error) {
	p := LJParams{Sigma: sigma, Epsilon: epsilon}
	return p, p.Validate()
}

func (p LJParams) Validate() error {
	if p.Sigma <= 0 {
		return md.Configf("sigma must be positive, got %g", p.Sigma)
	}
	if p.Epsilon <= 0 {
		return md.Configf("epsilon must be positive, got %g", p.Epsilon)
	}
	return nil
}

func (p LJParams) WithSigma(sigma float64) LJParams {
	p.Sigma = sigma
	return p
}

func (p LJParams) WithEpsilon(epsilon float64) LJParams {
	p.Epsilon = epsilon
	return p
}

func (p LJParams) Map() map[string]float64 {
	return map[string]float64{"sigma": p.Sigma, "epsilon": p.Epsilon}
}

// sigma6 returns sigma^6.
func (p LJParams) sigma6() float64 {
	s2 := p.Sigma * p.Sigma
	return s2 * s2 * s2
}
