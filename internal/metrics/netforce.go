package metrics

import (
	"github.com/san-kum/mdsim/internal/md"
)

// NetForce tracks the largest norm of the summed force over recorded frames.
// For a pair potential the sum vanishes up to rounding, so a growing value
// points at a broken force evaluation.
type NetForce struct {
	name    string
	force   md.Force
	max     float64
	samples int
	failed  int
}

func NewNetForce(force md.Force) *NetForce {
	return &NetForce{
		name:  "net_force",
		force: force,
	}
}

func (n *NetForce) Name() string {
	return n.name
}

func (n *NetForce) OnFrame(step int, pos md.Coords) {
	f, err := n.force.Compute(pos)
	if err != nil {
		n.failed++
		return
	}
	if r := f.Sum().Norm(); r > n.max {
		n.max = r
	}
	n.samples++
}

func (n *NetForce) Value() float64 {
	return n.max
}

// Failures reports how many frames the force could not be evaluated on.
func (n *NetForce) Failures() int { return n.failed }

func (n *NetForce) Reset() {
	n.max = 0
	n.samples = 0
	n.failed = 0
}
