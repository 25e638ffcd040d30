package metrics

import "github.com/san-kum/mdsim/internal/md"

// Stability is the fraction of recorded frames whose largest coordinate
// change from the first frame stays within threshold.
type Stability struct {
	name       string
	threshold  float64
	first      md.Coords
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) OnFrame(step int, pos md.Coords) {
	if s.first == nil {
		s.first = pos.Clone()
	}
	s.samples++
	if pos.MaxAbsDiff(s.first) > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.first = nil
	s.violations = 0
	s.samples = 0
}

// MaxDisplacement is the largest coordinate change from the first recorded
// frame seen so far.
type MaxDisplacement struct {
	first md.Coords
	max   float64
}

func NewMaxDisplacement() *MaxDisplacement {
	return &MaxDisplacement{}
}

func (m *MaxDisplacement) Name() string { return "max_displacement" }

func (m *MaxDisplacement) OnFrame(step int, pos md.Coords) {
	if m.first == nil {
		m.first = pos.Clone()
		return
	}
	if d := pos.MaxAbsDiff(m.first); d > m.max {
		m.max = d
	}
}

func (m *MaxDisplacement) Value() float64 { return m.max }

func (m *MaxDisplacement) Reset() {
	m.first = nil
	m.max = 0
}
