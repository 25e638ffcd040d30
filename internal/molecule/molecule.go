package molecule

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/san-kum/mdsim/internal/md"
)

// MassTable maps an element symbol to its mass.
type MassTable map[string]float64

// DefaultMasses is the element table used when none is supplied.
var DefaultMasses = MassTable{"H": 1.0, "He": 2.0}

// Mass looks up the mass of symbol.
func (t MassTable) Mass(symbol string) (float64, error) {
	m, ok := t[symbol]
	if !ok {
		return 0, md.Configf("element %q not recognized (known: %v)", symbol, t.Symbols())
	}
	return m, nil
}

// Symbols returns the known element symbols in sorted order.
func (t MassTable) Symbols() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (t MassTable) validate() error {
	if len(t) == 0 {
		return md.Configf("empty mass table")
	}
	for sym, m := range t {
		if m <= 0 {
			return md.Configf("mass of %q must be positive, got %g", sym, m)
		}
	}
	return nil
}

// Molecule holds the particle labels, the current coordinates and the most
// recently computed force. It is not safe for concurrent use.
type Molecule struct {
	table     MassTable
	labels    []string
	masses    []float64
	positions md.Coords
	force     md.Coords
}

// New returns an empty molecule bound to the given mass table. A nil table
// selects DefaultMasses.
func New(table MassTable) (*Molecule, error) {
	if table == nil {
		table = DefaultMasses
	}
	if err := table.validate(); err != nil {
		return nil, err
	}
	return &Molecule{table: table}, nil
}

// NewCube creates n³ atoms of one element at the integer lattice points of
// [0,n)³, ordered by x, then y, then z.
func NewCube(n int, element string, table MassTable) (*Molecule, error) {
	if n <= 0 {
		return nil, md.Configf("cube edge must be positive, got %d", n)
	}
	m, err := New(table)
	if err != nil {
		return nil, err
	}

	count := n * n * n
	labels := make([]string, count)
	for i := range labels {
		labels[i] = element
	}
	if err := m.SetLabels(labels); err != nil {
		return nil, err
	}

	coords := make(md.Coords, 0, count)
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			for z := 0; z < n; z++ {
				coords = append(coords, md.Vec3{float64(x), float64(y), float64(z)})
			}
		}
	}
	if err := m.SetPositions(coords); err != nil {
		return nil, err
	}
	return m, nil
}

// FromCoords builds a molecule from explicit labels and coordinates.
func FromCoords(labels []string, coords md.Coords, table MassTable) (*Molecule, error) {
	m, err := New(table)
	if err != nil {
		return nil, err
	}
	if err := m.SetLabels(labels); err != nil {
		return nil, err
	}
	if err := m.SetPositions(coords); err != nil {
		return nil, err
	}
	return m, nil
}

// SetLabels replaces the element labels. Every label must exist in the mass
// table. Positions and force are zeroed when the particle count changes.
func (m *Molecule) SetLabels(labels []string) error {
	masses := make([]float64, len(labels))
	for i, l := range labels {
		mass, err := m.table.Mass(l)
		if err != nil {
			return fmt.Errorf("atom %d: %w", i, err)
		}
		masses[i] = mass
	}

	if len(labels) != len(m.labels) {
		m.positions = md.Zeros(len(labels))
		m.force = md.Zeros(len(labels))
	}
	m.labels = append([]string(nil), labels...)
	m.masses = masses
	return nil
}

// SetPositions replaces the coordinates with a copy of pos.
func (m *Molecule) SetPositions(pos md.Coords) error {
	if len(pos) != len(m.labels) {
		return md.ShapeErrorf("positions have %d rows, molecule has %d atoms", len(pos), len(m.labels))
	}
	m.positions = pos.Clone()
	return nil
}

// SetForce stores a copy of f as the current force.
func (m *Molecule) SetForce(f md.Coords) error {
	if len(f) != len(m.labels) {
		return md.ShapeErrorf("force has %d rows, molecule has %d atoms", len(f), len(m.labels))
	}
	m.force = f.Clone()
	return nil
}

func (m *Molecule) ResetForce() {
	m.force = md.Zeros(len(m.labels))
}

// Jitter displaces every coordinate by a uniform random amount in
// [-amplitude, amplitude].
func (m *Molecule) Jitter(rng *rand.Rand, amplitude float64) {
	for i := range m.positions {
		for k := 0; k < 3; k++ {
			m.positions[i][k] += (2*rng.Float64() - 1) * amplitude
		}
	}
}

func (m *Molecule) Count() int { return len(m.labels) }

func (m *Molecule) Labels() []string { return append([]string(nil), m.labels...) }

func (m *Molecule) Masses() []float64 { return append([]float64(nil), m.masses...) }

func (m *Molecule) Positions() md.Coords { return m.positions.Clone() }

func (m *Molecule) Force() md.Coords { return m.force.Clone() }

func (m *Molecule) MassTable() MassTable { return m.table }

// Copy returns a deep copy sharing only the (read-only) mass table.
func (m *Molecule) Copy() *Molecule {
	return &Molecule{
		table:     m.table,
		labels:    m.Labels(),
		masses:    m.Masses(),
		positions: m.positions.Clone(),
		force:     m.force.Clone(),
	}
}
