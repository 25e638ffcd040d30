package trajectory

import (
	"slices"

	"github.com/san-kum/mdsim/internal/md"
)

// Trajectory is an append-only sequence of coordinate snapshots sharing one
// list of element labels.
type Trajectory struct {
	labels []string
	frames []md.Coords
}

// New creates an empty trajectory. With nil labels, the labels are taken
// from the first file loaded into it.
func New(labels []string) *Trajectory {
	return &Trajectory{labels: slices.Clone(labels)}
}

func (t *Trajectory) Len() int              { return len(t.frames) }
func (t *Trajectory) NumAtoms() int         { return len(t.labels) }
func (t *Trajectory) Labels() []string      { return slices.Clone(t.labels) }
func (t *Trajectory) Frame(i int) md.Coords { return t.frames[i].Clone() }

// Frames returns deep copies of all frames.
func (t *Trajectory) Frames() []md.Coords {
	out := make([]md.Coords, len(t.frames))
	for i, f := range t.frames {
		out[i] = f.Clone()
	}
	return out
}

// AddFrame appends a copy of pos.
func (t *Trajectory) AddFrame(pos md.Coords) error {
	if len(pos) != len(t.labels) {
		return md.ShapeErrorf("frame has %d atoms, trajectory has %d", len(pos), len(t.labels))
	}
	t.frames = append(t.frames, pos.Clone())
	return nil
}

// Reset drops all frames and keeps the labels.
func (t *Trajectory) Reset() {
	t.frames = nil
}
