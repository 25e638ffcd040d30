package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/mdsim/internal/trajectory"
)

type ExportData struct {
	Run           RunMetadata    `json:"run"`
	Labels        []string       `json:"labels"`
	Frames        [][][3]float64 `json:"frames"`
	Displacements []float64      `json:"displacements"`
}

// ExportJSON writes a run together with its frames and per-frame
// displacement as indented JSON. traj may be nil.
func ExportJSON(w io.Writer, meta *RunMetadata, traj *trajectory.Trajectory) error {
	data := ExportData{
		Run:    *meta,
		Frames: make([][][3]float64, 0),
	}

	if traj != nil {
		data.Labels = traj.Labels()
		data.Displacements = traj.MaxDisplacements()
		for _, frame := range traj.Frames() {
			rows := make([][3]float64, len(frame))
			for i, v := range frame {
				rows[i] = v
			}
			data.Frames = append(data.Frames, rows)
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
