package trajectory

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/san-kum/mdsim/internal/md"
)

// FormatError reports the line of an XYZ file that could not be read.
type FormatError struct {
	Line   int
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("xyz line %d: %s", e.Line, e.Reason)
}

func (e *FormatError) Unwrap() error { return md.ErrFormat }

func formatErr(line int, format string, args ...any) error {
	return &FormatError{Line: line, Reason: fmt.Sprintf(format, args...)}
}

// WriteXYZ writes every frame as
//
//	<atom count>
//	frame <index>
//	<label> <x> <y> <z>
//
// with coordinates formatted as %10.7f.
func (t *Trajectory) WriteXYZ(w io.Writer) error {
	bw := bufio.NewWriter(w)
	noa := len(t.labels)

	for i, frame := range t.frames {
		if _, err := fmt.Fprintf(bw, "%d\nframe %d\n", noa, i); err != nil {
			return err
		}
		for j, c := range frame {
			if _, err := fmt.Fprintf(bw, "%s %10.7f %10.7f %10.7f\n", t.labels[j], c[0], c[1], c[2]); err != nil {
				return err
			}
		}
	}

	return bw.Flush()
}

// Save writes the trajectory to path, replacing any existing file. The file
// is closed on every path; a failed write may leave a partial file behind.
func (t *Trajectory) Save(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return t.WriteXYZ(f)
}

// ReadXYZ replaces the frames with those parsed from r. The total line count
// must be a multiple of (atoms + 2) where the atom count is taken from the
// first line. If the trajectory already has labels the file must carry the
// same ones. On error the trajectory is left unchanged.
func (t *Trajectory) ReadXYZ(r io.Reader) error {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return err
	}

	if len(lines) == 0 {
		return formatErr(1, "empty file")
	}

	noa, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil || noa < 0 {
		return formatErr(1, "invalid atom count %q", lines[0])
	}

	perFrame := noa + 2
	if len(lines)%perFrame != 0 {
		return formatErr(len(lines), "%d lines is not a multiple of %d (atoms + 2)", len(lines), perFrame)
	}

	var labels []string
	frames := make([]md.Coords, 0, len(lines)/perFrame)

	for start := 0; start < len(lines); start += perFrame {
		count, err := strconv.Atoi(strings.TrimSpace(lines[start]))
		if err != nil || count != noa {
			return formatErr(start+1, "frame declares %q atoms, expected %d", lines[start], noa)
		}

		frameLabels := make([]string, noa)
		coords := make(md.Coords, noa)
		for j := 0; j < noa; j++ {
			lineNo := start + 3 + j
			fields := strings.Fields(lines[lineNo-1])
			if len(fields) != 4 {
				return formatErr(lineNo, "expected label and 3 coordinates, got %d fields", len(fields))
			}
			frameLabels[j] = fields[0]
			for k := 0; k < 3; k++ {
				v, err := strconv.ParseFloat(fields[k+1], 64)
				if err != nil {
					return formatErr(lineNo, "invalid coordinate %q", fields[k+1])
				}
				coords[j][k] = v
			}
		}

		if labels == nil {
			labels = frameLabels
		} else if !slices.Equal(labels, frameLabels) {
			return formatErr(start+1, "frame labels differ from the first frame")
		}
		frames = append(frames, coords)
	}

	if len(t.labels) > 0 && !slices.Equal(t.labels, labels) {
		return md.ShapeErrorf("file labels %v do not match trajectory labels %v", labels, t.labels)
	}

	if len(t.labels) == 0 {
		t.labels = labels
	}
	t.frames = frames
	return nil
}

// Load replaces the frames with the contents of the XYZ file at path.
func (t *Trajectory) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := t.ReadXYZ(f); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// LoadFile reads an XYZ file into a new trajectory.
func LoadFile(path string) (*Trajectory, error) {
	t := New(nil)
	if err := t.Load(path); err != nil {
		return nil, err
	}
	return t, nil
}
