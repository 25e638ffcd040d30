// Package export renders simulation output as standalone SVG documents.
package export

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/san-kum/mdsim/internal/md"
	"github.com/san-kum/mdsim/internal/viz"
)

const background = "#0a0a0a"

// WriteCanvasSVG draws every lit dot of c as a circle. Each dot occupies a
// scale x scale square.
func WriteCanvasSVG(w io.Writer, c *viz.Canvas, scale float64, color string) error {
	if c == nil {
		return fmt.Errorf("export: nil canvas")
	}
	if scale <= 0 {
		return fmt.Errorf("export: scale must be positive, got %g", scale)
	}

	dw, dh := c.Dots()
	width, height := float64(dw)*scale, float64(dh)*scale
	r := scale * 0.4

	bw := bufio.NewWriter(w)
	writeHeader(bw, width, height)
	fmt.Fprintf(bw, "<g fill=\"%s\">\n", color)
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			if !c.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			fmt.Fprintf(bw, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, r)
		}
	}
	bw.WriteString("</g>\n</svg>\n")
	return bw.Flush()
}

// WriteSnapshotSVG renders pos through a fitted camera onto a cols x rows
// braille canvas and writes it with WriteCanvasSVG.
func WriteSnapshotSVG(w io.Writer, pos md.Coords, cols, rows int, scale float64, color string) error {
	c := viz.NewCanvas(cols, rows)
	cam := viz.NewCamera()
	cam.Fit(pos)
	viz.Render(c, cam, viz.BoxEdges(pos), pos)
	return WriteCanvasSVG(w, c, scale, color)
}

// WriteSeriesSVG plots values against their index as a polyline, padded by
// a tenth of the range on every side.
func WriteSeriesSVG(w io.Writer, values []float64, width, height int, color string) error {
	if len(values) < 2 {
		return fmt.Errorf("export: need at least 2 values, got %d", len(values))
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("export: invalid size %dx%d", width, height)
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	lo -= span * 0.1
	span *= 1.2

	n := float64(len(values) - 1)
	bw := bufio.NewWriter(w)
	writeHeader(bw, float64(width), float64(height))
	fmt.Fprintf(bw, "<path fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\" d=\"", color)
	for i, v := range values {
		x := float64(i) / n * float64(width)
		y := float64(height) - (v-lo)/span*float64(height)
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(bw, "%s%.1f,%.1f ", cmd, x, y)
	}
	bw.WriteString("\"/>\n</svg>\n")
	return bw.Flush()
}

func writeHeader(w *bufio.Writer, width, height float64) {
	fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}
