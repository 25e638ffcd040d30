package viz

import (
	"math"
	"sort"

	"github.com/san-kum/mdsim/internal/md"
)

// Camera projects particle coordinates onto the canvas. Fit centers the view
// on a set of points and scales it to unit radius; rotation and zoom are
// applied around that center.
type Camera struct {
	Center           md.Vec3
	Scale            float64
	RotX, RotY, RotZ float64
	Zoom             float64
	Distance         float64
}

func NewCamera() *Camera {
	return &Camera{Scale: 1, Zoom: 1, Distance: 6, RotX: 0.5, RotY: 0.6}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// Fit centers the camera on the centroid of pts and scales the farthest
// point to unit distance.
func (c *Camera) Fit(pts md.Coords) {
	if len(pts) == 0 {
		return
	}
	c.Center = pts.Sum().Scale(1 / float64(len(pts)))
	radius := 0.0
	for _, p := range pts {
		radius = math.Max(radius, p.Sub(c.Center).Norm())
	}
	c.Scale = 1
	if radius > 0 {
		c.Scale = 1 / radius
	}
}

func (c *Camera) rotate(p md.Vec3) md.Vec3 {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p[1], p[2] = p[1]*cx-p[2]*sx, p[1]*sx+p[2]*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p[0], p[2] = p[0]*cy+p[2]*sy, -p[0]*sy+p[2]*cy
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	p[0], p[1] = p[0]*cz-p[1]*sz, p[0]*sz+p[1]*cz
	return p
}

// Project maps p to dot coordinates on a sw x sh canvas. It returns the
// depth (larger is closer) and whether the point lands on the canvas.
func (c *Camera) Project(p md.Vec3, sw, sh int) (int, int, float64, bool) {
	q := c.rotate(p.Sub(c.Center).Scale(c.Scale * c.Zoom))
	if q[2] >= c.Distance-0.1 {
		return 0, 0, 0, false
	}
	persp := c.Distance / (c.Distance - q[2])
	unit := float64(min(sw, sh)) / 3.0
	sx := int(math.Round(q[0]*persp*unit)) + sw/2
	sy := int(math.Round(-q[1]*persp*unit)) + sh/2
	return sx, sy, q[2], sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

// Edge is a segment of the reference box drawn around the cluster.
type Edge struct{ Start, End md.Vec3 }

// BoxEdges returns the 12 edges of the axis-aligned box spanning pts.
func BoxEdges(pts md.Coords) []Edge {
	if len(pts) == 0 {
		return nil
	}
	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], p[k])
			hi[k] = math.Max(hi[k], p[k])
		}
	}
	v := [8]md.Vec3{
		{lo[0], lo[1], lo[2]}, {hi[0], lo[1], lo[2]}, {hi[0], hi[1], lo[2]}, {lo[0], hi[1], lo[2]},
		{lo[0], lo[1], hi[2]}, {hi[0], lo[1], hi[2]}, {hi[0], hi[1], hi[2]}, {lo[0], hi[1], hi[2]},
	}
	idx := [12][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}, {4, 5}, {5, 6}, {6, 7}, {7, 4}, {0, 4}, {1, 5}, {2, 6}, {3, 7}}
	edges := make([]Edge, len(idx))
	for i, e := range idx {
		edges[i] = Edge{v[e[0]], v[e[1]]}
	}
	return edges
}

type projectedAtom struct {
	x, y  int
	depth float64
}

// Render draws the box edges as lines and each particle as a disc, far
// particles first. Closer particles get larger discs.
func Render(c *Canvas, cam *Camera, edges []Edge, pts md.Coords) {
	if c == nil || cam == nil {
		return
	}
	sw, sh := c.Dots()

	for _, e := range edges {
		x1, y1, _, v1 := cam.Project(e.Start, sw, sh)
		x2, y2, _, v2 := cam.Project(e.End, sw, sh)
		if v1 || v2 {
			c.DrawLine(x1, y1, x2, y2)
		}
	}

	atoms := make([]projectedAtom, 0, len(pts))
	for _, p := range pts {
		x, y, d, ok := cam.Project(p, sw, sh)
		if ok {
			atoms = append(atoms, projectedAtom{x, y, d})
		}
	}
	sort.Slice(atoms, func(i, j int) bool { return atoms[i].depth < atoms[j].depth })
	for _, a := range atoms {
		r := 1
		if a.depth > 0 {
			r = 2
		}
		c.Disc(a.x, a.y, r)
	}
}
