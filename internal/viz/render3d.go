package viz

import (
	"math"
	"sort"

	"github.com/san-kum/hyperion/internal/geom"
	"github.com/san-kum/hyperion/internal/swarm"
)

// Camera projects world coordinates onto a canvas. The swarm is viewed
// around Target, so the picture follows a moving central body.
type Camera struct {
	Target           geom.Point3
	Distance         float64
	RotX, RotY, RotZ float64
	Zoom             float64

	// Extent is the world radius that fills a third of the canvas at zoom 1.
	Extent float64
}

func NewCamera() *Camera {
	return &Camera{Distance: 50, Zoom: 1.0, Extent: 10}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }
func (c *Camera) Reset()            { c.RotX, c.RotY, c.RotZ, c.Zoom = 0, 0, 0, 1 }

// Fit sets Extent so every point of the swarm and the exclusion zone stays
// on screen.
func (c *Camera) Fit(sw *swarm.Swarm, body geom.Point3, exclusion float64) {
	c.Target = body
	extent := exclusion
	for i := range sw.Panels {
		if d := geom.Distance(sw.Panels[i].Position, body); d > extent {
			extent = d
		}
	}
	if extent <= 0 {
		extent = 1
	}
	c.Extent = extent
}

// RotatePoint rotates a point about the camera target.
func (c *Camera) RotatePoint(p geom.Point3) geom.Point3 {
	p = p.Sub(c.Target)
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	p.X, p.Y = p.X*cz-p.Y*sz, p.X*sz+p.Y*cz
	return p
}

// Project converts world coordinates to canvas sub-pixels.
// Returns x, y, depth, and visibility.
func (c *Camera) Project(p geom.Point3, sw, sh int) (int, int, float64, bool) {
	extent := c.Extent
	if extent <= 0 {
		extent = 1
	}
	rot := c.RotatePoint(p).Scale(c.Zoom * 10 / extent)
	dist := c.Distance
	if rot.Z >= dist-0.1 {
		return 0, 0, 0, false
	}
	scale := dist / (dist - rot.Z)
	minDim := float64(sh)
	if float64(sw) < minDim {
		minDim = float64(sw)
	}
	pScale := minDim / 30.0
	sx := int(math.Round(rot.X*scale*pScale)) + sw/2
	sy := int(math.Round(-rot.Y*scale*pScale)) + sh/2
	return sx, sy, rot.Z, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

// Mark is how a primitive is drawn once projected.
type Mark int

const (
	MarkLine Mark = iota
	MarkDot
	MarkBlob
)

type Edge struct {
	Start, End geom.Point3
	Mark       Mark
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe                      { return &Wireframe{Edges: make([]Edge, 0)} }
func (w *Wireframe) AddEdge(s, e geom.Point3)       { w.Edges = append(w.Edges, Edge{s, e, MarkLine}) }
func (w *Wireframe) AddPoint(p geom.Point3, m Mark) { w.Edges = append(w.Edges, Edge{p, p, m}) }
func (w *Wireframe) Clear()                         { w.Edges = w.Edges[:0] }

type ProjectedEdge struct {
	X1, Y1, X2, Y2 int
	Depth          float64
	Mark           Mark
}

// Render3D draws the wireframe to the canvas, far edges first.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	cw, ch := c.Width*2, c.Height*4
	proj := make([]ProjectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, v1 := cam.Project(e.Start, cw, ch)
		x2, y2, d2, v2 := cam.Project(e.End, cw, ch)
		if v1 || v2 {
			proj = append(proj, ProjectedEdge{x1, y1, x2, y2, (d1 + d2) / 2, e.Mark})
		}
	}
	sort.SliceStable(proj, func(i, j int) bool { return proj[i].Depth < proj[j].Depth })
	for _, e := range proj {
		switch {
		case e.Mark == MarkBlob:
			c.Blob(e.X1, e.Y1)
		case e.X1 == e.X2 && e.Y1 == e.Y2:
			c.Set(e.X1, e.Y1)
		default:
			c.DrawLine(e.X1, e.Y1, e.X2, e.Y2)
		}
	}
}

// ExclusionRing approximates the equator of the exclusion sphere around
// center with a closed polygon.
func ExclusionRing(center geom.Point3, radius float64, segments int) *Wireframe {
	w := NewWireframe()
	if radius <= 0 || segments < 3 {
		return w
	}
	prev := center.Add(geom.Point3{X: radius})
	for i := 1; i <= segments; i++ {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		next := center.Add(geom.Point3{X: radius * math.Cos(theta), Y: radius * math.Sin(theta)})
		w.AddEdge(prev, next)
		prev = next
	}
	return w
}

// SwarmWireframe builds the scene for one frame: the exclusion ring, the
// central body, a dot per nominal panel and a blob per overheating panel.
func SwarmWireframe(sw *swarm.Swarm, body geom.Point3, exclusion, threshold float64) *Wireframe {
	w := ExclusionRing(body, exclusion, 48)
	w.AddPoint(body, MarkBlob)
	for i := range sw.Panels {
		p := &sw.Panels[i]
		if p.IsOverheating(threshold) {
			w.AddPoint(p.Position, MarkBlob)
		} else {
			w.AddPoint(p.Position, MarkDot)
		}
	}
	return w
}

func CreateAxesWireframe(origin geom.Point3, l float64) *Wireframe {
	w := NewWireframe()
	w.AddEdge(origin, origin.Add(geom.Point3{X: l}))
	w.AddEdge(origin, origin.Add(geom.Point3{Y: l}))
	w.AddEdge(origin, origin.Add(geom.Point3{Z: l}))
	return w
}
