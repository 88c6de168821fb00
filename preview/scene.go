package preview

import (
	"image/color"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/smasonuk/polymesh"
)

// Face is one polygon ready to fill, in screen pixels.
type Face struct {
	Points  []Point
	Color   color.RGBA
	Polygon int // index in the mesh

	// Depth is the distance from the camera to the face midpoint.
	Depth float64
}

type Options struct {
	// Color fills faces when the mesh does not use vertex colors.
	Color color.RGBA

	Shade         bool
	CullBackfaces bool
}

var DefaultOptions = Options{
	Color:         color.RGBA{R: 200, G: 200, B: 200, A: 255},
	Shade:         true,
	CullBackfaces: true,
}

// Project returns the visible faces of m as seen by cam, farthest first.
// Polygons with fewer than three corners, and line and point meshes, are
// skipped.
func Project(m *polymesh.Mesh, cam *Camera, opts Options) []Face {
	if !m.MeshType().HasFaces() {
		return nil
	}
	positions := cachedPositions(m.RenderArray(polymesh.PositionArray))
	var colors *polymesh.RenderDataArray
	if m.UseVertexColors() {
		colors = m.RenderArray(polymesh.ColorArray)
	}

	view := cam.View()
	w, h := float32(cam.Width), float32(cam.Height)
	faces := make([]Face, 0, m.PolygonCount())

	first := 0
	for i := 0; i < m.PolygonCount(); i++ {
		n := m.Polygon(i).VertexCount()
		corners := positions[first : first+n]
		start := first
		first += n
		if n < 3 {
			continue
		}

		pts := make([]mgl64.Vec3, n)
		behind := 0
		for j, p := range corners {
			pts[j] = mgl64.TransformCoordinate(p, view)
			if pts[j].Z() < cam.Near {
				behind++
			}
		}
		if behind == n {
			continue
		}

		mid := midpoint(pts)
		normal, ok := newellNormal(pts)
		if !ok {
			continue
		}
		if opts.CullBackfaces && normal.Dot(mid) >= 0 {
			continue
		}
		if behind > 0 {
			pts = clipNear(pts, cam.Near)
		}

		screen := make([]Point, len(pts))
		for j, p := range pts {
			screen[j] = cam.Project(p)
		}
		screen = clipPolygon(screen, w, h)
		if len(screen) < 3 {
			continue
		}

		c := opts.Color
		if colors != nil {
			c = averageColor(colors, start, n)
		}
		if opts.Shade {
			c = Shade(c, mid, normal)
		}
		faces = append(faces, Face{Points: screen, Color: c, Polygon: i, Depth: mid.Len()})
	}

	sortFacesByDistance(faces)
	return faces
}

// sortFacesByDistance puts the faces farthest from the camera first.
func sortFacesByDistance(faces []Face) {
	sort.SliceStable(faces, func(i, j int) bool {
		return faces[i].Depth > faces[j].Depth
	})
}

// cachedPositions converts a position array once and keeps the result in
// its RendererData slot. A rebuilt array starts with an empty slot, so the
// cache follows the mesh.
func cachedPositions(arr *polymesh.RenderDataArray) []mgl64.Vec3 {
	if pos, ok := arr.RendererData.([]mgl64.Vec3); ok {
		return pos
	}
	pos := make([]mgl64.Vec3, arr.Count)
	for i := range pos {
		e := arr.Element(i)
		pos[i] = mgl64.Vec3{float64(e[0]), float64(e[1]), float64(e[2])}
	}
	arr.RendererData = pos
	return pos
}

func averageColor(arr *polymesh.RenderDataArray, start, n int) color.RGBA {
	var sum [4]float64
	for i := start; i < start+n; i++ {
		for k, v := range arr.Element(i) {
			sum[k] += float64(v)
		}
	}
	c := polymesh.NewColor(sum[0]/float64(n), sum[1]/float64(n), sum[2]/float64(n), 1)
	nrgba := c.NRGBA()
	return color.RGBA{R: nrgba.R, G: nrgba.G, B: nrgba.B, A: 255}
}

func midpoint(pts []mgl64.Vec3) mgl64.Vec3 {
	var sum mgl64.Vec3
	for _, p := range pts {
		sum = sum.Add(p)
	}
	return sum.Mul(1 / float64(len(pts)))
}

// newellNormal returns the unit normal of a polygon ring, or false when the
// ring has no area.
func newellNormal(pts []mgl64.Vec3) (mgl64.Vec3, bool) {
	var n mgl64.Vec3
	for i, a := range pts {
		b := pts[(i+1)%len(pts)]
		n[0] += (a.Y() - b.Y()) * (a.Z() + b.Z())
		n[1] += (a.Z() - b.Z()) * (a.X() + b.X())
		n[2] += (a.X() - b.X()) * (a.Y() + b.Y())
	}
	if n.Dot(n) < 1e-20 {
		return mgl64.Vec3{}, false
	}
	return n.Normalize(), true
}
