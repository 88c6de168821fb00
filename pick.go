package polymesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// pickEpsilon widens the segment ends and polygon edges so that hits exactly
// on a boundary are not lost to rounding.
const pickEpsilon = 1e-9

// IntersectSegment finds the polygon the segment from start to end crosses
// first. Polygons are treated as planar; those with fewer than three corners
// or no area, and every polygon of a line or point mesh, are never hit. ok is
// false when nothing is hit.
func (m *Mesh) IntersectSegment(start, end mgl64.Vec3) (polygon int, hit mgl64.Vec3, ok bool) {
	dir := end.Sub(start)
	best := math.Inf(1)
	polygon = -1
	if !m.meshType.HasFaces() {
		return polygon, hit, false
	}

	for i, p := range m.polygons {
		if len(p.ids) < 3 {
			continue
		}
		pts := m.positions(p.ids)
		n, valid := faceNormal(pts)
		if !valid {
			continue
		}

		denom := n.Dot(dir)
		if math.Abs(denom) < pickEpsilon {
			continue
		}
		t := n.Dot(pts[0].Sub(start)) / denom
		if t < -pickEpsilon || t > 1+pickEpsilon || t >= best {
			continue
		}

		point := start.Add(dir.Mul(t))
		if pointInPolygon(point, pts, n) {
			best, polygon, hit = t, i, point
		}
	}
	return polygon, hit, polygon >= 0
}

// pointInPolygon casts a ray in the plane of the polygon after dropping the
// axis the normal points along most.
func pointInPolygon(p mgl64.Vec3, pts []mgl64.Vec3, n mgl64.Vec3) bool {
	u, v := 0, 1
	switch ax, ay, az := math.Abs(n.X()), math.Abs(n.Y()), math.Abs(n.Z()); {
	case ax >= ay && ax >= az:
		u, v = 1, 2
	case ay >= az:
		u, v = 0, 2
	}

	inside := false
	for i, j := 0, len(pts)-1; i < len(pts); j, i = i, i+1 {
		a, b := pts[i], pts[j]
		if onSegment2D(p[u], p[v], a[u], a[v], b[u], b[v]) {
			return true
		}
		if (a[v] > p[v]) != (b[v] > p[v]) &&
			p[u] < (b[u]-a[u])*(p[v]-a[v])/(b[v]-a[v])+a[u] {
			inside = !inside
		}
	}
	return inside
}

func onSegment2D(px, py, ax, ay, bx, by float64) bool {
	cross := (bx-ax)*(py-ay) - (by-ay)*(px-ax)
	if math.Abs(cross) > pickEpsilon {
		return false
	}
	return px >= min(ax, bx)-pickEpsilon && px <= max(ax, bx)+pickEpsilon &&
		py >= min(ay, by)-pickEpsilon && py <= max(ay, by)+pickEpsilon
}
