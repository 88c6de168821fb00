package preview

import "github.com/go-gl/mathgl/mgl64"

// Point is a position in screen pixels.
type Point struct {
	X, Y float32
}

// plane is the set of points p with normal·p + d == 0. Points on the
// positive side are kept when clipping.
type plane struct {
	normal mgl64.Vec3
	d      float64
}

func nearPlane(z float64) plane {
	return plane{normal: mgl64.Vec3{0, 0, 1}, d: -z}
}

func (p plane) distance(v mgl64.Vec3) float64 {
	return p.normal.Dot(v) + p.d
}

// lineIntersect returns where segment ab crosses the plane. A segment
// parallel to the plane returns a.
func (p plane) lineIntersect(a, b mgl64.Vec3) mgl64.Vec3 {
	da, db := p.distance(a), p.distance(b)
	if da == db {
		return a
	}
	t := da / (da - db)
	return a.Add(b.Sub(a).Mul(t))
}

func intersectNearPlane(a, b mgl64.Vec3, near float64) mgl64.Vec3 {
	return nearPlane(near).lineIntersect(a, b)
}

// clipNear keeps the part of a convex camera space polygon with z >= near.
func clipNear(pts []mgl64.Vec3, near float64) []mgl64.Vec3 {
	if len(pts) == 0 {
		return nil
	}
	p := nearPlane(near)
	out := make([]mgl64.Vec3, 0, len(pts)+1)

	prev := pts[len(pts)-1]
	prevIn := p.distance(prev) >= 0
	for _, cur := range pts {
		curIn := p.distance(cur) >= 0
		if curIn != prevIn {
			out = append(out, p.lineIntersect(prev, cur))
		}
		if curIn {
			out = append(out, cur)
		}
		prev, prevIn = cur, curIn
	}
	return out
}

// clipPolygon clips a convex screen polygon to the viewport grown by one
// pixel on the right and bottom.
func clipPolygon(pts []Point, width, height float32) []Point {
	edges := []struct {
		inside func(Point) bool
		cross  func(a, b Point) Point
	}{
		{func(p Point) bool { return p.X >= 0 }, func(a, b Point) Point { return atX(a, b, 0) }},
		{func(p Point) bool { return p.X <= width+1 }, func(a, b Point) Point { return atX(a, b, width+1) }},
		{func(p Point) bool { return p.Y >= 0 }, func(a, b Point) Point { return atY(a, b, 0) }},
		{func(p Point) bool { return p.Y <= height+1 }, func(a, b Point) Point { return atY(a, b, height+1) }},
	}

	for _, e := range edges {
		if len(pts) == 0 {
			return nil
		}
		out := make([]Point, 0, len(pts)+1)
		prev := pts[len(pts)-1]
		prevIn := e.inside(prev)
		for _, cur := range pts {
			curIn := e.inside(cur)
			if curIn != prevIn {
				out = append(out, e.cross(prev, cur))
			}
			if curIn {
				out = append(out, cur)
			}
			prev, prevIn = cur, curIn
		}
		pts = out
	}
	return pts
}

func atX(a, b Point, x float32) Point {
	t := (x - a.X) / (b.X - a.X)
	return Point{X: x, Y: a.Y + (b.Y-a.Y)*t}
}

func atY(a, b Point, y float32) Point {
	t := (y - a.Y) / (b.Y - a.Y)
	return Point{X: a.X + (b.X-a.X)*t, Y: y}
}
