package polymesh

import "github.com/go-gl/mathgl/mgl64"

// degenerateEpsilon is the squared length under which a face normal or a
// tangent denominator is treated as zero.
const degenerateEpsilon = 1e-20

// Polygon is an ordered ring of vertex references. It does not own the
// vertices; the Mesh does.
type Polygon struct {
	ids    []VertexID
	normal mgl64.Vec3
}

func NewPolygon(ids ...VertexID) *Polygon {
	p := &Polygon{ids: make([]VertexID, len(ids))}
	copy(p.ids, ids)
	return p
}

func (p *Polygon) VertexCount() int {
	return len(p.ids)
}

func (p *Polygon) VertexID(i int) VertexID {
	return p.ids[i]
}

// VertexIDs returns a copy of the vertex ring.
func (p *Polygon) VertexIDs() []VertexID {
	out := make([]VertexID, len(p.ids))
	copy(out, p.ids)
	return out
}

// Normal returns the face normal. It is computed when the polygon is added,
// whenever one of its vertices moves, and by CalculateNormals. It is the zero
// vector for degenerate faces and in line and point meshes.
func (p *Polygon) Normal() mgl64.Vec3 {
	return p.normal
}

// faceNormal returns the unit normal of a vertex ring and false when the
// ring has no area. The first corner's edges are used; rings whose first
// corner is collinear fall back to Newell's method over all corners.
func faceNormal(pts []mgl64.Vec3) (mgl64.Vec3, bool) {
	if len(pts) < 3 {
		return mgl64.Vec3{}, false
	}

	n := pts[1].Sub(pts[0]).Cross(pts[2].Sub(pts[0]))
	if n.Dot(n) <= degenerateEpsilon && len(pts) > 3 {
		n = mgl64.Vec3{}
		for i := range pts {
			cur, next := pts[i], pts[(i+1)%len(pts)]
			n[0] += (cur.Y() - next.Y()) * (cur.Z() + next.Z())
			n[1] += (cur.Z() - next.Z()) * (cur.X() + next.X())
			n[2] += (cur.X() - next.X()) * (cur.Y() + next.Y())
		}
	}
	if n.Dot(n) <= degenerateEpsilon {
		return mgl64.Vec3{}, false
	}
	return n.Normalize(), true
}

// midpoint of a vertex ring
func midpoint(pts []mgl64.Vec3) mgl64.Vec3 {
	if len(pts) == 0 {
		return mgl64.Vec3{}
	}
	var sum mgl64.Vec3
	for _, p := range pts {
		sum = sum.Add(p)
	}
	return sum.Mul(1 / float64(len(pts)))
}
