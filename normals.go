package polymesh

import (
	"log/slog"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

// coincidentEpsilon is the grid size under which two vertex positions are
// the same point for smoothing.
const coincidentEpsilon = 1e-9

// CalculateNormals recomputes every face normal and then the vertex normals.
//
// With smooth false each polygon writes its face normal to its own vertices
// in polygon order. A vertex shared by several polygons therefore ends up
// with the normal of the last polygon that references it; meshes that need
// true flat shading must give each face its own vertices (the box and plane
// generators do).
//
// With smooth true each vertex takes the normalized sum of the face normals
// of its connected polygons that lie within smoothAngle degrees of a
// reference face, which is the last connected polygon (the same one that
// wins in flat mode). Faces beyond the angle form a hard edge. Vertices at
// the same position count as one vertex here: the polygons of all of them
// are candidates, so texture seams that repeat a vertex stay smooth.
//
// Degenerate polygons have their face normal zeroed and contribute nothing.
// A vertex with no usable face keeps its previous normal. Line and point
// meshes have no faces and are left alone.
func (m *Mesh) CalculateNormals(smooth bool, smoothAngle float64) {
	valid := m.updateFaceNormals()

	if !smooth {
		for i, p := range m.polygons {
			if !valid[i] {
				continue
			}
			for _, id := range p.ids {
				m.slots[id].vertex.Normal = p.normal
			}
		}
		m.MarkArraysDirty(NormalArray)
		return
	}

	faces := m.vertexFaces()
	groups := make(map[[3]int64][]VertexID)
	m.eachVertex(func(id VertexID, v *Vertex) {
		if len(faces[id]) > 0 {
			key := quantize(v.Position, coincidentEpsilon)
			groups[key] = append(groups[key], id)
		}
	})

	var candidates []int
	for id, conn := range faces {
		ref := -1
		for j := len(conn) - 1; j >= 0; j-- {
			if valid[conn[j]] {
				ref = conn[j]
				break
			}
		}
		if ref < 0 {
			continue
		}

		candidates = candidates[:0]
		for _, other := range groups[quantize(m.slots[id].vertex.Position, coincidentEpsilon)] {
			for _, fi := range faces[other] {
				if valid[fi] && !slices.Contains(candidates, fi) {
					candidates = append(candidates, fi)
				}
			}
		}
		slices.Sort(candidates)

		refNormal := m.polygons[ref].normal
		var sum mgl64.Vec3
		for _, fi := range candidates {
			fn := m.polygons[fi].normal
			if angleBetween(refNormal, fn) <= smoothAngle {
				sum = sum.Add(fn)
			}
		}

		// opposing faces can cancel out; fall back to the reference face
		if sum.Dot(sum) <= degenerateEpsilon {
			sum = refNormal
		}
		m.slots[id].vertex.Normal = sum.Normalize()
	}
	m.MarkArraysDirty(NormalArray)
}

// updateFaceNormals recomputes the face normal of every polygon and reports
// which ones have area.
func (m *Mesh) updateFaceNormals() []bool {
	valid := make([]bool, len(m.polygons))
	for i, p := range m.polygons {
		n, ok := m.polygonNormal(p)
		p.normal = n
		valid[i] = ok
		if !ok && m.meshType.HasFaces() && len(p.ids) >= 3 {
			slog.Debug("skipping polygon in normal calculation", "err", &DegenerateGeometryError{Polygon: i})
		}
	}
	return valid
}

// polygonNormal is the face normal of p, or false when p has no area or
// the mesh type has no faces.
func (m *Mesh) polygonNormal(p *Polygon) (mgl64.Vec3, bool) {
	if !m.meshType.HasFaces() {
		return mgl64.Vec3{}, false
	}
	return faceNormal(m.positions(p.ids))
}

// angleBetween returns the angle between two unit vectors in degrees.
func angleBetween(a, b mgl64.Vec3) float64 {
	return mgl64.RadToDeg(math.Acos(mgl64.Clamp(a.Dot(b), -1, 1)))
}

// vertexFaces maps every live vertex to the polygons referencing it, in
// polygon order. Dead slots map to nil.
func (m *Mesh) vertexFaces() map[VertexID][]int {
	faces := make(map[VertexID][]int, m.liveVertices)
	for i, p := range m.polygons {
		for _, id := range p.ids {
			conn := faces[id]
			if n := len(conn); n > 0 && conn[n-1] == i {
				continue
			}
			faces[id] = append(conn, i)
		}
	}
	return faces
}

// ConnectedFaces returns the indices of the polygons that reference id, in
// polygon order. It scans every polygon, so it is meant for offline queries.
func (m *Mesh) ConnectedFaces(id VertexID) []int {
	var out []int
	for i, p := range m.polygons {
		for _, pid := range p.ids {
			if pid == id {
				out = append(out, i)
				break
			}
		}
	}
	return out
}

// CalculateTangents recomputes per-vertex tangents from positions and
// texture coordinates. Polygons are fan triangulated from their first
// corner; each triangle's tangent is added to its three vertices and the
// sums are normalized. Triangles without area in position or texture space
// are skipped, and vertices that receive nothing keep their previous
// tangent.
func (m *Mesh) CalculateTangents() {
	acc := make([]mgl64.Vec3, len(m.slots))
	for i, p := range m.polygons {
		skipped := false
		for k := 1; k+1 < len(p.ids); k++ {
			a, b, c := p.ids[0], p.ids[k], p.ids[k+1]
			t, ok := triangleTangent(&m.slots[a].vertex, &m.slots[b].vertex, &m.slots[c].vertex)
			if !ok {
				skipped = true
				continue
			}
			acc[a] = acc[a].Add(t)
			acc[b] = acc[b].Add(t)
			acc[c] = acc[c].Add(t)
		}
		if skipped {
			slog.Debug("skipping triangle in tangent calculation", "err", &DegenerateGeometryError{Polygon: i})
		}
	}

	for id, t := range acc {
		if !m.slots[id].live || t.Dot(t) <= degenerateEpsilon {
			continue
		}
		m.slots[id].vertex.Tangent = t.Normalize()
	}
	m.MarkArraysDirty(TangentArray)
}

func triangleTangent(v0, v1, v2 *Vertex) (mgl64.Vec3, bool) {
	e1 := v1.Position.Sub(v0.Position)
	e2 := v2.Position.Sub(v0.Position)
	d1 := v1.TexCoord.Sub(v0.TexCoord)
	d2 := v2.TexCoord.Sub(v0.TexCoord)

	r := d1.X()*d2.Y() - d2.X()*d1.Y()
	if math.Abs(r) < 1e-12 {
		return mgl64.Vec3{}, false
	}
	t := e1.Mul(d2.Y()).Sub(e2.Mul(d1.Y())).Mul(1 / r)
	if t.Dot(t) <= degenerateEpsilon {
		return mgl64.Vec3{}, false
	}
	return t, true
}

// CheckGeometry returns a DegenerateGeometryError for every polygon of
// three or more corners that has no area. Line and point meshes have
// nothing to check.
func (m *Mesh) CheckGeometry() []error {
	if !m.meshType.HasFaces() {
		return nil
	}
	var errs []error
	for i, p := range m.polygons {
		if len(p.ids) < 3 {
			continue
		}
		if _, ok := faceNormal(m.positions(p.ids)); !ok {
			errs = append(errs, &DegenerateGeometryError{Polygon: i})
		}
	}
	return errs
}
