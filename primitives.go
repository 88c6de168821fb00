package polymesh

import (
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Generators rebuild the mesh from scratch. All of them wind faces counter
// clockwise as seen from outside, write analytic normals, give texture
// coordinates spanning [0,1] along each parametric axis and finish with
// CalculateTangents. Seams repeat a column of vertices so that the texture
// wraps; everywhere else neighbouring faces share vertices. Smooth normals
// treat the repeated seam vertices as one, so seams do not crease.

// CreatePlane builds a w x h quad in the XZ plane facing +Y.
func (m *Mesh) CreatePlane(w, h float64) {
	m.ClearMesh()
	m.meshType = QuadMesh

	hw, hh := w/2, h/2
	m.addQuad(mgl64.Vec3{0, 1, 0},
		NewVertexUV(-hw, 0, -hh, 0, 0),
		NewVertexUV(-hw, 0, hh, 0, 1),
		NewVertexUV(hw, 0, hh, 1, 1),
		NewVertexUV(hw, 0, -hh, 1, 0),
	)
	m.finishPrimitive("plane")
}

// CreateVPlane builds a w x h quad in the XY plane facing +Z.
func (m *Mesh) CreateVPlane(w, h float64) {
	m.ClearMesh()
	m.meshType = QuadMesh

	hw, hh := w/2, h/2
	m.addQuad(mgl64.Vec3{0, 0, 1},
		NewVertexUV(-hw, -hh, 0, 0, 0),
		NewVertexUV(hw, -hh, 0, 1, 0),
		NewVertexUV(hw, hh, 0, 1, 1),
		NewVertexUV(-hw, hh, 0, 0, 1),
	)
	m.finishPrimitive("vplane")
}

// CreateBox builds an origin centred box of width w (X), height h (Y) and
// depth d (Z). Each side has its own four vertices so the edges stay hard.
func (m *Mesh) CreateBox(w, d, h float64) {
	m.ClearMesh()
	m.meshType = QuadMesh

	hx, hy, hz := w/2, h/2, d/2
	sides := []struct{ c, u, v mgl64.Vec3 }{
		{mgl64.Vec3{0, 0, -hz}, mgl64.Vec3{-hx, 0, 0}, mgl64.Vec3{0, hy, 0}}, // -z
		{mgl64.Vec3{0, -hy, 0}, mgl64.Vec3{hx, 0, 0}, mgl64.Vec3{0, 0, hz}},  // -y
		{mgl64.Vec3{hx, 0, 0}, mgl64.Vec3{0, 0, -hz}, mgl64.Vec3{0, hy, 0}},  // +x
		{mgl64.Vec3{-hx, 0, 0}, mgl64.Vec3{0, 0, hz}, mgl64.Vec3{0, hy, 0}},  // -x
		{mgl64.Vec3{0, hy, 0}, mgl64.Vec3{hx, 0, 0}, mgl64.Vec3{0, 0, -hz}},  // +y
		{mgl64.Vec3{0, 0, hz}, mgl64.Vec3{hx, 0, 0}, mgl64.Vec3{0, hy, 0}},   // +z
	}
	for _, s := range sides {
		n := s.u.Cross(s.v)
		if n.Dot(n) > degenerateEpsilon {
			n = n.Normalize()
		}
		corner := func(a, b, u, v float64) Vertex {
			p := s.c.Add(s.u.Mul(a)).Add(s.v.Mul(b))
			return NewVertexUV(p.X(), p.Y(), p.Z(), u, v)
		}
		m.addQuad(n,
			corner(-1, -1, 0, 0),
			corner(1, -1, 1, 0),
			corner(1, 1, 1, 1),
			corner(-1, 1, 0, 1),
		)
	}
	m.finishPrimitive("box")
}

// CreateSphere builds a latitude/longitude sphere. Ring 0 is the +Y pole
// and ring numRings the -Y pole; pole vertices are repeated per segment so
// each pole triangle gets its own texture coordinate. A pole triangle only
// touches the pole vertex of its own column, so the top ring has no closing
// column and the bottom ring no opening one.
func (m *Mesh) CreateSphere(radius float64, numRings, numSegments int) error {
	m.ClearMesh()
	m.meshType = TriMesh
	if numRings < 2 {
		return &InvalidTopologyError{Type: TriMesh, Count: numRings, Reason: "sphere needs at least 2 rings"}
	}
	if numSegments < 3 {
		return &InvalidTopologyError{Type: TriMesh, Count: numSegments, Reason: "sphere needs at least 3 segments"}
	}

	ids := make([][]VertexID, numRings+1)
	for r := range ids {
		ids[r] = make([]VertexID, numSegments+1)
		for s := 0; s <= numSegments; s++ {
			if (r == 0 && s == numSegments) || (r == numRings && s == 0) {
				continue
			}
			theta := math.Pi * float64(r) / float64(numRings)
			phi := 2 * math.Pi * float64(s) / float64(numSegments)
			dir := mgl64.Vec3{math.Sin(theta) * math.Cos(phi), math.Cos(theta), math.Sin(theta) * math.Sin(phi)}
			p := dir.Mul(radius)
			v := NewVertexUV(p.X(), p.Y(), p.Z(), float64(s)/float64(numSegments), float64(r)/float64(numRings))
			v.Normal = dir
			ids[r][s] = m.AddVertex(v)
		}
	}

	for r := 0; r < numRings; r++ {
		for s := 0; s < numSegments; s++ {
			a, b, c, d := ids[r][s], ids[r+1][s], ids[r+1][s+1], ids[r][s+1]
			// the pole rows collapse one of the two triangles
			if r != 0 {
				m.appendPolygon(NewPolygon(a, d, c))
			}
			if r != numRings-1 {
				m.appendPolygon(NewPolygon(a, c, b))
			}
		}
	}
	m.finishPrimitive("sphere")
	return nil
}

// CreateTorus builds a torus around the Y axis with the given ring radius
// and tube radius.
func (m *Mesh) CreateTorus(radius, tubeRadius float64, rSegments, tSegments int) error {
	m.ClearMesh()
	m.meshType = TriMesh
	if rSegments < 3 {
		return &InvalidTopologyError{Type: TriMesh, Count: rSegments, Reason: "torus needs at least 3 radial segments"}
	}
	if tSegments < 3 {
		return &InvalidTopologyError{Type: TriMesh, Count: tSegments, Reason: "torus needs at least 3 tube segments"}
	}

	ids := m.addGrid(rSegments, tSegments, func(i, j int) Vertex {
		u := 2 * math.Pi * float64(i) / float64(rSegments)
		v := 2 * math.Pi * float64(j) / float64(tSegments)
		ring := radius + tubeRadius*math.Cos(v)
		vtx := NewVertexUV(ring*math.Cos(u), tubeRadius*math.Sin(v), ring*math.Sin(u),
			float64(i)/float64(rSegments), float64(j)/float64(tSegments))
		vtx.Normal = mgl64.Vec3{math.Cos(v) * math.Cos(u), math.Sin(v), math.Cos(v) * math.Sin(u)}
		return vtx
	})

	for i := 0; i < rSegments; i++ {
		for j := 0; j < tSegments; j++ {
			a, b, c, d := ids[i][j], ids[i+1][j], ids[i+1][j+1], ids[i][j+1]
			m.appendPolygon(NewPolygon(a, d, c))
			m.appendPolygon(NewPolygon(a, c, b))
		}
	}
	m.finishPrimitive("torus")
	return nil
}

// CreateCylinder builds a cylinder along Y centred on the origin, with end
// caps when capped is set. Caps have their own vertices so the rim stays
// sharp.
func (m *Mesh) CreateCylinder(height, radius float64, numSegments int, capped bool) error {
	m.ClearMesh()
	m.meshType = TriMesh
	if numSegments < 3 {
		return &InvalidTopologyError{Type: TriMesh, Count: numSegments, Reason: "cylinder needs at least 3 segments"}
	}

	hh := height / 2
	ids := m.addGrid(1, numSegments, func(row, s int) Vertex {
		a := 2 * math.Pi * float64(s) / float64(numSegments)
		y := -hh + height*float64(row)
		v := NewVertexUV(radius*math.Cos(a), y, radius*math.Sin(a), float64(s)/float64(numSegments), float64(row))
		v.Normal = mgl64.Vec3{math.Cos(a), 0, math.Sin(a)}
		return v
	})
	for s := 0; s < numSegments; s++ {
		a, b, c, d := ids[0][s], ids[0][s+1], ids[1][s+1], ids[1][s]
		m.appendPolygon(NewPolygon(a, d, c))
		m.appendPolygon(NewPolygon(a, c, b))
	}

	if capped {
		m.addCap(hh, radius, numSegments, true)
		m.addCap(-hh, radius, numSegments, false)
	}
	m.finishPrimitive("cylinder")
	return nil
}

// CreateCone builds a cone along Y with its base at -height/2 and its apex
// at +height/2. The apex is split per segment so each side triangle carries
// its own apex normal.
func (m *Mesh) CreateCone(height, radius float64, numSegments int) error {
	m.ClearMesh()
	m.meshType = TriMesh
	if numSegments < 3 {
		return &InvalidTopologyError{Type: TriMesh, Count: numSegments, Reason: "cone needs at least 3 segments"}
	}

	hh := height / 2
	slant := func(a float64) mgl64.Vec3 {
		n := mgl64.Vec3{height * math.Cos(a), radius, height * math.Sin(a)}
		if n.Dot(n) <= degenerateEpsilon {
			return mgl64.Vec3{0, 1, 0}
		}
		return n.Normalize()
	}

	base := make([]VertexID, numSegments+1)
	for s := 0; s <= numSegments; s++ {
		a := 2 * math.Pi * float64(s) / float64(numSegments)
		v := NewVertexUV(radius*math.Cos(a), -hh, radius*math.Sin(a), float64(s)/float64(numSegments), 0)
		v.Normal = slant(a)
		base[s] = m.AddVertex(v)
	}
	for s := 0; s < numSegments; s++ {
		mid := (float64(s) + 0.5) / float64(numSegments)
		apex := NewVertexUV(0, hh, 0, mid, 1)
		apex.Normal = slant(2 * math.Pi * mid)
		m.appendPolygon(NewPolygon(base[s], m.AddVertex(apex), base[s+1]))
	}

	m.addCap(-hh, radius, numSegments, false)
	m.finishPrimitive("cone")
	return nil
}

// addQuad adds four fresh vertices sharing normal n and a quad over them.
func (m *Mesh) addQuad(n mgl64.Vec3, corners ...Vertex) {
	ids := make([]VertexID, len(corners))
	for i, v := range corners {
		v.Normal = n
		ids[i] = m.AddVertex(v)
	}
	m.appendPolygon(NewPolygon(ids...))
}

// addGrid adds (rows+1) x (cols+1) vertices produced by fn and returns their
// ids indexed [row][col].
func (m *Mesh) addGrid(rows, cols int, fn func(row, col int) Vertex) [][]VertexID {
	ids := make([][]VertexID, rows+1)
	for r := 0; r <= rows; r++ {
		ids[r] = make([]VertexID, cols+1)
		for c := 0; c <= cols; c++ {
			ids[r][c] = m.AddVertex(fn(r, c))
		}
	}
	return ids
}

// addCap adds a disc at height y made of a centre vertex and numSegments
// rim vertices, facing +Y when up is set and -Y otherwise.
func (m *Mesh) addCap(y, radius float64, numSegments int, up bool) {
	n := mgl64.Vec3{0, -1, 0}
	if up {
		n = mgl64.Vec3{0, 1, 0}
	}

	center := NewVertexUV(0, y, 0, 0.5, 0.5)
	center.Normal = n
	cid := m.AddVertex(center)

	rim := make([]VertexID, numSegments)
	for s := range rim {
		a := 2 * math.Pi * float64(s) / float64(numSegments)
		v := NewVertexUV(radius*math.Cos(a), y, radius*math.Sin(a), 0.5+0.5*math.Cos(a), 0.5+0.5*math.Sin(a))
		v.Normal = n
		rim[s] = m.AddVertex(v)
	}
	for s := range rim {
		next := rim[(s+1)%numSegments]
		if up {
			m.appendPolygon(NewPolygon(cid, next, rim[s]))
		} else {
			m.appendPolygon(NewPolygon(cid, rim[s], next))
		}
	}
}

func (m *Mesh) finishPrimitive(shape string) {
	m.CalculateTangents()
	slog.Debug("generated mesh", "shape", shape, "type", m.meshType, "polygons", m.PolygonCount(), "vertices", m.VertexCount())
}
