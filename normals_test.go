package polymesh

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addTriangle(t *testing.T, m *Mesh, a, b, c VertexID) {
	t.Helper()
	require.NoError(t, m.AddPolygon(NewPolygon(a, b, c)))
}

func TestFlatNormalOfTriangle(t *testing.T) {
	m := NewMesh(TriMesh)
	_, err := m.AddFace(NewVertex(0, 0, 0), NewVertex(1, 0, 0), NewVertex(0, 1, 0))
	require.NoError(t, err)

	m.CalculateNormals(false, 0)

	assertVecInDelta(t, mgl64.Vec3{0, 0, 1}, m.Polygon(0).Normal())
	for _, v := range m.PolygonVertices(0) {
		assertVecInDelta(t, mgl64.Vec3{0, 0, 1}, v.Normal)
	}
}

// Two triangles folded 90 degrees along the shared edge a-b: the first lies
// in the XY plane (+Z) and the second in the XZ plane (+Y).
func foldedPair(t *testing.T) (*Mesh, VertexID, VertexID) {
	m := NewMesh(TriMesh)
	a := m.AddVertex(NewVertex(0, 0, 0))
	b := m.AddVertex(NewVertex(1, 0, 0))
	c := m.AddVertex(NewVertex(0, 1, 0))
	d := m.AddVertex(NewVertex(0, 0, 1))
	addTriangle(t, m, a, b, c)
	addTriangle(t, m, b, a, d)
	return m, a, c
}

func TestFlatNormalsLastWriterWins(t *testing.T) {
	m, shared, onlyFirst := foldedPair(t)
	m.CalculateNormals(false, 0)

	assertVecInDelta(t, mgl64.Vec3{0, 0, 1}, m.Polygon(0).Normal())
	assertVecInDelta(t, mgl64.Vec3{0, 1, 0}, m.Polygon(1).Normal())

	v, _ := m.Vertex(shared)
	assertVecInDelta(t, mgl64.Vec3{0, 1, 0}, v.Normal)
	v, _ = m.Vertex(onlyFirst)
	assertVecInDelta(t, mgl64.Vec3{0, 0, 1}, v.Normal)
}

func TestSmoothNormalsRespectAngle(t *testing.T) {
	testCases := []struct {
		name  string
		angle float64
		want  mgl64.Vec3
	}{
		{"within angle", 91, mgl64.Vec3{0, 1, 1}.Normalize()},
		{"beyond angle", 45, mgl64.Vec3{0, 1, 0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m, shared, onlyFirst := foldedPair(t)
			m.CalculateNormals(true, tc.angle)

			v, _ := m.Vertex(shared)
			assertVecInDelta(t, tc.want, v.Normal)
			v, _ = m.Vertex(onlyFirst)
			assertVecInDelta(t, mgl64.Vec3{0, 0, 1}, v.Normal)
		})
	}
}

func TestSmoothNormalsOpposingFaces(t *testing.T) {
	m := NewMesh(TriMesh)
	a := m.AddVertex(NewVertex(0, 0, 0))
	b := m.AddVertex(NewVertex(1, 0, 0))
	c := m.AddVertex(NewVertex(0, 1, 0))
	addTriangle(t, m, a, b, c)
	addTriangle(t, m, a, c, b)

	m.CalculateNormals(true, 180)

	v, _ := m.Vertex(a)
	assertVecInDelta(t, mgl64.Vec3{0, 0, -1}, v.Normal)
}

func TestSmoothSphereNormalsPointOutward(t *testing.T) {
	m := NewMesh(TriMesh)
	require.NoError(t, m.CreateSphere(1, 10, 20))
	m.eachVertex(func(_ VertexID, v *Vertex) {
		v.Normal = mgl64.Vec3{}
	})

	m.CalculateNormals(true, 90)

	for _, id := range m.VertexIDs() {
		v, _ := m.Vertex(id)
		if len(m.ConnectedFaces(id)) == 0 {
			continue
		}
		assert.InDelta(t, 1, v.Normal.Len(), float64EqualityThreshold)
		assert.Greater(t, v.Normal.Dot(v.Position.Normalize()), 0.9, "vertex %d", id)
	}
}

func TestDegeneratePolygonIsSkipped(t *testing.T) {
	m := NewMesh(TriMesh)
	v := NewVertex(0, 0, 0)
	v.Normal = mgl64.Vec3{1, 0, 0}
	a := m.AddVertex(v)
	b := m.AddVertex(NewVertex(1, 0, 0))
	c := m.AddVertex(NewVertex(2, 0, 0))
	addTriangle(t, m, a, b, c)

	m.CalculateNormals(true, 180)

	got, _ := m.Vertex(a)
	assertVecInDelta(t, mgl64.Vec3{1, 0, 0}, got.Normal)
	assert.Equal(t, mgl64.Vec3{}, m.Polygon(0).Normal())

	errs := m.CheckGeometry()
	require.Len(t, errs, 1)
	var degenerate *DegenerateGeometryError
	require.ErrorAs(t, errs[0], &degenerate)
	assert.Equal(t, 0, degenerate.Polygon)
}

func TestNewellFallbackForCollinearFirstCorner(t *testing.T) {
	m := NewMesh(QuadMesh)
	// first three corners are collinear, the fourth gives the ring its area
	_, err := m.AddFace(NewVertex(0, 0, 0), NewVertex(1, 0, 0), NewVertex(2, 0, 0), NewVertex(1, 1, 0))
	require.NoError(t, err)

	assertVecInDelta(t, mgl64.Vec3{0, 0, 1}, m.Polygon(0).Normal())
}

func TestTangentsFollowTextureU(t *testing.T) {
	m := NewMesh(TriMesh)
	_, err := m.AddFace(
		NewVertexUV(0, 0, 0, 0, 0),
		NewVertexUV(0, 2, 0, 0, 1),
		NewVertexUV(-2, 0, 0, 1, 0),
	)
	require.NoError(t, err)

	m.CalculateTangents()

	for _, v := range m.PolygonVertices(0) {
		assertVecInDelta(t, mgl64.Vec3{-1, 0, 0}, v.Tangent)
	}
	assert.True(t, m.ArrayDirty(TangentArray))
}

func TestTangentsSkipZeroAreaMapping(t *testing.T) {
	m := NewMesh(TriMesh)
	prev := mgl64.Vec3{0, 0, 1}
	verts := []Vertex{NewVertex(0, 0, 0), NewVertex(1, 0, 0), NewVertex(0, 1, 0)}
	for i := range verts {
		verts[i].Tangent = prev
	}
	_, err := m.AddFace(verts...)
	require.NoError(t, err)

	m.CalculateTangents()

	for _, v := range m.PolygonVertices(0) {
		assert.Equal(t, prev, v.Tangent)
	}
}

func TestConnectedFaces(t *testing.T) {
	m := NewMesh(TriMesh)
	require.NoError(t, m.CreateSphere(1, 4, 8))

	// an equator vertex away from the seam touches six triangles
	id := VertexID(2*(8+1) + 3)
	faces := m.ConnectedFaces(id)
	assert.Len(t, faces, 6)
	assert.IsIncreasing(t, faces)
	for _, fi := range faces {
		assert.Contains(t, m.Polygon(fi).VertexIDs(), id)
	}
}

func TestAngleBetween(t *testing.T) {
	assert.InDelta(t, 90, angleBetween(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0}), 1e-9)
	assert.InDelta(t, 0, angleBetween(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{1, 0, 0}), 1e-9)
	assert.InDelta(t, 180, angleBetween(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{-1, 0, 0}), 1e-9)
	assert.False(t, math.IsNaN(angleBetween(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{1.0000001, 0, 0})))
}

func TestSmoothNormalsJoinSeams(t *testing.T) {
	m := NewMesh(TriMesh)
	require.NoError(t, m.CreateSphere(1, 8, 16))
	m.CalculateNormals(true, 180)

	byPosition := make(map[[3]int64][]mgl64.Vec3)
	m.eachVertex(func(id VertexID, v *Vertex) {
		// around an equator vertex the faces are symmetric about the radius,
		// on the texture seam as much as anywhere else
		if math.Abs(v.Position.Y()) < 1e-9 {
			assertVecInDelta(t, v.Position.Normalize(), v.Normal, "vertex %d", id)
		}
		key := quantize(v.Position, coincidentEpsilon)
		byPosition[key] = append(byPosition[key], v.Normal)
	})

	// both seam columns and every split pole vertex agree
	for _, normals := range byPosition {
		for _, n := range normals[1:] {
			assertVecInDelta(t, normals[0], n)
		}
	}
}

func TestSmoothNormalsAcrossSplitCorners(t *testing.T) {
	m := NewMesh(QuadMesh)
	m.CreateBox(2, 2, 2)

	m.CalculateNormals(true, 45)
	for i := 0; i < m.PolygonCount(); i++ {
		for _, v := range m.PolygonVertices(i) {
			assertVecInDelta(t, m.Polygon(i).Normal(), v.Normal)
		}
	}

	m.CalculateNormals(true, 180)
	for _, id := range m.VertexIDs() {
		v, _ := m.Vertex(id)
		assertVecInDelta(t, v.Position.Normalize(), v.Normal, "vertex %d", id)
	}
}

func TestLineMeshesHaveNoFaces(t *testing.T) {
	m := NewMesh(LineStripMesh)
	first := NewVertex(0, 0, 0)
	first.Normal = mgl64.Vec3{1, 0, 0}
	_, err := m.AddFace(first, NewVertex(1, 0, 0), NewVertex(2, 0, 0))
	require.NoError(t, err)
	_, err = m.AddFace(NewVertex(0, 0, 0), NewVertex(1, 0, 0), NewVertex(0, 1, 0))
	require.NoError(t, err)

	assert.Empty(t, m.CheckGeometry())

	m.CalculateNormals(false, 0)
	assert.Equal(t, mgl64.Vec3{}, m.Polygon(1).Normal())
	assertVecInDelta(t, mgl64.Vec3{1, 0, 0}, m.PolygonVertices(0)[0].Normal)
	assert.Equal(t, mgl64.Vec3{}, m.PolygonVertices(1)[2].Normal)

	_, _, ok := m.IntersectSegment(mgl64.Vec3{0.2, 0.2, 1}, mgl64.Vec3{0.2, 0.2, -1})
	assert.False(t, ok)
}
