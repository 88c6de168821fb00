package polymesh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMeshStartsDirty(t *testing.T) {
	m := NewMesh(TriMesh)
	for _, k := range ArrayKinds {
		assert.True(t, m.ArrayDirty(k), k.String())
	}
	assert.Zero(t, m.PolygonCount())
	assert.Zero(t, m.VertexCount())
	assert.True(t, m.VertexNormals())
	assert.False(t, m.HasVertexBuffer())
}

func TestAddPolygonRejectsWrongArity(t *testing.T) {
	m := NewMesh(TriMesh)
	ids := make([]VertexID, 5)
	for i := range ids {
		ids[i] = m.AddVertex(NewVertex(float64(i), 0, 0))
	}

	err := m.AddPolygon(NewPolygon(ids...))
	var topo *InvalidTopologyError
	require.ErrorAs(t, err, &topo)
	assert.Equal(t, TriMesh, topo.Type)
	assert.Equal(t, 5, topo.Count)
	assert.Zero(t, m.PolygonCount())
	assert.Zero(t, m.IndexCount())
}

func TestAddPolygonRejectsUnknownVertex(t *testing.T) {
	m := NewMesh(TriMesh)
	a := m.AddVertex(NewVertex(0, 0, 0))
	b := m.AddVertex(NewVertex(1, 0, 0))

	err := m.AddPolygon(NewPolygon(a, b, 7))
	assert.ErrorIs(t, err, ErrUnknownVertex)
	err = m.AddPolygon(NewPolygon(a, b, -1))
	assert.ErrorIs(t, err, ErrUnknownVertex)
}

func TestCheckArity(t *testing.T) {
	testCases := []struct {
		meshType MeshType
		n        int
		ok       bool
	}{
		{QuadMesh, 4, true},
		{QuadMesh, 3, false},
		{TriMesh, 3, true},
		{TriMesh, 4, false},
		{TriFanMesh, 1, true},
		{TriFanMesh, 0, false},
		{TriStripMesh, 7, true},
		{LineMesh, 2, true},
		{LineMesh, 6, true},
		{LineMesh, 3, false},
		{LineStripMesh, 5, true},
		{PointMesh, 1, true},
		{PointMesh, 0, false},
		{MeshType(42), 3, false},
	}

	for _, tc := range testCases {
		err := tc.meshType.CheckArity(tc.n)
		if tc.ok {
			assert.NoError(t, err, "%s with %d", tc.meshType, tc.n)
		} else {
			var topo *InvalidTopologyError
			assert.ErrorAs(t, err, &topo, "%s with %d", tc.meshType, tc.n)
		}
	}
}

func TestParseMeshType(t *testing.T) {
	for _, mt := range []MeshType{QuadMesh, TriMesh, TriFanMesh, TriStripMesh, LineMesh, PointMesh, LineStripMesh} {
		got, err := ParseMeshType(mt.String())
		require.NoError(t, err)
		assert.Equal(t, mt, got)
	}

	got, err := ParseMeshType("TRI_STRIP_MESH")
	require.NoError(t, err)
	assert.Equal(t, TriStripMesh, got)

	_, err = ParseMeshType("hexagon")
	assert.ErrorIs(t, err, ErrUnknownMeshType)
	assert.Equal(t, "MeshType(9)", MeshType(9).String())
}

func TestRemovePolygonReleasesVertices(t *testing.T) {
	m := NewMesh(QuadMesh)
	m.CreateBox(1, 1, 1)
	m.RenderArray(PositionArray)

	require.NoError(t, m.RemovePolygon(0))
	assert.Equal(t, 5, m.PolygonCount())
	assert.Equal(t, 20, m.VertexCount())
	assert.Equal(t, 20, m.IndexCount())
	assert.True(t, m.ArrayDirty(PositionArray))
	assert.Error(t, m.RemovePolygon(5))

	// released slots are reused
	id := m.AddVertex(NewVertex(9, 9, 9))
	assert.Less(t, int(id), 4)
	assert.Equal(t, 21, m.VertexCount())
	assert.Equal(t, 1, m.ReleaseOrphans())
	assert.Equal(t, 20, m.VertexCount())
}

func TestSharedVertexSurvivesRemoval(t *testing.T) {
	m := NewMesh(TriMesh)
	a := m.AddVertex(NewVertex(0, 0, 0))
	b := m.AddVertex(NewVertex(1, 0, 0))
	c := m.AddVertex(NewVertex(0, 1, 0))
	d := m.AddVertex(NewVertex(1, 1, 0))
	require.NoError(t, m.AddPolygon(NewPolygon(a, b, c)))
	require.NoError(t, m.AddPolygon(NewPolygon(b, d, c)))

	require.NoError(t, m.RemovePolygon(0))
	assert.Equal(t, 3, m.VertexCount())
	_, ok := m.Vertex(a)
	assert.False(t, ok)
	_, ok = m.Vertex(b)
	assert.True(t, ok)
}

func TestClearMesh(t *testing.T) {
	m := NewMesh(QuadMesh)
	m.CreateBox(1, 1, 1)
	vb := NewArrayVertexBuffer(m)
	m.SetVertexBuffer(vb)
	require.True(t, m.HasVertexBuffer())

	m.ClearMesh()
	assert.Zero(t, m.PolygonCount())
	assert.Zero(t, m.VertexCount())
	assert.Zero(t, m.IndexCount())
	assert.False(t, m.HasVertexBuffer())
	for _, k := range ArrayKinds {
		assert.True(t, m.ArrayDirty(k))
	}
	// the detached buffer is untouched
	assert.Equal(t, 24, vb.VertexCount())
	assert.Len(t, vb.Arrays[PositionArray], 24*3)
}

func TestSetMeshType(t *testing.T) {
	m := NewMesh(TriMesh)
	m.RenderArray(ColorArray)

	require.NoError(t, m.SetMeshType(TriFanMesh))
	assert.Equal(t, TriFanMesh, m.MeshType())
	assert.True(t, m.ArrayDirty(ColorArray))

	var topo *InvalidTopologyError
	assert.ErrorAs(t, m.SetMeshType(MeshType(-1)), &topo)
	assert.Equal(t, TriFanMesh, m.MeshType())
}

func TestRenderArrayCache(t *testing.T) {
	m := NewMesh(QuadMesh)
	m.CreateBox(1, 1, 1)

	pos := m.RenderArray(PositionArray)
	require.NotNil(t, pos)
	assert.Equal(t, 24, pos.Count)
	assert.Equal(t, 3, pos.Stride)
	assert.Len(t, pos.Data, 24*3)
	assert.False(t, m.ArrayDirty(PositionArray))

	pos.RendererData = "uploaded"
	assert.Same(t, pos, m.RenderArray(PositionArray))
	rebuilds := m.Rebuilds()

	colors := m.RenderArray(ColorArray)
	v := m.Polygon(0).VertexID(0)
	require.NoError(t, m.SetVertexPosition(v, mgl64.Vec3{2, 2, 2}))

	assert.True(t, m.ArrayDirty(PositionArray))
	assert.False(t, m.ArrayDirty(ColorArray))
	assert.Same(t, colors, m.RenderArray(ColorArray))

	rebuilt := m.RenderArray(PositionArray)
	assert.NotSame(t, pos, rebuilt)
	assert.Nil(t, rebuilt.RendererData)
	assert.Equal(t, []float32{2, 2, 2}, rebuilt.Element(0))
	assert.Equal(t, rebuilds+2, m.Rebuilds())
}

func TestRenderArrayFlattensCornersInOrder(t *testing.T) {
	m := NewMesh(TriMesh)
	a := m.AddVertex(NewVertexUV(0, 0, 0, 0, 0))
	b := m.AddVertex(NewVertexUV(1, 0, 0, 1, 0))
	c := m.AddVertex(NewVertexUV(0, 1, 0, 0, 1))
	d := m.AddVertex(NewVertexUV(1, 1, 0, 1, 1))
	require.NoError(t, m.AddPolygon(NewPolygon(a, b, c)))
	require.NoError(t, m.AddPolygon(NewPolygon(b, d, c)))
	require.NoError(t, m.SetVertexColor(d, NewColor(1, 0, 0, 0.5)))

	pos := m.RenderArray(PositionArray)
	assert.Equal(t, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, pos.Data)

	uv := m.RenderArray(TexCoordArray)
	assert.Equal(t, 6, uv.Count)
	assert.Equal(t, []float32{1, 1}, uv.Element(4))

	col := m.RenderArray(ColorArray)
	assert.Equal(t, []float32{1, 0, 0, 0.5}, col.Element(4))
	assert.Equal(t, []float32{1, 1, 1, 1}, col.Element(0))
}

func TestFaceNormalArray(t *testing.T) {
	m := NewMesh(QuadMesh)
	m.CreatePlane(1, 1)
	require.NoError(t, m.SetVertex(m.Polygon(0).VertexID(0), Vertex{Normal: mgl64.Vec3{1, 0, 0}, Color: White}))

	n := m.RenderArray(NormalArray)
	assert.Equal(t, []float32{1, 0, 0}, n.Element(0))

	m.UseVertexNormals(false)
	assert.True(t, m.ArrayDirty(NormalArray))
	n = m.RenderArray(NormalArray)
	for i := 0; i < n.Count; i++ {
		assert.Equal(t, []float32{0, 1, 0}, n.Element(i))
	}
}

func TestSettersMarkOnlyTheirArray(t *testing.T) {
	m := NewMesh(QuadMesh)
	m.CreatePlane(1, 1)
	id := m.Polygon(0).VertexID(2)
	build := func() {
		for _, k := range ArrayKinds {
			m.RenderArray(k)
		}
	}

	build()
	require.NoError(t, m.SetVertexTexCoord(id, mgl64.Vec2{0.5, 0.5}))
	assert.True(t, m.ArrayDirty(TexCoordArray))
	assert.False(t, m.ArrayDirty(PositionArray))

	build()
	m.SetAllVertexColors(Black)
	assert.True(t, m.ArrayDirty(ColorArray))
	assert.False(t, m.ArrayDirty(NormalArray))

	build()
	m.MarkArraysDirty(TangentArray, NormalArray)
	assert.True(t, m.ArrayDirty(TangentArray))
	assert.True(t, m.ArrayDirty(NormalArray))
	assert.False(t, m.ArrayDirty(ColorArray))

	assert.ErrorIs(t, m.SetVertexColor(99, White), ErrUnknownVertex)
	assert.ErrorIs(t, m.SetVertexPosition(99, mgl64.Vec3{}), ErrUnknownVertex)
}

func TestBoundingBoxOfUnitCube(t *testing.T) {
	m := NewMesh(QuadMesh)
	m.CreateBox(1, 1, 1)

	assertVecInDelta(t, mgl64.Vec3{0.5, 0.5, 0.5}, m.CalculateBBox())
	assertVecInDelta(t, mgl64.Vec3{1, 1, 1}, m.Extents())
	assert.InDelta(t, mgl64.Vec3{0.5, 0.5, 0.5}.Len(), m.Radius(), float64EqualityThreshold)
}

func TestBoundingBoxOfEmptyMesh(t *testing.T) {
	m := NewMesh(TriMesh)
	assert.Equal(t, mgl64.Vec3{}, m.CalculateBBox())
	assert.Zero(t, m.Radius())
	assert.Equal(t, mgl64.Vec3{}, m.Centroid())
}

func TestRecenterMesh(t *testing.T) {
	m := NewMesh(TriMesh)
	require.NoError(t, m.CreateCone(2, 1, 8))
	m.Translate(mgl64.Vec3{3, -2, 5})
	want := m.Centroid()
	m.RenderArray(PositionArray)

	got := m.RecenterMesh()
	assertVecInDelta(t, want, got)
	assert.True(t, m.ArrayDirty(PositionArray))

	var sum mgl64.Vec3
	for _, id := range m.VertexIDs() {
		v, _ := m.Vertex(id)
		sum = sum.Add(v.Position)
	}
	assertVecInDelta(t, mgl64.Vec3{}, sum)
}

func TestScale(t *testing.T) {
	m := NewMesh(QuadMesh)
	m.CreateBox(1, 1, 1)
	m.Scale(4)
	assertVecInDelta(t, mgl64.Vec3{2, 2, 2}, m.CalculateBBox())
}

func TestPolygonCenter(t *testing.T) {
	m := NewMesh(QuadMesh)
	m.CreateVPlane(2, 2)
	m.Translate(mgl64.Vec3{0, 0, 3})
	assertVecInDelta(t, mgl64.Vec3{0, 0, 3}, m.PolygonCenter(0))
}

func TestMovingAVertexRefreshesFaceNormals(t *testing.T) {
	tests := []struct {
		name string
		move func(m *Mesh, id VertexID) error
	}{
		{"position", func(m *Mesh, id VertexID) error {
			return m.SetVertexPosition(id, mgl64.Vec3{0, 0, 1})
		}},
		{"whole vertex", func(m *Mesh, id VertexID) error {
			return m.SetVertex(id, NewVertex(0, 0, 1))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMesh(TriMesh)
			a := m.AddVertex(NewVertex(0, 0, 0))
			b := m.AddVertex(NewVertex(1, 0, 0))
			c := m.AddVertex(NewVertex(0, 1, 0))
			require.NoError(t, m.AddPolygon(NewPolygon(a, b, c)))
			m.UseVertexNormals(false)
			assertVecInDelta(t, mgl64.Vec3{0, 0, 1}, m.Polygon(0).Normal())

			before := m.RenderArray(NormalArray)
			require.NoError(t, tt.move(m, c))

			assertVecInDelta(t, mgl64.Vec3{0, -1, 0}, m.Polygon(0).Normal())
			assert.True(t, m.ArrayDirty(NormalArray))
			after := m.RenderArray(NormalArray)
			assert.NotSame(t, before, after)
			assert.Equal(t, []float32{0, -1, 0}, after.Element(0))
		})
	}
}
