package recipe

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smasonuk/polymesh"
)

const tomlRecipes = `
[[mesh]]
name = "ball"
shape = "sphere"
radius = 2
rings = 6
segments = 10
smooth = true
color = [1, 0, 0]
vertex_colors = true

[[mesh]]
name = "pipe"
shape = "cylinder"
height = 3
segments = 8
capped = true
output = "out/pipe.pmsh"
`

const yamlRecipes = `
mesh:
  - name: ball
    shape: sphere
    radius: 2
    rings: 6
    segments: 10
    smooth: true
    color: [1, 0, 0]
    vertex_colors: true
  - name: pipe
    shape: cylinder
    height: 3
    segments: 8
    capped: true
    output: out/pipe.pmsh
`

func TestDecodeFormats(t *testing.T) {
	testCases := []struct {
		format string
		src    string
	}{
		{"toml", tomlRecipes},
		{".toml", tomlRecipes},
		{"yaml", yamlRecipes},
		{".YML", yamlRecipes},
	}

	for _, tc := range testCases {
		t.Run(tc.format, func(t *testing.T) {
			f, err := Decode(strings.NewReader(tc.src), tc.format)
			require.NoError(t, err)
			require.Len(t, f.Meshes, 2)

			ball := f.Meshes[0]
			assert.Equal(t, "ball", ball.Name)
			assert.Equal(t, "sphere", ball.Shape)
			assert.Equal(t, 2.0, ball.Radius)
			assert.Equal(t, 6, ball.Rings)
			assert.True(t, ball.Smooth)
			assert.Equal(t, []float64{1, 0, 0}, ball.Color)
			assert.True(t, ball.VertexColors)

			pipe := f.Meshes[1]
			assert.True(t, pipe.Capped)
			assert.Equal(t, "out/pipe.pmsh", pipe.Output)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(strings.NewReader(tomlRecipes), "json")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Decode(strings.NewReader("[[mesh]]\nname = \"x\"\nsides = 4\n"), "toml")
	assert.Error(t, err)

	_, err = Decode(strings.NewReader("mesh:\n  - name: x\n    sides: 4\n"), "yaml")
	assert.Error(t, err)

	f, err := Decode(strings.NewReader(""), "yaml")
	require.NoError(t, err)
	assert.Empty(t, f.Meshes)
}

func TestSetDefaults(t *testing.T) {
	r := Recipe{Name: "thing", Radius: 3}
	r.SetDefaults()

	assert.Equal(t, 3.0, r.Radius)
	assert.Equal(t, 1.0, r.Width)
	assert.Equal(t, 0.25, r.TubeRadius)
	assert.Equal(t, 180.0, r.SmoothAngle)
	assert.Equal(t, 16, r.Rings)
	assert.Equal(t, 32, r.Segments)
	assert.Equal(t, "thing.pmsh", r.Output)
}

func TestBuildShapes(t *testing.T) {
	testCases := []struct {
		recipe   Recipe
		meshType polymesh.MeshType
		polygons int
	}{
		{Recipe{Shape: "plane"}, polymesh.QuadMesh, 1},
		{Recipe{Shape: "vplane"}, polymesh.QuadMesh, 1},
		{Recipe{Shape: "box"}, polymesh.QuadMesh, 6},
		{Recipe{Shape: "Cube"}, polymesh.QuadMesh, 6},
		{Recipe{Shape: "sphere", Rings: 4, Segments: 6}, polymesh.TriMesh, 2 * 6 * (4 - 1)},
		{Recipe{Shape: "torus", Segments: 5, TubeSegments: 4}, polymesh.TriMesh, 2 * 5 * 4},
		{Recipe{Shape: "cylinder", Segments: 6}, polymesh.TriMesh, 2 * 6},
		{Recipe{Shape: "cylinder", Segments: 6, Capped: true}, polymesh.TriMesh, 4 * 6},
	}

	for _, tc := range testCases {
		t.Run(tc.recipe.Shape, func(t *testing.T) {
			m, err := tc.recipe.Build()
			require.NoError(t, err)
			assert.Equal(t, tc.meshType, m.MeshType())
			assert.Equal(t, tc.polygons, m.PolygonCount())
		})
	}
}

func TestBuildOptions(t *testing.T) {
	r := Recipe{
		Name:         "box",
		Shape:        "box",
		Width:        2,
		Recenter:     true,
		Color:        []float64{0, 0.5, 1, 0.5},
		VertexColors: true,
	}
	m, err := r.Build()
	require.NoError(t, err)

	assert.True(t, m.UseVertexColors())
	v, ok := m.Vertex(m.VertexIDs()[0])
	require.True(t, ok)
	assert.Equal(t, polymesh.NewColor(0, 0.5, 1, 0.5), v.Color)
	assert.InDeltaSlice(t, []float64{1, 0.5, 0.5}, func() []float64 { e := m.CalculateBBox(); return e[:] }(), 1e-9)
	c := m.Centroid()
	assert.InDeltaSlice(t, []float64{0, 0, 0}, c[:], 1e-9)
}

func TestBuildFlatNormals(t *testing.T) {
	m, err := Recipe{Shape: "cone", Segments: 6, Smooth: true, Flat: true}.Build()
	require.NoError(t, err)

	// flat wins over smooth; the last polygon written owns its corners
	last := m.PolygonCount() - 1
	n := m.Polygon(last).Normal()
	for _, v := range m.PolygonVertices(last) {
		assert.True(t, v.Normal.ApproxEqualThreshold(n, 1e-9), "%v != %v", v.Normal, n)
	}
}

func TestBuildErrors(t *testing.T) {
	_, err := Recipe{Name: "blob", Shape: "blob"}.Build()
	assert.ErrorIs(t, err, ErrUnknownShape)

	_, err = Recipe{Shape: "sphere", Rings: 1}.Build()
	var topo *polymesh.InvalidTopologyError
	assert.ErrorAs(t, err, &topo)

	_, err = Recipe{Shape: "box", Color: []float64{1, 1}}.Build()
	assert.Error(t, err)
}

func TestOpenAndEncode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shapes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlRecipes), 0o644))

	f, err := Open(path)
	require.NoError(t, err)
	require.Len(t, f.Meshes, 2)

	var buf bytes.Buffer
	require.NoError(t, f.Encode(&buf))
	again, err := Decode(&buf, "toml")
	require.NoError(t, err)
	require.Len(t, again.Meshes, 2)
	assert.Equal(t, f.Meshes[0].Name, again.Meshes[0].Name)
	assert.Equal(t, f.Meshes[0].Color, again.Meshes[0].Color)
	assert.Equal(t, f.Meshes[1].Height, again.Meshes[1].Height)
	assert.Equal(t, f.Meshes[1].Capped, again.Meshes[1].Capped)

	_, err = Open(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
