// Package recipe describes meshes declaratively so they can be generated
// from TOML or YAML files instead of code.
package recipe

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/smasonuk/polymesh"
)

var (
	ErrUnknownShape  = errors.New("unknown shape")
	ErrUnknownFormat = errors.New("unknown recipe format")
)

// File is a recipe document: a list of meshes to build.
type File struct {
	Meshes []Recipe `toml:"mesh" yaml:"mesh"`
}

// Recipe is one generated mesh. Zero dimensions and counts take the
// defaults listed on each field.
type Recipe struct {

	// name of the mesh, also the default output file name
	Name string `toml:"name" yaml:"name"`

	// plane, vplane, box, sphere, torus, cylinder or cone
	Shape string `toml:"shape" yaml:"shape"`

	// [def: 1] size along X for planes and boxes
	Width float64 `toml:"width" yaml:"width"`

	// [def: 1] size along Y (Z for plane), or cylinder and cone height
	Height float64 `toml:"height" yaml:"height"`

	// [def: 1] box size along Z
	Depth float64 `toml:"depth" yaml:"depth"`

	// [def: 1] sphere, cylinder and cone radius, torus ring radius
	Radius float64 `toml:"radius" yaml:"radius"`

	// [def: 0.25] torus tube radius
	TubeRadius float64 `toml:"tube_radius" yaml:"tube_radius"`

	// [def: 16] sphere rings
	Rings int `toml:"rings" yaml:"rings"`

	// [def: 32] segments around the Y axis
	Segments int `toml:"segments" yaml:"segments"`

	// [def: 16] torus segments around the tube
	TubeSegments int `toml:"tube_segments" yaml:"tube_segments"`

	// close cylinder ends
	Capped bool `toml:"capped" yaml:"capped"`

	// recompute smooth vertex normals after generation
	Smooth bool `toml:"smooth" yaml:"smooth"`

	// recompute flat vertex normals after generation; wins over Smooth
	Flat bool `toml:"flat" yaml:"flat"`

	// [def: 180] largest angle in degrees between faces that are smoothed together
	SmoothAngle float64 `toml:"smooth_angle" yaml:"smooth_angle"`

	// move the average vertex position to the origin
	Recenter bool `toml:"recenter" yaml:"recenter"`

	// RGB or RGBA in [0,1] painted on every vertex
	Color []float64 `toml:"color" yaml:"color"`

	// ask renderers to use the vertex colors
	VertexColors bool `toml:"vertex_colors" yaml:"vertex_colors"`

	// output path, defaults to Name + ".pmsh"
	Output string `toml:"output" yaml:"output"`
}

// Open reads a recipe file, choosing the decoder from the extension.
func Open(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open recipe %s: %w", path, err)
	}
	f, err := Decode(bytes.NewReader(data), filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("error parsing recipe %s: %w", path, err)
	}
	return f, nil
}

// Decode reads a recipe document in the given format: "toml", "yaml" or
// "yml", with or without a leading dot.
func Decode(r io.Reader, format string) (*File, error) {
	f := &File{}
	switch strings.TrimPrefix(strings.ToLower(format), ".") {
	case "toml":
		dec := toml.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(f); err != nil {
			return nil, err
		}
	case "yaml", "yml":
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(f); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%q: %w", format, ErrUnknownFormat)
	}
	return f, nil
}

// Encode writes f as TOML.
func (f *File) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(f)
}

// SetDefaults fills every zero dimension and count with its default.
func (r *Recipe) SetDefaults() {
	def := func(v *float64, d float64) {
		if *v == 0 {
			*v = d
		}
	}
	defInt := func(v *int, d int) {
		if *v == 0 {
			*v = d
		}
	}
	def(&r.Width, 1)
	def(&r.Height, 1)
	def(&r.Depth, 1)
	def(&r.Radius, 1)
	def(&r.TubeRadius, 0.25)
	def(&r.SmoothAngle, 180)
	defInt(&r.Rings, 16)
	defInt(&r.Segments, 32)
	defInt(&r.TubeSegments, 16)
	if r.Output == "" && r.Name != "" {
		r.Output = r.Name + ".pmsh"
	}
}

// Build generates the mesh described by r, with defaults applied.
func (r Recipe) Build() (*polymesh.Mesh, error) {
	r.SetDefaults()
	m := polymesh.NewMesh(polymesh.TriMesh)

	var err error
	switch strings.ToLower(r.Shape) {
	case "plane":
		m.CreatePlane(r.Width, r.Height)
	case "vplane":
		m.CreateVPlane(r.Width, r.Height)
	case "box", "cube":
		m.CreateBox(r.Width, r.Depth, r.Height)
	case "sphere":
		err = m.CreateSphere(r.Radius, r.Rings, r.Segments)
	case "torus":
		err = m.CreateTorus(r.Radius, r.TubeRadius, r.Segments, r.TubeSegments)
	case "cylinder":
		err = m.CreateCylinder(r.Height, r.Radius, r.Segments, r.Capped)
	case "cone":
		err = m.CreateCone(r.Height, r.Radius, r.Segments)
	default:
		return nil, fmt.Errorf("mesh %q: %q: %w", r.Name, r.Shape, ErrUnknownShape)
	}
	if err != nil {
		return nil, fmt.Errorf("mesh %q: %w", r.Name, err)
	}

	switch {
	case r.Flat:
		m.CalculateNormals(false, 0)
	case r.Smooth:
		m.CalculateNormals(true, r.SmoothAngle)
	}
	if r.Recenter {
		m.RecenterMesh()
	}
	if len(r.Color) > 0 {
		c, err := parseColor(r.Color)
		if err != nil {
			return nil, fmt.Errorf("mesh %q: %w", r.Name, err)
		}
		m.SetAllVertexColors(c)
	}
	m.SetUseVertexColors(r.VertexColors)
	return m, nil
}

func parseColor(c []float64) (polymesh.Color, error) {
	switch len(c) {
	case 3:
		return polymesh.NewColor(c[0], c[1], c[2], 1), nil
	case 4:
		return polymesh.NewColor(c[0], c[1], c[2], c[3]), nil
	}
	return polymesh.Color{}, fmt.Errorf("color needs 3 or 4 components, got %d", len(c))
}
