package polymesh

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// DXF support covers the 3DFACE entity only. A face has four corners and a
// triangle repeats its third corner as the fourth.

var ErrDXFFormat = errors.New("malformed DXF")

type dxfFace struct {
	corners [4]mgl64.Vec3
	seen    [4][3]bool
}

// finish returns the corners of the face, three for a triangle.
func (f *dxfFace) finish() ([]mgl64.Vec3, error) {
	for c := 0; c < 3; c++ {
		if !f.seen[c][0] || !f.seen[c][1] || !f.seen[c][2] {
			return nil, fmt.Errorf("%w: 3DFACE corner %d is incomplete", ErrDXFFormat, c+1)
		}
	}
	if !f.seen[3][0] || f.corners[3] == f.corners[2] {
		return []mgl64.Vec3{f.corners[0], f.corners[1], f.corners[2]}, nil
	}
	return f.corners[:], nil
}

// ImportDXF reads the 3DFACE entities of an ASCII DXF file. Every face gets
// its own vertices and a flat normal. The result is a QUAD mesh when every
// face has four corners; otherwise quads are split and it is a TRI mesh.
func ImportDXF(r io.Reader) (*Mesh, error) {
	scanner := bufio.NewScanner(r)
	var (
		faces   [][]mgl64.Vec3
		current *dxfFace
		line    int
	)

	flush := func() error {
		if current == nil {
			return nil
		}
		pts, err := current.finish()
		if err != nil {
			return err
		}
		faces = append(faces, pts)
		current = nil
		return nil
	}

	for scanner.Scan() {
		line++
		codeText := strings.TrimSpace(scanner.Text())
		if !scanner.Scan() {
			return nil, fmt.Errorf("%w: group code %q on line %d has no value", ErrDXFFormat, codeText, line)
		}
		line++
		value := strings.TrimSpace(scanner.Text())

		code, err := strconv.Atoi(codeText)
		if err != nil {
			return nil, fmt.Errorf("%w: bad group code %q on line %d", ErrDXFFormat, codeText, line-1)
		}

		if code == 0 {
			if err := flush(); err != nil {
				return nil, err
			}
			if value == "3DFACE" {
				current = &dxfFace{}
			}
			continue
		}
		if current == nil || code < 10 || code > 33 || code%10 > 3 {
			continue
		}

		axis, corner := code/10-1, code%10
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: could not parse coordinate %q on line %d", ErrDXFFormat, value, line)
		}
		current.corners[corner][axis] = v
		current.seen[corner][axis] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading DXF source: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	allQuads := len(faces) > 0
	for _, f := range faces {
		allQuads = allQuads && len(f) == 4
	}

	kind := TriMesh
	if allQuads {
		kind = QuadMesh
	}
	m := NewMesh(kind)
	add := func(pts ...mgl64.Vec3) {
		vs := make([]Vertex, len(pts))
		for i, p := range pts {
			vs[i] = NewVertex(p.X(), p.Y(), p.Z())
		}
		// arity matches the mesh type by construction
		_, _ = m.AddFace(vs...)
	}
	for _, f := range faces {
		if allQuads || len(f) == 3 {
			add(f...)
			continue
		}
		add(f[0], f[1], f[2])
		add(f[0], f[2], f[3])
	}

	m.CalculateNormals(false, 0)
	m.CalculateTangents()
	return m, nil
}

// ExportDXF writes every polygon with at least three corners as 3DFACE
// entities. Polygons with more than four corners are fan triangulated; line
// and point meshes produce an empty ENTITIES section.
func (m *Mesh) ExportDXF(w io.Writer) error {
	bw := bufio.NewWriter(w)
	writePair := func(code int, value any) {
		fmt.Fprintf(bw, "%d\n%v\n", code, value)
	}
	writeFace := func(pts ...mgl64.Vec3) {
		writePair(0, "3DFACE")
		writePair(8, "0")
		if len(pts) == 3 {
			pts = append(pts, pts[2])
		}
		for c, p := range pts {
			writePair(10+c, p.X())
			writePair(20+c, p.Y())
			writePair(30+c, p.Z())
		}
	}

	writePair(0, "SECTION")
	writePair(2, "HEADER")
	writePair(0, "ENDSEC")
	writePair(0, "SECTION")
	writePair(2, "ENTITIES")

	for _, p := range m.polygons {
		pts := m.positions(p.ids)
		switch {
		case !m.meshType.HasFaces() || len(pts) < 3:
			continue
		case len(pts) <= 4:
			writeFace(pts...)
		default:
			for k := 1; k+1 < len(pts); k++ {
				writeFace(pts[0], pts[k], pts[k+1])
			}
		}
	}

	writePair(0, "ENDSEC")
	writePair(0, "EOF")
	return bw.Flush()
}
