package polymesh

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

var ErrPLYFormat = errors.New("unsupported ply format")

type plyHeader struct {
	vertexCount int
	faceCount   int
	props       map[string]int // vertex property name -> column
	numProps    int
	faceProps   int // scalar properties trailing the face index list
	lines       int // lines consumed up to and including end_header
}

// ImportPLY reads an ASCII PLY stream. Recognised vertex properties are x y
// z, nx ny nz, red green blue alpha (uchar) and s t or u v; anything else is
// skipped. When every face is a quad the result is a QUAD mesh, otherwise
// faces are fan triangulated into a TRI mesh, and a file without faces
// becomes a single POINT polygon. Missing normals are computed with smooth
// shading.
func ImportPLY(r io.Reader) (*Mesh, error) {
	scanner := bufio.NewScanner(r)

	hdr, err := readPLYHeader(scanner)
	if err != nil {
		return nil, err
	}

	m := NewMesh(TriMesh)
	col := func(parts []string, name string) (float64, bool, error) {
		i, ok := hdr.props[name]
		if !ok {
			return 0, false, nil
		}
		f, err := strconv.ParseFloat(parts[i], 64)
		return f, true, err
	}

	line := hdr.lines
	next := func(what string) ([]string, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("error reading from PLY source: %w", err)
			}
			return nil, fmt.Errorf("%w: unexpected end of file after line %d while reading %s", ErrPLYFormat, line, what)
		}
		line++
		return strings.Fields(scanner.Text()), nil
	}

	_, hasNormals := hdr.props["nx"]
	_, hasColor := hdr.props["red"]
	ids := make([]VertexID, 0, hdr.vertexCount)
	for i := 0; i < hdr.vertexCount; i++ {
		parts, err := next("vertices")
		if err != nil {
			return nil, err
		}
		if len(parts) < hdr.numProps {
			return nil, fmt.Errorf("%w: vertex %d on line %d has %d of %d properties", ErrPLYFormat, i, line, len(parts), hdr.numProps)
		}

		v := NewVertex(0, 0, 0)
		var vals [12]float64
		names := [...]string{"x", "y", "z", "nx", "ny", "nz", "red", "green", "blue", "alpha", "s", "t"}
		for k, name := range names {
			f, ok, err := col(parts, name)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid %s on line %d: %w", ErrPLYFormat, name, line, err)
			}
			if !ok {
				switch name {
				case "alpha":
					f = 255
				case "s":
					f, _, err = col(parts, "u")
				case "t":
					f, _, err = col(parts, "v")
				}
				if err != nil {
					return nil, fmt.Errorf("%w: invalid %s on line %d: %w", ErrPLYFormat, name, line, err)
				}
			}
			vals[k] = f
		}
		v.Position = mgl64.Vec3{vals[0], vals[1], vals[2]}
		v.Normal = mgl64.Vec3{vals[3], vals[4], vals[5]}
		if hasColor {
			v.Color = Color{R: vals[6] / 255, G: vals[7] / 255, B: vals[8] / 255, A: vals[9] / 255}
		}
		v.TexCoord = mgl64.Vec2{vals[10], vals[11]}
		ids = append(ids, m.AddVertex(v))
	}

	faces := make([][]VertexID, 0, hdr.faceCount)
	allQuads := hdr.faceCount > 0
	for i := 0; i < hdr.faceCount; i++ {
		parts, err := next("faces")
		if err != nil {
			return nil, err
		}
		if len(parts) == 0 {
			return nil, fmt.Errorf("%w: face %d on line %d is empty", ErrPLYFormat, i, line)
		}
		n, err := strconv.Atoi(parts[0])
		if err != nil || n < 3 || len(parts) < n+1+hdr.faceProps {
			return nil, fmt.Errorf("%w: invalid face %d on line %d", ErrPLYFormat, i, line)
		}
		face := make([]VertexID, n)
		for j := range face {
			idx, err := strconv.Atoi(parts[j+1])
			if err != nil {
				return nil, fmt.Errorf("%w: face %d corner %d on line %d: %w", ErrPLYFormat, i, j, line, err)
			}
			if idx < 0 || idx >= len(ids) {
				return nil, fmt.Errorf("%w: face %d corner %d on line %d: %w", ErrPLYFormat, i, j, line, ErrIndexOutOfRange)
			}
			face[j] = ids[idx]
		}
		allQuads = allQuads && n == 4
		faces = append(faces, face)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from PLY source: %w", err)
	}

	switch {
	case len(faces) == 0 && len(ids) > 0:
		// a bare point cloud
		m.meshType = PointMesh
		m.appendPolygon(NewPolygon(ids...))
	case allQuads:
		m.meshType = QuadMesh
	}
	for _, face := range faces {
		if allQuads {
			m.appendPolygon(NewPolygon(face...))
			continue
		}
		for k := 1; k+1 < len(face); k++ {
			m.appendPolygon(NewPolygon(face[0], face[k], face[k+1]))
		}
	}
	m.ReleaseOrphans()

	if m.meshType != PointMesh {
		if !hasNormals {
			m.CalculateNormals(true, 180)
		}
		m.CalculateTangents()
	}
	slog.Debug("imported ply", "type", m.meshType, "polygons", m.PolygonCount(), "vertices", m.VertexCount())
	return m, nil
}

func readPLYHeader(scanner *bufio.Scanner) (*plyHeader, error) {
	hdr := &plyHeader{props: make(map[string]int)}
	if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != "ply" {
		return nil, fmt.Errorf("missing ply magic: %w", ErrPLYFormat)
	}
	hdr.lines = 1

	var currentElement string
	for scanner.Scan() {
		hdr.lines++
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "format":
			if len(parts) < 2 || parts[1] != "ascii" {
				return nil, fmt.Errorf("format %q: %w", strings.Join(parts[1:], " "), ErrPLYFormat)
			}
		case "element":
			if len(parts) != 3 {
				return nil, fmt.Errorf("bad element line %q: %w", scanner.Text(), ErrPLYFormat)
			}
			currentElement = parts[1]
			n, err := strconv.Atoi(parts[2])
			if err != nil || n < 0 {
				return nil, fmt.Errorf("bad element count %q: %w", parts[2], ErrPLYFormat)
			}
			switch currentElement {
			case "vertex":
				hdr.vertexCount = n
			case "face":
				hdr.faceCount = n
			}
		case "property":
			switch currentElement {
			case "vertex":
				if len(parts) < 3 {
					return nil, fmt.Errorf("bad property line %q: %w", scanner.Text(), ErrPLYFormat)
				}
				hdr.props[parts[len(parts)-1]] = hdr.numProps
				hdr.numProps++
			case "face":
				if len(parts) > 1 && parts[1] != "list" {
					hdr.faceProps++
				}
			}
		case "end_header":
			return hdr, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from PLY source: %w", err)
	}
	return nil, fmt.Errorf("missing end_header: %w", ErrPLYFormat)
}

// ExportPLY writes the mesh as ASCII PLY with positions, normals, 8-bit
// colors and texture coordinates. Line and point polygons are skipped.
func (m *Mesh) ExportPLY(w io.Writer) error {
	writer := bufio.NewWriter(w)

	ids := m.VertexIDs()
	index := make(map[VertexID]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}
	faces := make([]*Polygon, 0, len(m.polygons))
	for _, p := range m.polygons {
		if m.meshType.HasFaces() && len(p.ids) >= 3 {
			faces = append(faces, p)
		}
	}

	_, _ = fmt.Fprintln(writer, "ply")
	_, _ = fmt.Fprintln(writer, "format ascii 1.0")
	_, _ = fmt.Fprintf(writer, "comment %s mesh\n", m.meshType)
	_, _ = fmt.Fprintf(writer, "element vertex %d\n", len(ids))
	for _, prop := range []string{"float x", "float y", "float z", "float nx", "float ny", "float nz",
		"uchar red", "uchar green", "uchar blue", "uchar alpha", "float s", "float t"} {
		_, _ = fmt.Fprintf(writer, "property %s\n", prop)
	}
	_, _ = fmt.Fprintf(writer, "element face %d\n", len(faces))
	_, _ = fmt.Fprintln(writer, "property list uchar int vertex_indices")
	_, _ = fmt.Fprintln(writer, "end_header")

	for _, id := range ids {
		v := m.slots[id].vertex
		c := v.Color.NRGBA()
		_, _ = fmt.Fprintf(writer, "%g %g %g %g %g %g %d %d %d %d %g %g\n",
			v.Position[0], v.Position[1], v.Position[2],
			v.Normal[0], v.Normal[1], v.Normal[2],
			c.R, c.G, c.B, c.A,
			v.TexCoord[0], v.TexCoord[1])
	}

	for _, p := range faces {
		_, _ = fmt.Fprintf(writer, "%d", len(p.ids))
		for _, id := range p.ids {
			_, _ = fmt.Fprintf(writer, " %d", index[id])
		}
		_, _ = fmt.Fprintln(writer)
	}

	return writer.Flush()
}
