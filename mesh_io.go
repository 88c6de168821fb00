package polymesh

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hack-pad/hackpadfs"
)

const (
	fileMagic   = "PMSH"
	fileVersion = 1

	flagVertexNormals = 1 << 0
	flagVertexColors  = 1 << 1
)

// fileHeader is the fixed little-endian header at the start of a mesh file.
type fileHeader struct {
	Magic        [4]byte
	Version      uint32
	MeshType     int32
	Flags        uint32
	PolygonCount int32
	VertexCount  int32
}

type fileVertex struct {
	Position [3]float32
	Normal   [3]float32
	Tangent  [3]float32
	Color    [4]float32
	TexCoord [2]float32
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// WriteTo encodes the mesh in the binary mesh format. Live vertices are
// written in ascending id order and polygons refer to them by their position
// in that table.
func (m *Mesh) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)

	ids := m.VertexIDs()
	index := make(map[VertexID]int32, len(ids))
	for i, id := range ids {
		index[id] = int32(i)
	}

	hdr := fileHeader{
		Version:      fileVersion,
		MeshType:     int32(m.meshType),
		PolygonCount: int32(len(m.polygons)),
		VertexCount:  int32(len(ids)),
	}
	copy(hdr.Magic[:], fileMagic)
	if m.vertexNormals {
		hdr.Flags |= flagVertexNormals
	}
	if m.useVertexColors {
		hdr.Flags |= flagVertexColors
	}
	if err := binary.Write(bw, binary.LittleEndian, hdr); err != nil {
		return cw.n, fmt.Errorf("write header: %w", err)
	}

	for _, id := range ids {
		if err := binary.Write(bw, binary.LittleEndian, toFileVertex(m.slots[id].vertex)); err != nil {
			return cw.n, fmt.Errorf("write vertex %d: %w", id, err)
		}
	}

	for i, p := range m.polygons {
		row := make([]int32, len(p.ids)+1)
		row[0] = int32(len(p.ids))
		for j, id := range p.ids {
			row[j+1] = index[id]
		}
		if err := binary.Write(bw, binary.LittleEndian, row); err != nil {
			return cw.n, fmt.Errorf("write polygon %d: %w", i, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// ReadFrom replaces the mesh with one decoded from r. On any failure the
// error is a *LoadError and the mesh is left exactly as it was.
func (m *Mesh) ReadFrom(r io.Reader) (int64, error) {
	cr := &countingReader{r: r}
	scratch, err := decodeMesh(bufio.NewReader(cr))
	if err != nil {
		return cr.n, &LoadError{Err: err}
	}
	m.replaceWith(scratch)
	return cr.n, nil
}

func decodeMesh(r io.Reader) (*Mesh, error) {
	var hdr fileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if string(hdr.Magic[:]) != fileMagic {
		return nil, ErrBadMagic
	}
	if hdr.Version != fileVersion {
		return nil, fmt.Errorf("version %d: %w", hdr.Version, ErrUnsupportedVersion)
	}
	t := MeshType(hdr.MeshType)
	if !t.Valid() {
		return nil, fmt.Errorf("type tag %d: %w", hdr.MeshType, ErrUnknownMeshType)
	}
	if hdr.PolygonCount < 0 || hdr.VertexCount < 0 {
		return nil, fmt.Errorf("%d polygons, %d vertices: %w", hdr.PolygonCount, hdr.VertexCount, ErrNegativeCount)
	}

	scratch := NewMesh(t)
	scratch.vertexNormals = hdr.Flags&flagVertexNormals != 0
	scratch.useVertexColors = hdr.Flags&flagVertexColors != 0

	for i := int32(0); i < hdr.VertexCount; i++ {
		var fv fileVertex
		if err := binary.Read(r, binary.LittleEndian, &fv); err != nil {
			return nil, fmt.Errorf("read vertex %d: %w", i, err)
		}
		scratch.AddVertex(fv.vertex())
	}

	for i := int32(0); i < hdr.PolygonCount; i++ {
		var n int32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("read polygon %d: %w", i, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("polygon %d has %d vertices: %w", i, n, ErrNegativeCount)
		}
		if err := t.CheckArity(int(n)); err != nil {
			return nil, fmt.Errorf("polygon %d: %w", i, err)
		}
		// n comes from the file, so grow as corners arrive instead of trusting it
		ids := make([]VertexID, 0, min(int(n), 64))
		for j := int32(0); j < n; j++ {
			var v int32
			if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
				return nil, fmt.Errorf("read polygon %d: %w", i, err)
			}
			if v < 0 || v >= hdr.VertexCount {
				return nil, fmt.Errorf("polygon %d corner %d is %d: %w", i, j, v, ErrIndexOutOfRange)
			}
			ids = append(ids, VertexID(v))
		}
		scratch.appendPolygon(NewPolygon(ids...))
	}
	return scratch, nil
}

// replaceWith moves the contents of src into m. An installed vertex buffer
// is detached, as ClearMesh does.
func (m *Mesh) replaceWith(src *Mesh) {
	rebuilds := m.rebuilds
	*m = *src
	m.rebuilds = rebuilds
	m.MarkArraysDirty()
}

// SaveFile writes the mesh to path, creating or truncating it.
func (m *Mesh) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create mesh file %s: %w", path, err)
	}
	defer f.Close()

	if _, err := m.WriteTo(f); err != nil {
		return fmt.Errorf("error writing mesh file %s: %w", path, err)
	}
	slog.Debug("saved mesh", "path", path, "polygons", m.PolygonCount(), "vertices", m.VertexCount())
	return f.Close()
}

// LoadFile replaces the mesh with the contents of path.
func (m *Mesh) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &LoadError{Path: path, Err: err}
	}
	defer f.Close()
	return m.loadNamed(path, f)
}

// LoadMesh reads a new mesh from path.
func LoadMesh(path string) (*Mesh, error) {
	m := NewMesh(TriMesh)
	if err := m.LoadFile(path); err != nil {
		return nil, err
	}
	return m, nil
}

// SaveFS writes the mesh to name inside fsys.
func (m *Mesh) SaveFS(fsys hackpadfs.FS, name string) error {
	f, err := hackpadfs.OpenFile(fsys, name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("could not create mesh file %s: %w", name, err)
	}
	defer f.Close()

	n, err := m.WriteTo(&fileWriter{f: f})
	if err != nil {
		return fmt.Errorf("error writing mesh file %s: %w", name, err)
	}
	slog.Debug("saved mesh", "path", name, "bytes", n)
	return f.Close()
}

// LoadFS replaces the mesh with the contents of name inside fsys.
func (m *Mesh) LoadFS(fsys hackpadfs.FS, name string) error {
	f, err := fsys.Open(name)
	if err != nil {
		return &LoadError{Path: name, Err: err}
	}
	defer f.Close()
	return m.loadNamed(name, f)
}

func (m *Mesh) loadNamed(path string, r io.Reader) error {
	scratch, err := decodeMesh(bufio.NewReader(r))
	if err != nil {
		return &LoadError{Path: path, Err: err}
	}
	m.replaceWith(scratch)
	slog.Debug("loaded mesh", "path", path, "type", m.meshType, "polygons", m.PolygonCount(), "vertices", m.VertexCount())
	return nil
}

// fileWriter adapts a hackpadfs file to io.Writer.
type fileWriter struct {
	f hackpadfs.File
}

func (w *fileWriter) Write(p []byte) (int, error) {
	return hackpadfs.WriteFile(w.f, p)
}

func toFileVertex(v Vertex) fileVertex {
	return fileVertex{
		Position: vec3f(v.Position),
		Normal:   vec3f(v.Normal),
		Tangent:  vec3f(v.Tangent),
		Color:    [4]float32{float32(v.Color.R), float32(v.Color.G), float32(v.Color.B), float32(v.Color.A)},
		TexCoord: [2]float32{float32(v.TexCoord[0]), float32(v.TexCoord[1])},
	}
}

func (fv fileVertex) vertex() Vertex {
	return Vertex{
		Position: vec3d(fv.Position),
		Normal:   vec3d(fv.Normal),
		Tangent:  vec3d(fv.Tangent),
		Color:    Color{R: float64(fv.Color[0]), G: float64(fv.Color[1]), B: float64(fv.Color[2]), A: float64(fv.Color[3])},
		TexCoord: mgl64.Vec2{float64(fv.TexCoord[0]), float64(fv.TexCoord[1])},
	}
}

func vec3f(v mgl64.Vec3) [3]float32 {
	return [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}
}

func vec3d(v [3]float32) mgl64.Vec3 {
	return mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}
