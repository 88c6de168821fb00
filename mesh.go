package polymesh

import (
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

type vertexSlot struct {
	vertex Vertex
	refs   int
	live   bool
}

// Mesh is an ordered collection of polygons over a shared vertex arena,
// together with the lazily rebuilt render arrays derived from them.
//
// Every method that changes geometry flags the render arrays it affects
// before returning, so RenderArray never serves stale data. A Mesh is not
// safe for concurrent use.
type Mesh struct {
	meshType MeshType

	slots        []vertexSlot
	free         []VertexID
	liveVertices int

	polygons   []*Polygon
	indexCount int

	arrays   map[ArrayKind]*RenderDataArray
	dirty    map[ArrayKind]bool
	rebuilds int

	vertexBuffer    VertexBuffer
	vertexNormals   bool
	useVertexColors bool
}

// NewMesh returns an empty mesh of the given topology. Every render array
// starts out dirty.
func NewMesh(t MeshType) *Mesh {
	m := &Mesh{
		meshType:      t,
		arrays:        make(map[ArrayKind]*RenderDataArray),
		dirty:         make(map[ArrayKind]bool),
		vertexNormals: true,
	}
	m.MarkArraysDirty()
	return m
}

// ClearMesh releases every polygon and vertex and drops the render arrays.
// An installed vertex buffer is detached but otherwise left alone.
func (m *Mesh) ClearMesh() {
	m.slots = nil
	m.free = nil
	m.liveVertices = 0
	m.polygons = nil
	m.indexCount = 0
	m.arrays = make(map[ArrayKind]*RenderDataArray)
	m.vertexBuffer = nil
	m.MarkArraysDirty()
}

func (m *Mesh) MeshType() MeshType {
	return m.meshType
}

// SetMeshType changes how the polygons are interpreted without touching
// them. Existing polygons are not revalidated.
func (m *Mesh) SetMeshType(t MeshType) error {
	if !t.Valid() {
		return &InvalidTopologyError{Type: t, Reason: "unknown mesh type"}
	}
	m.meshType = t
	m.MarkArraysDirty()
	return nil
}

// AddVertex stores v in the vertex arena and returns its id. The vertex is
// not part of the mesh surface until a polygon references it.
func (m *Mesh) AddVertex(v Vertex) VertexID {
	m.liveVertices++
	if n := len(m.free); n > 0 {
		id := m.free[n-1]
		m.free = m.free[:n-1]
		m.slots[id] = vertexSlot{vertex: v, live: true}
		return id
	}
	m.slots = append(m.slots, vertexSlot{vertex: v, live: true})
	return VertexID(len(m.slots) - 1)
}

func (m *Mesh) validID(id VertexID) bool {
	return id >= 0 && int(id) < len(m.slots) && m.slots[id].live
}

// AddPolygon appends p after checking its arity against the mesh type and
// that every vertex id is live.
func (m *Mesh) AddPolygon(p *Polygon) error {
	if err := m.meshType.CheckArity(len(p.ids)); err != nil {
		return err
	}
	for _, id := range p.ids {
		if !m.validID(id) {
			return fmt.Errorf("polygon references vertex %d: %w", id, ErrUnknownVertex)
		}
	}
	m.appendPolygon(p)
	return nil
}

// appendPolygon adds an already validated polygon.
func (m *Mesh) appendPolygon(p *Polygon) {
	for _, id := range p.ids {
		m.slots[id].refs++
	}
	p.normal, _ = m.polygonNormal(p)
	m.polygons = append(m.polygons, p)
	m.indexCount += len(p.ids)
	m.MarkArraysDirty()
}

// AddFace adds one new vertex per entry and a polygon over them.
func (m *Mesh) AddFace(vertices ...Vertex) (*Polygon, error) {
	if err := m.meshType.CheckArity(len(vertices)); err != nil {
		return nil, err
	}
	ids := make([]VertexID, len(vertices))
	for i, v := range vertices {
		ids[i] = m.AddVertex(v)
	}
	p := NewPolygon(ids...)
	return p, m.AddPolygon(p)
}

// RemovePolygon removes polygon i and releases the vertices no other polygon
// references.
func (m *Mesh) RemovePolygon(i int) error {
	if i < 0 || i >= len(m.polygons) {
		return fmt.Errorf("polygon %d out of range [0,%d)", i, len(m.polygons))
	}
	p := m.polygons[i]
	m.polygons = append(m.polygons[:i], m.polygons[i+1:]...)
	m.indexCount -= len(p.ids)
	for _, id := range p.ids {
		m.slots[id].refs--
		if m.slots[id].refs == 0 {
			m.releaseVertex(id)
		}
	}
	m.MarkArraysDirty()
	return nil
}

// ReleaseOrphans drops every live vertex that no polygon references and
// returns how many were released.
func (m *Mesh) ReleaseOrphans() int {
	n := 0
	for id := range m.slots {
		if m.slots[id].live && m.slots[id].refs == 0 {
			m.releaseVertex(VertexID(id))
			n++
		}
	}
	return n
}

func (m *Mesh) releaseVertex(id VertexID) {
	m.slots[id] = vertexSlot{}
	m.free = append(m.free, id)
	m.liveVertices--
}

func (m *Mesh) PolygonCount() int {
	return len(m.polygons)
}

// VertexCount is the number of live vertices in the arena. Shared vertices
// count once.
func (m *Mesh) VertexCount() int {
	return m.liveVertices
}

// IndexCount is the total number of polygon corners, which is also the
// element count of every render array.
func (m *Mesh) IndexCount() int {
	return m.indexCount
}

func (m *Mesh) Polygon(i int) *Polygon {
	return m.polygons[i]
}

// Vertex returns a copy of the vertex with the given id.
func (m *Mesh) Vertex(id VertexID) (Vertex, bool) {
	if !m.validID(id) {
		return Vertex{}, false
	}
	return m.slots[id].vertex, true
}

// VertexIDs returns the live vertex ids in ascending order.
func (m *Mesh) VertexIDs() []VertexID {
	ids := make([]VertexID, 0, m.liveVertices)
	for id := range m.slots {
		if m.slots[id].live {
			ids = append(ids, VertexID(id))
		}
	}
	return ids
}

// PolygonVertices returns copies of the vertices of polygon i in ring order.
func (m *Mesh) PolygonVertices(i int) []Vertex {
	p := m.polygons[i]
	out := make([]Vertex, len(p.ids))
	for j, id := range p.ids {
		out[j] = m.slots[id].vertex
	}
	return out
}

// PolygonCenter returns the average corner position of polygon i.
func (m *Mesh) PolygonCenter(i int) mgl64.Vec3 {
	return midpoint(m.positions(m.polygons[i].ids))
}

func (m *Mesh) positions(ids []VertexID) []mgl64.Vec3 {
	pts := make([]mgl64.Vec3, len(ids))
	for i, id := range ids {
		pts[i] = m.slots[id].vertex.Position
	}
	return pts
}

// eachVertex calls fn for every live vertex in id order.
func (m *Mesh) eachVertex(fn func(id VertexID, v *Vertex)) {
	for id := range m.slots {
		if m.slots[id].live {
			fn(VertexID(id), &m.slots[id].vertex)
		}
	}
}

// SetVertex replaces every attribute of a vertex.
func (m *Mesh) SetVertex(id VertexID, v Vertex) error {
	if !m.validID(id) {
		return fmt.Errorf("set vertex %d: %w", id, ErrUnknownVertex)
	}
	m.slots[id].vertex = v
	m.refreshFaceNormals(id)
	m.MarkArraysDirty()
	return nil
}

// SetVertexPosition moves a vertex. The face normals of the polygons using
// it are recomputed; vertex normals wait for CalculateNormals.
func (m *Mesh) SetVertexPosition(id VertexID, pos mgl64.Vec3) error {
	if !m.validID(id) {
		return fmt.Errorf("set vertex %d: %w", id, ErrUnknownVertex)
	}
	m.slots[id].vertex.Position = pos
	m.refreshFaceNormals(id)
	m.MarkArraysDirty(PositionArray, NormalArray)
	return nil
}

// refreshFaceNormals recomputes the face normal of every polygon using id.
func (m *Mesh) refreshFaceNormals(id VertexID) {
	for _, p := range m.polygons {
		if slices.Contains(p.ids, id) {
			p.normal, _ = m.polygonNormal(p)
		}
	}
}

func (m *Mesh) SetVertexColor(id VertexID, c Color) error {
	if !m.validID(id) {
		return fmt.Errorf("set vertex %d: %w", id, ErrUnknownVertex)
	}
	m.slots[id].vertex.Color = c
	m.MarkArraysDirty(ColorArray)
	return nil
}

func (m *Mesh) SetVertexTexCoord(id VertexID, uv mgl64.Vec2) error {
	if !m.validID(id) {
		return fmt.Errorf("set vertex %d: %w", id, ErrUnknownVertex)
	}
	m.slots[id].vertex.TexCoord = uv
	m.MarkArraysDirty(TexCoordArray)
	return nil
}

// SetAllVertexColors paints every vertex with c.
func (m *Mesh) SetAllVertexColors(c Color) {
	m.eachVertex(func(_ VertexID, v *Vertex) {
		v.Color = c
	})
	m.MarkArraysDirty(ColorArray)
}

// UseVertexNormals selects whether the normal array carries per-vertex
// normals (true, the default) or each polygon's face normal.
func (m *Mesh) UseVertexNormals(val bool) {
	if m.vertexNormals != val {
		m.vertexNormals = val
		m.MarkArraysDirty(NormalArray)
	}
}

func (m *Mesh) VertexNormals() bool {
	return m.vertexNormals
}

// SetUseVertexColors tells renderers to take color from the color array
// instead of their own material color.
func (m *Mesh) SetUseVertexColors(val bool) {
	m.useVertexColors = val
}

func (m *Mesh) UseVertexColors() bool {
	return m.useVertexColors
}
