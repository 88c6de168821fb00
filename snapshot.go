package polymesh

import (
	"fmt"

	"github.com/jinzhu/copier"
)

// Snapshot is a plain, exported copy of a mesh's topology and flags. It
// keeps vertex ids, so ids taken from the source mesh stay valid in a mesh
// rebuilt from it.
type Snapshot struct {
	Type            MeshType
	Vertices        []SnapshotVertex
	Polygons        [][]VertexID
	VertexNormals   bool
	UseVertexColors bool
}

type SnapshotVertex struct {
	ID     VertexID
	Vertex Vertex
}

// Snapshot returns a copy of the mesh that shares no memory with it.
func (m *Mesh) Snapshot() (*Snapshot, error) {
	view := Snapshot{
		Type:            m.meshType,
		Vertices:        make([]SnapshotVertex, 0, m.liveVertices),
		Polygons:        make([][]VertexID, len(m.polygons)),
		VertexNormals:   m.vertexNormals,
		UseVertexColors: m.useVertexColors,
	}
	m.eachVertex(func(id VertexID, v *Vertex) {
		view.Vertices = append(view.Vertices, SnapshotVertex{ID: id, Vertex: *v})
	})
	for i, p := range m.polygons {
		view.Polygons[i] = p.ids
	}

	// view still aliases the polygon id slices
	out := &Snapshot{}
	if err := copier.CopyWithOption(out, &view, copier.Option{CaseSensitive: true, DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("snapshot mesh: %w", err)
	}
	return out, nil
}

// FromSnapshot builds a mesh from s. Every polygon is validated as by
// AddPolygon.
func FromSnapshot(s *Snapshot) (*Mesh, error) {
	if !s.Type.Valid() {
		return nil, &InvalidTopologyError{Type: s.Type, Reason: "unknown mesh type"}
	}
	m := NewMesh(s.Type)
	m.vertexNormals = s.VertexNormals
	m.useVertexColors = s.UseVertexColors

	size := 0
	for _, sv := range s.Vertices {
		if sv.ID < 0 {
			return nil, fmt.Errorf("snapshot vertex %d: %w", sv.ID, ErrUnknownVertex)
		}
		size = max(size, int(sv.ID)+1)
	}
	m.slots = make([]vertexSlot, size)
	for _, sv := range s.Vertices {
		if m.slots[sv.ID].live {
			return nil, fmt.Errorf("snapshot lists vertex %d twice", sv.ID)
		}
		m.slots[sv.ID] = vertexSlot{vertex: sv.Vertex, live: true}
		m.liveVertices++
	}
	for id := len(m.slots) - 1; id >= 0; id-- {
		if !m.slots[id].live {
			m.free = append(m.free, VertexID(id))
		}
	}

	for i, ids := range s.Polygons {
		if err := m.AddPolygon(NewPolygon(ids...)); err != nil {
			return nil, fmt.Errorf("snapshot polygon %d: %w", i, err)
		}
	}
	return m, nil
}

// Clone returns a deep copy of the mesh with the same vertex ids. Render
// arrays and any installed vertex buffer are not carried over.
func (m *Mesh) Clone() (*Mesh, error) {
	s, err := m.Snapshot()
	if err != nil {
		return nil, err
	}
	return FromSnapshot(s)
}
