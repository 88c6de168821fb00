package polymesh

import (
	"fmt"
	"strings"
)

// MeshType is the topology interpretation of a mesh's polygons. The numeric
// values are the tags stored in mesh files.
type MeshType int

const (
	QuadMesh MeshType = iota
	TriMesh
	TriFanMesh
	TriStripMesh
	LineMesh
	PointMesh
	LineStripMesh
)

var meshTypeNames = [...]string{
	QuadMesh:      "quad",
	TriMesh:       "tri",
	TriFanMesh:    "trifan",
	TriStripMesh:  "tristrip",
	LineMesh:      "line",
	PointMesh:     "point",
	LineStripMesh: "linestrip",
}

func (t MeshType) Valid() bool {
	return t >= QuadMesh && t <= LineStripMesh
}

func (t MeshType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("MeshType(%d)", int(t))
	}
	return meshTypeNames[t]
}

// ParseMeshType accepts the lower case names returned by String, with or
// without a "_mesh" suffix.
func ParseMeshType(s string) (MeshType, error) {
	name := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "_mesh")
	name = strings.ReplaceAll(name, "_", "")
	for i, n := range meshTypeNames {
		if n == name {
			return MeshType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown mesh type %q: %w", s, ErrUnknownMeshType)
}

// VerticesPerFace is the fixed face arity of the type, or 0 when faces are
// variable length.
func (t MeshType) VerticesPerFace() int {
	switch t {
	case QuadMesh:
		return 4
	case TriMesh:
		return 3
	case LineMesh:
		return 2
	case PointMesh:
		return 1
	}
	return 0
}

// HasFaces reports whether polygons of the type enclose area. Lines and
// points never have a face normal.
func (t MeshType) HasFaces() bool {
	switch t {
	case QuadMesh, TriMesh, TriFanMesh, TriStripMesh:
		return true
	}
	return false
}

// CheckArity reports whether a polygon with n vertices is acceptable for the
// mesh type. Fans and strips reuse earlier vertices so any non-empty polygon
// is allowed; line meshes take vertex pairs.
func (t MeshType) CheckArity(n int) error {
	ok := false
	switch t {
	case QuadMesh:
		ok = n == 4
	case TriMesh:
		ok = n == 3
	case TriFanMesh, TriStripMesh, LineStripMesh, PointMesh:
		ok = n >= 1
	case LineMesh:
		ok = n >= 2 && n%2 == 0
	default:
		return &InvalidTopologyError{Type: t, Count: n, Reason: "unknown mesh type"}
	}
	if !ok {
		return &InvalidTopologyError{Type: t, Count: n, Reason: "vertex count does not match face arity"}
	}
	return nil
}
