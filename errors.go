package polymesh

import (
	"errors"
	"fmt"
)

var (
	ErrBadMagic           = errors.New("not a polymesh file")
	ErrUnsupportedVersion = errors.New("unsupported mesh file version")
	ErrUnknownMeshType    = errors.New("unknown mesh type")
	ErrNegativeCount      = errors.New("negative element count")
	ErrIndexOutOfRange    = errors.New("vertex index out of range")
	ErrUnknownVertex      = errors.New("unknown vertex id")
)

// LoadError is returned when a mesh file is missing, malformed or uses an
// unsupported format. The mesh being loaded into is left unchanged.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load mesh: %v", e.Err)
	}
	return fmt.Sprintf("load mesh %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// InvalidTopologyError reports a polygon or generator parameter that does
// not fit the mesh type.
type InvalidTopologyError struct {
	Type   MeshType
	Count  int
	Reason string
}

func (e *InvalidTopologyError) Error() string {
	return fmt.Sprintf("invalid %s topology (%d): %s", e.Type, e.Count, e.Reason)
}

// DegenerateGeometryError marks a polygon with no usable area. Normal and
// tangent computation skip such polygons instead of failing, so the mesh
// stays renderable; the error is only surfaced by CheckGeometry.
type DegenerateGeometryError struct {
	Polygon int
}

func (e *DegenerateGeometryError) Error() string {
	return fmt.Sprintf("polygon %d is degenerate", e.Polygon)
}
