package polymesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// CalculateBBox returns the largest absolute coordinate along each axis,
// i.e. the half extents of the smallest origin centred box holding every
// vertex.
func (m *Mesh) CalculateBBox() mgl64.Vec3 {
	var ext mgl64.Vec3
	m.eachVertex(func(_ VertexID, v *Vertex) {
		for i := 0; i < 3; i++ {
			ext[i] = math.Max(ext[i], math.Abs(v.Position[i]))
		}
	})
	return ext
}

// Radius returns the distance from the origin to the furthest vertex.
func (m *Mesh) Radius() float64 {
	r := 0.0
	m.eachVertex(func(_ VertexID, v *Vertex) {
		r = math.Max(r, v.Position.Len())
	})
	return r
}

// Bounds returns the axis aligned min and max corners. Both are zero for an
// empty mesh.
func (m *Mesh) Bounds() (min, max mgl64.Vec3) {
	first := true
	m.eachVertex(func(_ VertexID, v *Vertex) {
		if first {
			min, max = v.Position, v.Position
			first = false
			return
		}
		for i := 0; i < 3; i++ {
			min[i] = math.Min(min[i], v.Position[i])
			max[i] = math.Max(max[i], v.Position[i])
		}
	})
	return min, max
}

// Extents returns the size of the mesh along each axis.
func (m *Mesh) Extents() mgl64.Vec3 {
	min, max := m.Bounds()
	return max.Sub(min)
}

// Centroid returns the average position of the live vertices.
func (m *Mesh) Centroid() mgl64.Vec3 {
	if m.liveVertices == 0 {
		return mgl64.Vec3{}
	}
	var sum mgl64.Vec3
	m.eachVertex(func(_ VertexID, v *Vertex) {
		sum = sum.Add(v.Position)
	})
	return sum.Mul(1 / float64(m.liveVertices))
}

// RecenterMesh moves the mesh so the average vertex position is the origin
// and returns the offset that was subtracted, so callers can move whatever
// was positioned relative to the old origin.
func (m *Mesh) RecenterMesh() mgl64.Vec3 {
	c := m.Centroid()
	m.Translate(c.Mul(-1))
	return c
}

// Translate moves every vertex by offset.
func (m *Mesh) Translate(offset mgl64.Vec3) {
	m.eachVertex(func(_ VertexID, v *Vertex) {
		v.Position = v.Position.Add(offset)
	})
	m.MarkArraysDirty(PositionArray)
}

// Scale multiplies every position by f. Normals and tangents are left as
// they are, so f is expected to be positive.
func (m *Mesh) Scale(f float64) {
	m.eachVertex(func(_ VertexID, v *Vertex) {
		v.Position = v.Position.Mul(f)
	})
	m.MarkArraysDirty(PositionArray)
}
