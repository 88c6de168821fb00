package polymesh

import (
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// weldKey buckets a vertex by its quantized position and its exact
// remaining attributes, so that only vertices that would render the same
// can share a bucket.
type weldKey struct {
	cell     [3]int64
	normal   mgl64.Vec3
	tangent  mgl64.Vec3
	color    Color
	texCoord mgl64.Vec2
}

// WeldVertices merges live vertices whose positions lie within epsilon of
// each other (after snapping to an epsilon grid) and whose other attributes
// are identical. Polygons are remapped to the surviving vertex, which is
// the one with the lowest id, and the duplicates are released. It returns
// the number of vertices removed.
//
// With epsilon <= 0 positions must match exactly.
func (m *Mesh) WeldVertices(epsilon float64) int {
	index := make(map[weldKey]VertexID, m.liveVertices)
	remap := make(map[VertexID]VertexID)

	m.eachVertex(func(id VertexID, v *Vertex) {
		key := weldKey{
			cell:     quantize(v.Position, epsilon),
			normal:   v.Normal,
			tangent:  v.Tangent,
			color:    v.Color,
			texCoord: v.TexCoord,
		}
		if keep, found := index[key]; found {
			remap[id] = keep
			return
		}
		index[key] = id
	})
	if len(remap) == 0 {
		return 0
	}

	for _, p := range m.polygons {
		for i, id := range p.ids {
			if keep, ok := remap[id]; ok {
				p.ids[i] = keep
				m.slots[keep].refs++
				m.slots[id].refs--
			}
		}
	}
	for id := range remap {
		m.releaseVertex(id)
	}

	m.MarkArraysDirty()
	slog.Debug("welded vertices", "removed", len(remap), "vertices", m.liveVertices)
	return len(remap)
}

func quantize(p mgl64.Vec3, epsilon float64) [3]int64 {
	var cell [3]int64
	for i := range cell {
		if epsilon > 0 {
			cell[i] = int64(math.Round(p[i] / epsilon))
		} else {
			cell[i] = int64(math.Float64bits(p[i] + 0)) // folds -0 into +0
		}
	}
	return cell
}
