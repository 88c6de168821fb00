package polymesh

import "fmt"

// ArrayKind names a per-vertex attribute that can be flattened into a
// render array.
type ArrayKind int

const (
	PositionArray ArrayKind = iota
	ColorArray
	NormalArray
	TexCoordArray
	TangentArray
)

// ArrayKinds lists every kind in declaration order.
var ArrayKinds = []ArrayKind{PositionArray, ColorArray, NormalArray, TexCoordArray, TangentArray}

func (k ArrayKind) String() string {
	switch k {
	case PositionArray:
		return "position"
	case ColorArray:
		return "color"
	case NormalArray:
		return "normal"
	case TexCoordArray:
		return "texcoord"
	case TangentArray:
		return "tangent"
	}
	return fmt.Sprintf("ArrayKind(%d)", int(k))
}

// Stride is the number of float32 components per element.
func (k ArrayKind) Stride() int {
	switch k {
	case PositionArray, NormalArray, TangentArray:
		return 3
	case ColorArray:
		return 4
	case TexCoordArray:
		return 2
	}
	return 0
}

// RenderDataArray is one attribute of a mesh flattened into a contiguous
// float32 buffer, one element per polygon corner in polygon order.
//
// Data belongs to the Mesh. RendererData is an opaque slot for the consumer
// (an uploaded buffer handle, a converted copy); the Mesh never reads it, and
// a rebuilt array always starts with it nil.
type RenderDataArray struct {
	Kind   ArrayKind
	Stride int
	Count  int
	Data   []float32

	RendererData any
}

// Element returns the components of element i.
func (a *RenderDataArray) Element(i int) []float32 {
	return a.Data[i*a.Stride : (i+1)*a.Stride]
}

// buildRenderArray flattens every polygon corner of the mesh for one kind.
func (m *Mesh) buildRenderArray(kind ArrayKind) *RenderDataArray {
	stride := kind.Stride()
	arr := &RenderDataArray{
		Kind:   kind,
		Stride: stride,
		Count:  m.indexCount,
		Data:   make([]float32, 0, m.indexCount*stride),
	}

	for _, p := range m.polygons {
		for _, id := range p.ids {
			v := m.slots[id].vertex
			switch kind {
			case PositionArray:
				arr.Data = append(arr.Data, float32(v.Position[0]), float32(v.Position[1]), float32(v.Position[2]))
			case NormalArray:
				n := v.Normal
				if !m.vertexNormals {
					n = p.normal
				}
				arr.Data = append(arr.Data, float32(n[0]), float32(n[1]), float32(n[2]))
			case TangentArray:
				arr.Data = append(arr.Data, float32(v.Tangent[0]), float32(v.Tangent[1]), float32(v.Tangent[2]))
			case ColorArray:
				arr.Data = append(arr.Data, float32(v.Color.R), float32(v.Color.G), float32(v.Color.B), float32(v.Color.A))
			case TexCoordArray:
				arr.Data = append(arr.Data, float32(v.TexCoord[0]), float32(v.TexCoord[1]))
			}
		}
	}
	return arr
}

// RenderArray returns the flattened array for kind, rebuilding it first if
// its dirty flag is set. Without an intervening mutation the same instance is
// returned on every call.
func (m *Mesh) RenderArray(kind ArrayKind) *RenderDataArray {
	if kind.Stride() == 0 {
		return nil
	}
	if !m.dirty[kind] {
		if arr, ok := m.arrays[kind]; ok {
			return arr
		}
	}
	arr := m.buildRenderArray(kind)
	m.arrays[kind] = arr
	m.dirty[kind] = false
	m.rebuilds++
	return arr
}

// ArrayDirty reports whether the next RenderArray call for kind rebuilds.
func (m *Mesh) ArrayDirty(kind ArrayKind) bool {
	dirty, ok := m.dirty[kind]
	return !ok || dirty
}

// MarkArraysDirty flags the given kinds, or every kind when none are given.
func (m *Mesh) MarkArraysDirty(kinds ...ArrayKind) {
	if len(kinds) == 0 {
		kinds = ArrayKinds
	}
	for _, k := range kinds {
		m.dirty[k] = true
	}
}

// Rebuilds counts how many render arrays have been rebuilt over the mesh's
// lifetime.
func (m *Mesh) Rebuilds() int {
	return m.rebuilds
}
