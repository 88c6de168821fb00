package polymesh

// VertexBuffer is pre-flattened vertex data supplied from outside the mesh,
// e.g. streamed or skinned geometry. A mesh with a buffer installed is
// buffer-backed: renderers should draw the buffer rather than the arrays
// flattened from the polygons. The mesh only references the buffer; whoever
// installed it owns it.
type VertexBuffer interface {
	VertexCount() int
	VerticesPerFace() int
	MeshType() MeshType
}

// ArrayVertexBuffer is a VertexBuffer holding a fixed set of flattened
// arrays.
type ArrayVertexBuffer struct {
	meshType MeshType
	count    int
	Arrays   map[ArrayKind][]float32
}

// NewArrayVertexBuffer snapshots every render array of m. Later edits to m
// do not affect the buffer.
func NewArrayVertexBuffer(m *Mesh) *ArrayVertexBuffer {
	vb := &ArrayVertexBuffer{
		meshType: m.meshType,
		count:    m.indexCount,
		Arrays:   make(map[ArrayKind][]float32, len(ArrayKinds)),
	}
	for _, k := range ArrayKinds {
		arr := m.RenderArray(k)
		data := make([]float32, len(arr.Data))
		copy(data, arr.Data)
		vb.Arrays[k] = data
	}
	return vb
}

func (vb *ArrayVertexBuffer) VertexCount() int {
	return vb.count
}

func (vb *ArrayVertexBuffer) VerticesPerFace() int {
	return vb.meshType.VerticesPerFace()
}

func (vb *ArrayVertexBuffer) MeshType() MeshType {
	return vb.meshType
}

// SetVertexBuffer installs buf, making the mesh buffer-backed. Passing nil
// detaches the current buffer.
func (m *Mesh) SetVertexBuffer(buf VertexBuffer) {
	m.vertexBuffer = buf
}

func (m *Mesh) VertexBuffer() VertexBuffer {
	return m.vertexBuffer
}

func (m *Mesh) HasVertexBuffer() bool {
	return m.vertexBuffer != nil
}
