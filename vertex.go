package polymesh

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// VertexID addresses a vertex slot in a Mesh. IDs stay valid for as long as
// some polygon references the vertex; released slots are reused.
type VertexID int

// Vertex is a single mesh point with all of its per-vertex attributes.
type Vertex struct {
	Position mgl64.Vec3
	Normal   mgl64.Vec3
	Tangent  mgl64.Vec3
	Color    Color
	TexCoord mgl64.Vec2
}

func NewVertex(x, y, z float64) Vertex {
	return Vertex{
		Position: mgl64.Vec3{x, y, z},
		Color:    White,
	}
}

func NewVertexUV(x, y, z, u, v float64) Vertex {
	vtx := NewVertex(x, y, z)
	vtx.TexCoord = mgl64.Vec2{u, v}
	return vtx
}

// DistanceTo returns the distance between the two vertex positions.
func (v Vertex) DistanceTo(other Vertex) float64 {
	return v.Position.Sub(other.Position).Len()
}

// Color is a linear RGBA color with components in [0,1].
type Color struct {
	R, G, B, A float64
}

var (
	White = Color{1, 1, 1, 1}
	Black = Color{0, 0, 0, 1}
)

func NewColor(r, g, b, a float64) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// ColorFromRGBA converts an 8-bit color, un-premultiplying alpha.
func ColorFromRGBA(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{
		R: float64(n.R) / 255.0,
		G: float64(n.G) / 255.0,
		B: float64(n.B) / 255.0,
		A: float64(n.A) / 255.0,
	}
}

// NRGBA converts to an 8-bit non-premultiplied color, clamping out of range
// components.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: to8(c.R),
		G: to8(c.G),
		B: to8(c.B),
		A: to8(c.A),
	}
}

func (c Color) Vec4() mgl64.Vec4 {
	return mgl64.Vec4{c.R, c.G, c.B, c.A}
}

func to8(f float64) uint8 {
	return uint8(math.Round(mgl64.Clamp(f, 0, 1) * 255))
}
