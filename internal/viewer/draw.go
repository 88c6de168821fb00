package viewer

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/smasonuk/polymesh/preview"
)

var (
	whiteImage = ebiten.NewImage(3, 3)
	whiteSub   *ebiten.Image
)

func init() {
	whiteImage.Fill(color.White)
	whiteSub = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
}

func colorScale(clr color.RGBA) (r, g, b, a float32) {
	return float32(clr.R) / 255, float32(clr.G) / 255, float32(clr.B) / 255, float32(clr.A) / 255
}

// fillConvexPolygon fans the polygon into triangles from its first corner.
func fillConvexPolygon(screen *ebiten.Image, pts []preview.Point, clr color.RGBA) {
	if len(pts) < 3 {
		return
	}

	indices := make([]uint16, 0, (len(pts)-2)*3)
	for i := 2; i < len(pts); i++ {
		indices = append(indices, 0, uint16(i-1), uint16(i))
	}

	cr, cg, cb, ca := colorScale(clr)
	vertices := make([]ebiten.Vertex, len(pts))
	for i, p := range pts {
		vertices[i] = ebiten.Vertex{
			DstX:   p.X,
			DstY:   p.Y,
			SrcX:   1,
			SrcY:   1,
			ColorR: cr,
			ColorG: cg,
			ColorB: cb,
			ColorA: ca,
		}
	}

	screen.DrawTriangles(vertices, indices, whiteSub, &ebiten.DrawTrianglesOptions{AntiAlias: true})
}

func drawPolygonOutline(screen *ebiten.Image, pts []preview.Point, strokeWidth float32, clr color.RGBA) {
	if len(pts) < 2 {
		return
	}

	var path vector.Path
	path.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		path.LineTo(p.X, p.Y)
	}
	path.Close()

	vertices, indices := path.AppendVerticesAndIndicesForStroke(nil, nil, &vector.StrokeOptions{Width: strokeWidth})

	// SrcX/SrcY pick the solid white pixel
	cr, cg, cb, ca := colorScale(clr)
	for i := range vertices {
		vertices[i].ColorR = cr
		vertices[i].ColorG = cg
		vertices[i].ColorB = cb
		vertices[i].ColorA = ca
		vertices[i].SrcX = 1
		vertices[i].SrcY = 1
	}

	screen.DrawTriangles(vertices, indices, whiteSub, &ebiten.DrawTrianglesOptions{AntiAlias: true})
}
