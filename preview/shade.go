package preview

import (
	"image/color"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl64"
)

// Lighting is a headlight: a spotlight at the camera pointing down +Z on
// top of a constant ambient term.
const (
	ambientLight = 0.65
	// higher values narrow the spotlight cone
	spotlightConePower = 10.0
	spotlightLightAmount = 1.0 - ambientLight

	darkest = 7
)

// Shade darkens base for a face whose midpoint and unit normal are given in
// camera space. A face squarely facing the camera in the middle of the view
// keeps its color; anything else falls toward the ambient level.
func Shade(base color.RGBA, point, normal mgl64.Vec3) color.RGBA {
	diffuse := math32.Max(float32(-normal.Z()), 0)

	spotlight := float32(1)
	if l := float32(point.Len()); l > 0 {
		cosAngle := math32.Max(float32(point.Z())/l, 0)
		spotlight = math32.Pow(cosAngle, spotlightConePower)
	}

	brightness := ambientLight + diffuse*spotlight*spotlightLightAmount
	// full brightness subtracts nothing, none subtracts 240
	c := 240 - int(math32.Round(brightness*240))

	return color.RGBA{
		R: uint8(clamp(int(base.R)-c, darkest, 255)),
		G: uint8(clamp(int(base.G)-c, darkest, 255)),
		B: uint8(clamp(int(base.B)-c, darkest, 255)),
		A: base.A,
	}
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
