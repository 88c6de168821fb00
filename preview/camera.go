// Package preview turns a mesh's render arrays into flat shaded screen
// polygons in painter order. It has no drawing dependency of its own; the
// viewer in internal/viewer fills the polygons it returns.
package preview

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/smasonuk/polymesh"
)

// maxPitch keeps the orbit away from the poles, where Up and the view
// direction become parallel.
const maxPitch = 89 * math.Pi / 180

// flipYZ turns a right handed view (looking down -Z, Y up) into camera
// space looking down +Z with Y growing down the screen.
var flipYZ = mgl64.Scale3D(1, -1, -1)

// Camera looks from Position at Target. Camera space has the viewer at the
// origin looking down +Z; anything closer than Near is clipped.
type Camera struct {
	Position mgl64.Vec3
	Target   mgl64.Vec3
	Up       mgl64.Vec3

	FovY float64 // degrees
	Near float64

	Width, Height int
}

func NewCamera(width, height int) *Camera {
	return &Camera{
		Position: mgl64.Vec3{0, 0, 3},
		Up:       mgl64.Vec3{0, 1, 0},
		FovY:     45,
		Near:     0.1,
		Width:    width,
		Height:   height,
	}
}

// View returns the world to camera space transform.
func (c *Camera) View() mgl64.Mat4 {
	return flipYZ.Mul4(mgl64.LookAtV(c.Position, c.Target, c.Up))
}

// focal is the distance in pixels of the projection plane.
func (c *Camera) focal() float64 {
	return float64(c.Height) / 2 / math.Tan(mgl64.DegToRad(c.FovY)/2)
}

// Project maps a camera space point with positive z to the screen.
func (c *Camera) Project(p mgl64.Vec3) Point {
	f := c.focal()
	return Point{
		X: float32(f*p.X()/p.Z() + float64(c.Width)/2),
		Y: float32(f*p.Y()/p.Z() + float64(c.Height)/2),
	}
}

// Unproject is the inverse of Project for a known depth z.
func (c *Camera) Unproject(pt Point, z float64) mgl64.Vec3 {
	f := c.focal()
	return mgl64.Vec3{
		(float64(pt.X) - float64(c.Width)/2) * z / f,
		(float64(pt.Y) - float64(c.Height)/2) * z / f,
		z,
	}
}

// Segment returns the world space segment under a screen point, running
// from the near plane to depth far.
func (c *Camera) Segment(pt Point, far float64) (start, end mgl64.Vec3) {
	inv := c.View().Inv()
	return mgl64.TransformCoordinate(c.Unproject(pt, c.Near), inv),
		mgl64.TransformCoordinate(c.Unproject(pt, far), inv)
}

// Orbit swings Position around Target by yaw (about Up) and pitch, both in
// radians. The pitch stops short of straight up or down.
func (c *Camera) Orbit(yaw, pitch float64) {
	offset := c.Position.Sub(c.Target)
	r := offset.Len()
	if r == 0 {
		return
	}
	az := math.Atan2(offset.X(), offset.Z()) + yaw
	el := math.Asin(mgl64.Clamp(offset.Y()/r, -1, 1)) + pitch
	el = mgl64.Clamp(el, -maxPitch, maxPitch)

	c.Position = c.Target.Add(mgl64.Vec3{
		r * math.Cos(el) * math.Sin(az),
		r * math.Sin(el),
		r * math.Cos(el) * math.Cos(az),
	})
}

// Zoom scales the distance to Target by f.
func (c *Camera) Zoom(f float64) {
	if f <= 0 {
		return
	}
	c.Position = c.Target.Add(c.Position.Sub(c.Target).Mul(f))
}

// Frame aims at the middle of m's bounds and backs off until the bounding
// sphere fits the vertical field of view, keeping the current direction.
func (c *Camera) Frame(m *polymesh.Mesh) {
	min, max := m.Bounds()
	c.Target = min.Add(max).Mul(0.5)
	radius := max.Sub(min).Len() / 2
	if radius == 0 {
		radius = 1
	}

	dir := c.Position.Sub(c.Target)
	if dir.Len() == 0 {
		dir = mgl64.Vec3{0, 0, 1}
	}
	dist := radius / math.Sin(mgl64.DegToRad(c.FovY)/2) * 1.1
	c.Position = c.Target.Add(dir.Normalize().Mul(dist))
	c.Near = math.Max(dist/1000, 1e-4)
}
