package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Camera is an orthographic view of a z-up world. Yaw turns about the
// world z axis, pitch tilts the view towards the xy plane.
type Camera struct {
	Yaw, Pitch float64
	Zoom       float64
	// Extent is the world radius that fills the shorter screen side at zoom 1.
	Extent float64
}

func NewCamera(extent float64) *Camera {
	if !(extent > 0) {
		extent = 1
	}
	return &Camera{Yaw: -math.Pi / 6, Pitch: math.Pi / 10, Zoom: 1, Extent: extent}
}

func (c *Camera) Turn(d float64) { c.Yaw += d }

func (c *Camera) Tilt(d float64) {
	c.Pitch = math.Max(-math.Pi/2, math.Min(math.Pi/2, c.Pitch+d))
}

func (c *Camera) ZoomIn()  { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut() { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

func (c *Camera) view() mgl64.Mat3 {
	return mgl64.Rotate3DX(c.Pitch).Mul3(mgl64.Rotate3DZ(c.Yaw))
}

// Project maps a world point onto a w x h dot grid. The returned depth grows
// away from the viewer; ok is false when the point falls off screen.
func (c *Camera) Project(p mgl64.Vec3, w, h int) (x, y int, depth float64, ok bool) {
	r := c.view().Mul3x1(p)
	scale := c.Zoom * 0.45 * float64(min(w, h)) / c.Extent
	x = w/2 + int(math.Round(r.X()*scale))
	y = h/2 - int(math.Round(r.Z()*scale))
	return x, y, r.Y(), x >= 0 && x < w && y >= 0 && y < h
}
