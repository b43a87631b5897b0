package pointcloud

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Camera is a perspective camera looking down -Z with +Y up. It converts
// pointer positions into world-space points on fixed depth planes and
// projects world points back onto the screen for drawing.
type Camera struct {
	// FOV is the vertical field of view in degrees.
	FOV float64
	// Aspect is the viewport width divided by its height.
	Aspect float64
	// Near and Far are the clip plane distances.
	Near, Far float64
	// Position is the world-space eye position.
	Position mgl64.Vec3

	projection     mgl64.Mat4
	view           mgl64.Mat4
	viewProjection mgl64.Mat4
	inverse        mgl64.Mat4
	dirty          bool
}

// NewCamera creates a camera from cfg with the given aspect ratio.
func NewCamera(cfg CameraConfig, aspect float64) *Camera {
	c := &Camera{
		FOV:      cfg.FOV,
		Near:     cfg.Near,
		Far:      cfg.Far,
		Position: mgl64.Vec3{cfg.X, cfg.Y, cfg.Z},
		dirty:    true,
	}
	c.SetAspect(aspect)
	return c
}

// SetAspect updates the aspect ratio. Non-positive values fall back to 1.
func (c *Camera) SetAspect(aspect float64) {
	if aspect <= 0 || math.IsNaN(aspect) || math.IsInf(aspect, 0) {
		aspect = 1
	}
	if aspect != c.Aspect {
		c.Aspect = aspect
		c.dirty = true
	}
}

// MarkDirty forces a recomputation of the cached matrices. Call this after
// modifying FOV, Near, Far or Position directly.
func (c *Camera) MarkDirty() {
	c.dirty = true
}

// computeMatrices recomputes projection, view and their inverse if dirty.
func (c *Camera) computeMatrices() {
	if !c.dirty {
		return
	}
	c.dirty = false

	c.projection = mgl64.Perspective(mgl64.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
	target := c.Position.Add(mgl64.Vec3{0, 0, -1})
	c.view = mgl64.LookAtV(c.Position, target, mgl64.Vec3{0, 1, 0})
	c.viewProjection = c.projection.Mul4(c.view)
	c.inverse = c.viewProjection.Inv()
}

// Ray returns the world-space ray from the eye through the given NDC point.
// dir is normalized, or zero when the unprojected point coincides with the eye.
func (c *Camera) Ray(ndc Vec2) (origin, dir mgl64.Vec3) {
	c.computeMatrices()
	p := mgl64.TransformCoordinate(mgl64.Vec3{ndc.X, ndc.Y, 0.5}, c.inverse)
	d := p.Sub(c.Position)
	if l := d.Len(); l > 0 {
		d = d.Mul(1 / l)
	}
	return c.Position, d
}

// PointAtDepth intersects the ray through ndc with the world plane Z = z.
// ok is false when the ray runs parallel to the plane.
func (c *Camera) PointAtDepth(ndc Vec2, z float64) (p mgl64.Vec3, ok bool) {
	origin, dir := c.Ray(ndc)
	if dir.Z() == 0 {
		return mgl64.Vec3{}, false
	}
	t := (z - origin.Z()) / dir.Z()
	return origin.Add(dir.Mul(t)), true
}

// VisibleHeightAtDepth returns the world-space height of the view frustum on
// the plane Z = z.
func (c *Camera) VisibleHeightAtDepth(z float64) float64 {
	vFOV := mgl64.DegToRad(c.FOV)
	return 2 * math.Tan(vFOV/2) * math.Abs(c.Position.Z()-z)
}

// VisibleWidthAtDepth returns the world-space width of the view frustum on
// the plane Z = z.
func (c *Camera) VisibleWidthAtDepth(z float64) float64 {
	return c.VisibleHeightAtDepth(z) * c.Aspect
}

// Project maps a world point to NDC. dist is the distance in front of the
// eye along the view axis; ok is false for points behind the eye.
func (c *Camera) Project(p mgl64.Vec3) (ndc Vec2, dist float64, ok bool) {
	c.computeMatrices()
	clip := c.viewProjection.Mul4x1(p.Vec4(1))
	w := clip.W()
	if w <= 0 {
		return Vec2{}, 0, false
	}
	eye := c.view.Mul4x1(p.Vec4(1))
	return Vec2{X: clip.X() / w, Y: clip.Y() / w}, -eye.Z(), true
}

// ScreenToNDC converts a screen position inside a w×h viewport (origin top
// left, Y down) to normalized device coordinates.
func ScreenToNDC(x, y, w, h float64) Vec2 {
	if w <= 0 || h <= 0 {
		return Vec2{}
	}
	return Vec2{
		X: x/w*2 - 1,
		Y: -(y/h)*2 + 1,
	}
}

// NDCToScreen is the inverse of ScreenToNDC.
func NDCToScreen(ndc Vec2, w, h float64) (x, y float64) {
	return (ndc.X + 1) / 2 * w, (1 - ndc.Y) / 2 * h
}
