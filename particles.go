package pointcloud

import (
	"errors"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Construction preconditions for ParticleField.
var (
	ErrNoFont    = errors.New("pointcloud: font not loaded")
	ErrNoTexture = errors.New("pointcloud: particle texture not loaded")
)

// minForceDist2 is the squared planar distance below which a particle is
// treated as sitting under the pointer.
const minForceDist2 = 1e-12

// ParticleField owns the text particle set and applies pointer forces to it
// once per frame.
type ParticleField struct {
	config  ParticleConfig
	camera  *Camera
	font    OutlineSource
	texture *ebiten.Image
	set     *ParticleSet
	frame   particleFrame
	burst   *burstTween
}

// particleFrame is the per-step snapshot shared read-only by all workers.
type particleFrame struct {
	mx, my   float64
	hover    bool
	dragging bool
	size     float64
	ease     float64
}

// NewParticleField samples cfg.Text with font and returns a field ready to
// step. Both font and texture are required.
func NewParticleField(font OutlineSource, texture *ebiten.Image, cam *Camera, cfg ParticleConfig) (*ParticleField, error) {
	if isNilSource(font) {
		return nil, ErrNoFont
	}
	if texture == nil {
		return nil, ErrNoTexture
	}
	f := &ParticleField{
		config:  cfg,
		camera:  cam,
		font:    font,
		texture: texture,
	}
	if err := f.SetText(cfg.Text); err != nil {
		return nil, err
	}
	return f, nil
}

// SetText rebuilds the particle set for text. The old set is replaced in a
// single assignment, so a failed build leaves the current set untouched.
func (f *ParticleField) SetText(text string) error {
	opts := f.config.sampleOptions()
	opts.Text = text
	set, err := SampleText(f.font, opts)
	if err != nil {
		return err
	}
	f.config.Text = text
	f.set = set
	return nil
}

// Text returns the current text.
func (f *ParticleField) Text() string {
	return f.config.Text
}

// Set returns the current particle set.
func (f *ParticleField) Set() *ParticleSet {
	return f.set
}

// Texture returns the sprite drawn for each particle.
func (f *ParticleField) Texture() *ebiten.Image {
	return f.texture
}

// Config returns the field's configuration for live tuning. Text changes
// must go through SetText.
func (f *ParticleField) Config() *ParticleConfig {
	return &f.config
}

// InteractionPlane returns the world-space rectangle, centered on the view
// axis at PlaneDepth, that the pointer ray must hit for the field to react.
func (f *ParticleField) InteractionPlane() Rect {
	w := f.camera.VisibleWidthAtDepth(f.config.PlaneDepth) * f.config.PlaneScale
	h := f.camera.VisibleHeightAtDepth(f.config.PlaneDepth) * f.config.PlaneScale
	return Rect{
		X:      f.camera.Position.X() - w/2,
		Y:      f.camera.Position.Y() - h/2,
		Width:  w,
		Height: h,
	}
}

// BurstScale returns the click size multiplier at time now: BurstScale at
// the instant of the press, decaying linearly to exactly 1 at BurstDuration.
func (f *ParticleField) BurstScale(state *InteractionState, now time.Time) float64 {
	if !state.ClickActive {
		return 1
	}
	// Rebuilt lazily so live config edits take effect on the next press.
	over := time.Duration(f.config.BurstDuration)
	if !f.burst.matches(f.config.BurstScale, over) {
		f.burst = newBurstTween(f.config.BurstScale, over)
	}
	return f.burst.at(now.Sub(state.ClickStart))
}

// Step advances the particle set by one frame. It returns false, leaving
// every buffer untouched, when the pointer ray misses the interaction plane.
func (f *ParticleField) Step(state *InteractionState, now time.Time) bool {
	set := f.set
	if set.Len() == 0 || !state.PointerSeen {
		return false
	}
	hit, ok := f.camera.PointAtDepth(state.PointerNDC, f.config.PlaneDepth)
	if !ok || !f.InteractionPlane().Contains(hit.X(), hit.Y()) {
		return false
	}

	rate := f.config.Ease
	if state.ClickActive {
		rate = f.config.DragEase
	}
	f.frame = particleFrame{
		mx:       hit.X(),
		my:       hit.Y(),
		hover:    state.HoverActive,
		dragging: state.ClickActive,
		size:     f.config.ParticleSize * f.BurstScale(state, now),
		ease:     rate,
	}

	forEachChunk(f.config.Workers, set.Len(), func(lo, hi int) {
		f.stepRange(set, lo, hi)
	})

	set.Position.MarkDirty()
	set.Color.MarkDirty()
	set.Size.MarkDirty()
	return true
}

// stepRange updates particles [lo, hi). It writes only those slots.
func (f *ParticleField) stepRange(set *ParticleSet, lo, hi int) {
	cfg := &f.config
	fr := &f.frame
	rest, pos, col, size := set.Rest, set.Position, set.Color, set.Size

	for i := lo; i < hi; i++ {
		rx, ry, rz := rest.XYZ(i)
		px, py, pz := pos.XYZ(i)

		dx := fr.mx - px
		dy := fr.my - py
		d2 := dx*dx + dy*dy
		dist := math.Sqrt(d2)

		c := cfg.NearColor.Lerp(cfg.FarColor, math.Min(1, dist/cfg.ColorRadius))
		if fr.hover {
			c = c.Lerp(cfg.HoverColor, cfg.HoverBlend)
		}
		col.SetXYZ(i, c.R, c.G, c.B)
		size.SetX(i, fr.size)

		// Under the pointer the direction is unstable and the push would
		// overflow the float32 buffer; skip it.
		if d2 > minForceDist2 {
			force := -cfg.Area / d2
			cos, sin := dx/dist, dy/dist
			var sx, sy float64
			switch {
			case fr.dragging:
				sx, sy = clampStep(-force*cos, -force*sin, cfg.MaxDisplacement)
			case dist < cfg.Area:
				if cfg.StirEvery > 0 && i%cfg.StirEvery == 0 {
					sx, sy = -cfg.StirStep*cos, -cfg.StirStep*sin
				} else {
					sx, sy = clampStep(force*cos, force*sin, cfg.MaxDisplacement)
				}
			}
			if fitsFloat32(px+sx) && fitsFloat32(py+sy) {
				px += sx
				py += sy
			}
		}

		px += (rx - px) * fr.ease
		py += (ry - py) * fr.ease
		pz += (rz - pz) * fr.ease
		pos.SetXYZ(i, px, py, pz)
	}
}

// Flush ends the frame for all three buffers and reports whether any of them
// changed.
func (f *ParticleField) Flush() bool {
	set := f.set
	changed := set.Position.Flush()
	changed = set.Color.Flush() || changed
	changed = set.Size.Flush() || changed
	return changed
}

// fitsFloat32 reports whether v is finite once stored in an AttributeBuffer.
func fitsFloat32(v float64) bool {
	return math.Abs(v) <= math.MaxFloat32
}

// clampStep shortens (x, y) to length limit. limit <= 0 means unbounded.
func clampStep(x, y, limit float64) (float64, float64) {
	if limit <= 0 {
		return x, y
	}
	l := math.Hypot(x, y)
	if l <= limit {
		return x, y
	}
	s := limit / l
	return x * s, y * s
}
