package pointcloud

import "math"

// GridField is the background lattice of points. It warps toward the pointer
// and ripples away from the last click origin while a click is engaged, and
// relaxes back to its rest lattice otherwise.
type GridField struct {
	config GridConfig
	camera *Camera

	rest     *AttributeBuffer // xyz
	position *AttributeBuffer // xyz

	clickSmooth float64
	visibleW    float64
	visibleH    float64
}

// NewGridField builds the lattice for the camera's current aspect ratio.
func NewGridField(cam *Camera, cfg GridConfig) *GridField {
	g := &GridField{config: cfg, camera: cam}
	g.Rebuild()
	return g
}

// Rebuild regenerates the rest lattice so it fills the camera's visible area
// at the grid depth plus half a cell on every side. Both buffers are
// reallocated and current positions restart at rest.
func (g *GridField) Rebuild() {
	rows, cols := g.config.Rows, g.config.Cols
	depth := g.config.Depth
	visibleW := g.camera.VisibleWidthAtDepth(depth)
	visibleH := g.camera.VisibleHeightAtDepth(depth)

	marginX := visibleW / float64(cols-1) / 2
	marginY := visibleH / float64(rows-1) / 2
	adjustedW := visibleW + marginX*2
	adjustedH := visibleH + marginY*2

	rest := NewAttributeBuffer(rows*cols, 3)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			x := float64(j)/float64(cols-1)*adjustedW - adjustedW/2
			y := float64(i)/float64(rows-1)*adjustedH - adjustedH/2
			rest.SetXYZ(i*cols+j, x, y, depth)
		}
	}
	position := rest.Clone()
	position.MarkDirty()

	g.rest, g.position = rest, position
	g.visibleW, g.visibleH = visibleW, visibleH
}

// Len returns the number of grid points.
func (g *GridField) Len() int {
	return g.rest.Count()
}

// Rest returns the rest lattice. It is replaced, not mutated, by Rebuild.
func (g *GridField) Rest() *AttributeBuffer {
	return g.rest
}

// Positions returns the current point positions.
func (g *GridField) Positions() *AttributeBuffer {
	return g.position
}

// VisibleSize returns the visible width and height at the grid depth from
// the last Rebuild.
func (g *GridField) VisibleSize() (w, h float64) {
	return g.visibleW, g.visibleH
}

// ClickSmooth returns the smoothed click intensity in [0, 1].
func (g *GridField) ClickSmooth() float64 {
	return g.clickSmooth
}

// Idle reports whether the click intensity has decayed below IdleThreshold.
func (g *GridField) Idle() bool {
	return g.clickSmooth < g.config.IdleThreshold
}

// Config returns the grid configuration for live tuning. Rows, Cols and
// Depth changes take effect at the next Rebuild.
func (g *GridField) Config() *GridConfig {
	return &g.config
}

// Step advances the grid by one frame.
func (g *GridField) Step(state *InteractionState) {
	cfg := &g.config
	if state.ClickActive {
		g.clickSmooth = lerp(g.clickSmooth, 1, cfg.RampUp)
	} else {
		g.clickSmooth = lerp(g.clickSmooth, 0, cfg.RampDown)
	}

	if g.Idle() {
		g.relax()
		return
	}

	mouse, ok := g.camera.PointAtDepth(state.PointerNDC, cfg.Depth)
	if !ok {
		g.relax()
		return
	}
	mx, my := mouse.X(), mouse.Y()
	ox, oy := state.ClickOriginWorld.X(), state.ClickOriginWorld.Y()
	ripple := g.clickSmooth * cfg.MaxRippleOffset

	rest, pos := g.rest, g.position
	for i, n := 0, rest.Count(); i < n; i++ {
		rx, ry, rz := rest.XYZ(i)
		px, py, _ := pos.XYZ(i)

		dx := mx - rx
		dy := my - ry
		dist := math.Sqrt(dx*dx + dy*dy)
		factor := math.Max(0, (cfg.Threshold-dist)/cfg.Threshold)
		offX := dx * factor * cfg.MouseInfluence
		offY := dy * factor * cfg.MouseInfluence

		var ripX, ripY float64
		rdx := rx - ox
		rdy := ry - oy
		if rdist := math.Sqrt(rdx*rdx + rdy*rdy); rdist > 0 {
			ripX = rdx / rdist * ripple
			ripY = rdy / rdist * ripple
		}

		tx := rx + offX + ripX
		ty := ry + offY + ripY
		pos.SetXYZ(i, lerp(px, tx, cfg.WarpEase), lerp(py, ty, cfg.WarpEase), rz)
	}
	pos.MarkDirty()
}

// relax eases X/Y toward rest and pins Z.
func (g *GridField) relax() {
	rate := g.config.WarpEase
	rest, pos := g.rest, g.position
	for i, n := 0, rest.Count(); i < n; i++ {
		rx, ry, rz := rest.XYZ(i)
		px, py, _ := pos.XYZ(i)
		pos.SetXYZ(i, lerp(px, rx, rate), lerp(py, ry, rate), rz)
	}
	pos.MarkDirty()
}

// Flush ends the frame for the position buffer.
func (g *GridField) Flush() bool {
	return g.position.Flush()
}
