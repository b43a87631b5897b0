package pointcloud

import (
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Default viewport used until the first Resize.
const (
	defaultViewportW = 800
	defaultViewportH = 600
)

// Scene is the top-level object that owns the camera, the interaction state,
// both force fields and their render batches. Call Update once per tick and
// Draw once per frame, on the same goroutine.
type Scene struct {
	// ClearColor fills the screen before drawing. A zero alpha skips the fill.
	ClearColor Color
	// ScreenshotDir is where Screenshot writes PNG files.
	ScreenshotDir string

	config      Config
	camera      *Camera
	interaction *Interaction
	particles   *ParticleField
	grid        *GridField

	particleBatch *PointBatch
	gridBatch     *PointBatch
	uploadedSet   *ParticleSet

	width      int
	height     int
	pixelRatio float64
	now        func() time.Time
	frame      uint64

	debug      bool
	updateFunc func() error
	fps        *fpsOverlay

	// Input state
	pointer     pointerState
	touchIDs    []ebiten.TouchID
	injectQueue []syntheticPointerEvent

	screenshotQueue []string
	testRunner      *TestRunner
}

// NewScene validates cfg, samples the text with font and builds the grid.
// font and texture must both be loaded; the scene never starts without them.
func NewScene(font OutlineSource, texture *ebiten.Image, cfg Config) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new scene: %w", err)
	}
	cam := NewCamera(cfg.Camera, float64(defaultViewportW)/float64(defaultViewportH))
	particles, err := NewParticleField(font, texture, cam, cfg.Particles)
	if err != nil {
		return nil, fmt.Errorf("new scene: %w", err)
	}

	s := &Scene{
		ClearColor:    Color{0, 0, 0, 1},
		ScreenshotDir: "screenshots",
		config:        cfg,
		camera:        cam,
		interaction:   NewInteraction(cam, cfg.Grid.Depth),
		particles:     particles,
		grid:          NewGridField(cam, cfg.Grid),
		pixelRatio:    1,
		now:           time.Now,
	}

	s.particleBatch = NewPointBatch(texture, cfg.Particles.BlendMode, ColorWhite)
	s.particleBatch.Attenuation = AttenuateFixed

	gridTint := cfg.Grid.Color
	gridTint.A = cfg.Grid.Opacity
	s.gridBatch = NewPointBatch(ensureWhitePixel(), cfg.Grid.BlendMode, gridTint)
	s.gridBatch.Size = cfg.Grid.PointSize
	s.gridBatch.Attenuation = AttenuateViewport

	s.Resize(defaultViewportW, defaultViewportH, 1)
	s.flush()
	return s, nil
}

// Camera returns the scene camera.
func (s *Scene) Camera() *Camera {
	return s.camera
}

// Interaction returns the pointer state machine. Post events to it from any
// goroutine; they are applied at the start of the next Update.
func (s *Scene) Interaction() *Interaction {
	return s.interaction
}

// Particles returns the text particle field.
func (s *Scene) Particles() *ParticleField {
	return s.particles
}

// Grid returns the background grid field.
func (s *Scene) Grid() *GridField {
	return s.grid
}

// Frame returns the number of completed Update calls.
func (s *Scene) Frame() uint64 {
	return s.frame
}

// SetClock replaces the time source for click timing. Intended for tests and
// deterministic replays.
func (s *Scene) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.now = now
	s.interaction.SetClock(now)
}

// SetUpdateFunc registers a callback run by Run after every Update.
func (s *Scene) SetUpdateFunc(fn func() error) {
	s.updateFunc = fn
}

// SetShowFPS toggles the FPS/TPS overlay.
func (s *Scene) SetShowFPS(show bool) {
	if show && s.fps == nil {
		s.fps = newFPSOverlay()
	} else if !show {
		s.fps = nil
	}
}

// SetDebugMode enables or disables debug mode. When enabled, per-frame
// timings are printed to stderr and buffers are checked for NaN values.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
}

// SetText replaces the particle text. The new set is uploaded at the end of
// the next Update.
func (s *Scene) SetText(text string) error {
	if err := s.particles.SetText(text); err != nil {
		return fmt.Errorf("set text: %w", err)
	}
	return nil
}

// Size returns the current viewport size in device pixels and the pixel ratio.
func (s *Scene) Size() (w, h int, pixelRatio float64) {
	return s.width, s.height, s.pixelRatio
}

// Resize updates the camera aspect and rebuilds the grid lattice. It runs
// synchronously, so the next Update and Draw already see the new lattice.
func (s *Scene) Resize(w, h int, pixelRatio float64) {
	if w <= 0 || h <= 0 {
		return
	}
	if pixelRatio <= 0 {
		pixelRatio = 1
	}
	if w == s.width && h == s.height && pixelRatio == s.pixelRatio {
		return
	}
	sizeChanged := w != s.width || h != s.height
	s.width, s.height, s.pixelRatio = w, h, pixelRatio
	if !sizeChanged {
		return
	}
	s.camera.SetAspect(float64(w) / float64(h))
	s.interaction.SetViewport(float64(w), float64(h))
	s.grid.Rebuild()
}

// Update runs one tick: input, queued events, grid, particles, then the
// end-of-frame buffer flush.
func (s *Scene) Update() {
	var stats debugStats
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}

	if s.testRunner != nil {
		s.testRunner.step(s)
	}
	s.processInput()
	stats.events = s.interaction.Drain()
	s.step(&stats, t0)

	if s.fps != nil {
		s.fps.update(1.0 / float64(ebiten.TPS()))
	}
}

// step advances both fields and flushes. Split from Update so tests can
// drive the simulation without polling real input.
func (s *Scene) step(stats *debugStats, t0 time.Time) {
	now := s.now()
	state := s.interaction.State()

	if s.debug {
		stats.inputTime = time.Since(t0)
		t0 = time.Now()
	}

	s.grid.Step(state)

	if s.debug {
		stats.gridTime = time.Since(t0)
		t0 = time.Now()
	}

	stats.particleHit = s.particles.Step(state, now)

	if s.debug {
		stats.particleTime = time.Since(t0)
		t0 = time.Now()
	}

	s.flush()

	if s.debug {
		stats.flushTime = time.Since(t0)
		stats.particles = s.particles.Set().Len()
		stats.gridPoints = s.grid.Len()
		s.debugLog(stats)
		s.debugCheckFinite()
	}
	s.frame++
}

// flush hands dirty buffers to the render batches.
func (s *Scene) flush() {
	if s.grid.Flush() {
		s.gridBatch.Upload(s.grid.Positions(), nil, nil)
	}
	set := s.particles.Set()
	if s.particles.Flush() || set != s.uploadedSet {
		s.particleBatch.Upload(set.Position, set.Color, set.Size)
		s.uploadedSet = set
	}
}

// Draw renders the grid, then the text particles on top.
func (s *Scene) Draw(screen *ebiten.Image) {
	if s.ClearColor.A > 0 {
		screen.Fill(s.ClearColor.toRGBA())
	}
	s.gridBatch.Draw(screen, s.camera)
	s.particleBatch.Draw(screen, s.camera)

	if s.fps != nil {
		s.fps.draw(screen)
	}
	s.flushScreenshots(screen)
}
