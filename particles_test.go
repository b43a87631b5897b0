package pointcloud

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

func newTestField(t *testing.T, cfg ParticleConfig) *ParticleField {
	t.Helper()
	f, err := NewParticleField(boxFont{}, ebiten.NewImage(4, 4), newTestCamera(1.5), cfg)
	if err != nil {
		t.Fatalf("NewParticleField: %v", err)
	}
	return f
}

func testParticleConfig() ParticleConfig {
	cfg := DefaultParticleConfig()
	cfg.Text = "AB\nC"
	cfg.Amount = 200
	return cfg
}

func seenState(ndc Vec2) *InteractionState {
	return &InteractionState{PointerNDC: ndc, PointerSeen: true}
}

func TestNewParticleFieldPreconditions(t *testing.T) {
	cam := newTestCamera(1)
	if _, err := NewParticleField(nil, ebiten.NewImage(1, 1), cam, DefaultParticleConfig()); !errors.Is(err, ErrNoFont) {
		t.Errorf("nil font: err = %v, want ErrNoFont", err)
	}
	if _, err := NewParticleField(boxFont{}, nil, cam, DefaultParticleConfig()); !errors.Is(err, ErrNoTexture) {
		t.Errorf("nil texture: err = %v, want ErrNoTexture", err)
	}
	var font *SFNTFont
	if _, err := NewParticleField(font, ebiten.NewImage(1, 1), cam, DefaultParticleConfig()); !errors.Is(err, ErrNoFont) {
		t.Errorf("typed nil font: err = %v, want ErrNoFont", err)
	}
}

func TestParticleFieldSetText(t *testing.T) {
	f := newTestField(t, testParticleConfig())
	old := f.Set()
	if err := f.SetText("X"); err != nil {
		t.Fatal(err)
	}
	if f.Set() == old {
		t.Error("SetText did not replace the particle set")
	}
	if f.Text() != "X" {
		t.Errorf("Text = %q, want X", f.Text())
	}
	if f.Set().Len() != 200 {
		t.Errorf("Len = %d, want 200", f.Set().Len())
	}
}

func TestParticleStepBeforeFirstMove(t *testing.T) {
	f := newTestField(t, testParticleConfig())
	if f.Step(&InteractionState{}, time.Now()) {
		t.Error("Step should not run before the pointer has been seen")
	}
	if f.Set().Position.Dirty() {
		t.Error("position buffer marked dirty without a step")
	}
}

func TestParticleStepMissLeavesBuffers(t *testing.T) {
	f := newTestField(t, testParticleConfig())
	set := f.Set()
	set.Position.SetX(1, 123)
	before := append([]float32(nil), set.Position.Data...)

	// NDC 3 lands one and a half visible widths from the axis, outside a
	// plane twice the visible size.
	if f.Step(seenState(Vec2{X: 3}), time.Now()) {
		t.Fatal("Step reported a hit outside the interaction plane")
	}
	for i := range before {
		if set.Position.Data[i] != before[i] {
			t.Fatalf("Position[%d] changed on a miss", i)
		}
	}
	if set.Position.Dirty() || set.Color.Dirty() || set.Size.Dirty() {
		t.Error("buffers marked dirty on a miss")
	}
}

func TestParticleStepEasesToRest(t *testing.T) {
	cfg := testParticleConfig()
	cfg.Area = 0 // easing only
	f := newTestField(t, cfg)
	set := f.Set()
	rx, ry, rz := set.Rest.XYZ(0)
	set.Position.SetXYZ(0, rx+10, ry, rz)

	now := time.Now()
	for i := 0; i < 100; i++ {
		if !f.Step(seenState(Vec2{}), now) {
			t.Fatal("Step missed the plane at the view center")
		}
	}
	px, py, _ := set.Position.XYZ(0)
	if !approxEqual(px-rx, 10*math.Pow(0.95, 100), 1e-3) {
		t.Errorf("x offset after 100 frames = %v, want %v", px-rx, 10*math.Pow(0.95, 100))
	}
	assertNear(t, "y", py, ry)
}

func TestParticleStepDragEase(t *testing.T) {
	cfg := testParticleConfig()
	cfg.Area = 0
	f := newTestField(t, cfg)
	set := f.Set()
	rx, ry, rz := set.Rest.XYZ(0)
	set.Position.SetXYZ(0, rx+10, ry, rz)

	now := time.Now()
	state := seenState(Vec2{})
	state.ClickActive = true
	state.ClickStart = now
	f.Step(state, now)

	px, _, _ := set.Position.XYZ(0)
	assertNear(t, "x offset", px-rx, 10*(1-cfg.DragEase))
}

func TestParticleStepColor(t *testing.T) {
	cfg := testParticleConfig()
	cfg.Area = 0
	f := newTestField(t, cfg)
	set := f.Set()

	state := seenState(Vec2{})
	hit, _ := f.camera.PointAtDepth(state.PointerNDC, cfg.PlaneDepth)
	px, py, _ := set.Position.XYZ(7)
	d := math.Hypot(hit.X()-px, hit.Y()-py)
	want := cfg.NearColor.Lerp(cfg.FarColor, math.Min(1, d/cfg.ColorRadius))

	f.Step(state, time.Now())
	r, g, b := set.Color.XYZ(7)
	assertNear(t, "r", r, want.R)
	assertNear(t, "g", g, want.G)
	assertNear(t, "b", b, want.B)

	// Hover blends 30% toward orange.
	set.Position.SetXYZ(7, px, py, 0)
	state.HoverActive = true
	f.Step(state, time.Now())
	hovered := want.Lerp(cfg.HoverColor, cfg.HoverBlend)
	r, g, b = set.Color.XYZ(7)
	assertNear(t, "hover r", r, hovered.R)
	assertNear(t, "hover g", g, hovered.G)
	assertNear(t, "hover b", b, hovered.B)
}

func TestParticleBurstScale(t *testing.T) {
	f := newTestField(t, testParticleConfig())
	t0 := time.Now()
	state := seenState(Vec2{})

	if got := f.BurstScale(state, t0); got != 1 {
		t.Errorf("not clicking: BurstScale = %v, want 1", got)
	}

	state.ClickActive = true
	state.ClickStart = t0
	tests := []struct {
		after time.Duration
		want  float64
	}{
		{0, 1.5},
		{150 * time.Millisecond, 1.25},
		{300 * time.Millisecond, 1},
		{2 * time.Second, 1},
	}
	for _, tt := range tests {
		got := f.BurstScale(state, t0.Add(tt.after))
		if !approxEqual(got, tt.want, 1e-5) {
			t.Errorf("BurstScale(+%v) = %v, want %v", tt.after, got, tt.want)
		}
	}
}

func TestParticleBurstSize(t *testing.T) {
	f := newTestField(t, testParticleConfig())
	t0 := time.Now()
	state := seenState(Vec2{})
	state.ClickActive = true
	state.ClickStart = t0

	f.Step(state, t0)
	assertNear(t, "size at press", f.Set().Size.X(0), 1.5)
	f.Step(state, t0.Add(400*time.Millisecond))
	assertNear(t, "size after burst", f.Set().Size.X(0), 1)
}

// stepOne runs stepRange for particle i with the pointer at (mx, my) and no
// easing, and returns the particle's displacement.
func stepOne(f *ParticleField, i int, mx, my float64, dragging bool) (dx, dy float64) {
	set := f.Set()
	x0, y0, _ := set.Position.XYZ(i)
	f.frame = particleFrame{mx: mx, my: my, dragging: dragging, size: 1}
	f.stepRange(set, i, i+1)
	x1, y1, _ := set.Position.XYZ(i)
	return x1 - x0, y1 - y0
}

func TestParticleForceDirection(t *testing.T) {
	f := newTestField(t, testParticleConfig())
	x, y, _ := f.Set().Position.XYZ(1)

	// Pointer 10 units to the right: push of Area/100 = 2.5 to the left.
	dx, dy := stepOne(f, 1, x+10, y, false)
	assertNear(t, "repel dx", dx, -2.5)
	assertNear(t, "repel dy", dy, 0)

	x, y, _ = f.Set().Position.XYZ(1)
	dx, _ = stepOne(f, 1, x+10, y, true)
	assertNear(t, "drag dx", dx, 2.5)

	// Every fifth particle only gets the small stir step.
	x, y, _ = f.Set().Position.XYZ(0)
	dx, _ = stepOne(f, 0, x+10, y, false)
	assertNear(t, "stir dx", dx, -0.03)

	// Out of range: no push.
	x, y, _ = f.Set().Position.XYZ(1)
	dx, _ = stepOne(f, 1, x+300, y, false)
	assertNear(t, "far dx", dx, 0)
}

func TestParticleMaxDisplacement(t *testing.T) {
	cfg := testParticleConfig()
	cfg.MaxDisplacement = 1
	f := newTestField(t, cfg)
	x, y, _ := f.Set().Position.XYZ(1)
	dx, _ := stepOne(f, 1, x+1, y, false)
	assertNear(t, "clamped dx", dx, -1)
}

func TestParticlePointerOnParticle(t *testing.T) {
	f := newTestField(t, testParticleConfig())
	set := f.Set()
	for i := 0; i < set.Len(); i++ {
		x, y, _ := set.Position.XYZ(i)
		stepOne(f, i, x, y, false)
		stepOne(f, i, x, y, true)
	}
	if i := firstNonFinite(set.Position); i >= 0 {
		t.Fatalf("Position[%d] is not finite", i)
	}
	if i := firstNonFinite(set.Color); i >= 0 {
		t.Fatalf("Color[%d] is not finite", i)
	}
}

func TestParticlePointerNearlyOnParticle(t *testing.T) {
	f := newTestField(t, testParticleConfig())
	set := f.Set()
	for _, dragging := range []bool{false, true} {
		set.Position.SetXYZ(1, 0, 5, 0)
		stepOne(f, 1, 1e-20, 5, dragging)
		stepOne(f, 1, 400, 400, false)
		if i := firstNonFinite(set.Position); i >= 0 {
			t.Fatalf("dragging=%v: Position[%d] is not finite", dragging, i)
		}
	}
}

func TestParticleStepOverflowSkipped(t *testing.T) {
	cfg := testParticleConfig()
	cfg.Area = 1e300
	f := newTestField(t, cfg)
	set := f.Set()
	set.Position.SetXYZ(1, 0, 5, 0)

	// A push of 1e300 cannot be stored in the buffer, so the particle stays.
	dx, dy := stepOne(f, 1, 1, 5, false)
	if i := firstNonFinite(set.Position); i >= 0 {
		t.Fatalf("Position[%d] is not finite", i)
	}
	assertNear(t, "dx", dx, 0)
	assertNear(t, "dy", dy, 0)
}

func TestParticleWorkersMatchSerial(t *testing.T) {
	cfg := testParticleConfig()
	cfg.Amount = 4000
	serial := newTestField(t, cfg)
	cfg.Workers = 4
	parallel := newTestField(t, cfg)

	now := time.Now()
	for i := 0; i < 10; i++ {
		state := seenState(Vec2{X: 0.05 * float64(i), Y: -0.02 * float64(i)})
		serial.Step(state, now)
		parallel.Step(state, now)
	}
	a, b := serial.Set().Position.Data, parallel.Set().Position.Data
	if len(a) != len(b) {
		t.Fatalf("len %d != %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Position[%d]: serial %v, parallel %v", i, a[i], b[i])
		}
	}
}

func TestParticleFlush(t *testing.T) {
	f := newTestField(t, testParticleConfig())
	if f.Flush() {
		t.Error("Flush on a fresh set should report no change")
	}
	f.Step(seenState(Vec2{}), time.Now())
	if !f.Flush() {
		t.Error("Flush after a step should report a change")
	}
	if f.Flush() {
		t.Error("second Flush should report no change")
	}
}

func TestInteractionPlane(t *testing.T) {
	f := newTestField(t, testParticleConfig())
	r := f.InteractionPlane()
	w := f.camera.VisibleWidthAtDepth(0) * 2
	h := f.camera.VisibleHeightAtDepth(0) * 2
	assertNear(t, "width", r.Width, w)
	assertNear(t, "height", r.Height, h)
	assertNear(t, "x", r.X, -w/2)
	assertNear(t, "y", r.Y, -h/2)
}

func TestClampStep(t *testing.T) {
	x, y := clampStep(3, 4, 0)
	if x != 3 || y != 4 {
		t.Errorf("unbounded clampStep = %v,%v, want 3,4", x, y)
	}
	x, y = clampStep(3, 4, 1)
	assertNear(t, "x", x, 0.6)
	assertNear(t, "y", y, 0.8)
}
