package pointcloud

import (
	"math"
	"testing"
)

func TestFirstNonFinite(t *testing.T) {
	b := NewAttributeBuffer(3, 3)
	if i := firstNonFinite(b); i != -1 {
		t.Errorf("clean buffer: got %d, want -1", i)
	}
	b.Data[4] = float32(math.NaN())
	if i := firstNonFinite(b); i != 4 {
		t.Errorf("NaN at 4: got %d", i)
	}
	b.Data[1] = float32(math.Inf(-1))
	if i := firstNonFinite(b); i != 1 {
		t.Errorf("Inf at 1: got %d", i)
	}
	if i := firstNonFinite(nil); i != -1 {
		t.Errorf("nil buffer: got %d, want -1", i)
	}
}

func TestDebugStepRuns(t *testing.T) {
	s := newTestScene(t)
	s.SetDebugMode(true)
	s.InjectMove(300, 200)
	s.Update()
	if s.Frame() != 1 {
		t.Errorf("Frame = %d, want 1", s.Frame())
	}
	if i := firstNonFinite(s.Particles().Set().Position); i >= 0 {
		t.Errorf("Position[%d] is not finite", i)
	}
}
