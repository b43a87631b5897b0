package pointcloud

import "testing"

func TestInjectClick(t *testing.T) {
	s := newTestScene(t)
	s.InjectClick(400, 300)
	if len(s.injectQueue) != 2 {
		t.Fatalf("expected 2 queued events, got %d", len(s.injectQueue))
	}

	// Frame 1: enter, move, press
	if !s.processInjectedInput() {
		t.Fatal("expected an injected event to be consumed")
	}
	if n := s.Interaction().Pending(); n != 3 {
		t.Fatalf("pending after press = %d, want 3", n)
	}
	s.Interaction().Drain()
	state := s.Interaction().State()
	if !state.ClickActive || !state.HoverActive {
		t.Errorf("after press: ClickActive=%v HoverActive=%v, want true/true", state.ClickActive, state.HoverActive)
	}

	// Frame 2: release only, the pointer has not moved.
	s.processInjectedInput()
	if n := s.Interaction().Pending(); n != 1 {
		t.Fatalf("pending after release = %d, want 1", n)
	}
	s.Interaction().Drain()
	if state.ClickActive {
		t.Error("ClickActive still true after release")
	}
	if len(s.injectQueue) != 0 {
		t.Errorf("expected empty queue, got %d", len(s.injectQueue))
	}
}

func TestInjectMoveKeepsButtonState(t *testing.T) {
	s := newTestScene(t)
	s.InjectMove(100, 100)
	s.processInjectedInput()
	s.Interaction().Drain()
	state := s.Interaction().State()
	if state.ClickActive {
		t.Error("a plain move should not press the button")
	}
	assertNear(t, "ndc x", state.PointerNDC.X, 100.0/800*2-1)

	s.InjectPress(100, 100)
	s.InjectMove(200, 200)
	s.processInjectedInput()
	s.processInjectedInput()
	s.Interaction().Drain()
	if !state.ClickActive {
		t.Error("a move after a press should keep the button held")
	}
}

func TestInjectDrag(t *testing.T) {
	s := newTestScene(t)
	s.InjectDrag(10, 10, 200, 200, 5)
	if len(s.injectQueue) != 5 {
		t.Fatalf("expected 5 queued events, got %d", len(s.injectQueue))
	}
	mid := s.injectQueue[2]
	assertNear(t, "mid x", mid.screenX, 105)
	assertNear(t, "mid y", mid.screenY, 105)

	state := s.Interaction().State()
	for i := 0; i < 4; i++ {
		s.processInjectedInput()
		s.Interaction().Drain()
		if !state.ClickActive {
			t.Fatalf("frame %d: ClickActive = false during drag", i)
		}
	}
	s.processInjectedInput()
	s.Interaction().Drain()
	if state.ClickActive {
		t.Error("ClickActive = true after the drag ended")
	}
	assertNear(t, "final ndc x", state.PointerNDC.X, 200.0/800*2-1)
}

func TestInjectDrag_MinFrames(t *testing.T) {
	s := newTestScene(t)
	s.InjectDrag(0, 0, 100, 100, 1)
	if len(s.injectQueue) != 2 {
		t.Errorf("expected 2 events for frames<2, got %d", len(s.injectQueue))
	}
}

func TestInjectOutsideViewport(t *testing.T) {
	s := newTestScene(t)
	s.InjectPress(-10, -10)
	s.processInjectedInput()
	if n := s.Interaction().Pending(); n != 0 {
		t.Errorf("pending after a press outside the viewport = %d, want 0", n)
	}
}

func TestProcessInjectedInput_EmptyQueue(t *testing.T) {
	s := newTestScene(t)
	if s.processInjectedInput() {
		t.Error("expected false for an empty queue")
	}
}
