package pointcloud

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// pointerState is the last polled pointer sample. processPointer diffs new
// samples against it to emit PointerEvents.
type pointerState struct {
	x, y   float64
	down   bool
	inside bool
	known  bool
}

// processInput is called from Scene.Update to turn mouse and touch input
// into queued PointerEvents. Injected events take priority over real input.
func (s *Scene) processInput() {
	if s.processInjectedInput() {
		return
	}
	s.processMousePointer()
}

// processMousePointer polls the cursor and the left button. The first active
// touch, if any, replaces the mouse sample so touch screens drive the same
// state machine.
func (s *Scene) processMousePointer() {
	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)

	touchIDs := ebiten.AppendTouchIDs(s.touchIDs[:0])
	s.touchIDs = touchIDs
	if len(touchIDs) > 0 {
		tx, ty := ebiten.TouchPosition(touchIDs[0])
		x, y = float64(tx), float64(ty)
		pressed = true
	}

	inside := ebiten.IsFocused() && s.insideViewport(x, y)
	s.processPointer(x, y, pressed, inside)
}

func (s *Scene) insideViewport(x, y float64) bool {
	return x >= 0 && y >= 0 && x < float64(s.width) && y < float64(s.height)
}

// processPointer runs the pointer diff for one sample. Moves outside the
// viewport are dropped unless the button is held, matching how a browser
// delivers mouse events to a page.
func (s *Scene) processPointer(x, y float64, pressed, inside bool) {
	ps := &s.pointer
	in := s.interaction

	if inside != ps.inside {
		if inside {
			in.Post(PointerEvent{Type: PointerEnter, X: x, Y: y})
		} else {
			in.Post(PointerEvent{Type: PointerLeave, X: x, Y: y})
		}
		ps.inside = inside
	}

	moved := !ps.known || x != ps.x || y != ps.y
	if moved && (inside || ps.down) {
		in.Post(PointerEvent{Type: PointerMove, X: x, Y: y})
		ps.x, ps.y, ps.known = x, y, true
	}

	switch {
	case pressed && !ps.down:
		// Presses only count when they start inside the viewport.
		if !inside {
			return
		}
		in.Post(PointerEvent{Type: PointerDown, X: x, Y: y})
		ps.down = true
	case !pressed && ps.down:
		in.Post(PointerEvent{Type: PointerUp, X: x, Y: y})
		ps.down = false
	}
}
