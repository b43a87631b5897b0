package pointcloud

import (
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// PointerEventType identifies a kind of pointer event.
type PointerEventType uint8

const (
	PointerMove  PointerEventType = iota // pointer moved (button state unchanged)
	PointerDown                          // primary button pressed
	PointerUp                            // primary button released
	PointerEnter                         // pointer entered the viewport
	PointerLeave                         // pointer left the viewport
)

func (t PointerEventType) String() string {
	switch t {
	case PointerMove:
		return "move"
	case PointerDown:
		return "down"
	case PointerUp:
		return "up"
	case PointerEnter:
		return "enter"
	case PointerLeave:
		return "leave"
	}
	return "unknown"
}

// PointerEvent is a single pointer sample in screen pixels (origin top left).
// A zero Time is stamped with the interaction clock when applied.
type PointerEvent struct {
	Type PointerEventType
	X, Y float64
	Time time.Time
}

// InteractionState is the pointer state shared by both force fields. It is
// written only by Interaction.Apply and read by the fields during a tick.
type InteractionState struct {
	// PointerNDC is the last pointer position in normalized device coordinates.
	PointerNDC Vec2
	// PointerSeen is false until the first positional event arrives.
	PointerSeen bool
	HoverActive bool
	ClickActive bool
	// ClickStart is the time of the most recent pointer-down.
	ClickStart time.Time
	// ClickOriginWorld is the pointer-down position projected onto the
	// click plane, captured once per press.
	ClickOriginWorld mgl64.Vec3
}

// Interaction is the state machine that turns pointer events into
// InteractionState. Events may be posted from any goroutine; they are queued
// and applied only when Drain is called at the start of a tick.
type Interaction struct {
	state      InteractionState
	camera     *Camera
	clickDepth float64
	width      float64
	height     float64
	now        func() time.Time

	mu    sync.Mutex
	queue []PointerEvent
	spare []PointerEvent
}

// NewInteraction creates an Interaction that projects click origins onto the
// world plane Z = clickDepth.
func NewInteraction(cam *Camera, clickDepth float64) *Interaction {
	return &Interaction{
		camera:     cam,
		clickDepth: clickDepth,
		width:      1,
		height:     1,
		now:        time.Now,
	}
}

// State returns the shared state. The pointer stays valid for the lifetime of
// the Interaction.
func (in *Interaction) State() *InteractionState {
	return &in.state
}

// SetViewport sets the screen size used for NDC conversion.
func (in *Interaction) SetViewport(w, h float64) {
	in.width, in.height = w, h
}

// SetClock replaces the time source used to stamp events.
func (in *Interaction) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	in.now = now
}

// Post queues an event. Safe for concurrent use.
func (in *Interaction) Post(ev PointerEvent) {
	in.mu.Lock()
	in.queue = append(in.queue, ev)
	in.mu.Unlock()
}

// Pending returns the number of queued events.
func (in *Interaction) Pending() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.queue)
}

// Drain applies every queued event in order and returns how many were applied.
func (in *Interaction) Drain() int {
	in.mu.Lock()
	events := in.queue
	in.queue = in.spare[:0]
	in.mu.Unlock()

	for _, ev := range events {
		in.Apply(ev)
	}

	in.mu.Lock()
	in.spare = events[:0]
	in.mu.Unlock()
	return len(events)
}

// Apply transitions the state machine. It must only be called between ticks.
func (in *Interaction) Apply(ev PointerEvent) {
	if ev.Time.IsZero() {
		ev.Time = in.now()
	}
	s := &in.state
	switch ev.Type {
	case PointerMove:
		s.PointerNDC = ScreenToNDC(ev.X, ev.Y, in.width, in.height)
		s.PointerSeen = true
	case PointerDown:
		s.PointerNDC = ScreenToNDC(ev.X, ev.Y, in.width, in.height)
		s.PointerSeen = true
		s.ClickActive = true
		s.ClickStart = ev.Time
		if in.camera != nil {
			if p, ok := in.camera.PointAtDepth(s.PointerNDC, in.clickDepth); ok {
				s.ClickOriginWorld = p
			}
		}
	case PointerUp:
		s.ClickActive = false
	case PointerEnter:
		s.HoverActive = true
	case PointerLeave:
		s.HoverActive = false
	}
}
