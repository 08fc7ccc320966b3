package overlay

import (
	"errors"
	"fmt"

	"imgpaste/src/geom"
)

// State of a Selection.
type State int

const (
	Idle State = iota
	Armed
	Dragging
	Completed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Dragging:
		return "dragging"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	ErrNotIdle     = errors.New("selection already armed")
	ErrEmptyScreen = errors.New("screen bounds have no area")
)

type dragGesture struct {
	origin  geom.Point
	current geom.Point
}

// Selection turns pointer events into a single screen rectangle. It is not
// safe for concurrent use; the UI thread that owns the overlay drives it.
// A Selection is used for exactly one gesture.
type Selection struct {
	renderer Renderer
	state    State
	screen   geom.Rect
	drag     dragGesture
	result   geom.Rect
}

// NewSelection returns an idle selection reporting frames to r. r may be nil.
func NewSelection(r Renderer) *Selection {
	return &Selection{renderer: r}
}

// Arm activates the selection surface over screen.
func (s *Selection) Arm(screen geom.Rect) error {
	if s.state != Idle {
		return ErrNotIdle
	}
	if screen.Empty() {
		return fmt.Errorf("%w: %v", ErrEmptyScreen, screen)
	}
	s.screen = screen
	s.state = Armed
	s.redraw(Frame{Screen: screen})
	return nil
}

// PointerDown starts the drag at p.
func (s *Selection) PointerDown(p geom.Point) {
	if s.state != Armed {
		return
	}
	s.drag = dragGesture{origin: p, current: p}
	s.state = Dragging
	s.redraw(s.dragFrame())
}

// PointerMove updates the live rectangle.
func (s *Selection) PointerMove(p geom.Point) {
	if s.state != Dragging {
		return
	}
	s.drag.current = p
	s.redraw(s.dragFrame())
}

// PointerUp finishes the drag at p. A rectangle that has no area once
// clamped to the screen cancels the selection.
func (s *Selection) PointerUp(p geom.Point) {
	if s.state != Dragging {
		return
	}
	s.drag.current = p
	r := geom.Normalize(s.drag.origin, s.drag.current).Clamp(s.screen)
	if r.Empty() {
		s.state = Cancelled
		return
	}
	s.result = r
	s.state = Completed
}

// Abort dismisses the surface. It has no effect once the selection finished.
func (s *Selection) Abort() {
	if s.state == Armed || s.state == Dragging || s.state == Idle {
		s.state = Cancelled
	}
}

func (s *Selection) State() State { return s.state }

// Done reports whether the selection reached a terminal state.
func (s *Selection) Done() bool {
	return s.state == Completed || s.state == Cancelled
}

// Result returns the selected rectangle and true only after completion.
func (s *Selection) Result() (geom.Rect, bool) {
	if s.state != Completed {
		return geom.Rect{}, false
	}
	return s.result, true
}

// Screen returns the bounds given to Arm.
func (s *Selection) Screen() geom.Rect { return s.screen }

func (s *Selection) dragFrame() Frame {
	r := geom.Normalize(s.drag.origin, s.drag.current)
	return Frame{
		Screen:    s.screen,
		Selection: r,
		Selecting: true,
		Label:     SizeLabel(r),
		LabelAt:   geom.Point{X: r.Left + LabelOffset.X, Y: r.Top + LabelOffset.Y},
	}
}

func (s *Selection) redraw(f Frame) {
	if s.renderer != nil {
		s.renderer.Redraw(f)
	}
}

// SizeLabel formats the caption shown next to the selection.
func SizeLabel(r geom.Rect) string {
	return fmt.Sprintf("%d x %d", r.Width(), r.Height())
}
