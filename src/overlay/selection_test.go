package overlay

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imgpaste/src/geom"
)

var fullHD = geom.Rect{Left: 0, Top: 0, Right: 1920, Bottom: 1080}

type recorder struct {
	frames []Frame
}

func (r *recorder) Redraw(f Frame) { r.frames = append(r.frames, f) }

func (r *recorder) last() Frame { return r.frames[len(r.frames)-1] }

func drag(t *testing.T, screen geom.Rect, from, to geom.Point) *Selection {
	t.Helper()
	s := NewSelection(nil)
	require.NoError(t, s.Arm(screen))
	s.PointerDown(from)
	s.PointerMove(to)
	s.PointerUp(to)
	return s
}

func TestSelectionScenarios(t *testing.T) {
	tests := []struct {
		name     string
		from, to geom.Point
		want     geom.Rect
		ok       bool
	}{
		{"reverse drag normalizes", geom.Point{X: 100, Y: 100}, geom.Point{X: 50, Y: 50}, geom.Rect{Left: 50, Top: 50, Right: 100, Bottom: 100}, true},
		{"right edge clamped", geom.Point{X: 1800, Y: 10}, geom.Point{X: 2000, Y: 50}, geom.Rect{Left: 1800, Top: 10, Right: 1920, Bottom: 50}, true},
		{"negative corner clamped", geom.Point{X: -40, Y: -40}, geom.Point{X: 30, Y: 20}, geom.Rect{Left: 0, Top: 0, Right: 30, Bottom: 20}, true},
		{"click without movement", geom.Point{X: 200, Y: 200}, geom.Point{X: 200, Y: 200}, geom.Rect{}, false},
		{"horizontal line", geom.Point{X: 10, Y: 300}, geom.Point{X: 400, Y: 300}, geom.Rect{}, false},
		{"entirely off screen", geom.Point{X: 2000, Y: 10}, geom.Point{X: 2100, Y: 90}, geom.Rect{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := drag(t, fullHD, tt.from, tt.to)
			got, ok := s.Result()
			if ok != tt.ok {
				t.Fatalf("Result ok = %v, expected %v (state %v)", ok, tt.ok, s.State())
			}
			if got != tt.want {
				t.Errorf("Result = %v, expected %v", got, tt.want)
			}
			if !tt.ok && s.State() != Cancelled {
				t.Errorf("state = %v, expected cancelled", s.State())
			}
		})
	}
}

func TestSelectionRedrawFrames(t *testing.T) {
	rec := &recorder{}
	s := NewSelection(rec)
	require.NoError(t, s.Arm(fullHD))

	require.Len(t, rec.frames, 1)
	assert.False(t, rec.last().Selecting)
	assert.Equal(t, fullHD, rec.last().Screen)

	s.PointerDown(geom.Point{X: 300, Y: 200})
	s.PointerMove(geom.Point{X: 100, Y: 150})

	f := rec.last()
	assert.True(t, f.Selecting)
	assert.Equal(t, geom.Rect{Left: 100, Top: 150, Right: 300, Bottom: 200}, f.Selection)
	assert.Equal(t, "200 x 50", f.Label)
	assert.Equal(t, geom.Point{X: 110, Y: 170}, f.LabelAt)
	assert.Equal(t, Dragging, s.State())

	n := len(rec.frames)
	s.PointerUp(geom.Point{X: 100, Y: 150})
	assert.Len(t, rec.frames, n, "pointer up should not redraw")
}

func TestSelectionIgnoresOutOfOrderEvents(t *testing.T) {
	rec := &recorder{}
	s := NewSelection(rec)

	s.PointerDown(geom.Point{X: 1, Y: 1})
	s.PointerMove(geom.Point{X: 5, Y: 5})
	s.PointerUp(geom.Point{X: 9, Y: 9})
	assert.Equal(t, Idle, s.State())
	assert.Empty(t, rec.frames)

	require.NoError(t, s.Arm(fullHD))
	s.PointerMove(geom.Point{X: 5, Y: 5})
	s.PointerUp(geom.Point{X: 9, Y: 9})
	assert.Equal(t, Armed, s.State())
	assert.Len(t, rec.frames, 1)
}

func TestSelectionArmErrors(t *testing.T) {
	s := NewSelection(nil)
	err := s.Arm(geom.Rect{Left: 0, Top: 0, Right: 0, Bottom: 100})
	assert.True(t, errors.Is(err, ErrEmptyScreen))
	assert.Equal(t, Idle, s.State())

	require.NoError(t, s.Arm(fullHD))
	assert.ErrorIs(t, s.Arm(fullHD), ErrNotIdle)
}

func TestSelectionAbort(t *testing.T) {
	t.Run("before pointer down", func(t *testing.T) {
		s := NewSelection(nil)
		require.NoError(t, s.Arm(fullHD))
		s.Abort()
		assert.Equal(t, Cancelled, s.State())
		assert.True(t, s.Done())
		_, ok := s.Result()
		assert.False(t, ok)
	})

	t.Run("while dragging", func(t *testing.T) {
		s := NewSelection(nil)
		require.NoError(t, s.Arm(fullHD))
		s.PointerDown(geom.Point{X: 10, Y: 10})
		s.PointerMove(geom.Point{X: 500, Y: 500})
		s.Abort()
		assert.Equal(t, Cancelled, s.State())

		s.PointerUp(geom.Point{X: 500, Y: 500})
		assert.Equal(t, Cancelled, s.State(), "late pointer up must not revive the selection")
	})

	t.Run("after completion", func(t *testing.T) {
		s := drag(t, fullHD, geom.Point{X: 10, Y: 10}, geom.Point{X: 60, Y: 40})
		s.Abort()
		r, ok := s.Result()
		assert.True(t, ok)
		assert.Equal(t, geom.Rect{Left: 10, Top: 10, Right: 60, Bottom: 40}, r)
	})
}

func TestSelectionCompletedIsImmutable(t *testing.T) {
	s := drag(t, fullHD, geom.Point{X: 10, Y: 10}, geom.Point{X: 60, Y: 40})
	want, _ := s.Result()

	s.PointerDown(geom.Point{X: 0, Y: 0})
	s.PointerMove(geom.Point{X: 900, Y: 900})
	s.PointerUp(geom.Point{X: 900, Y: 900})

	got, ok := s.Result()
	assert.True(t, ok)
	assert.Equal(t, want, got)
}

func TestSelectionRandomGestures(t *testing.T) {
	screens := []geom.Rect{
		fullHD,
		{Left: -1280, Top: 0, Right: 0, Bottom: 1024},
		{Left: 1920, Top: -200, Right: 4480, Bottom: 1240},
	}
	r := rand.New(rand.NewSource(1))
	coord := func(lo, hi int) int {
		span := hi - lo
		return lo - span/4 + r.Intn(span+span/2)
	}

	for i := 0; i < 2000; i++ {
		screen := screens[r.Intn(len(screens))]
		from := geom.Point{X: coord(screen.Left, screen.Right), Y: coord(screen.Top, screen.Bottom)}
		to := geom.Point{X: coord(screen.Left, screen.Right), Y: coord(screen.Top, screen.Bottom)}
		if r.Intn(10) == 0 {
			to = from
		}

		s := drag(t, screen, from, to)
		got, ok := s.Result()
		if from == to {
			require.False(t, ok, "zero-length drag at %v produced %v", from, got)
			continue
		}
		if !ok {
			require.Equal(t, Cancelled, s.State())
			continue
		}
		require.LessOrEqual(t, got.Left, got.Right)
		require.LessOrEqual(t, got.Top, got.Bottom)
		require.False(t, got.Empty())
		require.True(t, screen.Contains(got), "%v escapes %v", got, screen)
	}
}

func TestSizeLabel(t *testing.T) {
	assert.Equal(t, "640 x 480", SizeLabel(geom.Rect{Left: 0, Top: 0, Right: 640, Bottom: 480}))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "dragging", Dragging.String())
	assert.Equal(t, "state(9)", State(9).String())
}
