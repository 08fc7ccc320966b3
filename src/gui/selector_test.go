package gui

import (
	"image"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imgpaste/src/geom"
	"imgpaste/src/overlay"
)

func newTestSurface(t *testing.T, screen geom.Rect) (*surface, *[]*overlay.Selection) {
	t.Helper()
	test.NewTempApp(t)
	var finished []*overlay.Selection
	sf, err := newSurface(screen, image.NewRGBA(screen.Image()), func(sel *overlay.Selection) {
		finished = append(finished, sel)
	})
	require.NoError(t, err)
	return sf, &finished
}

func press(sf *surface, x, y float32, b desktop.MouseButton) {
	sf.MouseDown(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)}, Button: b})
}

func TestSurfaceDragMapsToScreenPixels(t *testing.T) {
	screen := geom.Rect{Left: 0, Top: 0, Right: 1920, Bottom: 1080}
	sf, finished := newTestSurface(t, screen)
	sf.Resize(fyne.NewSize(960, 540))

	press(sf, 50, 50, desktop.MouseButtonPrimary)
	sf.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(10, 20)}})

	r := test.WidgetRenderer(sf).(*surfaceRenderer)
	assert.False(t, r.outline.Hidden)
	assert.Equal(t, fyne.NewPos(10, 20), r.outline.Position())
	assert.Equal(t, fyne.NewSize(40, 30), r.outline.Size())
	assert.Equal(t, "80 x 60", r.label.Text)
	assert.Equal(t, fyne.NewPos(20, 40), r.label.Position(), "label offset is in widget units")

	sf.DragEnd()
	sf.MouseUp(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(10, 20)}, Button: desktop.MouseButtonPrimary})

	require.Len(t, *finished, 1)
	got, ok := (*finished)[0].Result()
	assert.True(t, ok)
	assert.Equal(t, geom.Rect{Left: 20, Top: 40, Right: 100, Bottom: 100}, got)
}

func TestSurfaceOffsetScreen(t *testing.T) {
	screen := geom.Rect{Left: -1280, Top: 0, Right: 0, Bottom: 1024}
	sf, finished := newTestSurface(t, screen)
	sf.Resize(fyne.NewSize(1280, 1024))

	press(sf, 100, 100, desktop.MouseButtonPrimary)
	sf.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(300, 200)}})
	sf.DragEnd()

	require.Len(t, *finished, 1)
	got, ok := (*finished)[0].Result()
	assert.True(t, ok)
	assert.Equal(t, geom.Rect{Left: -1180, Top: 100, Right: -980, Bottom: 200}, got)
}

func TestSurfaceAborts(t *testing.T) {
	screen := geom.Rect{Left: 0, Top: 0, Right: 800, Bottom: 600}

	t.Run("right click", func(t *testing.T) {
		sf, finished := newTestSurface(t, screen)
		press(sf, 10, 10, desktop.MouseButtonSecondary)
		require.Len(t, *finished, 1)
		assert.Equal(t, overlay.Cancelled, (*finished)[0].State())
	})

	t.Run("escape while dragging", func(t *testing.T) {
		sf, finished := newTestSurface(t, screen)
		press(sf, 10, 10, desktop.MouseButtonPrimary)
		sf.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(90, 90)}})
		sf.abort()
		sf.DragEnd()
		require.Len(t, *finished, 1)
		assert.Equal(t, overlay.Cancelled, (*finished)[0].State())
	})

	t.Run("click without drag", func(t *testing.T) {
		sf, finished := newTestSurface(t, screen)
		press(sf, 10, 10, desktop.MouseButtonPrimary)
		sf.MouseUp(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(10, 10)}, Button: desktop.MouseButtonPrimary})
		require.Len(t, *finished, 1)
		_, ok := (*finished)[0].Result()
		assert.False(t, ok)
	})
}

func TestSurfaceRejectsEmptyScreen(t *testing.T) {
	test.NewTempApp(t)
	_, err := newSurface(geom.Rect{}, image.NewRGBA(image.Rect(0, 0, 1, 1)), nil)
	assert.ErrorIs(t, err, overlay.ErrEmptyScreen)
}
