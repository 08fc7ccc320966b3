package gui

import (
	"context"
	"image"
	"image/color"
	"log"
	"math"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"imgpaste/src/geom"
	"imgpaste/src/overlay"
	"imgpaste/src/screenshot"
)

var (
	selectionBlue = color.NRGBA{R: 0, G: 120, B: 255, A: 255}
	selectionFill = color.NRGBA{A: 80}
)

// Selector is the fyne overlay.Selector. It freezes the primary display
// into a full-screen window and lets the user drag a rectangle over it.
type Selector struct {
	app     fyne.App
	bounds  func() (geom.Rect, error)
	capture func(geom.Rect) (*image.RGBA, error)
}

func NewSelector(a fyne.App) *Selector {
	return &Selector{
		app:     a,
		bounds:  screenshot.PrimaryBounds,
		capture: screenshot.CaptureRect,
	}
}

type selectOutcome struct {
	rect geom.Rect
	ok   bool
	err  error
}

// Select blocks until the user completes or dismisses the overlay. It must
// not be called from the fyne thread.
func (s *Selector) Select(ctx context.Context) (geom.Rect, bool, error) {
	screen, err := s.bounds()
	if err != nil {
		return geom.Rect{}, false, err
	}
	backdrop, err := s.capture(screen)
	if err != nil {
		return geom.Rect{}, false, err
	}

	done := make(chan selectOutcome, 1)
	var sf *surface
	fyne.Do(func() {
		var openErr error
		sf, openErr = s.open(screen, backdrop, done)
		if openErr != nil {
			done <- selectOutcome{err: openErr}
		}
	})

	select {
	case o := <-done:
		if o.err != nil {
			return geom.Rect{}, false, o.err
		}
		return o.rect, !o.ok, nil
	case <-ctx.Done():
		fyne.Do(func() {
			if sf != nil {
				sf.abort()
			}
		})
		return geom.Rect{}, true, ctx.Err()
	}
}

func (s *Selector) open(screen geom.Rect, backdrop image.Image, done chan<- selectOutcome) (*surface, error) {
	w := s.app.NewWindow("Select region")
	var once sync.Once
	sf, err := newSurface(screen, backdrop, func(sel *overlay.Selection) {
		once.Do(func() {
			r, ok := sel.Result()
			log.Printf("Selection finished: state=%v region=%v", sel.State(), r)
			done <- selectOutcome{rect: r, ok: ok}
			w.Close()
		})
	})
	if err != nil {
		w.Close()
		return nil, err
	}

	w.SetPadded(false)
	w.SetContent(sf)
	w.SetFullScreen(true)
	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ev.Name == fyne.KeyEscape {
			sf.abort()
		}
	})
	w.SetCloseIntercept(sf.abort)
	w.Show()
	w.RequestFocus()
	return sf, nil
}

// surface is the full-screen widget that feeds pointer events into an
// overlay.Selection and paints its frames.
type surface struct {
	widget.BaseWidget

	screen   geom.Rect
	backdrop image.Image
	sel      *overlay.Selection
	frame    overlay.Frame
	last     fyne.Position
	onDone   func(*overlay.Selection)
	finished bool
}

func newSurface(screen geom.Rect, backdrop image.Image, onDone func(*overlay.Selection)) (*surface, error) {
	s := &surface{screen: screen, backdrop: backdrop, onDone: onDone}
	s.ExtendBaseWidget(s)
	s.sel = overlay.NewSelection(s)
	if err := s.sel.Arm(screen); err != nil {
		return nil, err
	}
	return s, nil
}

// Redraw implements overlay.Renderer.
func (s *surface) Redraw(f overlay.Frame) {
	s.frame = f
	s.Refresh()
}

func (s *surface) Cursor() desktop.Cursor { return desktop.CrosshairCursor }

func (s *surface) MouseDown(ev *desktop.MouseEvent) {
	switch ev.Button {
	case desktop.MouseButtonPrimary:
		s.last = ev.Position
		s.sel.PointerDown(s.toScreen(ev.Position))
	case desktop.MouseButtonSecondary:
		s.sel.Abort()
	}
	s.check()
}

func (s *surface) MouseUp(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	s.sel.PointerUp(s.toScreen(ev.Position))
	s.check()
}

func (s *surface) Dragged(ev *fyne.DragEvent) {
	s.last = ev.Position
	s.sel.PointerMove(s.toScreen(ev.Position))
}

func (s *surface) DragEnd() {
	s.sel.PointerUp(s.toScreen(s.last))
	s.check()
}

func (s *surface) abort() {
	s.sel.Abort()
	s.check()
}

func (s *surface) check() {
	if s.finished || !s.sel.Done() {
		return
	}
	s.finished = true
	if s.onDone != nil {
		s.onDone(s.sel)
	}
}

// scale converts widget units to screen pixels. The surface covers the
// whole screen, so the ratio of the two sizes is the device scale.
func (s *surface) scale() (float32, float32) {
	size := s.Size()
	if size.Width <= 0 || size.Height <= 0 {
		return 1, 1
	}
	return float32(s.screen.Width()) / size.Width, float32(s.screen.Height()) / size.Height
}

func (s *surface) toScreen(p fyne.Position) geom.Point {
	sx, sy := s.scale()
	return geom.Point{
		X: s.screen.Left + int(math.Round(float64(p.X*sx))),
		Y: s.screen.Top + int(math.Round(float64(p.Y*sy))),
	}
}

func (s *surface) fromScreen(p geom.Point) fyne.Position {
	sx, sy := s.scale()
	return fyne.NewPos(float32(p.X-s.screen.Left)/sx, float32(p.Y-s.screen.Top)/sy)
}

func (s *surface) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewImageFromImage(s.backdrop)
	bg.FillMode = canvas.ImageFillStretch
	bg.ScaleMode = canvas.ImageScalePixels

	outline := canvas.NewRectangle(selectionFill)
	outline.StrokeColor = selectionBlue
	outline.StrokeWidth = overlay.OutlineWidth

	label := canvas.NewText("", color.White)

	r := &surfaceRenderer{
		s:        s,
		backdrop: bg,
		dim:      canvas.NewRectangle(color.NRGBA{A: overlay.DimAlpha}),
		outline:  outline,
		label:    label,
	}
	r.objects = []fyne.CanvasObject{r.backdrop, r.dim, r.outline, r.label}
	r.place()
	return r
}

type surfaceRenderer struct {
	s        *surface
	backdrop *canvas.Image
	dim      *canvas.Rectangle
	outline  *canvas.Rectangle
	label    *canvas.Text
	objects  []fyne.CanvasObject
}

func (r *surfaceRenderer) Layout(size fyne.Size) {
	r.backdrop.Resize(size)
	r.dim.Resize(size)
	r.place()
}

func (r *surfaceRenderer) MinSize() fyne.Size { return fyne.NewSize(1, 1) }

func (r *surfaceRenderer) Refresh() {
	r.place()
	r.outline.Refresh()
	r.label.Refresh()
}

func (r *surfaceRenderer) Objects() []fyne.CanvasObject { return r.objects }

func (r *surfaceRenderer) Destroy() {}

func (r *surfaceRenderer) place() {
	f := r.s.frame
	r.outline.Hidden = !f.Selecting
	r.label.Hidden = !f.Selecting
	if !f.Selecting {
		return
	}
	topLeft := r.s.fromScreen(geom.Point{X: f.Selection.Left, Y: f.Selection.Top})
	bottomRight := r.s.fromScreen(geom.Point{X: f.Selection.Right, Y: f.Selection.Bottom})
	r.outline.Move(topLeft)
	r.outline.Resize(fyne.NewSize(bottomRight.X-topLeft.X, bottomRight.Y-topLeft.Y))

	r.label.Text = f.Label
	r.label.Move(topLeft.AddXY(float32(overlay.LabelOffset.X), float32(overlay.LabelOffset.Y)))
}
