package gui

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

// imageView shows an image at a wheel-controlled scale.
type imageView struct {
	widget.BaseWidget

	img    *canvas.Image
	native fyne.Size
	zoom   Zoom

	onZoom      func(z *Zoom)
	onDoubleTap func()
	menu        func() *fyne.Menu
}

func newImageView(src image.Image, z Zoom) *imageView {
	b := src.Bounds()
	v := &imageView{
		img:    canvas.NewImageFromImage(src),
		native: fyne.NewSize(float32(b.Dx()), float32(b.Dy())),
		zoom:   z,
	}
	v.img.FillMode = canvas.ImageFillStretch
	v.img.ScaleMode = canvas.ImageScaleSmooth
	v.ExtendBaseWidget(v)
	v.apply()
	return v
}

func (v *imageView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.img)
}

// ScaledSize is the native size multiplied by the zoom level.
func (v *imageView) ScaledSize() fyne.Size {
	l := float32(v.zoom.Level())
	return fyne.NewSize(v.native.Width*l, v.native.Height*l)
}

func (v *imageView) Scrolled(ev *fyne.ScrollEvent) {
	v.zoom.Wheel(ev.Scrolled.DY)
	v.apply()
}

func (v *imageView) resetZoom() {
	v.zoom.Reset()
	v.apply()
}

func (v *imageView) apply() {
	v.img.SetMinSize(v.ScaledSize())
	v.Refresh()
	if v.onZoom != nil {
		v.onZoom(&v.zoom)
	}
}

func (v *imageView) DoubleTapped(*fyne.PointEvent) {
	if v.onDoubleTap != nil {
		v.onDoubleTap()
	}
}

func (v *imageView) TappedSecondary(ev *fyne.PointEvent) {
	if v.menu == nil {
		return
	}
	c := fyne.CurrentApp().Driver().CanvasForObject(v)
	if c == nil {
		return
	}
	widget.ShowPopUpMenuAtPosition(v.menu(), c, ev.AbsolutePosition)
}
