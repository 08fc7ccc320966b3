package gui

import (
	"image"
	"image/color"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"imgpaste/src/clipboard"
	"imgpaste/src/messages"
	"imgpaste/src/session"
)

const pinnedBorder = 3

// newPinnedWindow creates a borderless window where the driver supports it.
func (u *UI) newPinnedWindow(title string) fyne.Window {
	if drv, ok := u.app.Driver().(desktop.Driver); ok {
		w := drv.CreateSplashWindow()
		w.SetTitle(title)
		return w
	}
	return u.app.NewWindow(title)
}

// showImageWindow pins img on screen. Must run on the fyne thread.
func (u *UI) showImageWindow(img image.Image, title string) fyne.Window {
	w := u.newPinnedWindow(title)
	w.SetPadded(false)

	view := newImageView(img, pinnedZoom)
	scale := canvas.NewText(view.zoom.Percent(), selectionBlue)
	scale.TextStyle = fyne.TextStyle{Bold: true}

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = selectionBlue
	border.StrokeWidth = pinnedBorder

	content := container.NewStack(
		container.NewPadded(container.NewCenter(view)),
		border,
		container.NewVBox(container.NewHBox(scale, layout.NewSpacer())),
	)
	w.SetContent(content)

	view.onZoom = func(z *Zoom) {
		scale.Text = z.Percent()
		scale.Refresh()
		w.Resize(content.MinSize())
	}
	view.onDoubleTap = w.Close
	view.menu = func() *fyne.Menu {
		return fyne.NewMenu("",
			fyne.NewMenuItem("Copy image", func() {
				if err := clipboard.WriteImage(img); err != nil {
					log.Printf("Copy image failed: %v", err)
					dialog.ShowError(err, w)
				}
			}),
			fyne.NewMenuItem("OCR", func() {
				u.post(messages.Trigger{Kind: messages.RecognizeImage, Source: messages.SourceWindow, Image: img})
			}),
			fyne.NewMenuItem("Save image...", func() { saveImage(w, img) }),
			fyne.NewMenuItemSeparator(),
			fyne.NewMenuItem("Close", w.Close),
		)
	}

	w.Resize(content.MinSize())
	w.Show()
	return w
}

// showResultWindow shows the annotated image next to the editable text.
// Must run on the fyne thread.
func (u *UI) showResultWindow(res session.Result) fyne.Window {
	w := u.app.NewWindow("OCR result")

	var view *imageView
	left := fyne.CanvasObject(widget.NewLabel("No image"))
	if res.Annotated != nil {
		view = newImageView(res.Annotated, resultZoom)
		left = container.NewScroll(container.NewCenter(view))
	}

	entry := widget.NewMultiLineEntry()
	entry.Wrapping = fyne.TextWrapWord
	entry.SetText(res.DisplayText())
	entry.SetMinRowsVisible(8)

	copyBtn := widget.NewButton("Copy to clipboard", func() {
		if err := clipboard.Write(entry.Text); err != nil {
			log.Printf("[%s] copy text failed: %v", res.CycleID, err)
			dialog.ShowError(err, w)
		}
	})
	copyBtn.Importance = widget.HighImportance
	resetBtn := widget.NewButton("Reset zoom", func() {
		if view != nil {
			view.resetZoom()
		}
	})

	right := container.NewBorder(nil, container.NewHBox(layout.NewSpacer(), resetBtn, copyBtn), nil, nil, entry)
	split := container.NewHSplit(left, right)
	split.Offset = 0.6

	w.SetContent(split)
	w.Resize(fyne.NewSize(900, 600))
	w.Show()
	return w
}
