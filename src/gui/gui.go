// Package gui is the fyne front end: the region selection overlay, pinned
// image windows and result windows. Every exported method may be called
// from any goroutine; window work is handed to the fyne thread.
package gui

import (
	"image"
	"log"

	"fyne.io/fyne/v2"

	"imgpaste/src/messages"
	"imgpaste/src/notification"
	"imgpaste/src/session"
)

type Options struct {
	// Post delivers triggers raised from windows, such as OCR of a pinned image.
	Post     func(messages.Trigger)
	Notifier *notification.Notifier
	// OnBusy is told when recognition starts and stops.
	OnBusy func(busy bool)
}

// UI implements the event loop's display side.
type UI struct {
	app      fyne.App
	post     func(messages.Trigger)
	notifier *notification.Notifier
	onBusy   func(bool)
}

func New(a fyne.App, opts Options) *UI {
	post := opts.Post
	if post == nil {
		post = func(t messages.Trigger) { log.Printf("gui: no receiver for %s", t) }
	}
	n := opts.Notifier
	if n == nil {
		n = notification.New(a)
	}
	return &UI{app: a, post: post, notifier: n, onBusy: opts.OnBusy}
}

func (u *UI) ShowImage(img image.Image, title string) {
	if img == nil {
		return
	}
	fyne.Do(func() { u.showImageWindow(img, title) })
}

func (u *UI) ShowResult(res session.Result) {
	log.Printf("[%s] showing result: %d fragments, %d lines", res.CycleID, res.Fragments, len(res.Lines))
	fyne.Do(func() { u.showResultWindow(res) })
}

func (u *UI) Notify(title, message string) {
	u.notifier.Show(title, message)
}

func (u *UI) SetBusy(busy bool) {
	if u.onBusy != nil {
		u.onBusy(busy)
	}
}
