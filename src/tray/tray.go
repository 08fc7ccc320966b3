// Package tray installs the system tray menu. Menu items only post triggers.
package tray

import (
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"imgpaste/src/messages"
)

const (
	ocrLabel     = "OCR"
	ocrBusyLabel = "OCR (busy)"
)

type Tray struct {
	menu *fyne.Menu
	ocr  *fyne.MenuItem
}

// NewMenu builds the tray menu. Each item posts its trigger with
// SourceTray; quit is called for Quit.
func NewMenu(post func(messages.Trigger), quit func()) *Tray {
	item := func(label string, kind messages.Kind) *fyne.MenuItem {
		return fyne.NewMenuItem(label, func() {
			post(messages.Trigger{Kind: kind, Source: messages.SourceTray})
		})
	}
	t := &Tray{ocr: item(ocrLabel, messages.RequestOCR)}
	quitItem := fyne.NewMenuItem("Quit", quit)
	quitItem.IsQuit = true
	t.menu = fyne.NewMenu("imgpaste",
		item("Capture", messages.RequestCapture),
		t.ocr,
		item("Paste clipboard image", messages.RequestClipboardPaste),
		fyne.NewMenuItemSeparator(),
		quitItem,
	)
	return t
}

func (t *Tray) Menu() *fyne.Menu { return t.menu }

// Install attaches the menu to the app's system tray. It reports false when
// the driver has no tray support.
func (t *Tray) Install(a fyne.App) bool {
	desk, ok := a.(desktop.App)
	if !ok {
		log.Printf("tray: system tray not supported by this driver")
		return false
	}
	desk.SetSystemTrayIcon(Icon)
	desk.SetSystemTrayMenu(t.menu)
	return true
}

// SetBusy relabels the OCR item while recognition is running.
func (t *Tray) SetBusy(busy bool) {
	fyne.Do(func() {
		label := ocrLabel
		if busy {
			label = ocrBusyLabel
		}
		if t.ocr.Label == label {
			return
		}
		t.ocr.Label = label
		t.ocr.Disabled = busy
		t.menu.Refresh()
	})
}
