// Package notification shows short desktop notifications through fyne.
package notification

import (
	"log"

	"fyne.io/fyne/v2"

	"imgpaste/src/logutil"
)

// MaxBodyLength caps the notification body; longer text is truncated.
const MaxBodyLength = 200

// Notifier sends notifications through a fyne app. A nil app only logs.
type Notifier struct {
	app fyne.App
}

func New(a fyne.App) *Notifier {
	return &Notifier{app: a}
}

// Show logs the message and, when an app is attached, raises a desktop
// notification. Safe to call from any goroutine.
func (n *Notifier) Show(title, message string) {
	body := Truncate(message, MaxBodyLength)
	log.Printf("Notification %q: %s", title, logutil.Sanitize(body, 100))
	if n == nil || n.app == nil {
		return
	}
	n.app.SendNotification(fyne.NewNotification(title, body))
}

// Truncate shortens s to limit runes, appending "..." when it cut anything.
func Truncate(s string, limit int) string {
	r := []rune(s)
	if limit <= 0 || len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
