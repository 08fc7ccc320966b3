package messages

import (
	"fmt"
	"image"
	"strings"
)

// Kind names a pipeline entry point.
type Kind string

const (
	RequestCapture        Kind = "request-capture"
	RequestClipboardPaste Kind = "request-clipboard-paste"
	RequestOCR            Kind = "request-ocr"
	// RecognizeImage runs recognition on an image the user already has on
	// screen, e.g. from a pinned window's context menu.
	RecognizeImage Kind = "recognize-image"
)

// Kinds lists the triggers external producers (hotkeys, tray, IPC) may send.
var Kinds = []Kind{RequestCapture, RequestClipboardPaste, RequestOCR}

func (k Kind) String() string { return string(k) }

// ParseKind accepts a trigger name with or without the "request-" prefix.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range append(Kinds, RecognizeImage) {
		if s == string(k) || "request-"+s == string(k) {
			return k, nil
		}
	}
	switch s {
	case "paste", "clipboard":
		return RequestClipboardPaste, nil
	}
	return "", fmt.Errorf("unknown trigger %q", s)
}

// Source identifies who produced a trigger.
const (
	SourceHotkey  = "hotkey"
	SourceTray    = "tray"
	SourceIPC     = "ipc"
	SourceWindow  = "window"
	SourceRunOnce = "run-once"
)

// Trigger is the only value that crosses from producer goroutines into the
// event loop.
type Trigger struct {
	Kind   Kind
	Source string
	// Image is set for RecognizeImage.
	Image image.Image
	// Reply, when non-nil, receives exactly one Reply for RequestOCR.
	Reply chan<- Reply
	// OutputToStdout selects how a delegated RequestOCR returns its text.
	OutputToStdout bool
}

func (t Trigger) String() string {
	return fmt.Sprintf("%s from %s", t.Kind, t.Source)
}

// Reply carries the outcome of a delegated request back to its producer.
type Reply struct {
	Text string
	Err  error
}
