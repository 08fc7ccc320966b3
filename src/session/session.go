// Package session runs one capture and recognition cycle: select a region,
// rasterize it, recognize text, reflow it and annotate the image.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/google/uuid"

	"imgpaste/src/annotate"
	"imgpaste/src/geom"
	"imgpaste/src/logutil"
	"imgpaste/src/ocr"
	"imgpaste/src/overlay"
	"imgpaste/src/reflow"
	"imgpaste/src/screenshot"
)

// NoTextPlaceholder is displayed when a cycle recognized no text.
const NoTextPlaceholder = "No text recognized"

const defaultDeadline = 20 * time.Second

// NewCycleID returns a short identifier used to correlate log lines of one cycle.
func NewCycleID() string {
	return uuid.NewString()[:8]
}

// CaptureFunc rasterizes a screen rectangle.
type CaptureFunc func(geom.Rect) (image.Image, error)

// ScreenCapture is the CaptureFunc backed by the screenshot package.
func ScreenCapture(r geom.Rect) (image.Image, error) {
	img, err := screenshot.CaptureRect(r)
	if err != nil {
		return nil, err
	}
	return img, nil
}

type CaptureOptions struct {
	CycleID  string
	Selector overlay.Selector
	Capture  CaptureFunc
}

// SelectAndCapture asks the user for a region and rasterizes it. It returns
// ErrNoSelection when the user cancels and a *CaptureError on failure.
func SelectAndCapture(ctx context.Context, opts CaptureOptions) (image.Image, geom.Rect, error) {
	if opts.Selector == nil {
		return nil, geom.Rect{}, errors.New("Selector is required")
	}
	capture := opts.Capture
	if capture == nil {
		capture = ScreenCapture
	}

	region, cancelled, err := opts.Selector.Select(ctx)
	if err != nil {
		if errors.Is(err, screenshot.ErrNoDisplay) {
			return nil, geom.Rect{}, newCaptureError(ErrorNoDisplay, opts.CycleID, "no active display", err)
		}
		return nil, geom.Rect{}, newCaptureError(ErrorSelectorFailed, opts.CycleID, "region selection failed", err)
	}
	if cancelled || region.Empty() {
		log.Printf("[%s] selection cancelled", opts.CycleID)
		return nil, geom.Rect{}, ErrNoSelection
	}
	log.Printf("[%s] region selected: %v", opts.CycleID, region)

	img, err := capture(region)
	if err != nil {
		return nil, region, newCaptureError(ErrorCaptureFailed, opts.CycleID, fmt.Sprintf("could not capture %v", region), err)
	}
	if b := img.Bounds(); b.Dx() != region.Width() || b.Dy() != region.Height() {
		return nil, region, newCaptureError(ErrorOutsideScreen, opts.CycleID,
			fmt.Sprintf("captured %dx%d for region %v", b.Dx(), b.Dy(), region), nil)
	}
	return img, region, nil
}

type RecognizeOptions struct {
	CycleID  string
	Engine   ocr.Engine
	Deadline time.Duration
	Reflow   reflow.Options
	Annotate annotate.Style
}

// Result is everything the display needs for one recognized image.
type Result struct {
	CycleID string
	// Text is the reflowed text; "" when nothing was recognized.
	Text string
	// Annotated is a copy of the source image with fragment outlines.
	Annotated image.Image
	Source    image.Image
	Lines     []reflow.Row
	Fragments int
}

// DisplayText is Text, or NoTextPlaceholder when Text is empty.
func (r Result) DisplayText() string {
	if r.Text == "" {
		return NoTextPlaceholder
	}
	return r.Text
}

// Recognize runs OCR on img and reflows the fragments into reading order.
// On engine failure it returns a *RecognitionError together with a Result
// carrying the unannotated image, so the caller can still show it.
func Recognize(ctx context.Context, img image.Image, opts RecognizeOptions) (Result, error) {
	res := Result{CycleID: opts.CycleID, Source: img, Annotated: img}
	if img == nil {
		return res, &RecognitionError{Code: ErrorOCRFailed, CycleID: opts.CycleID, Cause: errors.New("no image")}
	}
	if opts.Engine == nil {
		return res, &RecognitionError{Code: ErrorOCRFailed, CycleID: opts.CycleID, Cause: errors.New("no OCR engine configured")}
	}

	deadline := opts.Deadline
	if deadline <= 0 {
		deadline = defaultDeadline
	}
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	start := time.Now()
	frags, err := opts.Engine.Recognize(ctx, img)
	if err != nil {
		code := ErrorOCRFailed
		if errors.Is(err, context.DeadlineExceeded) {
			code = ErrorOCRTimeout
		}
		log.Printf("[%s] recognition failed after %v: %v", opts.CycleID, time.Since(start), err)
		return res, &RecognitionError{Code: code, Engine: opts.Engine.Name(), CycleID: opts.CycleID, Cause: err}
	}

	if !frags.Aligned() && len(frags.Polygons) > 0 {
		log.Printf("[%s] %d texts but %d polygons, keeping engine order", opts.CycleID, len(frags.Texts), len(frags.Polygons))
	}

	res.Fragments = frags.Len()
	res.Text = reflow.Format(frags.Texts, frags.Polygons, opts.Reflow)
	if rows, ok := reflow.Rows(frags.Texts, frags.Polygons, opts.Reflow); ok {
		res.Lines = rows
	}
	if len(frags.Polygons) > 0 {
		res.Annotated = annotate.Outline(img, frags.Polygons, opts.Annotate)
	}

	log.Printf("[%s] recognized %d fragments in %v: %q", opts.CycleID, res.Fragments, time.Since(start), logutil.Sanitize(res.Text, 80))
	return res, nil
}
