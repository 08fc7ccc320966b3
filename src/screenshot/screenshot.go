package screenshot

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/kbinani/screenshot"

	"imgpaste/src/geom"
)

// ErrNoDisplay is returned when no active display can be found.
var ErrNoDisplay = fmt.Errorf("no active displays found")

// VirtualBounds returns the union of all active display bounds.
func VirtualBounds() (geom.Rect, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return geom.Rect{}, ErrNoDisplay
	}
	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}
	return geom.FromImage(union), nil
}

// PrimaryBounds returns the bounds of the primary display (display 0).
// The selection overlay is hosted on this display.
func PrimaryBounds() (geom.Rect, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return geom.Rect{}, ErrNoDisplay
	}
	return geom.FromImage(screenshot.GetDisplayBounds(0)), nil
}

// Capture captures the entire virtual screen across all active displays.
func Capture() (*image.RGBA, error) {
	union, err := VirtualBounds()
	if err != nil {
		return nil, err
	}
	return screenshot.CaptureRect(union.Image())
}

// CaptureRect rasterizes exactly r. The returned image is r.Width() x
// r.Height() pixels. r must have area and lie inside the virtual screen.
func CaptureRect(r geom.Rect) (*image.RGBA, error) {
	if r.Empty() {
		return nil, fmt.Errorf("invalid region dimensions: width=%d, height=%d", r.Width(), r.Height())
	}
	virtual, err := VirtualBounds()
	if err != nil {
		return nil, err
	}
	if !virtual.Contains(r) {
		return nil, fmt.Errorf("region %v is outside the screen %v", r, virtual)
	}
	img, err := screenshot.CaptureRect(r.Image())
	if err != nil {
		return nil, fmt.Errorf("failed to capture region: %w", err)
	}
	return img, nil
}

// CaptureRegion captures r and returns it PNG encoded.
func CaptureRegion(r geom.Rect) ([]byte, error) {
	img, err := CaptureRect(r)
	if err != nil {
		return nil, err
	}
	return EncodePNG(img)
}

// EncodePNG converts an image to PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	return buf.Bytes(), nil
}
