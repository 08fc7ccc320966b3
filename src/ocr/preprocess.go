package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// Small captures are upscaled so glyphs reach a height tesseract handles well.
const (
	minOCRHeight = 64
	maxUpscale   = 4
)

// prepare converts img to a high contrast grayscale image and upscales
// short captures. It returns the processed image and the scale applied.
func prepare(img image.Image) (image.Image, float64) {
	b := img.Bounds()
	scale := 1.0
	if b.Dy() > 0 && b.Dy() < minOCRHeight {
		scale = min(float64(minOCRHeight)/float64(b.Dy()), maxUpscale)
	}

	gray := effect.Grayscale(img)
	out := image.Image(adjust.Contrast(gray, 0.2))
	if scale != 1 {
		w := int(float64(b.Dx())*scale + 0.5)
		h := int(float64(b.Dy())*scale + 0.5)
		out = imaging.Resize(out, w, h, imaging.Lanczos)
		// Rounding changes the effective factor slightly; polygons are
		// scaled back with the real one.
		scale = float64(h) / float64(b.Dy())
	}
	return out, scale
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	return buf.Bytes(), nil
}
