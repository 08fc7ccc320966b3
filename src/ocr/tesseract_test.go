//go:build cgo

package ocr

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

func drawText(img *image.RGBA, x, y int, text string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

func TestTesseractRecognize(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 240, 80))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	drawText(img, 10, 25, "HELLO WORLD")
	drawText(img, 10, 60, "SECOND LINE")

	e, err := New(Options{Engine: EngineTesseract, Language: "eng", Preprocess: true})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := e.Recognize(ctx, img)
	if err != nil {
		t.Skipf("tesseract not usable here: %v", err)
	}
	if !res.Aligned() {
		t.Fatalf("texts and polygons out of step: %d vs %d", len(res.Texts), len(res.Polygons))
	}
	for i, p := range res.Polygons {
		if !p.Bounds().In(img.Bounds().Inset(-2)) {
			t.Errorf("polygon %d %v outside image %v", i, p.Bounds(), img.Bounds())
		}
	}
	t.Logf("recognized: %q", strings.Join(res.Texts, "|"))
}

func TestTesseractHonoursCancelledContext(t *testing.T) {
	e, err := New(Options{Engine: EngineTesseract})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Recognize(ctx, image.NewRGBA(image.Rect(0, 0, 10, 10))); err == nil {
		t.Log("tesseract finished before cancellation was observed")
	}
}
