//go:build cgo

package ocr

import (
	"context"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract runs the local tesseract engine through gosseract. A client is
// created per call since gosseract clients are not safe for concurrent use.
type Tesseract struct {
	languages     []string
	level         gosseract.PageIteratorLevel
	minConfidence float64
	preprocess    bool
}

func newTesseract(opts Options) (Engine, error) {
	level := gosseract.RIL_TEXTLINE
	switch opts.Level {
	case "", LevelLine:
	case LevelWord:
		level = gosseract.RIL_WORD
	default:
		return nil, fmt.Errorf("unknown OCR level %q", opts.Level)
	}
	return &Tesseract{
		languages:     Languages(opts.Language),
		level:         level,
		minConfidence: opts.MinConfidence,
		preprocess:    opts.Preprocess,
	}, nil
}

func (t *Tesseract) Name() string { return EngineTesseract }

// Recognize blocks until tesseract finishes or ctx is done. Tesseract itself
// cannot be interrupted; on cancellation its result is discarded.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (Result, error) {
	type outcome struct {
		res Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := t.recognize(img)
		done <- outcome{res, err}
	}()
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case o := <-done:
		return o.res, o.err
	}
}

func (t *Tesseract) recognize(img image.Image) (Result, error) {
	start := time.Now()
	src, scale := img, 1.0
	if t.preprocess {
		src, scale = prepare(img)
	}
	data, err := encodePNG(src)
	if err != nil {
		return Result{}, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.languages...); err != nil {
		return Result{}, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return Result{}, fmt.Errorf("failed to set image: %w", err)
	}
	boxes, err := client.GetBoundingBoxes(t.level)
	if err != nil {
		return Result{}, fmt.Errorf("tesseract OCR failed: %w", err)
	}

	converted := make([]box, len(boxes))
	for i, b := range boxes {
		converted[i] = box{rect: b.Box, text: b.Word, confidence: b.Confidence}
	}
	res := buildResult(converted, scale, t.minConfidence)
	log.Printf("OCR: tesseract found %d fragments in %v (scale %.2f)", res.Len(), time.Since(start), scale)
	return res, nil
}
