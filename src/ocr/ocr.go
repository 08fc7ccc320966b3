// Package ocr wraps the text recognition engines. Every engine returns
// fragments as parallel text and polygon slices in the engine's own order.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"strings"

	"imgpaste/src/geom"
	"imgpaste/src/llm"
)

// Engine names accepted by New.
const (
	EngineTesseract = "tesseract"
	EngineLLM       = "llm"
)

// Recognition granularity for the tesseract engine.
const (
	LevelLine = "line"
	LevelWord = "word"
)

var (
	// ErrUnavailable is returned by engines that were not compiled in.
	ErrUnavailable = errors.New("ocr engine unavailable in this build")
	ErrUnknown     = errors.New("unknown ocr engine")
)

// Result holds recognized fragments. Texts[i] belongs to Polygons[i].
// Polygons are relative to the image's top-left corner. Engines that cannot
// locate text leave Polygons nil.
type Result struct {
	Texts    []string
	Polygons []geom.Polygon
}

// Len is the number of recognized fragments.
func (r Result) Len() int { return len(r.Texts) }

// Aligned reports whether every text has a polygon.
func (r Result) Aligned() bool { return len(r.Texts) == len(r.Polygons) }

// Engine recognizes text in an image.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, img image.Image) (Result, error)
}

type Options struct {
	Engine        string
	Language      string  // tesseract languages, "+" separated (e.g. "eng+deu")
	Level         string  // LevelLine or LevelWord
	MinConfidence float64 // 0..100, fragments below are dropped
	Preprocess    bool
	LLM           *llm.Client
}

// New builds the engine named in opts.
func New(opts Options) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Engine)) {
	case "", EngineTesseract:
		return newTesseract(opts)
	case EngineLLM:
		if opts.LLM == nil {
			return nil, fmt.Errorf("llm engine requires a configured client")
		}
		return &LLMEngine{client: opts.LLM}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknown, opts.Engine)
	}
}

// Languages splits a "+" separated language list, dropping blanks.
func Languages(list string) []string {
	var out []string
	for _, l := range strings.Split(list, "+") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		return []string{"eng"}
	}
	return out
}

// box is an engine-neutral detection used to assemble a Result.
type box struct {
	rect       image.Rectangle
	text       string
	confidence float64
}

// buildResult filters boxes and maps them back to original image
// coordinates by dividing by scale.
func buildResult(boxes []box, scale, minConfidence float64) Result {
	var res Result
	dropped := 0
	for _, b := range boxes {
		text := strings.TrimSpace(b.text)
		if text == "" {
			continue
		}
		if b.confidence < minConfidence {
			dropped++
			continue
		}
		poly := geom.QuadFromRect(b.rect)
		if scale > 0 && scale != 1 {
			poly = poly.Scale(1 / scale)
		}
		res.Texts = append(res.Texts, text)
		res.Polygons = append(res.Polygons, poly)
	}
	if dropped > 0 {
		log.Printf("OCR: dropped %d fragments below confidence %.0f", dropped, minConfidence)
	}
	return res
}

// LLMEngine reads text with a vision model. The model returns plain lines
// without positions, so Polygons stays nil and callers keep the line order.
type LLMEngine struct {
	client *llm.Client
}

func (e *LLMEngine) Name() string { return EngineLLM }

func (e *LLMEngine) Recognize(ctx context.Context, img image.Image) (Result, error) {
	data, err := encodePNG(img)
	if err != nil {
		return Result{}, err
	}
	text, err := e.client.QueryVision(ctx, data)
	if errors.Is(err, llm.ErrNoText) {
		return Result{}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("vision model: %w", err)
	}
	var res Result
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if line = strings.TrimRight(line, " \t"); line != "" {
			res.Texts = append(res.Texts, line)
		}
	}
	return res, nil
}
