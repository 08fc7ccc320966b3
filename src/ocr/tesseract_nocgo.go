//go:build !cgo

package ocr

import "fmt"

func newTesseract(Options) (Engine, error) {
	return nil, fmt.Errorf("%w: tesseract needs cgo", ErrUnavailable)
}
