package gui

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeImageByExtension(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	img.SetNRGBA(1, 1, color.NRGBA{R: 200, A: 255})

	tests := []struct {
		name string
		want imaging.Format
	}{
		{"shot.png", imaging.PNG},
		{"shot.PNG", imaging.PNG},
		{"shot.jpg", imaging.JPEG},
		{"shot.jpeg", imaging.JPEG},
		{"shot.bmp", imaging.PNG},
		{"shot", imaging.PNG},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			got, err := encodeImage(&buf, tt.name, img)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			decoded, err := imaging.Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, img.Bounds(), decoded.Bounds())
		})
	}
}
