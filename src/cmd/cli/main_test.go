package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imgpaste/src/config"
	"imgpaste/src/geom"
	"imgpaste/src/ocr"
	"imgpaste/src/runtimeinit"
)

type fakeEngine struct{ res ocr.Result }

func (fakeEngine) Name() string { return "fake" }

func (f fakeEngine) Recognize(ctx context.Context, img image.Image) (ocr.Result, error) {
	return f.res, nil
}

func quad(minX, minY, maxX, maxY int) geom.Polygon {
	return geom.QuadFromRect(image.Rect(minX, minY, maxX, maxY))
}

func testRuntime(res ocr.Result) *runtimeinit.Runtime {
	return &runtimeinit.Runtime{
		Config: &config.Config{
			OCRDeadlineSec: 5,
			LineThreshold:  config.DefaultLineThreshold,
			AnnotateColor:  config.DefaultAnnotateColor,
		},
		Engine: fakeEngine{res: res},
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

var twoLines = ocr.Result{
	Texts:    []string{"World", "c", "Hello"},
	Polygons: []geom.Polygon{quad(50, 5, 90, 15), quad(0, 40, 20, 60), quad(0, 7, 40, 17)},
}

func TestProcessPlainText(t *testing.T) {
	var out bytes.Buffer
	err := process(context.Background(), testRuntime(twoLines), pngBytes(t, 100, 70), cliOptions{filePath: "in.png"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "HelloWorld\nc", out.String())
}

func TestProcessThresholdFlag(t *testing.T) {
	res := ocr.Result{
		Texts:    []string{"a", "b"},
		Polygons: []geom.Polygon{quad(0, 0, 10, 10), quad(20, 15, 30, 25)},
	}
	var out bytes.Buffer
	require.NoError(t, process(context.Background(), testRuntime(res), pngBytes(t, 40, 30), cliOptions{}, &out))
	assert.Equal(t, "a\nb", out.String())

	out.Reset()
	require.NoError(t, process(context.Background(), testRuntime(res), pngBytes(t, 40, 30), cliOptions{threshold: 15}, &out))
	assert.Equal(t, "ab", out.String())
}

func TestProcessJSON(t *testing.T) {
	var out bytes.Buffer
	err := process(context.Background(), testRuntime(twoLines), pngBytes(t, 100, 70), cliOptions{filePath: "in.png", jsonOutput: true}, &out)
	require.NoError(t, err)

	var result OCRResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, "HelloWorld\nc", result.Text)
	assert.Equal(t, "in.png", result.Source)
	assert.Equal(t, "fake", result.Engine)
	assert.Equal(t, 3, result.Fragments)
	assert.Equal(t, 12, result.CharCount)
	require.Len(t, result.Lines, 2)
	assert.Equal(t, "HelloWorld", result.Lines[0].Text)
	assert.Equal(t, "c", result.Lines[1].Text)
}

func TestProcessAnnotate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "annotated.png")
	var out bytes.Buffer
	err := process(context.Background(), testRuntime(twoLines), pngBytes(t, 100, 70), cliOptions{annotatePath: path}, &out)
	require.NoError(t, err)

	img, err := imaging.Open(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 70), img.Bounds())
	r, _, _, _ := img.At(50, 5).RGBA()
	assert.Equal(t, uint32(0xffff), r, "outline pixel should be red")
}

func TestProcessRejectsUndecodable(t *testing.T) {
	data := append(append([]byte{}, pngMagic...), 0, 1, 2)
	err := process(context.Background(), testRuntime(twoLines), data, cliOptions{}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestPNGValidation(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{
			name:    "ValidPNG",
			data:    []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0x00},
			wantErr: false,
		},
		{
			name:    "InvalidMagic",
			data:    []byte{0x00, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a},
			wantErr: true,
		},
		{
			name:    "TooShort",
			data:    []byte{0x89, 'P', 'N', 'G'},
			wantErr: true,
		},
		{
			name:    "Empty",
			data:    []byte{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePNG(tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("validatePNG() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestReadInput(t *testing.T) {
	data := pngBytes(t, 4, 4)

	t.Run("stdin", func(t *testing.T) {
		got, err := readInput("-", bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "in.png")
		require.NoError(t, os.WriteFile(path, data, 0o600))
		got, err := readInput(path, nil)
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := readInput(filepath.Join(t.TempDir(), "nope.png"), nil)
		assert.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := readInput("-", strings.NewReader(""))
		assert.EqualError(t, err, "input file is empty")
	})

	t.Run("too large", func(t *testing.T) {
		big := make([]byte, maxFileSize+10)
		copy(big, pngMagic)
		_, err := readInput("-", bytes.NewReader(big))
		assert.ErrorContains(t, err, "exceeds maximum size")
	})
}

func TestFileFlagRequired(t *testing.T) {
	cmd := newRootCmd(&cliOptions{})
	cmd.SetArgs([]string{})
	assert.Error(t, cmd.Execute())
}
