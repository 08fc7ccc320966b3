package ocr

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imgpaste/src/llm"
)

func TestLanguages(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"eng", []string{"eng"}},
		{"eng+deu", []string{"eng", "deu"}},
		{" eng + chi_sim ", []string{"eng", "chi_sim"}},
		{"", []string{"eng"}},
		{"++", []string{"eng"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Languages(tt.in))
		})
	}
}

func TestBuildResult(t *testing.T) {
	boxes := []box{
		{rect: image.Rect(20, 40, 60, 60), text: " Hello ", confidence: 91},
		{rect: image.Rect(0, 0, 10, 10), text: "   ", confidence: 99},
		{rect: image.Rect(80, 40, 120, 60), text: "noise", confidence: 12},
		{rect: image.Rect(0, 100, 40, 120), text: "World", confidence: 88},
	}

	res := buildResult(boxes, 2, 50)
	require.True(t, res.Aligned())
	require.Equal(t, []string{"Hello", "World"}, res.Texts)

	assert.Equal(t, 10.0, res.Polygons[0].MinX())
	assert.Equal(t, 25.0, res.Polygons[0].CenterY())
	assert.Equal(t, 55.0, res.Polygons[1].CenterY())
}

func TestBuildResultEmpty(t *testing.T) {
	res := buildResult(nil, 1, 0)
	assert.Equal(t, 0, res.Len())
	assert.True(t, res.Aligned())
}

func TestPrepareUpscalesShortImages(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 16))
	out, scale := prepare(src)
	assert.Equal(t, 4.0, scale)
	assert.Equal(t, 400, out.Bounds().Dx())
	assert.Equal(t, 64, out.Bounds().Dy())

	src = image.NewRGBA(image.Rect(0, 0, 300, 200))
	out, scale = prepare(src)
	assert.Equal(t, 1.0, scale)
	assert.Equal(t, src.Bounds().Size(), out.Bounds().Size())
}

func TestPrepareGrayscale(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 80, 80))
	for i := 0; i < 80; i++ {
		src.Set(i, i, color.RGBA{R: 200, G: 30, B: 90, A: 255})
	}
	out, _ := prepare(src)
	r, g, b, _ := out.At(10, 10).RGBA()
	assert.Equal(t, r, g)
	assert.Equal(t, g, b)
}

func TestNew(t *testing.T) {
	_, err := New(Options{Engine: "abbyy"})
	assert.ErrorIs(t, err, ErrUnknown)

	_, err = New(Options{Engine: EngineLLM})
	assert.Error(t, err, "llm engine without client")

	e, err := New(Options{Engine: "LLM", LLM: llm.New(llm.Config{APIKey: "k", Model: "m"})})
	require.NoError(t, err)
	assert.Equal(t, EngineLLM, e.Name())

	e, err = New(Options{Engine: EngineTesseract})
	if errors.Is(err, ErrUnavailable) {
		t.Logf("tesseract not compiled in: %v", err)
		return
	}
	require.NoError(t, err)
	assert.Equal(t, EngineTesseract, e.Name())
}

func visionServer(content string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(llm.ChatResponse{Choices: []llm.Choice{{Message: llm.ResponseMessage{Content: content}}}})
	}))
}

func TestLLMEngine(t *testing.T) {
	srv := visionServer("first line\r\n\r\nsecond line  \n")
	defer srv.Close()

	e := &LLMEngine{client: llm.New(llm.Config{APIKey: "k", Model: "m"}).WithEndpoint(srv.URL)}
	res, err := e.Recognize(context.Background(), image.NewRGBA(image.Rect(0, 0, 4, 4)))
	require.NoError(t, err)
	assert.Equal(t, []string{"first line", "second line"}, res.Texts)
	assert.Nil(t, res.Polygons)
	assert.False(t, res.Aligned())
}

func TestLLMEngineNoText(t *testing.T) {
	srv := visionServer("NO_TEXT_FOUND")
	defer srv.Close()

	e := &LLMEngine{client: llm.New(llm.Config{APIKey: "k", Model: "m"}).WithEndpoint(srv.URL)}
	res, err := e.Recognize(context.Background(), image.NewRGBA(image.Rect(0, 0, 4, 4)))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Len())
}
