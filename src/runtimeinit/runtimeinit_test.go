package runtimeinit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imgpaste/src/config"
	"imgpaste/src/ocr"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvPathVar, "")
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv(config.APIKeyPathEnvVar, t.TempDir()+"/missing")
	t.Setenv("MODEL", "")
	t.Setenv("OCR_ENGINE", "")
}

func TestBootstrapLLMRequiresKeyAndModel(t *testing.T) {
	isolateEnv(t)
	t.Setenv("OCR_ENGINE", "llm")

	_, err := Bootstrap(context.Background(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENROUTER_API_KEY")

	t.Setenv("OPENROUTER_API_KEY", "sk-test")
	_, err = Bootstrap(context.Background(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MODEL")
}

func TestBootstrapLLMEngine(t *testing.T) {
	isolateEnv(t)
	t.Setenv("OCR_ENGINE", "llm")
	t.Setenv("OPENROUTER_API_KEY", "sk-test")
	t.Setenv("MODEL", "some/model")
	t.Setenv("LINE_THRESHOLD", "14")
	t.Setenv("OCR_DEADLINE_SEC", "5")

	var loggingEnabled *bool
	rt, err := Bootstrap(context.Background(), Options{
		SetupLogging: func(b bool) { loggingEnabled = &b },
	})
	require.NoError(t, err)
	require.NotNil(t, loggingEnabled)
	assert.Equal(t, ocr.EngineLLM, rt.Engine.Name())

	opts := rt.RecognizeOptions("cycle1")
	assert.Equal(t, "cycle1", opts.CycleID)
	assert.Equal(t, 5*time.Second, opts.Deadline)
	assert.Equal(t, 14.0, opts.Reflow.LineThreshold)
	assert.Equal(t, config.DefaultAnnotateColor, opts.Annotate.Color)
}

func TestNewLLMClientSkippedForTesseract(t *testing.T) {
	c, err := newLLMClient(&config.Config{Engine: config.EngineTesseract})
	assert.NoError(t, err)
	assert.Nil(t, c)
}

// A cancelled context fails the startup ping before any request leaves.
func TestBootstrapPingFailure(t *testing.T) {
	isolateEnv(t)
	t.Setenv("OCR_ENGINE", "llm")
	t.Setenv("OPENROUTER_API_KEY", "sk-test")
	t.Setenv("MODEL", "some/model")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Bootstrap(ctx, Options{PingLLM: true})
	assert.Error(t, err)
}
