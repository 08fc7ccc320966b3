// Package runtimeinit loads configuration and builds the recognition stack
// shared by the resident app, run-once mode and the offline CLI.
package runtimeinit

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"imgpaste/src/annotate"
	"imgpaste/src/clipboard"
	"imgpaste/src/config"
	"imgpaste/src/llm"
	"imgpaste/src/logutil"
	"imgpaste/src/ocr"
	"imgpaste/src/reflow"
	"imgpaste/src/session"
)

type Options struct {
	LoadOptions  config.LoadOptions
	SetupLogging func(bool)
	// PingLLM verifies the endpoint at startup when the llm engine is selected.
	PingLLM bool
	// InitClipboard prepares the system clipboard; headless tools leave it off.
	InitClipboard bool
}

// Runtime is a configured recognition stack.
type Runtime struct {
	Config *config.Config
	Engine ocr.Engine
}

// Bootstrap loads configuration, sets up logging and builds the OCR engine.
func Bootstrap(ctx context.Context, opts Options) (*Runtime, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg.EnableFileLogging)
	}

	client, err := newLLMClient(cfg)
	if err != nil {
		return nil, err
	}
	if client != nil && opts.PingLLM {
		if err := client.Ping(ctx); err != nil {
			return nil, fmt.Errorf("startup check failed: %w", err)
		}
		log.Printf("LLM ping succeeded")
	}

	engine, err := ocr.New(ocr.Options{
		Engine:        cfg.Engine,
		Language:      cfg.Language,
		Level:         cfg.Level,
		MinConfidence: cfg.MinConfidence,
		Preprocess:    cfg.Preprocess,
		LLM:           client,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s engine: %w", cfg.Engine, err)
	}

	if opts.InitClipboard {
		if err := clipboard.Init(); err != nil {
			return nil, fmt.Errorf("failed to initialize clipboard: %w", err)
		}
	}

	log.Printf("OCR engine: %s (language=%s level=%s deadline=%ds threshold=%.1f)",
		engine.Name(), cfg.Language, cfg.Level, cfg.OCRDeadlineSec, cfg.LineThreshold)
	return &Runtime{Config: cfg, Engine: engine}, nil
}

// newLLMClient returns nil unless the llm engine is selected.
func newLLMClient(cfg *config.Config) (*llm.Client, error) {
	if cfg.Engine != config.EngineLLM {
		return nil, nil
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY is required for the llm engine. Checked key file %s and OPENROUTER_API_KEY env var", cfg.APIKeyPath)
	}
	if cfg.Model == "" {
		return nil, errors.New("MODEL is required for the llm engine. Please set it in your .env file")
	}
	log.Printf("LLM model %s, key %s", cfg.Model, logutil.RedactKey(cfg.APIKey))
	return llm.New(llm.Config{APIKey: cfg.APIKey, Model: cfg.Model, Providers: cfg.Providers}), nil
}

// RecognizeOptions derives per-cycle recognition options from the config.
func (r *Runtime) RecognizeOptions(cycleID string) session.RecognizeOptions {
	return session.RecognizeOptions{
		CycleID:  cycleID,
		Engine:   r.Engine,
		Deadline: time.Duration(r.Config.OCRDeadlineSec) * time.Second,
		Reflow:   reflow.Options{LineThreshold: r.Config.LineThreshold},
		Annotate: annotate.Style{Color: r.Config.AnnotateColor, Width: 2},
	}
}

// Recognize runs one recognition cycle with the configured options.
func (r *Runtime) Recognize(ctx context.Context, cycleID string, img image.Image) (session.Result, error) {
	return session.Recognize(ctx, img, r.RecognizeOptions(cycleID))
}
