package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"time"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"imgpaste/src/config"
	"imgpaste/src/runtimeinit"
	"imgpaste/src/session"
)

const (
	maxFileSizeMB = 10
	maxFileSize   = maxFileSizeMB * 1024 * 1024
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

type cliOptions struct {
	filePath     string
	jsonOutput   bool
	verbose      bool
	apiKeyPath   string
	engine       string
	threshold    float64
	annotatePath string
}

func main() {
	if err := newRootCmd(&cliOptions{}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ocr-tool",
		Short:         "Recognize and reflow the text in a PNG image",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(cmd.Context(), *opts, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.filePath, "file", "", "Path to PNG file (use '-' for stdin)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	cmd.Flags().StringVar(&opts.apiKeyPath, "api-key-path", "", "Path to API key file (highest precedence)")
	cmd.Flags().StringVar(&opts.engine, "engine", "", "OCR engine: tesseract or llm (overrides OCR_ENGINE)")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", 0, "Line grouping threshold in pixels (0 uses LINE_THRESHOLD)")
	cmd.Flags().StringVar(&opts.annotatePath, "annotate", "", "Write the image with recognized regions outlined to this path")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runWithOptions(ctx context.Context, opts cliOptions, stdin io.Reader, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	// Configure logging BEFORE any other operations.
	if opts.verbose {
		log.SetOutput(stderr)
		fmt.Fprintf(stderr, "[verbose] Starting OCR tool\n")
	} else {
		log.SetOutput(io.Discard)
	}

	rt, err := runtimeinit.Bootstrap(ctx, runtimeinit.Options{
		LoadOptions: config.LoadOptions{APIKeyPathOverride: opts.apiKeyPath, EngineOverride: opts.engine},
	})
	if err != nil {
		return err
	}
	if opts.verbose {
		fmt.Fprintf(stderr, "[verbose] Engine %s ready\n", rt.Engine.Name())
	}

	data, err := readInput(opts.filePath, stdin)
	if err != nil {
		return err
	}
	if opts.verbose {
		fmt.Fprintf(stderr, "[verbose] Read %d bytes\n", len(data))
	}
	return process(ctx, rt, data, opts, stdout)
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(io.LimitReader(r, maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("input file is empty")
	}
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("input file exceeds maximum size of %d MB", maxFileSizeMB)
	}
	if err := validatePNG(data); err != nil {
		return nil, err
	}
	return data, nil
}

func validatePNG(data []byte) error {
	if len(data) < len(pngMagic) || !bytes.Equal(data[:len(pngMagic)], pngMagic) {
		return errors.New("input is not a valid PNG file (invalid magic number)")
	}
	return nil
}

func process(ctx context.Context, rt *runtimeinit.Runtime, data []byte, opts cliOptions, stdout io.Writer) error {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode PNG: %w", err)
	}

	cycleID := session.NewCycleID()
	recOpts := rt.RecognizeOptions(cycleID)
	if opts.threshold > 0 {
		recOpts.Reflow.LineThreshold = opts.threshold
	}

	start := time.Now()
	res, err := session.Recognize(ctx, img, recOpts)
	elapsed := time.Since(start)
	if err != nil {
		return fmt.Errorf("OCR failed: %w", err)
	}

	if opts.annotatePath != "" {
		if err := saveAnnotated(res.Annotated, opts.annotatePath); err != nil {
			return err
		}
	}
	return outputResult(stdout, res, opts.filePath, rt.Engine.Name(), elapsed, opts.jsonOutput)
}

func saveAnnotated(img image.Image, path string) error {
	if img == nil {
		return errors.New("no annotated image to save")
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save annotated image: %w", err)
	}
	return nil
}

type OCRLine struct {
	Text    string  `json:"text"`
	CenterY float64 `json:"center_y"`
}

type OCRResult struct {
	Text      string    `json:"text"`
	Lines     []OCRLine `json:"lines,omitempty"`
	Fragments int       `json:"fragment_count"`
	Engine    string    `json:"engine"`
	Source    string    `json:"source"`
	Timestamp string    `json:"timestamp"`
	Duration  float64   `json:"duration_seconds"`
	CharCount int       `json:"character_count"`
}

func outputResult(w io.Writer, res session.Result, sourcePath, engine string, elapsed time.Duration, jsonOutput bool) error {
	if !jsonOutput {
		_, err := fmt.Fprint(w, res.Text)
		return err
	}

	out := OCRResult{
		Text:      res.Text,
		Fragments: res.Fragments,
		Engine:    engine,
		Source:    sourcePath,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Duration:  elapsed.Seconds(),
		CharCount: len([]rune(res.Text)),
	}
	for _, row := range res.Lines {
		out.Lines = append(out.Lines, OCRLine{Text: row.Text(), CenterY: row.CenterY})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}
