package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"imgpaste/src/clipboard"
	"imgpaste/src/singleinstance"
)

// ResultTarget delivers the text of a headless cycle.
type ResultTarget interface {
	OnSuccess(text string) error
	OnFailure(err error) error
}

type ClipboardTarget struct{}

func (ClipboardTarget) OnSuccess(text string) error {
	return clipboard.Write(text)
}

func (ClipboardTarget) OnFailure(err error) error {
	return nil
}

type StdoutTarget struct {
	Writer io.Writer
}

func (t StdoutTarget) OnSuccess(text string) error {
	w := t.Writer
	if w == nil {
		w = os.Stdout
	}
	_, err := fmt.Fprint(w, text)
	return err
}

func (t StdoutTarget) OnFailure(err error) error {
	return nil
}

// DelegatedTarget answers a run-once client connected to the resident.
type DelegatedTarget struct {
	Conn           singleinstance.Conn
	OutputToStdout bool
}

func (t DelegatedTarget) OnSuccess(text string) error {
	if t.Conn == nil {
		return errors.New("delegated target missing connection")
	}
	if t.OutputToStdout {
		return t.Conn.RespondSuccess(text)
	}
	if err := clipboard.Write(text); err != nil {
		return fmt.Errorf("clipboard error: %w", err)
	}
	return t.Conn.RespondSuccess("")
}

func (t DelegatedTarget) OnFailure(err error) error {
	if t.Conn == nil {
		return nil
	}
	if err == nil {
		return t.Conn.RespondError("unknown session error")
	}
	if errors.Is(err, ErrNoSelection) {
		return t.Conn.RespondError("selection cancelled")
	}
	return t.Conn.RespondError(err.Error())
}

// Options configures Execute.
type Options struct {
	Capture   CaptureOptions
	Recognize RecognizeOptions
	Target    ResultTarget
}

// Execute runs a full cycle without a result window and hands the text to
// opts.Target. Used for run-once invocations.
func Execute(ctx context.Context, opts Options) (Result, error) {
	if opts.Target == nil {
		return Result{}, errors.New("Target is required")
	}
	if opts.Capture.CycleID == "" {
		opts.Capture.CycleID = NewCycleID()
	}
	opts.Recognize.CycleID = opts.Capture.CycleID

	img, _, err := SelectAndCapture(ctx, opts.Capture)
	if err != nil {
		_ = opts.Target.OnFailure(err)
		return Result{}, err
	}

	res, err := Recognize(ctx, img, opts.Recognize)
	if err != nil {
		_ = opts.Target.OnFailure(err)
		return res, err
	}

	if err := opts.Target.OnSuccess(res.Text); err != nil {
		_ = opts.Target.OnFailure(err)
		return res, err
	}
	return res, nil
}
