package session

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoSelection means the user dismissed the overlay or dragged a
// zero-area rectangle. Callers treat it as a silent no-op.
var ErrNoSelection = errors.New("no selection")

// ErrorCode classifies capture failures.
type ErrorCode string

const (
	ErrorNoDisplay      ErrorCode = "NO_DISPLAY"
	ErrorSelectorFailed ErrorCode = "SELECTOR_FAILED"
	ErrorOutsideScreen  ErrorCode = "OUTSIDE_SCREEN"
	ErrorCaptureFailed  ErrorCode = "CAPTURE_FAILED"
	ErrorOCRFailed      ErrorCode = "OCR_FAILED"
	ErrorOCRTimeout     ErrorCode = "OCR_TIMEOUT"
)

// CaptureError is a recoverable failure to obtain pixels for a cycle.
// It is shown to the user; the next cycle starts fresh.
type CaptureError struct {
	Code      ErrorCode
	Message   string
	CycleID   string
	Timestamp time.Time
	Cause     error
}

func (e *CaptureError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CaptureError) Unwrap() error { return e.Cause }

func newCaptureError(code ErrorCode, cycleID, msg string, cause error) *CaptureError {
	return &CaptureError{Code: code, Message: msg, CycleID: cycleID, Timestamp: time.Now(), Cause: cause}
}

// RecognitionError reports that the OCR engine failed. The cycle still
// yields a Result so the captured image can be displayed.
type RecognitionError struct {
	Code    ErrorCode
	Engine  string
	CycleID string
	Cause   error
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("%s: engine %s failed: %v", e.Code, e.Engine, e.Cause)
}

func (e *RecognitionError) Unwrap() error { return e.Cause }

// UserMessage turns an error into the short text shown in a notification.
// It returns "" for outcomes that must stay silent.
func UserMessage(err error) string {
	var capErr *CaptureError
	var recErr *RecognitionError
	switch {
	case err == nil, errors.Is(err, ErrNoSelection):
		return ""
	case errors.As(err, &capErr):
		return "Capture failed: " + capErr.Message
	case errors.As(err, &recErr):
		if recErr.Code == ErrorOCRTimeout {
			return "Text recognition timed out"
		}
		return "Text recognition failed"
	default:
		return err.Error()
	}
}
