package singleinstance

// This file defines the API for single-instance ownership and delegation to
// the resident process.

import (
	"context"

	"imgpaste/src/messages"
)

// Server owns the TCP endpoint and answers delegated requests.
type Server interface {
	// Start binds the first port of the range; if occupied another resident owns it.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next accepted connection as a Conn, or ctx error.
	Next(ctx context.Context) (Conn, error)
	// Close releases ownership and stops accepting clients.
	Close() error
}

// Conn represents one client connection and exposes request + response API.
type Conn interface {
	// Request returns the parsed client request.
	Request() Request
	// RespondSuccess sends success. For stdout mode, send text; for clipboard mode, send empty text.
	RespondSuccess(text string) error
	// RespondError sends an error with human-readable message.
	RespondError(msg string) error
	// Close closes the underlying connection.
	Close() error
}

// Request represents a single delegated client request.
type Request struct {
	// Kind is messages.RequestOCR for run-once requests, or the trigger a
	// "trigger" client asked the resident to fire.
	Kind           messages.Kind
	OutputToStdout bool
}

// Client attempts to delegate work to a resident server.
type Client interface {
	// TryRunOnce scans the port range, performs handshake, and delegates an OCR cycle.
	// If no resident is found, returns delegated=false, err=nil.
	TryRunOnce(ctx context.Context, outputToStdout bool) (delegated bool, text string, err error)
	// SendTrigger asks the resident to fire kind as if its hotkey was pressed.
	SendTrigger(ctx context.Context, kind messages.Kind) (delegated bool, err error)
}

// NewServer returns TCP implementation.
func NewServer(r Range) Server { return newTcpServer(r) }

// NewClient returns TCP implementation.
func NewClient(r Range) Client { return newTcpClient(r) }
