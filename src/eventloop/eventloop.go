package eventloop

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"

	"imgpaste/src/clipboard"
	"imgpaste/src/messages"
	"imgpaste/src/overlay"
	"imgpaste/src/session"
	"imgpaste/src/singleinstance"
	"imgpaste/src/worker"
)

const busyMessage = "Busy, please retry"

// UI is the display side of the loop. Implementations must be safe to call
// from the loop goroutine and hand work to their own UI thread.
type UI interface {
	// ShowImage opens a floating window with img pinned on screen.
	ShowImage(img image.Image, title string)
	// ShowResult opens a result window with the annotated image and text.
	ShowResult(res session.Result)
	Notify(title, message string)
	SetBusy(busy bool)
}

// Loop is the single-threaded coordinator. Hotkeys, the tray, result
// windows and IPC clients only post triggers; every pipeline step is
// started from Run's goroutine.
type Loop struct {
	selector       overlay.Selector
	capture        session.CaptureFunc
	clipboardImage func() (image.Image, error)
	pool           *worker.Pool
	ui             UI
	srv            singleinstance.Server
	busy           bool
	triggers       chan messages.Trigger
	results        chan result
}

type Options struct {
	Selector  overlay.Selector
	Capture   session.CaptureFunc
	Recognize worker.RecognizeFunc
	UI        UI
	// Server is optional; without it no delegated requests are accepted.
	Server singleinstance.Server
	// ClipboardImage defaults to clipboard.ReadImage.
	ClipboardImage func() (image.Image, error)
	Workers        int
}

type result struct {
	res    session.Result
	err    error
	target resultTarget
}

type resultTarget interface {
	OnResult(res session.Result, err error)
	OnFailure(err error)
}

// windowTarget shows results in a result window and failures as notifications.
type windowTarget struct{ ui UI }

func (t windowTarget) OnResult(res session.Result, err error) {
	var recErr *session.RecognitionError
	if errors.As(err, &recErr) {
		t.ui.Notify("imgpaste", session.UserMessage(err))
	}
	t.ui.ShowResult(res)
}

func (t windowTarget) OnFailure(err error) {
	if msg := session.UserMessage(err); msg != "" {
		t.ui.Notify("imgpaste", msg)
	}
}

// delegatedResultTarget answers a run-once client and closes its connection.
type delegatedResultTarget struct {
	sink session.DelegatedTarget
	conn singleinstance.Conn
}

func newDelegatedResultTarget(conn singleinstance.Conn) delegatedResultTarget {
	return delegatedResultTarget{
		sink: session.DelegatedTarget{Conn: conn, OutputToStdout: conn.Request().OutputToStdout},
		conn: conn,
	}
}

func (t delegatedResultTarget) OnResult(res session.Result, err error) {
	defer t.conn.Close()
	if err != nil {
		_ = t.sink.OnFailure(err)
		return
	}
	if err := t.sink.OnSuccess(res.Text); err != nil {
		log.Printf("delegated delivery failed: %v", err)
		_ = t.sink.OnFailure(err)
	}
}

func (t delegatedResultTarget) OnFailure(err error) {
	defer t.conn.Close()
	_ = t.sink.OnFailure(err)
}

// replyTarget answers an in-process producer that supplied a reply channel.
// The channel must have room for one reply.
type replyTarget struct{ reply chan<- messages.Reply }

func (t replyTarget) OnResult(res session.Result, err error) {
	t.reply <- messages.Reply{Text: res.Text, Err: err}
}

func (t replyTarget) OnFailure(err error) {
	t.reply <- messages.Reply{Err: err}
}

// New creates a loop. Recognize and Selector are required by the
// triggers that use them.
func New(opts Options) *Loop {
	clip := opts.ClipboardImage
	if clip == nil {
		clip = clipboard.ReadImage
	}
	return &Loop{
		selector:       opts.Selector,
		capture:        opts.Capture,
		clipboardImage: clip,
		pool:           worker.New(opts.Workers, opts.Recognize),
		ui:             opts.UI,
		srv:            opts.Server,
		triggers:       make(chan messages.Trigger, 4),
		results:        make(chan result, 1),
	}
}

// Post hands a trigger to the loop without blocking. It returns false when
// the queue is full and the trigger was dropped.
func (l *Loop) Post(t messages.Trigger) bool {
	select {
	case l.triggers <- t:
		return true
	default:
		log.Printf("eventloop: dropped %s, queue full", t)
		return false
	}
}

func (l *Loop) setBusy(b bool) {
	l.busy = b
	if l.ui != nil {
		l.ui.SetBusy(b)
	}
}

// Run processes triggers, delegated requests and results until ctx is
// cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer l.pool.Close()

	var reqCh chan singleinstance.Conn
	if l.srv != nil {
		if err := l.srv.Start(ctx); err != nil {
			return fmt.Errorf("start resident server: %w", err)
		}
		defer l.srv.Close()
		log.Printf("Resident listening on 127.0.0.1:%d", l.srv.Port())

		// Accept loop in background to avoid blocking result handling
		reqCh = make(chan singleinstance.Conn, 4)
		go func() {
			defer close(reqCh)
			for {
				conn, err := l.srv.Next(ctx)
				if err != nil {
					return
				}
				select {
				case reqCh <- conn:
				case <-ctx.Done():
					conn.Close()
					return
				}
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t := <-l.triggers:
			l.dispatch(ctx, t)
		case conn, ok := <-reqCh:
			if !ok {
				reqCh = nil
				continue
			}
			l.handleConn(ctx, conn)
		case res := <-l.results:
			l.handleResult(res)
		}
	}
}

func (l *Loop) dispatch(ctx context.Context, t messages.Trigger) {
	log.Printf("eventloop: %s", t)
	switch t.Kind {
	case messages.RequestCapture:
		l.handleCapture(ctx)
	case messages.RequestClipboardPaste:
		l.handlePaste()
	case messages.RequestOCR:
		var target resultTarget = windowTarget{ui: l.ui}
		if t.Reply != nil {
			target = replyTarget{reply: t.Reply}
		}
		l.startOCR(ctx, target)
	case messages.RecognizeImage:
		if t.Image == nil {
			log.Printf("eventloop: %s without image", t)
			return
		}
		l.submit(ctx, session.NewCycleID(), t.Image, windowTarget{ui: l.ui})
	default:
		log.Printf("eventloop: unknown trigger %q", t.Kind)
	}
}

func (l *Loop) handleConn(ctx context.Context, conn singleinstance.Conn) {
	req := conn.Request()
	if req.Kind != messages.RequestOCR {
		_ = conn.RespondSuccess("")
		_ = conn.Close()
		l.dispatch(ctx, messages.Trigger{Kind: req.Kind, Source: messages.SourceIPC})
		return
	}
	l.startOCR(ctx, newDelegatedResultTarget(conn))
}

// handleCapture pins a screenshot of the selected region.
func (l *Loop) handleCapture(ctx context.Context) {
	cycleID := session.NewCycleID()
	img, region, err := session.SelectAndCapture(ctx, session.CaptureOptions{
		CycleID:  cycleID,
		Selector: l.selector,
		Capture:  l.capture,
	})
	if err != nil {
		windowTarget{ui: l.ui}.OnFailure(err)
		return
	}
	l.ui.ShowImage(img, fmt.Sprintf("Screenshot %dx%d", region.Width(), region.Height()))
}

// handlePaste pins the clipboard image. No image is a silent no-op.
func (l *Loop) handlePaste() {
	img, err := l.clipboardImage()
	if err != nil {
		log.Printf("WARNING: clipboard paste: %v", err)
		return
	}
	b := img.Bounds()
	l.ui.ShowImage(img, fmt.Sprintf("Clipboard %dx%d", b.Dx(), b.Dy()))
}

func (l *Loop) startOCR(ctx context.Context, target resultTarget) {
	if l.busy {
		log.Printf("eventloop: busy, rejecting OCR request")
		target.OnFailure(errors.New(busyMessage))
		return
	}

	cycleID := session.NewCycleID()
	img, _, err := session.SelectAndCapture(ctx, session.CaptureOptions{
		CycleID:  cycleID,
		Selector: l.selector,
		Capture:  l.capture,
	})
	if err != nil {
		target.OnFailure(err)
		return
	}
	l.submit(ctx, cycleID, img, target)
}

func (l *Loop) submit(ctx context.Context, cycleID string, img image.Image, target resultTarget) {
	if l.busy {
		target.OnFailure(errors.New(busyMessage))
		return
	}
	l.setBusy(true)
	submitted := l.pool.Submit(ctx, cycleID, img, func(res session.Result, err error) {
		select {
		case l.results <- result{res: res, err: err, target: target}:
		case <-ctx.Done():
		}
	})
	if !submitted {
		l.setBusy(false)
		target.OnFailure(errors.New(busyMessage))
	}
}

func (l *Loop) handleResult(r result) {
	defer l.setBusy(false)
	log.Printf("[%s] handleResult: text length=%d, err=%v", r.res.CycleID, len(r.res.Text), r.err)
	r.target.OnResult(r.res, r.err)
}
