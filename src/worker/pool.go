package worker

import (
	"context"
	"fmt"
	"image"
	"log"
	"runtime"
	"sync"

	"imgpaste/src/session"
)

// RecognizeFunc performs recognition for one job. session.Recognize with
// bound options is the production implementation.
type RecognizeFunc func(ctx context.Context, cycleID string, img image.Image) (session.Result, error)

// ResultCallback is invoked on completion (from a worker goroutine).
// The event loop should pass a closure that posts back into the event loop safely.
type ResultCallback func(res session.Result, err error)

// Pool is a fixed-size recognition worker pool with a 1-slot input queue (strict back-pressure).
type Pool struct {
	recognize RecognizeFunc
	jobs      chan job
	wg        sync.WaitGroup
	closeOnce sync.Once
}

type job struct {
	ctx     context.Context
	cycleID string
	img     image.Image
	cb      ResultCallback
}

// New creates a worker pool. Size defaults to NumCPU when size<=0. Queue is 1 slot.
func New(size int, recognize RecognizeFunc) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	p := &Pool{recognize: recognize, jobs: make(chan job, 1)}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				p.run(j)
			}
		}()
	}
}

func (p *Pool) run(j job) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[%s] Worker: PANIC during recognition: %v", j.cycleID, r)
			j.cb(session.Result{CycleID: j.cycleID, Source: j.img, Annotated: j.img},
				&session.RecognitionError{Code: session.ErrorOCRFailed, CycleID: j.cycleID, Cause: panicError{r}})
		}
	}()
	b := j.img.Bounds()
	log.Printf("[%s] Worker: starting OCR for image %dx%d", j.cycleID, b.Dx(), b.Dy())
	res, err := p.recognize(j.ctx, j.cycleID, j.img)
	log.Printf("[%s] Worker: OCR completed, text length=%d, err=%v", j.cycleID, len(res.Text), err)
	j.cb(res, err)
}

// Submit enqueues a job if the single-slot queue is free. Returns false if dropped.
func (p *Pool) Submit(ctx context.Context, cycleID string, img image.Image, cb ResultCallback) bool {
	select {
	case p.jobs <- job{ctx: ctx, cycleID: cycleID, img: img, cb: cb}:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining current work. Safe to call more than once.
func (p *Pool) Close() {
	p.closeOnce.Do(func() { close(p.jobs) })
	p.wg.Wait()
}

type panicError struct{ v interface{} }

func (e panicError) Error() string { return fmt.Sprint("panic: ", e.v) }
