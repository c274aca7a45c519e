package loop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrRunning is returned by Run when the loop is already running.
var ErrRunning = errors.New("loop already running")

// Callback is invoked once per tick on the goroutine that called Run.
// It returns false to stop the loop.
type Callback func() bool

// Loop is a repeating per-frame task with explicit start and stop.
// Run must be called from the thread owning the GL context.
type Loop struct {
	callback Callback
	limiter  *Limiter

	running  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once
	ticks    atomic.Uint64
}

// New creates a loop that has not started. limiter may be nil.
func New(callback Callback, limiter *Limiter) *Loop {
	return &Loop{callback: callback, limiter: limiter, stop: make(chan struct{})}
}

// Run invokes the callback each tick until Stop is called, ctx is done,
// or the callback returns false. Each tick completes before the next begins.
// Once Stop has been called, Run returns nil without ticking.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer l.running.Store(false)

	for {
		select {
		case <-l.stop:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		l.ticks.Add(1)
		if !l.callback() {
			return nil
		}
		l.limiter.Wait()
	}
}

// Stop ends the loop after its current tick and keeps it stopped: a later
// Run returns at once. It is safe to call from any goroutine, more than once,
// or before Run.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Running reports whether Run is executing.
func (l *Loop) Running() bool {
	return l.running.Load()
}

// Ticks returns the number of callbacks started since the loop was created.
func (l *Loop) Ticks() uint64 {
	return l.ticks.Load()
}
