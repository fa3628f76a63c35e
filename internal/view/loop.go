package view

import (
	"context"
	"errors"
)

// ErrLoopStopped is returned when work is submitted to a loop that has exited.
var ErrLoopStopped = errors.New("view loop stopped")

// Loop runs submitted functions one at a time on a single goroutine. State
// touched only from loop functions needs no further locking.
type Loop struct {
	queue chan func()
	done  chan struct{}
}

// NewLoop creates a loop. Call Run to start it.
func NewLoop() *Loop {
	return &Loop{
		queue: make(chan func(), 64),
		done:  make(chan struct{}),
	}
}

// Run processes submitted functions in order until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.queue:
			fn()
		}
	}
}

// Dispatch queues fn without waiting for it to run. It blocks only while the
// queue is full and reports false if the loop has stopped.
func (l *Loop) Dispatch(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.queue <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Do runs fn on the loop and waits for it to return.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	ok := l.Dispatch(func() {
		defer close(finished)
		fn()
	})
	if !ok {
		return ErrLoopStopped
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		// fn may have completed just before the loop exited.
		select {
		case <-finished:
			return nil
		default:
			return ErrLoopStopped
		}
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} { return l.done }
