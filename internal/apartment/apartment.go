// Package apartment runs functions on a single OS thread.
//
// COM objects living in a single-threaded apartment may only be called from
// the thread that created the apartment. A Thread owns one goroutine locked
// to its OS thread; every function passed to Do runs there, one at a time,
// while the caller blocks.
package apartment

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
)

// ErrClosed is returned by Do after Close.
var ErrClosed = errors.New("apartment: thread closed")

// Hooks run on the apartment thread. Setup runs before the first call;
// Teardown runs after the last one. Either may be nil.
type Hooks struct {
	Setup    func() error
	Teardown func()
}

// Thread is a goroutine pinned to one OS thread that executes calls serially.
type Thread struct {
	calls chan call
	quit  chan struct{}
	done  chan struct{}
	once  sync.Once
}

type call struct {
	fn  func()
	err chan error
}

// Start launches the thread and runs hooks.Setup on it. If Setup fails the
// thread exits without running Teardown and the error is returned.
func Start(hooks Hooks) (*Thread, error) {
	t := &Thread{
		calls: make(chan call),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}

	ready := make(chan error, 1)
	go t.loop(hooks, ready)

	if err := <-ready; err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Thread) loop(hooks Hooks, ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(t.done)

	if hooks.Setup != nil {
		if err := hooks.Setup(); err != nil {
			ready <- fmt.Errorf("apartment setup: %w", err)
			return
		}
	}
	ready <- nil

	if hooks.Teardown != nil {
		defer hooks.Teardown()
	}

	for {
		select {
		case c := <-t.calls:
			c.err <- invoke(c.fn)
		case <-t.quit:
			return
		}
	}
}

// invoke runs fn, converting a panic into an error so a faulting call
// cannot take the thread down with it.
func invoke(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("apartment: call panicked: %v", r)
		}
	}()
	fn()
	return nil
}

// Do runs fn on the apartment thread and waits for it to return.
// Concurrent callers are served one at a time.
func (t *Thread) Do(fn func()) error {
	c := call{fn: fn, err: make(chan error, 1)}
	select {
	case t.calls <- c:
	case <-t.done:
		return ErrClosed
	}
	return <-c.err
}

// Close stops the thread after any in-flight call, runs Teardown on it and
// waits for it to exit. It is safe to call more than once.
func (t *Thread) Close() {
	t.once.Do(func() {
		close(t.quit)
	})
	<-t.done
}
