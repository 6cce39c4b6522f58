// Package loop provides the single control goroutine that every store
// mutation runs on. Collaborators working on other goroutines (catalog
// fetches, grant commits, terminal input) hand their results back with Post.
package loop

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

var ErrStopped = errors.New("control loop stopped")

const defaultBacklog = 64

type Loop struct {
	log  *zap.SugaredLogger
	work chan func()
	done chan struct{}
}

func New() *Loop {
	return &Loop{
		log:  zap.S().Named("loop"),
		work: make(chan func(), defaultBacklog),
		done: make(chan struct{}),
	}
}

// Run executes posted funcs in order until ctx is cancelled. It must be
// called exactly once.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-l.work:
			l.run(fn)
		}
	}
}

func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Errorw("posted func panicked", "panic", r)
		}
	}()
	fn()
}

func (l *Loop) Post(fn func()) error {
	select {
	case <-l.done:
		return ErrStopped
	default:
	}

	select {
	case l.work <- fn:
		return nil
	case <-l.done:
		return ErrStopped
	}
}

// Do posts fn and waits for it to finish. Calling Do from the loop goroutine
// deadlocks.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if err := l.Post(func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
