package catalog

import (
	"context"
	"time"
)

// Poster hands a func to the control goroutine.
type Poster interface {
	Post(fn func()) error
}

// Deliver fetches src off the control goroutine and posts the result back
// through p. fn therefore always runs on the control goroutine. If the post
// fails (the loop has stopped) the result is discarded.
func Deliver(ctx context.Context, src Source, timeout time.Duration, p Poster, fn func(*Catalog, error)) {
	go func() {
		fetchCtx := ctx
		if timeout > 0 {
			var cancel context.CancelFunc
			fetchCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		c, err := src.Fetch(fetchCtx)
		_ = p.Post(func() { fn(c, err) })
	}()
}
