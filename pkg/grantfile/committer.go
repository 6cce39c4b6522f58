package grantfile

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/sambigeara/healthperm/pkg/grants"
	"github.com/sambigeara/healthperm/pkg/observability/metrics"
	"github.com/sambigeara/healthperm/pkg/types"
)

// Reporter receives the outcome of each commit. It runs on the committer's
// goroutine.
type Reporter func(app string, err error)

type Option func(*Committer)

func WithReporter(r Reporter) Option {
	return func(c *Committer) { c.report = r }
}

func WithMetrics(m *metrics.Instruments) Option {
	return func(c *Committer) { c.metrics = m }
}

// Committer writes an app's granted set to the grants file whenever the
// store reports an item or bulk change. Writes happen off the control
// goroutine; bursts of changes coalesce into a single write of the latest
// state. A failed write is reported and not retried or rolled back.
type Committer struct {
	log         *zap.SugaredLogger
	store       *grants.Store
	metrics     *metrics.Instruments
	report      Reporter
	unsubscribe func()
	kick        chan struct{}
	stopped     chan struct{}
	path        string
	app         string
	pending     []types.PermissionID
	mu          sync.Mutex
	dirty       bool
}

func NewCommitter(path, app string, store *grants.Store, opts ...Option) *Committer {
	c := &Committer{
		log:     zap.S().Named("grantfile"),
		store:   store,
		metrics: metrics.Noop(),
		kick:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
		path:    path,
		app:     app,
	}
	c.report = c.logResult
	for _, o := range opts {
		o(c)
	}
	c.unsubscribe = store.Subscribe(c.onEvent)
	return c
}

func (c *Committer) onEvent(ev grants.Event) {
	switch e := ev.(type) {
	case grants.ItemChanged:
		c.schedule()
	case grants.BulkChanged:
		if len(e.IDs) > 0 {
			c.schedule()
		}
	case grants.ListReplaced:
		// Loaded state came from the file.
	}
}

func (c *Committer) schedule() {
	snap := c.store.Snapshot()
	ids := make([]types.PermissionID, 0, len(snap.Items))
	for _, it := range snap.Items {
		if it.Granted {
			ids = append(ids, it.ID)
		}
	}

	c.mu.Lock()
	c.pending = ids
	c.dirty = true
	c.mu.Unlock()

	select {
	case c.kick <- struct{}{}:
	default:
	}
}

// Run commits scheduled changes until ctx is cancelled, then flushes
// anything still pending and stops listening to the store.
func (c *Committer) Run(ctx context.Context) error {
	defer close(c.stopped)
	defer c.unsubscribe()

	for {
		select {
		case <-ctx.Done():
			c.flush()
			return nil
		case <-c.kick:
			c.flush()
		}
	}
}

// Stopped is closed once Run has returned.
func (c *Committer) Stopped() <-chan struct{} {
	return c.stopped
}

func (c *Committer) flush() {
	c.mu.Lock()
	if !c.dirty {
		c.mu.Unlock()
		return
	}
	ids := c.pending
	c.dirty = false
	c.mu.Unlock()

	err := c.write(ids)
	c.metrics.Commit(err)
	c.report(c.app, err)
}

// write merges into the existing file so other apps' grants survive.
func (c *Committer) write(ids []types.PermissionID) error {
	f, err := Load(c.path)
	if err != nil {
		return err
	}
	f.Set(c.app, ids)
	return Save(c.path, f)
}

func (c *Committer) logResult(app string, err error) {
	if err != nil {
		c.log.Warnw("commit grants failed", "app", app, "err", err)
		return
	}
	c.log.Debugw("committed grants", "app", app)
}
