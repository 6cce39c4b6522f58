// Package toggle mediates UI toggle requests into the grants store.
//
// The aggregate ("allow all") widget is kept in sync with the store in both
// directions. Writes the controller makes itself, either the fan-out from an
// aggregate toggle or a programmatic update of the widget after an
// individual toggle flipped the aggregate, are made under a guard. While the
// guard is held the controller ignores its own AggregateChanged listener and
// any widget callbacks the write echoes back, so a programmatic write can
// never re-trigger the handler that caused it. State changes that originate
// elsewhere still reach the widget.
package toggle

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sambigeara/healthperm/pkg/grants"
	"github.com/sambigeara/healthperm/pkg/observability/metrics"
	"github.com/sambigeara/healthperm/pkg/types"
)

var errNotActionable = errors.New("aggregate not actionable on an empty list")

// Switch is the aggregate widget as seen by the controller.
type Switch interface {
	SetChecked(checked bool)
	SetEnabled(enabled bool)
}

type Option func(*Controller)

func WithMetrics(m *metrics.Instruments) Option {
	return func(c *Controller) { c.metrics = m }
}

type Controller struct {
	log         *zap.SugaredLogger
	store       *grants.Store
	allowAll    Switch
	metrics     *metrics.Instruments
	unsubscribe func()
	guard       int
}

func New(store *grants.Store, allowAll Switch, opts ...Option) *Controller {
	c := &Controller{
		log:      zap.S().Named("toggle"),
		store:    store,
		allowAll: allowAll,
		metrics:  metrics.Noop(),
	}
	for _, o := range opts {
		o(c)
	}

	snap := store.Snapshot()
	c.syncWidget(snap.AllGranted && snap.Actionable, snap.Actionable)
	c.unsubscribe = store.Subscribe(c.onEvent)
	return c
}

func (c *Controller) Close() {
	c.unsubscribe()
}

// ToggleAll handles a user gesture on the aggregate widget. Requests against
// an old generation, an empty list, or echoed from a programmatic write are
// dropped.
func (c *Controller) ToggleAll(generation uint64, value bool) {
	if err := c.toggleAll(generation, value); err != nil {
		c.drop(metrics.KindAll, err, "granted", value)
	}
}

// ToggleItem handles a user gesture on one permission's widget.
func (c *Controller) ToggleItem(generation uint64, id types.PermissionID, value bool) {
	if err := c.toggleItem(generation, id, value); err != nil {
		c.drop(metrics.KindItem, err, "id", id, "granted", value)
	}
}

func (c *Controller) toggleAll(generation uint64, value bool) error {
	if c.guard > 0 {
		c.metrics.SuppressedEcho(metrics.KindAll)
		return nil
	}

	snap := c.store.Snapshot()
	if generation != snap.Generation {
		return fmt.Errorf("allow all for generation %d, current %d: %w", generation, snap.Generation, grants.ErrStaleReference)
	}
	if !snap.Actionable {
		return errNotActionable
	}

	c.guard++
	defer func() { c.guard-- }()

	if err := c.store.SetAllGranted(value); err != nil {
		return err
	}
	c.allowAll.SetChecked(value)
	c.metrics.Toggle(metrics.KindAll)
	return nil
}

func (c *Controller) toggleItem(generation uint64, id types.PermissionID, value bool) error {
	if c.guard > 0 {
		c.metrics.SuppressedEcho(metrics.KindItem)
		return nil
	}

	if current := c.store.Generation(); generation != current {
		return fmt.Errorf("toggle %s for generation %d, current %d: %w", id, generation, current, grants.ErrStaleReference)
	}

	if err := c.store.SetGranted(id, value); err != nil {
		if errors.Is(err, grants.ErrNotFound) {
			return fmt.Errorf("%w: %w", grants.ErrStaleReference, err)
		}
		return err
	}
	c.metrics.Toggle(metrics.KindItem)
	return nil
}

// drop logs a rejected request. Stale references are logged at info: they
// mean the user acted on a list that has since been replaced.
func (c *Controller) drop(kind string, err error, kv ...any) {
	kv = append(kv, "kind", kind, "err", err)
	if errors.Is(err, grants.ErrStaleReference) {
		c.metrics.StaleDrop(kind)
		c.log.Infow("dropped stale toggle request", kv...)
		return
	}
	c.log.Debugw("dropped toggle request", kv...)
}

func (c *Controller) onEvent(ev grants.Event) {
	switch e := ev.(type) {
	case grants.AggregateChanged:
		if c.guard > 0 {
			return
		}
		c.syncWidget(e.AllGranted, true)
	case grants.ListReplaced:
		actionable := len(e.Items) > 0
		c.syncWidget(actionable && allGranted(e.Items), actionable)
	}
}

func (c *Controller) syncWidget(checked, enabled bool) {
	c.guard++
	defer func() { c.guard-- }()

	c.allowAll.SetEnabled(enabled)
	c.allowAll.SetChecked(checked)
}

func allGranted(items []grants.Item) bool {
	for _, it := range items {
		if !it.Granted {
			return false
		}
	}
	return true
}
