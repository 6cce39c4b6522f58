// Package screen renders a grants store as a terminal permission screen and
// turns user gestures into toggle requests.
package screen

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/sambigeara/healthperm/pkg/catalog"
	"github.com/sambigeara/healthperm/pkg/grants"
	"github.com/sambigeara/healthperm/pkg/types"
)

var ErrNoSuchControl = errors.New("no such permission on screen")

// Gestures receives toggle requests from the screen's widgets.
type Gestures interface {
	ToggleAll(generation uint64, value bool)
	ToggleItem(generation uint64, id types.PermissionID, value bool)
}

type Preference struct {
	Switch *Switch
	Item   grants.Item
}

// Screen keeps one Switch per permission, grouped into read and write
// categories, plus the allow-all switch. Groups are rebuilt from scratch on
// every ListReplaced.
type Screen struct {
	log         *zap.SugaredLogger
	store       *grants.Store
	gestures    Gestures
	allowAll    *Switch
	unsubscribe func()
	groups      map[grants.GroupKey][]*Preference
	palette     palette
	app         catalog.App
	generation  uint64
	dirty       bool
	// syncing is set while the screen mirrors store events into its item
	// switches, so those writes are not reported back as gestures.
	syncing bool
}

func New(store *grants.Store, app catalog.App) *Screen {
	s := &Screen{
		log:      zap.S().Named("screen"),
		store:    store,
		allowAll: NewSwitch(false),
		groups:   make(map[grants.GroupKey][]*Preference),
		palette:  newPalette(),
		app:      app,
	}
	s.allowAll.OnChange(func(v bool) {
		if s.gestures != nil {
			s.gestures.ToggleAll(s.generation, v)
		}
	})

	snap := store.Snapshot()
	s.rebuild(snap.Generation, snap.Items)
	s.unsubscribe = store.Subscribe(s.onEvent)
	return s
}

// Bind connects widget callbacks to g.
func (s *Screen) Bind(g Gestures) {
	s.gestures = g
}

func (s *Screen) Close() {
	s.unsubscribe()
}

func (s *Screen) AllowAll() *Switch {
	return s.allowAll
}

func (s *Screen) SetApp(app catalog.App) {
	s.app = app
	s.dirty = true
}

// Dirty reports whether anything changed since the last call.
func (s *Screen) Dirty() bool {
	d := s.dirty
	s.dirty = false
	return d
}

func (s *Screen) Group(g grants.GroupKey) []*Preference {
	return s.groups[g]
}

func (s *Screen) find(id types.PermissionID) (*Preference, bool) {
	for _, g := range []grants.GroupKey{grants.GroupRead, grants.GroupWrite} {
		for _, p := range s.groups[g] {
			if p.Item.ID == id {
				return p, true
			}
		}
	}
	return nil, false
}

// Press flips the named permission's switch as if the user tapped it. name
// may be a full id or its short form.
func (s *Screen) Press(name string, value bool) error {
	id := types.PermissionIDFromName(name)
	p, ok := s.find(id)
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrNoSuchControl)
	}
	p.Switch.Press(value)
	return nil
}

// PressAll is a gesture on the allow-all switch asking for every permission
// to be set to value. Unlike tapping, it is forwarded even when the switch
// already shows value: an unchecked switch over a partly granted list still
// has items to revoke. It returns false when the switch is disabled.
func (s *Screen) PressAll(value bool) bool {
	if !s.allowAll.Enabled() {
		return false
	}
	if s.gestures != nil {
		s.gestures.ToggleAll(s.generation, value)
	}
	return true
}

func (s *Screen) onEvent(ev grants.Event) {
	switch e := ev.(type) {
	case grants.ListReplaced:
		s.rebuild(e.Generation, e.Items)
	case grants.ItemChanged:
		s.mirror(e.ID, e.Granted)
	case grants.BulkChanged:
		for _, id := range e.IDs {
			s.mirror(id, e.Granted)
		}
	case grants.AggregateChanged:
		// The allow-all switch is driven by the toggle controller.
	}
	s.dirty = true
}

func (s *Screen) mirror(id types.PermissionID, granted bool) {
	p, ok := s.find(id)
	if !ok {
		return
	}
	s.syncing = true
	defer func() { s.syncing = false }()

	p.Item.Granted = granted
	p.Switch.SetChecked(granted)
}

func (s *Screen) rebuild(generation uint64, items []grants.Item) {
	s.generation = generation
	clear(s.groups)

	for _, it := range items {
		g := grants.Group(it.Access)
		if g == grants.GroupNone {
			s.log.Warnw("permission without access class", "id", it.ID)
			continue
		}
		s.groups[g] = append(s.groups[g], s.preference(generation, it))
	}
	s.dirty = true
}

// preference captures generation so a switch left over from an older list
// produces a request the controller recognises as stale.
func (s *Screen) preference(generation uint64, it grants.Item) *Preference {
	p := &Preference{Item: it, Switch: NewSwitch(it.Granted)}
	id := it.ID
	p.Switch.OnChange(func(v bool) {
		if s.gestures != nil && !s.syncing {
			s.gestures.ToggleItem(generation, id, v)
		}
	})
	return p
}

func (s *Screen) groupTitle(g grants.GroupKey) string {
	switch g { //nolint:exhaustive
	case grants.GroupRead:
		return fmt.Sprintf("ALLOW %s TO READ", strings.ToUpper(s.app.Title()))
	case grants.GroupWrite:
		return fmt.Sprintf("ALLOW %s TO WRITE", strings.ToUpper(s.app.Title()))
	}
	return ""
}

// visibleGroups omits empty groups.
func (s *Screen) visibleGroups() []grants.GroupKey {
	return slices.DeleteFunc([]grants.GroupKey{grants.GroupRead, grants.GroupWrite}, func(g grants.GroupKey) bool {
		return len(s.groups[g]) == 0
	})
}
