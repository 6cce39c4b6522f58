package grants

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/sambigeara/healthperm/pkg/types"
)

type subscription struct {
	fn      Listener
	removed atomic.Bool
}

// Store owns the permission list for one app and derives the aggregate from
// it. It is driven from a single control goroutine; the mutex only protects
// readers calling Snapshot from elsewhere.
type Store struct {
	log         *zap.SugaredLogger
	index       map[types.PermissionID]int
	items       []Item
	subs        []*subscription
	pending     []Event
	generation  uint64
	mu          sync.Mutex
	dispatching bool
}

func NewStore() *Store {
	return &Store{
		log:   zap.S().Named("grants"),
		index: make(map[types.PermissionID]int),
	}
}

// Subscribe registers fn for every subsequent event. The returned func
// removes it; removal during dispatch takes effect immediately.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	sub := &subscription{fn: fn}

	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()

	return func() {
		if sub.removed.Swap(true) {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		s.subs = slices.DeleteFunc(s.subs, func(x *subscription) bool { return x == sub })
	}
}

// Load replaces the list wholesale and starts a new generation.
func (s *Store) Load(items []Item) error {
	index := make(map[types.PermissionID]int, len(items))
	for i, it := range items {
		if it.ID == "" {
			return fmt.Errorf("item %d: empty id: %w", i, ErrInvalidInput)
		}
		if Group(it.Access) == GroupNone {
			return fmt.Errorf("item %s: access class %s: %w", it.ID, it.Access, ErrInvalidInput)
		}
		if _, dup := index[it.ID]; dup {
			return fmt.Errorf("duplicate id %s: %w", it.ID, ErrInvalidInput)
		}
		index[it.ID] = i
	}

	s.mu.Lock()
	s.items = slices.Clone(items)
	s.index = index
	s.generation++
	ev := ListReplaced{Generation: s.generation, Items: slices.Clone(s.items)}
	s.mu.Unlock()

	s.log.Debugw("list replaced", "generation", ev.Generation, "items", len(items))
	s.emit(ev)
	return nil
}

// SetGranted sets one item's flag. Events are delivered before it returns,
// except when called from inside a listener: then they are queued behind the
// event being dispatched and delivered before the outermost mutation returns.
func (s *Store) SetGranted(id types.PermissionID, value bool) error {
	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("set %s: %w", id, ErrNotFound)
	}
	before := s.allGrantedLocked()
	s.items[i].Granted = value
	after := s.allGrantedLocked()
	s.mu.Unlock()

	events := []Event{ItemChanged{ID: id, Granted: value}}
	if before != after {
		events = append(events, AggregateChanged{AllGranted: after, Flipped: true})
	}
	s.emit(events...)
	return nil
}

// SetAllGranted applies value to every item before any listener runs, so no
// subscriber can observe a partially applied fan-out.
// Called from inside a listener, its events are queued like SetGranted's.
func (s *Store) SetAllGranted(value bool) error {
	s.mu.Lock()
	if len(s.items) == 0 {
		s.mu.Unlock()
		return nil
	}
	before := s.allGrantedLocked()
	changed := make([]types.PermissionID, 0, len(s.items))
	for i := range s.items {
		if s.items[i].Granted != value {
			s.items[i].Granted = value
			changed = append(changed, s.items[i].ID)
		}
	}
	s.mu.Unlock()

	s.log.Debugw("bulk update", "granted", value, "changed", len(changed))
	s.emit(
		BulkChanged{IDs: changed, Granted: value},
		AggregateChanged{AllGranted: value, Flipped: before != value},
	)
	return nil
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := slices.Clone(s.items)
	read, write := Partition(items)
	return Snapshot{
		Items:      items,
		Read:       read,
		Write:      write,
		Generation: s.generation,
		AllGranted: s.allGrantedLocked(),
		Actionable: len(items) > 0,
	}
}

func (s *Store) Get(id types.PermissionID) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return Item{}, false
	}
	return s.items[i], true
}

func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func (s *Store) allGrantedLocked() bool {
	for _, it := range s.items {
		if !it.Granted {
			return false
		}
	}
	return true
}

// emit queues events and, unless a dispatch is already running further up
// the stack, drains the queue. Each event reaches every subscriber before the
// next one is delivered, including events queued by listeners.
func (s *Store) emit(events ...Event) {
	s.mu.Lock()
	s.pending = append(s.pending, events...)
	if s.dispatching {
		s.mu.Unlock()
		return
	}
	s.dispatching = true

	for len(s.pending) > 0 {
		ev := s.pending[0]
		s.pending = s.pending[1:]
		subs := slices.Clone(s.subs)
		s.mu.Unlock()

		for _, sub := range subs {
			if sub.removed.Load() {
				continue
			}
			s.deliver(sub.fn, ev)
		}

		s.mu.Lock()
	}

	s.dispatching = false
	s.pending = nil
	s.mu.Unlock()
}

func (s *Store) deliver(fn Listener, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorw("listener panicked", "event", EventName(ev), "panic", r)
		}
	}()
	fn(ev)
}
