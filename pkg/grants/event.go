package grants

import "github.com/sambigeara/healthperm/pkg/types"

// Event is emitted by the Store after a mutation has been fully applied.
type Event interface{ isEvent() }

type Listener func(Event)

// ListReplaced follows a Load.
type ListReplaced struct {
	Items      []Item
	Generation uint64
}

func (ListReplaced) isEvent() {}

// ItemChanged follows a single SetGranted, even if the value was unchanged.
type ItemChanged struct {
	ID      types.PermissionID
	Granted bool
}

func (ItemChanged) isEvent() {}

// BulkChanged follows SetAllGranted. IDs lists only the items whose flag
// actually moved; it is empty when every item already held the value.
type BulkChanged struct {
	IDs     []types.PermissionID
	Granted bool
}

func (BulkChanged) isEvent() {}

// AggregateChanged reports the all-granted state. After SetGranted it is only
// emitted when the value flipped; after SetAllGranted it is always emitted
// once, with Flipped recording whether it moved.
type AggregateChanged struct {
	AllGranted bool
	Flipped    bool
}

func (AggregateChanged) isEvent() {}

func EventName(ev Event) string {
	switch ev.(type) {
	case ListReplaced:
		return "list_replaced"
	case ItemChanged:
		return "item_changed"
	case BulkChanged:
		return "bulk_changed"
	case AggregateChanged:
		return "aggregate_changed"
	default:
		return "unknown"
	}
}
