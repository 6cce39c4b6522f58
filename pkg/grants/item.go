package grants

import "github.com/sambigeara/healthperm/pkg/types"

// DisplayKey references label and icon metadata. The store never interprets it.
type DisplayKey struct {
	Category string
	Label    string
}

type Item struct {
	Display DisplayKey
	ID      types.PermissionID
	Access  types.AccessClass
	Granted bool
}

// Snapshot is a read-only copy of the store. Read and Write preserve the
// relative order of Items.
type Snapshot struct {
	Items      []Item
	Read       []Item
	Write      []Item
	Generation uint64
	AllGranted bool
	// Actionable is false for an empty list; AllGranted is vacuously true
	// there and must not be offered as a control.
	Actionable bool
}
