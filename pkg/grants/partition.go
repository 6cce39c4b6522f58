package grants

import "github.com/sambigeara/healthperm/pkg/types"

type GroupKey int

const (
	GroupNone GroupKey = iota
	GroupRead
	GroupWrite
)

func (g GroupKey) String() string {
	switch g {
	case GroupRead:
		return "read"
	case GroupWrite:
		return "write"
	default:
		return "none"
	}
}

// Group routes an access class to the visual group that renders it.
func Group(access types.AccessClass) GroupKey {
	switch access { //nolint:exhaustive
	case types.AccessRead:
		return GroupRead
	case types.AccessWrite:
		return GroupWrite
	}
	return GroupNone
}

// Partition splits items into read and write subsets, preserving order.
// Items in GroupNone land in neither.
func Partition(items []Item) (read, write []Item) {
	for _, it := range items {
		switch Group(it.Access) { //nolint:exhaustive
		case GroupRead:
			read = append(read, it)
		case GroupWrite:
			write = append(write, it)
		}
	}
	return read, write
}
