package grants

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sambigeara/healthperm/pkg/types"
)

func TestGroup(t *testing.T) {
	assert.Equal(t, GroupRead, Group(types.AccessRead))
	assert.Equal(t, GroupWrite, Group(types.AccessWrite))
	assert.Equal(t, GroupNone, Group(types.AccessUnspecified))
}

func TestPartitionPreservesOrder(t *testing.T) {
	items := []Item{readItem("r1", false), writeItem("w1", false), readItem("r2", true), writeItem("w2", true)}

	read, write := Partition(items)

	assert.Equal(t, []Item{items[0], items[2]}, read)
	assert.Equal(t, []Item{items[1], items[3]}, write)
}

func TestSnapshotPartitionIntegrity(t *testing.T) {
	for seed := range uint64(20) {
		t.Run(fmt.Sprintf("seed_%d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewPCG(seed, 99))
			s := loadedStore(t, randomItems(rng, rng.IntN(12))...)
			snap := s.Snapshot()

			seen := make(map[types.PermissionID]GroupKey)
			for _, it := range snap.Read {
				require.Equal(t, types.AccessRead, it.Access)
				seen[it.ID] = GroupRead
			}
			for _, it := range snap.Write {
				require.Equal(t, types.AccessWrite, it.Access)
				_, dup := seen[it.ID]
				require.False(t, dup, "%s in both groups", it.ID)
				seen[it.ID] = GroupWrite
			}

			require.Len(t, seen, len(snap.Items))
			for _, it := range snap.Items {
				assert.Contains(t, seen, it.ID)
			}
		})
	}
}
