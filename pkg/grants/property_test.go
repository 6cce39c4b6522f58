package grants

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sambigeara/healthperm/pkg/types"
)

func randomItems(rng *rand.Rand, n int) []Item {
	items := make([]Item, n)
	for i := range items {
		access := types.AccessRead
		if rng.IntN(2) == 0 {
			access = types.AccessWrite
		}
		items[i] = Item{
			ID:      types.PermissionID(fmt.Sprintf("p%d", i)),
			Access:  access,
			Granted: rng.IntN(2) == 0,
		}
	}
	return items
}

func conjunction(items []Item) bool {
	for _, it := range items {
		if !it.Granted {
			return false
		}
	}
	return true
}

func TestAggregateMatchesConjunction(t *testing.T) {
	for seed := range uint64(50) {
		t.Run(fmt.Sprintf("seed_%d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewPCG(seed, seed*31+7))
			items := randomItems(rng, 1+rng.IntN(8))
			s := loadedStore(t, items...)

			var published bool
			s.Subscribe(func(ev Event) {
				if agg, ok := ev.(AggregateChanged); ok {
					published = agg.AllGranted
				}
			})
			published = s.Snapshot().AllGranted

			for range 200 {
				if rng.IntN(5) == 0 {
					require.NoError(t, s.SetAllGranted(rng.IntN(2) == 0))
				} else {
					id := items[rng.IntN(len(items))].ID
					require.NoError(t, s.SetGranted(id, rng.IntN(2) == 0))
				}

				snap := s.Snapshot()
				require.Equal(t, conjunction(snap.Items), snap.AllGranted)
				require.Equal(t, snap.AllGranted, published, "last aggregate event disagrees with state")
			}
		})
	}
}

func TestBulkGrantIsAtomicToObservers(t *testing.T) {
	s := loadedStore(t, readItem("1", false), writeItem("2", false), readItem("3", true), writeItem("4", false))

	var observed int
	s.Subscribe(func(Event) {
		observed++
		snap := s.Snapshot()
		granted := 0
		for _, it := range snap.Items {
			if it.Granted {
				granted++
			}
		}
		assert.Equal(t, len(snap.Items), granted, "observer saw a partial fan-out")
	})

	require.NoError(t, s.SetAllGranted(true))
	assert.Equal(t, 2, observed)
}

func TestSingleBulkCallEmitsBoundedEvents(t *testing.T) {
	s := loadedStore(t, readItem("1", false), writeItem("2", false))
	r := record(t, s)

	// A naive listener that mirrors the aggregate back into the store must
	// not produce a second bulk, since the mirrored value is unchanged.
	s.Subscribe(func(ev Event) {
		if agg, ok := ev.(AggregateChanged); ok && agg.Flipped {
			for _, it := range s.Snapshot().Items {
				if it.Granted != agg.AllGranted {
					_ = s.SetAllGranted(agg.AllGranted)
					return
				}
			}
		}
	})

	require.NoError(t, s.SetAllGranted(true))
	assert.Len(t, r.ofType("bulk_changed"), 1)
	assert.Len(t, r.ofType("aggregate_changed"), 1)
}

func TestBulkGrantIsIdempotent(t *testing.T) {
	s := loadedStore(t, readItem("1", false), writeItem("2", true))

	require.NoError(t, s.SetAllGranted(true))
	first := s.Snapshot()

	r := record(t, s)
	require.NoError(t, s.SetAllGranted(true))

	assert.Equal(t, first, s.Snapshot())
	bulks := r.ofType("bulk_changed")
	require.Len(t, bulks, 1)
	assert.Empty(t, bulks[0].(BulkChanged).IDs)
	assert.Equal(t, []Event{AggregateChanged{AllGranted: true, Flipped: false}}, r.ofType("aggregate_changed"))
}
