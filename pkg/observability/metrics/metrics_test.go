package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounters(t *testing.T) {
	ctx := context.Background()
	c := NewCollector()
	t.Cleanup(func() { _ = c.Shutdown(ctx) })

	inst, err := New(c.Provider)
	require.NoError(t, err)

	inst.Toggle(KindAll)
	inst.Toggle(KindItem)
	inst.Toggle(KindItem)
	inst.StaleDrop(KindItem)
	inst.SuppressedEcho(KindAll)
	inst.Commit(nil)
	inst.Commit(errors.New("disk full"))

	counters, err := c.Counters(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(1), counters["healthperm.toggles{kind=all}"])
	assert.Equal(t, int64(2), counters["healthperm.toggles{kind=item}"])
	assert.Equal(t, int64(1), counters["healthperm.stale_drops{kind=item}"])
	assert.Equal(t, int64(1), counters["healthperm.suppressed_echoes{kind=all}"])
	assert.Equal(t, int64(1), counters["healthperm.commits{result=ok}"])
	assert.Equal(t, int64(1), counters["healthperm.commits{result=error}"])

	keys := Keys(counters)
	assert.IsIncreasing(t, keys)
}

func TestNoopDoesNotPanic(t *testing.T) {
	inst := Noop()
	require.NotPanics(t, func() {
		inst.Toggle(KindAll)
		inst.Commit(nil)
	})
}
