package jsre

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFinalizationRegistryUnregister(t *testing.T) {
	reg := newFinalizationRegistry()
	var fired atomic.Bool
	id := reg.Register(&struct{}{}, func() { fired.Store(true) })
	reg.Unregister(id)
	reg.fire(id)
	require.False(t, fired.Load())
}

func TestFinalizationRegistryDrainAll(t *testing.T) {
	reg := newFinalizationRegistry()
	var count atomic.Int32
	reg.Register(&struct{}{}, func() { count.Add(1) })
	reg.Register(&struct{}{}, func() { count.Add(1) })
	reg.drainAll()
	require.EqualValues(t, 2, count.Load())

	// draining again must be a no-op, entries were cleared.
	reg.drainAll()
	require.EqualValues(t, 2, count.Load())
}

func TestLifecycleShutdownRunsStepsOnceInOrder(t *testing.T) {
	l := newLifecycle()
	var order []int
	l.addShutdownStep(func() { order = append(order, 1) })
	l.addShutdownStep(func() { order = append(order, 2) })

	require.False(t, l.IsFinalizing())
	l.Shutdown()
	l.Shutdown()

	require.True(t, l.IsFinalizing())
	require.Equal(t, []int{1, 2}, order)
}
