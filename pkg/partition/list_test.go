package partition_test

import (
	"testing"

	"github.com/ostafen/partedit/pkg/partition"
	"github.com/stretchr/testify/require"
)

func newPartition(t *testing.T, number uint, start uint64) *partition.Partition {
	t.Helper()

	p, err := partition.NewBuilder().
		PartitionNumber(number).
		StartingSector(start).
		SizeInSectors(64).
		Build()
	require.NoError(t, err)
	return p
}

func newList(t *testing.T, starts ...uint64) *partition.List {
	t.Helper()

	l := partition.NewList()
	for i, s := range starts {
		p := newPartition(t, uint(i+1), s)
		l.Push(p)
		p.Unref()
	}
	return l
}

func number(t *testing.T, p *partition.Partition) uint {
	t.Helper()

	n, ok := p.PartitionNumber()
	require.True(t, ok)
	return n
}

func TestListPushPop(t *testing.T) {
	l := newList(t, 64, 4096, 8192)
	require.Equal(t, 3, l.Len())

	p, ok := l.Pop()
	require.True(t, ok)
	require.EqualValues(t, 3, number(t, p))
	require.Equal(t, 2, l.Len())

	first, ok := l.Get(0)
	require.True(t, ok)
	require.EqualValues(t, 1, number(t, first))
	require.True(t, p.Unref())
}

func TestListPopEmpty(t *testing.T) {
	l := partition.NewList()
	require.True(t, l.IsEmpty())

	_, ok := l.Pop()
	require.False(t, ok)
}

func TestListPushTakesReference(t *testing.T) {
	p := newPartition(t, 1, 64)
	l := partition.NewList()

	l.Push(p)
	require.EqualValues(t, 2, p.RefCount())

	l.Clear()
	require.EqualValues(t, 1, p.RefCount())
	require.Equal(t, 0, l.Len())
}

func TestListLengthInvariance(t *testing.T) {
	l := newList(t, 64, 4096, 8192, 16384)

	for i := 0; i < 10; i++ {
		_, _ = l.Get(i % 5)
		_, _ = l.GetMut(i % 4)
		it := l.Iter()
		for _, ok := it.Next(); ok; _, ok = it.Next() {
		}
	}
	require.Equal(t, 4, l.Len())

	p := l.Remove(1)
	require.EqualValues(t, 2, number(t, p))
	require.Equal(t, 3, l.Len())

	_, ok := l.Pop()
	require.True(t, ok)
	require.Equal(t, 2, l.Len())
}

func TestListBoundsPanic(t *testing.T) {
	l := newList(t, 64)

	require.Panics(t, func() { l.Remove(1) })
	require.Panics(t, func() { l.Remove(-1) })
	require.Panics(t, func() { l.At(5) })
	require.NotPanics(t, func() { l.At(0) })

	_, ok := l.Get(1)
	require.False(t, ok)
}

func TestGetByPartitionNumber(t *testing.T) {
	l := partition.NewList()
	for _, n := range []uint{5, 7, 2} {
		p := newPartition(t, n, uint64(n)*1024)
		l.Push(p)
		p.Unref()
	}

	p, ok := l.GetByPartitionNumber(2)
	require.True(t, ok)
	require.EqualValues(t, 2048, must(p.StartingSector()))

	_, ok = l.GetByPartitionNumber(0)
	require.False(t, ok)

	// Index 1 holds partition number 7.
	byIndex, _ := l.Get(1)
	require.EqualValues(t, 7, number(t, byIndex))
}

func TestIsNotInIncreasingOrder(t *testing.T) {
	require.False(t, newList(t, 64, 4096, 8192).IsNotInIncreasingOrder())
	require.True(t, newList(t, 64, 8192, 4096).IsNotInIncreasingOrder())
	require.False(t, partition.NewList().IsNotInIncreasingOrder())
}

func TestIsNotInIncreasingOrderSkipsPlaceholders(t *testing.T) {
	l := newList(t, 64, 4096)

	whole := newPartition(t, 3, 0)
	whole.MarkWholeDisk(true)
	l.Push(whole)

	unset := partition.New()
	l.Push(unset)

	last := newPartition(t, 4, 8192)
	l.Push(last)

	require.False(t, l.IsNotInIncreasingOrder())
}

func TestSortByStartingSector(t *testing.T) {
	l := newList(t, 8192, 64, 4096)
	l.Push(partition.New())
	require.True(t, l.IsNotInIncreasingOrder())

	l.SortByStartingSector()
	require.False(t, l.IsNotInIncreasingOrder())

	_, ok := l.At(0).StartingSector()
	require.False(t, ok)
	require.EqualValues(t, 64, must(l.At(1).StartingSector()))

	l.SortByPartitionNumber()
	require.EqualValues(t, 1, number(t, l.At(0)))
	_, ok = l.At(3).PartitionNumber()
	require.False(t, ok)
}

func TestMutableBorrowsOutliveRemoval(t *testing.T) {
	l := newList(t, 64, 4096)

	p, ok := l.GetMut(0)
	require.True(t, ok)
	require.Equal(t, 1, l.Loans())

	removed := l.Remove(0)
	require.Same(t, p, removed)
	require.False(t, removed.Unref())
	require.EqualValues(t, 1, p.RefCount())

	p.SetStartingSector(128)
	l.Clear()
	require.Equal(t, 0, l.Loans())
}

func TestAcquire(t *testing.T) {
	l := newList(t, 64)

	p, ok := l.Acquire(0)
	require.True(t, ok)
	require.EqualValues(t, 2, p.RefCount())

	require.True(t, l.Unref())
	require.EqualValues(t, 1, p.RefCount())
	require.True(t, p.Unref())
}

func TestListRefCount(t *testing.T) {
	l := newList(t, 64, 128)
	l.Ref()
	require.False(t, l.Unref())
	require.Equal(t, 2, l.Len())

	require.True(t, l.Unref())
	require.Equal(t, 0, l.Len())
}

func must[T any](v T, ok bool) T {
	if !ok {
		panic("value not set")
	}
	return v
}
