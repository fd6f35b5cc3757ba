package label_test

import (
	"testing"

	"github.com/ostafen/partedit/internal/disk"
	"github.com/ostafen/partedit/pkg/label"
	"github.com/ostafen/partedit/pkg/partition"
	"github.com/stretchr/testify/require"
)

func TestComputeDefaults(t *testing.T) {
	c, _ := newLabel(t, partition.TableGPT)

	n, start, end, err := c.ComputeDefaults(partition.New())
	require.NoError(t, err)
	require.EqualValues(t, 0, n)
	require.EqualValues(t, 2048, start)
	require.EqualValues(t, diskSectors-34, end)

	n, start, end, err = c.ComputeDefaults(sized(t, 100))
	require.NoError(t, err)
	require.EqualValues(t, 0, n)
	require.EqualValues(t, 2048, start)
	require.EqualValues(t, 2147, end)

	_, err = c.AddPartition(sized(t, 2048))
	require.NoError(t, err)

	n, start, _, err = c.ComputeDefaults(sized(t, 100))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	require.EqualValues(t, 4096, start)

	taken, err := partition.NewBuilder().StartingSector(3000).Build()
	require.NoError(t, err)
	defer taken.Unref()
	_, _, _, err = c.ComputeDefaults(taken)
	require.ErrorIs(t, err, label.ErrNoSpace)

	_, _, _, err = c.ComputeDefaults(sized(t, diskSectors))
	require.ErrorIs(t, err, label.ErrNoSpace)
}

func TestComputeDefaultsHonoursGrain(t *testing.T) {
	c, _ := newLabel(t, partition.TableGPT, label.WithGrain(4096))
	require.EqualValues(t, 8, c.Grain())

	_, start, _, err := c.ComputeDefaults(partition.New())
	require.NoError(t, err)
	require.EqualValues(t, 40, start)
}

func TestExplicitPlacement(t *testing.T) {
	c, _ := newLabel(t, partition.TableDOS)

	p, err := partition.NewBuilder().
		PartitionNumber(2).
		StartingSector(10000).
		SizeInSectors(1000).
		Build()
	require.NoError(t, err)
	defer p.Unref()

	n, err := c.AddPartition(p)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	_, err = c.AddPartition(p)
	require.ErrorIs(t, err, label.ErrPartitionNumberInUse)

	// The default area now ends right before the explicit partition.
	_, start, end, err := c.ComputeDefaults(partition.New())
	require.NoError(t, err)
	require.EqualValues(t, 2048, start)
	require.EqualValues(t, 9999, end)
}

func TestSetPartition(t *testing.T) {
	c, _ := newLabel(t, partition.TableDOS)

	_, err := c.AddPartition(sized(t, 2048))
	require.NoError(t, err)
	_, err = c.AddPartition(sized(t, 2048))
	require.NoError(t, err)

	require.NoError(t, c.SetPartition(1, sized(t, 8192)))
	p, err := c.Partition(1)
	require.NoError(t, err)
	start, end := extent(t, p)
	p.Unref()
	require.EqualValues(t, 4096, start)
	require.EqualValues(t, 12287, end)

	require.ErrorIs(t, c.SetPartition(0, sized(t, 4096)), label.ErrOverlap)

	beyond, err := partition.NewBuilder().StartingSector(diskSectors).Build()
	require.NoError(t, err)
	defer beyond.Unref()
	require.ErrorIs(t, c.SetPartition(1, beyond), label.ErrOutOfRange)

	require.ErrorIs(t, c.SetPartition(3, sized(t, 1)), label.ErrPartitionNotFound)

	// Failed updates leave the partition as it was.
	p, err = c.Partition(1)
	require.NoError(t, err)
	start, end = extent(t, p)
	p.Unref()
	require.EqualValues(t, 4096, start)
	require.EqualValues(t, 12287, end)
}

func TestSetKind(t *testing.T) {
	c, _ := newLabel(t, partition.TableGPT)
	_, err := c.AddPartition(sized(t, 2048))
	require.NoError(t, err)

	swap, err := c.Catalogue().ParseKind("linux swap", partition.InputDefault)
	require.NoError(t, err)
	defer swap.Unref()

	require.NoError(t, c.SetKind(0, swap))
	p, err := c.Partition(0)
	require.NoError(t, err)
	defer p.Unref()
	require.True(t, p.Kind().Equal(swap))

	coded := partition.NewCodedKind(partition.CodeLinux)
	defer coded.Unref()
	var cfg *partition.ConfigError
	require.ErrorAs(t, c.SetKind(0, coded), &cfg)
}

func TestDeletePartition(t *testing.T) {
	c, _ := newLabel(t, partition.TableDOS)

	k := c.Catalogue().KindFromCode(uint32(partition.CodeLinux))
	defer k.Unref()
	p := sized(t, 2048)
	p.SetKind(k)

	n, err := c.AddPartition(p)
	require.NoError(t, err)
	require.EqualValues(t, 3, k.RefCount())
	require.EqualValues(t, 1, p.RefCount())

	require.NoError(t, c.DeletePartition(n))
	require.EqualValues(t, 2, k.RefCount())
	require.ErrorIs(t, c.DeletePartition(n), label.ErrPartitionNotFound)

	// The freed slot and area are reused.
	n, err = c.AddPartition(p)
	require.NoError(t, err)
	require.EqualValues(t, 0, n)
}

func TestApplyList(t *testing.T) {
	src, _ := newLabel(t, partition.TableGPT)
	for _, size := range []uint64{2048, 4096, 8192} {
		_, err := src.AddPartition(sized(t, size))
		require.NoError(t, err)
	}
	l, err := src.Partitions()
	require.NoError(t, err)
	defer l.Unref()

	dst, _ := newLabel(t, partition.TableGPT)
	_, err = dst.AddPartition(sized(t, 100000))
	require.NoError(t, err)

	require.NoError(t, dst.ApplyList(l))
	require.EqualValues(t, 1, l.RefCount())
	require.Equal(t, 3, l.Len())
	require.Equal(t, label.StateModified, dst.State())

	got, err := dst.Partitions()
	require.NoError(t, err)
	defer got.Unref()
	require.Equal(t, 3, got.Len())
	for i, want := range l.All() {
		require.Equal(t, must(want.StartingSector()), must(got.At(i).StartingSector()))
		require.Equal(t, must(want.UUID()), must(got.At(i).UUID()))
		// The engine keeps copies, not the caller's partitions.
		require.EqualValues(t, 1, want.RefCount())
		require.NotSame(t, want, got.At(i))
	}
}

func TestApplyListDefersToEngine(t *testing.T) {
	c, _ := newLabel(t, partition.TableDOS)

	l := partition.NewList()
	defer l.Unref()
	for i := 0; i < 2; i++ {
		p := sized(t, 2048)
		l.Push(p)
	}

	require.NoError(t, c.ApplyList(l))

	got, err := c.Partitions()
	require.NoError(t, err)
	defer got.Unref()
	require.Equal(t, 2, got.Len())
	require.EqualValues(t, 2048, must(got.At(0).StartingSector()))
	require.EqualValues(t, 4096, must(got.At(1).StartingSector()))
	require.False(t, got.IsNotInIncreasingOrder())

	// The caller's partitions keep deferring to the engine.
	_, ok := l.At(0).StartingSector()
	require.False(t, ok)
}

func TestApplyListRollsBack(t *testing.T) {
	c, _ := newLabel(t, partition.TableDOS)
	_, err := c.AddPartition(sized(t, 2048))
	require.NoError(t, err)

	l := partition.NewList()
	defer l.Unref()
	for i := 0; i < 2; i++ {
		p, err := partition.NewBuilder().StartingSector(2048).SizeInSectors(2048).Build()
		require.NoError(t, err)
		l.Push(p)
		p.Unref()
	}

	require.ErrorIs(t, c.ApplyList(l), label.ErrNoSpace)
	require.EqualValues(t, 1, l.RefCount())

	got, err := c.Partitions()
	require.NoError(t, err)
	defer got.Unref()
	require.Equal(t, 1, got.Len())
	require.EqualValues(t, 2048, must(got.At(0).StartingSector()))
}

func TestFreeSpace(t *testing.T) {
	c, _ := newLabel(t, partition.TableDOS)

	p, err := partition.NewBuilder().StartingSector(8192).SizeInSectors(2048).Build()
	require.NoError(t, err)
	defer p.Unref()
	_, err = c.AddPartition(p)
	require.NoError(t, err)

	free, err := c.FreeSpace()
	require.NoError(t, err)
	defer free.Unref()
	require.Equal(t, 2, free.Len())

	start, end := extent(t, free.At(0))
	require.EqualValues(t, 2048, start)
	require.EqualValues(t, 8191, end)
	start, end = extent(t, free.At(1))
	require.EqualValues(t, 10240, start)
	require.EqualValues(t, diskSectors-1, end)

	for _, f := range free.All() {
		require.True(t, c.IsFreeSpace(f))
		require.False(t, c.IsUsed(f))
	}

	used, err := c.Partition(0)
	require.NoError(t, err)
	defer used.Unref()
	require.False(t, c.IsFreeSpace(used))
	require.True(t, c.IsUsed(used))
}

func TestVerifyReportsIssues(t *testing.T) {
	dev := disk.NewMem(diskSize, 512)

	mbr := disk.NewMBR(0x1234)
	entries := []struct {
		start, size uint32
	}{
		{2048, 4096},
		{4096, 2048},
		{diskSectors - 10, 100},
	}
	for i, e := range entries {
		mbr.PartitionEntries[i].PartitionType = partition.CodeLinux
		mbr.PartitionEntries[i].SetExtent(e.start, e.size)
	}
	mbr.PartitionEntries[0].BootIndicator = disk.BootIndicatorActive
	mbr.PartitionEntries[1].BootIndicator = disk.BootIndicatorActive
	copy(dev.Bytes(), mbr.Bytes())

	c := newContext(t, dev)
	v := c.Verify()
	require.Equal(t, label.StatusIssues, v.Status)
	require.Equal(t, 3, v.Issues)
	require.ErrorIs(t, v.Err, label.ErrOverlap)
	require.ErrorIs(t, v.Err, label.ErrOutOfRange)
	require.ErrorContains(t, v.Err, "2 partitions are marked bootable")

	// Verify does not change the table.
	require.Equal(t, 3, c.Verify().Issues)
	require.Equal(t, label.StateVerified, c.State())
}

func TestVerifyMisaligned(t *testing.T) {
	c, _ := newLabel(t, partition.TableDOS)

	p, err := partition.NewBuilder().StartingSector(2049).SizeInSectors(2048).Build()
	require.NoError(t, err)
	defer p.Unref()
	_, err = c.AddPartition(p)
	require.NoError(t, err)

	v := c.Verify()
	require.Equal(t, label.StatusIssues, v.Status)
	require.ErrorIs(t, v.Err, label.ErrMisaligned)
}
