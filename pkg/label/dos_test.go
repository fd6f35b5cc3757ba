package label_test

import (
	"context"
	"testing"

	"github.com/ostafen/partedit/internal/disk"
	"github.com/ostafen/partedit/pkg/label"
	"github.com/ostafen/partedit/pkg/partition"
	"github.com/stretchr/testify/require"
)

func TestDOSWriteReadBack(t *testing.T) {
	c, dev := newLabel(t, partition.TableDOS)
	sig, ok := c.DiskSignature()
	require.True(t, ok)

	n, err := c.AddPartition(sized(t, 2048))
	require.NoError(t, err)
	require.EqualValues(t, 0, n)

	swap, err := c.Catalogue().ParseKind("S", partition.InputDefault)
	require.NoError(t, err)
	defer swap.Unref()
	p := sized(t, 8192)
	p.SetKind(swap)
	n, err = c.AddPartition(p)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	require.NoError(t, c.ToggleFlag(0, partition.DOSBoot))
	require.Equal(t, label.StatusSuccess, c.Verify().Status)
	require.NoError(t, c.Write(context.Background()))

	reread := newContext(t, dev)
	table, ok := reread.Table()
	require.True(t, ok)
	require.Equal(t, partition.TableDOS, table)
	rsig, _ := reread.DiskSignature()
	require.Equal(t, sig, rsig)

	l, err := reread.Partitions()
	require.NoError(t, err)
	require.Equal(t, 2, l.Len())

	first := l.At(0)
	start, end := extent(t, first)
	require.EqualValues(t, 2048, start)
	require.EqualValues(t, 4095, end)
	code, ok := first.Kind().Code()
	require.True(t, ok)
	require.Equal(t, partition.CodeLinux, code)
	require.True(t, reread.IsBootable(first))

	second := l.At(1)
	start, end = extent(t, second)
	require.EqualValues(t, 4096, start)
	require.EqualValues(t, 12287, end)
	require.True(t, second.Kind().Equal(swap))
	require.False(t, reread.IsBootable(second))
}

func TestDOSKeepsBootCode(t *testing.T) {
	c, dev := newLabel(t, partition.TableDOS)
	require.NoError(t, c.Write(context.Background()))

	dev.Bytes()[0] = 0xEB
	dev.Bytes()[1] = 0x63

	reread := newContext(t, dev)
	_, err := reread.AddPartition(sized(t, 2048))
	require.NoError(t, err)
	require.NoError(t, reread.Write(context.Background()))

	mbr, err := disk.ParseMBR(dev.Bytes()[:disk.MBRSize])
	require.NoError(t, err)
	require.Equal(t, byte(0xEB), mbr.BootCode[0])
	require.Equal(t, byte(0x63), mbr.BootCode[1])
	require.False(t, mbr.PartitionEntries[0].IsEmpty())
}

func TestDOSSlotsExhausted(t *testing.T) {
	c, _ := newLabel(t, partition.TableDOS)

	for i := 0; i < disk.MBRPartitions; i++ {
		_, err := c.AddPartition(sized(t, 2048))
		require.NoError(t, err)
	}
	_, err := c.AddPartition(sized(t, 2048))
	require.ErrorIs(t, err, label.ErrNoSpace)
}

func TestDOSRejectsForeignKinds(t *testing.T) {
	c, _ := newLabel(t, partition.TableDOS)

	k := partition.NewGUIDKind(partition.GUIDLinuxFilesystem)
	defer k.Unref()
	p := sized(t, 2048)
	p.SetKind(k)

	_, err := c.AddPartition(p)
	var cfg *partition.ConfigError
	require.ErrorAs(t, err, &cfg)

	named := sized(t, 2048)
	require.NoError(t, named.SetName("data"))
	_, err = c.AddPartition(named)
	require.ErrorAs(t, err, &cfg)
	require.Equal(t, "name", cfg.Field)
}

func TestDOSContainer(t *testing.T) {
	c, _ := newLabel(t, partition.TableDOS)

	ext := c.Catalogue().KindFromCode(uint32(partition.CodeExtended))
	defer ext.Unref()
	p := sized(t, 2048)
	p.SetKind(ext)

	n, err := c.AddPartition(p)
	require.NoError(t, err)

	q, err := c.Partition(n)
	require.NoError(t, err)
	defer q.Unref()
	require.True(t, c.IsContainer(q))
	require.True(t, c.IsUsed(q))
	require.False(t, c.IsNested(q))
}

func TestToggleFlag(t *testing.T) {
	c, _ := newLabel(t, partition.TableDOS)
	_, err := c.AddPartition(sized(t, 2048))
	require.NoError(t, err)

	require.NoError(t, c.ToggleFlag(0, partition.DOSBoot))
	p, err := c.Partition(0)
	require.NoError(t, err)
	require.Equal(t, []byte{0x80}, p.AttributeBits())
	p.Unref()

	require.NoError(t, c.ToggleFlag(0, partition.DOSBoot))
	p, err = c.Partition(0)
	require.NoError(t, err)
	require.Equal(t, []byte{0x00}, p.AttributeBits())
	p.Unref()

	require.ErrorIs(t, c.ToggleFlag(0, partition.GPTLegacyBIOSBootable), label.ErrUnsupportedLabel)
	require.ErrorIs(t, c.ToggleFlag(3, partition.DOSBoot), label.ErrPartitionNotFound)
}
