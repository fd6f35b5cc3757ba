package label_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/ostafen/partedit/internal/disk"
	"github.com/ostafen/partedit/internal/logger"
	"github.com/ostafen/partedit/pkg/label"
	"github.com/ostafen/partedit/pkg/partition"
	"github.com/stretchr/testify/require"
)

const (
	diskSize    = 64 << 20
	diskSectors = diskSize / 512
)

func newContext(t *testing.T, dev disk.Device, opts ...label.Option) *label.Context {
	t.Helper()

	c, err := label.New(dev, opts...)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func newLabel(t *testing.T, table partition.TableKind, opts ...label.Option) (*label.Context, *disk.Mem) {
	t.Helper()

	dev := disk.NewMem(diskSize, 512)
	c := newContext(t, dev, opts...)
	require.NoError(t, c.CreateLabel(table))
	return c, dev
}

func sized(t *testing.T, sectors uint64) *partition.Partition {
	t.Helper()

	p, err := partition.NewBuilder().SizeInSectors(sectors).Build()
	require.NoError(t, err)
	t.Cleanup(func() { p.Unref() })
	return p
}

func extent(t *testing.T, p *partition.Partition) (uint64, uint64) {
	t.Helper()

	start, ok := p.StartingSector()
	require.True(t, ok)
	end, ok := p.EndingSector()
	require.True(t, ok)
	return start, end
}

func TestNewUnlabeled(t *testing.T) {
	c := newContext(t, disk.NewMem(diskSize, 512))

	require.False(t, c.HasLabel())
	require.Equal(t, label.StateUnlabeled, c.State())
	require.Nil(t, c.Catalogue())

	_, err := c.AddPartition(partition.New())
	require.ErrorIs(t, err, label.ErrNoLabel)

	_, err = c.Partitions()
	require.ErrorIs(t, err, label.ErrNoLabel)

	v := c.Verify()
	require.Equal(t, label.StatusError, v.Status)
	require.ErrorIs(t, v.Err, label.ErrNoLabel)

	require.ErrorIs(t, c.Write(context.Background()), label.ErrNoLabel)
}

func TestNewRejectsOddSectorSize(t *testing.T) {
	_, err := label.New(disk.NewMem(diskSize, 100))
	require.Error(t, err)
}

func TestStateMachine(t *testing.T) {
	c, dev := newLabel(t, partition.TableGPT)
	require.Equal(t, label.StateModified, c.State())

	require.Equal(t, label.StatusSuccess, c.Verify().Status)
	require.Equal(t, label.StateVerified, c.State())

	_, err := c.AddPartition(sized(t, 2048))
	require.NoError(t, err)
	require.Equal(t, label.StateModified, c.State())

	require.NoError(t, c.Write(context.Background()))
	require.Equal(t, label.StateWritten, c.State())
	require.NoError(t, c.Write(context.Background()))
	require.Equal(t, 2, dev.Syncs())

	l, err := c.Partitions()
	require.NoError(t, err)
	require.Equal(t, 1, l.Len())

	reread := newContext(t, dev)
	require.Equal(t, label.StateLabeled, reread.State())
	require.ErrorIs(t, reread.Write(context.Background()), label.ErrInvalidState)
}

func TestReadOnly(t *testing.T) {
	c, dev := newLabel(t, partition.TableDOS, label.WithReadOnly())

	require.ErrorIs(t, c.Write(context.Background()), disk.ErrReadOnly)
	require.Equal(t, 0, dev.Syncs())
}

func TestLegacyLabels(t *testing.T) {
	tests := []struct {
		table partition.TableKind
		slot  uint
		name  string
		slots int
	}{
		{partition.TableSUN, 2, "Whole disk", 8},
		{partition.TableSGI, 10, "SGI volume", 16},
		{partition.TableBSD, 2, "unused", 16},
	}

	for _, tt := range tests {
		t.Run(tt.table.String(), func(t *testing.T) {
			c, _ := newLabel(t, tt.table)
			require.Equal(t, tt.slots, c.MaxPartitions())

			l, err := c.Partitions()
			require.NoError(t, err)
			require.Equal(t, 1, l.Len())

			whole := l.At(0)
			require.True(t, whole.IsWholeDisk())
			require.True(t, c.IsWholeDisk(whole))
			n, _ := whole.PartitionNumber()
			require.Equal(t, tt.slot, n)
			require.Equal(t, tt.name, whole.Kind().Name())
			start, end := extent(t, whole)
			require.EqualValues(t, 0, start)
			require.EqualValues(t, diskSectors-1, end)

			// Ordinary partitions are placed around the whole-disk entry.
			n, err = c.AddPartition(sized(t, 4096))
			require.NoError(t, err)
			require.EqualValues(t, 0, n)

			require.ErrorIs(t, c.Write(context.Background()), label.ErrUnsupportedLabel)
			_, err = c.Sections()
			require.ErrorIs(t, err, label.ErrUnsupportedLabel)
		})
	}
}

func TestSections(t *testing.T) {
	dos, _ := newLabel(t, partition.TableDOS)
	sections, err := dos.Sections()
	require.NoError(t, err)
	require.Equal(t, []label.TableSection{{Name: "MBR", Offset: 0, Size: 512}}, sections)

	gpt, _ := newLabel(t, partition.TableGPT)
	sections, err = gpt.Sections()
	require.NoError(t, err)
	require.Equal(t, []label.TableSection{
		{Name: "PMBR", Offset: 0, Size: 512},
		{Name: "Primary GPT header", Offset: 512, Size: 512},
		{Name: "Primary GPT entries", Offset: 1024, Size: 16384},
		{Name: "Backup GPT entries", Offset: (diskSectors - 33) * 512, Size: 16384},
		{Name: "Backup GPT header", Offset: (diskSectors - 1) * 512, Size: 512},
	}, sections)
}

func TestCreateLabelDiscardsPrevious(t *testing.T) {
	c, _ := newLabel(t, partition.TableDOS)

	k := c.Catalogue().KindFromCode(uint32(partition.CodeLinuxSwap))
	defer k.Unref()
	p := sized(t, 2048)
	p.SetKind(k)

	_, err := c.AddPartition(p)
	require.NoError(t, err)
	require.EqualValues(t, 3, k.RefCount())

	require.NoError(t, c.CreateLabel(partition.TableGPT))
	require.EqualValues(t, 2, k.RefCount())

	table, ok := c.Table()
	require.True(t, ok)
	require.Equal(t, partition.TableGPT, table)

	l, err := c.Partitions()
	require.NoError(t, err)
	require.True(t, l.IsEmpty())
}

func TestLogsEdits(t *testing.T) {
	var buf bytes.Buffer
	c, _ := newLabel(t, partition.TableDOS, label.WithLogger(logger.New(&buf, logger.DebugLevel)))

	_, err := c.AddPartition(sized(t, 2048))
	require.NoError(t, err)
	require.NoError(t, c.DeletePartition(0))

	require.Contains(t, buf.String(), "[DEBUG] added partition 1")
	require.Contains(t, buf.String(), "deleted partition 1")
}
