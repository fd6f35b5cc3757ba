package backup_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ostafen/partedit/internal/backup"
	"github.com/ostafen/partedit/internal/disk"
	"github.com/ostafen/partedit/pkg/label"
	"github.com/ostafen/partedit/pkg/partition"
	"github.com/stretchr/testify/require"
)

const diskSize = 8 << 20

func newGPT(t *testing.T) (*disk.Mem, []label.TableSection) {
	t.Helper()

	dev := disk.NewMem(diskSize, 512)
	c, err := label.New(dev)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.CreateLabel(partition.TableGPT))
	p, err := partition.NewBuilder().SizeInSectors(2048).Build()
	require.NoError(t, err)
	defer p.Unref()
	_, err = c.AddPartition(p)
	require.NoError(t, err)
	require.NoError(t, c.Write(context.Background()))

	sections, err := c.Sections()
	require.NoError(t, err)
	return dev, sections
}

func image() backup.Image {
	return backup.Image{Name: "disk.img", SectorSize: 512, Size: diskSize, Table: "gpt"}
}

func TestSaveAndRestore(t *testing.T) {
	dev, sections := newGPT(t)
	dir := filepath.Join(t.TempDir(), "bak")

	paths, err := backup.Save(dir, dev, image(), sections)
	require.NoError(t, err)
	require.Len(t, paths, len(sections)+1)
	require.Equal(t, backup.ReportName, filepath.Base(paths[len(paths)-1]))
	require.FileExists(t, filepath.Join(dir, "primary-gpt-header-0x00000200.bak"))

	want := append([]byte(nil), dev.Bytes()...)
	for _, s := range sections {
		clear(dev.Bytes()[s.Offset : s.Offset+s.Size])
	}

	b, err := backup.Load(dir)
	require.NoError(t, err)
	require.Equal(t, image(), b.Image)
	require.Len(t, b.Sections, len(sections))
	for i, s := range b.Sections {
		require.Equal(t, sections[i].Offset, s.Offset)
		require.EqualValues(t, sections[i].Size, len(s.Data))
	}
	require.Equal(t, "pmbr", b.Sections[0].Name)

	require.NoError(t, b.Restore(dev, 512, diskSize))
	require.Equal(t, want, dev.Bytes())

	c, err := label.New(dev)
	require.NoError(t, err)
	defer c.Close()
	table, _ := c.Table()
	require.Equal(t, partition.TableGPT, table)
}

func TestRestoreChecksGeometry(t *testing.T) {
	dev, sections := newGPT(t)
	dir := t.TempDir()

	_, err := backup.Save(dir, dev, image(), sections)
	require.NoError(t, err)

	b, err := backup.Load(dir)
	require.NoError(t, err)

	other := disk.NewMem(2*diskSize, 512)
	require.ErrorIs(t, b.Restore(other, 512, 2*diskSize), backup.ErrMismatch)
	require.ErrorIs(t, b.Restore(other, 4096, diskSize), backup.ErrMismatch)
	require.Equal(t, make([]byte, 2*diskSize), other.Bytes())
}

func TestLoadDetectsTampering(t *testing.T) {
	dev, sections := newGPT(t)
	dir := t.TempDir()

	_, err := backup.Save(dir, dev, image(), sections)
	require.NoError(t, err)

	path := filepath.Join(dir, "pmbr-0x00000000.bak")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[0] ^= 0xff
	require.NoError(t, os.WriteFile(path, data, 0644))

	_, err = backup.Load(dir)
	require.ErrorContains(t, err, "digest mismatch")

	require.NoError(t, os.WriteFile(path, data[:100], 0644))
	_, err = backup.Load(dir)
	require.ErrorContains(t, err, "does not match")
}

func TestLoadMissingReport(t *testing.T) {
	_, err := backup.Load(t.TempDir())
	require.ErrorIs(t, err, os.ErrNotExist)
}
