package disk_test

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/ostafen/partedit/internal/disk"
	"github.com/stretchr/testify/require"
)

func TestMemReadWriteSectors(t *testing.T) {
	m := disk.NewMem(8*512, 512)
	require.EqualValues(t, 8, disk.Sectors(m))

	buf := make([]byte, 512)
	buf[0] = 0xAA
	require.NoError(t, disk.WriteSectors(m, 3, buf))

	got, err := disk.ReadSectors(m, 3, 1)
	require.NoError(t, err)
	require.Equal(t, buf, got)

	require.Error(t, disk.WriteSectors(m, 8, buf))
	require.Error(t, disk.WriteSectors(m, 0, buf[:10]))

	_, err = m.ReadAt(make([]byte, 1024), 7*512)
	require.ErrorIs(t, err, io.EOF)
}

func TestImageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")

	d, err := disk.Create(path, 1<<20)
	require.NoError(t, err)
	require.False(t, d.IsDevice)
	require.EqualValues(t, 1<<20, d.Size())
	require.Equal(t, disk.DefaultSectorSize, d.SectorSize())

	require.NoError(t, disk.WriteSectors(d, 1, make([]byte, 512)))
	require.NoError(t, d.Sync())
	require.NoError(t, d.Close())

	ro, err := disk.Open(path, false)
	require.NoError(t, err)
	defer ro.Close()

	_, err = ro.WriteAt([]byte{1}, 0)
	require.ErrorIs(t, err, disk.ErrReadOnly)
}
