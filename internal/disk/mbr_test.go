package disk_test

import (
	"testing"

	"github.com/ostafen/partedit/internal/disk"
	"github.com/ostafen/partedit/pkg/partition"
	"github.com/stretchr/testify/require"
)

func TestMBRRoundTrip(t *testing.T) {
	mbr := disk.NewMBR(0xDEADBEEF)
	mbr.BootCode[0] = 0xEB

	e := &mbr.PartitionEntries[1]
	e.BootIndicator = disk.BootIndicatorActive
	e.PartitionType = partition.CodeLinux
	e.SetExtent(2048, 4096)

	parsed, err := disk.ParseMBR(mbr.Bytes())
	require.NoError(t, err)
	require.Equal(t, mbr, parsed)

	require.EqualValues(t, 0xDEADBEEF, parsed.ReadDiskSignature())
	require.True(t, parsed.PartitionEntries[0].IsEmpty())
	require.False(t, parsed.PartitionEntries[1].IsEmpty())
	require.EqualValues(t, 2048, parsed.PartitionEntries[1].ReadStartLBA())
	require.EqualValues(t, 4096, parsed.PartitionEntries[1].ReadTotalSectors())
	require.Contains(t, parsed.String(), "Linux")
}

func TestParseMBRRejectsBadInput(t *testing.T) {
	_, err := disk.ParseMBR(make([]byte, 100))
	require.Error(t, err)

	_, err = disk.ParseMBR(make([]byte, disk.MBRSize))
	require.ErrorContains(t, err, "invalid MBR signature")
}

func TestProtectiveMBR(t *testing.T) {
	mbr := disk.NewProtectiveMBR(1 << 40)
	require.True(t, mbr.IsProtective())

	e := mbr.PartitionEntries[0]
	require.EqualValues(t, 1, e.ReadStartLBA())
	require.EqualValues(t, uint32(0xFFFFFFFF), e.ReadTotalSectors())
	require.Equal(t, [3]byte{0xFE, 0xFF, 0xFF}, e.EndCHS)

	require.False(t, disk.NewMBR(0).IsProtective())
}
