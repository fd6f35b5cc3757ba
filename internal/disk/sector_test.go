package disk_test

import (
	"testing"

	"github.com/ostafen/partedit/internal/disk"
	"github.com/stretchr/testify/require"
)

func TestAlignLBA(t *testing.T) {
	require.EqualValues(t, 2048, disk.AlignLBA(2048, 2048, disk.AlignUp))
	require.EqualValues(t, 4096, disk.AlignLBA(2049, 2048, disk.AlignUp))
	require.EqualValues(t, 2048, disk.AlignLBA(2049, 2048, disk.AlignDown))
	require.EqualValues(t, 2048, disk.AlignLBA(3000, 2048, disk.AlignNearest))
	require.EqualValues(t, 4096, disk.AlignLBA(3100, 2048, disk.AlignNearest))
	require.EqualValues(t, 63, disk.AlignLBA(63, 1, disk.AlignUp))

	require.True(t, disk.IsAligned(4096, 2048))
	require.False(t, disk.IsAligned(63, 8))
}

func TestGuessGrain(t *testing.T) {
	require.EqualValues(t, 2048, disk.GuessGrain([]uint64{2048, 6144, 1 << 20}, 2048))
	require.EqualValues(t, 1, disk.GuessGrain([]uint64{63, 2048}, 2048))
	require.EqualValues(t, 8, disk.GuessGrain([]uint64{8, 24}, 2048))
	require.EqualValues(t, 2048, disk.GuessGrain(nil, 2048))
}
