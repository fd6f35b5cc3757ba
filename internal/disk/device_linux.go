//go:build linux

package disk

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

func blockDeviceGeometry(f *os.File) (int64, int, error) {
	var size uint64
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), unix.BLKGETSIZE64, uintptr(unsafe.Pointer(&size))); errno != 0 {
		return 0, 0, fmt.Errorf("ioctl BLKGETSIZE64 failed: %w", errno)
	}

	sectorSize, err := unix.IoctlGetInt(int(f.Fd()), unix.BLKSSZGET)
	if err != nil || sectorSize <= 0 {
		sectorSize = DefaultSectorSize
	}
	return int64(size), sectorSize, nil
}

// rereadPartitionTable flushes the buffer cache and has the kernel reload
// the partition table.
func rereadPartitionTable(f *os.File) error {
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), unix.BLKFLSBUF, 0); errno != 0 {
		return fmt.Errorf("flush block device buffers: %w", errno)
	}
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), unix.BLKRRPART, 0); errno != 0 {
		return fmt.Errorf("re-read partition table: %w", errno)
	}
	return nil
}
