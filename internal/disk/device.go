package disk

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
)

// DefaultSectorSize is the logical sector size assumed for image files and
// for devices whose sector size cannot be queried.
const DefaultSectorSize = 512

var ErrReadOnly = errors.New("device opened read-only")

// Device is the random-access storage a partition table lives on.
type Device interface {
	io.ReaderAt
	io.WriterAt

	// Size returns the capacity in bytes.
	Size() int64
	// SectorSize returns the logical sector size in bytes.
	SectorSize() int
	// Sync flushes written data and asks the kernel to reload the
	// partition table when the device supports it.
	Sync() error
	Close() error
}

// File is a Device backed by a disk image or a block device node.
type File struct {
	Path       string
	IsDevice   bool
	f          *os.File
	size       int64
	sectorSize int
	writable   bool
}

// Open opens a disk image or block device. Writable devices are first
// tried with O_EXCL so that an in-use device is detected early.
func Open(path string, writable bool) (*File, error) {
	path = NormalizeVolumePath(path)

	flags := os.O_RDONLY
	if writable {
		flags = os.O_RDWR
	}

	f, err := os.OpenFile(path, flags|syscall.O_EXCL, 0)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		f, err = os.OpenFile(path, flags, 0)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	d := &File{
		Path:       path,
		f:          f,
		sectorSize: DefaultSectorSize,
		writable:   writable,
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	d.IsDevice = stat.Mode()&os.ModeDevice != 0

	if d.IsDevice {
		d.size, d.sectorSize, err = blockDeviceGeometry(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to query geometry of %s: %w", path, err)
		}
	} else {
		d.size = stat.Size()
	}

	if d.size == 0 {
		f.Close()
		return nil, fmt.Errorf("failed to get a non-zero size for %s", path)
	}
	return d, nil
}

func (d *File) ReadAt(p []byte, off int64) (int, error) {
	return d.f.ReadAt(p, off)
}

func (d *File) WriteAt(p []byte, off int64) (int, error) {
	if !d.writable {
		return 0, ErrReadOnly
	}
	return d.f.WriteAt(p, off)
}

func (d *File) Size() int64 { return d.size }

func (d *File) SectorSize() int { return d.sectorSize }

func (d *File) Sync() error {
	if !d.writable {
		return nil
	}
	if err := d.f.Sync(); err != nil {
		return err
	}
	if d.IsDevice {
		return rereadPartitionTable(d.f)
	}
	return nil
}

func (d *File) Close() error { return d.f.Close() }

// Create makes a zero-filled image file of the given size, for labelling
// from scratch.
func Create(path string, size int64) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := f.Truncate(size); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to resize %s: %w", path, err)
	}
	f.Close()
	return Open(path, true)
}

// ReadSectors reads count sectors starting at lba.
func ReadSectors(d Device, lba uint64, count int) ([]byte, error) {
	ss := d.SectorSize()
	buf := make([]byte, count*ss)
	if _, err := d.ReadAt(buf, int64(lba)*int64(ss)); err != nil {
		return nil, fmt.Errorf("read %d sectors at LBA %d: %w", count, lba, err)
	}
	return buf, nil
}

// WriteSectors writes buf, which must be a whole number of sectors, at lba.
func WriteSectors(d Device, lba uint64, buf []byte) error {
	ss := d.SectorSize()
	if len(buf)%ss != 0 {
		return fmt.Errorf("write at LBA %d: %d bytes is not a multiple of the sector size %d", lba, len(buf), ss)
	}
	if _, err := d.WriteAt(buf, int64(lba)*int64(ss)); err != nil {
		return fmt.Errorf("write %d sectors at LBA %d: %w", len(buf)/ss, lba, err)
	}
	return nil
}

// Sectors returns the number of whole logical sectors of d.
func Sectors(d Device) uint64 {
	return uint64(d.Size()) / uint64(d.SectorSize())
}
