package disk

import (
	"fmt"
	"io"
)

// Mem is an in-memory Device, used for tests and dry runs.
type Mem struct {
	buf        []byte
	sectorSize int
	syncs      int
}

// NewMem returns a zero-filled device of size bytes.
func NewMem(size int64, sectorSize int) *Mem {
	return &Mem{buf: make([]byte, size), sectorSize: sectorSize}
}

func (m *Mem) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(m.buf)) {
		return 0, fmt.Errorf("read at %d: offset out of range", off)
	}
	n := copy(p, m.buf[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *Mem) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(len(m.buf)) {
		return 0, fmt.Errorf("write of %d bytes at %d: beyond end of device", len(p), off)
	}
	return copy(m.buf[off:], p), nil
}

func (m *Mem) Size() int64 { return int64(len(m.buf)) }

func (m *Mem) SectorSize() int { return m.sectorSize }

func (m *Mem) Sync() error {
	m.syncs++
	return nil
}

// Syncs returns how many times Sync was called.
func (m *Mem) Syncs() int { return m.syncs }

func (m *Mem) Close() error { return nil }

// Bytes exposes the backing buffer.
func (m *Mem) Bytes() []byte { return m.buf }
