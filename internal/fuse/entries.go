package fuse

import (
	"fmt"

	"github.com/ostafen/partedit/pkg/partition"
)

// Entry is one file of the mounted view: a byte range of the device.
type Entry struct {
	Name   string
	Offset int64
	Size   int64
}

// Entries maps every partition of l with a known extent to a file named
// after its 1-based number, such as "p1". Whole-disk entries are skipped.
func Entries(l *partition.List, sectorSize int) []Entry {
	var entries []Entry
	for _, p := range l.All() {
		if p.IsWholeDisk() {
			continue
		}
		n, ok := p.PartitionNumber()
		if !ok {
			continue
		}
		start, ok := p.StartingSector()
		if !ok {
			continue
		}
		size, ok := p.SizeInSectors()
		if !ok || size == 0 {
			continue
		}

		entries = append(entries, Entry{
			Name:   fmt.Sprintf("p%d", n+1),
			Offset: int64(start) * int64(sectorSize),
			Size:   int64(size) * int64(sectorSize),
		})
	}
	return entries
}
