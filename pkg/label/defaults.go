package label

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/ostafen/partedit/internal/disk"
	"github.com/ostafen/partedit/pkg/partition"
)

// extent is an inclusive range of sectors.
type extent struct {
	start, end uint64
}

func (e extent) size() uint64 { return e.end - e.start + 1 }

func (e extent) contains(lba uint64) bool { return lba >= e.start && lba <= e.end }

func (e extent) overlaps(o extent) bool { return e.start <= o.end && o.start <= e.end }

func extentOf(p *partition.Partition) (extent, bool) {
	start, ok := p.StartingSector()
	if !ok {
		return extent{}, false
	}
	end, ok := p.EndingSector()
	if !ok || end < start {
		return extent{}, false
	}
	return extent{start, end}, true
}

// occupied returns the extents of all partitions except whole-disk entries
// and the slot skip, sorted by start.
func (c *Context) occupied(skip int) []extent {
	var used []extent
	for i, p := range c.slots {
		if p == nil || i == skip || p.IsWholeDisk() {
			continue
		}
		if e, ok := extentOf(p); ok {
			used = append(used, e)
		}
	}
	slices.SortFunc(used, func(a, b extent) int { return cmp.Compare(a.start, b.start) })
	return used
}

// gaps returns the free ranges of the usable area, ignoring slot skip.
func (c *Context) gaps(skip int) []extent {
	var free []extent

	next := c.first
	for _, e := range c.occupied(skip) {
		if e.end < next {
			continue
		}
		if e.start > next {
			free = append(free, extent{next, min(e.start-1, c.last)})
		}
		next = e.end + 1
		if next > c.last {
			return free
		}
	}
	if next <= c.last {
		free = append(free, extent{next, c.last})
	}
	return free
}

func (c *Context) firstFreeSlot() (uint, bool) {
	for i, p := range c.slots {
		if p == nil {
			return uint(i), true
		}
	}
	return 0, false
}

// ComputeDefaults resolves the number, first and last sector that p would
// get if it were added now. Explicit values in p are kept; deferred ones are
// taken from the first free slot and from the first free area large enough
// to hold the partition, with the start aligned to the grain.
func (c *Context) ComputeDefaults(p *partition.Partition) (number uint, start, end uint64, err error) {
	const op = "compute defaults"

	if !c.labeled {
		return 0, 0, 0, opError(op, ErrNoLabel)
	}

	number, ok := p.PartitionNumber()
	if !ok {
		if number, ok = c.firstFreeSlot(); !ok {
			return 0, 0, 0, opError(op, fmt.Errorf("all %d partitions in use: %w", len(c.slots), ErrNoSpace))
		}
	}

	size, hasSize := p.SizeInSectors()
	if hasSize && size == 0 {
		return 0, 0, 0, opError(op, &partition.ConfigError{Field: "size", Reason: "zero sectors"})
	}

	gaps := c.gaps(int(number))

	if s, ok := p.StartingSector(); ok {
		for _, g := range gaps {
			if !g.contains(s) {
				continue
			}
			end = g.end
			if hasSize {
				end = s + size - 1
				if end > g.end || end < s {
					return 0, 0, 0, opError(op, fmt.Errorf("%d sectors from %d exceed the free area ending at %d: %w", size, s, g.end, ErrNoSpace))
				}
			}
			return number, s, end, nil
		}
		return 0, 0, 0, opError(op, fmt.Errorf("sector %d is not free: %w", s, ErrNoSpace))
	}

	for _, g := range gaps {
		s := disk.AlignLBA(g.start, c.grain, disk.AlignUp)
		if s > g.end {
			continue
		}
		if !hasSize {
			return number, s, g.end, nil
		}
		if size <= g.end-s+1 {
			return number, s, s + size - 1, nil
		}
	}
	return 0, 0, 0, opError(op, ErrNoSpace)
}

// FreeSpace returns one placeholder partition per free area at least one
// grain long. Placeholders carry a start and a size but no number.
func (c *Context) FreeSpace() (*partition.List, error) {
	if !c.labeled {
		return nil, opError("free space", ErrNoLabel)
	}

	l := partition.NewList()
	for _, g := range c.gaps(-1) {
		if g.size() < c.grain {
			continue
		}
		p := partition.New()
		p.SetStartingSector(g.start)
		p.SetSizeInSectors(g.size())
		l.Push(p)
		p.Unref()
	}
	return l, nil
}
