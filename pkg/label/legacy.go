package label

import "github.com/ostafen/partedit/pkg/partition"

// SUN, SGI and BSD labels are edited in memory only. Each reserves one slot
// for an entry spanning the whole disk.

var legacySlots = map[partition.TableKind]int{
	partition.TableSUN: 8,
	partition.TableSGI: 16,
	partition.TableBSD: 16,
}

type wholeDiskEntry struct {
	slot uint
	code partition.Code
}

var wholeDiskEntries = map[partition.TableKind]wholeDiskEntry{
	partition.TableSUN: {slot: 2, code: 0x05},  // Whole disk
	partition.TableSGI: {slot: 10, code: 0x06}, // SGI volume
	partition.TableBSD: {slot: 2, code: 0x00},  // 'c', the raw partition
}

func (c *Context) installWholeDisk() {
	e, ok := wholeDiskEntries[c.table]
	if !ok {
		return
	}

	p := partition.New()
	p.SetPartitionNumber(e.slot)
	p.SetStartingSector(0)
	p.SetSizeInSectors(c.sectors)
	p.MarkWholeDisk(true)

	k := partition.CatalogueFor(c.table).KindFromCode(uint32(e.code))
	p.SetKind(k)
	k.Unref()

	c.slots[e.slot] = p
}

// isWholeDiskSlot reports whether p sits in the reserved whole-disk slot of
// a legacy label with the matching type.
func (c *Context) isWholeDiskSlot(p *partition.Partition) bool {
	e, ok := wholeDiskEntries[c.table]
	if !ok {
		return false
	}
	n, ok := p.PartitionNumber()
	if !ok || n != e.slot {
		return false
	}
	if p.Kind() == nil {
		return false
	}
	code, ok := p.Kind().Code()
	return ok && code == e.code
}
