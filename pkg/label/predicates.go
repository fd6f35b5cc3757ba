package label

import "github.com/ostafen/partedit/pkg/partition"

// IsBootable reports whether the boot flag of the label is set on p.
func (c *Context) IsBootable(p *partition.Partition) bool {
	var flag partition.BitFlag
	switch c.table {
	case partition.TableDOS:
		flag = partition.DOSBoot
	case partition.TableGPT:
		flag = partition.GPTLegacyBIOSBootable
	case partition.TableSGI:
		flag = partition.SGIBoot
	default:
		return false
	}
	return c.labeled && flag.IsSet(p.AttributeBits())
}

// IsContainer reports whether p is a DOS extended partition.
func (c *Context) IsContainer(p *partition.Partition) bool {
	if !c.labeled || c.table != partition.TableDOS || p.Kind() == nil {
		return false
	}
	code, err := dosCode(p.Kind())
	return err == nil && code.IsContainer()
}

// IsFreeSpace reports whether p is a placeholder for an unallocated area,
// as returned by FreeSpace.
func (c *Context) IsFreeSpace(p *partition.Partition) bool {
	if !c.labeled || p.Kind() != nil {
		return false
	}
	if _, ok := p.PartitionNumber(); ok {
		return false
	}
	e, ok := extentOf(p)
	if !ok {
		return false
	}
	for _, used := range c.occupied(-1) {
		if used.overlaps(e) {
			return false
		}
	}
	return true
}

// IsWholeDisk reports whether p is the entry of a legacy label that spans
// the whole device.
func (c *Context) IsWholeDisk(p *partition.Partition) bool {
	return p.IsWholeDisk() || c.isWholeDiskSlot(p)
}

// IsNested reports whether p lives inside another partition.
func (c *Context) IsNested(p *partition.Partition) bool {
	_, ok := p.Parent()
	return ok
}

// IsUsed reports whether p refers to an occupied slot of the table.
func (c *Context) IsUsed(p *partition.Partition) bool {
	n, ok := p.PartitionNumber()
	if !ok {
		return false
	}
	q, err := c.slot(n)
	if err != nil {
		return false
	}
	_, hasSize := q.SizeInSectors()
	return hasSize && q.Kind() != nil
}
