package label

import (
	"fmt"

	"github.com/ostafen/partedit/internal/disk"
	"github.com/ostafen/partedit/pkg/partition"
)

const dosMaxLBA = 1<<32 - 1

func (c *Context) readDOS() (bool, error) {
	sector, err := disk.ReadSectors(c.dev, 0, 1)
	if err != nil {
		return false, err
	}
	mbr, err := disk.ParseMBR(sector[:disk.MBRSize])
	if err != nil {
		c.log.Debugf("no DOS label: %v", err)
		return false, nil
	}

	cat := partition.CatalogueFor(partition.TableDOS)
	slots := make([]*partition.Partition, disk.MBRPartitions)
	first := c.grain

	for i, e := range mbr.PartitionEntries {
		if e.IsEmpty() {
			continue
		}

		p := partition.New()
		p.SetPartitionNumber(uint(i))
		p.SetStartingSector(uint64(e.ReadStartLBA()))
		p.SetSizeInSectors(uint64(e.ReadTotalSectors()))
		p.SetAttributeBits([]byte{e.BootIndicator})

		k := cat.KindFromCode(uint32(e.PartitionType))
		p.SetKind(k)
		k.Unref()

		slots[i] = p
		first = min(first, max(uint64(e.ReadStartLBA()), 1))
	}

	c.table = partition.TableDOS
	c.labeled = true
	c.state = StateLabeled
	c.mbr = mbr
	c.slots = slots
	c.first, c.last = first, c.sectors-1
	c.adoptGrain()

	c.log.Debugf("found DOS label, disk identifier 0x%08x", mbr.ReadDiskSignature())
	return true, nil
}

func (c *Context) encodeMBR() (*disk.MBR, error) {
	mbr := *c.mbr
	mbr.PartitionEntries = [disk.MBRPartitions]disk.MBRPartitionEntry{}

	for i, p := range c.slots {
		if p == nil {
			continue
		}
		code, err := dosCode(p.Kind())
		if err != nil {
			return nil, fmt.Errorf("partition %d: %w", i, err)
		}
		start, _ := p.StartingSector()
		size, _ := p.SizeInSectors()

		e := &mbr.PartitionEntries[i]
		if attrs := p.AttributeBits(); len(attrs) > 0 && partition.DOSBoot.IsSet(attrs) {
			e.BootIndicator = disk.BootIndicatorActive
		}
		e.PartitionType = code
		e.SetExtent(uint32(start), uint32(size))
	}
	return &mbr, nil
}

func (c *Context) writeDOS() error {
	mbr, err := c.encodeMBR()
	if err != nil {
		return err
	}

	sector, err := disk.ReadSectors(c.dev, 0, 1)
	if err != nil {
		return err
	}
	copy(sector, mbr.Bytes())
	if err := disk.WriteSectors(c.dev, 0, sector); err != nil {
		return err
	}

	c.mbr = mbr
	return nil
}

// dosCode returns the one-byte type stored in an MBR entry for k. Type 0
// marks an unused entry and is refused.
func dosCode(k *partition.Kind) (partition.Code, error) {
	code, ok := k.Code()
	if !ok {
		raw, _, unknown := k.Unknown()
		if !unknown || raw > 0xff {
			return 0, &partition.ConfigError{Field: "kind", Reason: fmt.Sprintf("%s is not a DOS partition type", k)}
		}
		code = partition.Code(raw)
	}
	if code == partition.CodeEmpty {
		return 0, &partition.ConfigError{Field: "kind", Reason: "type 0x00 marks an unused entry"}
	}
	return code, nil
}
