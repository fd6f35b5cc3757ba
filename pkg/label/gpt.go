package label

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
	"github.com/ostafen/partedit/internal/disk"
	"github.com/ostafen/partedit/pkg/partition"
)

func (c *Context) readGPT() (bool, error) {
	h, entries, err := c.loadGPT(1)
	if err != nil {
		if !isCorrupt(err) {
			return false, err
		}
		c.log.Debugf("primary GPT header: %v", err)

		var backupErr error
		h, entries, backupErr = c.loadGPT(c.sectors - 1)
		if backupErr != nil {
			if isCorrupt(backupErr) {
				c.log.Debugf("backup GPT header: %v", backupErr)
				return false, nil
			}
			return false, backupErr
		}
		c.log.Warnf("primary GPT is corrupt (%v), using the backup", err)
	}

	if h.NumPartitions != disk.GPTEntries {
		return false, fmt.Errorf("GPT with %d entries: %w", h.NumPartitions, ErrUnsupportedLabel)
	}

	cat := partition.CatalogueFor(partition.TableGPT)
	slots := make([]*partition.Partition, disk.GPTEntries)

	for i, e := range entries {
		if e.IsEmpty() {
			continue
		}
		if e.LastLBA < e.FirstLBA {
			c.log.Warnf("GPT entry %d ends before it starts, ignored", i)
			continue
		}

		p := partition.New()
		p.SetPartitionNumber(uint(i))
		p.SetStartingSector(e.FirstLBA)
		p.SetSizeInSectors(e.LastLBA - e.FirstLBA + 1)
		if err := p.SetUUID(e.GUID.String()); err != nil {
			return false, err
		}
		if e.Name != "" {
			if err := p.SetName(e.Name); err != nil {
				c.log.Warnf("GPT entry %d: %v", i, err)
			}
		}
		attrs := make([]byte, 8)
		binary.LittleEndian.PutUint64(attrs, e.Attributes)
		p.SetAttributeBits(attrs)

		k := cat.KindFromGUID(e.Type.String())
		p.SetKind(k)
		k.Unref()

		slots[i] = p
	}

	c.table = partition.TableGPT
	c.labeled = true
	c.state = StateLabeled
	c.diskGUID = h.DiskGUID
	c.slots = slots
	c.first, c.last = h.FirstUsableLBA, min(h.LastUsableLBA, c.sectors-1)
	c.adoptGrain()

	if h.CurrentLBA != 1 {
		// Writing back restores the primary copy.
		c.markModified()
	}

	c.log.Debugf("found GPT, disk GUID %s", h.DiskGUID)
	return true, nil
}

// loadGPT reads the header at lba and the entry array it points to.
// Validation failures are returned as corruptError.
func (c *Context) loadGPT(lba uint64) (*disk.GPTHeader, []disk.GPTEntry, error) {
	sector, err := disk.ReadSectors(c.dev, lba, 1)
	if err != nil {
		return nil, nil, err
	}

	h, err := disk.ParseGPTHeader(sector)
	if err != nil {
		return nil, nil, &corruptError{err}
	}
	if h.CurrentLBA != lba {
		return nil, nil, &corruptError{fmt.Errorf("header at LBA %d claims to be at %d", lba, h.CurrentLBA)}
	}
	if h.NumPartitions == 0 || h.NumPartitions > 1024 {
		return nil, nil, &corruptError{fmt.Errorf("implausible entry count %d", h.NumPartitions)}
	}
	if h.FirstUsableLBA > h.LastUsableLBA {
		return nil, nil, &corruptError{fmt.Errorf("first usable LBA %d after last usable LBA %d", h.FirstUsableLBA, h.LastUsableLBA)}
	}

	arrayBytes := uint64(h.NumPartitions) * uint64(h.PartitionEntrySize)
	count := (arrayBytes + uint64(c.sectorSize) - 1) / uint64(c.sectorSize)
	if h.PartitionEntryLBA+count > c.sectors {
		return nil, nil, &corruptError{fmt.Errorf("entry array at LBA %d runs past the end of the disk", h.PartitionEntryLBA)}
	}

	buf, err := disk.ReadSectors(c.dev, h.PartitionEntryLBA, int(count))
	if err != nil {
		return nil, nil, err
	}
	entries, err := disk.ParseGPTEntries(buf, h.NumPartitions, h.PartitionEntrySize, h.PartitionArrayCRC32)
	if err != nil {
		return nil, nil, &corruptError{err}
	}
	return h, entries, nil
}

func (c *Context) encodeGPTEntries() ([]byte, uint32, error) {
	entries := make([]disk.GPTEntry, disk.GPTEntries)

	for i, p := range c.slots {
		if p == nil {
			continue
		}
		typ, err := gptType(p.Kind())
		if err != nil {
			return nil, 0, fmt.Errorf("partition %d: %w", i, err)
		}
		start, _ := p.StartingSector()
		end, _ := p.EndingSector()

		e := disk.GPTEntry{
			Type:     typ,
			FirstLBA: start,
			LastLBA:  end,
		}
		if u, ok := p.UUID(); ok {
			if e.GUID, err = uuid.Parse(u); err != nil {
				return nil, 0, fmt.Errorf("partition %d: %w", i, err)
			}
		}
		if name, ok := p.Name(); ok {
			e.Name = name
		}
		var attrs [8]byte
		copy(attrs[:], p.AttributeBits())
		e.Attributes = binary.LittleEndian.Uint64(attrs[:])

		entries[i] = e
	}
	return disk.EncodeGPTEntries(entries)
}

func (c *Context) writeGPT(ctx context.Context) error {
	geom, err := disk.NewGPTGeometry(c.sectors, c.sectorSize)
	if err != nil {
		return err
	}
	array, crc, err := c.encodeGPTEntries()
	if err != nil {
		return err
	}

	primary := disk.GPTHeader{
		Revision:            disk.GPTRevision,
		HeaderSize:          disk.GPTHeaderSize,
		CurrentLBA:          geom.PrimaryHeader,
		BackupLBA:           geom.BackupHeader,
		FirstUsableLBA:      c.first,
		LastUsableLBA:       min(c.last, geom.LastUsable),
		DiskGUID:            c.diskGUID,
		PartitionEntryLBA:   geom.PrimaryEntries,
		NumPartitions:       disk.GPTEntries,
		PartitionEntrySize:  disk.GPTEntrySize,
		PartitionArrayCRC32: crc,
	}
	backup := primary
	backup.CurrentLBA, backup.BackupLBA = geom.BackupHeader, geom.PrimaryHeader
	backup.PartitionEntryLBA = geom.BackupEntries

	pmbr, err := disk.ReadSectors(c.dev, 0, 1)
	if err != nil {
		return err
	}
	copy(pmbr, disk.NewProtectiveMBR(c.sectors).Bytes())

	padded := make([]byte, disk.EntryArraySectors(c.sectorSize)*uint64(c.sectorSize))
	copy(padded, array)

	writes := []struct {
		lba uint64
		buf []byte
	}{
		{0, pmbr},
		{geom.PrimaryEntries, padded},
		{geom.PrimaryHeader, primary.Bytes(c.sectorSize)},
		{geom.BackupEntries, padded},
		{geom.BackupHeader, backup.Bytes(c.sectorSize)},
	}
	for _, w := range writes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := disk.WriteSectors(c.dev, w.lba, w.buf); err != nil {
			return err
		}
	}
	return nil
}

// gptType returns the type GUID stored in a GPT entry for k.
func gptType(k *partition.Kind) (uuid.UUID, error) {
	if g, ok := k.GUID(); ok && g != partition.GUIDEmpty {
		return g.UUID(), nil
	}
	if _, s, ok := k.Unknown(); ok {
		if u, err := uuid.Parse(s); err == nil && u != uuid.Nil {
			return u, nil
		}
	}
	return uuid.Nil, &partition.ConfigError{Field: "kind", Reason: fmt.Sprintf("%s is not a GPT partition type", k)}
}
