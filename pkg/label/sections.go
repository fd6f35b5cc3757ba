package label

import (
	"fmt"

	"github.com/ostafen/partedit/internal/disk"
	"github.com/ostafen/partedit/pkg/partition"
)

// TableSection is a region of the device occupied by the partition table.
type TableSection struct {
	Name   string
	Offset int64
	Size   int64
}

// Sections returns the on-disk regions of the current table in device
// order.
func (c *Context) Sections() ([]TableSection, error) {
	const op = "table sections"

	if !c.labeled {
		return nil, opError(op, ErrNoLabel)
	}

	ss := int64(c.sectorSize)
	switch c.table {
	case partition.TableDOS:
		return []TableSection{{Name: "MBR", Offset: 0, Size: disk.MBRSize}}, nil

	case partition.TableGPT:
		geom, err := disk.NewGPTGeometry(c.sectors, c.sectorSize)
		if err != nil {
			return nil, opError(op, err)
		}
		const entries = disk.GPTEntries * disk.GPTEntrySize
		return []TableSection{
			{Name: "PMBR", Offset: 0, Size: ss},
			{Name: "Primary GPT header", Offset: int64(geom.PrimaryHeader) * ss, Size: ss},
			{Name: "Primary GPT entries", Offset: int64(geom.PrimaryEntries) * ss, Size: entries},
			{Name: "Backup GPT entries", Offset: int64(geom.BackupEntries) * ss, Size: entries},
			{Name: "Backup GPT header", Offset: int64(geom.BackupHeader) * ss, Size: ss},
		}, nil
	}
	return nil, opError(op, fmt.Errorf("%s: %w", c.table, ErrUnsupportedLabel))
}
