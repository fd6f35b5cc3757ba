// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package disk

import (
	"encoding/binary"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/ostafen/partedit/pkg/partition"
)

const (
	MBRSize            = 512
	mbrEntriesOffset   = 0x1BE
	mbrSignatureOffset = 0x1FE
	mbrEntrySize       = 16

	// MBRPartitions is the number of primary entries in an MBR.
	MBRPartitions = 4

	// BootIndicatorActive marks the bootable entry.
	BootIndicatorActive = 0x80
)

// MBRPartitionEntry represents a single 16-byte entry in the MBR's partition table.
// All multi-byte fields are stored as byte arrays to explicitly handle little-endian
// conversion when reading from the raw MBR byte slice.
type MBRPartitionEntry struct {
	BootIndicator uint8          // 0x00: 0x80 for bootable, 0x00 for inactive
	StartCHS      [3]byte        // 0x01: Starting Cylinder-Head-Sector address
	PartitionType partition.Code // 0x04: Partition type ID (e.g., 0x0B for FAT32, 0x83 for Linux)
	EndCHS        [3]byte        // 0x05: Ending Cylinder-Head-Sector address
	StartLBA      [4]byte        // 0x08: Starting Logical Block Address (LBA) - uint32, Little-Endian
	TotalSectors  [4]byte        // 0x0C: Total sectors in partition - uint32, Little-Endian
}

// ReadStartLBA returns the starting LBA of the partition.
func (p *MBRPartitionEntry) ReadStartLBA() uint32 {
	return binary.LittleEndian.Uint32(p.StartLBA[:])
}

// ReadTotalSectors returns the total number of sectors in the partition.
func (p *MBRPartitionEntry) ReadTotalSectors() uint32 {
	return binary.LittleEndian.Uint32(p.TotalSectors[:])
}

// SetExtent stores the LBA range and the matching CHS tuples.
func (p *MBRPartitionEntry) SetExtent(start, sectors uint32) {
	binary.LittleEndian.PutUint32(p.StartLBA[:], start)
	binary.LittleEndian.PutUint32(p.TotalSectors[:], sectors)
	p.StartCHS = lbaToCHS(start)
	p.EndCHS = lbaToCHS(start + sectors - 1)
}

// IsEmpty reports whether the slot is unused.
func (p *MBRPartitionEntry) IsEmpty() bool {
	return p.PartitionType == partition.CodeEmpty || p.ReadTotalSectors() == 0
}

// String provides a human-readable representation of an MBRPartitionEntry.
func (p *MBRPartitionEntry) String() string {
	bootable := "No"
	if p.BootIndicator == BootIndicatorActive {
		bootable = "Yes"
	}
	return fmt.Sprintf("  Bootable: %s (0x%02X)\n"+
		"  Partition Type: 0x%02X (%s)\n"+
		"  Start LBA: %d\n"+
		"  Total Sectors: %d\n"+
		"  Size: %d bytes (%s)",
		bootable, p.BootIndicator,
		uint8(p.PartitionType), p.PartitionType.Name(),
		p.ReadStartLBA(),
		p.ReadTotalSectors(),
		uint64(p.ReadTotalSectors())*512, // Assuming 512 bytes per sector
		humanize.IBytes(uint64(p.ReadTotalSectors())*512))
}

// MBR represents the Master Boot Record structure.
type MBR struct {
	BootCode         [440]byte                        // 0x000-0x1B7: Bootstrap code
	DiskSignature    [4]byte                          // 0x1B8-0x1BB: Optional 32-bit disk signature
	Reserved         [2]byte                          // 0x1BC-0x1BD: Usually 0x0000
	PartitionEntries [MBRPartitions]MBRPartitionEntry // 0x1BE-0x1FD: Four 16-byte partition entries
	Signature        [2]byte                          // 0x1FE-0x1FF: MBR signature (0x55AA)
}

// NewMBR returns an empty MBR carrying the given disk signature.
func NewMBR(diskSignature uint32) *MBR {
	var mbr MBR
	binary.LittleEndian.PutUint32(mbr.DiskSignature[:], diskSignature)
	binary.LittleEndian.PutUint16(mbr.Signature[:], 0xAA55)
	return &mbr
}

// NewProtectiveMBR returns the MBR placed in front of a GPT: one entry of
// type 0xEE covering the disk from LBA 1, capped at 32 bits.
func NewProtectiveMBR(totalSectors uint64) *MBR {
	mbr := NewMBR(0)
	sectors := totalSectors - 1
	if sectors > 0xFFFFFFFF {
		sectors = 0xFFFFFFFF
	}
	mbr.PartitionEntries[0].PartitionType = partition.CodeGPTProtective
	mbr.PartitionEntries[0].SetExtent(1, uint32(sectors))
	return mbr
}

// ReadDiskSignature returns the disk signature as a uint32.
func (m *MBR) ReadDiskSignature() uint32 {
	return binary.LittleEndian.Uint32(m.DiskSignature[:])
}

// ReadSignature returns the MBR signature (should be 0xAA55).
func (m *MBR) ReadSignature() uint16 {
	return binary.LittleEndian.Uint16(m.Signature[:])
}

// IsProtective reports whether the MBR guards a GPT.
func (m *MBR) IsProtective() bool {
	for _, e := range m.PartitionEntries {
		if e.PartitionType == partition.CodeGPTProtective {
			return true
		}
	}
	return false
}

// String provides a human-readable representation of the MBR.
func (m *MBR) String() string {
	s := fmt.Sprintf("--- Master Boot Record (MBR) ---\n"+
		"Disk Signature: 0x%08X\n"+
		"MBR Signature: 0x%04X (Expected: 0xAA55)\n\n"+
		"--- Partition Table Entries ---",
		m.ReadDiskSignature(), m.ReadSignature())

	for i, entry := range m.PartitionEntries {
		s += fmt.Sprintf("\nPartition %d:\n%s", i+1, entry.String())
	}
	return s
}

// Bytes encodes the MBR into its 512-byte on-disk form.
func (m *MBR) Bytes() []byte {
	data := make([]byte, MBRSize)

	copy(data[0x000:0x1B8], m.BootCode[:])
	copy(data[0x1B8:0x1BC], m.DiskSignature[:])
	copy(data[0x1BC:0x1BE], m.Reserved[:])

	for i, e := range m.PartitionEntries {
		entryBytes := data[mbrEntriesOffset+i*mbrEntrySize:]

		entryBytes[0x00] = e.BootIndicator
		copy(entryBytes[0x01:0x04], e.StartCHS[:])
		entryBytes[0x04] = uint8(e.PartitionType)
		copy(entryBytes[0x05:0x08], e.EndCHS[:])
		copy(entryBytes[0x08:0x0C], e.StartLBA[:])
		copy(entryBytes[0x0C:0x10], e.TotalSectors[:])
	}

	copy(data[mbrSignatureOffset:], m.Signature[:])
	return data
}

// ParseMBR parses a 512-byte slice into an MBR struct.
// It assumes the input slice is exactly 512 bytes long and contains
// the raw binary data of an MBR in little-endian format.
func ParseMBR(data []byte) (*MBR, error) {
	if len(data) != MBRSize {
		return nil, fmt.Errorf("input data slice size mismatch: expected %d bytes, got %d bytes", MBRSize, len(data))
	}

	var mbr MBR

	// Copy bootstrap code
	copy(mbr.BootCode[:], data[0x000:0x1B8])
	// Copy disk signature
	copy(mbr.DiskSignature[:], data[0x1B8:0x1BC])
	// Copy reserved bytes
	copy(mbr.Reserved[:], data[0x1BC:0x1BE])

	// Populate partition entries
	for i := 0; i < MBRPartitions; i++ {
		entryOffset := mbrEntriesOffset + (i * mbrEntrySize)
		entryBytes := data[entryOffset : entryOffset+mbrEntrySize]

		mbr.PartitionEntries[i].BootIndicator = entryBytes[0x00]
		copy(mbr.PartitionEntries[i].StartCHS[:], entryBytes[0x01:0x04])
		mbr.PartitionEntries[i].PartitionType = partition.Code(entryBytes[0x04])
		copy(mbr.PartitionEntries[i].EndCHS[:], entryBytes[0x05:0x08])
		copy(mbr.PartitionEntries[i].StartLBA[:], entryBytes[0x08:0x0C])
		copy(mbr.PartitionEntries[i].TotalSectors[:], entryBytes[0x0C:0x10])
	}

	// Copy MBR signature
	copy(mbr.Signature[:], data[mbrSignatureOffset:mbrSignatureOffset+2])

	// Validate MBR signature
	if mbr.ReadSignature() != 0xAA55 {
		return nil, fmt.Errorf("invalid MBR signature: expected 0xAA55, got 0x%04X", mbr.ReadSignature())
	}
	return &mbr, nil
}

// lbaToCHS converts an LBA to the packed CHS form using the conventional
// 255 heads / 63 sectors geometry. Addresses past cylinder 1023 saturate.
func lbaToCHS(lba uint32) [3]byte {
	const heads, sectors = 255, 63

	c := lba / (heads * sectors)
	if c > 1023 {
		return [3]byte{0xFE, 0xFF, 0xFF}
	}
	h := (lba / sectors) % heads
	s := lba%sectors + 1

	return [3]byte{
		byte(h),
		byte(s) | byte((c>>2)&0xC0),
		byte(c),
	}
}
