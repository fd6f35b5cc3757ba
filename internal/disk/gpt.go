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
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/unicode"
)

const (
	GPTHeaderSize     = 92
	GPTEntries        = 128
	GPTEntrySize      = 128
	GPTRevision       = 0x00010000
	GPTNameCodeUnits  = 36
	gptNameBytes      = GPTNameCodeUnits * 2
	gptEntryArraySize = GPTEntries * GPTEntrySize
)

var GPTSignature = [8]byte{'E', 'F', 'I', ' ', 'P', 'A', 'R', 'T'}

var (
	ErrNoGPT          = errors.New("no GPT signature")
	ErrGPTHeaderCRC   = errors.New("GPT header checksum mismatch")
	ErrGPTEntriesCRC  = errors.New("GPT partition entry array checksum mismatch")
	ErrGPTNameTooLong = fmt.Errorf("GPT partition name longer than %d UTF-16 code units", GPTNameCodeUnits)
)

// GPTHeader is the decoded form of a primary or backup GPT header.
type GPTHeader struct {
	Revision            uint32
	HeaderSize          uint32
	CurrentLBA          uint64 // address of this header
	BackupLBA           uint64 // address of the other header
	FirstUsableLBA      uint64 // primary partition table last LBA + 1
	LastUsableLBA       uint64 // secondary partition table first LBA - 1
	DiskGUID            uuid.UUID
	PartitionEntryLBA   uint64
	NumPartitions       uint32
	PartitionEntrySize  uint32
	PartitionArrayCRC32 uint32
}

// GPTEntry is one decoded entry of the partition entry array.
type GPTEntry struct {
	Type       uuid.UUID
	GUID       uuid.UUID
	FirstLBA   uint64
	LastLBA    uint64
	Attributes uint64
	Name       string
}

// IsEmpty reports whether the entry slot is unused.
func (e *GPTEntry) IsEmpty() bool {
	return e.Type == uuid.Nil
}

// GPTGeometry holds the LBAs that a GPT occupies on a disk.
type GPTGeometry struct {
	PrimaryHeader  uint64
	PrimaryEntries uint64
	FirstUsable    uint64
	LastUsable     uint64
	BackupEntries  uint64
	BackupHeader   uint64
}

// EntryArraySectors returns the sectors taken by a full entry array.
func EntryArraySectors(sectorSize int) uint64 {
	return (gptEntryArraySize + uint64(sectorSize) - 1) / uint64(sectorSize)
}

// NewGPTGeometry lays out a GPT on a disk of totalSectors.
func NewGPTGeometry(totalSectors uint64, sectorSize int) (GPTGeometry, error) {
	n := EntryArraySectors(sectorSize)
	if totalSectors < 2*n+3 {
		return GPTGeometry{}, fmt.Errorf("disk of %d sectors is too small for a GPT", totalSectors)
	}
	return GPTGeometry{
		PrimaryHeader:  1,
		PrimaryEntries: 2,
		FirstUsable:    2 + n,
		LastUsable:     totalSectors - n - 2,
		BackupEntries:  totalSectors - n - 1,
		BackupHeader:   totalSectors - 1,
	}, nil
}

// ParseGPTHeader decodes the header held at the start of sector and
// verifies its signature and checksum.
func ParseGPTHeader(sector []byte) (*GPTHeader, error) {
	if len(sector) < GPTHeaderSize {
		return nil, fmt.Errorf("GPT header needs %d bytes, got %d", GPTHeaderSize, len(sector))
	}
	if !bytes.Equal(sector[:8], GPTSignature[:]) {
		return nil, ErrNoGPT
	}

	le := binary.LittleEndian
	h := &GPTHeader{
		Revision:            le.Uint32(sector[8:]),
		HeaderSize:          le.Uint32(sector[12:]),
		CurrentLBA:          le.Uint64(sector[24:]),
		BackupLBA:           le.Uint64(sector[32:]),
		FirstUsableLBA:      le.Uint64(sector[40:]),
		LastUsableLBA:       le.Uint64(sector[48:]),
		DiskGUID:            GUIDFromDisk(sector[56:72]),
		PartitionEntryLBA:   le.Uint64(sector[72:]),
		NumPartitions:       le.Uint32(sector[80:]),
		PartitionEntrySize:  le.Uint32(sector[84:]),
		PartitionArrayCRC32: le.Uint32(sector[88:]),
	}

	if h.HeaderSize < GPTHeaderSize || int(h.HeaderSize) > len(sector) {
		return nil, fmt.Errorf("invalid GPT header size %d", h.HeaderSize)
	}
	if h.PartitionEntrySize < GPTEntrySize || h.PartitionEntrySize%8 != 0 {
		return nil, fmt.Errorf("invalid GPT entry size %d", h.PartitionEntrySize)
	}

	raw := append([]byte(nil), sector[:h.HeaderSize]...)
	want := le.Uint32(raw[16:])
	le.PutUint32(raw[16:], 0)
	if crc32.ChecksumIEEE(raw) != want {
		return nil, ErrGPTHeaderCRC
	}
	return h, nil
}

// Bytes encodes h into a sector, computing the header checksum.
func (h *GPTHeader) Bytes(sectorSize int) []byte {
	le := binary.LittleEndian
	b := make([]byte, sectorSize)

	copy(b[0:8], GPTSignature[:])
	le.PutUint32(b[8:], GPTRevision)
	le.PutUint32(b[12:], GPTHeaderSize)
	le.PutUint64(b[24:], h.CurrentLBA)
	le.PutUint64(b[32:], h.BackupLBA)
	le.PutUint64(b[40:], h.FirstUsableLBA)
	le.PutUint64(b[48:], h.LastUsableLBA)
	guid := GUIDToDisk(h.DiskGUID)
	copy(b[56:72], guid[:])
	le.PutUint64(b[72:], h.PartitionEntryLBA)
	le.PutUint32(b[80:], h.NumPartitions)
	le.PutUint32(b[84:], h.PartitionEntrySize)
	le.PutUint32(b[88:], h.PartitionArrayCRC32)

	le.PutUint32(b[16:], crc32.ChecksumIEEE(b[:GPTHeaderSize]))
	return b
}

// ParseGPTEntries decodes count entries of entrySize bytes and checks them
// against the expected array checksum.
func ParseGPTEntries(buf []byte, count, entrySize, wantCRC uint32) ([]GPTEntry, error) {
	total := int(count) * int(entrySize)
	if len(buf) < total {
		return nil, fmt.Errorf("GPT entry array needs %d bytes, got %d", total, len(buf))
	}
	if crc32.ChecksumIEEE(buf[:total]) != wantCRC {
		return nil, ErrGPTEntriesCRC
	}

	le := binary.LittleEndian
	entries := make([]GPTEntry, count)
	for i := range entries {
		raw := buf[i*int(entrySize):]

		name, err := DecodeGPTName(raw[56 : 56+gptNameBytes])
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		entries[i] = GPTEntry{
			Type:       GUIDFromDisk(raw[0:16]),
			GUID:       GUIDFromDisk(raw[16:32]),
			FirstLBA:   le.Uint64(raw[32:]),
			LastLBA:    le.Uint64(raw[40:]),
			Attributes: le.Uint64(raw[48:]),
			Name:       name,
		}
	}
	return entries, nil
}

// EncodeGPTEntries encodes a full entry array of GPTEntries slots. It
// returns the array and its checksum.
func EncodeGPTEntries(entries []GPTEntry) ([]byte, uint32, error) {
	if len(entries) > GPTEntries {
		return nil, 0, fmt.Errorf("%d GPT entries exceed the %d slots", len(entries), GPTEntries)
	}

	le := binary.LittleEndian
	buf := make([]byte, gptEntryArraySize)
	for i, e := range entries {
		if e.IsEmpty() {
			continue
		}
		raw := buf[i*GPTEntrySize:]

		typ := GUIDToDisk(e.Type)
		copy(raw[0:16], typ[:])
		guid := GUIDToDisk(e.GUID)
		copy(raw[16:32], guid[:])
		le.PutUint64(raw[32:], e.FirstLBA)
		le.PutUint64(raw[40:], e.LastLBA)
		le.PutUint64(raw[48:], e.Attributes)

		name, err := EncodeGPTName(e.Name)
		if err != nil {
			return nil, 0, fmt.Errorf("entry %d: %w", i, err)
		}
		copy(raw[56:56+gptNameBytes], name[:])
	}
	return buf, crc32.ChecksumIEEE(buf), nil
}

// EncodeGPTName converts s to the fixed-size UTF-16LE name field.
func EncodeGPTName(s string) ([gptNameBytes]byte, error) {
	var out [gptNameBytes]byte

	b, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
	if err != nil {
		return out, fmt.Errorf("encode GPT name %q: %w", s, err)
	}
	if len(b) > gptNameBytes {
		return out, ErrGPTNameTooLong
	}
	copy(out[:], b)
	return out, nil
}

// DecodeGPTName converts a UTF-16LE name field, stopping at the first NUL.
func DecodeGPTName(raw []byte) (string, error) {
	end := len(raw) &^ 1
	for i := 0; i+1 < len(raw); i += 2 {
		if raw[i] == 0 && raw[i+1] == 0 {
			end = i
			break
		}
	}

	b, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(raw[:end])
	if err != nil {
		return "", fmt.Errorf("decode GPT name: %w", err)
	}
	return string(b), nil
}

// GUIDToDisk converts u to the GPT on-disk layout, where the first three
// fields are little-endian.
func GUIDToDisk(u uuid.UUID) [16]byte {
	var b [16]byte
	copy(b[:], u[:])
	b[0], b[1], b[2], b[3] = u[3], u[2], u[1], u[0]
	b[4], b[5] = u[5], u[4]
	b[6], b[7] = u[7], u[6]
	return b
}

// GUIDFromDisk is the inverse of GUIDToDisk.
func GUIDFromDisk(b []byte) uuid.UUID {
	var u uuid.UUID
	copy(u[:], b[:16])
	u[0], u[1], u[2], u[3] = b[3], b[2], b[1], b[0]
	u[4], u[5] = b[5], b[4]
	u[6], u[7] = b[7], b[6]
	return u
}
