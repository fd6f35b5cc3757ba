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
package partition

import (
	"cmp"
	"math"
	"strings"
	"sync/atomic"
	"unicode/utf8"
)

// Partition is the editable metadata of one partition table entry. Each
// identity field is either set or unset; an unset number, start or size is
// filled in by the label engine when the partition is applied.
type Partition struct {
	number    uint
	hasNumber bool
	start     uint64
	hasStart  bool
	size      uint64
	hasSize   bool
	parent    uint
	hasParent bool

	name    string
	hasName bool
	uuid    string
	hasUUID bool
	attrs   []byte
	kind    *Kind

	firstFreeNumber bool
	firstFreeStart  bool
	lastFreeEnd     bool

	wholeDisk bool

	refs atomic.Int32
}

// New returns an empty partition that defers number, start and end to the
// label engine.
func New() *Partition {
	p := &Partition{
		firstFreeNumber: true,
		firstFreeStart:  true,
		lastFreeEnd:     true,
	}
	p.refs.Store(1)
	return p
}

// PartitionNumber returns the partition number, if set.
func (p *Partition) PartitionNumber() (uint, bool) { return p.number, p.hasNumber }

// SetPartitionNumber sets the number and stops deferring it to the engine.
func (p *Partition) SetPartitionNumber(n uint) {
	p.number, p.hasNumber = n, true
	p.firstFreeNumber = false
}

// UnsetPartitionNumber clears the number and defers it to the engine.
func (p *Partition) UnsetPartitionNumber() {
	p.number, p.hasNumber = 0, false
	p.firstFreeNumber = true
}

func (p *Partition) UsesDefaultPartitionNumber() bool { return p.firstFreeNumber }

// UseFirstFreePartitionNumber toggles deferring the number to the engine.
// Enabling it discards any explicit number.
func (p *Partition) UseFirstFreePartitionNumber(on bool) {
	if on {
		p.UnsetPartitionNumber()
		return
	}
	p.firstFreeNumber = false
}

// StartingSector returns the first sector, if set.
func (p *Partition) StartingSector() (uint64, bool) { return p.start, p.hasStart }

func (p *Partition) SetStartingSector(lba uint64) {
	p.start, p.hasStart = lba, true
	p.firstFreeStart = false
}

func (p *Partition) UnsetStartingSector() {
	p.start, p.hasStart = 0, false
	p.firstFreeStart = true
}

func (p *Partition) UsesDefaultStartingSector() bool { return p.firstFreeStart }

func (p *Partition) UseFirstFreeStartingSector(on bool) {
	if on {
		p.UnsetStartingSector()
		return
	}
	p.firstFreeStart = false
}

// SizeInSectors returns the size, if set.
func (p *Partition) SizeInSectors() (uint64, bool) { return p.size, p.hasSize }

func (p *Partition) SetSizeInSectors(n uint64) {
	p.size, p.hasSize = n, true
	p.lastFreeEnd = false
}

func (p *Partition) UnsetSizeInSectors() {
	p.size, p.hasSize = 0, false
	p.lastFreeEnd = true
}

func (p *Partition) UsesDefaultSize() bool { return p.lastFreeEnd }

func (p *Partition) UseLastFreeEndingSector(on bool) {
	if on {
		p.UnsetSizeInSectors()
		return
	}
	p.lastFreeEnd = false
}

// EndingSector returns the last sector, if both start and a non-zero size
// are set.
func (p *Partition) EndingSector() (uint64, bool) {
	if !p.hasStart || !p.hasSize || p.size == 0 {
		return 0, false
	}
	return p.start + p.size - 1, true
}

// Parent returns the number of the enclosing partition for nested tables.
func (p *Partition) Parent() (uint, bool) { return p.parent, p.hasParent }

func (p *Partition) SetParent(n uint) { p.parent, p.hasParent = n, true }

func (p *Partition) UnsetParent() { p.parent, p.hasParent = 0, false }

func (p *Partition) Name() (string, bool) { return p.name, p.hasName }

// SetName fails on text the on-disk representations cannot carry.
func (p *Partition) SetName(name string) error {
	if err := checkText("name", name); err != nil {
		return err
	}
	p.name, p.hasName = name, true
	return nil
}

func (p *Partition) UnsetName() { p.name, p.hasName = "", false }

func (p *Partition) UUID() (string, bool) { return p.uuid, p.hasUUID }

func (p *Partition) SetUUID(u string) error {
	if err := checkText("uuid", u); err != nil {
		return err
	}
	p.uuid, p.hasUUID = strings.ToLower(u), true
	return nil
}

func (p *Partition) UnsetUUID() { p.uuid, p.hasUUID = "", false }

// AttributeBits returns a copy of the raw attribute bytes.
func (p *Partition) AttributeBits() []byte {
	return append([]byte(nil), p.attrs...)
}

func (p *Partition) SetAttributeBits(b []byte) {
	p.attrs = append([]byte(nil), b...)
}

// Kind returns the partition type, or nil.
func (p *Partition) Kind() *Kind { return p.kind }

// SetKind shares k with p, taking a reference to it and dropping the one
// held on the previous kind.
func (p *Partition) SetKind(k *Kind) {
	if k != nil {
		k.Ref()
	}
	if p.kind != nil {
		p.kind.Unref()
	}
	p.kind = k
}

func (p *Partition) UnsetKind() { p.SetKind(nil) }

// IsWholeDisk reports whether the label engine marked p as a placeholder
// covering the whole device.
func (p *Partition) IsWholeDisk() bool { return p.wholeDisk }

// MarkWholeDisk is used by label engines when producing partitions.
func (p *Partition) MarkWholeDisk(on bool) { p.wholeDisk = on }

// ComparePartitionNumbers orders by number. Unset numbers sort last.
func (p *Partition) ComparePartitionNumbers(o *Partition) int {
	a, b := uint64(math.MaxUint64), uint64(math.MaxUint64)
	if p.hasNumber {
		a = uint64(p.number)
	}
	if o.hasNumber {
		b = uint64(o.number)
	}
	return cmp.Compare(a, b)
}

// CompareStartingSectors orders by first sector. Unset starts sort first.
func (p *Partition) CompareStartingSectors(o *Partition) int {
	switch {
	case !p.hasStart && !o.hasStart:
		return 0
	case !p.hasStart:
		return -1
	case !o.hasStart:
		return 1
	}
	return cmp.Compare(p.start, o.start)
}

// Clone returns a deep copy with its own reference count. The kind is
// shared, not copied.
func (p *Partition) Clone() *Partition {
	c := &Partition{
		number:          p.number,
		hasNumber:       p.hasNumber,
		start:           p.start,
		hasStart:        p.hasStart,
		size:            p.size,
		hasSize:         p.hasSize,
		parent:          p.parent,
		hasParent:       p.hasParent,
		name:            p.name,
		hasName:         p.hasName,
		uuid:            p.uuid,
		hasUUID:         p.hasUUID,
		attrs:           p.AttributeBits(),
		firstFreeNumber: p.firstFreeNumber,
		firstFreeStart:  p.firstFreeStart,
		lastFreeEnd:     p.lastFreeEnd,
		wholeDisk:       p.wholeDisk,
	}
	c.refs.Store(1)
	c.SetKind(p.kind)
	return c
}

// Ref adds a reference and returns p.
func (p *Partition) Ref() *Partition {
	p.refs.Add(1)
	return p
}

// Unref drops a reference. On the last one the kind reference is released
// and p must not be used again.
func (p *Partition) Unref() bool {
	n := p.refs.Add(-1)
	if n < 0 {
		panic("partition: Partition released more times than referenced")
	}
	if n > 0 {
		return false
	}
	if p.kind != nil {
		p.kind.Unref()
		p.kind = nil
	}
	return true
}

func (p *Partition) RefCount() int32 { return p.refs.Load() }

func checkText(field, s string) error {
	if !utf8.ValidString(s) {
		return &ConfigError{Field: field, Reason: "not valid UTF-8"}
	}
	if strings.IndexByte(s, 0) >= 0 {
		return &ConfigError{Field: field, Reason: "contains a NUL byte"}
	}
	return nil
}
