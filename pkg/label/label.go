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

// Package label implements the partition table engine: it reads a table
// from a device into memory, applies partition edits to it, verifies it and
// writes it back.
package label

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
	"github.com/ostafen/partedit/internal/disk"
	"github.com/ostafen/partedit/internal/logger"
	"github.com/ostafen/partedit/pkg/partition"
)

// State is the lifecycle position of a Context.
type State int

const (
	StateUnlabeled State = iota
	StateLabeled
	StateModified
	StateVerified
	StateWritten
)

func (s State) String() string {
	switch s {
	case StateUnlabeled:
		return "unlabeled"
	case StateLabeled:
		return "labeled"
	case StateModified:
		return "modified"
	case StateVerified:
		return "verified"
	case StateWritten:
		return "written"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Context holds the in-memory partition table of one device.
//
// Partitions are stored by slot; a partition number is the 0-based index of
// its slot. A Context is not safe for concurrent use.
type Context struct {
	dev disk.Device
	log *logger.Logger

	sectorSize int
	sectors    uint64
	grainBytes uint64
	grainSet   bool
	grain      uint64
	readOnly   bool

	table    partition.TableKind
	labeled  bool
	state    State
	diskGUID uuid.UUID
	mbr      *disk.MBR

	// first and last usable sector for partitions
	first uint64
	last  uint64

	slots []*partition.Partition
}

// New reads the partition table of dev. A GPT is recognised by a valid
// primary or backup header, a DOS label by the boot signature. A device with
// neither is returned unlabeled.
func New(dev disk.Device, opts ...Option) (*Context, error) {
	c := &Context{
		dev:        dev,
		log:        logger.Default().Named("label"),
		sectorSize: dev.SectorSize(),
		sectors:    disk.Sectors(dev),
		grainBytes: disk.DefaultGrain,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.sectorSize < disk.MBRSize || c.sectorSize%disk.MBRSize != 0 {
		return nil, opError("open", fmt.Errorf("unsupported sector size %d", c.sectorSize))
	}
	if c.sectors < 2 {
		return nil, opError("open", fmt.Errorf("device of %d bytes is too small", dev.Size()))
	}
	c.grain = max(c.grainBytes/uint64(c.sectorSize), 1)

	if err := c.probe(); err != nil {
		return nil, opError("open", err)
	}
	return c, nil
}

func (c *Context) probe() error {
	found, err := c.readGPT()
	if err != nil || found {
		return err
	}

	found, err = c.readDOS()
	if err != nil || found {
		return err
	}

	c.log.Debug("no partition table found")
	return nil
}

// CreateLabel replaces the current table, if any, with an empty one of the
// given kind.
func (c *Context) CreateLabel(kind partition.TableKind) error {
	const op = "create label"

	var first, last uint64
	slots := 0

	switch kind {
	case partition.TableDOS:
		first, last = c.grain, c.sectors-1
		slots = disk.MBRPartitions
	case partition.TableGPT:
		geom, err := disk.NewGPTGeometry(c.sectors, c.sectorSize)
		if err != nil {
			return opError(op, err)
		}
		first, last = geom.FirstUsable, geom.LastUsable
		slots = disk.GPTEntries
	case partition.TableSUN, partition.TableSGI, partition.TableBSD:
		first, last = 0, c.sectors-1
		slots = legacySlots[kind]
	default:
		return opError(op, fmt.Errorf("%s: %w", kind, ErrUnsupportedLabel))
	}

	if first > last {
		return opError(op, fmt.Errorf("device of %d sectors is too small: %w", c.sectors, ErrNoSpace))
	}

	c.releaseSlots()
	c.table = kind
	c.labeled = true
	c.first, c.last = first, last
	c.slots = make([]*partition.Partition, slots)
	c.mbr = nil

	switch kind {
	case partition.TableDOS:
		u := uuid.New()
		c.mbr = disk.NewMBR(binary.LittleEndian.Uint32(u[:4]))
	case partition.TableGPT:
		if c.diskGUID == uuid.Nil {
			c.diskGUID = uuid.New()
		}
	default:
		c.installWholeDisk()
	}

	c.log.Debugf("created %s label: sectors %d-%d usable, %d slots", kind, first, last, slots)
	c.state = StateModified
	return nil
}

func (c *Context) HasLabel() bool { return c.labeled }

// Table returns the kind of the current label.
func (c *Context) Table() (partition.TableKind, bool) { return c.table, c.labeled }

func (c *Context) State() State { return c.state }

// Catalogue returns the type catalogue of the current label, or nil when the
// device is unlabeled.
func (c *Context) Catalogue() *partition.Catalogue {
	if !c.labeled {
		return nil
	}
	return partition.CatalogueFor(c.table)
}

func (c *Context) SectorSize() int { return c.sectorSize }

// Sectors returns the device size in sectors.
func (c *Context) Sectors() uint64 { return c.sectors }

// Grain returns the partition alignment in sectors.
func (c *Context) Grain() uint64 { return c.grain }

// UsableRange returns the first and last sector a partition may occupy.
func (c *Context) UsableRange() (uint64, uint64) { return c.first, c.last }

// MaxPartitions returns the number of slots of the current label.
func (c *Context) MaxPartitions() int { return len(c.slots) }

// DiskGUID returns the GPT disk GUID.
func (c *Context) DiskGUID() (uuid.UUID, bool) {
	return c.diskGUID, c.labeled && c.table == partition.TableGPT
}

// DiskSignature returns the DOS disk identifier.
func (c *Context) DiskSignature() (uint32, bool) {
	if c.mbr == nil || c.table != partition.TableDOS {
		return 0, false
	}
	return c.mbr.ReadDiskSignature(), true
}

// Close drops every partition held by the context. It does not close the
// device.
func (c *Context) Close() {
	c.releaseSlots()
	c.slots = nil
}

func (c *Context) markModified() {
	c.state = StateModified
}

func (c *Context) releaseSlots() {
	for i, p := range c.slots {
		if p != nil {
			p.Unref()
			c.slots[i] = nil
		}
	}
}

// usedStarts returns the starting sectors of all occupied slots.
func (c *Context) usedStarts() []uint64 {
	var starts []uint64
	for _, p := range c.slots {
		if p == nil || p.IsWholeDisk() {
			continue
		}
		if s, ok := p.StartingSector(); ok {
			starts = append(starts, s)
		}
	}
	return starts
}

// adoptGrain keeps the alignment of an existing table unless one was
// configured explicitly.
func (c *Context) adoptGrain() {
	if c.grainSet {
		return
	}
	if g := disk.GuessGrain(c.usedStarts(), c.grain); g != c.grain {
		c.log.Debugf("existing partitions aligned to %d sectors", g)
		c.grain = g
	}
}
