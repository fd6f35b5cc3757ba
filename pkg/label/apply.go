package label

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/ostafen/partedit/internal/disk"
	"github.com/ostafen/partedit/pkg/partition"
)

// AddPartition adds a copy of p to the table and returns its number.
// Number, start and end deferred by p are resolved with ComputeDefaults.
// A partition without a kind gets the Linux data type of the label, and a
// GPT partition without a UUID gets a random one.
func (c *Context) AddPartition(p *partition.Partition) (uint, error) {
	n, err := c.add(p)
	if err != nil {
		return 0, opError("add partition", err)
	}
	c.markModified()
	return n, nil
}

func (c *Context) add(p *partition.Partition) (uint, error) {
	if !c.labeled {
		return 0, ErrNoLabel
	}

	q := p.Clone()
	if !q.IsWholeDisk() {
		n, start, end, err := c.ComputeDefaults(p)
		if err != nil {
			q.Unref()
			return 0, err
		}
		q.SetPartitionNumber(n)
		q.SetStartingSector(start)
		q.SetSizeInSectors(end - start + 1)
	}

	n, ok := q.PartitionNumber()
	if !ok {
		q.Unref()
		return 0, &partition.ConfigError{Field: "number", Reason: "whole-disk partition without a number"}
	}
	if int(n) >= len(c.slots) {
		q.Unref()
		return 0, fmt.Errorf("partition %d of %d: %w", n+1, len(c.slots), ErrOutOfRange)
	}
	if c.slots[n] != nil {
		q.Unref()
		return 0, fmt.Errorf("partition %d: %w", n+1, ErrPartitionNumberInUse)
	}

	if err := c.complete(q); err != nil {
		q.Unref()
		return 0, err
	}
	if err := c.checkPlacement(q, int(n)); err != nil {
		q.Unref()
		return 0, err
	}

	c.slots[n] = q
	c.log.Debugf("added partition %d: %s", n+1, describe(q))
	return n, nil
}

// complete fills in label defaults for q and checks that its fields can be
// stored by the label.
func (c *Context) complete(q *partition.Partition) error {
	if q.Kind() == nil {
		k := c.defaultKind()
		q.SetKind(k)
		k.Unref()
	}

	switch c.table {
	case partition.TableDOS:
		if _, err := dosCode(q.Kind()); err != nil {
			return err
		}
		if _, ok := q.Name(); ok {
			return &partition.ConfigError{Field: "name", Reason: "DOS partitions have no name"}
		}
		start, _ := q.StartingSector()
		size, _ := q.SizeInSectors()
		if start > dosMaxLBA || size > dosMaxLBA {
			return fmt.Errorf("DOS entries address at most %d sectors: %w", uint64(dosMaxLBA), ErrOutOfRange)
		}

	case partition.TableGPT:
		if _, err := gptType(q.Kind()); err != nil {
			return err
		}
		if _, ok := q.UUID(); !ok {
			if err := q.SetUUID(uuid.NewString()); err != nil {
				return err
			}
		} else if u, _ := q.UUID(); !isUUID(u) {
			return &partition.ConfigError{Field: "uuid", Reason: fmt.Sprintf("%q is not a UUID", u)}
		}
		if name, ok := q.Name(); ok {
			if _, err := disk.EncodeGPTName(name); err != nil {
				return &partition.ConfigError{Field: "name", Reason: err.Error()}
			}
		}

	default:
		if _, ok := q.Kind().Code(); !ok {
			return &partition.ConfigError{Field: "kind", Reason: fmt.Sprintf("%s is not a %s partition type", q.Kind(), c.table)}
		}
	}

	attrs := q.AttributeBits()
	if width := partition.AttributeWidth(c.table); len(attrs) != width {
		resized := make([]byte, width)
		copy(resized, attrs)
		q.SetAttributeBits(resized)
	}
	return nil
}

func (c *Context) defaultKind() *partition.Kind {
	cat := partition.CatalogueFor(c.table)
	switch c.table {
	case partition.TableGPT:
		return cat.KindFromGUID(string(partition.GUIDLinuxFilesystem))
	case partition.TableBSD:
		return cat.KindFromCode(7) // 4.2BSD
	}
	return cat.KindFromCode(uint32(partition.CodeLinux))
}

// checkPlacement verifies that q, stored in slot n, lies in the usable area
// and overlaps no other partition.
func (c *Context) checkPlacement(q *partition.Partition, n int) error {
	e, ok := extentOf(q)
	if !ok {
		return &partition.ConfigError{Field: "size", Reason: "partition has no extent"}
	}
	if q.IsWholeDisk() {
		if e.end >= c.sectors {
			return fmt.Errorf("sectors %d-%d: %w", e.start, e.end, ErrOutOfRange)
		}
		return nil
	}
	if e.start < c.first || e.end > c.last {
		return fmt.Errorf("sectors %d-%d outside %d-%d: %w", e.start, e.end, c.first, c.last, ErrOutOfRange)
	}
	for i, p := range c.slots {
		if p == nil || i == n || p.IsWholeDisk() {
			continue
		}
		if o, ok := extentOf(p); ok && o.overlaps(e) {
			return fmt.Errorf("sectors %d-%d and partition %d: %w", e.start, e.end, i+1, ErrOverlap)
		}
	}
	return nil
}

// DeletePartition removes partition n from the table.
func (c *Context) DeletePartition(n uint) error {
	const op = "delete partition"

	p, err := c.slot(n)
	if err != nil {
		return opError(op, err)
	}
	c.slots[n] = nil
	p.Unref()

	c.log.Debugf("deleted partition %d", n+1)
	c.markModified()
	return nil
}

// SetPartition updates partition n with the fields that are set in p:
// start, size, kind, name, UUID and attribute bits. The number of p is
// ignored.
func (c *Context) SetPartition(n uint, p *partition.Partition) error {
	const op = "set partition"

	old, err := c.slot(n)
	if err != nil {
		return opError(op, err)
	}

	q := old.Clone()
	if s, ok := p.StartingSector(); ok {
		q.SetStartingSector(s)
	}
	if s, ok := p.SizeInSectors(); ok {
		if s == 0 {
			q.Unref()
			return opError(op, &partition.ConfigError{Field: "size", Reason: "zero sectors"})
		}
		q.SetSizeInSectors(s)
	}
	if k := p.Kind(); k != nil {
		q.SetKind(k)
	}
	if name, ok := p.Name(); ok {
		if err := q.SetName(name); err != nil {
			q.Unref()
			return opError(op, err)
		}
	}
	if u, ok := p.UUID(); ok {
		if err := q.SetUUID(u); err != nil {
			q.Unref()
			return opError(op, err)
		}
	}
	if attrs := p.AttributeBits(); len(attrs) > 0 {
		q.SetAttributeBits(attrs)
	}

	if err := c.complete(q); err != nil {
		q.Unref()
		return opError(op, err)
	}
	if err := c.checkPlacement(q, int(n)); err != nil {
		q.Unref()
		return opError(op, err)
	}

	c.slots[n] = q
	old.Unref()

	c.log.Debugf("updated partition %d: %s", n+1, describe(q))
	c.markModified()
	return nil
}

// SetKind changes the type of partition n.
func (c *Context) SetKind(n uint, k *partition.Kind) error {
	p, err := partition.NewBuilder().Kind(k).Build()
	if err != nil {
		return opError("set kind", err)
	}
	defer p.Unref()
	return c.SetPartition(n, p)
}

// ToggleFlag flips one attribute bit of partition n. The flag must belong
// to the current label.
func (c *Context) ToggleFlag(n uint, f partition.BitFlag) error {
	const op = "toggle flag"

	if c.labeled && f.Table != c.table {
		return opError(op, fmt.Errorf("%s flag %q on a %s label: %w", f.Table, f, c.table, ErrUnsupportedLabel))
	}
	old, err := c.slot(n)
	if err != nil {
		return opError(op, err)
	}

	p := partition.New()
	defer p.Unref()
	p.SetAttributeBits(f.Toggle(old.AttributeBits()))
	return c.SetPartition(n, p)
}

// ApplyList replaces every partition of the table with copies of the
// partitions of l, resolving deferred fields in list order. On failure the
// table is left unchanged.
func (c *Context) ApplyList(l *partition.List) error {
	const op = "apply list"

	if !c.labeled {
		return opError(op, ErrNoLabel)
	}

	l.Ref()
	defer l.Unref()

	saved := c.slots
	c.slots = make([]*partition.Partition, len(saved))

	for i, p := range l.All() {
		if _, err := c.add(p); err != nil {
			c.releaseSlots()
			c.slots = saved
			return opError(op, fmt.Errorf("entry %d: %w", i, err))
		}
	}

	for _, p := range saved {
		if p != nil {
			p.Unref()
		}
	}
	c.markModified()
	return nil
}

// Partitions returns copies of all partitions in slot order. The caller
// owns the returned list.
func (c *Context) Partitions() (*partition.List, error) {
	if !c.labeled {
		return nil, opError("list partitions", ErrNoLabel)
	}

	l := partition.NewList()
	for _, p := range c.slots {
		if p == nil {
			continue
		}
		q := p.Clone()
		l.Push(q)
		q.Unref()
	}
	return l, nil
}

// Partition returns a copy of partition n. The caller must Unref it.
func (c *Context) Partition(n uint) (*partition.Partition, error) {
	p, err := c.slot(n)
	if err != nil {
		return nil, opError("get partition", err)
	}
	return p.Clone(), nil
}

func (c *Context) slot(n uint) (*partition.Partition, error) {
	if !c.labeled {
		return nil, ErrNoLabel
	}
	if int(n) >= len(c.slots) || c.slots[n] == nil {
		return nil, fmt.Errorf("partition %d: %w", n+1, ErrPartitionNotFound)
	}
	return c.slots[n], nil
}

func describe(p *partition.Partition) string {
	start, _ := p.StartingSector()
	end, _ := p.EndingSector()
	kind := "none"
	if k := p.Kind(); k != nil {
		kind = k.Name()
	}
	return fmt.Sprintf("sectors %d-%d, type %s", start, end, kind)
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil && len(s) == 36
}
