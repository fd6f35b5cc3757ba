package partition

import "iter"

// cursor walks a list from both ends. fwd is the index last yielded by the
// front (-1 before the first step), bwd the index last yielded by the back
// (len before the first step). Once the two would land on the same element
// met is set and both directions stay exhausted.
type cursor struct {
	list  *List
	fwd   int
	bwd   int
	start int
	met   bool
}

func newCursor(l *List) cursor {
	n := len(l.items)
	return cursor{list: l, fwd: -1, bwd: n, start: n}
}

func (c *cursor) next() (*Partition, bool) {
	i := c.fwd + 1
	if i >= len(c.list.items) || c.met {
		return nil, false
	}
	if c.bwd != c.start && i == c.bwd {
		c.met = true
		return nil, false
	}
	c.fwd = i
	return c.list.items[i], true
}

func (c *cursor) nextBack() (*Partition, bool) {
	i := c.bwd - 1
	if i < 0 || i >= len(c.list.items) || c.met {
		return nil, false
	}
	if c.fwd != -1 && i == c.fwd {
		c.met = true
		return nil, false
	}
	c.bwd = i
	return c.list.items[i], true
}

func (c *cursor) nth(n int, step func() (*Partition, bool)) (*Partition, bool) {
	for ; n > 0; n-- {
		if _, ok := step(); !ok {
			return nil, false
		}
	}
	return step()
}

// Iter is a double-ended iterator over a List. Next and NextBack may be
// interleaved freely; together they yield every element exactly once.
type Iter struct {
	c cursor
}

// Iter returns an iterator positioned before the first and after the last
// element.
func (l *List) Iter() *Iter {
	return &Iter{c: newCursor(l)}
}

func (it *Iter) Next() (*Partition, bool) { return it.c.next() }

func (it *Iter) NextBack() (*Partition, bool) { return it.c.nextBack() }

// Nth skips n elements from the front and returns the following one.
func (it *Iter) Nth(n int) (*Partition, bool) { return it.c.nth(n, it.c.next) }

// NthBack skips n elements from the back and returns the preceding one.
func (it *Iter) NthBack(n int) (*Partition, bool) { return it.c.nth(n, it.c.nextBack) }

// IterMut is Iter for callers that mutate the yielded partitions. Every
// yielded partition is lent by the list, so it remains valid, and its
// changes remain visible through other lookups, for the list's lifetime.
type IterMut struct {
	c cursor
}

func (l *List) IterMut() *IterMut {
	return &IterMut{c: newCursor(l)}
}

func (it *IterMut) lend(p *Partition, ok bool) (*Partition, bool) {
	if !ok {
		return nil, false
	}
	return it.c.list.lend(p), true
}

func (it *IterMut) Next() (*Partition, bool) { return it.lend(it.c.next()) }

func (it *IterMut) NextBack() (*Partition, bool) { return it.lend(it.c.nextBack()) }

func (it *IterMut) Nth(n int) (*Partition, bool) { return it.lend(it.c.nth(n, it.c.next)) }

func (it *IterMut) NthBack(n int) (*Partition, bool) {
	return it.lend(it.c.nth(n, it.c.nextBack))
}

// All iterates front to back, yielding each index and partition.
func (l *List) All() iter.Seq2[int, *Partition] {
	return func(yield func(int, *Partition) bool) {
		it := l.Iter()
		for p, ok := it.Next(); ok; p, ok = it.Next() {
			if !yield(it.c.fwd, p) {
				return
			}
		}
	}
}

// Backward iterates back to front, yielding each index and partition.
func (l *List) Backward() iter.Seq2[int, *Partition] {
	return func(yield func(int, *Partition) bool) {
		it := l.Iter()
		for p, ok := it.NextBack(); ok; p, ok = it.NextBack() {
			if !yield(it.c.bwd, p) {
				return
			}
		}
	}
}
