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
	"slices"
	"sync/atomic"
)

// List is an ordered collection of partitions, independent of any table
// until applied to one. It holds one reference on each element. Partitions
// handed out for mutation are recorded as loans and stay valid until the
// list is cleared or released.
//
// A List is not safe for concurrent use. Changing its shape while an
// iterator is live is not supported.
type List struct {
	items []*Partition
	loans []*Partition
	refs  atomic.Int32
}

func NewList() *List {
	l := &List{}
	l.refs.Store(1)
	return l
}

func (l *List) Len() int { return len(l.items) }

func (l *List) IsEmpty() bool { return len(l.items) == 0 }

// Push appends p, taking a reference to it.
func (l *List) Push(p *Partition) {
	l.items = append(l.items, p.Ref())
}

// Pop removes the last partition. The list's reference passes to the
// caller, who must Unref it when done.
func (l *List) Pop() (*Partition, bool) {
	n := len(l.items)
	if n == 0 {
		return nil, false
	}
	p := l.items[n-1]
	l.items[n-1] = nil
	l.items = l.items[:n-1]
	return p, true
}

// Remove removes the partition at index i, passing the list's reference to
// the caller. It panics if i is out of bounds.
func (l *List) Remove(i int) *Partition {
	if i < 0 || i >= len(l.items) {
		panic(outOfBounds("Remove", i, len(l.items)))
	}
	p := l.items[i]
	l.items = slices.Delete(l.items, i, i+1)
	return p
}

// At returns the partition at index i. It panics if i is out of bounds.
func (l *List) At(i int) *Partition {
	if i < 0 || i >= len(l.items) {
		panic(outOfBounds("At", i, len(l.items)))
	}
	return l.items[i]
}

// Get returns the partition at index i for use within the current call.
func (l *List) Get(i int) (*Partition, bool) {
	if i < 0 || i >= len(l.items) {
		return nil, false
	}
	return l.items[i], true
}

// GetMut returns the partition at index i for mutation. The partition is
// recorded as a loan, so it stays valid for the lifetime of the list even
// if it is later removed.
func (l *List) GetMut(i int) (*Partition, bool) {
	p, ok := l.Get(i)
	if !ok {
		return nil, false
	}
	return l.lend(p), true
}

// Acquire returns the partition at index i with an extra reference, for
// borrows that may outlive the list. The caller must Unref it.
func (l *List) Acquire(i int) (*Partition, bool) {
	p, ok := l.Get(i)
	if !ok {
		return nil, false
	}
	return p.Ref(), true
}

// GetByPartitionNumber scans the list for a partition whose number is n.
// n is a partition number, not an index.
func (l *List) GetByPartitionNumber(n uint) (*Partition, bool) {
	for _, p := range l.items {
		if num, ok := p.PartitionNumber(); ok && num == n {
			return p, true
		}
	}
	return nil, false
}

// GetByPartitionNumberMut is GetByPartitionNumber recording a loan.
func (l *List) GetByPartitionNumberMut(n uint) (*Partition, bool) {
	p, ok := l.GetByPartitionNumber(n)
	if !ok {
		return nil, false
	}
	return l.lend(p), true
}

// Clear removes every partition and returns all loans.
func (l *List) Clear() {
	for i, p := range l.items {
		p.Unref()
		l.items[i] = nil
	}
	l.items = l.items[:0]
	l.releaseLoans()
}

// Loans returns the number of outstanding mutable borrows.
func (l *List) Loans() int { return len(l.loans) }

// IsNotInIncreasingOrder reports whether some partition starts before the
// one preceding it. Partitions without a starting sector and whole-disk
// placeholders are skipped.
func (l *List) IsNotInIncreasingOrder() bool {
	var last *Partition
	for _, p := range l.items {
		if _, ok := p.StartingSector(); !ok || p.IsWholeDisk() {
			continue
		}
		if last != nil && p.start < last.start {
			return true
		}
		last = p
	}
	return false
}

// SortByStartingSector sorts the list in place. The sort is stable and
// partitions without a starting sector come first.
func (l *List) SortByStartingSector() {
	slices.SortStableFunc(l.items, func(a, b *Partition) int {
		return a.CompareStartingSectors(b)
	})
}

// SortByPartitionNumber sorts the list in place. Partitions without a number
// come last.
func (l *List) SortByPartitionNumber() {
	slices.SortStableFunc(l.items, func(a, b *Partition) int {
		return a.ComparePartitionNumbers(b)
	})
}

// Ref adds a reference to the list and returns it.
func (l *List) Ref() *List {
	l.refs.Add(1)
	return l
}

// Unref drops a reference. On the last one every element and loan is
// released.
func (l *List) Unref() bool {
	n := l.refs.Add(-1)
	if n < 0 {
		panic("partition: List released more times than referenced")
	}
	if n > 0 {
		return false
	}
	l.Clear()
	return true
}

func (l *List) RefCount() int32 { return l.refs.Load() }

func (l *List) lend(p *Partition) *Partition {
	l.loans = append(l.loans, p.Ref())
	return p
}

func (l *List) releaseLoans() {
	for i, p := range l.loans {
		p.Unref()
		l.loans[i] = nil
	}
	l.loans = l.loans[:0]
}
