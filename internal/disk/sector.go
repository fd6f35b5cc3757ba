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

// DefaultGrain is the partition alignment used on new tables, in bytes.
const DefaultGrain = 1 << 20

// Align selects the rounding direction of AlignLBA.
type Align int

const (
	AlignDown Align = iota
	AlignNearest
	AlignUp
)

// AlignLBA rounds lba to a multiple of grain sectors.
func AlignLBA(lba, grain uint64, dir Align) uint64 {
	if grain <= 1 {
		return lba
	}
	down := lba - lba%grain
	if down == lba {
		return lba
	}
	switch dir {
	case AlignUp:
		return down + grain
	case AlignNearest:
		if lba-down < down+grain-lba {
			return down
		}
		return down + grain
	}
	return down
}

// IsAligned reports whether lba falls on a grain boundary.
func IsAligned(lba, grain uint64) bool {
	return grain <= 1 || lba%grain == 0
}

// GuessGrain infers the alignment, in sectors, that an existing table was
// created with: the largest power of two not above maxGrain that divides
// every start.
func GuessGrain(starts []uint64, maxGrain uint64) uint64 {
	if len(starts) == 0 || maxGrain == 0 {
		return maxGrain
	}

	grain := maxGrain
	for valid := false; !valid; {
		grain, valid = EnforceAlignment(starts, grain)
	}
	return grain
}

// EnforceAlignment halves grain until every offset is a multiple of it.
// It reports false whenever it had to shrink grain.
func EnforceAlignment(offsets []uint64, grain uint64) (uint64, bool) {
	for _, off := range offsets {
		if off%grain != 0 && grain > 1 {
			return grain >> 1, false
		}
	}
	return grain, true
}
