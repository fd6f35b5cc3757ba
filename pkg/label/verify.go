package label

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/ostafen/partedit/internal/disk"
	"github.com/ostafen/partedit/pkg/partition"
)

// ErrMisaligned marks a partition whose start is not on a grain boundary.
var ErrMisaligned = errors.New("partition does not start on an alignment boundary")

type Status int

const (
	StatusSuccess Status = iota
	StatusIssues
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusIssues:
		return "issues"
	case StatusError:
		return "error"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Verification is the outcome of Verify. With StatusIssues, Issues counts
// the problems found and Err is a *multierror.Error listing them. With
// StatusError, Err is the failure that prevented the check.
type Verification struct {
	Status Status
	Issues int
	Err    error
}

// Verify checks the in-memory table for structural problems. It does not
// modify the table; a table without errors moves to StateVerified.
func (c *Context) Verify() Verification {
	if !c.labeled {
		return Verification{Status: StatusError, Err: opError("verify", ErrNoLabel)}
	}

	var result *multierror.Error
	issue := func(n int, err error) {
		result = multierror.Append(result, fmt.Errorf("partition %d: %w", n+1, err))
	}

	bootable := 0
	uuids := make(map[string]int)

	for i, p := range c.slots {
		if p == nil {
			continue
		}

		e, ok := extentOf(p)
		switch {
		case !ok:
			size, _ := p.SizeInSectors()
			if size == 0 {
				issue(i, errors.New("partition has zero size"))
			} else {
				issue(i, errors.New("partition has no extent"))
			}
			continue
		case p.IsWholeDisk():
			if e.end >= c.sectors {
				issue(i, fmt.Errorf("whole-disk entry ends at %d past the last sector %d: %w", e.end, c.sectors-1, ErrOutOfRange))
			}
			continue
		}

		if e.start < c.first || e.end > c.last {
			issue(i, fmt.Errorf("sectors %d-%d outside %d-%d: %w", e.start, e.end, c.first, c.last, ErrOutOfRange))
		}
		if !disk.IsAligned(e.start, c.grain) {
			issue(i, fmt.Errorf("start %d, grain %d sectors: %w", e.start, c.grain, ErrMisaligned))
		}
		for j := i + 1; j < len(c.slots); j++ {
			q := c.slots[j]
			if q == nil || q.IsWholeDisk() {
				continue
			}
			if o, ok := extentOf(q); ok && o.overlaps(e) {
				issue(i, fmt.Errorf("partition %d: %w", j+1, ErrOverlap))
			}
		}

		if c.IsBootable(p) {
			bootable++
		}
		if u, ok := p.UUID(); ok && c.table == partition.TableGPT {
			if first, dup := uuids[u]; dup {
				issue(i, fmt.Errorf("unique GUID %s already used by partition %d", u, first+1))
			} else {
				uuids[u] = i
			}
		}
	}

	if c.table == partition.TableDOS && bootable > 1 {
		result = multierror.Append(result, fmt.Errorf("%d partitions are marked bootable", bootable))
	}

	if c.state == StateLabeled || c.state == StateModified {
		c.state = StateVerified
	}

	if result == nil {
		c.log.Debug("verify: no issues")
		return Verification{Status: StatusSuccess}
	}
	c.log.Debugf("verify: %d issues", len(result.Errors))
	return Verification{Status: StatusIssues, Issues: len(result.Errors), Err: result.ErrorOrNil()}
}
