package label

import (
	"context"
	"fmt"

	"github.com/ostafen/partedit/internal/disk"
	"github.com/ostafen/partedit/pkg/partition"
)

// Write stores the in-memory table on the device and flushes it. It is
// valid once the table has been modified, verified or written before; the
// in-memory table is left as it is, so Write may be repeated.
func (c *Context) Write(ctx context.Context) error {
	const op = "write"

	if !c.labeled {
		return opError(op, ErrNoLabel)
	}
	switch c.state {
	case StateModified, StateVerified, StateWritten:
	default:
		return opError(op, fmt.Errorf("table is %s: %w", c.state, ErrInvalidState))
	}
	if c.readOnly {
		return opError(op, disk.ErrReadOnly)
	}
	if err := ctx.Err(); err != nil {
		return opError(op, err)
	}

	var err error
	switch c.table {
	case partition.TableDOS:
		err = c.writeDOS()
	case partition.TableGPT:
		err = c.writeGPT(ctx)
	default:
		err = fmt.Errorf("%s: %w", c.table, ErrUnsupportedLabel)
	}
	if err != nil {
		return opError(op, err)
	}

	if err := c.dev.Sync(); err != nil {
		return opError(op, fmt.Errorf("sync: %w", err))
	}

	c.log.Infof("%s partition table written", c.table)
	c.state = StateWritten
	return nil
}
