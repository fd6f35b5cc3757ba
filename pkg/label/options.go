package label

import (
	"github.com/google/uuid"
	"github.com/ostafen/partedit/internal/logger"
)

// Option configures a Context.
type Option func(*Context)

// WithGrain sets the alignment of new partitions, in bytes. Without it the
// engine uses 1 MiB on new labels and keeps the alignment it detects on
// existing ones.
func WithGrain(bytes uint64) Option {
	return func(c *Context) {
		c.grainBytes = bytes
		c.grainSet = true
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Context) { c.log = l }
}

// WithDiskGUID fixes the disk GUID used when a GPT is created.
func WithDiskGUID(u uuid.UUID) Option {
	return func(c *Context) { c.diskGUID = u }
}

// WithReadOnly makes Write fail. Changes are still possible in memory.
func WithReadOnly() Option {
	return func(c *Context) { c.readOnly = true }
}
