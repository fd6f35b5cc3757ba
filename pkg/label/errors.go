package label

import (
	"errors"
	"fmt"
)

var (
	ErrNoLabel              = errors.New("device has no partition table")
	ErrNoSpace              = errors.New("no free sectors available")
	ErrPartitionNotFound    = errors.New("partition not found")
	ErrPartitionNumberInUse = errors.New("partition number already in use")
	ErrUnsupportedLabel     = errors.New("operation not supported by this label")
	ErrInvalidState         = errors.New("operation not valid in the current state")
	ErrOverlap              = errors.New("partition overlaps another partition")
	ErrOutOfRange           = errors.New("partition outside the usable area")
)

// EngineError reports the failure of one engine operation. Err is usually
// one of the sentinels above, possibly wrapped with more detail.
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }

func opError(op string, err error) error {
	if err == nil {
		return nil
	}
	var ee *EngineError
	if errors.As(err, &ee) {
		return err
	}
	return &EngineError{Op: op, Err: err}
}

// corruptError marks on-disk structures that failed validation, as opposed
// to I/O failures.
type corruptError struct {
	err error
}

func (e *corruptError) Error() string { return e.err.Error() }

func (e *corruptError) Unwrap() error { return e.err }

func isCorrupt(err error) bool {
	var ce *corruptError
	return errors.As(err, &ce)
}
