//go:build !linux
// +build !linux

package fuse

import (
	"context"
	"fmt"
	"io"
)

func Mount(ctx context.Context, mountpoint string, r io.ReaderAt, entries []Entry) error {
	return fmt.Errorf("FUSE mount is only supported on Linux")
}
