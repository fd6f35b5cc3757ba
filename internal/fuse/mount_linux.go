//go:build linux
// +build linux

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
package fuse

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
	"github.com/ostafen/partedit/internal/logger"
)

// Mount serves entries of r as read-only files under mountpoint until the
// process is interrupted or ctx is cancelled, then unmounts.
func Mount(ctx context.Context, mountpoint string, r io.ReaderAt, entries []Entry) error {
	created, err := PrepareMountpoint(mountpoint)
	if err != nil {
		return err
	}
	if created {
		defer os.Remove(mountpoint)
	}

	c, err := fuse.Mount(mountpoint, fuse.ReadOnly(), fuse.FSName("partedit"))
	if err != nil {
		return err
	}
	defer c.Close()

	pfs := NewPartitionFS(r, entries)

	serveErr := make(chan error, 1)
	go func() {
		srv := fusefs.New(c, nil)
		serveErr <- srv.Serve(pfs)
	}()
	return waitForUmount(ctx, mountpoint, serveErr)
}

func waitForUmount(ctx context.Context, mountpoint string, serveErr <-chan error) error {
	log := logger.Default()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigc)

	log.Info("Waiting for termination signal...")

	const maxUnmountRetries = 3

	unmountAttempts := 0
	for {
		select {
		case err := <-serveErr:
			if err != nil {
				return fmt.Errorf("serve error: %w", err)
			}
			return nil
		case <-ctx.Done():
			log.Infof("Context cancelled: %v.", ctx.Err())
		case sig := <-sigc:
			log.Infof("Signal received: %v.", sig)
		}

		if unmountAttempts >= maxUnmountRetries {
			return fmt.Errorf("unable to unmount %s after %d attempts", mountpoint, maxUnmountRetries)
		}

		log.Infof("Attempting unmount of %s (attempt %d/%d)...", mountpoint, unmountAttempts+1, maxUnmountRetries)
		err := fuse.Unmount(mountpoint)
		if err == nil {
			log.Info("Unmounted successfully, exiting.")
			return nil
		}

		unmountAttempts++
		log.Warnf("Unmount failed: %v. Remaining retries: %d. Waiting for another signal to retry...", err, maxUnmountRetries-unmountAttempts)
		if ctx.Err() != nil {
			// A cancelled context stays done; retry on signals only.
			ctx = context.Background()
		}
	}
}
