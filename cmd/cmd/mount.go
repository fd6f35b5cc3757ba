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
package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ostafen/partedit/internal/fuse"
	"github.com/spf13/cobra"
)

func DefineMountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mount <device>",
		Short: "Expose the partitions of a disk or image as read-only files",
		Long: `The 'mount' command mounts a FUSE filesystem exposing one read-only file per partition,
named p1, p2, ... after the partition numbers. The files can be inspected or copied without
attaching the image to a loop device. The filesystem stays mounted until interrupted.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunMount,
	}

	cmd.Flags().StringP("mountpoint", "m", "", "Absolute path to the directory where the filesystem will be mounted. If not specified, a default will be generated.")
	return cmd
}

func RunMount(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, args[0], false)
	if err != nil {
		return err
	}
	defer s.Close()

	l, err := s.ctx.Partitions()
	if err != nil {
		return err
	}
	entries := fuse.Entries(l, s.ctx.SectorSize())
	l.Unref()

	if len(entries) == 0 {
		return fmt.Errorf("%s: no partitions to mount", args[0])
	}

	mountpoint, _ := cmd.Flags().GetString("mountpoint")
	if mountpoint == "" {
		mountpoint = getMountpoint(args[0])
	}
	return fuse.Mount(context.Background(), mountpoint, s.dev, entries)
}

// getMountpoint generates a mountpoint name from a device or image path by
// stripping the extension and adding "_mnt".
func getMountpoint(path string) string {
	baseName := filepath.Base(path)
	return strings.TrimSuffix(baseName, filepath.Ext(baseName)) + "_mnt"
}
