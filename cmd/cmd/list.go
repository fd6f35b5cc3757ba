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
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/ostafen/partedit/pkg/label"
	"github.com/ostafen/partedit/pkg/partition"
	"github.com/spf13/cobra"
)

func DefineListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "list <device>",
		Short:        "Print the partition table of a disk or image file",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunList,
	}

	cmd.Flags().Bool("free", false, "list the unpartitioned areas instead of the partitions")
	return cmd
}

func RunList(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, args[0], false)
	if err != nil {
		return err
	}
	defer s.Close()

	c := s.ctx
	if !c.HasLabel() {
		return fmt.Errorf("%s: %w", args[0], label.ErrNoLabel)
	}

	printDiskSummary(cmd, s)

	if free, _ := cmd.Flags().GetBool("free"); free {
		l, err := c.FreeSpace()
		if err != nil {
			return err
		}
		defer l.Unref()
		printFreeSpace(cmd, c, l)
		return nil
	}

	l, err := c.Partitions()
	if err != nil {
		return err
	}
	defer l.Unref()
	printPartitions(cmd, c, l)
	return nil
}

func printDiskSummary(cmd *cobra.Command, s *session) {
	c := s.ctx
	w := cmd.OutOrStdout()
	ss := uint64(c.SectorSize())

	table, _ := c.Table()
	fmt.Fprintf(w, "Disk %s: %s, %d bytes, %d sectors\n", s.dev.Path, humanize.IBytes(c.Sectors()*ss), c.Sectors()*ss, c.Sectors())
	fmt.Fprintf(w, "Sector size: %d bytes, alignment: %s\n", ss, humanize.IBytes(c.Grain()*ss))
	fmt.Fprintf(w, "Disklabel type: %s\n", table)
	if sig, ok := c.DiskSignature(); ok {
		fmt.Fprintf(w, "Disk identifier: 0x%08x\n", sig)
	}
	if guid, ok := c.DiskGUID(); ok {
		fmt.Fprintf(w, "Disk identifier: %s\n", strings.ToUpper(guid.String()))
	}
	first, last := c.UsableRange()
	fmt.Fprintf(w, "Usable sectors: %d-%d\n\n", first, last)
}

func printPartitions(cmd *cobra.Command, c *label.Context, l *partition.List) {
	kind, _ := c.Table()
	ss := uint64(c.SectorSize())

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())

	header := table.Row{"#", "BOOT", "START", "END", "SECTORS", "SIZE", "TYPE"}
	if kind == partition.TableGPT {
		header = append(header, "NAME", "UUID")
	}
	t.AppendHeader(header)

	for _, p := range l.All() {
		n, _ := p.PartitionNumber()
		start, _ := p.StartingSector()
		end, _ := p.EndingSector()
		size, _ := p.SizeInSectors()

		boot := ""
		if c.IsBootable(p) {
			boot = "*"
		}

		row := table.Row{n + 1, boot, start, end, size, humanize.IBytes(size * ss), kindName(p.Kind())}
		if kind == partition.TableGPT {
			name, _ := p.Name()
			u, _ := p.UUID()
			row = append(row, name, strings.ToUpper(u))
		}
		t.AppendRow(row)
	}
	t.Render()
}

func printFreeSpace(cmd *cobra.Command, c *label.Context, l *partition.List) {
	ss := uint64(c.SectorSize())

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"START", "END", "SECTORS", "SIZE"})

	for _, p := range l.All() {
		start, _ := p.StartingSector()
		end, _ := p.EndingSector()
		size, _ := p.SizeInSectors()
		t.AppendRow(table.Row{start, end, size, humanize.IBytes(size * ss)})
	}
	t.Render()
}

func kindName(k *partition.Kind) string {
	if k == nil {
		return ""
	}
	if name := k.Name(); name != "" {
		return name
	}
	return k.String()
}
