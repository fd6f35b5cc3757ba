package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/ostafen/partedit/internal/config"
	"github.com/ostafen/partedit/internal/disk"
	"github.com/ostafen/partedit/pkg/label"
	"github.com/spf13/cobra"
)

// session is an open device together with the label engine reading it.
type session struct {
	dev *disk.File
	ctx *label.Context
}

func openSession(cmd *cobra.Command, path string, writable bool) (*session, error) {
	dev, err := disk.Open(path, writable)
	if err != nil {
		return nil, err
	}

	var opts []label.Option
	if !writable {
		opts = append(opts, label.WithReadOnly())
	}
	// A detected alignment wins over the default, not over an explicit one.
	if cmd.Name() == "create" || cmd.Flags().Changed("grain") || v.InConfig(config.KeyGrain) {
		grain, err := cfg.GrainBytes()
		if err != nil {
			dev.Close()
			return nil, err
		}
		opts = append(opts, label.WithGrain(grain))
	}

	c, err := label.New(dev, opts...)
	if err != nil {
		dev.Close()
		return nil, err
	}
	return &session{dev: dev, ctx: c}, nil
}

func (s *session) Close() error {
	s.ctx.Close()
	return s.dev.Close()
}

// commit verifies the table, reports any issue and writes it to disk.
func (s *session) commit(cmd *cobra.Command) error {
	v := s.ctx.Verify()
	if v.Status == label.StatusError {
		return v.Err
	}
	if v.Status == label.StatusIssues {
		printIssues(cmd, v)
	}

	if err := s.ctx.Write(context.Background()); err != nil {
		return err
	}
	table, _ := s.ctx.Table()
	fmt.Fprintf(cmd.OutOrStdout(), "The %s partition table of %s has been written.\n", table, s.dev.Path)
	return nil
}

func printIssues(cmd *cobra.Command, v label.Verification) {
	w := cmd.ErrOrStderr()
	fmt.Fprintln(w, color.HiYellowString("Found %d issues:", v.Issues))
	for _, err := range issueList(v.Err) {
		fmt.Fprintln(w, color.HiYellowString("  - %s", err))
	}
}

// parsePartitionNumber converts a 1-based partition number given on the
// command line into the engine's slot index.
func parsePartitionNumber(s string) (uint, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid partition number %q", s)
	}
	return uint(n - 1), nil
}

// parseSectors reads a size given either in sectors ("2048s") or in bytes
// with an optional unit ("512MiB", "1 GB"). Byte sizes are rounded up to
// whole sectors.
func parseSectors(s string, sectorSize int) (uint64, error) {
	if n := len(s); n > 1 && s[n-1] == 's' {
		if v, err := strconv.ParseUint(s[:n-1], 10, 64); err == nil {
			return v, nil
		}
	}

	b, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	ss := uint64(sectorSize)
	return (b + ss - 1) / ss, nil
}
