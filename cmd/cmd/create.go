package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/ostafen/partedit/internal/disk"
	"github.com/ostafen/partedit/pkg/partition"
	"github.com/spf13/cobra"
)

func DefineCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <device>",
		Short: "Create a new, empty partition table",
		Long: `The 'create' command writes a new partition table to a disk or image file, discarding the existing one.
With --size, a new image file of the given size is created first.
Supported labels are dos and gpt. sun, sgi and bsd labels can be built in memory but not written.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunCreate,
	}

	cmd.Flags().StringP("label", "l", "", "the partition table kind (default from configuration)")
	cmd.Flags().String("size", "", "create a new image file of this size")
	return cmd
}

func RunCreate(cmd *cobra.Command, args []string) error {
	table, err := cfg.Label()
	if err != nil {
		return err
	}
	if name, _ := cmd.Flags().GetString("label"); name != "" {
		if table, err = partition.ParseTableKind(name); err != nil {
			return err
		}
	}

	if size, _ := cmd.Flags().GetString("size"); size != "" {
		n, err := humanize.ParseBytes(size)
		if err != nil {
			return fmt.Errorf("invalid size %q: %w", size, err)
		}
		f, err := disk.Create(args[0], int64(n))
		if err != nil {
			return err
		}
		f.Close()
	}

	s, err := openSession(cmd, args[0], true)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.ctx.CreateLabel(table); err != nil {
		return err
	}
	return s.commit(cmd)
}
