package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/ostafen/partedit/internal/backup"
	"github.com/ostafen/partedit/internal/disk"
	"github.com/ostafen/partedit/pkg/label"
	"github.com/spf13/cobra"
)

func DefineBackupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backup <device> <dir>",
		Short: "Save the partition table sections to a directory",
		Long: `The 'backup' command copies every on-disk section of the partition table (see 'sections')
into its own file under <dir>, together with a DFXML report recording where each file
belongs on the disk. Use 'restore' to write them back.`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE:         RunBackup,
	}
}

func RunBackup(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, args[0], false)
	if err != nil {
		return err
	}
	defer s.Close()

	sections, err := s.ctx.Sections()
	if err != nil {
		return err
	}
	table, _ := s.ctx.Table()

	img := backup.Image{
		Name:       filepath.Base(s.dev.Path),
		SectorSize: s.ctx.SectorSize(),
		Size:       s.dev.Size(),
		Table:      table.String(),
	}
	paths, err := backup.Save(args[1], s.dev, img, sections)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", p)
	}
	return nil
}

func DefineRestoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "restore <device> <dir>",
		Short:        "Write back a partition table saved with 'backup'",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE:         RunRestore,
	}
}

func RunRestore(cmd *cobra.Command, args []string) error {
	b, err := backup.Load(args[1])
	if err != nil {
		return err
	}

	// The current table may be damaged, so the device is not probed first.
	dev, err := disk.Open(args[0], true)
	if err != nil {
		return err
	}
	defer dev.Close()

	if err := b.Restore(dev, dev.SectorSize(), dev.Size()); err != nil {
		return err
	}
	if err := dev.Sync(); err != nil {
		return err
	}

	// Read the restored table back to make sure it is usable.
	c, err := label.New(dev, label.WithReadOnly())
	if err != nil {
		return err
	}
	defer c.Close()
	if !c.HasLabel() {
		return fmt.Errorf("%s: %w after restore", args[0], label.ErrNoLabel)
	}

	table, _ := c.Table()
	fmt.Fprintf(cmd.OutOrStdout(), "Restored the %s partition table of %s from %s.\n", table, dev.Path, args[1])
	return nil
}
