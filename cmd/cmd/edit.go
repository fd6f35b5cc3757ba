package cmd

import (
	"fmt"

	"github.com/ostafen/partedit/pkg/label"
	"github.com/ostafen/partedit/pkg/partition"
	"github.com/spf13/cobra"
)

func DefineAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <device>",
		Short: "Add a partition",
		Long: `The 'add' command creates a new partition and writes the updated table.
Fields that are not given are filled in with defaults: the first free partition number,
the first aligned free sector and the end of the free area it belongs to.
Sizes accept a sector count with an "s" suffix ("2048s") or a byte size ("512MiB").`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunAdd,
	}

	cmd.Flags().UintP("number", "n", 0, "the partition number (default first free)")
	definePartitionFlags(cmd)
	return cmd
}

func RunAdd(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, args[0], true)
	if err != nil {
		return err
	}
	defer s.Close()

	p, err := partitionFromFlags(cmd, s.ctx)
	if err != nil {
		return err
	}
	defer p.Unref()
	if n, _ := cmd.Flags().GetUint("number"); n > 0 {
		p.SetPartitionNumber(n - 1)
	}

	n, err := s.ctx.AddPartition(p)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created partition %d.\n", n+1)
	return s.commit(cmd)
}

func DefineDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "delete <device> <number>",
		Short:        "Delete a partition",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE:         RunDelete,
	}
}

func RunDelete(cmd *cobra.Command, args []string) error {
	n, err := parsePartitionNumber(args[1])
	if err != nil {
		return err
	}

	s, err := openSession(cmd, args[0], true)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.ctx.DeletePartition(n); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Partition %d has been deleted.\n", n+1)
	return s.commit(cmd)
}

func DefineSetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <device> <number>",
		Short: "Move, resize, retype or rename a partition",
		Long: `The 'set' command changes the fields of an existing partition that are given as flags.
Fields that are not given keep their current value.`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE:         RunSet,
	}

	definePartitionFlags(cmd)
	return cmd
}

func RunSet(cmd *cobra.Command, args []string) error {
	n, err := parsePartitionNumber(args[1])
	if err != nil {
		return err
	}

	s, err := openSession(cmd, args[0], true)
	if err != nil {
		return err
	}
	defer s.Close()

	p, err := partitionFromFlags(cmd, s.ctx)
	if err != nil {
		return err
	}
	defer p.Unref()

	if err := s.ctx.SetPartition(n, p); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Partition %d has been changed.\n", n+1)
	return s.commit(cmd)
}

func DefineSetTypeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-type <device> <number> <type>",
		Short: "Change the type of a partition",
		Long: `The 'set-type' command changes the type of a partition.
The type is a hex code (dos), a GUID (gpt), a shortcut such as "L", an alias such as "linux",
a full type name or its position in the output of 'types'.`,
		Args:         cobra.ExactArgs(3),
		SilenceUsage: true,
		RunE:         RunSetType,
	}
}

func RunSetType(cmd *cobra.Command, args []string) error {
	n, err := parsePartitionNumber(args[1])
	if err != nil {
		return err
	}

	s, err := openSession(cmd, args[0], true)
	if err != nil {
		return err
	}
	defer s.Close()

	k, err := parseKind(s.ctx, args[2])
	if err != nil {
		return err
	}
	defer k.Unref()

	if err := s.ctx.SetKind(n, k); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Changed type of partition %d to '%s'.\n", n+1, kindName(k))
	return s.commit(cmd)
}

func DefineToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "toggle <device> <number> <flag>",
		Short:        "Toggle a partition flag",
		Long:         `The 'toggle' command flips a flag such as "boot" (dos) or "LegacyBIOSBootable" (gpt).`,
		Args:         cobra.ExactArgs(3),
		SilenceUsage: true,
		RunE:         RunToggle,
	}
}

func RunToggle(cmd *cobra.Command, args []string) error {
	n, err := parsePartitionNumber(args[1])
	if err != nil {
		return err
	}

	s, err := openSession(cmd, args[0], true)
	if err != nil {
		return err
	}
	defer s.Close()

	table, ok := s.ctx.Table()
	if !ok {
		return label.ErrNoLabel
	}
	f, err := partition.ParseFlag(table, args[2])
	if err != nil {
		return err
	}

	if err := s.ctx.ToggleFlag(n, f); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Toggled flag %s of partition %d.\n", f, n+1)
	return s.commit(cmd)
}

func definePartitionFlags(cmd *cobra.Command) {
	cmd.Flags().Uint64("start", 0, "the first sector of the partition")
	cmd.Flags().String("size", "", `the partition size, in sectors ("2048s") or bytes ("512MiB")`)
	cmd.Flags().StringP("type", "t", "", "the partition type")
	cmd.Flags().String("name", "", "the partition name (gpt)")
	cmd.Flags().String("uuid", "", "the unique partition GUID (gpt)")
}

// partitionFromFlags collects the partition fields given on the command
// line. Fields whose flag was not set are left to the label engine.
func partitionFromFlags(cmd *cobra.Command, c *label.Context) (*partition.Partition, error) {
	if !c.HasLabel() {
		return nil, label.ErrNoLabel
	}

	flags := cmd.Flags()
	b := partition.NewBuilder()

	if flags.Changed("start") {
		start, _ := flags.GetUint64("start")
		b.StartingSector(start)
	}
	if flags.Changed("size") {
		size, _ := flags.GetString("size")
		n, err := parseSectors(size, c.SectorSize())
		if err != nil {
			return nil, err
		}
		b.SizeInSectors(n)
	}
	if flags.Changed("type") {
		typ, _ := flags.GetString("type")
		k, err := parseKind(c, typ)
		if err != nil {
			return nil, err
		}
		defer k.Unref()
		b.Kind(k)
	}
	if flags.Changed("name") {
		name, _ := flags.GetString("name")
		b.Name(name)
	}
	if flags.Changed("uuid") {
		u, _ := flags.GetString("uuid")
		b.UUID(u)
	}
	return b.Build()
}

func parseKind(c *label.Context, s string) (*partition.Kind, error) {
	cat := c.Catalogue()
	if cat == nil {
		return nil, label.ErrNoLabel
	}
	return cat.ParseKind(s, partition.InputDefault|partition.InputDeprecated)
}
