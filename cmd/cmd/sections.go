package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func DefineSectionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sections <device>",
		Short: "Show where the partition table is stored on disk",
		Long: `The 'sections' command lists the byte ranges occupied by the partition table itself,
such as the MBR or the primary and backup GPT headers and entry arrays.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunSections,
	}
}

func RunSections(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, args[0], false)
	if err != nil {
		return err
	}
	defer s.Close()

	sections, err := s.ctx.Sections()
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"SECTION", "OFFSET", "SIZE"})
	for _, sec := range sections {
		t.AppendRow(table.Row{sec.Name, fmt.Sprintf("0x%08x", sec.Offset), humanize.IBytes(uint64(sec.Size))})
	}
	t.Render()
	return nil
}
