package cmd

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/ostafen/partedit/pkg/partition"
	"github.com/spf13/cobra"
)

func DefineTypesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "types",
		Short:        "List the partition types known for a label",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         RunTypes,
	}

	cmd.Flags().StringP("label", "l", "", "the partition table kind (default from configuration)")
	cmd.Flags().Bool("shortcuts", false, "list the type shortcuts and aliases instead")
	return cmd
}

func RunTypes(cmd *cobra.Command, args []string) error {
	kind, err := cfg.Label()
	if err != nil {
		return err
	}
	if name, _ := cmd.Flags().GetString("label"); name != "" {
		if kind, err = partition.ParseTableKind(name); err != nil {
			return err
		}
	}

	cat := partition.CatalogueFor(kind)

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())

	if shortcuts, _ := cmd.Flags().GetBool("shortcuts"); shortcuts {
		t.AppendHeader(table.Row{"SHORTCUT", "ALIAS", "TYPE", "DEPRECATED"})
		for _, sc := range cat.Shortcuts() {
			deprecated := ""
			if sc.Deprecated {
				deprecated = "yes"
			}
			t.AppendRow(table.Row{sc.Shortcut, sc.Alias, sc.Data, deprecated})
		}
		t.Render()
		return nil
	}

	t.AppendHeader(table.Row{"#", "TYPE", "NAME"})
	for i, e := range cat.Entries() {
		id := string(e.GUID)
		if !kind.UsesGUIDs() {
			id = e.Code.String()
		}
		t.AppendRow(table.Row{i + 1, id, e.Name})
	}
	t.Render()
	return nil
}
