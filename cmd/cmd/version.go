package cmd

import (
	"fmt"
	"io"

	"github.com/ostafen/partedit/internal/env"
	"github.com/spf13/cobra"
)

func DefineVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "version",
		Short:        "Print version information",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			PrintLogo(cmd.OutOrStdout())
			return nil
		},
	}
}

func PrintLogo(w io.Writer) {
	fmt.Fprintln(w, "                  _            _ _ _   ")
	fmt.Fprintln(w, " _ __   __ _ _ __| |_ ___  __| (_) |_ ")
	fmt.Fprintln(w, "| '_ \\ / _` | '__| __/ _ \\/ _` | | __|")
	fmt.Fprintln(w, "| |_) | (_| | |  | ||  __/ (_| | | |_ ")
	fmt.Fprintln(w, "| .__/ \\__,_|_|   \\__\\___|\\__,_|_|\\__|")
	fmt.Fprintln(w, "|_|                                   ")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Partition table editor")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Version:    %s\n", env.Version)
	fmt.Fprintf(w, "Commit:     %s\n", env.CommitHash)
	fmt.Fprintf(w, "Build Time: %s\n", env.BuildTime)
}
