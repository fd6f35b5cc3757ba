package cmd

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/ostafen/partedit/pkg/label"
	"github.com/spf13/cobra"
)

func DefineVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <device>",
		Short: "Check the partition table for problems",
		Long: `The 'verify' command checks the partition table for overlapping, misaligned or out of range
partitions and for label specific problems. It exits with an error when issues are found.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunVerify,
	}
}

func RunVerify(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, args[0], false)
	if err != nil {
		return err
	}
	defer s.Close()

	v := s.ctx.Verify()
	switch v.Status {
	case label.StatusError:
		fmt.Fprintln(cmd.ErrOrStderr(), color.HiRedString("Verification failed: %s", v.Err))
		return v.Err
	case label.StatusIssues:
		printIssues(cmd, v)
		return fmt.Errorf("%s: %d issues found", args[0], v.Issues)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "No errors detected.")
	return nil
}

// issueList splits the aggregated verification error into its issues.
func issueList(err error) []error {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		return merr.WrappedErrors()
	}
	if err != nil {
		return []error{err}
	}
	return nil
}
