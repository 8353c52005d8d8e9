package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// VersionCommand печатает версию сборки и идентификатор процесса.
type VersionCommand struct {
	cmd      *cobra.Command
	Version  string
	Instance string
}

func (v *VersionCommand) Meta() *cobra.Command {
	if v.cmd == nil {
		v.cmd = &cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Args:  cobra.NoArgs,
		}
		v.cmd.Flags().BoolP("short", "s", false, "print only the version")
	}
	return v.cmd
}

func (v *VersionCommand) Execute(_ context.Context, cmd *cobra.Command, _ []string) error {
	short, err := cmd.Flags().GetBool("short")
	if err != nil {
		return fmt.Errorf("flag --short failed: %w", err)
	}
	if short {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), v.Version)
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "lanpeers %s (instance %s)\n", v.Version, v.Instance)
	return err
}
