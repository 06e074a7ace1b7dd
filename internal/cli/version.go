package cli

import (
	"fmt"

	"github.com/brandonbloom/release/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the release version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Read()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s version %s\n", cmd.Root().DisplayName(), info.Release())
			if info.Revision != "" {
				dirty := ""
				if info.Modified {
					dirty = " (modified)"
				}
				fmt.Fprintf(out, "revision %s%s\n", info.Revision, dirty)
			}
			if info.GoVersion != "" {
				fmt.Fprintf(out, "built with %s\n", info.GoVersion)
			}
			return nil
		},
	}
}
