// Command mktemp creates a private file in $TMPDIR and prints its path.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lfkit/lfkit/internal/cli"
	"github.com/lfkit/lfkit/internal/dirs"
	"github.com/lfkit/lfkit/internal/tempfile"
)

func main() {
	os.Exit(cli.Execute(newRootCmd()))
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mktemp [PREFIX]",
		Short: "Create $TMPDIR/[PREFIX-]UUID with mode 0600",
		Args:  cobra.MaximumNArgs(1),
	}
	cli.New(root)

	root.RunE = func(cmd *cobra.Command, args []string) error {
		var prefix string
		if len(args) == 1 {
			prefix = args[0]
		}
		path, err := tempfile.Create(dirs.TempDir(), prefix)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	}
	return root
}
