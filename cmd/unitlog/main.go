// Command unitlog prints one run of a systemd unit's journal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lfkit/lfkit/internal/cli"
	"github.com/lfkit/lfkit/internal/journal"
)

func main() {
	os.Exit(cli.Execute(newRootCmd()))
}

func newRootCmd() *cobra.Command {
	var q journal.Query
	root := &cobra.Command{
		Use:   "unitlog UNIT",
		Short: "Show the latest (or -p N'th previous) run of a unit",
		Args:  cobra.ExactArgs(1),
	}
	app := cli.New(root)
	root.Flags().BoolVarP(&q.User, "user", "u", false, "query the user manager")
	root.Flags().BoolVar(&q.Status, "status", false, "prefix the systemctl status header")
	root.Flags().IntVarP(&q.Position, "position", "p", 0, "runs to go back from the latest")

	root.RunE = func(cmd *cobra.Command, args []string) error {
		q.Unit = args[0]
		r := &journal.Reader{Runner: app.Runner}
		entry, err := r.Entry(cmd.Context(), q)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), entry)
		return nil
	}
	return root
}
