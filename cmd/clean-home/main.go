// Command clean-home moves stray dot files out of $HOME into the trash.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/lfkit/lfkit/internal/cli"
	"github.com/lfkit/lfkit/internal/homeclean"
)

func main() {
	os.Exit(cli.Execute(newRootCmd()))
}

func newRootCmd() *cobra.Command {
	var dryRun bool
	root := &cobra.Command{
		Use:   "clean-home",
		Short: "Trash dot files in $HOME that are not whitelisted",
		Args:  cobra.NoArgs,
	}
	app := cli.New(root)
	root.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "only print what would be trashed")

	root.RunE = func(cmd *cobra.Command, args []string) error {
		keep, err := homeclean.Whitelist(app.Dirs)
		if err != nil {
			return err
		}
		c := &homeclean.Cleaner{
			Home:      app.Dirs.Home,
			Whitelist: keep,
			Runner:    app.Runner,
			DryRun:    dryRun,
			Stdout:    cmd.OutOrStdout(),
			Logger:    app.Logger.Named("clean-home"),
		}
		_, err = c.Clean(cmd.Context())
		return err
	}
	return root
}
