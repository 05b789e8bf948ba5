// Command nvim-theme switches every running Neovim between light and dark.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/lfkit/lfkit/internal/cli"
	"github.com/lfkit/lfkit/internal/nvimtheme"
)

func main() {
	os.Exit(cli.Execute(newRootCmd()))
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:       "nvim-theme [light|dark]",
		Short:     "Set g:mycolor in every Neovim and reload its colours",
		Args:      cobra.ArbitraryArgs,
		ValidArgs: []string{"light", "dark"},
	}
	app := cli.New(root)

	root.RunE = func(cmd *cobra.Command, args []string) error {
		value, ok := nvimtheme.Value(args)
		if !ok {
			app.Logger.Debug("ignoring unknown theme")
			return nil
		}
		s := &nvimtheme.Switcher{
			RuntimeDir:  app.Dirs.RuntimeDir,
			ColorScript: nvimtheme.ColorScript(app.Dirs.Home),
			Dial:        nvimtheme.Dial,
			Logger:      app.Logger.Named("nvim-theme"),
		}
		return s.Apply(cmd.Context(), value)
	}
	return root
}
