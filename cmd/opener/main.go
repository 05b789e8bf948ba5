// Command opener opens a file like xdg-open, but runs terminal programs in
// the foreground and supports "open with" (-i).
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/lfkit/lfkit/internal/cli"
	"github.com/lfkit/lfkit/internal/dirs"
	"github.com/lfkit/lfkit/internal/mimeapps"
	"github.com/lfkit/lfkit/internal/opener"
	"github.com/lfkit/lfkit/internal/tui"
)

func main() {
	os.Exit(cli.Execute(newRootCmd()))
}

func newRootCmd() *cobra.Command {
	var interactive bool
	root := &cobra.Command{
		Use:   "opener [-i] FILE",
		Short: "Open a file with its default application",
		Args:  cobra.ExactArgs(1),
	}
	app := cli.New(root)
	root.Flags().BoolVarP(&interactive, "interactive", "i", false, "choose the program from the associated ones")

	root.RunE = func(cmd *cobra.Command, args []string) error {
		term := tui.IO{In: os.Stdin, Out: os.Stdout}
		o := &opener.Opener{
			Runner:   app.Runner,
			Detector: app.Detector(),
			Resolver: &mimeapps.Resolver{
				Dirs:     app.Dirs,
				Desktops: dirs.CurrentDesktops(),
				Runner:   app.Runner,
				Prompt: func(question string) (string, error) {
					return tui.Prompt(question, term)
				},
			},
			Dirs:             app.Dirs,
			TerminalPrograms: app.Config.Opener.TerminalPrograms,
			Choose: func(title string, items []string) (int, error) {
				return tui.Choose(title, items, term)
			},
			Logger: app.Logger.Named("opener"),
			Stdin:  os.Stdin,
			Stdout: os.Stdout,
			Stderr: os.Stderr,
		}
		return o.Open(cmd.Context(), args[0], interactive)
	}
	return root
}
