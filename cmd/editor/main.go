// Command editor opens files in nvim, sending lisp and org files to emacs.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/lfkit/lfkit/internal/cli"
	"github.com/lfkit/lfkit/internal/editor"
	"github.com/lfkit/lfkit/internal/shell"
)

func main() {
	os.Exit(cli.Execute(newRootCmd()))
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "editor [FILE...]",
		Short: "Edit files in nvim and emacs side by side",
	}
	app := cli.New(root)

	root.RunE = func(cmd *cobra.Command, args []string) error {
		cfg := app.Config.Editor
		e := &editor.Editor{
			Runner:          app.Runner,
			Nvim:            cfg.Nvim,
			Emacsclient:     cfg.Emacsclient,
			EmacsExtensions: cfg.EmacsExtensions,
			Logger:          app.Logger.Named("editor"),
			Stdin:           os.Stdin,
			Stdout:          os.Stdout,
			Stderr:          os.Stderr,
		}
		err := e.Edit(cmd.Context(), args)
		if code := shell.ExitCode(err); code > 0 {
			return &cli.ExitError{Code: code, Err: err}
		}
		return err
	}
	return root
}
