// Command preview-clean removes the images preview drew, for lf's cleaner
// hook.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/lfkit/lfkit/internal/cli"
	"github.com/lfkit/lfkit/internal/kitty"
)

func main() {
	os.Exit(cli.Execute(newRootCmd()))
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "preview-clean",
		Short: "Clear kitty images from the terminal",
		// lf passes the file and geometry; they are not needed.
		Args: cobra.ArbitraryArgs,
	}
	cli.New(root)

	root.RunE = func(cmd *cobra.Command, args []string) error {
		tty, err := kitty.OpenTTY()
		if err != nil {
			return err
		}
		defer tty.Close()
		return kitty.Clear(tty)
	}
	return root
}
