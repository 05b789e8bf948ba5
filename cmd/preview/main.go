// Command preview is lf's previewer: `preview FILE [W H X Y]`.
//
// It exits 1 after drawing an image so lf does not cache the preview.
package main

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lfkit/lfkit/internal/cli"
	"github.com/lfkit/lfkit/internal/kitty"
	"github.com/lfkit/lfkit/internal/preview"
	"github.com/lfkit/lfkit/internal/thumb"
)

func main() {
	os.Exit(cli.Execute(newRootCmd()))
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "preview FILE [WIDTH HEIGHT X Y]",
		Short: "Preview a file in lf's preview pane",
		Args:  cobra.RangeArgs(1, 5),
	}
	app := cli.New(root)

	root.RunE = func(cmd *cobra.Command, args []string) error {
		place, err := preview.ParsePlace(args[1:])
		if err != nil {
			return err
		}
		cache, err := app.ThumbCache()
		if err != nil {
			return err
		}
		p := &preview.Previewer{
			Runner:    app.Runner,
			Detector:  app.Detector(),
			Thumbs:    cache,
			HasCover:  thumb.HasCover,
			LineLimit: app.Config.Preview.LineLengthLimit,
			Stdout:    cmd.OutOrStdout(),
			OpenTTY:   func() (io.WriteCloser, error) { return kitty.OpenTTY() },
			Logger:    app.Logger.Named("preview"),
		}

		err = p.Preview(cmd.Context(), args[0], place)
		if errors.Is(err, preview.ErrNoCache) {
			return cli.Exit(1)
		}
		return err
	}
	return root
}
