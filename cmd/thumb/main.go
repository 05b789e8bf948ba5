// Command thumb prints the path of a cached thumbnail for a media file,
// generating it first if needed.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lfkit/lfkit/internal/cli"
	"github.com/lfkit/lfkit/internal/mime"
)

func main() {
	os.Exit(cli.Execute(newRootCmd()))
}

func newRootCmd() *cobra.Command {
	var (
		mimeType string
		cached   bool
	)
	root := &cobra.Command{
		Use:   "thumb FILE",
		Short: "Print the cached thumbnail of a video, audio file, pdf or epub",
		Args:  cobra.ExactArgs(1),
	}
	app := cli.New(root)
	root.Flags().StringVar(&mimeType, "mime", "", "skip detection and use this MIME type")
	root.Flags().BoolVar(&cached, "cached", false, "only print an already recorded thumbnail, exit 1 if there is none")

	root.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if cached {
			path, ok := app.ExistingThumbCache().Lookup(args[0])
			if !ok {
				return cli.Exit(1)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		}

		var (
			mt  mime.Type
			err error
		)
		if mimeType != "" {
			mt, err = mime.Parse(mimeType)
		} else {
			mt, err = app.Detector().Detect(ctx, args[0])
		}
		if err != nil {
			return err
		}

		cache, err := app.ThumbCache()
		if err != nil {
			return err
		}
		path, err := cache.Thumbnail(ctx, args[0], mt)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	}
	return root
}
