// Command playlist generates and plays an mpv playlist of a directory.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/lfkit/lfkit/internal/cli"
	"github.com/lfkit/lfkit/internal/playlist"
)

const mpv = "/usr/bin/mpv"

func main() {
	os.Exit(cli.Execute(newRootCmd()))
}

func newRootCmd() *cobra.Command {
	var opts playlist.Options
	root := &cobra.Command{
		Use:   "playlist [DIR]",
		Short: "Generate and play a playlist using mpv",
		Long: "Generate and play a playlist of the videos and audio files in DIR " +
			"(default: the working directory) using mpv.",
		Args: cobra.MaximumNArgs(1),
	}
	app := cli.New(root)
	root.Flags().BoolVarP(&opts.Force, "force", "f", false, "regenerate the playlist file even if it already exists")
	root.Flags().BoolVarP(&opts.SkipPlay, "skip-play", "s", false, "skip playing the playlist")
	root.Flags().StringVarP(&opts.Output, "output", "o", "", "playlist file path (default DIR/playlist)")

	root.RunE = func(cmd *cobra.Command, args []string) error {
		opts.Dir = "."
		if len(args) == 1 {
			opts.Dir = args[0]
		}
		p := &playlist.Player{
			Runner:   app.Runner,
			Detector: app.Detector(),
			Mpv:      mpv,
			Logger:   app.Logger.Named("playlist"),
			Stdin:    os.Stdin,
			Stdout:   os.Stdout,
			Stderr:   os.Stderr,
		}
		return p.Run(cmd.Context(), opts)
	}
	return root
}
