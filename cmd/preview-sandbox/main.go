// Command preview-sandbox runs preview inside bubblewrap and exits with its
// status.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lfkit/lfkit/internal/cli"
	"github.com/lfkit/lfkit/internal/config"
	"github.com/lfkit/lfkit/internal/sandbox"
)

const previewerName = "preview"

func main() {
	os.Exit(cli.Execute(newRootCmd()))
}

func newRootCmd() *cobra.Command {
	var previewer string
	root := &cobra.Command{
		Use:   "preview-sandbox FILE [WIDTH HEIGHT X Y]",
		Short: "Preview a file with no network and a read-only view of the system",
		Args:  cobra.MinimumNArgs(1),
	}
	app := cli.New(root)
	root.Flags().StringVar(&previewer, "previewer", "", "previewer binary (default: preview next to this binary)")

	root.RunE = func(cmd *cobra.Command, args []string) error {
		if previewer == "" {
			self, err := os.Executable()
			if err != nil {
				return err
			}
			previewer = filepath.Join(filepath.Dir(self), previewerName)
		}

		cfg := app.Config
		s := &sandbox.Sandbox{
			Bwrap:     cfg.Sandbox.Bwrap,
			Previewer: previewer,
			ThumbRoot: cfg.ThumbCacheDir(app.Dirs),
			ReadOnly:  cfg.Sandbox.ExtraROBinds,
			Optional: []string{
				filepath.Join(app.Dirs.ConfigHome, "bat", "config"),
				config.DefaultPath(app.Dirs),
			},
			Writable: []string{cfg.LogFile()},
		}

		logPath := cfg.PreviewLogFile()
		log, err := os.Create(logPath)
		if err != nil {
			return fmt.Errorf("open preview log: %w", err)
		}
		defer log.Close()

		code, err := s.Run(cmd.Context(), app.Runner, args[0], args[1:], cmd.OutOrStdout(), log)
		if err != nil {
			return err
		}
		app.Logger.Debug("sandboxed preview finished", zap.String("file", args[0]), zap.Int("code", code))
		if code != 0 {
			return cli.Exit(code)
		}
		return nil
	}
	return root
}
