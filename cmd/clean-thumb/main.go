// Command clean-thumb evicts expired and dangling thumbnails.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lfkit/lfkit/internal/cli"
)

func main() {
	os.Exit(cli.Execute(newRootCmd()))
}

func newRootCmd() *cobra.Command {
	var printStats bool
	root := &cobra.Command{
		Use:   "clean-thumb",
		Short: "Remove old thumbnails and entries whose media or image is gone",
		Args:  cobra.NoArgs,
	}
	app := cli.New(root)
	root.Flags().BoolVar(&printStats, "stats", false, "print what was removed")

	root.RunE = func(cmd *cobra.Command, args []string) error {
		stats, err := app.ExistingThumbCache().Clean(time.Now())
		if err != nil {
			return err
		}
		if printStats {
			fmt.Fprintf(cmd.OutOrStdout(), "expired %d, missing media %d, missing image %d, orphaned %d, work dirs %d\n",
				stats.Expired, stats.MissingMedia, stats.MissingImage, stats.Orphaned, stats.WorkDirs)
		}
		return nil
	}
	return root
}
