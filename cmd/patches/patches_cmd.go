// Package patches implements the subcommand that downloads patch sets
// from known repositories into the patches directory.
package patches

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crossforge/buildchain/patches"
)

var patchDir string
var muslCrossMake bool

// Cmd represents the patches command.
var Cmd = &cobra.Command{
	Use:   "patches",
	Short: "Download patch sets from known repositories",
	Long: `Downloads per-package patch sets into the patches directory, where the
generated build description picks them up on the next run.

Example usage:
  buildchain patches --musl-cross-make`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !muslCrossMake {
			return fmt.Errorf("no patch source selected, pass --musl-cross-make")
		}

		if err := os.MkdirAll(patchDir, 0o755); err != nil {
			return fmt.Errorf("failed to create patch directory: %w", err)
		}
		return patches.DownloadMuslCrossMake(patchDir, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVar(&patchDir, "patch-dir", "patches", "Directory to place downloaded patch sets in")
	Cmd.Flags().BoolVar(&muslCrossMake, "musl-cross-make", false, "Download the musl-cross-make patch collection")
}
