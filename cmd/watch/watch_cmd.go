// Package watch implements the subcommand that regenerates build.ninja
// whenever the configuration file or the patch directory changes.
package watch

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/crossforge/buildchain/config"
	"github.com/crossforge/buildchain/generate"
)

type watchOptions struct {
	configFile string
	patchDir   string
}

// Cmd represents the watch command.
var Cmd = NewCommand()

// NewCommand returns a new watch command instance.
func NewCommand() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the configuration and patches, regenerating build.ninja on change",
		Long: `Watches the HCL configuration file and the patch directory and rewrites
build.ninja whenever either changes, so an editor-driven configuration
loop never needs a manual rerun of configure.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configFile, "config", "c", "", "HCL configuration file to watch (required)")
	cmd.Flags().StringVar(&opts.patchDir, "patch-dir", "", "Patch directory to watch (default: the configuration file's patch_dir)")
	cmd.MarkFlagRequired("config")

	return cmd
}

func runWatch(cmd *cobra.Command, opts *watchOptions) error {
	absConfig, err := filepath.Abs(opts.configFile)
	if err != nil {
		return fmt.Errorf("failed to resolve config path: %w", err)
	}

	patchDirFlag := ""
	if cmd.Flags().Changed("patch-dir") {
		patchDirFlag = opts.patchDir
	}

	first, err := loadOptions(absConfig, patchDirFlag)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := generate.Regenerate(first, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("initial generation failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s and %s\n", absConfig, first.PatchDir)
	fmt.Fprintf(cmd.OutOrStdout(), "Press Ctrl+C to stop\n")

	regen := func() {
		current, err := loadOptions(absConfig, patchDirFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config reload error: %v\n", err)
			return
		}
		if err := generate.Regenerate(current, cmd.OutOrStdout()); err != nil {
			fmt.Fprintf(os.Stderr, "regeneration error: %v\n", err)
		}
	}

	// The watched patch directory is fixed at startup; a patch_dir change
	// in the configuration file takes effect on the next start.
	return watchAndRegenerate(ctx, absConfig, first.PatchDir, regen)
}

// loadOptions reads the configuration file and applies the patch-dir
// flag override. The watcher and every regeneration go through it, so
// the watched patch directory and the planned one always agree.
func loadOptions(configFile, patchDirFlag string) (config.Options, error) {
	opts := config.DefaultOptions()
	if err := config.LoadFile(configFile, &opts); err != nil {
		return config.Options{}, err
	}
	if patchDirFlag != "" {
		opts.PatchDir = patchDirFlag
	}
	return opts, nil
}
