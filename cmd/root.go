package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/crossforge/buildchain/cmd/configure"
	"github.com/crossforge/buildchain/cmd/patches"
	"github.com/crossforge/buildchain/cmd/watch"
)

// version is set via build-time ldflags
var version = "dev"

// buildDate is set via build-time ldflags
var buildDate = "unknown"

// commit is set via build-time ldflags
var commit = "unknown"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "buildchain",
	Short: "Generate ninja build descriptions for binutils and gcc based toolchains",
	Long: `Buildchain turns a declarative toolchain configuration into a ninja
build description that downloads, patches, configures and installs a
cross or native binutils/gcc toolchain for the requested target triple.

Use 'buildchain --help' to see all available commands, or
'buildchain <command> --help' for detailed information about a specific
command.`,
	Version: version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(configure.Cmd)
	rootCmd.AddCommand(patches.Cmd)
	rootCmd.AddCommand(watch.Cmd)

	if rootCmd.Annotations == nil {
		rootCmd.Annotations = make(map[string]string)
	}
	rootCmd.Annotations["buildDate"] = buildDate
	rootCmd.Annotations["commit"] = commit

	rootCmd.Version = version

	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
Build date: {{printf "%s" (index .Annotations "buildDate")}}
Commit: {{printf "%s" (index .Annotations "commit")}}
`)
}
