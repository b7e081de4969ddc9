package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags
var Version = "dev"

func getVersion() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

// globalFlags are shared by every subcommand
type globalFlags struct {
	configFile string
	noCache    bool
	yes        bool
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "atelier",
		Short: "Browse the museum gallery and keep your favorite artworks in sync",
		Long: `Atelier browses the museum's artwork catalog from the terminal.

Favorites are kept on this machine and work without an account. Sign in
with "atelier login" and they are merged with your account on the server
and follow you to the website.`,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "config file (default $HOME/.config/atelier/config.yaml)")
	pf.BoolVar(&flags.noCache, "no-cache", false, "keep nothing on disk for this run")
	pf.BoolVarP(&flags.yes, "yes", "y", false, "do not ask before removing favorites")
	pf.StringVar(&flags.logLevel, "log-level", "", "override logging.level (DEBUG, INFO, WARN, ERROR)")

	root.AddCommand(
		newLoginCmd(flags),
		newRegisterCmd(flags),
		newLogoutCmd(flags),
		newWhoamiCmd(flags),
		newFavoritesCmd(flags),
		newArtworksCmd(flags),
		newServeCmd(flags),
	)
	return root
}
