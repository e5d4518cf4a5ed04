package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is set during build
	Version = "0.1.0-dev"

	rootCmd = &cobra.Command{
		Use:   "synergo",
		Short: "Synergo - a Synergy/Barrier input client",
		Long: `Synergo connects to a Synergy/Barrier-compatible server over TCP
(optionally TLS/mTLS) and re-injects the received mouse and keyboard events
into the local kernel input subsystem through a virtual uinput device, for
Wayland hosts that do not expose a remote-input portal.`,
		SilenceUsage: true,
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	// Add commands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

// Exit with error message
func exitError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
