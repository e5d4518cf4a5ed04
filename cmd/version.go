package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Commit and Date are set by main via ldflags at build time.
	Commit string
	Date   string
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("synergo %s\n", Version)
		fmt.Printf("commit: %s\n", Commit)
		fmt.Printf("built: %s\n", Date)
	},
}
