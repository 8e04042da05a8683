// Package cli implements the wraith command-line interface.
//
// The root command opens the interactive dashboard; subcommands manage the
// server inventory (add/edit/remove/list/import) and run one-shot probes.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configFlag string

var rootCmd = &cobra.Command{
	Use:   "wraith",
	Short: "Interactive SSH server dashboard",
	Long: `wraith keeps an eye on your SSH servers: it probes reachability and
latency in the background, tracks the terminal sessions you launch, and
flags weak authentication setups.

Run with no arguments to open the dashboard. Manage the inventory with the
server subcommands:

  wraith                  open the dashboard
  wraith server add       add a server interactively
  wraith server list      print the inventory
  wraith import           import hosts from ~/.ssh/config
  wraith probe <server>   one-shot reachability check`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file (default: ./.wraith.yaml, then ~/.config/wraith/config.yaml)")
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
