package cli

import (
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/wraith/internal/config"
	"github.com/rileyhilliard/wraith/internal/dashboard"
	"github.com/rileyhilliard/wraith/internal/engine"
	"github.com/rileyhilliard/wraith/internal/logger"
	"github.com/rileyhilliard/wraith/internal/probe"
	"github.com/rileyhilliard/wraith/internal/server"
	"github.com/rileyhilliard/wraith/internal/session"
	"github.com/rileyhilliard/wraith/internal/terminal"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash"},
	Short:   "Open the interactive dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard()
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

// buildStore loads the config and wires up a ready-to-run engine store. The
// returned save path is where mutations persist to.
func buildStore() (*engine.Store, *config.Config, string, error) {
	cfg, savePath, err := config.LoadOrDefault(configFlag)
	if err != nil {
		return nil, nil, "", err
	}

	launcher := terminal.NewLauncher()
	launcher.Preferred = cfg.Settings.Terminal

	store := engine.New(cfg.EngineConfig(), launcher, session.OSProcessChecker())
	store.SetLogger(logger.NewEnvLogger("[engine]"))
	if cfg.Settings.DeepProbe {
		store.SetProber(probe.Deep)
	}
	store.Load(cfg.Records())
	store.OnPersist(func(records []server.Record) error {
		cfg.SetRecords(records)
		return config.Save(cfg, savePath)
	})
	return store, cfg, savePath, nil
}

func runDashboard() error {
	store, _, _, err := buildStore()
	if err != nil {
		return err
	}
	return dashboard.Run(store)
}
