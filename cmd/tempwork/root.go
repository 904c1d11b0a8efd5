package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/warp/tempwork/accounting"
	"github.com/warp/tempwork/config"
	"github.com/warp/tempwork/store/sqlite"
	"github.com/warp/tempwork/workspace"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:          "tempwork",
	Short:        "Temporary work limit calculator",
	Long:         "Track temporary work contracts against the 548/540-day limit within 36-month periods.",
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "tempwork.yaml", "Config file (.yaml, .toml or .json)")
}

// loadConfig loads the config file and applies the calendar zone used to
// read timestamps.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	accounting.SetCalendarZone(cfg.Calendar.Location())
	return cfg, nil
}

// openWorkspace opens the configured database. The caller closes the store.
func openWorkspace(cfg config.Config) (*sqlite.Store, *workspace.Service, error) {
	store, err := sqlite.New(cfg.Storage.DBPath)
	if err != nil {
		return nil, nil, err
	}
	svc := workspace.NewService(store, workspace.Limits{
		Default: cfg.Limits.Default,
		Allowed: cfg.Limits.Allowed,
	})
	return store, svc, nil
}
