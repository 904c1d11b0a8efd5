package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
	"github.com/tailscale/hujson"

	"github.com/warp/tempwork/workspace"
)

var (
	flagSessionsDB  string
	flagSessionsOut string
	flagSessionsIn  string
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Export or import saved sessions",
}

var sessionsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write all saved sessions to a JSON file",
	Args:  cobra.NoArgs,
	RunE:  runSessionsExport,
}

var sessionsImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Load sessions from a JSON file, replacing same-named ones",
	Args:  cobra.NoArgs,
	RunE:  runSessionsImport,
}

func init() {
	sessionsCmd.PersistentFlags().StringVar(&flagSessionsDB, "db", "", "SQLite database path (default from config)")
	sessionsExportCmd.Flags().StringVarP(&flagSessionsOut, "out", "o", "sessions.json", "Output file")
	sessionsImportCmd.Flags().StringVarP(&flagSessionsIn, "in", "i", "sessions.json", "Input file")

	sessionsCmd.AddCommand(sessionsExportCmd, sessionsImportCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func openSessionsWorkspace() (func() error, *workspace.Service, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if flagSessionsDB != "" {
		cfg.Storage.DBPath = flagSessionsDB
	}
	store, svc, err := openWorkspace(cfg)
	if err != nil {
		return nil, nil, err
	}
	return store.Close, svc, nil
}

func runSessionsExport(cmd *cobra.Command, _ []string) error {
	closeStore, svc, err := openSessionsWorkspace()
	if err != nil {
		return err
	}
	defer closeStore()

	sessions, err := svc.Sessions(cmd.Context())
	if err != nil {
		return err
	}
	if sessions == nil {
		sessions = []workspace.Session{}
	}

	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return err
	}
	if err := writeFileAtomic(flagSessionsOut, append(data, '\n')); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d sessions to %s\n", len(sessions), flagSessionsOut)
	return nil
}

func runSessionsImport(cmd *cobra.Command, _ []string) error {
	// Opened first so the configured calendar zone applies while parsing.
	closeStore, svc, err := openSessionsWorkspace()
	if err != nil {
		return err
	}
	defer closeStore()

	data, err := os.ReadFile(flagSessionsIn)
	if err != nil {
		return fmt.Errorf("reading sessions: %w", err)
	}
	sessions, err := parseSessions(data)
	if err != nil {
		return err
	}

	if err := svc.ImportSessions(cmd.Context(), sessions); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d sessions from %s\n", len(sessions), flagSessionsIn)
	return nil
}

func parseSessions(data []byte) ([]workspace.Session, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("parsing sessions: %w", err)
	}
	var sessions []workspace.Session
	if err := json.Unmarshal(std, &sessions); err != nil {
		return nil, fmt.Errorf("parsing sessions: %w", err)
	}
	return sessions, nil
}

// writeFileAtomic replaces path in one step so a crash never leaves a
// half-written export.
func writeFileAtomic(path string, data []byte) error {
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
