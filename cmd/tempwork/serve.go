package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/warp/tempwork/api"
	"github.com/warp/tempwork/workspace"
)

var (
	flagPort int
	flagDB   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API.

On SIGINT/SIGTERM the server stops accepting connections, waits up to 30s
for active requests, writes a final autosave and closes the database.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&flagPort, "port", 8080, "HTTP server port")
	serveCmd.Flags().StringVar(&flagDB, "db", "tempwork.db", `SQLite database path (":memory:" for in-memory)`)
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = flagPort
	}
	if cmd.Flags().Changed("db") {
		cfg.Storage.DBPath = flagDB
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	store, svc, err := openWorkspace(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	var autosave *workspace.Autosaver
	if cfg.Autosave.Enabled {
		autosave = workspace.NewAutosaver(svc)
		autosave.Interval = cfg.Autosave.IntervalDuration()
		autosave.Session = cfg.Autosave.Session
		autosave.Start()
	}

	router := api.NewRouter(api.NewHandler(svc), cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Server starting on http://localhost:%d", cfg.Server.Port)
		log.Printf("API available at http://localhost:%d/api", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serveErr:
		if autosave != nil {
			autosave.Stop()
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	if autosave != nil {
		autosave.Stop()
	}

	log.Println("Server stopped")
	return nil
}
