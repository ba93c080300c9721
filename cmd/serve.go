package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lisabeyy/loofta-pay-public-sub001/pkg/api"
	"github.com/lisabeyy/loofta-pay-public-sub001/pkg/logger"
	"github.com/lisabeyy/loofta-pay-public-sub001/pkg/repository"
	"github.com/lisabeyy/loofta-pay-public-sub001/pkg/status"
)

var (
	serveAddr string
	noHistory bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API serving normalized swap status, status history and
withdrawal plans.

Routes:
  GET  /health
  GET  /api/v1/status?depositAddress=<addr>
  GET  /api/v1/status/history?depositAddress=<addr>&limit=<n>
  POST /api/v1/withdrawals/plan

Examples:
  loofta serve
  loofta serve --addr :9000 --no-history`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (defaults to http.addr)")
	serveCmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record status snapshots")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	log := logger.New(cfg.Env, os.Stdout)

	schedule, err := cfg.FeeSchedule()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	apiClient := newClient(cfg)

	opts := api.Options{
		Decimals:        apiClient,
		Schedule:        schedule,
		DefaultDecimals: cfg.Fees.Decimals,
		Logger:          log,
	}

	var recorder status.SnapshotRecorder
	if !noHistory {
		log.Info("opening snapshot database", slog.String("path", cfg.DBPath))
		db, err := repository.InitDB(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open snapshot database: %w", err)
		}
		defer db.Close()

		repo := repository.NewSnapshotRepo(db)
		recorder = repo
		opts.History = repo
	}

	opts.Status = status.NewService(apiClient, recorder, log)

	addr := cfg.HTTPAddr
	if serveAddr != "" {
		addr = serveAddr
	}
	httpServer := api.NewServer(addr, api.NewRouter(opts))

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", slog.String("addr", addr), slog.String("env", cfg.Env))
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for termination signal or a listen failure
	select {
	case <-ctx.Done():
		log.Info("Shutting down...")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	log.Info("Shutting down HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", slog.Any("error", err))
	}

	log.Info("Service stopped.")
	return nil
}
