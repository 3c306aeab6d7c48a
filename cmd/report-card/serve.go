// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/report-card/internal/history"
	"github.com/pdiddy/report-card/internal/lookup"
	"github.com/pdiddy/report-card/internal/records"
	"github.com/pdiddy/report-card/internal/web"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the report-card page on a local web server",
	Long: `Serve renders the report-card page in the browser: enter a registration
number, view the records and CGPA, print the page or download it as XLSX.
The server runs until interrupted.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := appConfig()

	ctrl := lookup.NewController(records.NewClient(cfg.RecordService), lookup.OptionsFromConfig(cfg.Banner))
	defer ctrl.Close()

	opts := &web.Options{
		Address:        cfg.Serve.Address,
		DisableReqLogs: cfg.Serve.DisableRequestLogs,
		Controller:     ctrl,
		Out:            os.Stderr,
	}
	if !cfg.History.Disabled {
		store, err := history.NewStore(cfg.History)
		if err != nil {
			return err
		}
		defer store.Close()
		opts.History = store
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := web.NewServer(opts)
	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	fmt.Fprintln(os.Stderr, "Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("stopping server: %w", err)
	}
	return <-errc
}

func init() {
	addRecordServiceFlags(serveCmd)
	serveCmd.Flags().String("addr", defaultServeAddr, "listen address")
	serveCmd.Flags().Bool("quiet", false, "disable per-request logs")

	rootCmd.AddCommand(serveCmd)
}
