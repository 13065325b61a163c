package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "fxquotes/internal/api/docs"
	"fxquotes/internal/config"
	"fxquotes/internal/fixtures"
)

// @title FX Quotes API
// @version 1.0
// @description Currency conversion quotes backed by periodically refreshed exchange rates.
// @BasePath /
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fxquotes",
		Short:         "FX quote service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newRefreshCmd(), newLoadCurrenciesCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the refresh worker and the refresh scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, sugar, sync := bootstrap()
			defer sync()

			sugar.Infow("Starting FX Quotes Service", "port", cfg.Server.Port)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := NewApp(ctx, cfg, sugar)
			if err != nil {
				sugar.Fatalw("Failed to initialize app", "error", err)
			}
			if err := app.seedCurrencies(ctx); err != nil {
				sugar.Warnw("Currency seeding incomplete", "error", err)
			}

			if err := app.Run(ctx); err != nil {
				sugar.Fatalw("Application error", "error", err)
			}
			return nil
		},
	}
}

func newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Run one rate refresh cycle synchronously and print its summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, sugar, sync := bootstrap()
			defer sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := NewApp(ctx, cfg, sugar)
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			defer func() { _ = app.close() }()

			summary, err := app.refresher.Refresh(ctx, time.Now().UTC())
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			_ = enc.Encode(summary)
			return err
		},
	}
}

func newLoadCurrenciesCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "load-currencies",
		Short: "Upsert currency metadata from a CSV file (embedded defaults when --file is empty)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, sugar, sync := bootstrap()
			defer sync()

			if path == "" {
				path = cfg.Fixtures.CurrenciesPath
			}
			list, err := fixtures.LoadCurrencies(path)
			if err != nil {
				return err
			}

			app, err := NewApp(cmd.Context(), cfg, sugar)
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			defer func() { _ = app.close() }()

			applied, err := fixtures.ApplyCurrencies(cmd.Context(), app.currencies, list, sugar)
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %d of %d currencies\n", applied, len(list))
			return err
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "path to a currencies CSV file")
	return cmd
}

func bootstrap() (*config.Config, *zap.SugaredLogger, func()) {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	return cfg, zapLogger.Sugar(), func() { _ = zapLogger.Sync() }
}
