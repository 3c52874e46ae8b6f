package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/MJE43/colorway-poker/internal/api"
	"github.com/MJE43/colorway-poker/internal/config"
	"github.com/MJE43/colorway-poker/internal/events"
	"github.com/MJE43/colorway-poker/internal/seedvault"
	"github.com/MJE43/colorway-poker/internal/store"
	"github.com/MJE43/colorway-poker/internal/table"
)

func newServeCmd() *cobra.Command {
	var (
		addr, driver, dsn, natsURL string
		noLedger                   bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("db-driver") {
				cfg.DBDriver = driver
			}
			if cmd.Flags().Changed("db-dsn") {
				cfg.DBDSN = dsn
			}
			if cmd.Flags().Changed("nats-url") {
				cfg.NATSURL = natsURL
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, !noLedger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides COLORWAY_ADDR)")
	cmd.Flags().StringVar(&driver, "db-driver", "", "ledger backend: sqlite or postgres")
	cmd.Flags().StringVar(&dsn, "db-dsn", "", "ledger DSN or SQLite path")
	cmd.Flags().StringVar(&natsURL, "nats-url", "", "publish round events to this NATS server")
	cmd.Flags().BoolVar(&noLedger, "no-ledger", false, "do not record rounds")
	return cmd
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	return config.Load(envFile)
}

func serve(ctx context.Context, cfg config.Config, ledger bool) (err error) {
	logger := log.New(os.Stdout, "[SERVE] ", log.LstdFlags)

	var db store.DB
	if ledger {
		db, err = store.Open(ctx, cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			return fmt.Errorf("open ledger: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			return multierr.Append(fmt.Errorf("migrate ledger: %w", err), db.Close())
		}
		logger.Printf("ledger driver=%s", cfg.DBDriver)
	}

	vault := seedvault.New(cfg.KeyringService, cfg.KeyringFallback)
	house, err := vault.EnsureSecret(cfg.HouseAccount)
	if err != nil {
		err = fmt.Errorf("house secret: %w", err)
		if db != nil {
			err = multierr.Append(err, db.Close())
		}
		return err
	}

	broker := events.NewBroker(64)
	pubs := events.Multi{broker}
	if cfg.NATSURL != "" {
		np, err := events.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			logger.Printf("nats disabled url=%s err=%v", cfg.NATSURL, err)
		} else {
			pubs = append(pubs, np)
			logger.Printf("nats url=%s", cfg.NATSURL)
		}
	}

	apiLogger := log.New(os.Stdout, "[API] ", log.LstdFlags)
	tables := table.NewManager(table.Options{
		Hooks:      api.TableHooks(db, pubs, apiLogger),
		Bankroll:   cfg.StartBankroll,
		ServerSeed: seedvault.Deriver(house),
	})
	srv := api.NewServer(api.Options{
		DB:     db,
		Tables: tables,
		Broker: broker,
		Logger: apiLogger,
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("listening addr=%s version=%s", cfg.Addr, api.EngineVersion)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err = <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	case <-ctx.Done():
		logger.Printf("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err = httpServer.Shutdown(shutdownCtx)
	}

	tables.Shutdown()
	err = multierr.Append(err, pubs.Close())
	if db != nil {
		err = multierr.Append(err, db.Close())
	}
	return err
}
