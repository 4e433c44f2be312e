package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/mattn/go-sqlite3"

	"github.com/example/iso-gateway/internal/config"
	"github.com/example/iso-gateway/internal/iso20022"
	"github.com/example/iso-gateway/internal/pipeline"
	"github.com/example/iso-gateway/internal/poller"
	"github.com/example/iso-gateway/internal/store"
	"github.com/example/iso-gateway/internal/validation"
	"github.com/example/iso-gateway/internal/xrpl"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.LedgerAccount == "" {
		logger.Error("XRPL_ACCOUNT is required for the poller")
		os.Exit(1)
	}
	logger.Info("starting pollerd",
		"environment", cfg.Environment,
		"account", cfg.LedgerAccount,
		"interval", cfg.PollInterval.String(),
	)

	messages, cleanup, err := openStore(cfg)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	rules := validation.DefaultRuleTable()
	if cfg.RulesFile != "" {
		rules, err = validation.LoadRuleTable(cfg.RulesFile)
		if err != nil {
			logger.Error("failed to load rule table", "file", cfg.RulesFile, "error", err)
			os.Exit(1)
		}
	}

	var external *validation.ExternalChecker
	if cfg.ExternalValidatorURL != "" {
		external = validation.NewExternalChecker(cfg.ExternalValidatorURL)
	}

	converter := pipeline.NewService(
		iso20022.NewMapper(),
		validation.NewValidator(rules, external),
		messages,
		logger,
	)

	client := xrpl.NewClient(cfg.LedgerRPCURL)
	p := poller.New(client, converter, messages, cfg.LedgerAccount, iso20022.Pacs008, cfg.PollInterval, logger)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	p.Run(ctx)
}

// openStore selects the message store backend from config: PostgreSQL when
// DATABASE_URL is set, SQLite otherwise.
func openStore(cfg *config.Config) (store.MessageStore, func(), error) {
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return store.NewPostgresStore(pool), pool.Close, nil
	}

	db, err := sql.Open("sqlite3", cfg.SQLitePath)
	if err != nil {
		return nil, nil, err
	}
	s := store.NewSQLiteStore(db)
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, nil, err
	}
	return s, func() { _ = db.Close() }, nil
}
