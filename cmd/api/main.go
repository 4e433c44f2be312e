package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/mattn/go-sqlite3"

	"github.com/example/iso-gateway/internal/api"
	"github.com/example/iso-gateway/internal/config"
	"github.com/example/iso-gateway/internal/iso20022"
	"github.com/example/iso-gateway/internal/pipeline"
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
	logger.Info("starting api", "environment", cfg.Environment, "addr", cfg.APIAddr)

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

	handler := api.NewRouter(api.Dependencies{
		Logger:    logger,
		Ledger:    xrpl.NewClient(cfg.LedgerRPCURL),
		Converter: converter,
		Messages:  messages,
	})

	srv := &http.Server{
		Addr:         cfg.APIAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
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
