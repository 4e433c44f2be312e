package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/example/iso-gateway/internal/iso20022"
	"github.com/example/iso-gateway/internal/pipeline"
	"github.com/example/iso-gateway/internal/security"
	"github.com/example/iso-gateway/internal/store"
	"github.com/example/iso-gateway/internal/xrpl"
)

// LedgerClient fetches raw transactions from the distributed ledger.
type LedgerClient interface {
	Tx(ctx context.Context, hash string) (*xrpl.Transaction, error)
}

// Converter runs the map → serialize → validate → persist pipeline.
type Converter interface {
	Process(ctx context.Context, tx *xrpl.Transaction, mt iso20022.MessageType) (*pipeline.Result, error)
}

// Dependencies carries the collaborators the HTTP surface hands work to.
type Dependencies struct {
	Logger    *slog.Logger
	Ledger    LedgerClient
	Converter Converter
	Messages  store.MessageStore
}

// NewRouter builds the HTTP surface: conversion endpoints plus stored-message
// lookups. The surface is a thin wrapper; all domain logic lives behind the
// Converter.
func NewRouter(deps Dependencies) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(security.CorrelationID)
	r.Use(RequestLogger(deps.Logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/messages", handleConvert(deps))
		r.Post("/messages/raw", handleConvertRaw(deps))
		r.Get("/messages", handleListMessages(deps))
		r.Get("/messages/{id}", handleGetMessage(deps))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		security.WriteJSONError(w, r, http.StatusNotFound, "not_found")
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		security.WriteJSONError(w, r, http.StatusMethodNotAllowed, "method_not_allowed")
	})

	return r
}
