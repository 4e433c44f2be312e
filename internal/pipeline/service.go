package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/example/iso-gateway/internal/iso20022"
	"github.com/example/iso-gateway/internal/store"
	"github.com/example/iso-gateway/internal/validation"
	"github.com/example/iso-gateway/internal/xrpl"
)

// Result is the tuple produced by one pipeline run.
type Result struct {
	Record     *iso20022.CanonicalPaymentRecord `json:"record"`
	XML        string                           `json:"xml"`
	Validation *validation.Result               `json:"validation"`
	Stored     *store.Message                   `json:"stored,omitempty"`
}

// Service runs the map → serialize → validate → persist pipeline for one
// transaction at a time. Runs for distinct transactions are independent and
// may execute concurrently.
type Service struct {
	mapper    *iso20022.Mapper
	validator *validation.Validator
	store     store.MessageStore
	logger    *slog.Logger
}

// NewService creates a pipeline service. The store is optional; nil skips
// persistence and only returns the tuple.
func NewService(mapper *iso20022.Mapper, validator *validation.Validator, messages store.MessageStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		mapper:    mapper,
		validator: validator,
		store:     messages,
		logger:    logger,
	}
}

// Process converts one raw transaction into a validated ISO 20022 message.
// Mapper and serializer failures abort the run; a message that fails
// validation is still persisted and returned, so operators see the full
// error list.
func (s *Service) Process(ctx context.Context, tx *xrpl.Transaction, mt iso20022.MessageType) (*Result, error) {
	record, err := s.mapper.Map(tx)
	if err != nil {
		return nil, fmt.Errorf("mapping failed: %w", err)
	}

	xml, err := iso20022.Serialize(record, mt)
	if err != nil {
		return nil, fmt.Errorf("serialization failed: %w", err)
	}

	verdict, err := s.validator.Validate(ctx, xml, mt)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	result := &Result{Record: record, XML: xml, Validation: verdict}

	if s.store != nil {
		canonical, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("failed to encode canonical record: %w", err)
		}

		msg := &store.Message{
			TxHash:      tx.Hash,
			MessageType: string(mt),
			Canonical:   canonical,
			XML:         xml,
			IsValid:     verdict.IsValid,
			Errors:      verdict.Errors,
			Warnings:    verdict.Warnings,
		}
		if err := s.store.SaveMessage(ctx, msg); err != nil {
			return nil, fmt.Errorf("failed to persist message: %w", err)
		}
		result.Stored = msg
	}

	s.logger.Info("message_generated",
		"tx_hash", tx.Hash,
		"message_type", string(mt),
		"is_valid", verdict.IsValid,
		"error_count", len(verdict.Errors),
		"warning_count", len(verdict.Warnings),
	)

	return result, nil
}
